package validator

import (
	"strings"

	"github.com/Shreyr69/indiport/internal/domain/model"
)

// 出品フォームの入力
func ValidateProduct(p model.Product) error {
	if strings.TrimSpace(p.Title) == "" {
		return invalid("title is required")
	}
	if len(p.Title) > 255 {
		return invalid("title is too long")
	}
	if strings.TrimSpace(p.Category) == "" {
		return invalid("category is required")
	}
	if !p.Price.IsPositive() {
		return invalid("price must be greater than zero")
	}
	if p.MinOrder < 1 {
		return invalid("minimum order must be at least 1")
	}
	if p.Stock < 0 {
		return invalid("stock must be >= 0")
	}
	return nil
}
