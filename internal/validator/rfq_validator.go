package validator

import (
	"net/mail"
	"strings"

	"github.com/Shreyr69/indiport/internal/domain/model"

	"github.com/shopspring/decimal"
)

// 見積依頼の入力を検証（数量は商品のMOQ以上）
func ValidateRFQ(r model.RFQ, product model.Product) error {
	if r.Quantity <= 0 {
		return invalid("quantity must be positive")
	}
	if r.Quantity < product.MinOrder {
		return invalid("quantity is below the minimum order quantity")
	}
	if strings.TrimSpace(r.CompanyName) == "" || strings.TrimSpace(r.ContactPerson) == "" {
		return invalid("company name and contact person are required")
	}
	if !isEmailLike(r.Email) {
		return invalid("a valid email is required")
	}
	return nil
}

// seller の回答。単価は0より大きい
func ValidateQuote(price decimal.Decimal) error {
	if !price.IsPositive() {
		return invalid("quoted price must be greater than zero")
	}
	return nil
}

// 評価は1〜5
func ValidateReview(rating int) error {
	if rating < 1 || rating > 5 {
		return invalid("rating must be between 1 and 5")
	}
	return nil
}

// 簡易メール形式をチェック
func isEmailLike(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	a, err := mail.ParseAddress(s)
	return err == nil && a.Address == s && strings.Contains(s[strings.LastIndex(s, "@"):], ".")
}
