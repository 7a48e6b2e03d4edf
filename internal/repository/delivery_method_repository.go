package repository

import (
	"context"

	"github.com/Shreyr69/indiport/internal/domain/model"
)

type DeliveryMethodRepository interface {
	// 有効なものを基本料金の安い順
	ListActive(ctx context.Context) ([]model.DeliveryMethod, error)
	FindByID(ctx context.Context, id string) (model.DeliveryMethod, error)
}
