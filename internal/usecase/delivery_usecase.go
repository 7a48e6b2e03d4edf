package usecase

import (
	"context"
	"fmt"

	"github.com/Shreyr69/indiport/internal/domain/checkout"
	"github.com/Shreyr69/indiport/internal/domain/model"
	"github.com/Shreyr69/indiport/internal/domain/pricing"
	repo "github.com/Shreyr69/indiport/internal/repository"

	"github.com/shopspring/decimal"
)

type DeliveryOption struct {
	model.DeliveryMethod
	//この小計なら送料無料になるか
	FreeShippingEligible bool `json:"free_shipping_eligible"`
	//実際にかかる送料
	EffectiveCost decimal.Decimal `json:"effective_cost"`
}

type DeliveryUsecase struct {
	methods repo.DeliveryMethodRepository
	policy  pricing.Policy
}

func NewDeliveryUsecase(methods repo.DeliveryMethodRepository, policy pricing.Policy) *DeliveryUsecase {
	return &DeliveryUsecase{methods: methods, policy: policy}
}

// 有効な配送方法（安い順）。取れなければ ErrRemoteFetch（再試行可）
func (u *DeliveryUsecase) ListOptions(ctx context.Context, subtotal decimal.Decimal) ([]DeliveryOption, error) {
	list, err := u.methods.ListActive(ctx)
	if err != nil {
		return nil, checkoutError(fmt.Errorf("%w: %v", checkout.ErrRemoteFetch, err))
	}

	out := make([]DeliveryOption, 0, len(list))
	for _, m := range list {
		free := u.policy.IsFreeShipping(subtotal, m.BaseCost)
		cost := m.BaseCost
		if free {
			cost = decimal.Zero
		}
		out = append(out, DeliveryOption{DeliveryMethod: m, FreeShippingEligible: free, EffectiveCost: cost})
	}
	return out, nil
}
