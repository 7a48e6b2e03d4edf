package pricing

import (
	"github.com/Shreyr69/indiport/internal/domain/model"

	"github.com/shopspring/decimal"
)

// 表示・保存時の通貨精度
const CurrencyPlaces int32 = 2

var (
	DefaultFreeShippingThreshold = decimal.NewFromInt(999)
	DefaultFreeShippingCap       = decimal.NewFromInt(50)
	DefaultTaxRate               = decimal.RequireFromString("0.18")
)

// Policy は送料無料の閾値・上限と税率。
// 送料無料は「小計が閾値以上」かつ「配送方法の基本料金が上限以下」のときだけ。
// 上限を超える配送方法は小計に関係なく割引しない。
type Policy struct {
	FreeShippingThreshold decimal.Decimal
	FreeShippingCap       decimal.Decimal
	TaxRate               decimal.Decimal
}

func DefaultPolicy() Policy {
	return Policy{
		FreeShippingThreshold: DefaultFreeShippingThreshold,
		FreeShippingCap:       DefaultFreeShippingCap,
		TaxRate:               DefaultTaxRate,
	}
}

type Totals struct {
	Subtotal     decimal.Decimal `json:"subtotal"`
	ShippingCost decimal.Decimal `json:"shipping_cost"`
	TaxAmount    decimal.Decimal `json:"tax_amount"`
	Total        decimal.Decimal `json:"total"`

	//送料無料で値引きされた額（無料でなければ0）
	ShippingSaved decimal.Decimal `json:"shipping_saved"`
}

func (p Policy) IsFreeShipping(subtotal, baseCost decimal.Decimal) bool {
	return subtotal.GreaterThanOrEqual(p.FreeShippingThreshold) &&
		baseCost.LessThanOrEqual(p.FreeShippingCap)
}

// Compute は小計と配送方法から送料・税・合計を出す。丸めはしない。
func (p Policy) Compute(subtotal decimal.Decimal, method model.DeliveryMethod) Totals {
	shipping := method.BaseCost
	saved := decimal.Zero
	if p.IsFreeShipping(subtotal, method.BaseCost) {
		shipping = decimal.Zero
		saved = method.BaseCost
	}

	tax := subtotal.Mul(p.TaxRate)

	return Totals{
		Subtotal:      subtotal,
		ShippingCost:  shipping,
		TaxAmount:     tax,
		Total:         subtotal.Add(shipping).Add(tax),
		ShippingSaved: saved,
	}
}

// ComputeLines は CartAggregator → PricingEngine をまとめたもの。
func (p Policy) ComputeLines(lines []Line, method model.DeliveryMethod) Totals {
	return p.Compute(Subtotal(lines), method)
}

// Rounded は各項目を小数2桁に丸め、合計は丸めた値から組み直す。
// 表示上も subtotal + shipping + tax = total が必ず成り立つ。
func (t Totals) Rounded() Totals {
	sub := t.Subtotal.Round(CurrencyPlaces)
	ship := t.ShippingCost.Round(CurrencyPlaces)
	tax := t.TaxAmount.Round(CurrencyPlaces)
	return Totals{
		Subtotal:      sub,
		ShippingCost:  ship,
		TaxAmount:     tax,
		Total:         sub.Add(ship).Add(tax),
		ShippingSaved: t.ShippingSaved.Round(CurrencyPlaces),
	}
}

// MinorUnits は最小通貨単位（paise）に換算する。ゲートウェイ向け。
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
