package pricing

import "github.com/shopspring/decimal"

// カート1行分。単価は商品の現在価格。
type Line struct {
	ProductID string
	UnitPrice decimal.Decimal
	Quantity  int64
}

func (l Line) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(l.Quantity))
}

// Subtotal は Σ(単価×数量)。途中では丸めない。
func Subtotal(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Total())
	}
	return sum
}

// ItemCount は Σ(数量)。
func ItemCount(lines []Line) int64 {
	var n int64
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}
