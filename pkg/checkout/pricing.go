package checkout

import "github.com/shopspring/decimal"

// DefaultSurchargePercent is the service tax applied on top of the subtotal.
const DefaultSurchargePercent int64 = 10

// Breakdown is the price summary shown before checkout. Amounts are in the
// smallest currency unit.
type Breakdown struct {
	Subtotal  int64 `json:"subtotal"`
	Surcharge int64 `json:"surcharge"`
	Total     int64 `json:"total"`
}

// Surcharge returns percent% of subtotal rounded to the nearest unit, halves up.
func Surcharge(subtotal, percent int64) int64 {
	if subtotal <= 0 || percent <= 0 {
		return 0
	}
	return decimal.NewFromInt(subtotal).
		Mul(decimal.NewFromInt(percent)).
		Div(decimal.NewFromInt(100)).
		Round(0).
		IntPart()
}

// NewBreakdown derives surcharge and total from a subtotal.
func NewBreakdown(subtotal, percent int64) Breakdown {
	if subtotal < 0 {
		subtotal = 0
	}
	surcharge := Surcharge(subtotal, percent)
	return Breakdown{
		Subtotal:  subtotal,
		Surcharge: surcharge,
		Total:     subtotal + surcharge,
	}
}
