package models

import "math"

// Validation limits shared by carts and orders.
const (
	MaxLinesPerCart  = 100
	MaxLinesPerOrder = 100
	MaxQuantity      = 10000
	MaxRate          = 1000000
)

// Line is a product line: a cart row while shopping, and an order line once
// frozen into a placed order's snapshot.
type Line struct {
	ItemID   string  `json:"item_id" validate:"required,min=1,max=50"`
	ItemName string  `json:"item_name" validate:"required,min=1,max=200"`
	Rate     float64 `json:"rate" validate:"gte=0,lte=1000000"`
	Quantity float64 `json:"quantity" validate:"gt=0,lte=10000"`
	Total    float64 `json:"total" validate:"gte=0"`
}

// NormalizeTotal recomputes Total from Rate and Quantity when the submitted
// value drifts by more than a cent, keeping clients honest without rejecting
// rounding noise.
func (l *Line) NormalizeTotal() {
	expected := Round2(l.Rate * l.Quantity)
	if math.Abs(l.Total-expected) > 0.01 {
		l.Total = expected
	}
}

// SumLineTotals returns the rounded sum of line totals.
func SumLineTotals(lines []Line) float64 {
	var sum float64
	for _, l := range lines {
		sum += l.Total
	}
	return Round2(sum)
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
