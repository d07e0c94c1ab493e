package domain

import "math"

// Pricing policy. The store ships free above the threshold and charges a
// flat fee below it; tax is a single fixed rate applied to the subtotal.
// These are deliberate policy constants, not configuration.
const (
	TaxRate               = 0.18
	FreeShippingThreshold = 1000.0
	FlatShippingFee       = 50.0
)

type OrderTotals struct {
	Subtotal     float64 `json:"subtotal"`
	ShippingCost float64 `json:"shipping_cost"`
	Tax          float64 `json:"tax"`
	Total        float64 `json:"total"`
}

// ComputeTotals derives shipping, tax and total from a subtotal.
// total = subtotal + shipping + tax; no discount path is wired in.
func ComputeTotals(subtotal float64) OrderTotals {
	shipping := FlatShippingFee
	if subtotal >= FreeShippingThreshold {
		shipping = 0
	}

	tax := round2(subtotal * TaxRate)

	return OrderTotals{
		Subtotal:     round2(subtotal),
		ShippingCost: shipping,
		Tax:          tax,
		Total:        round2(subtotal + shipping + tax),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
