package pricing

import "github.com/shopspring/decimal"

// Purity is a standard karat tier for gold alloys.
type Purity string

const (
	Purity24K Purity = "24K"
	Purity22K Purity = "22K"
	Purity18K Purity = "18K"
	Purity14K Purity = "14K"
	Purity10K Purity = "10K"
)

// PurityFractions maps each karat tier to its fractional gold content by
// mass. The table is exported so valuation audits and tests can reference
// the exact constants the engine uses.
var PurityFractions = map[Purity]decimal.Decimal{
	Purity24K: decimal.RequireFromString("0.999"),
	Purity22K: decimal.RequireFromString("0.917"),
	Purity18K: decimal.RequireFromString("0.750"),
	Purity14K: decimal.RequireFromString("0.583"),
	Purity10K: decimal.RequireFromString("0.417"),
}

// Valid reports whether p is one of the supported karat tiers.
func (p Purity) Valid() bool {
	_, ok := PurityFractions[p]
	return ok
}

// Fraction returns the fractional purity for p.
func (p Purity) Fraction() (decimal.Decimal, error) {
	f, ok := PurityFractions[p]
	if !ok {
		return decimal.Zero, &InvalidAttributeError{Field: "metal_purity", Reason: "unknown purity tier " + string(p)}
	}
	return f, nil
}

// MetalValue converts physical attributes into a base metal value:
// weight(g) x purity fraction x market rate per gram. Weight must be
// positive and the rate non-negative.
func MetalValue(weight, purityFraction, ratePerGram decimal.Decimal) (decimal.Decimal, error) {
	if !weight.IsPositive() {
		return decimal.Zero, &InvalidAttributeError{Field: "metal_weight", Reason: "must be greater than zero"}
	}
	if ratePerGram.IsNegative() {
		return decimal.Zero, &InvalidAttributeError{Field: "rate_per_gram", Reason: "must not be negative"}
	}
	return weight.Mul(purityFraction).Mul(ratePerGram), nil
}
