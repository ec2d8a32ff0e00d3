package pricing

import "github.com/shopspring/decimal"

// Commercial is the cross-field state checked before a product's pricing
// is accepted by the persistence layer.
type Commercial struct {
	Mode         Mode
	MetalWeight  decimal.Decimal
	CostPrice    decimal.Decimal
	SellingPrice decimal.Decimal
	MRP          decimal.Decimal
}

// ValidateCommit enforces the commit-time invariants, in order: all three
// commercial fields non-negative, selling <= mrp, cost <= selling, and a
// positive metal weight whenever the mode is dynamic. It never corrects
// values; it only accepts or rejects, and it performs no I/O.
func ValidateCommit(c Commercial) error {
	for _, f := range []struct {
		name  string
		value decimal.Decimal
	}{
		{"mrp", c.MRP},
		{"cost_price", c.CostPrice},
		{"selling_price", c.SellingPrice},
	} {
		if f.value.IsNegative() {
			return &InvalidAttributeError{Field: f.name, Reason: "must not be negative"}
		}
	}
	if c.SellingPrice.GreaterThan(c.MRP) {
		return &PriceInversionError{Message: "selling price exceeds MRP"}
	}
	if c.CostPrice.GreaterThan(c.SellingPrice) {
		return &PriceInversionError{Message: "cost price exceeds selling price"}
	}
	if c.Mode == ModeDynamic && !c.MetalWeight.IsPositive() {
		return &MissingAttributeError{Field: "metal_weight"}
	}
	return nil
}
