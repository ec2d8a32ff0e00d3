package pricing

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Charges is the result of loading making charge and tax onto a base metal
// value. Amounts keep full precision; rounding to paise happens only when a
// Breakdown is assembled.
type Charges struct {
	MakingCharge decimal.Decimal
	TaxAmount    decimal.Decimal
	LoadedPrice  decimal.Decimal
}

// ApplyCharges loads a making-charge percentage and a tax percentage onto
// base. Tax applies to base plus making charge. Both percentages must lie
// in [0, 100].
func ApplyCharges(base, makingChargePercent, taxPercent decimal.Decimal) (Charges, error) {
	if base.IsNegative() {
		return Charges{}, &InvalidAttributeError{Field: "base_value", Reason: "must not be negative"}
	}
	if err := checkPercent("making_charge_percent", makingChargePercent); err != nil {
		return Charges{}, err
	}
	if err := checkPercent("tax_percent", taxPercent); err != nil {
		return Charges{}, err
	}

	makingCharge := base.Mul(makingChargePercent).Div(hundred)
	taxable := base.Add(makingCharge)
	tax := taxable.Mul(taxPercent).Div(hundred)

	return Charges{
		MakingCharge: makingCharge,
		TaxAmount:    tax,
		LoadedPrice:  taxable.Add(tax),
	}, nil
}

func checkPercent(field string, pct decimal.Decimal) error {
	if pct.IsNegative() || pct.GreaterThan(hundred) {
		return &InvalidAttributeError{Field: field, Reason: "must be between 0 and 100"}
	}
	return nil
}
