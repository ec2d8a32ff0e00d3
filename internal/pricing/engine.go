package pricing

import "github.com/shopspring/decimal"

// Mode selects how a product's commercial price is determined.
type Mode string

const (
	// ModeFixed means the operator-entered selling price is authoritative
	// and the engine is a pass-through.
	ModeFixed Mode = "fixed"
	// ModeDynamic derives the price from metal weight, purity, the market
	// rate and the mounted stones.
	ModeDynamic Mode = "dynamic"
)

// ValidMode reports whether m is a known pricing mode.
func ValidMode(m Mode) bool {
	return m == ModeFixed || m == ModeDynamic
}

// Default margin multipliers applied when a computed price is auto-applied
// to a product. Business placeholders, not accounting law: keep them
// replaceable through MarginPolicy rather than inlined at call sites.
var (
	DefaultMRPMargin  = decimal.RequireFromString("1.10")
	DefaultCostMargin = decimal.RequireFromString("0.70")
)

// MarginPolicy derives the commercial bounds from a computed final price.
type MarginPolicy struct {
	MRPMargin  decimal.Decimal
	CostMargin decimal.Decimal
}

// DefaultMarginPolicy returns the stock 10% MRP headroom / 70% assumed cost
// policy.
func DefaultMarginPolicy() MarginPolicy {
	return MarginPolicy{MRPMargin: DefaultMRPMargin, CostMargin: DefaultCostMargin}
}

// Breakdown is the computed decomposition of one sale price. All amounts
// are reported rounded to 2 decimal places, round half up.
type Breakdown struct {
	PureMetalValue   decimal.Decimal `json:"pure_metal_value"`
	MakingCharge     decimal.Decimal `json:"making_charge"`
	TaxAmount        decimal.Decimal `json:"tax_amount"`
	LoadedMetalPrice decimal.Decimal `json:"loaded_metal_price"`
	StoneValue       decimal.Decimal `json:"stone_value"`
	FinalPrice       decimal.Decimal `json:"final_price"`
}

// Input is everything Compute needs. The market rate is resolved by the
// caller before the call; the engine itself performs no I/O.
type Input struct {
	Mode                Mode
	MetalWeight         decimal.Decimal // grams
	Purity              Purity
	MakingChargePercent decimal.Decimal
	TaxPercent          decimal.Decimal
	RatePerGram         decimal.Decimal
	Stones              *Collection
	// SellingPrice is the stored operator-entered price, authoritative in
	// fixed mode.
	SellingPrice decimal.Decimal
}

// CommercialFields are the product fields refreshed when a computed price
// is auto-applied.
type CommercialFields struct {
	SellingPrice decimal.Decimal
	MRP          decimal.Decimal
	CostPrice    decimal.Decimal
}

// Engine turns raw physical attributes into a consistent, auditable sale
// price. It holds no state across calls beyond its margin policy, so one
// engine may price any number of products concurrently.
type Engine struct {
	margins MarginPolicy
}

// NewEngine builds an engine with the given margin policy. Zero margins
// fall back to the defaults.
func NewEngine(margins MarginPolicy) *Engine {
	if margins.MRPMargin.IsZero() {
		margins.MRPMargin = DefaultMRPMargin
	}
	if margins.CostMargin.IsZero() {
		margins.CostMargin = DefaultCostMargin
	}
	return &Engine{margins: margins}
}

// Compute produces the price breakdown for in. Deterministic: identical
// inputs always produce identical output.
func (e *Engine) Compute(in Input) (Breakdown, error) {
	stones := in.Stones
	if stones == nil {
		stones = &Collection{}
	}

	if in.Mode == ModeFixed {
		// Pass-through: the operator's entered value is authoritative and
		// metal attributes are ignored entirely.
		return Breakdown{
			PureMetalValue:   decimal.Zero,
			MakingCharge:     decimal.Zero,
			TaxAmount:        decimal.Zero,
			LoadedMetalPrice: decimal.Zero,
			StoneValue:       stones.AggregateValue(),
			FinalPrice:       in.SellingPrice.Round(2),
		}, nil
	}
	if in.Mode != ModeDynamic {
		return Breakdown{}, &InvalidAttributeError{Field: "pricing_mode", Reason: "unknown mode " + string(in.Mode)}
	}

	fraction, err := in.Purity.Fraction()
	if err != nil {
		return Breakdown{}, err
	}
	pure, err := MetalValue(in.MetalWeight, fraction, in.RatePerGram)
	if err != nil {
		return Breakdown{}, err
	}
	charges, err := ApplyCharges(pure, in.MakingChargePercent, in.TaxPercent)
	if err != nil {
		return Breakdown{}, err
	}

	// Accumulate at full precision; round once at the reporting edge so
	// repeated recalculation cannot compound rounding error.
	stoneValue := stones.aggregate()
	final := charges.LoadedPrice.Add(stoneValue)

	return Breakdown{
		PureMetalValue:   pure.Round(2),
		MakingCharge:     charges.MakingCharge.Round(2),
		TaxAmount:        charges.TaxAmount.Round(2),
		LoadedMetalPrice: charges.LoadedPrice.Round(2),
		StoneValue:       stoneValue.Round(2),
		FinalPrice:       final.Round(2),
	}, nil
}

// ApplyMargins derives selling price, MRP and cost price from a computed
// final price using the engine's margin policy. Callers invoke this only
// when the editing surface has dynamic pricing enabled; the engine never
// decides that on its own.
func (e *Engine) ApplyMargins(finalPrice decimal.Decimal) CommercialFields {
	return CommercialFields{
		SellingPrice: finalPrice.Round(2),
		MRP:          finalPrice.Mul(e.margins.MRPMargin).Round(2),
		CostPrice:    finalPrice.Mul(e.margins.CostMargin).Round(2),
	}
}
