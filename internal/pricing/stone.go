package pricing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StoneType is the catalog of mountable stones.
type StoneType string

const (
	StoneDiamond   StoneType = "diamond"
	StoneRuby      StoneType = "ruby"
	StoneEmerald   StoneType = "emerald"
	StoneSapphire  StoneType = "sapphire"
	StonePearl     StoneType = "pearl"
	StoneAmethyst  StoneType = "amethyst"
	StoneTopaz     StoneType = "topaz"
	StoneGarnet    StoneType = "garnet"
	StoneOpal      StoneType = "opal"
	StoneTurquoise StoneType = "turquoise"
	StoneOther     StoneType = "other"
)

// ValidStoneType reports whether t is in the fixed stone catalog.
func ValidStoneType(t StoneType) bool {
	switch t {
	case StoneDiamond, StoneRuby, StoneEmerald, StoneSapphire, StonePearl,
		StoneAmethyst, StoneTopaz, StoneGarnet, StoneOpal, StoneTurquoise, StoneOther:
		return true
	default:
		return false
	}
}

// Stone is one mounted stone and its valuation. Weight is in carats, or a
// piece count for pearls. TotalValue is always weight x unit price and is
// recomputed on every weight or unit-price mutation; it is never settable
// from outside.
type Stone struct {
	ID         string
	Type       StoneType
	Quality    string
	Weight     decimal.Decimal
	UnitPrice  decimal.Decimal
	TotalValue decimal.Decimal

	// Display-only attributes; they carry no value weight.
	Color   string
	Cut     string
	Setting string
}

// StoneInput carries the caller-supplied fields for a new stone entry.
// Weight and UnitPrice default to zero when omitted.
type StoneInput struct {
	Type      StoneType
	Quality   string
	Weight    decimal.Decimal
	UnitPrice decimal.Decimal
	Color     string
	Cut       string
	Setting   string
}

// StonePatch is a partial update of one stone entry. Nil fields are left
// untouched.
type StonePatch struct {
	Type      *StoneType
	Quality   *string
	Weight    *decimal.Decimal
	UnitPrice *decimal.Decimal
	Color     *string
	Cut       *string
	Setting   *string
}

// Collection is the insertion-ordered set of stones mounted on one product.
// The zero value is an empty collection ready to use. A failed mutation
// leaves the collection exactly as it was.
type Collection struct {
	stones []Stone
}

// NewCollection builds a collection from existing entries, normalizing each
// derived total. Entries without an id are assigned one.
func NewCollection(stones ...Stone) *Collection {
	c := &Collection{stones: make([]Stone, 0, len(stones))}
	for _, s := range stones {
		if s.ID == "" {
			s.ID = uuid.New().String()
		}
		s.TotalValue = s.Weight.Mul(s.UnitPrice)
		c.stones = append(c.stones, s)
	}
	return c
}

// Add appends a new stone entry. The stored entry, including its assigned
// id and computed total, is returned for later reference by the editor.
func (c *Collection) Add(in StoneInput) (Stone, error) {
	if in.Weight.IsNegative() {
		return Stone{}, &InvalidAttributeError{Field: "weight", Reason: "must not be negative"}
	}
	if in.UnitPrice.IsNegative() {
		return Stone{}, &InvalidAttributeError{Field: "unit_price", Reason: "must not be negative"}
	}
	if in.Type == "" {
		in.Type = StoneOther
	}
	if !ValidStoneType(in.Type) {
		return Stone{}, &InvalidAttributeError{Field: "stone_type", Reason: "unknown stone type " + string(in.Type)}
	}

	stone := Stone{
		ID:         uuid.New().String(),
		Type:       in.Type,
		Quality:    in.Quality,
		Weight:     in.Weight,
		UnitPrice:  in.UnitPrice,
		TotalValue: in.Weight.Mul(in.UnitPrice),
		Color:      in.Color,
		Cut:        in.Cut,
		Setting:    in.Setting,
	}
	c.stones = append(c.stones, stone)
	return stone, nil
}

// Update applies a partial update to the entry at index. Changes to weight
// or unit price recompute the entry's total before returning; all other
// fields are stored verbatim.
func (c *Collection) Update(index int, patch StonePatch) (Stone, error) {
	if index < 0 || index >= len(c.stones) {
		return Stone{}, &IndexOutOfRangeError{Index: index, Length: len(c.stones)}
	}
	if patch.Weight != nil && patch.Weight.IsNegative() {
		return Stone{}, &InvalidAttributeError{Field: "weight", Reason: "must not be negative"}
	}
	if patch.UnitPrice != nil && patch.UnitPrice.IsNegative() {
		return Stone{}, &InvalidAttributeError{Field: "unit_price", Reason: "must not be negative"}
	}
	if patch.Type != nil && !ValidStoneType(*patch.Type) {
		return Stone{}, &InvalidAttributeError{Field: "stone_type", Reason: "unknown stone type " + string(*patch.Type)}
	}
	if patch.Quality != nil && *patch.Quality == "" {
		return Stone{}, &InvalidAttributeError{Field: "quality", Reason: "must not be empty"}
	}

	stone := c.stones[index]
	if patch.Type != nil {
		stone.Type = *patch.Type
	}
	if patch.Quality != nil {
		stone.Quality = *patch.Quality
	}
	if patch.Weight != nil {
		stone.Weight = *patch.Weight
	}
	if patch.UnitPrice != nil {
		stone.UnitPrice = *patch.UnitPrice
	}
	if patch.Color != nil {
		stone.Color = *patch.Color
	}
	if patch.Cut != nil {
		stone.Cut = *patch.Cut
	}
	if patch.Setting != nil {
		stone.Setting = *patch.Setting
	}
	stone.TotalValue = stone.Weight.Mul(stone.UnitPrice)

	c.stones[index] = stone
	return stone, nil
}

// Remove deletes the entry at index, preserving the order of the rest.
func (c *Collection) Remove(index int) error {
	if index < 0 || index >= len(c.stones) {
		return &IndexOutOfRangeError{Index: index, Length: len(c.stones)}
	}
	c.stones = append(c.stones[:index], c.stones[index+1:]...)
	return nil
}

// Len returns the number of stones in the collection.
func (c *Collection) Len() int {
	return len(c.stones)
}

// Stones returns a copy of the entries in insertion order.
func (c *Collection) Stones() []Stone {
	out := make([]Stone, len(c.stones))
	copy(out, c.stones)
	return out
}

// AggregateValue is the sum of every entry's total, rounded to paise in
// this reported form only.
func (c *Collection) AggregateValue() decimal.Decimal {
	return c.aggregate().Round(2)
}

// aggregate keeps full precision for use inside the engine.
func (c *Collection) aggregate() decimal.Decimal {
	sum := decimal.Zero
	for _, s := range c.stones {
		sum = sum.Add(s.TotalValue)
	}
	return sum
}
