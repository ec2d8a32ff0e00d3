package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/nravish/kanakam-backend/internal/pricing"
)

// Stone is one mounted stone row. TotalValue is derived (weight x unit
// price) and persisted only for display and reporting queries; the engine
// re-derives it on load and never trusts the stored value.
type Stone struct {
	ID        string            `gorm:"type:varchar(36);primarykey" json:"id"`
	ProductID uint              `gorm:"index;not null" json:"product_id"`
	Position  int               `gorm:"not null" json:"position"` // insertion order, display only
	Type      pricing.StoneType `gorm:"type:varchar(20);not null" json:"type"`
	Quality   string            `gorm:"type:varchar(50)" json:"quality"`

	Weight     decimal.Decimal `gorm:"type:numeric(10,3)" json:"weight"` // carats; pieces for pearls
	UnitPrice  decimal.Decimal `gorm:"type:numeric(14,2)" json:"unit_price"`
	TotalValue decimal.Decimal `gorm:"type:numeric(14,2)" json:"total_value"`

	// Display/audit only, no effect on value.
	Color   string `gorm:"type:varchar(50)" json:"color,omitempty"`
	Cut     string `gorm:"type:varchar(50)" json:"cut,omitempty"`
	Setting string `gorm:"type:varchar(50)" json:"setting,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Stone) TableName() string {
	return "stones"
}

func (s Stone) toPricing() pricing.Stone {
	return pricing.Stone{
		ID:        s.ID,
		Type:      s.Type,
		Quality:   s.Quality,
		Weight:    s.Weight,
		UnitPrice: s.UnitPrice,
		Color:     s.Color,
		Cut:       s.Cut,
		Setting:   s.Setting,
	}
}

func stoneRowFrom(productID uint, position int, s pricing.Stone) Stone {
	return Stone{
		ID:         s.ID,
		ProductID:  productID,
		Position:   position,
		Type:       s.Type,
		Quality:    s.Quality,
		Weight:     s.Weight,
		UnitPrice:  s.UnitPrice,
		TotalValue: s.TotalValue,
		Color:      s.Color,
		Cut:        s.Cut,
		Setting:    s.Setting,
	}
}
