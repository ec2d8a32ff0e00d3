package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nravish/kanakam-backend/internal/pricing"
)

// Metal is the precious metal a market rate applies to.
type Metal string

const (
	MetalGold     Metal = "gold"
	MetalSilver   Metal = "silver"
	MetalPlatinum Metal = "platinum"
)

// MetalRate is one market quote: currency per gram for a metal, optionally
// narrowed to a karat tier for gold. The pricing engine consumes the
// latest quote at compute time and knows nothing about refresh policy.
type MetalRate struct {
	ID          uint            `gorm:"primarykey" json:"id"`
	Metal       Metal           `gorm:"type:varchar(10);not null;index:idx_metal_purity" json:"metal"`
	Purity      pricing.Purity  `gorm:"type:varchar(4);index:idx_metal_purity" json:"purity,omitempty"` // empty for non-gold
	RatePerGram decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"rate_per_gram"`
	Source      string          `gorm:"type:varchar(100)" json:"source"`
	SourceDate  time.Time       `json:"source_date"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (MetalRate) TableName() string {
	return "metal_rates"
}

// MetalRateResponse is the API shape for one quote, with optional
// day-over-day movement.
type MetalRateResponse struct {
	Metal       Metal           `json:"metal"`
	Purity      pricing.Purity  `json:"purity,omitempty"`
	RatePerGram decimal.Decimal `json:"rate_per_gram"`
	Source      string          `json:"source"`
	SourceDate  string          `json:"source_date"`
	UpdatedAt   string          `json:"updated_at"`

	PreviousDayRate *decimal.Decimal `json:"previous_day_rate,omitempty"`
	ChangeAmount    *decimal.Decimal `json:"change_amount,omitempty"`
	ChangePercent   *decimal.Decimal `json:"change_percent,omitempty"`
}

// MetalRateHistoryItem is one point of the rate history series.
type MetalRateHistoryItem struct {
	Date        string          `json:"date"` // YYYY-MM-DD
	RatePerGram decimal.Decimal `json:"rate_per_gram"`
}
