package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nravish/kanakam-backend/internal/pricing"
)

type ProductCategory string

const (
	CategoryRing     ProductCategory = "ring"
	CategoryNecklace ProductCategory = "necklace"
	CategoryEarring  ProductCategory = "earring"
	CategoryBangle   ProductCategory = "bangle"
	CategoryChain    ProductCategory = "chain"
	CategoryPendant  ProductCategory = "pendant"
	CategoryOther    ProductCategory = "other"
)

// Product is one catalog item. Commercial fields are operator-entered in
// fixed mode; in dynamic mode the pricing engine overwrites them from the
// physical attributes and the market rate.
type Product struct {
	ID          uint            `gorm:"primarykey" json:"id"`
	Name        string          `gorm:"not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Category    ProductCategory `gorm:"type:varchar(50)" json:"category"`

	PricingMode pricing.Mode `gorm:"type:varchar(10);not null;default:'fixed'" json:"pricing_mode"`

	// Physical attributes, meaningful only in dynamic mode.
	MetalWeight         decimal.Decimal `gorm:"type:numeric(10,3)" json:"metal_weight"` // grams
	MetalPurity         pricing.Purity  `gorm:"type:varchar(4)" json:"metal_purity"`
	MakingChargePercent decimal.Decimal `gorm:"type:numeric(5,2)" json:"making_charge_percent"`
	TaxPercent          decimal.Decimal `gorm:"type:numeric(5,2)" json:"tax_percent"`

	// Commercial fields, invariant cost <= selling <= mrp at commit.
	CostPrice    decimal.Decimal `gorm:"type:numeric(14,2)" json:"cost_price"`
	SellingPrice decimal.Decimal `gorm:"type:numeric(14,2)" json:"selling_price"`
	MRP          decimal.Decimal `gorm:"type:numeric(14,2)" json:"mrp"`
	// Price is a display alias kept equal to SellingPrice.
	Price decimal.Decimal `gorm:"type:numeric(14,2)" json:"price"`

	StockQuantity int    `gorm:"default:0" json:"stock_quantity"`
	ImageURL      string `json:"image_url"`

	Stones []Stone `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"stones"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Product) TableName() string {
	return "products"
}

// StoneCollection loads the persisted stone rows into the engine's ordered
// collection, in stored position order.
func (p *Product) StoneCollection() *pricing.Collection {
	stones := make([]pricing.Stone, 0, len(p.Stones))
	for _, s := range p.Stones {
		stones = append(stones, s.toPricing())
	}
	return pricing.NewCollection(stones...)
}

// SetStones replaces the product's stone rows from collection entries,
// reassigning positions to match insertion order.
func (p *Product) SetStones(stones []pricing.Stone) {
	rows := make([]Stone, 0, len(stones))
	for i, s := range stones {
		rows = append(rows, stoneRowFrom(p.ID, i, s))
	}
	p.Stones = rows
}
