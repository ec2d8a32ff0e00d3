package repository

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nravish/kanakam-backend/internal/app/model"
	"github.com/nravish/kanakam-backend/internal/db"
	"github.com/nravish/kanakam-backend/internal/pricing"
)

func setupProductTest(t *testing.T) (*gorm.DB, ProductRepository) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	repo := NewProductRepository(testDB)
	return testDB, repo
}

func bandProduct(name string, selling string) *model.Product {
	return &model.Product{
		Name:         name,
		Category:     model.CategoryRing,
		PricingMode:  pricing.ModeFixed,
		CostPrice:    decimal.RequireFromString("3000"),
		SellingPrice: decimal.RequireFromString(selling),
		MRP:          decimal.RequireFromString("99999"),
		Price:        decimal.RequireFromString(selling),
	}
}

func TestProductRepository_Create(t *testing.T) {
	_, repo := setupProductTest(t)

	product := bandProduct("Plain Band", "5000")
	err := repo.Create(product)
	assert.NoError(t, err)
	assert.NotZero(t, product.ID)
}

func TestProductRepository_FindByID_NotFound(t *testing.T) {
	_, repo := setupProductTest(t)

	_, err := repo.FindByID(9999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestProductRepository_FindWithFilter(t *testing.T) {
	_, repo := setupProductTest(t)

	ring := bandProduct("Plain Band", "5000")
	require.NoError(t, repo.Create(ring))

	chain := bandProduct("Rope Chain", "9000")
	chain.Category = model.CategoryChain
	chain.PricingMode = pricing.ModeDynamic
	chain.MetalWeight = decimal.RequireFromString("8")
	chain.MetalPurity = pricing.Purity22K
	require.NoError(t, repo.Create(chain))

	category := model.CategoryChain
	byCategory, err := repo.FindWithFilter(ProductFilter{Category: &category})
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
	assert.Equal(t, "Rope Chain", byCategory[0].Name)

	mode := pricing.ModeFixed
	byMode, err := repo.FindWithFilter(ProductFilter{PricingMode: &mode})
	require.NoError(t, err)
	require.Len(t, byMode, 1)
	assert.Equal(t, "Plain Band", byMode[0].Name)

	byPrice, err := repo.FindWithFilter(ProductFilter{SortBy: ProductSortPrice, SortAscending: true})
	require.NoError(t, err)
	require.Len(t, byPrice, 2)
	assert.Equal(t, "Plain Band", byPrice[0].Name)
}

func TestProductRepository_ReplaceStones(t *testing.T) {
	_, repo := setupProductTest(t)

	product := bandProduct("Plain Band", "5000")
	require.NoError(t, repo.Create(product))

	stones := []model.Stone{
		{
			ID:         uuid.New().String(),
			ProductID:  product.ID,
			Position:   0,
			Type:       pricing.StoneDiamond,
			Weight:     decimal.RequireFromString("0.5"),
			UnitPrice:  decimal.RequireFromString("40000"),
			TotalValue: decimal.RequireFromString("20000"),
		},
		{
			ID:         uuid.New().String(),
			ProductID:  product.ID,
			Position:   1,
			Type:       pricing.StoneRuby,
			Weight:     decimal.RequireFromString("1.2"),
			UnitPrice:  decimal.RequireFromString("5000"),
			TotalValue: decimal.RequireFromString("6000"),
		},
	}
	require.NoError(t, repo.ReplaceStones(product.ID, stones))

	found, err := repo.FindByID(product.ID)
	require.NoError(t, err)
	require.Len(t, found.Stones, 2)
	assert.Equal(t, pricing.StoneDiamond, found.Stones[0].Type)
	assert.Equal(t, pricing.StoneRuby, found.Stones[1].Type)

	// Replacing with an empty set clears the rows.
	require.NoError(t, repo.ReplaceStones(product.ID, nil))

	found, err = repo.FindByID(product.ID)
	require.NoError(t, err)
	assert.Len(t, found.Stones, 0)
}

func TestProductRepository_UpdateLeavesStonesAlone(t *testing.T) {
	_, repo := setupProductTest(t)

	product := bandProduct("Plain Band", "5000")
	require.NoError(t, repo.Create(product))
	require.NoError(t, repo.ReplaceStones(product.ID, []model.Stone{{
		ID:         uuid.New().String(),
		ProductID:  product.ID,
		Type:       pricing.StoneDiamond,
		Weight:     decimal.RequireFromString("0.5"),
		UnitPrice:  decimal.RequireFromString("40000"),
		TotalValue: decimal.RequireFromString("20000"),
	}}))

	found, err := repo.FindByID(product.ID)
	require.NoError(t, err)

	found.Name = "Renamed Band"
	found.Stones = nil // scalar update must not touch stone rows
	require.NoError(t, repo.Update(found))

	reloaded, err := repo.FindByID(product.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed Band", reloaded.Name)
	assert.Len(t, reloaded.Stones, 1)
}

func TestProductRepository_Delete(t *testing.T) {
	_, repo := setupProductTest(t)

	product := bandProduct("Plain Band", "5000")
	require.NoError(t, repo.Create(product))

	require.NoError(t, repo.Delete(product.ID))

	_, err := repo.FindByID(product.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
