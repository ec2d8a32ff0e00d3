package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nravish/kanakam-backend/internal/app/model"
	"github.com/nravish/kanakam-backend/internal/app/repository"
	"github.com/nravish/kanakam-backend/internal/db"
	"github.com/nravish/kanakam-backend/internal/pricing"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	return decimal.RequireFromString(s)
}

func setupProductServiceTest(t *testing.T) (ProductService, MetalRateService) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	productRepo := repository.NewProductRepository(testDB)
	rateRepo := repository.NewMetalRateRepository(testDB)
	rateService := NewMetalRateService(rateRepo, nil, time.Minute)
	engine := pricing.NewEngine(pricing.DefaultMarginPolicy())

	return NewProductService(productRepo, rateService, engine, decimal.RequireFromString("3")), rateService
}

func seedGoldRate(t *testing.T, rates MetalRateService, perGram string) {
	t.Helper()
	err := rates.UpsertRate(context.Background(), &model.MetalRate{
		Metal:       model.MetalGold,
		Purity:      pricing.Purity24K,
		RatePerGram: decimal.RequireFromString(perGram),
		Source:      "Manual",
	})
	require.NoError(t, err)
}

func fixedProductInput() ProductInput {
	return ProductInput{
		Name:         "Plain Band",
		Category:     model.CategoryRing,
		PricingMode:  pricing.ModeFixed,
		CostPrice:    decimal.RequireFromString("3000"),
		SellingPrice: decimal.RequireFromString("5000"),
		MRP:          decimal.RequireFromString("6000"),
	}
}

func TestProductService_CreateProduct_Fixed(t *testing.T) {
	productService, _ := setupProductServiceTest(t)

	product, err := productService.CreateProduct(context.Background(), fixedProductInput())
	require.NoError(t, err)
	assert.NotZero(t, product.ID)
	assert.Equal(t, pricing.ModeFixed, product.PricingMode)
	assert.True(t, product.Price.Equal(product.SellingPrice))
}

func TestProductService_CreateProduct_DynamicAutoPrice(t *testing.T) {
	productService, rateService := setupProductServiceTest(t)
	seedGoldRate(t, rateService, "7000")

	input := ProductInput{
		Name:                "Heritage Bangle",
		Category:            model.CategoryBangle,
		PricingMode:         pricing.ModeDynamic,
		MetalWeight:         dec(t, "10"),
		MetalPurity:         pricing.Purity22K,
		MakingChargePercent: dec(t, "10"),
		AutoPrice:           true,
	}

	product, err := productService.CreateProduct(context.Background(), input)
	require.NoError(t, err)

	// 10g x 0.917 x 7000 = 64190; +10% making = 70609; +3% tax = 72727.27
	assert.Equal(t, "72727.27", product.SellingPrice.String())
	assert.Equal(t, "80000", product.MRP.String())
	assert.Equal(t, "50909.09", product.CostPrice.String())
	assert.True(t, product.Price.Equal(product.SellingPrice))
	assert.Equal(t, "3", product.TaxPercent.String())
}

func TestProductService_CreateProduct_DynamicRequiresWeight(t *testing.T) {
	productService, _ := setupProductServiceTest(t)

	input := fixedProductInput()
	input.PricingMode = pricing.ModeDynamic
	input.MetalPurity = pricing.Purity22K

	_, err := productService.CreateProduct(context.Background(), input)
	var missing *pricing.MissingAttributeError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "metal_weight", missing.Field)
}

func TestProductService_CreateProduct_PriceInversionRejected(t *testing.T) {
	productService, _ := setupProductServiceTest(t)

	input := fixedProductInput()
	input.MRP = dec(t, "4000") // below selling

	_, err := productService.CreateProduct(context.Background(), input)
	var inversion *pricing.PriceInversionError
	assert.ErrorAs(t, err, &inversion)
}

func TestProductService_UpdateProduct(t *testing.T) {
	productService, _ := setupProductServiceTest(t)

	product, err := productService.CreateProduct(context.Background(), fixedProductInput())
	require.NoError(t, err)

	input := fixedProductInput()
	input.Name = "Plain Band v2"
	input.SellingPrice = dec(t, "5500")
	input.StockQuantity = 7

	updated, err := productService.UpdateProduct(context.Background(), product.ID, input)
	require.NoError(t, err)
	assert.Equal(t, "Plain Band v2", updated.Name)
	assert.Equal(t, "5500", updated.SellingPrice.String())
	assert.Equal(t, 7, updated.StockQuantity)

	reloaded, err := productService.GetProductByID(product.ID)
	require.NoError(t, err)
	assert.Equal(t, "Plain Band v2", reloaded.Name)
}

func TestProductService_UpdateProduct_NotFound(t *testing.T) {
	productService, _ := setupProductServiceTest(t)

	_, err := productService.UpdateProduct(context.Background(), 9999, fixedProductInput())
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestProductService_DeleteProduct(t *testing.T) {
	productService, _ := setupProductServiceTest(t)

	product, err := productService.CreateProduct(context.Background(), fixedProductInput())
	require.NoError(t, err)

	require.NoError(t, productService.DeleteProduct(product.ID))

	_, err = productService.GetProductByID(product.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestProductService_DeleteProduct_NotFound(t *testing.T) {
	productService, _ := setupProductServiceTest(t)

	err := productService.DeleteProduct(9999)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestProductService_StoneLifecycle(t *testing.T) {
	productService, _ := setupProductServiceTest(t)
	ctx := context.Background()

	product, err := productService.CreateProduct(ctx, fixedProductInput())
	require.NoError(t, err)

	added, err := productService.AddStone(ctx, product.ID, pricing.StoneInput{
		Type:      pricing.StoneDiamond,
		Quality:   "VS1",
		Weight:    dec(t, "0.5"),
		UnitPrice: dec(t, "40000"),
	}, false)
	require.NoError(t, err)
	assert.Equal(t, "20000", added.Stone.TotalValue.String())
	assert.Equal(t, "20000", added.Aggregate.String())

	_, err = productService.AddStone(ctx, product.ID, pricing.StoneInput{
		Type:      pricing.StoneRuby,
		Weight:    dec(t, "1.2"),
		UnitPrice: dec(t, "5000"),
	}, false)
	require.NoError(t, err)

	// Patch the ruby's weight; total re-derives.
	newWeight := dec(t, "2")
	patched, err := productService.UpdateStone(ctx, product.ID, 1, pricing.StonePatch{Weight: &newWeight}, false)
	require.NoError(t, err)
	assert.Equal(t, "10000", patched.Stone.TotalValue.String())
	assert.Equal(t, "30000", patched.Aggregate.String())

	// Rows survive a reload in insertion order.
	reloaded, err := productService.GetProductByID(product.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Stones, 2)
	assert.Equal(t, pricing.StoneDiamond, reloaded.Stones[0].Type)
	assert.Equal(t, pricing.StoneRuby, reloaded.Stones[1].Type)

	removed, err := productService.RemoveStone(ctx, product.ID, 0, false)
	require.NoError(t, err)
	assert.Equal(t, "10000", removed.Aggregate.String())

	reloaded, err = productService.GetProductByID(product.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Stones, 1)
	assert.Equal(t, pricing.StoneRuby, reloaded.Stones[0].Type)
}

func TestProductService_StoneMutation_OutOfRange(t *testing.T) {
	productService, _ := setupProductServiceTest(t)
	ctx := context.Background()

	product, err := productService.CreateProduct(ctx, fixedProductInput())
	require.NoError(t, err)

	w := dec(t, "1")
	_, err = productService.UpdateStone(ctx, product.ID, 5, pricing.StonePatch{Weight: &w}, false)
	var oor *pricing.IndexOutOfRangeError
	require.ErrorAs(t, err, &oor)
	assert.Equal(t, 5, oor.Index)

	_, err = productService.RemoveStone(ctx, product.ID, 0, false)
	assert.ErrorAs(t, err, &oor)
}

func TestProductService_Reprice_PreviewAndApply(t *testing.T) {
	productService, rateService := setupProductServiceTest(t)
	seedGoldRate(t, rateService, "7000")
	ctx := context.Background()

	input := ProductInput{
		Name:                "Temple Chain",
		Category:            model.CategoryChain,
		PricingMode:         pricing.ModeDynamic,
		MetalWeight:         dec(t, "10"),
		MetalPurity:         pricing.Purity22K,
		MakingChargePercent: dec(t, "10"),
		CostPrice:           dec(t, "40000"),
		SellingPrice:        dec(t, "60000"),
		MRP:                 dec(t, "70000"),
	}
	product, err := productService.CreateProduct(ctx, input)
	require.NoError(t, err)

	// Preview leaves the stored fields alone.
	breakdown, _, err := productService.Reprice(ctx, product.ID, false)
	require.NoError(t, err)
	assert.Equal(t, "72727.27", breakdown.FinalPrice.String())

	reloaded, err := productService.GetProductByID(product.ID)
	require.NoError(t, err)
	assert.Equal(t, "60000", reloaded.SellingPrice.String())

	// Apply commits the computed figures.
	_, applied, err := productService.Reprice(ctx, product.ID, true)
	require.NoError(t, err)
	assert.Equal(t, "72727.27", applied.SellingPrice.String())

	reloaded, err = productService.GetProductByID(product.ID)
	require.NoError(t, err)
	assert.Equal(t, "72727.27", reloaded.SellingPrice.String())
	assert.Equal(t, "80000", reloaded.MRP.String())
}

func TestProductService_Reprice_NoRate(t *testing.T) {
	productService, _ := setupProductServiceTest(t)
	ctx := context.Background()

	input := ProductInput{
		Name:                "Temple Chain",
		Category:            model.CategoryChain,
		PricingMode:         pricing.ModeDynamic,
		MetalWeight:         dec(t, "10"),
		MetalPurity:         pricing.Purity22K,
		MakingChargePercent: dec(t, "10"),
		CostPrice:           dec(t, "40000"),
		SellingPrice:        dec(t, "60000"),
		MRP:                 dec(t, "70000"),
	}
	product, err := productService.CreateProduct(ctx, input)
	require.NoError(t, err)

	_, _, err = productService.Reprice(ctx, product.ID, false)
	assert.ErrorIs(t, err, ErrRateNotFound)
}

func TestProductService_StoneMutation_TriggersRepricing(t *testing.T) {
	productService, rateService := setupProductServiceTest(t)
	seedGoldRate(t, rateService, "7000")
	ctx := context.Background()

	input := ProductInput{
		Name:                "Heritage Bangle",
		Category:            model.CategoryBangle,
		PricingMode:         pricing.ModeDynamic,
		MetalWeight:         dec(t, "10"),
		MetalPurity:         pricing.Purity22K,
		MakingChargePercent: dec(t, "10"),
		AutoPrice:           true,
	}
	product, err := productService.CreateProduct(ctx, input)
	require.NoError(t, err)
	require.Equal(t, "72727.27", product.SellingPrice.String())

	result, err := productService.AddStone(ctx, product.ID, pricing.StoneInput{
		Type:      pricing.StoneDiamond,
		Weight:    dec(t, "0.5"),
		UnitPrice: dec(t, "40000"),
	}, true)
	require.NoError(t, err)
	require.NotNil(t, result.Breakdown)
	assert.Equal(t, "92727.27", result.Breakdown.FinalPrice.String())

	reloaded, err := productService.GetProductByID(product.ID)
	require.NoError(t, err)
	assert.Equal(t, "92727.27", reloaded.SellingPrice.String())
	assert.Equal(t, "102000", reloaded.MRP.String())
	assert.Equal(t, "64909.09", reloaded.CostPrice.String())
}
