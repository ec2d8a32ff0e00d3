package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/nravish/kanakam-backend/internal/app/model"
	"github.com/nravish/kanakam-backend/internal/app/repository"
	"github.com/nravish/kanakam-backend/internal/pricing"
	"github.com/nravish/kanakam-backend/pkg/logger"
)

var ErrProductNotFound = errors.New("product not found")

type ProductSort string

const (
	ProductSortPrice     ProductSort = "price"
	ProductSortCreatedAt ProductSort = "created_at"
	ProductSortName      ProductSort = "name"
)

type ProductListOptions struct {
	Category      *model.ProductCategory
	PricingMode   *pricing.Mode
	Search        string
	Sort          ProductSort
	SortAscending bool
	Limit         int
	Offset        int
}

// ProductInput is the full editable state of a product as submitted by the
// admin console. AutoPrice mirrors the editor's "dynamic pricing enabled"
// toggle: only when it is set does the engine overwrite the commercial
// fields.
type ProductInput struct {
	Name        string
	Description string
	Category    model.ProductCategory

	PricingMode         pricing.Mode
	MetalWeight         decimal.Decimal
	MetalPurity         pricing.Purity
	MakingChargePercent decimal.Decimal
	TaxPercent          *decimal.Decimal // nil -> policy default

	CostPrice    decimal.Decimal
	SellingPrice decimal.Decimal
	MRP          decimal.Decimal

	StockQuantity int
	ImageURL      string

	Stones []pricing.StoneInput

	AutoPrice bool
}

// StoneMutationResult is what the stone editing surface reads back after
// every add/update/remove: the refreshed aggregate plus, for dynamic
// products, the recomputed breakdown.
type StoneMutationResult struct {
	Stone     *pricing.Stone     `json:"stone,omitempty"`
	Aggregate decimal.Decimal    `json:"aggregate_value"`
	Breakdown *pricing.Breakdown `json:"breakdown,omitempty"`
}

type ProductService interface {
	ListProducts(opts ProductListOptions) ([]model.Product, error)
	GetProductByID(id uint) (*model.Product, error)
	CreateProduct(ctx context.Context, input ProductInput) (*model.Product, error)
	UpdateProduct(ctx context.Context, id uint, input ProductInput) (*model.Product, error)
	DeleteProduct(id uint) error
	Reprice(ctx context.Context, id uint, apply bool) (*pricing.Breakdown, *model.Product, error)
	AddStone(ctx context.Context, productID uint, in pricing.StoneInput, applyPricing bool) (*StoneMutationResult, error)
	UpdateStone(ctx context.Context, productID uint, index int, patch pricing.StonePatch, applyPricing bool) (*StoneMutationResult, error)
	RemoveStone(ctx context.Context, productID uint, index int, applyPricing bool) (*StoneMutationResult, error)
	ExportPriceList(ctx context.Context) (*excelize.File, error)
}

type productService struct {
	productRepo repository.ProductRepository
	rates       MetalRateService
	engine      *pricing.Engine
	defaultTax  decimal.Decimal
}

func NewProductService(productRepo repository.ProductRepository, rates MetalRateService, engine *pricing.Engine, defaultTax decimal.Decimal) ProductService {
	return &productService{
		productRepo: productRepo,
		rates:       rates,
		engine:      engine,
		defaultTax:  defaultTax,
	}
}

func (s *productService) ListProducts(opts ProductListOptions) ([]model.Product, error) {
	filter := repository.ProductFilter{
		Category:      opts.Category,
		PricingMode:   opts.PricingMode,
		Search:        opts.Search,
		SortAscending: opts.SortAscending,
		Limit:         opts.Limit,
		Offset:        opts.Offset,
	}
	switch opts.Sort {
	case ProductSortPrice:
		filter.SortBy = repository.ProductSortPrice
	case ProductSortName:
		filter.SortBy = repository.ProductSortName
	default:
		filter.SortBy = repository.ProductSortCreatedAt
	}

	products, err := s.productRepo.FindWithFilter(filter)
	if err != nil {
		logger.Error("Failed to list products", err)
		return nil, err
	}
	return products, nil
}

func (s *productService) GetProductByID(id uint) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		logger.Error("Failed to fetch product", err, map[string]interface{}{
			"product_id": id,
		})
		return nil, err
	}
	return product, nil
}

func (s *productService) CreateProduct(ctx context.Context, input ProductInput) (*model.Product, error) {
	product := &model.Product{}
	if err := s.applyInput(product, input); err != nil {
		return nil, err
	}

	stones := pricing.NewCollection()
	for _, in := range input.Stones {
		if _, err := stones.Add(in); err != nil {
			return nil, err
		}
	}
	product.SetStones(stones.Stones())

	if err := s.refreshAndCommit(ctx, product, stones, input.AutoPrice); err != nil {
		return nil, err
	}

	if err := s.productRepo.Create(product); err != nil {
		return nil, err
	}

	logger.Info("Product created", map[string]interface{}{
		"product_id":   product.ID,
		"name":         product.Name,
		"pricing_mode": product.PricingMode,
		"stones":       len(product.Stones),
	})
	return product, nil
}

func (s *productService) UpdateProduct(ctx context.Context, id uint, input ProductInput) (*model.Product, error) {
	product, err := s.GetProductByID(id)
	if err != nil {
		return nil, err
	}

	if err := s.applyInput(product, input); err != nil {
		return nil, err
	}

	// Stone edits flow through the stone endpoints; a product update
	// reprices against the stones already mounted.
	stones := product.StoneCollection()

	if err := s.refreshAndCommit(ctx, product, stones, input.AutoPrice); err != nil {
		return nil, err
	}

	if err := s.productRepo.Update(product); err != nil {
		return nil, err
	}

	logger.Info("Product updated", map[string]interface{}{
		"product_id":   product.ID,
		"pricing_mode": product.PricingMode,
	})
	return product, nil
}

func (s *productService) DeleteProduct(id uint) error {
	if _, err := s.GetProductByID(id); err != nil {
		return err
	}
	if err := s.productRepo.Delete(id); err != nil {
		return err
	}
	logger.Info("Product deleted", map[string]interface{}{
		"product_id": id,
	})
	return nil
}

// Reprice recomputes the breakdown from current inputs and the latest
// market rate. With apply=false it is a pure preview; with apply=true the
// commercial fields are refreshed and committed.
func (s *productService) Reprice(ctx context.Context, id uint, apply bool) (*pricing.Breakdown, *model.Product, error) {
	product, err := s.GetProductByID(id)
	if err != nil {
		return nil, nil, err
	}

	stones := product.StoneCollection()
	breakdown, err := s.computeBreakdown(ctx, product, stones)
	if err != nil {
		return nil, nil, err
	}

	if apply && product.PricingMode == pricing.ModeDynamic {
		s.applyBreakdown(product, breakdown)
		if err := s.commit(product); err != nil {
			return nil, nil, err
		}
		if err := s.productRepo.Update(product); err != nil {
			return nil, nil, err
		}
	}

	return &breakdown, product, nil
}

func (s *productService) AddStone(ctx context.Context, productID uint, in pricing.StoneInput, applyPricing bool) (*StoneMutationResult, error) {
	return s.mutateStones(ctx, productID, applyPricing, func(c *pricing.Collection) (*pricing.Stone, error) {
		stone, err := c.Add(in)
		if err != nil {
			return nil, err
		}
		return &stone, nil
	})
}

func (s *productService) UpdateStone(ctx context.Context, productID uint, index int, patch pricing.StonePatch, applyPricing bool) (*StoneMutationResult, error) {
	return s.mutateStones(ctx, productID, applyPricing, func(c *pricing.Collection) (*pricing.Stone, error) {
		stone, err := c.Update(index, patch)
		if err != nil {
			return nil, err
		}
		return &stone, nil
	})
}

func (s *productService) RemoveStone(ctx context.Context, productID uint, index int, applyPricing bool) (*StoneMutationResult, error) {
	return s.mutateStones(ctx, productID, applyPricing, func(c *pricing.Collection) (*pricing.Stone, error) {
		return nil, c.Remove(index)
	})
}

// mutateStones runs one collection mutation and persists the result. The
// mutation validates first, so a rejected change leaves both the in-memory
// collection and the stored rows untouched.
func (s *productService) mutateStones(ctx context.Context, productID uint, applyPricing bool, mutate func(*pricing.Collection) (*pricing.Stone, error)) (*StoneMutationResult, error) {
	product, err := s.GetProductByID(productID)
	if err != nil {
		return nil, err
	}

	stones := product.StoneCollection()
	stone, err := mutate(stones)
	if err != nil {
		return nil, err
	}

	product.SetStones(stones.Stones())
	if err := s.productRepo.ReplaceStones(product.ID, product.Stones); err != nil {
		return nil, err
	}

	result := &StoneMutationResult{
		Stone:     stone,
		Aggregate: stones.AggregateValue(),
	}

	// A stone mutation invalidates any previously computed breakdown, so
	// hand the editor a fresh one for dynamic products.
	if product.PricingMode == pricing.ModeDynamic {
		breakdown, err := s.computeBreakdown(ctx, product, stones)
		if err != nil {
			// Mutation already persisted; a missing market rate only
			// blocks the repricing preview.
			logger.Warn("Stone mutation saved but repricing failed", map[string]interface{}{
				"product_id": product.ID,
				"error":      err.Error(),
			})
			return result, nil
		}
		result.Breakdown = &breakdown

		if applyPricing {
			s.applyBreakdown(product, breakdown)
			if err := s.commit(product); err != nil {
				return nil, err
			}
			if err := s.productRepo.Update(product); err != nil {
				return nil, err
			}
		}
	}

	return result, nil
}

// ExportPriceList renders the current catalog with full breakdowns into an
// XLSX workbook for the storefront team.
func (s *productService) ExportPriceList(ctx context.Context) (*excelize.File, error) {
	products, err := s.productRepo.FindAll()
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	const sheet = "Price List"
	f.SetSheetName("Sheet1", sheet)

	headers := []interface{}{
		"ID", "Name", "Category", "Mode", "Weight (g)", "Purity",
		"Metal Value", "Making Charge", "Tax", "Stone Value", "Final Price", "Selling Price", "MRP",
	}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return nil, err
	}

	for i := range products {
		product := &products[i]
		stones := product.StoneCollection()

		breakdown, err := s.computeBreakdown(ctx, product, stones)
		if err != nil {
			// Products that cannot be priced right now (e.g. no market
			// quote yet) still appear with their stored figures.
			breakdown = pricing.Breakdown{
				StoneValue: stones.AggregateValue(),
				FinalPrice: product.SellingPrice,
			}
		}

		row := []interface{}{
			product.ID,
			product.Name,
			string(product.Category),
			string(product.PricingMode),
			product.MetalWeight.String(),
			string(product.MetalPurity),
			breakdown.PureMetalValue.String(),
			breakdown.MakingCharge.String(),
			breakdown.TaxAmount.String(),
			breakdown.StoneValue.String(),
			breakdown.FinalPrice.String(),
			product.SellingPrice.String(),
			product.MRP.String(),
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}

	logger.Info("Price list exported", map[string]interface{}{
		"products":    len(products),
		"exported_at": time.Now().Format(time.RFC3339),
	})
	return f, nil
}

// applyInput copies the editable fields onto the product, defaulting the
// tax percentage from policy when absent.
func (s *productService) applyInput(product *model.Product, input ProductInput) error {
	mode := input.PricingMode
	if mode == "" {
		mode = pricing.ModeFixed
	}
	if !pricing.ValidMode(mode) {
		return &pricing.InvalidAttributeError{Field: "pricing_mode", Reason: "unknown mode " + string(mode)}
	}
	if mode == pricing.ModeDynamic && !input.MetalPurity.Valid() {
		return &pricing.InvalidAttributeError{Field: "metal_purity", Reason: "unknown purity tier " + string(input.MetalPurity)}
	}

	category := input.Category
	if category == "" {
		category = model.CategoryOther
	}

	tax := s.defaultTax
	if input.TaxPercent != nil {
		tax = *input.TaxPercent
	}

	product.Name = input.Name
	product.Description = input.Description
	product.Category = category
	product.PricingMode = mode
	product.MetalWeight = input.MetalWeight
	product.MetalPurity = input.MetalPurity
	product.MakingChargePercent = input.MakingChargePercent
	product.TaxPercent = tax
	product.CostPrice = input.CostPrice
	product.SellingPrice = input.SellingPrice
	product.MRP = input.MRP
	product.StockQuantity = input.StockQuantity
	product.ImageURL = input.ImageURL
	return nil
}

// refreshAndCommit optionally reprices (dynamic + auto-apply) and then
// runs the commit validation that gates every persist.
func (s *productService) refreshAndCommit(ctx context.Context, product *model.Product, stones *pricing.Collection, autoPrice bool) error {
	if product.PricingMode == pricing.ModeDynamic && autoPrice {
		breakdown, err := s.computeBreakdown(ctx, product, stones)
		if err != nil {
			return err
		}
		s.applyBreakdown(product, breakdown)
	}
	return s.commit(product)
}

// computeBreakdown resolves the market rate (dynamic mode only) and runs
// the engine. The engine itself never performs I/O.
func (s *productService) computeBreakdown(ctx context.Context, product *model.Product, stones *pricing.Collection) (pricing.Breakdown, error) {
	var rate decimal.Decimal
	if product.PricingMode == pricing.ModeDynamic {
		r, err := s.rates.CurrentFineRate(ctx, model.MetalGold)
		if err != nil {
			return pricing.Breakdown{}, err
		}
		rate = r
	}

	return s.engine.Compute(pricing.Input{
		Mode:                product.PricingMode,
		MetalWeight:         product.MetalWeight,
		Purity:              product.MetalPurity,
		MakingChargePercent: product.MakingChargePercent,
		TaxPercent:          product.TaxPercent,
		RatePerGram:         rate,
		Stones:              stones,
		SellingPrice:        product.SellingPrice,
	})
}

func (s *productService) applyBreakdown(product *model.Product, breakdown pricing.Breakdown) {
	fields := s.engine.ApplyMargins(breakdown.FinalPrice)
	product.SellingPrice = fields.SellingPrice
	product.MRP = fields.MRP
	product.CostPrice = fields.CostPrice
}

// commit enforces the cross-field pricing invariants and keeps the display
// alias in sync. It rejects without correcting.
func (s *productService) commit(product *model.Product) error {
	err := pricing.ValidateCommit(pricing.Commercial{
		Mode:         product.PricingMode,
		MetalWeight:  product.MetalWeight,
		CostPrice:    product.CostPrice,
		SellingPrice: product.SellingPrice,
		MRP:          product.MRP,
	})
	if err != nil {
		return err
	}
	product.Price = product.SellingPrice
	return nil
}
