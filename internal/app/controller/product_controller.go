package controller

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/nravish/kanakam-backend/internal/app/model"
	"github.com/nravish/kanakam-backend/internal/app/service"
	apperrors "github.com/nravish/kanakam-backend/internal/errors"
	"github.com/nravish/kanakam-backend/internal/middleware"
	"github.com/nravish/kanakam-backend/internal/pricing"
	"github.com/nravish/kanakam-backend/pkg/logger"
)

type ProductController struct {
	productService service.ProductService
}

func NewProductController(productService service.ProductService) *ProductController {
	return &ProductController{
		productService: productService,
	}
}

type StoneRequest struct {
	Type      pricing.StoneType `json:"type"`
	Quality   string            `json:"quality"`
	Weight    decimal.Decimal   `json:"weight"`
	UnitPrice decimal.Decimal   `json:"unit_price"`
	Color     string            `json:"color"`
	Cut       string            `json:"cut"`
	Setting   string            `json:"setting"`
}

func (r StoneRequest) toInput() pricing.StoneInput {
	return pricing.StoneInput{
		Type:      r.Type,
		Quality:   r.Quality,
		Weight:    r.Weight,
		UnitPrice: r.UnitPrice,
		Color:     r.Color,
		Cut:       r.Cut,
		Setting:   r.Setting,
	}
}

type StonePatchRequest struct {
	Type      *pricing.StoneType `json:"type,omitempty"`
	Quality   *string            `json:"quality,omitempty"`
	Weight    *decimal.Decimal   `json:"weight,omitempty"`
	UnitPrice *decimal.Decimal   `json:"unit_price,omitempty"`
	Color     *string            `json:"color,omitempty"`
	Cut       *string            `json:"cut,omitempty"`
	Setting   *string            `json:"setting,omitempty"`
}

func (r StonePatchRequest) toPatch() pricing.StonePatch {
	return pricing.StonePatch{
		Type:      r.Type,
		Quality:   r.Quality,
		Weight:    r.Weight,
		UnitPrice: r.UnitPrice,
		Color:     r.Color,
		Cut:       r.Cut,
		Setting:   r.Setting,
	}
}

type SaveProductRequest struct {
	Name                string                `json:"name" binding:"required"`
	Description         string                `json:"description"`
	Category            model.ProductCategory `json:"category"`
	PricingMode         pricing.Mode          `json:"pricing_mode"`
	MetalWeight         decimal.Decimal       `json:"metal_weight"`
	MetalPurity         pricing.Purity        `json:"metal_purity"`
	MakingChargePercent decimal.Decimal       `json:"making_charge_percent"`
	TaxPercent          *decimal.Decimal      `json:"tax_percent,omitempty"`
	CostPrice           decimal.Decimal       `json:"cost_price"`
	SellingPrice        decimal.Decimal       `json:"selling_price"`
	MRP                 decimal.Decimal       `json:"mrp"`
	StockQuantity       int                   `json:"stock_quantity" binding:"gte=0"`
	ImageURL            string                `json:"image_url"`
	Stones              []StoneRequest        `json:"stones"`
	AutoPrice           bool                  `json:"auto_price"`
}

func (r SaveProductRequest) toInput() service.ProductInput {
	stones := make([]pricing.StoneInput, 0, len(r.Stones))
	for _, s := range r.Stones {
		stones = append(stones, s.toInput())
	}
	return service.ProductInput{
		Name:                r.Name,
		Description:         r.Description,
		Category:            r.Category,
		PricingMode:         r.PricingMode,
		MetalWeight:         r.MetalWeight,
		MetalPurity:         r.MetalPurity,
		MakingChargePercent: r.MakingChargePercent,
		TaxPercent:          r.TaxPercent,
		CostPrice:           r.CostPrice,
		SellingPrice:        r.SellingPrice,
		MRP:                 r.MRP,
		StockQuantity:       r.StockQuantity,
		ImageURL:            r.ImageURL,
		Stones:              stones,
		AutoPrice:           r.AutoPrice,
	}
}

// ListProducts returns the catalog with optional filters
// GET /api/v1/products
func (ctrl *ProductController) ListProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	opts := service.ProductListOptions{
		Search:        c.Query("search"),
		Sort:          service.ProductSort(c.DefaultQuery("sort", "created_at")),
		SortAscending: c.Query("order") == "asc",
	}
	if category := c.Query("category"); category != "" {
		cat := model.ProductCategory(category)
		opts.Category = &cat
	}
	if mode := c.Query("pricing_mode"); mode != "" {
		m := pricing.Mode(mode)
		if !pricing.ValidMode(m) {
			apperrors.BadRequest(c, apperrors.PricingInvalidMode, "unknown pricing mode")
			return
		}
		opts.PricingMode = &m
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "50")); err == nil {
		opts.Limit = limit
	}
	if offset, err := strconv.Atoi(c.DefaultQuery("offset", "0")); err == nil {
		opts.Offset = offset
	}

	products, err := ctrl.productService.ListProducts(opts)
	if err != nil {
		log.Error("Failed to fetch products", err, nil)
		apperrors.InternalError(c, "failed to fetch products")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
	})
}

// GetProductByID returns a product by ID
// GET /api/v1/products/:id
func (ctrl *ProductController) GetProductByID(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseID(c)
	if !ok {
		return
	}

	product, err := ctrl.productService.GetProductByID(id)
	if err != nil {
		ctrl.respondProductError(c, log, id, err, "fetch")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product": product,
	})
}

// CreateProduct creates a new product (Admin only)
// POST /api/v1/products
func (ctrl *ProductController) CreateProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req SaveProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid product creation request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	product, err := ctrl.productService.CreateProduct(c.Request.Context(), req.toInput())
	if err != nil {
		if apperrors.RespondWithPricingError(c, err) {
			return
		}
		log.Error("Failed to create product", err, map[string]interface{}{
			"name": req.Name,
		})
		apperrors.InternalError(c, "failed to create product")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Product created successfully",
		"product": product,
	})
}

// UpdateProduct updates an existing product (Admin only)
// PUT /api/v1/products/:id
func (ctrl *ProductController) UpdateProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseID(c)
	if !ok {
		return
	}

	var req SaveProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid product update request", map[string]interface{}{
			"product_id": id,
			"error":      err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	product, err := ctrl.productService.UpdateProduct(c.Request.Context(), id, req.toInput())
	if err != nil {
		if apperrors.RespondWithPricingError(c, err) {
			return
		}
		ctrl.respondProductError(c, log, id, err, "update")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product updated successfully",
		"product": product,
	})
}

// DeleteProduct deletes a product (Admin only)
// DELETE /api/v1/products/:id
func (ctrl *ProductController) DeleteProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := ctrl.productService.DeleteProduct(id); err != nil {
		ctrl.respondProductError(c, log, id, err, "delete")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product deleted successfully",
	})
}

// Reprice recomputes the price breakdown. With ?apply=true the commercial
// fields are refreshed and saved; otherwise this is a pure preview.
// POST /api/v1/products/:id/reprice
func (ctrl *ProductController) Reprice(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseID(c)
	if !ok {
		return
	}
	apply := c.Query("apply") == "true"

	breakdown, product, err := ctrl.productService.Reprice(c.Request.Context(), id, apply)
	if err != nil {
		if apperrors.RespondWithPricingError(c, err) {
			return
		}
		if err == service.ErrRateNotFound {
			apperrors.UnprocessableEntity(c, apperrors.RateNotFound, "no market rate available yet")
			return
		}
		ctrl.respondProductError(c, log, id, err, "reprice")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"breakdown": breakdown,
		"applied":   apply,
		"product":   product,
	})
}

// AddStone mounts a new stone on the product (Admin only)
// POST /api/v1/products/:id/stones
func (ctrl *ProductController) AddStone(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseID(c)
	if !ok {
		return
	}

	var req StoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	result, err := ctrl.productService.AddStone(c.Request.Context(), id, req.toInput(), c.Query("apply") == "true")
	if err != nil {
		if apperrors.RespondWithPricingError(c, err) {
			return
		}
		ctrl.respondProductError(c, log, id, err, "add stone to")
		return
	}

	c.JSON(http.StatusCreated, result)
}

// UpdateStone partially updates the stone at the given index (Admin only)
// PATCH /api/v1/products/:id/stones/:index
func (ctrl *ProductController) UpdateStone(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseID(c)
	if !ok {
		return
	}
	index, ok := parseStoneIndex(c)
	if !ok {
		return
	}

	var req StonePatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	result, err := ctrl.productService.UpdateStone(c.Request.Context(), id, index, req.toPatch(), c.Query("apply") == "true")
	if err != nil {
		if apperrors.RespondWithPricingError(c, err) {
			return
		}
		ctrl.respondProductError(c, log, id, err, "update stone on")
		return
	}

	c.JSON(http.StatusOK, result)
}

// RemoveStone unmounts the stone at the given index (Admin only)
// DELETE /api/v1/products/:id/stones/:index
func (ctrl *ProductController) RemoveStone(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseID(c)
	if !ok {
		return
	}
	index, ok := parseStoneIndex(c)
	if !ok {
		return
	}

	result, err := ctrl.productService.RemoveStone(c.Request.Context(), id, index, c.Query("apply") == "true")
	if err != nil {
		if apperrors.RespondWithPricingError(c, err) {
			return
		}
		ctrl.respondProductError(c, log, id, err, "remove stone from")
		return
	}

	c.JSON(http.StatusOK, result)
}

// ExportPriceList streams the catalog as an XLSX workbook (Admin only)
// GET /api/v1/products/export
func (ctrl *ProductController) ExportPriceList(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	file, err := ctrl.productService.ExportPriceList(c.Request.Context())
	if err != nil {
		log.Error("Failed to export price list", err, nil)
		apperrors.InternalError(c, "failed to export price list")
		return
	}
	defer file.Close()

	filename := fmt.Sprintf("price-list-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename="+filename)

	if err := file.Write(c.Writer); err != nil {
		log.Error("Failed to stream price list", err, nil)
	}
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "invalid product ID")
		return 0, false
	}
	return uint(id), true
}

func parseStoneIndex(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "invalid stone index")
		return 0, false
	}
	return index, true
}

func (ctrl *ProductController) respondProductError(c *gin.Context, log *logger.Logger, id uint, err error, action string) {
	if err == service.ErrProductNotFound {
		log.Warn("Product not found", map[string]interface{}{
			"product_id": id,
		})
		apperrors.NotFound(c, apperrors.ProductNotFound, "product not found")
		return
	}
	log.Error("Failed to "+action+" product", err, map[string]interface{}{
		"product_id": id,
	})
	apperrors.InternalError(c, "failed to "+action+" product")
}
