package controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/nravish/kanakam-backend/internal/app/model"
	"github.com/nravish/kanakam-backend/internal/app/service"
	apperrors "github.com/nravish/kanakam-backend/internal/errors"
	"github.com/nravish/kanakam-backend/internal/middleware"
	"github.com/nravish/kanakam-backend/internal/pricing"
)

type MetalRateController struct {
	rateService service.MetalRateService
}

func NewMetalRateController(rateService service.MetalRateService) *MetalRateController {
	return &MetalRateController{
		rateService: rateService,
	}
}

type UpsertRateRequest struct {
	Metal       model.Metal     `json:"metal" binding:"required"`
	Purity      pricing.Purity  `json:"purity"`
	RatePerGram decimal.Decimal `json:"rate_per_gram" binding:"required"`
	Source      string          `json:"source"`
	SourceDate  string          `json:"source_date"` // RFC3339, defaults to now
}

// GetLatestRates returns the latest quote per metal/purity pair
// GET /api/v1/rates/latest
func (ctrl *MetalRateController) GetLatestRates(c *gin.Context) {
	rates, err := ctrl.rateService.GetLatestRates()
	if err != nil {
		apperrors.InternalError(c, "failed to fetch metal rates")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"rates": rates,
		"count": len(rates),
	})
}

// GetRateByMetal returns the latest quote for one metal
// GET /api/v1/rates/:metal
func (ctrl *MetalRateController) GetRateByMetal(c *gin.Context) {
	metal := model.Metal(c.Param("metal"))
	if !isValidMetal(metal) {
		apperrors.BadRequest(c, apperrors.RateInvalidType, "unknown metal")
		return
	}

	purity := pricing.Purity(c.Query("purity"))
	if purity != "" && !purity.Valid() {
		apperrors.BadRequest(c, apperrors.RateInvalidType, "unknown purity tier")
		return
	}

	rate, err := ctrl.rateService.GetRateByMetal(metal, purity)
	if err != nil {
		if errors.Is(err, service.ErrRateNotFound) {
			apperrors.NotFound(c, apperrors.RateNotFound, "no rate recorded for this metal")
			return
		}
		apperrors.InternalError(c, "failed to fetch metal rate")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"rate": rate,
	})
}

// GetRateHistory returns past quotes for charting
// GET /api/v1/rates/:metal/history?period=1m
func (ctrl *MetalRateController) GetRateHistory(c *gin.Context) {
	metal := model.Metal(c.Param("metal"))
	if !isValidMetal(metal) {
		apperrors.BadRequest(c, apperrors.RateInvalidType, "unknown metal")
		return
	}

	purity := pricing.Purity(c.Query("purity"))
	period := c.DefaultQuery("period", "1m")

	history, err := ctrl.rateService.GetRateHistory(metal, purity, period)
	if err != nil {
		apperrors.InternalError(c, "failed to fetch rate history")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"metal":   metal,
		"period":  period,
		"history": history,
	})
}

// UpsertRate records a manual quote (Admin only)
// POST /api/v1/rates
func (ctrl *MetalRateController) UpsertRate(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req UpsertRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	if !isValidMetal(req.Metal) {
		apperrors.BadRequest(c, apperrors.RateInvalidType, "unknown metal")
		return
	}
	if req.Purity != "" && !req.Purity.Valid() {
		apperrors.BadRequest(c, apperrors.RateInvalidType, "unknown purity tier")
		return
	}

	rate := &model.MetalRate{
		Metal:       req.Metal,
		Purity:      req.Purity,
		RatePerGram: req.RatePerGram,
		Source:      req.Source,
	}
	if req.SourceDate != "" {
		parsed, err := time.Parse(time.RFC3339, req.SourceDate)
		if err != nil {
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "source_date must be RFC3339")
			return
		}
		rate.SourceDate = parsed
	}

	if err := ctrl.rateService.UpsertRate(c.Request.Context(), rate); err != nil {
		if errors.Is(err, service.ErrNegativeRateQuote) {
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
			return
		}
		log.Error("Failed to save metal rate", err, nil)
		apperrors.InternalError(c, "failed to save metal rate")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Rate recorded successfully",
		"rate":    rate,
	})
}

// RefreshFromFeed pulls the latest quotes from the external feed (Admin only)
// POST /api/v1/rates/refresh
func (ctrl *MetalRateController) RefreshFromFeed(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	if err := ctrl.rateService.RefreshFromFeed(); err != nil {
		log.Error("Rate feed refresh failed", err, nil)
		apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.InternalExternalAPI, "failed to refresh rates from the external feed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Rates refreshed successfully",
	})
}

func isValidMetal(metal model.Metal) bool {
	switch metal {
	case model.MetalGold, model.MetalSilver, model.MetalPlatinum:
		return true
	default:
		return false
	}
}
