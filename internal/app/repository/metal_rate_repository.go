package repository

import (
	"time"

	"github.com/nravish/kanakam-backend/internal/app/model"
	"github.com/nravish/kanakam-backend/internal/pricing"
	"github.com/nravish/kanakam-backend/pkg/logger"
	"gorm.io/gorm"
)

// MetalRateRepository stores market quotes.
type MetalRateRepository interface {
	Create(rate *model.MetalRate) error
	FindLatest() ([]model.MetalRate, error)
	FindLatestByMetal(metal model.Metal, purity pricing.Purity) (*model.MetalRate, error)
	FindByMetalAndDate(metal model.Metal, purity pricing.Purity, date time.Time) (*model.MetalRate, error)
	FindByMetalAndDateRange(metal model.Metal, purity pricing.Purity, startDate, endDate time.Time) ([]model.MetalRate, error)
	Update(rate *model.MetalRate) error
	Delete(id uint) error
}

type metalRateRepository struct {
	db *gorm.DB
}

func NewMetalRateRepository(db *gorm.DB) MetalRateRepository {
	return &metalRateRepository{db: db}
}

func (r *metalRateRepository) Create(rate *model.MetalRate) error {
	if err := r.db.Create(rate).Error; err != nil {
		logger.Error("Failed to create metal rate", err)
		return err
	}
	return nil
}

// FindLatest returns the newest quote for every metal/purity combination.
func (r *metalRateRepository) FindLatest() ([]model.MetalRate, error) {
	var rates []model.MetalRate

	subQuery := r.db.Model(&model.MetalRate{}).
		Select("metal, purity, MAX(source_date) as max_date").
		Group("metal, purity")

	if err := r.db.
		Joins("JOIN (?) as latest ON metal_rates.metal = latest.metal AND metal_rates.purity = latest.purity AND metal_rates.source_date = latest.max_date", subQuery).
		Order("metal_rates.metal, metal_rates.purity").
		Find(&rates).Error; err != nil {
		logger.Error("Failed to find latest metal rates", err)
		return nil, err
	}

	return rates, nil
}

func (r *metalRateRepository) FindLatestByMetal(metal model.Metal, purity pricing.Purity) (*model.MetalRate, error) {
	var rate model.MetalRate
	if err := r.db.Where("metal = ? AND purity = ?", metal, purity).
		Order("source_date DESC").
		First(&rate).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		logger.Error("Failed to find metal rate", err)
		return nil, err
	}
	return &rate, nil
}

func (r *metalRateRepository) FindByMetalAndDate(metal model.Metal, purity pricing.Purity, date time.Time) (*model.MetalRate, error) {
	var rate model.MetalRate
	startOfDay := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	endOfDay := startOfDay.Add(24 * time.Hour)

	if err := r.db.Where("metal = ? AND purity = ? AND source_date >= ? AND source_date < ?", metal, purity, startOfDay, endOfDay).
		Order("source_date DESC").
		First(&rate).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		logger.Error("Failed to find metal rate by date", err)
		return nil, err
	}
	return &rate, nil
}

func (r *metalRateRepository) FindByMetalAndDateRange(metal model.Metal, purity pricing.Purity, startDate, endDate time.Time) ([]model.MetalRate, error) {
	var rates []model.MetalRate
	if err := r.db.Where("metal = ? AND purity = ? AND source_date >= ? AND source_date <= ?", metal, purity, startDate, endDate).
		Order("source_date ASC").
		Find(&rates).Error; err != nil {
		logger.Error("Failed to find metal rates by date range", err)
		return nil, err
	}
	return rates, nil
}

func (r *metalRateRepository) Update(rate *model.MetalRate) error {
	if err := r.db.Save(rate).Error; err != nil {
		logger.Error("Failed to update metal rate", err)
		return err
	}
	return nil
}

func (r *metalRateRepository) Delete(id uint) error {
	if err := r.db.Delete(&model.MetalRate{}, id).Error; err != nil {
		logger.Error("Failed to delete metal rate", err)
		return err
	}
	return nil
}
