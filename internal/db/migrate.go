package db

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/nravish/kanakam-backend/internal/app/model"
	"github.com/nravish/kanakam-backend/internal/pricing"
	"github.com/nravish/kanakam-backend/pkg/logger"
)

// Migrate runs database migrations
func Migrate() error {
	logger.Info("Running database migrations...")

	models := []interface{}{
		&model.Product{},
		&model.Stone{},
		&model.MetalRate{},
	}

	if err := DB.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	if err := seedInitialData(); err != nil {
		logger.Error("Failed to seed initial data during migration", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// Seed adds initial data to the database (optional)
func Seed() error {
	return seedInitialData()
}

func seedInitialData() error {
	logger.Info("Seeding initial data...")

	if err := seedMetalRates(); err != nil {
		logger.Error("Failed to seed metal rates", err)
		return err
	}

	logger.Info("Initial data seeded successfully")
	return nil
}

// seedMetalRates installs a starter set of gold quotes so dynamic pricing
// works before the first feed refresh.
func seedMetalRates() error {
	var count int64
	if err := DB.Model(&model.MetalRate{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		logger.Info("Metal rates already seeded, skipping...", map[string]interface{}{
			"existing_count": count,
		})
		return nil
	}

	logger.Info("Seeding starter metal rates...")

	now := time.Now()
	rates := []model.MetalRate{
		{Metal: model.MetalGold, Purity: pricing.Purity24K, RatePerGram: decimal.RequireFromString("7400.00"), Source: "Seed", SourceDate: now},
		{Metal: model.MetalGold, Purity: pricing.Purity22K, RatePerGram: decimal.RequireFromString("6785.80"), Source: "Seed", SourceDate: now},
		{Metal: model.MetalGold, Purity: pricing.Purity18K, RatePerGram: decimal.RequireFromString("5550.00"), Source: "Seed", SourceDate: now},
		{Metal: model.MetalGold, Purity: pricing.Purity14K, RatePerGram: decimal.RequireFromString("4314.20"), Source: "Seed", SourceDate: now},
		{Metal: model.MetalSilver, Purity: "", RatePerGram: decimal.RequireFromString("92.50"), Source: "Seed", SourceDate: now},
	}

	for _, rate := range rates {
		if err := DB.Create(&rate).Error; err != nil {
			logger.Error("Failed to create metal rate", err, map[string]interface{}{
				"metal":  rate.Metal,
				"purity": rate.Purity,
			})
			return err
		}
	}

	logger.Info("Metal rates seeded successfully", map[string]interface{}{
		"total_records": len(rates),
	})
	return nil
}
