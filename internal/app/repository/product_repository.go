package repository

import (
	"github.com/nravish/kanakam-backend/internal/app/model"
	"github.com/nravish/kanakam-backend/internal/pricing"
	"github.com/nravish/kanakam-backend/pkg/logger"
	"gorm.io/gorm"
)

type ProductSort string

const (
	ProductSortPrice     ProductSort = "price"
	ProductSortCreatedAt ProductSort = "created_at"
	ProductSortName      ProductSort = "name"
)

type ProductFilter struct {
	Category      *model.ProductCategory
	PricingMode   *pricing.Mode
	Search        string
	SortBy        ProductSort
	SortAscending bool
	Limit         int
	Offset        int
}

type ProductRepository interface {
	Create(product *model.Product) error
	FindAll() ([]model.Product, error)
	FindWithFilter(filter ProductFilter) ([]model.Product, error)
	FindByID(id uint) (*model.Product, error)
	Update(product *model.Product) error
	ReplaceStones(productID uint, stones []model.Stone) error
	Delete(id uint) error
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(product *model.Product) error {
	if err := r.db.Create(product).Error; err != nil {
		logger.Error("Failed to create product in database", err, map[string]interface{}{
			"name":     product.Name,
			"category": product.Category,
		})
		return err
	}
	return nil
}

func (r *productRepository) baseQuery() *gorm.DB {
	// Stones always load in stored position order so the editing surface
	// sees stable indices.
	return r.db.Model(&model.Product{}).
		Preload("Stones", func(db *gorm.DB) *gorm.DB {
			return db.Order("stones.position ASC")
		})
}

func (r *productRepository) FindAll() ([]model.Product, error) {
	return r.FindWithFilter(ProductFilter{})
}

func (r *productRepository) FindWithFilter(filter ProductFilter) ([]model.Product, error) {
	query := r.baseQuery()

	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
	}
	if filter.PricingMode != nil {
		query = query.Where("pricing_mode = ?", *filter.PricingMode)
	}
	if filter.Search != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Search+"%")
	}

	direction := "DESC"
	if filter.SortAscending {
		direction = "ASC"
	}
	switch filter.SortBy {
	case ProductSortPrice:
		query = query.Order("selling_price " + direction)
	case ProductSortName:
		query = query.Order("name " + direction)
	default:
		query = query.Order("created_at " + direction)
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var products []model.Product
	if err := query.Find(&products).Error; err != nil {
		logger.Error("Failed to find products with filter", err)
		return nil, err
	}
	return products, nil
}

func (r *productRepository) FindByID(id uint) (*model.Product, error) {
	var product model.Product
	if err := r.baseQuery().First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// Update persists the product's scalar fields. Stone rows are managed
// separately through ReplaceStones so a failed stone mutation can never
// leave a half-written collection.
func (r *productRepository) Update(product *model.Product) error {
	if err := r.db.Omit("Stones").Save(product).Error; err != nil {
		logger.Error("Failed to update product in database", err, map[string]interface{}{
			"product_id": product.ID,
		})
		return err
	}
	return nil
}

// ReplaceStones swaps the product's stone rows for the given set inside
// one transaction.
func (r *productRepository) ReplaceStones(productID uint, stones []model.Stone) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", productID).Delete(&model.Stone{}).Error; err != nil {
			logger.Error("Failed to clear stone rows", err, map[string]interface{}{
				"product_id": productID,
			})
			return err
		}
		if len(stones) == 0 {
			return nil
		}
		if err := tx.Create(&stones).Error; err != nil {
			logger.Error("Failed to insert stone rows", err, map[string]interface{}{
				"product_id": productID,
				"count":      len(stones),
			})
			return err
		}
		return nil
	})
}

func (r *productRepository) Delete(id uint) error {
	if err := r.db.Delete(&model.Product{}, id).Error; err != nil {
		logger.Error("Failed to delete product", err, map[string]interface{}{
			"product_id": id,
		})
		return err
	}
	return nil
}
