package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"catalog/internal/models"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
// It runs on any dialector GORM supports; the service uses postgres and sqlite.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// FindPage returns one page of products matching every provided filter.
func (r *GORMProductRepository) FindPage(ctx context.Context, filter models.ProductFilter, page models.PageRequest) (models.Page[models.Product], error) {
	result := models.Page[models.Product]{
		Content: []models.Product{},
		Number:  page.Page,
		Size:    page.Size,
	}

	query := r.db.WithContext(ctx).Model(&models.Product{})
	if pred := productPredicate(filter, r.db.Dialector.Name()); len(pred) > 0 {
		where, args, err := pred.ToSql()
		if err != nil {
			return result, fmt.Errorf("failed to build product filter: %w", err)
		}
		query = query.Where(where, args...)
	}
	// Count and Find both reuse the filtered statement.
	query = query.Session(&gorm.Session{})

	if err := query.Count(&result.TotalElements).Error; err != nil {
		return result, fmt.Errorf("failed to count products: %w", err)
	}
	if result.TotalElements == 0 || int64(page.Offset()) >= result.TotalElements {
		return result, nil
	}

	for _, order := range page.OrderBy() {
		query = query.Order(order)
	}
	if err := query.Limit(page.Size).Offset(page.Offset()).Find(&result.Content).Error; err != nil {
		return result, fmt.Errorf("failed to list products: %w", err)
	}
	return result, nil
}

// GetByID retrieves a single product by its ID from the database.
func (r *GORMProductRepository) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product with ID %d: %w", id, models.ErrProductNotFound)
		}
		return nil, fmt.Errorf("failed to get product by ID %d: %w", id, err)
	}
	return &product, nil
}

// Create inserts a new product; the database assigns its ID.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	product.ID = 0
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Update overwrites every mutable column of an existing product and reloads it.
// Save is not used because it falls back to an insert when no row matches.
func (r *GORMProductRepository) Update(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Product{}).
			Where("id = ?", product.ID).
			Select("title", "handle", "vendor", "price", "image_src").
			Updates(product)
		if res.Error != nil {
			return fmt.Errorf("failed to update product: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("product with ID %d: %w", product.ID, models.ErrProductNotFound)
		}
		if err := tx.First(product, product.ID).Error; err != nil {
			return fmt.Errorf("failed to reload product %d: %w", product.ID, err)
		}
		return nil
	})
}

// Delete deletes a product by its ID from the database.
func (r *GORMProductRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %d: %w", id, models.ErrProductNotFound)
	}
	return nil
}

// DistinctVendors lists every non-blank vendor once, ascending.
func (r *GORMProductRepository) DistinctVendors(ctx context.Context) ([]string, error) {
	vendors := []string{}
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("vendor IS NOT NULL AND TRIM(vendor) <> ''").
		Distinct("vendor").
		Order("vendor ASC").
		Pluck("vendor", &vendors).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list vendors: %w", err)
	}
	return vendors, nil
}
