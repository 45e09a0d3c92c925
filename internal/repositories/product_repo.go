package repositories

import (
	"context"

	"catalog/internal/models"
)

// ProductRepository defines the interface for product data access.
// Methods keyed by ID return models.ErrProductNotFound when the row is absent.
type ProductRepository interface {
	FindPage(ctx context.Context, filter models.ProductFilter, page models.PageRequest) (models.Page[models.Product], error)
	GetByID(ctx context.Context, id int64) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id int64) error
	DistinctVendors(ctx context.Context) ([]string, error)
}
