package repositories

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"catalog/internal/models"
)

// MemoryProductRepository is an in-memory implementation of ProductRepository.
type MemoryProductRepository struct {
	products map[int64]models.Product
	nextID   int64
	mu       sync.RWMutex
}

// NewMemoryProductRepository creates a new instance of MemoryProductRepository.
func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{
		products: make(map[int64]models.Product),
	}
}

// FindPage filters, sorts and slices the stored products.
func (r *MemoryProductRepository) FindPage(_ context.Context, filter models.ProductFilter, page models.PageRequest) (models.Page[models.Product], error) {
	r.mu.RLock()
	matched := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		if matchesFilter(p, filter) {
			matched = append(matched, cloneProduct(p))
		}
	}
	r.mu.RUnlock()

	sortKeys := page.Sort
	if !slices.ContainsFunc(sortKeys, func(s models.Sort) bool { return s.Column == "id" }) {
		sortKeys = append(slices.Clone(sortKeys), models.Sort{Column: "id", Direction: models.Asc})
	}
	slices.SortStableFunc(matched, func(a, b models.Product) int {
		for _, s := range sortKeys {
			c := compareColumn(a, b, s.Column)
			if s.Direction == models.Desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return 0
	})

	result := models.Page[models.Product]{
		Content:       []models.Product{},
		Number:        page.Page,
		Size:          page.Size,
		TotalElements: int64(len(matched)),
	}
	start := page.Offset()
	if start >= len(matched) {
		return result, nil
	}
	end := start + min(page.Size, len(matched)-start)
	result.Content = append(result.Content, matched[start:end]...)
	return result, nil
}

// cloneProduct copies the optional strings so stored rows never share memory
// with callers.
func cloneProduct(p models.Product) models.Product {
	p.Handle = cloneString(p.Handle)
	p.Vendor = cloneString(p.Vendor)
	p.ImageSrc = cloneString(p.ImageSrc)
	return p
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func matchesFilter(p models.Product, f models.ProductFilter) bool {
	if strings.TrimSpace(f.Search) != "" &&
		!strings.Contains(strings.ToLower(p.Title), strings.ToLower(f.Search)) {
		return false
	}
	if strings.TrimSpace(f.Vendor) != "" && (p.Vendor == nil || *p.Vendor != f.Vendor) {
		return false
	}
	if f.MinPrice != nil || f.MaxPrice != nil {
		if !p.Price.Valid {
			return false
		}
		if f.MinPrice != nil && p.Price.Decimal.LessThan(*f.MinPrice) {
			return false
		}
		if f.MaxPrice != nil && p.Price.Decimal.GreaterThan(*f.MaxPrice) {
			return false
		}
	}
	return true
}

// compareColumn orders NULLs after values, as PostgreSQL does for ASC.
func compareColumn(a, b models.Product, column string) int {
	switch column {
	case "id":
		return cmp.Compare(a.ID, b.ID)
	case "title":
		return strings.Compare(a.Title, b.Title)
	case "handle":
		return compareNullable(a.Handle, b.Handle)
	case "vendor":
		return compareNullable(a.Vendor, b.Vendor)
	case "image_src":
		return compareNullable(a.ImageSrc, b.ImageSrc)
	case "price":
		switch {
		case !a.Price.Valid && !b.Price.Valid:
			return 0
		case !a.Price.Valid:
			return 1
		case !b.Price.Valid:
			return -1
		}
		return a.Price.Decimal.Cmp(b.Price.Decimal)
	}
	return 0
}

func compareNullable(a, b *string) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return strings.Compare(*a, *b)
}

// GetByID returns a product by its ID.
func (r *MemoryProductRepository) GetByID(_ context.Context, id int64) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product with ID %d: %w", id, models.ErrProductNotFound)
	}
	product = cloneProduct(product)
	return &product, nil
}

// Create adds a new product under the next free ID.
func (r *MemoryProductRepository) Create(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	product.ID = r.nextID
	r.products[product.ID] = cloneProduct(*product)
	return nil
}

// Update modifies an existing product.
func (r *MemoryProductRepository) Update(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[product.ID]; !ok {
		return fmt.Errorf("product with ID %d: %w", product.ID, models.ErrProductNotFound)
	}
	r.products[product.ID] = cloneProduct(*product)
	return nil
}

// Delete removes a product by its ID.
func (r *MemoryProductRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return fmt.Errorf("product with ID %d: %w", id, models.ErrProductNotFound)
	}
	delete(r.products, id)
	return nil
}

// DistinctVendors lists every non-blank vendor once, ascending.
func (r *MemoryProductRepository) DistinctVendors(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	vendors := []string{}
	for _, p := range r.products {
		if p.Vendor == nil || strings.TrimSpace(*p.Vendor) == "" {
			continue
		}
		if _, ok := seen[*p.Vendor]; ok {
			continue
		}
		seen[*p.Vendor] = struct{}{}
		vendors = append(vendors, *p.Vendor)
	}
	slices.Sort(vendors)
	return vendors, nil
}
