package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"catalog/internal/models"
)

// pgxQuerier is the subset of *pgxpool.Pool the repository needs.
type pgxQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PgxProductRepository is a PostgreSQL implementation of ProductRepository
// built on pgx, squirrel and scany instead of an ORM.
type PgxProductRepository struct {
	db pgxQuerier
}

// NewPgxProductRepository creates a new instance of PgxProductRepository.
func NewPgxProductRepository(db pgxQuerier) *PgxProductRepository {
	return &PgxProductRepository{db: db}
}

func (r *PgxProductRepository) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// EnsureTable creates the products table when it does not exist yet,
// mirroring the layout GORM's auto-migration produces.
func (r *PgxProductRepository) EnsureTable(ctx context.Context) error {
	const ddl = `CREATE TABLE IF NOT EXISTS products (
		id BIGSERIAL PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		handle VARCHAR(255),
		vendor VARCHAR(255),
		price NUMERIC(12,2),
		image_src VARCHAR(1024)
	)`
	if _, err := r.db.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("create products table: %w", err)
	}
	return nil
}

// pageQueries returns the COUNT and SELECT statements for one page.
func (r *PgxProductRepository) pageQueries(filter models.ProductFilter, page models.PageRequest) (squirrel.SelectBuilder, squirrel.SelectBuilder) {
	countQ := r.builder().Select("COUNT(*)").From(productsTable)
	selectQ := r.builder().Select(productColumns...).From(productsTable)

	if pred := productPredicate(filter, DriverPostgres); len(pred) > 0 {
		countQ = countQ.Where(pred)
		selectQ = selectQ.Where(pred)
	}

	selectQ = selectQ.
		OrderBy(page.OrderBy()...).
		Limit(uint64(page.Size)).
		Offset(uint64(page.Offset()))
	return countQ, selectQ
}

// FindPage returns one page of products matching every provided filter.
func (r *PgxProductRepository) FindPage(ctx context.Context, filter models.ProductFilter, page models.PageRequest) (models.Page[models.Product], error) {
	result := models.Page[models.Product]{
		Content: []models.Product{},
		Number:  page.Page,
		Size:    page.Size,
	}
	countQ, selectQ := r.pageQueries(filter, page)

	sql, args, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&result.TotalElements); err != nil {
		return result, fmt.Errorf("count products: %w", err)
	}
	if result.TotalElements == 0 || int64(page.Offset()) >= result.TotalElements {
		return result, nil
	}

	sql, args, err = selectQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build list query: %w", err)
	}
	if err := pgxscan.Select(ctx, r.db, &result.Content, sql, args...); err != nil {
		return result, fmt.Errorf("list products: %w", err)
	}
	return result, nil
}

// GetByID retrieves a single product by its ID.
func (r *PgxProductRepository) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	sql, args, err := r.builder().
		Select(productColumns...).
		From(productsTable).
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var product models.Product
	if err := pgxscan.Get(ctx, r.db, &product, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, fmt.Errorf("product with ID %d: %w", id, models.ErrProductNotFound)
		}
		return nil, fmt.Errorf("get product by ID %d: %w", id, err)
	}
	return &product, nil
}

func mutableColumns(p *models.Product) map[string]any {
	return map[string]any{
		"title":     p.Title,
		"handle":    p.Handle,
		"vendor":    p.Vendor,
		"price":     p.Price,
		"image_src": p.ImageSrc,
	}
}

// Create inserts a new product and scans back the stored row.
func (r *PgxProductRepository) Create(ctx context.Context, product *models.Product) error {
	sql, args, err := r.builder().
		Insert(productsTable).
		SetMap(mutableColumns(product)).
		Suffix("RETURNING " + strings.Join(productColumns, ", ")).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if err := pgxscan.Get(ctx, r.db, product, sql, args...); err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// Update overwrites every mutable column of an existing product in a single
// statement; no row is created when the ID is absent.
func (r *PgxProductRepository) Update(ctx context.Context, product *models.Product) error {
	sql, args, err := r.builder().
		Update(productsTable).
		SetMap(mutableColumns(product)).
		Where(squirrel.Eq{"id": product.ID}).
		Suffix("RETURNING " + strings.Join(productColumns, ", ")).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	if err := pgxscan.Get(ctx, r.db, product, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return fmt.Errorf("product with ID %d: %w", product.ID, models.ErrProductNotFound)
		}
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

// Delete performs physical removal of a product.
func (r *PgxProductRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.builder().
		Delete(productsTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("product with ID %d: %w", id, models.ErrProductNotFound)
	}
	return nil
}

func (r *PgxProductRepository) vendorsQuery() squirrel.SelectBuilder {
	return r.builder().
		Select("DISTINCT vendor").
		From(productsTable).
		Where(squirrel.NotEq{"vendor": nil}).
		Where("TRIM(vendor) <> ''").
		OrderBy("vendor ASC")
}

// DistinctVendors lists every non-blank vendor once, ascending.
func (r *PgxProductRepository) DistinctVendors(ctx context.Context) ([]string, error) {
	sql, args, err := r.vendorsQuery().ToSql()
	if err != nil {
		return nil, fmt.Errorf("build vendors query: %w", err)
	}
	vendors := []string{}
	if err := pgxscan.Select(ctx, r.db, &vendors, sql, args...); err != nil {
		return nil, fmt.Errorf("list vendors: %w", err)
	}
	return vendors, nil
}
