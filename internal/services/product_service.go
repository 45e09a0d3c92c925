package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"catalog/internal/models"
	"catalog/internal/repositories"
	"catalog/pkg/logger"
)

var tracer = otel.Tracer("catalog/services")

// ProductService handles business logic related to products.
type ProductService struct {
	repo   repositories.ProductRepository
	events EventPublisher // optional
	log    *logger.Logger
}

// NewProductService creates a new ProductService. events may be nil, in which
// case no change events are published.
func NewProductService(repo repositories.ProductRepository, events EventPublisher, log *logger.Logger) *ProductService {
	if log == nil {
		log = logger.Default()
	}
	return &ProductService{
		repo:   repo,
		events: events,
		log:    log.WithComponent("product_service"),
	}
}

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// endSpan records err on the span unless it is the expected not-found outcome.
func endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, models.ErrProductNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// ListProducts returns one page of products matching every provided filter.
func (s *ProductService) ListProducts(ctx context.Context, filter models.ProductFilter, page models.PageRequest) (result models.Page[models.Product], err error) {
	ctx, span := startSpan(ctx, "ProductService.ListProducts",
		attribute.Int("page.number", page.Page),
		attribute.Int("page.size", page.Size),
		attribute.Bool("filter.search", strings.TrimSpace(filter.Search) != ""),
		attribute.Bool("filter.vendor", strings.TrimSpace(filter.Vendor) != ""),
		attribute.Bool("filter.min_price", filter.MinPrice != nil),
		attribute.Bool("filter.max_price", filter.MaxPrice != nil),
	)
	defer func() { endSpan(span, err) }()

	result, err = s.repo.FindPage(ctx, filter, page)
	if err != nil {
		return result, err
	}
	span.SetAttributes(attribute.Int64("page.total_elements", result.TotalElements))
	return result, nil
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(ctx context.Context, id int64) (product *models.Product, err error) {
	ctx, span := startSpan(ctx, "ProductService.GetProductByID", attribute.Int64("product.id", id))
	defer func() { endSpan(span, err) }()

	return s.repo.GetByID(ctx, id)
}

// CreateProduct stores a new product; the repository assigns its ID.
func (s *ProductService) CreateProduct(ctx context.Context, product *models.Product) (err error) {
	ctx, span := startSpan(ctx, "ProductService.CreateProduct")
	defer func() { endSpan(span, err) }()

	product.ID = 0
	if err = s.repo.Create(ctx, product); err != nil {
		return err
	}
	span.SetAttributes(attribute.Int64("product.id", product.ID))
	s.publish(ctx, models.ProductCreated, product.ID, product)
	return nil
}

// UpdateProduct overwrites all mutable fields of an existing product.
// It never creates a product when the ID is unknown.
func (s *ProductService) UpdateProduct(ctx context.Context, product *models.Product) (err error) {
	ctx, span := startSpan(ctx, "ProductService.UpdateProduct", attribute.Int64("product.id", product.ID))
	defer func() { endSpan(span, err) }()

	if err = s.repo.Update(ctx, product); err != nil {
		return err
	}
	s.publish(ctx, models.ProductUpdated, product.ID, product)
	return nil
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(ctx context.Context, id int64) (err error) {
	ctx, span := startSpan(ctx, "ProductService.DeleteProduct", attribute.Int64("product.id", id))
	defer func() { endSpan(span, err) }()

	if err = s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, models.ProductDeleted, id, nil)
	return nil
}

// GetDistinctVendors lists every non-blank vendor once, ascending.
// The list is not paginated; vendor cardinality is expected to stay small.
func (s *ProductService) GetDistinctVendors(ctx context.Context) (vendors []string, err error) {
	ctx, span := startSpan(ctx, "ProductService.GetDistinctVendors")
	defer func() { endSpan(span, err) }()

	vendors, err = s.repo.DistinctVendors(ctx)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("vendors.count", len(vendors)))
	return vendors, nil
}

// publish emits a change event. Failures are logged and never fail the write,
// which has already been committed.
func (s *ProductService) publish(ctx context.Context, typ models.ProductEventType, id int64, product *models.Product) {
	if s.events == nil {
		return
	}
	event := models.ProductEvent{
		EventID:    uuid.NewString(),
		Type:       typ,
		ProductID:  id,
		Product:    product,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.events.PublishProductEvent(ctx, event); err != nil {
		s.log.Warnw("failed to publish product event",
			"event_id", event.EventID,
			"type", event.Type,
			"product_id", id,
			"error", err,
		)
		return
	}
	s.log.Debugw("published product event", "event_id", event.EventID, "type", event.Type, "product_id", id)
}
