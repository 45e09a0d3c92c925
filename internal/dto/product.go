// Package dto holds the API wire shapes and the explicit mapping between them
// and the storage models.
package dto

import (
	"strings"

	"github.com/shopspring/decimal"

	"catalog/internal/models"
)

func init() {
	// Prices go over the wire as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// ProductDTO is the wire shape of a stored product.
type ProductDTO struct {
	ID       int64               `json:"id"`
	Title    string              `json:"title"`
	Handle   *string             `json:"handle"`
	Vendor   *string             `json:"vendor"`
	Price    decimal.NullDecimal `json:"price"`
	ImageSrc *string             `json:"imageSrc"`
}

// ProductRequest is the body of create and update requests.
type ProductRequest struct {
	Title    string              `json:"title" validate:"required,max=255"`
	Handle   *string             `json:"handle" validate:"omitempty,max=255"`
	Vendor   *string             `json:"vendor" validate:"omitempty,max=255"`
	Price    decimal.NullDecimal `json:"price"` // must not be negative, see NewValidator
	ImageSrc *string             `json:"imageSrc" validate:"omitempty,url,max=1024"`
}

// Normalize trims every string and turns blank optional strings into nil.
func (r *ProductRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Handle = trimOptional(r.Handle)
	r.Vendor = trimOptional(r.Vendor)
	r.ImageSrc = trimOptional(r.ImageSrc)
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// ToDTO copies a stored product into its wire shape.
func ToDTO(p models.Product) ProductDTO {
	return ProductDTO{
		ID:       p.ID,
		Title:    p.Title,
		Handle:   p.Handle,
		Vendor:   p.Vendor,
		Price:    p.Price,
		ImageSrc: p.ImageSrc,
	}
}

// ToEntity builds an unsaved product from a request. The ID stays zero.
func (r ProductRequest) ToEntity() *models.Product {
	p := &models.Product{}
	r.ApplyTo(p)
	return p
}

// ApplyTo overwrites every mutable field of p, absent values included.
func (r ProductRequest) ApplyTo(p *models.Product) {
	p.Title = r.Title
	p.Handle = r.Handle
	p.Vendor = r.Vendor
	p.Price = r.Price
	p.ImageSrc = r.ImageSrc
}

// PageDTO mirrors the page body the frontend already consumes.
type PageDTO[T any] struct {
	Content          []T   `json:"content"`
	TotalElements    int64 `json:"totalElements"`
	TotalPages       int   `json:"totalPages"`
	Number           int   `json:"number"`
	Size             int   `json:"size"`
	NumberOfElements int   `json:"numberOfElements"`
	First            bool  `json:"first"`
	Last             bool  `json:"last"`
	Empty            bool  `json:"empty"`
}

// NewProductPage maps a page of stored products to its wire shape.
func NewProductPage(p models.Page[models.Product]) PageDTO[ProductDTO] {
	mapped := models.MapPage(p, ToDTO)
	totalPages := mapped.TotalPages()
	return PageDTO[ProductDTO]{
		Content:          mapped.Content,
		TotalElements:    mapped.TotalElements,
		TotalPages:       totalPages,
		Number:           mapped.Number,
		Size:             mapped.Size,
		NumberOfElements: len(mapped.Content),
		First:            mapped.Number == 0,
		Last:             mapped.Number >= totalPages-1,
		Empty:            len(mapped.Content) == 0,
	}
}
