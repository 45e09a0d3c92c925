package models

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrProductNotFound is returned by repositories and services when no product
// exists for the requested ID.
var ErrProductNotFound = errors.New("product not found")

// Product represents a product in the catalog.
type Product struct {
	ID       int64               `json:"id" db:"id" gorm:"primaryKey;autoIncrement"`
	Title    string              `json:"title" db:"title" gorm:"type:varchar(255);not null"`
	Handle   *string             `json:"handle" db:"handle" gorm:"type:varchar(255)"`
	Vendor   *string             `json:"vendor" db:"vendor" gorm:"type:varchar(255);index"`
	Price    decimal.NullDecimal `json:"price" db:"price" gorm:"type:numeric(12,2)"`
	ImageSrc *string             `json:"imageSrc" db:"image_src" gorm:"type:varchar(1024)"`
}

// TableName pins the table name so every repository agrees on it.
func (Product) TableName() string {
	return "products"
}

// ProductFilter holds the optional list filters. Blank strings and nil prices
// mean "not provided".
type ProductFilter struct {
	Search   string
	Vendor   string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
}
