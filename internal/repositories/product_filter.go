package repositories

import (
	"strings"

	"github.com/Masterminds/squirrel"

	"catalog/internal/models"
)

const productsTable = "products"

var productColumns = []string{"id", "title", "handle", "vendor", "price", "image_src"}

// productPredicate builds one predicate per provided filter and ANDs them.
// An empty result means "no WHERE clause".
//
// PostgreSQL matches the search term with ILIKE. SQLite has no ILIKE, so the
// term is folded in Go and compared to LOWER(title); OpenGORM replaces
// SQLite's ASCII-only LOWER with strings.ToLower so both sides fold the same way.
func productPredicate(f models.ProductFilter, dialect string) squirrel.And {
	preds := squirrel.And{}

	if strings.TrimSpace(f.Search) != "" {
		if dialect == DriverPostgres {
			preds = append(preds, squirrel.ILike{"title": "%" + f.Search + "%"})
		} else {
			preds = append(preds, squirrel.Like{"LOWER(title)": "%" + strings.ToLower(f.Search) + "%"})
		}
	}
	if strings.TrimSpace(f.Vendor) != "" {
		preds = append(preds, squirrel.Eq{"vendor": f.Vendor})
	}

	switch {
	case f.MinPrice != nil && f.MaxPrice != nil:
		preds = append(preds, squirrel.Expr("price BETWEEN ? AND ?", *f.MinPrice, *f.MaxPrice))
	case f.MinPrice != nil:
		preds = append(preds, squirrel.GtOrEq{"price": *f.MinPrice})
	case f.MaxPrice != nil:
		preds = append(preds, squirrel.LtOrEq{"price": *f.MaxPrice})
	}

	return preds
}
