package models

import (
	"fmt"
	"math"
	"strings"
)

// Direction is the ORDER BY direction of a sort key.
type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// Sort is one ORDER BY key. Column is the storage column, never raw user input.
type Sort struct {
	Column    string
	Direction Direction
}

// PageRequest describes which slice of a result set to fetch.
// Page is zero-based.
type PageRequest struct {
	Page int
	Size int
	Sort []Sort
}

// Offset returns the number of rows to skip. It never goes negative and
// saturates at math.MaxInt instead of overflowing, so an out-of-range page
// lands past the end of any result set.
func (p PageRequest) Offset() int {
	if p.Page <= 0 || p.Size <= 0 {
		return 0
	}
	if p.Page > math.MaxInt/p.Size {
		return math.MaxInt
	}
	return p.Page * p.Size
}

// OrderBy returns the sort keys as SQL fragments, defaulting to "id ASC" and
// always ending with an id tiebreaker so pages do not overlap.
func (p PageRequest) OrderBy() []string {
	clauses := make([]string, 0, len(p.Sort)+1)
	hasID := false
	for _, s := range p.Sort {
		if s.Column == "id" {
			hasID = true
		}
		clauses = append(clauses, s.Column+" "+string(s.Direction))
	}
	if !hasID {
		clauses = append(clauses, "id ASC")
	}
	return clauses
}

// ProductSortColumns maps the sortable wire property names to their columns.
var ProductSortColumns = map[string]string{
	"id":       "id",
	"title":    "title",
	"handle":   "handle",
	"vendor":   "vendor",
	"price":    "price",
	"imageSrc": "image_src",
}

// ParseSort parses "field[,asc|desc]" values against a whitelist of
// property->column names. Empty values are skipped.
func ParseSort(values []string, columns map[string]string) ([]Sort, error) {
	var sorts []Sort
	for _, raw := range values {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		parts := strings.Split(raw, ",")
		field := strings.TrimSpace(parts[0])
		column, ok := columns[field]
		if !ok {
			return nil, fmt.Errorf("unknown sort property %q", field)
		}
		dir := Asc
		if len(parts) > 1 {
			switch strings.ToLower(strings.TrimSpace(parts[1])) {
			case "", "asc":
			case "desc":
				dir = Desc
			default:
				return nil, fmt.Errorf("invalid sort direction %q", parts[1])
			}
		}
		sorts = append(sorts, Sort{Column: column, Direction: dir})
	}
	return sorts, nil
}

// Page is a bounded slice of a larger result set plus total-count metadata.
type Page[T any] struct {
	Content       []T
	Number        int
	Size          int
	TotalElements int64
}

// TotalPages is ceil(TotalElements / Size).
func (p Page[T]) TotalPages() int {
	if p.Size <= 0 {
		return 0
	}
	return int((p.TotalElements + int64(p.Size) - 1) / int64(p.Size))
}

// MapPage converts the content of a page, keeping its metadata.
func MapPage[T, U any](p Page[T], fn func(T) U) Page[U] {
	out := Page[U]{
		Content:       make([]U, len(p.Content)),
		Number:        p.Number,
		Size:          p.Size,
		TotalElements: p.TotalElements,
	}
	for i, item := range p.Content {
		out.Content[i] = fn(item)
	}
	return out
}
