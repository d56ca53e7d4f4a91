// Package catalog holds the product listing pipeline, id lookup and the service
// that ties them to a store.
package catalog

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"catalog-service/internal/model"
)

const (
	OrderAsc  = "asc"
	OrderDesc = "desc"

	DefaultLimit = 10
	MaxLimit     = 100
)

// ErrNoMatchingProducts is matched by every *NoMatchError
var ErrNoMatchingProducts = errors.New("no matching products")

// ErrInvalidQuery is returned by Query.Validate
var ErrInvalidQuery = errors.New("invalid query")

// NoMatchError reports an empty filtered catalog. Name is the filter exactly as requested.
type NoMatchError struct {
	Name string
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("No product found matching name = %s", e.Name)
}

func (e *NoMatchError) Is(target error) bool {
	return target == ErrNoMatchingProducts
}

// Query describes one listing request.
// Order values other than "desc" sort ascending.
type Query struct {
	Name        string
	SortByPrice bool
	Order       string
	Limit       int
	Offset      int
}

// DefaultQuery returns the query used when the caller supplies no parameters
func DefaultQuery() Query {
	return Query{Order: OrderAsc, Limit: DefaultLimit}
}

// Validate enforces the accepted ranges for Limit and Offset
func (q Query) Validate() error {
	if q.Limit < 1 || q.Limit > MaxLimit {
		return fmt.Errorf("%w: limit must be between 1 and %d, got %d", ErrInvalidQuery, MaxLimit, q.Limit)
	}
	if q.Offset < 0 {
		return fmt.Errorf("%w: offset must be >= 0, got %d", ErrInvalidQuery, q.Offset)
	}
	return nil
}

// Page is one window of a listing
type Page struct {
	Total  int             `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
	Items  []model.Product `json:"items"`
}

// Run filters, checks for emptiness, sorts and paginates products, in that order.
// products is never modified.
func Run(products []model.Product, q Query) (Page, error) {
	matched := filterByName(products, q.Name)
	if len(matched) == 0 {
		return Page{}, &NoMatchError{Name: q.Name}
	}

	if q.SortByPrice {
		sortByPrice(matched, q.Order == OrderDesc)
	}

	return Page{
		Total:  len(matched),
		Limit:  q.Limit,
		Offset: q.Offset,
		Items:  paginate(matched, q.Offset, q.Limit),
	}, nil
}

// filterByName always returns a fresh slice so later sorting leaves the input alone
func filterByName(products []model.Product, name string) []model.Product {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return slices.Clone(products)
	}

	matched := make([]model.Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), needle) {
			matched = append(matched, p)
		}
	}
	return matched
}

func sortByPrice(products []model.Product, desc bool) {
	slices.SortStableFunc(products, func(a, b model.Product) int {
		if desc {
			return cmp.Compare(b.Price, a.Price)
		}
		return cmp.Compare(a.Price, b.Price)
	})
}

func paginate(products []model.Product, offset, limit int) []model.Product {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(products) || limit <= 0 {
		return []model.Product{}
	}
	end := min(offset+limit, len(products))
	return products[offset:end]
}
