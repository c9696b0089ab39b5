// Package query holds the immutable request types used to filter and page
// repository reads: Pagination, SearchFilter and Page.
package query

import (
	"fmt"
	"math"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/giftcert/internal/apperr"
)

// Pagination is a zero-based page request. The zero value is not valid;
// build one with NewPagination.
type Pagination struct {
	page int
	size int
}

// NewPagination validates page >= 0 and size > 0, and that the offset of
// the page fits in an int.
func NewPagination(page, size int) (Pagination, error) {
	maxPage := math.MaxInt
	if size > 0 {
		maxPage = math.MaxInt / size
	}
	err := validation.Errors{
		"page": validation.Validate(page, validation.Min(0), validation.Max(maxPage)),
		"size": validation.Validate(size, validation.Required, validation.Min(1)),
	}.Filter()
	if err != nil {
		return Pagination{}, fmt.Errorf("%w: pagination: %v", apperr.ErrInvalidArgument, err)
	}
	return Pagination{page: page, size: size}, nil
}

// MustPagination is NewPagination for constant arguments; it panics on error.
func MustPagination(page, size int) Pagination {
	p, err := NewPagination(page, size)
	if err != nil {
		panic(err)
	}
	return p
}

// Page returns the zero-based page index.
func (p Pagination) Page() int { return p.page }

// Size returns the page size.
func (p Pagination) Size() int { return p.size }

// Offset is the number of rows skipped before the page starts.
func (p Pagination) Offset() int { return p.page * p.size }

// Limit is the maximum number of rows on the page.
func (p Pagination) Limit() int { return p.size }

// Valid reports whether p was built through NewPagination.
func (p Pagination) Valid() bool { return p.size > 0 && p.page >= 0 }

// WithPage returns a copy of p pointing at another page of the same size.
func (p Pagination) WithPage(page int) Pagination {
	if page < 0 {
		page = 0
	}
	return Pagination{page: page, size: p.size}
}

func (p Pagination) String() string {
	return fmt.Sprintf("page=%d size=%d", p.page, p.size)
}
