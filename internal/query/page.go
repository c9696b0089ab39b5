package query

// Page is one window of results plus the number of rows matching the same
// criteria with the window removed.
type Page[T any] struct {
	Items         []T
	TotalMatching int64
	Pagination    Pagination
}

// NewPage builds a page, normalising a nil item slice to an empty one.
func NewPage[T any](items []T, total int64, p Pagination) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, TotalMatching: total, Pagination: p}
}

// EmptyPage is a page with no items and a zero total.
func EmptyPage[T any](p Pagination) Page[T] {
	return NewPage[T](nil, 0, p)
}

// TotalPages is the number of pages of the current size needed to cover TotalMatching.
func (pg Page[T]) TotalPages() int {
	size := int64(pg.Pagination.Size())
	if size <= 0 || pg.TotalMatching <= 0 {
		return 0
	}
	return int((pg.TotalMatching + size - 1) / size)
}

// HasNext reports whether a later page holds rows.
func (pg Page[T]) HasNext() bool {
	return pg.Pagination.Page()+1 < pg.TotalPages()
}

// HasPrevious reports whether an earlier page exists.
func (pg Page[T]) HasPrevious() bool {
	return pg.Pagination.Page() > 0
}

// Map converts the items of a page, keeping its totals.
func Map[T, U any](pg Page[T], fn func(T) U) Page[U] {
	out := make([]U, len(pg.Items))
	for i, it := range pg.Items {
		out[i] = fn(it)
	}
	return Page[U]{Items: out, TotalMatching: pg.TotalMatching, Pagination: pg.Pagination}
}
