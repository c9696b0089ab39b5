package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/giftcert/internal/apperr"
	"github.com/starford/giftcert/internal/query"
)

// PageConfig bounds the page sizes a client may request.
type PageConfig struct {
	DefaultSize int
	MaxSize     int
}

func (c PageConfig) withDefaults() PageConfig {
	if c.DefaultSize <= 0 {
		c.DefaultSize = 10
	}
	if c.MaxSize <= 0 {
		c.MaxSize = 100
	}
	if c.DefaultSize > c.MaxSize {
		c.DefaultSize = c.MaxSize
	}
	return c
}

// pagination reads the 0-based "page" and "size" query parameters.
func (c PageConfig) pagination(r *http.Request) (query.Pagination, error) {
	q := r.URL.Query()
	page, err := intParam(q.Get("page"), 0)
	if err != nil {
		return query.Pagination{}, fmt.Errorf("%w: page: %v", apperr.ErrInvalidArgument, err)
	}
	size, err := intParam(q.Get("size"), c.DefaultSize)
	if err != nil {
		return query.Pagination{}, fmt.Errorf("%w: size: %v", apperr.ErrInvalidArgument, err)
	}
	if size > c.MaxSize {
		return query.Pagination{}, fmt.Errorf("%w: size must be at most %d", apperr.ErrInvalidArgument, c.MaxSize)
	}
	return query.NewPagination(page, size)
}

// searchFilter reads the certificate search parameters. "tag" may repeat
// and also accepts a comma-separated list.
func (c PageConfig) searchFilter(r *http.Request) (query.SearchFilter, error) {
	p, err := c.pagination(r)
	if err != nil {
		return query.SearchFilter{}, err
	}
	q := r.URL.Query()

	var tags []string
	for _, v := range q["tag"] {
		for _, name := range strings.Split(v, ",") {
			tags = append(tags, strings.TrimSpace(name))
		}
	}
	return query.NewSearchFilter(query.FilterParams{
		Name:        strings.TrimSpace(q.Get("name")),
		Description: strings.TrimSpace(q.Get("description")),
		Sort:        q.Get("sort"),
		Order:       q.Get("order"),
		Tags:        tags,
		Pagination:  p,
	})
}

func intParam(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}

// idParam reads a positive numeric path parameter.
func idParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer, got %q", apperr.ErrInvalidArgument, name, raw)
	}
	return n, nil
}
