package query

import (
	"fmt"
	"slices"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/giftcert/internal/apperr"
)

// SortType is the single column a certificate search is ordered by.
type SortType string

// Recognised sort columns.
const (
	SortByName  SortType = "name"
	SortByDate  SortType = "date"
	SortByPrice SortType = "price"
)

// SortOrder is the direction of a sort.
type SortOrder string

// Recognised sort directions.
const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

// ParseSortType accepts a case-insensitive sort column name.
func ParseSortType(s string) (SortType, error) {
	switch t := SortType(strings.ToLower(strings.TrimSpace(s))); t {
	case SortByName, SortByDate, SortByPrice:
		return t, nil
	}
	return "", fmt.Errorf("%w: unknown sort type %q", apperr.ErrInvalidArgument, s)
}

// ParseSortOrder accepts a case-insensitive sort direction.
func ParseSortOrder(s string) (SortOrder, error) {
	switch o := SortOrder(strings.ToLower(strings.TrimSpace(s))); o {
	case Asc, Desc:
		return o, nil
	}
	return "", fmt.Errorf("%w: unknown sort order %q", apperr.ErrInvalidArgument, s)
}

// MaxTags bounds the number of tag names one search may name.
const MaxTags = 64

// FilterParams is the raw, unvalidated input of NewSearchFilter. Empty
// strings and a nil tag slice mean "no constraint".
type FilterParams struct {
	Name        string
	Description string
	Sort        string
	Order       string
	Tags        []string
	Pagination  Pagination
}

// SearchFilter is an immutable set of optional certificate criteria plus a
// page request. Absent criteria never restrict the result.
type SearchFilter struct {
	name        string
	description string
	sortType    SortType
	sortOrder   SortOrder
	tagNames    []string // deduplicated, sorted
	tagIDs      []int64  // set once names are resolved against the store
	resolved    bool
	pagination  Pagination
}

// NewSearchFilter validates params and builds a filter.
func NewSearchFilter(params FilterParams) (SearchFilter, error) {
	if !params.Pagination.Valid() {
		return SearchFilter{}, fmt.Errorf("%w: pagination is required", apperr.ErrInvalidArgument)
	}
	if err := validation.Validate(params.Tags,
		validation.Length(0, MaxTags),
		validation.Each(validation.By(notBlank)),
	); err != nil {
		return SearchFilter{}, fmt.Errorf("%w: tags: %v", apperr.ErrInvalidArgument, err)
	}

	f := SearchFilter{
		name:        params.Name,
		description: params.Description,
		tagNames:    normalizeTags(params.Tags),
		pagination:  params.Pagination,
	}

	if params.Order != "" && params.Sort == "" {
		return SearchFilter{}, fmt.Errorf("%w: sort order %q given without a sort type", apperr.ErrInvalidArgument, params.Order)
	}
	if params.Sort != "" {
		t, err := ParseSortType(params.Sort)
		if err != nil {
			return SearchFilter{}, err
		}
		o := Asc
		if params.Order != "" {
			if o, err = ParseSortOrder(params.Order); err != nil {
				return SearchFilter{}, err
			}
		}
		f.sortType, f.sortOrder = t, o
	}
	return f, nil
}

func notBlank(v any) error {
	s, _ := v.(string)
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("tag name must not be blank")
	}
	return nil
}

func normalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	out := slices.Clone(tags)
	slices.Sort(out)
	return slices.Compact(out)
}

// WithResolvedTags returns a copy of f carrying the store identifiers of its
// tag names. f itself is not modified.
func (f SearchFilter) WithResolvedTags(ids []int64) SearchFilter {
	out := f
	out.tagNames = slices.Clone(f.tagNames)
	out.tagIDs = slices.Clone(ids)
	slices.Sort(out.tagIDs)
	out.tagIDs = slices.Compact(out.tagIDs)
	out.resolved = true
	return out
}

// WithPagination returns a copy of f with another page request.
func (f SearchFilter) WithPagination(p Pagination) SearchFilter {
	out := f
	out.tagNames = slices.Clone(f.tagNames)
	out.tagIDs = slices.Clone(f.tagIDs)
	out.pagination = p
	return out
}

// Name returns the name containment filter, if any.
func (f SearchFilter) Name() (string, bool) { return f.name, f.name != "" }

// Description returns the description containment filter, if any.
func (f SearchFilter) Description() (string, bool) { return f.description, f.description != "" }

// Sort returns the sort column and direction, if any.
func (f SearchFilter) Sort() (SortType, SortOrder, bool) {
	return f.sortType, f.sortOrder, f.sortType != ""
}

// TagNames returns a copy of the requested tag set in sorted order.
func (f SearchFilter) TagNames() []string { return slices.Clone(f.tagNames) }

// HasTags reports whether a tag intersection was requested.
func (f SearchFilter) HasTags() bool { return len(f.tagNames) > 0 }

// TagIDs returns a copy of the resolved tag identifiers.
func (f SearchFilter) TagIDs() []int64 { return slices.Clone(f.tagIDs) }

// Resolved reports whether WithResolvedTags has been applied.
func (f SearchFilter) Resolved() bool { return f.resolved }

// Pagination returns the page request.
func (f SearchFilter) Pagination() Pagination { return f.pagination }
