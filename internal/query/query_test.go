package query

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/giftcert/internal/apperr"
)

func TestNewPagination_OffsetAndLimit(t *testing.T) {
	for _, tc := range []struct{ page, size, offset int }{
		{0, 1, 0},
		{0, 10, 0},
		{1, 10, 10},
		{3, 7, 21},
		{100, 25, 2500},
	} {
		p, err := NewPagination(tc.page, tc.size)
		require.NoError(t, err)
		assert.Equal(t, tc.offset, p.Offset(), "offset for %v", p)
		assert.Equal(t, tc.size, p.Limit(), "limit for %v", p)
	}
}

func TestNewPagination_Invalid(t *testing.T) {
	for _, tc := range []struct{ page, size int }{
		{0, 0},
		{0, -1},
		{-1, 10},
		{-5, -5},
	} {
		_, err := NewPagination(tc.page, tc.size)
		assert.ErrorIs(t, err, apperr.ErrInvalidArgument, "page=%d size=%d", tc.page, tc.size)
	}
}

func TestNewPagination_OffsetOverflow(t *testing.T) {
	for _, size := range []int{1, 10, 100, math.MaxInt} {
		last := math.MaxInt / size
		p, err := NewPagination(last, size)
		require.NoError(t, err, "size=%d", size)
		assert.GreaterOrEqual(t, p.Offset(), 0, "size=%d", size)

		_, err = NewPagination(last+1, size)
		assert.ErrorIs(t, err, apperr.ErrInvalidArgument, "size=%d", size)
	}

	_, err := NewPagination(922337203685477581, 10)
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
}

func TestNewSearchFilter_TagLimit(t *testing.T) {
	tags := make([]string, MaxTags+1)
	for i := range tags {
		tags[i] = fmt.Sprintf("t%d", i)
	}

	_, err := NewSearchFilter(FilterParams{Tags: tags[:MaxTags], Pagination: MustPagination(0, 5)})
	require.NoError(t, err)

	_, err = NewSearchFilter(FilterParams{Tags: tags, Pagination: MustPagination(0, 5)})
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
}

func TestPagination_ZeroValueInvalid(t *testing.T) {
	var p Pagination
	assert.False(t, p.Valid())

	_, err := NewSearchFilter(FilterParams{})
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
}

func TestNewSearchFilter_SortValidation(t *testing.T) {
	pg := MustPagination(0, 10)

	_, err := NewSearchFilter(FilterParams{Order: "desc", Pagination: pg})
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument, "order without type")

	_, err = NewSearchFilter(FilterParams{Sort: "popularity", Pagination: pg})
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument, "unknown type")

	_, err = NewSearchFilter(FilterParams{Sort: "name", Order: "sideways", Pagination: pg})
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument, "unknown order")

	f, err := NewSearchFilter(FilterParams{Sort: "PRICE", Order: "DESC", Pagination: pg})
	require.NoError(t, err)
	st, so, ok := f.Sort()
	assert.True(t, ok)
	assert.Equal(t, SortByPrice, st)
	assert.Equal(t, Desc, so)

	f, err = NewSearchFilter(FilterParams{Sort: "date", Pagination: pg})
	require.NoError(t, err)
	_, so, _ = f.Sort()
	assert.Equal(t, Asc, so, "type without order defaults to ascending")
}

func TestNewSearchFilter_AbsentFields(t *testing.T) {
	f, err := NewSearchFilter(FilterParams{Pagination: MustPagination(0, 5)})
	require.NoError(t, err)

	_, ok := f.Name()
	assert.False(t, ok)
	_, ok = f.Description()
	assert.False(t, ok)
	_, _, ok = f.Sort()
	assert.False(t, ok)
	assert.False(t, f.HasTags())
	assert.Empty(t, f.TagNames())
}

func TestNewSearchFilter_TagSet(t *testing.T) {
	f, err := NewSearchFilter(FilterParams{
		Tags:       []string{"wellness", "discount", "wellness"},
		Pagination: MustPagination(0, 5),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"discount", "wellness"}, f.TagNames())

	_, err = NewSearchFilter(FilterParams{Tags: []string{"ok", "  "}, Pagination: MustPagination(0, 5)})
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
}

func TestSearchFilter_WithResolvedTagsDoesNotMutate(t *testing.T) {
	f, err := NewSearchFilter(FilterParams{Tags: []string{"a", "b"}, Pagination: MustPagination(0, 5)})
	require.NoError(t, err)

	r := f.WithResolvedTags([]int64{7, 3, 7})
	assert.False(t, f.Resolved())
	assert.Empty(t, f.TagIDs())
	assert.True(t, r.Resolved())
	assert.Equal(t, []int64{3, 7}, r.TagIDs())
	assert.Equal(t, f.TagNames(), r.TagNames())

	names := r.TagNames()
	names[0] = "mutated"
	assert.Equal(t, []string{"a", "b"}, r.TagNames(), "accessor must return a copy")
}

func TestPage_Totals(t *testing.T) {
	pg := NewPage([]int{1, 2}, 5, MustPagination(0, 2))
	assert.Equal(t, 3, pg.TotalPages())
	assert.True(t, pg.HasNext())
	assert.False(t, pg.HasPrevious())

	last := NewPage([]int{5}, 5, MustPagination(2, 2))
	assert.False(t, last.HasNext())
	assert.True(t, last.HasPrevious())

	empty := EmptyPage[int](MustPagination(0, 10))
	assert.NotNil(t, empty.Items)
	assert.Equal(t, 0, empty.TotalPages())

	doubled := Map(pg, func(i int) int { return i * 2 })
	assert.Equal(t, []int{2, 4}, doubled.Items)
	assert.Equal(t, int64(5), doubled.TotalMatching)
}
