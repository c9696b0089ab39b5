package stats

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/giftcert/internal/apperr"
)

type fixed struct {
	name string
	n    int64
	err  error
}

func (f fixed) Name() string { return f.name }

func (f fixed) FindTotalNumber(context.Context) (int64, error) { return f.n, f.err }

func TestTotals(t *testing.T) {
	a, err := New(fixed{name: "tags", n: 3}, fixed{name: "certificates", n: 7})
	require.NoError(t, err)

	got, err := a.Totals(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"tags": 3, "certificates": 7}, got)
	assert.Equal(t, []string{"certificates", "tags"}, a.Names())
}

func TestNew_RejectsDuplicatesAndBlankNames(t *testing.T) {
	_, err := New(fixed{name: "tags"}, fixed{name: "tags"})
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)

	_, err = New(fixed{name: ""})
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
}

func TestTotals_PropagatesFailure(t *testing.T) {
	a, err := New(fixed{name: "users", err: apperr.ErrStoreUnavailable})
	require.NoError(t, err)

	_, err = a.Totals(context.Background())
	assert.True(t, errors.Is(err, apperr.ErrStoreUnavailable))
	assert.Contains(t, err.Error(), "users")
}

func TestTotals_Empty(t *testing.T) {
	a, err := New()
	require.NoError(t, err)
	got, err := a.Totals(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}
