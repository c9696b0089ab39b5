// Package stats aggregates entity totals from the repositories.
package stats

import (
	"context"
	"fmt"
	"sort"

	"github.com/starford/giftcert/internal/apperr"
)

// Counter is a source of one entity total. Name is the lowercase plural
// entity name used as the key in Totals.
type Counter interface {
	Name() string
	FindTotalNumber(ctx context.Context) (int64, error)
}

// Aggregator collects totals from a fixed list of counters.
type Aggregator struct {
	sources []Counter
}

// New builds an aggregator over sources. Names must be unique and non-empty.
func New(sources ...Counter) (*Aggregator, error) {
	seen := make(map[string]struct{}, len(sources))
	for _, s := range sources {
		name := s.Name()
		if name == "" {
			return nil, fmt.Errorf("%w: stats source with empty name", apperr.ErrInvalidArgument)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("%w: duplicate stats source %q", apperr.ErrInvalidArgument, name)
		}
		seen[name] = struct{}{}
	}
	return &Aggregator{sources: append([]Counter(nil), sources...)}, nil
}

// Names returns the source names in sorted order.
func (a *Aggregator) Names() []string {
	out := make([]string, len(a.sources))
	for i, s := range a.sources {
		out[i] = s.Name()
	}
	sort.Strings(out)
	return out
}

// Totals queries every source. The first failure aborts the call.
func (a *Aggregator) Totals(ctx context.Context) (map[string]int64, error) {
	out := make(map[string]int64, len(a.sources))
	for _, s := range a.sources {
		n, err := s.FindTotalNumber(ctx)
		if err != nil {
			return nil, fmt.Errorf("stats: %s: %w", s.Name(), err)
		}
		out[s.Name()] = n
	}
	return out, nil
}
