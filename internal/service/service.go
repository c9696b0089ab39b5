// Package service implements the certificate shop use cases on top of the
// store: input validation, DTO conversion, optimistic concurrency and change
// notifications.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/starford/giftcert/internal/apperr"
	"github.com/starford/giftcert/internal/stats"
	"github.com/starford/giftcert/internal/store"
)

// Entity names used in change events.
const (
	EntityCertificate = "certificate"
	EntityTag         = "tag"
	EntityUser        = "user"
	EntityOrder       = "order"
)

// Change kinds used in change events.
const (
	KindCreated = "created"
	KindUpdated = "updated"
	KindDeleted = "deleted"
)

// EventPublisher receives a notification after every successful mutation.
type EventPublisher interface {
	PublishEntityEvent(kind, entity string, id int64)
}

// SearchObserver receives the outcome of every certificate search.
type SearchObserver interface {
	ObserveSearch(d time.Duration, items int, total int64, err error)
}

// Deps are the collaborators of a Service. Events, Observer and Clock are optional.
type Deps struct {
	Certificates *store.CertificateRepo
	Tags         *store.TagRepo
	Users        *store.UserRepo
	Orders       *store.OrderRepo
	Stats        *stats.Aggregator

	Events   EventPublisher
	Observer SearchObserver
	Clock    func() time.Time
}

// Service coordinates repositories for the API and MCP front ends.
type Service struct {
	certs  *store.CertificateRepo
	tags   *store.TagRepo
	users  *store.UserRepo
	orders *store.OrderRepo
	stats  *stats.Aggregator

	events   EventPublisher
	observer SearchObserver
	now      func() time.Time
}

// New creates a service.
func New(d Deps) *Service {
	s := &Service{
		certs:    d.Certificates,
		tags:     d.Tags,
		users:    d.Users,
		orders:   d.Orders,
		stats:    d.Stats,
		events:   d.Events,
		observer: d.Observer,
		now:      d.Clock,
	}
	if s.events == nil {
		s.events = nopPublisher{}
	}
	if s.observer == nil {
		s.observer = nopObserver{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Stats returns entity totals keyed by lowercase plural entity name.
func (s *Service) Stats(ctx context.Context) (map[string]int64, error) {
	return s.stats.Totals(ctx)
}

func (s *Service) publish(kind, entity string, id int64) {
	s.events.PublishEntityEvent(kind, entity, id)
}

func (s *Service) clock() time.Time {
	return s.now().UTC().Truncate(time.Second)
}

func invalid(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", apperr.ErrInvalidArgument, err)
}

type nopPublisher struct{}

func (nopPublisher) PublishEntityEvent(string, string, int64) {}

type nopObserver struct{}

func (nopObserver) ObserveSearch(time.Duration, int, int64, error) {}
