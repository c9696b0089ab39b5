package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/starford/giftcert/internal/apperr"
	"github.com/starford/giftcert/internal/checksum"
	"github.com/starford/giftcert/internal/models"
	"github.com/starford/giftcert/internal/query"
)

// GetCertificate returns one certificate with its tags.
func (s *Service) GetCertificate(ctx context.Context, id int64) (CertificateDTO, error) {
	c, err := s.certs.FindByID(ctx, id)
	if err != nil {
		return CertificateDTO{}, err
	}
	return ToCertificateDTO(c), nil
}

// SearchCertificates runs a filtered, sorted, paginated certificate search.
func (s *Service) SearchCertificates(ctx context.Context, f query.SearchFilter) (query.Page[CertificateDTO], error) {
	start := time.Now()
	page, err := s.certs.FindByFilterAndPage(ctx, f)
	s.observer.ObserveSearch(time.Since(start), len(page.Items), page.TotalMatching, err)
	if err != nil {
		return query.Page[CertificateDTO]{}, err
	}
	slog.Debug("certificate search",
		slog.String("filter", describe(f)),
		slog.Int("items", len(page.Items)),
		slog.Int64("total", page.TotalMatching))
	return query.Map(page, ToCertificateDTO), nil
}

// CreateCertificate stores a new certificate. Unknown tags are created.
func (s *Service) CreateCertificate(ctx context.Context, in CertificateInput) (CertificateDTO, error) {
	if err := in.Validate(); err != nil {
		return CertificateDTO{}, invalid(err)
	}
	c := FromCertificateInput(in, s.clock())
	if err := s.certs.Create(ctx, &c); err != nil {
		return CertificateDTO{}, err
	}
	s.publish(KindCreated, EntityCertificate, c.ID)
	return ToCertificateDTO(c), nil
}

// UpdateCertificate replaces the writable fields and tags of certificate id.
// A non-empty ifMatch must equal the current ETag or ErrConflict is returned.
// The comparison and the write happen in one transaction.
func (s *Service) UpdateCertificate(ctx context.Context, id int64, in CertificateInput, ifMatch string) (CertificateDTO, error) {
	if err := in.Validate(); err != nil {
		return CertificateDTO{}, invalid(err)
	}

	c := FromCertificateInput(in, s.clock())
	c.ID = id
	err := s.certs.UpdateIf(ctx, &c, func(current models.Certificate) error {
		if ifMatch != "" {
			etag, err := ETag(ToCertificateDTO(current))
			if err != nil {
				return err
			}
			if ifMatch != etag {
				return fmt.Errorf("%w: certificate %d was modified", apperr.ErrConflict, id)
			}
		}
		c.CreateDate = current.CreateDate
		return nil
	})
	if err != nil {
		return CertificateDTO{}, err
	}
	s.publish(KindUpdated, EntityCertificate, c.ID)
	return ToCertificateDTO(c), nil
}

// DeleteCertificate removes certificate id. Ordered certificates cannot be removed.
func (s *Service) DeleteCertificate(ctx context.Context, id int64) error {
	if err := s.certs.DeleteByID(ctx, id); err != nil {
		return err
	}
	s.publish(KindDeleted, EntityCertificate, id)
	return nil
}

// ETag is the entity tag of a certificate representation.
func ETag(c CertificateDTO) (string, error) {
	return checksum.Of(c)
}

func describe(f query.SearchFilter) string {
	var parts []string
	if v, ok := f.Name(); ok {
		parts = append(parts, "name~"+v)
	}
	if v, ok := f.Description(); ok {
		parts = append(parts, "description~"+v)
	}
	if f.HasTags() {
		parts = append(parts, "tags="+strings.Join(f.TagNames(), ","))
	}
	if t, o, ok := f.Sort(); ok {
		parts = append(parts, "sort="+string(t)+" "+string(o))
	}
	parts = append(parts, f.Pagination().String())
	return strings.Join(parts, " ")
}
