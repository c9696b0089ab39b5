package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/starford/giftcert/internal/models"
	"github.com/starford/giftcert/internal/query"
)

// CreateOrder records the purchase of a certificate by user userID. The cost
// is the certificate price at the time of purchase.
func (s *Service) CreateOrder(ctx context.Context, userID int64, in OrderInput) (OrderDTO, error) {
	if err := in.Validate(); err != nil {
		return OrderDTO{}, invalid(err)
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return OrderDTO{}, err
	}
	cert, err := s.certs.FindByID(ctx, in.CertificateID)
	if err != nil {
		return OrderDTO{}, err
	}

	o := models.Order{
		Number:        uuid.NewString(),
		UserID:        userID,
		CertificateID: cert.ID,
		Cost:          cert.Price,
		PurchaseDate:  s.clock(),
	}
	if err := s.orders.Create(ctx, &o); err != nil {
		return OrderDTO{}, err
	}
	slog.Info("order placed",
		slog.String("number", o.Number),
		slog.Int64("user_id", userID),
		slog.Int64("certificate_id", cert.ID))
	s.publish(KindCreated, EntityOrder, o.ID)
	return ToOrderDTO(o), nil
}

// GetOrder returns one order.
func (s *Service) GetOrder(ctx context.Context, id int64) (OrderDTO, error) {
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return OrderDTO{}, err
	}
	return ToOrderDTO(o), nil
}

// ListUserOrders returns one page of a user's orders. An unknown user yields ErrNotFound.
func (s *Service) ListUserOrders(ctx context.Context, userID int64, p query.Pagination) (query.Page[OrderDTO], error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return query.Page[OrderDTO]{}, err
	}
	page, err := s.orders.FindByUserAndPage(ctx, userID, p)
	if err != nil {
		return query.Page[OrderDTO]{}, err
	}
	return query.Map(page, ToOrderDTO), nil
}
