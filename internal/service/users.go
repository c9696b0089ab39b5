package service

import (
	"context"
	"log/slog"

	"github.com/starford/giftcert/internal/query"
)

// GetUser returns one user.
func (s *Service) GetUser(ctx context.Context, id int64) (UserDTO, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return UserDTO{}, err
	}
	return ToUserDTO(u), nil
}

// ListUsers returns one page of users ordered by id.
func (s *Service) ListUsers(ctx context.Context, p query.Pagination) (query.Page[UserDTO], error) {
	page, err := s.users.FindPage(ctx, p)
	if err != nil {
		return query.Page[UserDTO]{}, err
	}
	return query.Map(page, ToUserDTO), nil
}

// CreateUser registers a user. A taken email yields ErrAlreadyExists.
func (s *Service) CreateUser(ctx context.Context, in UserInput) (UserDTO, error) {
	if err := in.Validate(); err != nil {
		return UserDTO{}, invalid(err)
	}
	u := FromUserInput(in)
	if err := s.users.Create(ctx, &u); err != nil {
		return UserDTO{}, err
	}
	slog.Info("user registered", slog.Int64("id", u.ID))
	s.publish(KindCreated, EntityUser, u.ID)
	return ToUserDTO(u), nil
}
