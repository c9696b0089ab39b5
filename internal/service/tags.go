package service

import (
	"context"

	"github.com/starford/giftcert/internal/query"
)

// GetTag returns one tag.
func (s *Service) GetTag(ctx context.Context, id int64) (TagDTO, error) {
	t, err := s.tags.FindByID(ctx, id)
	if err != nil {
		return TagDTO{}, err
	}
	return ToTagDTO(t), nil
}

// ListTags returns one page of tags ordered by id.
func (s *Service) ListTags(ctx context.Context, p query.Pagination) (query.Page[TagDTO], error) {
	page, err := s.tags.FindPage(ctx, p)
	if err != nil {
		return query.Page[TagDTO]{}, err
	}
	return query.Map(page, ToTagDTO), nil
}

// CreateTag stores a new tag. A taken name yields ErrAlreadyExists.
func (s *Service) CreateTag(ctx context.Context, in TagInput) (TagDTO, error) {
	if err := in.Validate(); err != nil {
		return TagDTO{}, invalid(err)
	}
	t := FromTagInput(in)
	if err := s.tags.Create(ctx, &t); err != nil {
		return TagDTO{}, err
	}
	s.publish(KindCreated, EntityTag, t.ID)
	return ToTagDTO(t), nil
}

// DeleteTag removes a tag and its certificate links.
func (s *Service) DeleteTag(ctx context.Context, id int64) error {
	if err := s.tags.DeleteByID(ctx, id); err != nil {
		return err
	}
	s.publish(KindDeleted, EntityTag, id)
	return nil
}
