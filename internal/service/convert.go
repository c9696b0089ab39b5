package service

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/starford/giftcert/internal/models"
)

// ToTagDTO converts a stored tag.
func ToTagDTO(t models.Tag) TagDTO {
	return TagDTO{ID: t.ID, Name: t.Name}
}

// ToCertificateDTO converts a stored certificate. Tags are never nil and are
// ordered by name, then id, so equal certificates have equal ETags.
func ToCertificateDTO(c models.Certificate) CertificateDTO {
	tags := make([]TagDTO, len(c.Tags))
	for i, t := range c.Tags {
		tags[i] = ToTagDTO(t)
	}
	slices.SortFunc(tags, func(a, b TagDTO) int {
		if n := cmp.Compare(a.Name, b.Name); n != 0 {
			return n
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return CertificateDTO{
		ID:             c.ID,
		Name:           c.Name,
		Description:    c.Description,
		Price:          c.Price,
		Duration:       c.Duration,
		CreateDate:     c.CreateDate.UTC(),
		LastUpdateDate: c.LastUpdateDate.UTC(),
		Tags:           tags,
	}
}

// ToUserDTO converts a stored user.
func ToUserDTO(u models.User) UserDTO {
	return UserDTO{ID: u.ID, Name: u.Name, Email: u.Email}
}

// ToOrderDTO converts a stored order.
func ToOrderDTO(o models.Order) OrderDTO {
	return OrderDTO{
		ID:            o.ID,
		Number:        o.Number,
		UserID:        o.UserID,
		CertificateID: o.CertificateID,
		Cost:          o.Cost,
		PurchaseDate:  o.PurchaseDate.UTC(),
	}
}

// FromCertificateInput builds a new certificate created at now. Tag names are
// trimmed; linking deduplicates them.
func FromCertificateInput(in CertificateInput, now time.Time) models.Certificate {
	c := models.Certificate{
		Name:           strings.TrimSpace(in.Name),
		Description:    in.Description,
		Price:          in.Price,
		Duration:       in.Duration,
		CreateDate:     now,
		LastUpdateDate: now,
		Tags:           make([]models.Tag, 0, len(in.Tags)),
	}
	for _, name := range in.Tags {
		c.Tags = append(c.Tags, models.Tag{Name: strings.TrimSpace(name)})
	}
	return c
}

// FromTagInput builds a new tag.
func FromTagInput(in TagInput) models.Tag {
	return models.Tag{Name: strings.TrimSpace(in.Name)}
}

// FromUserInput builds a new user. Emails are stored lowercased.
func FromUserInput(in UserInput) models.User {
	return models.User{
		Name:  strings.TrimSpace(in.Name),
		Email: strings.ToLower(strings.TrimSpace(in.Email)),
	}
}
