package service

import (
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// TagDTO is the API representation of a tag.
type TagDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CertificateDTO is the API representation of a certificate.
type CertificateDTO struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Price          float64   `json:"price"`
	Duration       int       `json:"duration"`
	CreateDate     time.Time `json:"create_date"`
	LastUpdateDate time.Time `json:"last_update_date"`
	Tags           []TagDTO  `json:"tags"`
}

// UserDTO is the API representation of a user.
type UserDTO struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// OrderDTO is the API representation of an order.
type OrderDTO struct {
	ID            int64     `json:"id"`
	Number        string    `json:"number"`
	UserID        int64     `json:"user_id"`
	CertificateID int64     `json:"certificate_id"`
	Cost          float64   `json:"cost"`
	PurchaseDate  time.Time `json:"purchase_date"`
}

// CertificateInput is the writable part of a certificate.
type CertificateInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Duration    int      `json:"duration"`
	Tags        []string `json:"tags"`
}

// Validate checks field constraints.
func (in CertificateInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.Length(1, 255), validation.Match(nonBlankRe)),
		validation.Field(&in.Description, validation.Length(0, 2000)),
		validation.Field(&in.Price, validation.Min(0.0)),
		validation.Field(&in.Duration, validation.Required, validation.Min(1)),
		validation.Field(&in.Tags, validation.Each(validation.Required, validation.Length(1, 64), validation.Match(nonBlankRe).Error("must not be blank"))),
	)
}

// TagInput is the writable part of a tag.
type TagInput struct {
	Name string `json:"name"`
}

// Validate checks field constraints.
func (in TagInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.Length(1, 64), validation.Match(nonBlankRe).Error("must not be blank")),
	)
}

var (
	emailRe    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	nonBlankRe = regexp.MustCompile(`\S`)
)

// UserInput is the writable part of a user.
type UserInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Validate checks field constraints.
func (in UserInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.Length(1, 255)),
		validation.Field(&in.Email, validation.Required, validation.Match(emailRe).Error("must be a valid email address")),
	)
}

// OrderInput names the certificate being purchased.
type OrderInput struct {
	CertificateID int64 `json:"certificate_id"`
}

// Validate checks field constraints.
func (in OrderInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.CertificateID, validation.Required, validation.Min(int64(1))),
	)
}
