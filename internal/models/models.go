// Package models defines the persisted entities of the certificate shop.
package models

import "time"

// Tag is a label that can be attached to any number of certificates.
type Tag struct {
	ID   int64
	Name string
}

// Certificate is a purchasable gift certificate.
type Certificate struct {
	ID             int64
	Name           string
	Description    string
	Price          float64
	Duration       int // days
	CreateDate     time.Time
	LastUpdateDate time.Time
	Tags           []Tag
}

// TagNames returns the names of the attached tags in their stored order.
func (c *Certificate) TagNames() []string {
	out := make([]string, len(c.Tags))
	for i, t := range c.Tags {
		out[i] = t.Name
	}
	return out
}

// User is a customer account.
type User struct {
	ID    int64
	Name  string
	Email string
}

// Order records the purchase of one certificate by one user.
type Order struct {
	ID            int64
	Number        string
	UserID        int64
	CertificateID int64
	Cost          float64
	PurchaseDate  time.Time
}
