package api

import (
	"net/url"
	"strconv"

	"github.com/starford/giftcert/internal/query"
	"github.com/starford/giftcert/internal/service"
)

// Link is a hypermedia reference.
type Link struct {
	Href string `json:"href" example:"/api/certificates/1" validate:"required"`
}

// Links maps a relation name to its link.
type Links map[string]Link

// PageMeta describes the window a list response covers.
type PageMeta struct {
	Number        int   `json:"number" example:"0"`
	Size          int   `json:"size" example:"10"`
	TotalElements int64 `json:"totalElements" example:"42"`
	TotalPages    int   `json:"totalPages" example:"5"`
}

// PagedResponse wraps one page of resources.
type PagedResponse[T any] struct {
	Items []T      `json:"items" validate:"required"`
	Page  PageMeta `json:"page" validate:"required"`
	Links Links    `json:"_links" validate:"required"`
}

// CertificateResource is a certificate with its links.
type CertificateResource struct {
	service.CertificateDTO
	Links Links `json:"_links"`
}

// TagResource is a tag with its links.
type TagResource struct {
	service.TagDTO
	Links Links `json:"_links"`
}

// UserResource is a user with its links.
type UserResource struct {
	service.UserDTO
	Links Links `json:"_links"`
}

// OrderResource is an order with its links.
type OrderResource struct {
	service.OrderDTO
	Links Links `json:"_links"`
}

// StatsResponse carries entity totals.
type StatsResponse struct {
	Totals map[string]int64 `json:"totals" validate:"required"`
	Links  Links            `json:"_links"`
}

// links builds resource links relative to the API base path.
type links struct {
	base string
}

func (l links) href(parts ...string) Link {
	p := l.base
	for _, s := range parts {
		p += "/" + s
	}
	return Link{Href: p}
}

func itoa(n int64) string { return strconv.FormatInt(n, 10) }

func (l links) certificate(c service.CertificateDTO) CertificateResource {
	return CertificateResource{
		CertificateDTO: c,
		Links:          Links{"self": l.href("certificates", itoa(c.ID))},
	}
}

func (l links) tag(t service.TagDTO) TagResource {
	q := url.Values{"tag": {t.Name}}
	return TagResource{
		TagDTO: t,
		Links: Links{
			"self":         l.href("tags", itoa(t.ID)),
			"certificates": {Href: l.base + "/certificates?" + q.Encode()},
		},
	}
}

func (l links) user(u service.UserDTO) UserResource {
	return UserResource{
		UserDTO: u,
		Links: Links{
			"self":   l.href("users", itoa(u.ID)),
			"orders": l.href("users", itoa(u.ID), "orders"),
		},
	}
}

func (l links) order(o service.OrderDTO) OrderResource {
	return OrderResource{
		OrderDTO: o,
		Links: Links{
			"self":        l.href("orders", itoa(o.ID)),
			"user":        l.href("users", itoa(o.UserID)),
			"certificate": l.href("certificates", itoa(o.CertificateID)),
		},
	}
}

// paged wraps page with navigation links derived from the request URL, so
// every other query parameter is preserved. prev and next are omitted at the
// edges; first and last are always present.
func paged[T, R any](u *url.URL, page query.Page[T], conv func(T) R) PagedResponse[R] {
	p := page.Pagination
	items := make([]R, len(page.Items))
	for i, it := range page.Items {
		items[i] = conv(it)
	}

	at := func(n int) Link {
		q := u.Query()
		q.Set("page", strconv.Itoa(n))
		q.Set("size", strconv.Itoa(p.Size()))
		return Link{Href: u.Path + "?" + q.Encode()}
	}

	last := page.TotalPages() - 1
	if last < 0 {
		last = 0
	}
	l := Links{
		"self":  at(p.Page()),
		"first": at(0),
		"last":  at(last),
	}
	if page.HasPrevious() {
		l["prev"] = at(min(p.Page()-1, last))
	}
	if page.HasNext() {
		l["next"] = at(p.Page() + 1)
	}

	return PagedResponse[R]{
		Items: items,
		Page: PageMeta{
			Number:        p.Page(),
			Size:          p.Size(),
			TotalElements: page.TotalMatching,
			TotalPages:    page.TotalPages(),
		},
		Links: l,
	}
}
