package api

import (
	"net/http"
	"strings"

	"github.com/starford/giftcert/internal/service"
)

// Handler holds API route handlers.
type Handler struct {
	svc   *service.Service
	pages PageConfig
	links links
}

// NewHandler creates a new Handler. basePath prefixes every generated link.
func NewHandler(svc *service.Service, pages PageConfig, basePath string) *Handler {
	return &Handler{svc: svc, pages: pages.withDefaults(), links: links{base: strings.TrimSuffix(basePath, "/")}}
}

// SearchCertificates handles GET /api/certificates.
//
//	@Summary		Search certificates
//	@Tags			certificates
//	@Produce		json
//	@Param			name		query		string	false	"Name contains (case-insensitive)"
//	@Param			description	query		string	false	"Description contains (case-insensitive)"
//	@Param			tag			query		string	false	"Required tag; repeat for intersection"
//	@Param			sort		query		string	false	"Sort column"	Enums(name, date, price)
//	@Param			order		query		string	false	"Sort direction"	Enums(asc, desc)
//	@Param			page		query		int		false	"0-based page"
//	@Param			size		query		int		false	"Page size"
//	@Success		200			{object}	PagedResponse[CertificateResource]
//	@Failure		400			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/certificates [get]
func (h *Handler) SearchCertificates(w http.ResponseWriter, r *http.Request) {
	f, err := h.pages.searchFilter(r)
	if err != nil {
		writeError(w, r, "search certificates", err)
		return
	}
	page, err := h.svc.SearchCertificates(r.Context(), f)
	if err != nil {
		writeError(w, r, "search certificates", err)
		return
	}
	writeJSON(w, http.StatusOK, paged(r.URL, page, h.links.certificate))
}

// GetCertificate handles GET /api/certificates/{id}.
//
//	@Summary		Get a certificate
//	@Tags			certificates
//	@Produce		json
//	@Param			id	path		int	true	"Certificate id"
//	@Success		200	{object}	CertificateResource
//	@Header			200	{string}	ETag	"Representation checksum"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/certificates/{id} [get]
func (h *Handler) GetCertificate(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, "get certificate", err)
		return
	}
	c, err := h.svc.GetCertificate(r.Context(), id)
	if err != nil {
		writeError(w, r, "get certificate", err)
		return
	}
	h.writeCertificate(w, r, http.StatusOK, c)
}

// CreateCertificate handles POST /api/certificates.
//
//	@Summary		Create a certificate
//	@Tags			certificates
//	@Accept			json
//	@Produce		json
//	@Param			body	body		service.CertificateInput	true	"Certificate to create"
//	@Success		201		{object}	CertificateResource
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/certificates [post]
func (h *Handler) CreateCertificate(w http.ResponseWriter, r *http.Request) {
	var in service.CertificateInput
	if err := readJSON(w, r, &in); err != nil {
		writeError(w, r, "create certificate", err)
		return
	}
	c, err := h.svc.CreateCertificate(r.Context(), in)
	if err != nil {
		writeError(w, r, "create certificate", err)
		return
	}
	w.Header().Set("Location", h.links.certificate(c).Links["self"].Href)
	h.writeCertificate(w, r, http.StatusCreated, c)
}

// UpdateCertificate handles PUT /api/certificates/{id}.
//
//	@Summary		Replace a certificate with optimistic concurrency
//	@Tags			certificates
//	@Accept			json
//	@Produce		json
//	@Param			id			path		int							true	"Certificate id"
//	@Param			If-Match	header		string						false	"ETag from a previous read"
//	@Param			body		body		service.CertificateInput	true	"New content"
//	@Success		200			{object}	CertificateResource
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/certificates/{id} [put]
func (h *Handler) UpdateCertificate(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, "update certificate", err)
		return
	}
	var in service.CertificateInput
	if err := readJSON(w, r, &in); err != nil {
		writeError(w, r, "update certificate", err)
		return
	}

	// Strip surrounding quotes if present (standard ETag format).
	ifMatch := strings.Trim(r.Header.Get("If-Match"), `"`)

	c, err := h.svc.UpdateCertificate(r.Context(), id, in, ifMatch)
	if err != nil {
		writeError(w, r, "update certificate", err)
		return
	}
	h.writeCertificate(w, r, http.StatusOK, c)
}

// DeleteCertificate handles DELETE /api/certificates/{id}.
//
//	@Summary		Delete a certificate
//	@Tags			certificates
//	@Param			id	path	int	true	"Certificate id"
//	@Success		204	"Certificate deleted"
//	@Failure		404	{object}	errResponse
//	@Failure		409	{object}	errResponse	"Certificate has orders"
//	@Security		BearerAuth
//	@Router			/certificates/{id} [delete]
func (h *Handler) DeleteCertificate(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, "delete certificate", err)
		return
	}
	if err := h.svc.DeleteCertificate(r.Context(), id); err != nil {
		writeError(w, r, "delete certificate", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeCertificate(w http.ResponseWriter, r *http.Request, status int, c service.CertificateDTO) {
	etag, err := service.ETag(c)
	if err != nil {
		writeError(w, r, "certificate etag", err)
		return
	}
	w.Header().Set("ETag", `"`+etag+`"`)
	writeJSON(w, status, h.links.certificate(c))
}

// ListTags handles GET /api/tags.
//
//	@Summary		List tags
//	@Tags			tags
//	@Produce		json
//	@Param			page	query		int	false	"0-based page"
//	@Param			size	query		int	false	"Page size"
//	@Success		200		{object}	PagedResponse[TagResource]
//	@Security		BearerAuth
//	@Router			/tags [get]
func (h *Handler) ListTags(w http.ResponseWriter, r *http.Request) {
	p, err := h.pages.pagination(r)
	if err != nil {
		writeError(w, r, "list tags", err)
		return
	}
	page, err := h.svc.ListTags(r.Context(), p)
	if err != nil {
		writeError(w, r, "list tags", err)
		return
	}
	writeJSON(w, http.StatusOK, paged(r.URL, page, h.links.tag))
}

// GetTag handles GET /api/tags/{id}.
func (h *Handler) GetTag(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, "get tag", err)
		return
	}
	t, err := h.svc.GetTag(r.Context(), id)
	if err != nil {
		writeError(w, r, "get tag", err)
		return
	}
	writeJSON(w, http.StatusOK, h.links.tag(t))
}

// CreateTag handles POST /api/tags.
func (h *Handler) CreateTag(w http.ResponseWriter, r *http.Request) {
	var in service.TagInput
	if err := readJSON(w, r, &in); err != nil {
		writeError(w, r, "create tag", err)
		return
	}
	t, err := h.svc.CreateTag(r.Context(), in)
	if err != nil {
		writeError(w, r, "create tag", err)
		return
	}
	res := h.links.tag(t)
	w.Header().Set("Location", res.Links["self"].Href)
	writeJSON(w, http.StatusCreated, res)
}

// DeleteTag handles DELETE /api/tags/{id}.
func (h *Handler) DeleteTag(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, "delete tag", err)
		return
	}
	if err := h.svc.DeleteTag(r.Context(), id); err != nil {
		writeError(w, r, "delete tag", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListUsers handles GET /api/users.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	p, err := h.pages.pagination(r)
	if err != nil {
		writeError(w, r, "list users", err)
		return
	}
	page, err := h.svc.ListUsers(r.Context(), p)
	if err != nil {
		writeError(w, r, "list users", err)
		return
	}
	writeJSON(w, http.StatusOK, paged(r.URL, page, h.links.user))
}

// GetUser handles GET /api/users/{id}.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, "get user", err)
		return
	}
	u, err := h.svc.GetUser(r.Context(), id)
	if err != nil {
		writeError(w, r, "get user", err)
		return
	}
	writeJSON(w, http.StatusOK, h.links.user(u))
}

// CreateUser handles POST /api/users.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var in service.UserInput
	if err := readJSON(w, r, &in); err != nil {
		writeError(w, r, "create user", err)
		return
	}
	u, err := h.svc.CreateUser(r.Context(), in)
	if err != nil {
		writeError(w, r, "create user", err)
		return
	}
	res := h.links.user(u)
	w.Header().Set("Location", res.Links["self"].Href)
	writeJSON(w, http.StatusCreated, res)
}

// ListUserOrders handles GET /api/users/{id}/orders.
func (h *Handler) ListUserOrders(w http.ResponseWriter, r *http.Request) {
	userID, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, "list user orders", err)
		return
	}
	p, err := h.pages.pagination(r)
	if err != nil {
		writeError(w, r, "list user orders", err)
		return
	}
	page, err := h.svc.ListUserOrders(r.Context(), userID, p)
	if err != nil {
		writeError(w, r, "list user orders", err)
		return
	}
	writeJSON(w, http.StatusOK, paged(r.URL, page, h.links.order))
}

// CreateOrder handles POST /api/users/{id}/orders.
//
//	@Summary		Purchase a certificate
//	@Tags			orders
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int					true	"User id"
//	@Param			body	body		service.OrderInput	true	"Certificate to buy"
//	@Success		201		{object}	OrderResource
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/users/{id}/orders [post]
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	userID, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, "create order", err)
		return
	}
	var in service.OrderInput
	if err := readJSON(w, r, &in); err != nil {
		writeError(w, r, "create order", err)
		return
	}
	o, err := h.svc.CreateOrder(r.Context(), userID, in)
	if err != nil {
		writeError(w, r, "create order", err)
		return
	}
	res := h.links.order(o)
	w.Header().Set("Location", res.Links["self"].Href)
	writeJSON(w, http.StatusCreated, res)
}

// GetOrder handles GET /api/orders/{id}.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, "get order", err)
		return
	}
	o, err := h.svc.GetOrder(r.Context(), id)
	if err != nil {
		writeError(w, r, "get order", err)
		return
	}
	writeJSON(w, http.StatusOK, h.links.order(o))
}

// Stats handles GET /api/stats.
//
//	@Summary		Entity totals
//	@Tags			stats
//	@Produce		json
//	@Success		200	{object}	StatsResponse
//	@Failure		503	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/stats [get]
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	totals, err := h.svc.Stats(r.Context())
	if err != nil {
		writeError(w, r, "stats", err)
		return
	}
	writeJSON(w, http.StatusOK, StatsResponse{
		Totals: totals,
		Links:  Links{"self": h.links.href("stats")},
	})
}
