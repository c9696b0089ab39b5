package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/giftcert/internal/service"
)

// Auth modes understood by NewRouter.
const (
	AuthDisabled = "disabled"
	AuthToken    = "token"
	AuthWrites   = "writes"
)

// RouterConfig configures NewRouter.
type RouterConfig struct {
	// BasePath is where the router is mounted; it prefixes generated links.
	BasePath string
	AuthMode string
	Token    string
	Pages    PageConfig
	// Events, if non-nil, is mounted at GET /events behind the same auth.
	Events http.Handler
}

// NewRouter creates a chi router with all API routes mounted.
func NewRouter(svc *service.Service, cfg RouterConfig) chi.Router {
	h := NewHandler(svc, cfg.Pages, cfg.BasePath)

	r := chi.NewRouter()
	switch cfg.AuthMode {
	case AuthToken:
		r.Use(AuthMiddleware(true, cfg.Token))
	case AuthWrites:
		r.Use(WriteAuthMiddleware(cfg.Token))
	default:
		r.Use(AuthMiddleware(false, ""))
	}

	r.Route("/certificates", func(r chi.Router) {
		r.Get("/", h.SearchCertificates)
		r.Post("/", h.CreateCertificate)
		r.Get("/{id}", h.GetCertificate)
		r.Put("/{id}", h.UpdateCertificate)
		r.Delete("/{id}", h.DeleteCertificate)
	})

	r.Route("/tags", func(r chi.Router) {
		r.Get("/", h.ListTags)
		r.Post("/", h.CreateTag)
		r.Get("/{id}", h.GetTag)
		r.Delete("/{id}", h.DeleteTag)
	})

	r.Route("/users", func(r chi.Router) {
		r.Get("/", h.ListUsers)
		r.Post("/", h.CreateUser)
		r.Get("/{id}", h.GetUser)
		r.Get("/{id}/orders", h.ListUserOrders)
		r.Post("/{id}/orders", h.CreateOrder)
	})

	r.Get("/orders/{id}", h.GetOrder)
	r.Get("/stats", h.Stats)

	if cfg.Events != nil {
		r.Get("/events", cfg.Events.ServeHTTP)
	}

	return r
}
