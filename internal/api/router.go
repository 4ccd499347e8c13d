package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/tagvault/internal/tagservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc tagservice.Vault, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Tags.
	r.Get("/tags", h.ListTags)
	r.Post("/tags/refresh", h.RefreshTags)
	r.Get("/tags/{tag}", h.GetTagContent)
	r.Delete("/tags/{tag}", h.DeleteTagContent)

	// Parsed note view.
	r.Get("/notes/*", h.GetNote)

	// Search.
	r.Get("/search", h.Search)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
