// internal/app/features/series/routes.go
package series

import (
	"github.com/go-chi/chi/v5"

	"github.com/bubonicfred/5minitz-sub000/internal/app/system/authz"
)

// Routes mounts all series routes under the base path
// (typically "/api/series" from bootstrap).
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authz.RequireUser)

	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)

	r.Get("/{id}", h.ServeView)
	r.Patch("/{id}", h.HandleEdit)
	r.Delete("/{id}", h.HandleDelete)

	// Cross-minutes topic views and the reopen escape hatch.
	r.Get("/{id}/topics", h.ServeTopics)
	r.Post("/{id}/topics/{topicID}/reopen", h.HandleReopenTopic)

	return r
}
