// internal/app/features/minutes/routes.go
package minutes

import (
	"github.com/go-chi/chi/v5"

	"github.com/bubonicfred/5minitz-sub000/internal/app/system/authz"
)

// Routes mounts all minutes routes under the base path
// (typically "/api/minutes" from bootstrap).
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authz.RequireUser)

	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)

	r.Get("/{id}", h.ServeView)
	r.Delete("/{id}", h.HandleDelete)

	// Lifecycle transitions
	r.Post("/{id}/finalize", h.HandleFinalize)
	r.Post("/{id}/unfinalize", h.HandleUnfinalize)

	// Minutes-wide fields
	r.Put("/{id}/global-note", h.HandleGlobalNote)
	r.Put("/{id}/participants/{userID}", h.HandlePresence)

	// Topics
	r.Post("/{id}/topics", h.HandleAddTopic)
	r.Patch("/{id}/topics/{topicID}", h.HandleUpdateTopic)
	r.Delete("/{id}/topics/{topicID}", h.HandleRemoveTopic)
	r.Post("/{id}/topics/{topicID}/toggle", h.HandleToggleTopicState)
	r.Post("/{id}/topics/{topicID}/skip", h.HandleToggleTopicSkip)
	r.Post("/{id}/topics/{topicID}/recurring", h.HandleToggleTopicRecurring)

	// Items
	r.Post("/{id}/topics/{topicID}/items", h.HandleAddItem)
	r.Patch("/{id}/topics/{topicID}/items/{itemID}", h.HandleUpdateItem)
	r.Delete("/{id}/topics/{topicID}/items/{itemID}", h.HandleRemoveItem)
	r.Post("/{id}/topics/{topicID}/items/{itemID}/toggle", h.HandleToggleItemState)
	r.Post("/{id}/topics/{topicID}/items/{itemID}/sticky", h.HandleToggleItemSticky)

	// Item details
	r.Post("/{id}/topics/{topicID}/items/{itemID}/details", h.HandleAddDetail)
	r.Patch("/{id}/topics/{topicID}/items/{itemID}/details/{index}", h.HandleUpdateDetail)
	r.Delete("/{id}/topics/{topicID}/items/{itemID}/details/{index}", h.HandleRemoveDetail)

	return r
}
