// internal/app/features/series/topics.go
package series

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bubonicfred/5minitz-sub000/internal/app/system/apiutil"
	"github.com/bubonicfred/5minitz-sub000/internal/app/system/authz"
	"github.com/bubonicfred/5minitz-sub000/internal/app/system/timeouts"
	"github.com/bubonicfred/5minitz-sub000/internal/app/workflow"
	"github.com/bubonicfred/5minitz-sub000/internal/domain/models"
)

// ServeTopics returns the series' carried-forward topic projection.
// With ?open=true only topics still open are returned.
//
// Route: GET /series/{id}/topics
func (h *Handler) ServeTopics(w http.ResponseWriter, r *http.Request) {
	user, _ := authz.UserCtx(r)

	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "bad series id", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	ms, err := h.Series.GetByID(ctx, oid)
	if err != nil {
		apiutil.WriteError(w, h.Log, err)
		return
	}
	if !ms.IsVisibleFor(user.ID) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	topics := ms.AllTopics()
	if r.URL.Query().Get("open") == "true" {
		topics = ms.OpenTopics()
	}
	if topics == nil {
		topics = []models.Topic{}
	}
	apiutil.WriteJSON(w, http.StatusOK, topics)
}

// HandleReopenTopic reopens a resolved topic from the projection. If the
// series has an unfinalized minutes, the topic is injected into it so it is
// on the agenda again.
//
// Route: POST /series/{id}/topics/{topicID}/reopen
func (h *Handler) HandleReopenTopic(w http.ResponseWriter, r *http.Request) {
	user, _ := authz.UserCtx(r)

	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "bad series id", http.StatusBadRequest)
		return
	}
	topicID := chi.URLParam(r, "topicID")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	caller := workflow.Caller{UserID: user.ID, Name: user.Name}
	if err := h.Engine.ReopenTopic(ctx, caller, oid, topicID); err != nil {
		apiutil.WriteError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
