// internal/app/features/minutes/view.go
package minutes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bubonicfred/5minitz-sub000/internal/app/system/apiutil"
	"github.com/bubonicfred/5minitz-sub000/internal/app/system/authz"
	"github.com/bubonicfred/5minitz-sub000/internal/app/system/timeouts"
	"github.com/bubonicfred/5minitz-sub000/internal/domain/models"
)

// ServeList returns the minutes of a series, newest first.
//
// Route: GET /minutes?series_id={hex}
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	user, _ := authz.UserCtx(r)

	seriesID, err := primitive.ObjectIDFromHex(r.URL.Query().Get("series_id"))
	if err != nil {
		http.Error(w, "bad or missing series_id", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	ms, err := h.Series.GetByID(ctx, seriesID)
	if err != nil {
		apiutil.WriteError(w, h.Log, err)
		return
	}
	if !ms.IsVisibleFor(user.ID) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	list, err := h.Minutes.ListBySeries(ctx, seriesID)
	if err != nil {
		apiutil.WriteError(w, h.Log, err)
		return
	}
	if list == nil {
		list = []models.Minutes{}
	}
	apiutil.WriteJSON(w, http.StatusOK, list)
}

// ServeView returns a single minutes document.
//
// Route: GET /minutes/{id}
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	user, _ := authz.UserCtx(r)

	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "bad minutes id", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	m, err := h.Minutes.GetByID(ctx, oid)
	if err != nil {
		apiutil.WriteError(w, h.Log, err)
		return
	}
	ms, err := h.Series.GetByID(ctx, m.SeriesID)
	if err != nil {
		apiutil.WriteError(w, h.Log, err)
		return
	}
	if !ms.IsVisibleFor(user.ID) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	apiutil.WriteJSON(w, http.StatusOK, m)
}
