// internal/app/features/series/view.go
package series

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bubonicfred/5minitz-sub000/internal/app/system/apiutil"
	"github.com/bubonicfred/5minitz-sub000/internal/app/system/authz"
	"github.com/bubonicfred/5minitz-sub000/internal/app/system/timeouts"
)

// ServeView returns a single series the caller may see.
//
// Route: GET /series/{id}
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
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
	apiutil.WriteJSON(w, http.StatusOK, ms)
}
