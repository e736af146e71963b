// internal/app/features/series/delete.go
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
)

// HandleDelete deletes a series and all of its minutes. Moderator only.
//
// Route: DELETE /series/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user, _ := authz.UserCtx(r)

	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "bad series id", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	caller := workflow.Caller{UserID: user.ID, Name: user.Name}
	if err := h.Engine.RemoveSeries(ctx, caller, oid); err != nil {
		apiutil.WriteError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
