// internal/app/features/minutes/delete.go
package minutes

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

// HandleDelete deletes an unfinalized minutes and unlinks it from its
// series. Finalized minutes must be unfinalized first.
//
// Route: DELETE /minutes/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user, _ := authz.UserCtx(r)

	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "bad minutes id", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	caller := workflow.Caller{UserID: user.ID, Name: user.Name}
	if err := h.Engine.RemoveMinutes(ctx, caller, oid); err != nil {
		apiutil.WriteError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
