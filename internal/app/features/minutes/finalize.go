// internal/app/features/minutes/finalize.go
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

// HandleFinalize freezes a minutes and merges its carried-forward topics
// into the series projection. Moderator only.
//
// Route: POST /minutes/{id}/finalize
func (h *Handler) HandleFinalize(w http.ResponseWriter, r *http.Request) {
	h.runTransition(w, r, h.Engine.Finalize)
}

// HandleUnfinalize reverts the latest finalized minutes back to editable and
// rebuilds the series projection from the remaining finalized history.
//
// Route: POST /minutes/{id}/unfinalize
func (h *Handler) HandleUnfinalize(w http.ResponseWriter, r *http.Request) {
	h.runTransition(w, r, h.Engine.Unfinalize)
}

func (h *Handler) runTransition(w http.ResponseWriter, r *http.Request,
	op func(context.Context, workflow.Caller, primitive.ObjectID) error) {

	user, _ := authz.UserCtx(r)

	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "bad minutes id", http.StatusBadRequest)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "minutes state transition")
	defer cancel()

	caller := workflow.Caller{UserID: user.ID, Name: user.Name}
	if err := op(ctx, caller, oid); err != nil {
		apiutil.WriteError(w, h.Log, err)
		return
	}

	m, err := h.Minutes.GetByID(ctx, oid)
	if err != nil {
		apiutil.WriteError(w, h.Log, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusOK, m)
}
