// internal/app/features/minutes/meta.go
package minutes

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bubonicfred/5minitz-sub000/internal/app/system/apiutil"
	"github.com/bubonicfred/5minitz-sub000/internal/app/system/authz"
	"github.com/bubonicfred/5minitz-sub000/internal/app/system/htmlsanitize"
	"github.com/bubonicfred/5minitz-sub000/internal/app/system/timeouts"
	"github.com/bubonicfred/5minitz-sub000/internal/app/workflow"
)

// HandleGlobalNote replaces the minutes-wide free-form note.
//
// Route: PUT /minutes/{id}/global-note
func (h *Handler) HandleGlobalNote(w http.ResponseWriter, r *http.Request) {
	user, _ := authz.UserCtx(r)

	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "bad minutes id", http.StatusBadRequest)
		return
	}

	var req noteRequest
	if err := apiutil.DecodeJSON(w, r, &req); err != nil {
		apiutil.WriteError(w, h.Log, fmt.Errorf("%w: %v", workflow.ErrValidation, err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	caller := workflow.Caller{UserID: user.ID, Name: user.Name}
	m, err := h.Engine.UpdateGlobalNote(ctx, caller, oid, htmlsanitize.Sanitize(req.Text))
	if err != nil {
		apiutil.WriteError(w, h.Log, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusOK, m)
}

// HandlePresence marks a seeded participant present or absent.
//
// Route: PUT /minutes/{id}/participants/{userID}
func (h *Handler) HandlePresence(w http.ResponseWriter, r *http.Request) {
	user, _ := authz.UserCtx(r)

	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "bad minutes id", http.StatusBadRequest)
		return
	}

	var req presenceRequest
	if err := apiutil.DecodeJSON(w, r, &req); err != nil {
		apiutil.WriteError(w, h.Log, fmt.Errorf("%w: %v", workflow.ErrValidation, err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	caller := workflow.Caller{UserID: user.ID, Name: user.Name}
	m, err := h.Engine.SetParticipantPresence(ctx, caller, oid,
		chi.URLParam(r, "userID"), req.Present)
	if err != nil {
		apiutil.WriteError(w, h.Log, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusOK, m)
}
