// internal/app/features/series/edit.go
package series

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bubonicfred/5minitz-sub000/internal/app/system/apiutil"
	"github.com/bubonicfred/5minitz-sub000/internal/app/system/authz"
	"github.com/bubonicfred/5minitz-sub000/internal/app/system/htmlsanitize"
	"github.com/bubonicfred/5minitz-sub000/internal/app/system/timeouts"
	"github.com/bubonicfred/5minitz-sub000/internal/app/workflow"
)

// HandleEdit applies a partial update to a series. Only moderators may edit.
// A moderator cannot remove themselves from the moderator list here; that
// keeps every series with at least one moderator.
//
// Route: PATCH /series/{id}
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	user, _ := authz.UserCtx(r)

	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "bad series id", http.StatusBadRequest)
		return
	}

	var req updateRequest
	if err := apiutil.DecodeJSON(w, r, &req); err != nil {
		apiutil.WriteError(w, h.Log, fmt.Errorf("%w: %v", workflow.ErrValidation, err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	ms, err := h.Series.GetByID(ctx, oid)
	if err != nil {
		apiutil.WriteError(w, h.Log, err)
		return
	}
	if !ms.IsModerator(user.ID) {
		apiutil.WriteError(w, h.Log, workflow.ErrNotModerator)
		return
	}

	if req.Project != nil {
		p := htmlsanitize.PlainText(*req.Project)
		if p == "" {
			apiutil.WriteError(w, h.Log,
				fmt.Errorf("%w: project must not be empty", workflow.ErrValidation))
			return
		}
		ms.Project = p
	}
	if req.Name != nil {
		n := htmlsanitize.PlainText(*req.Name)
		if n == "" {
			apiutil.WriteError(w, h.Log,
				fmt.Errorf("%w: name must not be empty", workflow.ErrValidation))
			return
		}
		ms.Name = n
		ms.NameCI = text.Fold(n)
	}
	if req.Moderators != nil {
		mods := *req.Moderators
		if len(mods) == 0 {
			apiutil.WriteError(w, h.Log,
				fmt.Errorf("%w: series needs at least one moderator", workflow.ErrValidation))
			return
		}
		if !contains(mods, user.ID) {
			apiutil.WriteError(w, h.Log,
				fmt.Errorf("%w: cannot remove yourself from the moderators", workflow.ErrValidation))
			return
		}
		ms.Moderators = mods
	}
	if req.VisibleFor != nil {
		ms.VisibleFor = *req.VisibleFor
	}
	if req.Labels != nil {
		ms.Labels = *req.Labels
	}

	if err := h.Series.Replace(ctx, &ms); err != nil {
		apiutil.WriteError(w, h.Log, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusOK, ms)
}
