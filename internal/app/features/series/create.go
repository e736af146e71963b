// internal/app/features/series/create.go
package series

import (
	"context"
	"fmt"
	"net/http"

	"github.com/bubonicfred/5minitz-sub000/internal/app/system/apiutil"
	"github.com/bubonicfred/5minitz-sub000/internal/app/system/authz"
	"github.com/bubonicfred/5minitz-sub000/internal/app/system/htmlsanitize"
	"github.com/bubonicfred/5minitz-sub000/internal/app/system/timeouts"
	"github.com/bubonicfred/5minitz-sub000/internal/app/workflow"
	"github.com/bubonicfred/5minitz-sub000/internal/domain/models"
)

// HandleCreate creates a new meeting series with the caller as moderator.
//
// Route: POST /series
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user, _ := authz.UserCtx(r)

	var req createRequest
	if err := apiutil.DecodeJSON(w, r, &req); err != nil {
		apiutil.WriteError(w, h.Log, fmt.Errorf("%w: %v", workflow.ErrValidation, err))
		return
	}

	project := htmlsanitize.PlainText(req.Project)
	name := htmlsanitize.PlainText(req.Name)
	if project == "" || name == "" {
		apiutil.WriteError(w, h.Log,
			fmt.Errorf("%w: project and name are required", workflow.ErrValidation))
		return
	}

	// Creator always moderates, even if omitted from the request.
	moderators := req.Moderators
	if !contains(moderators, user.ID) {
		moderators = append([]string{user.ID}, moderators...)
	}

	ms := models.MeetingSeries{
		Project:    project,
		Name:       name,
		Moderators: moderators,
		VisibleFor: req.VisibleFor,
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	created, err := h.Series.Create(ctx, ms)
	if err != nil {
		apiutil.WriteError(w, h.Log, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusCreated, created)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
