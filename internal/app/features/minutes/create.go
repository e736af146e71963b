// internal/app/features/minutes/create.go
package minutes

import (
	"context"
	"fmt"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bubonicfred/5minitz-sub000/internal/app/system/apiutil"
	"github.com/bubonicfred/5minitz-sub000/internal/app/system/authz"
	"github.com/bubonicfred/5minitz-sub000/internal/app/system/timeouts"
	"github.com/bubonicfred/5minitz-sub000/internal/app/workflow"
)

// HandleCreate creates the next minutes of a series, seeded with the
// carried-forward topics. Fails while an unfinalized minutes exists or when
// the date does not advance.
//
// Route: POST /minutes
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user, _ := authz.UserCtx(r)

	var req createRequest
	if err := apiutil.DecodeJSON(w, r, &req); err != nil {
		apiutil.WriteError(w, h.Log, fmt.Errorf("%w: %v", workflow.ErrValidation, err))
		return
	}
	seriesID, err := primitive.ObjectIDFromHex(req.SeriesID)
	if err != nil {
		apiutil.WriteError(w, h.Log, fmt.Errorf("%w: bad series id", workflow.ErrValidation))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	caller := workflow.Caller{UserID: user.ID, Name: user.Name}
	m, err := h.Engine.AddMinutes(ctx, caller, seriesID, req.Date)
	if err != nil {
		apiutil.WriteError(w, h.Log, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusCreated, m)
}
