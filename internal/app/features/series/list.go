// internal/app/features/series/list.go
package series

import (
	"context"
	"net/http"

	"github.com/bubonicfred/5minitz-sub000/internal/app/system/apiutil"
	"github.com/bubonicfred/5minitz-sub000/internal/app/system/authz"
	"github.com/bubonicfred/5minitz-sub000/internal/app/system/timeouts"
	"github.com/bubonicfred/5minitz-sub000/internal/domain/models"
)

// ServeList returns every series the caller moderates or that is shared
// with them, sorted by folded name.
//
// Route: GET /series
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	user, _ := authz.UserCtx(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Series.ListVisibleFor(ctx, user.ID)
	if err != nil {
		apiutil.WriteError(w, h.Log, err)
		return
	}
	if list == nil {
		list = []models.MeetingSeries{}
	}
	apiutil.WriteJSON(w, http.StatusOK, list)
}
