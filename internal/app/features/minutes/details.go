// internal/app/features/minutes/details.go
package minutes

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bubonicfred/5minitz-sub000/internal/app/system/apiutil"
	"github.com/bubonicfred/5minitz-sub000/internal/app/system/authz"
	"github.com/bubonicfred/5minitz-sub000/internal/app/system/htmlsanitize"
	"github.com/bubonicfred/5minitz-sub000/internal/app/system/timeouts"
	"github.com/bubonicfred/5minitz-sub000/internal/app/workflow"
)

// HandleAddDetail appends a detail entry to an item, dated to the minutes'
// calendar day. Blank text is a silent no-op on the engine side.
//
// Route: POST /minutes/{id}/topics/{topicID}/items/{itemID}/details
func (h *Handler) HandleAddDetail(w http.ResponseWriter, r *http.Request) {
	user, _ := authz.UserCtx(r)

	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "bad minutes id", http.StatusBadRequest)
		return
	}

	var req detailRequest
	if err := apiutil.DecodeJSON(w, r, &req); err != nil {
		apiutil.WriteError(w, h.Log, fmt.Errorf("%w: %v", workflow.ErrValidation, err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	caller := workflow.Caller{UserID: user.ID, Name: user.Name}
	m, err := h.Engine.AddItemDetail(ctx, caller, oid,
		chi.URLParam(r, "topicID"), chi.URLParam(r, "itemID"),
		htmlsanitize.Sanitize(req.Text))
	if err != nil {
		apiutil.WriteError(w, h.Log, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusCreated, m)
}

// HandleUpdateDetail rewrites a detail entry's text. Blank text removes the
// entry.
//
// Route: PATCH /minutes/{id}/topics/{topicID}/items/{itemID}/details/{index}
func (h *Handler) HandleUpdateDetail(w http.ResponseWriter, r *http.Request) {
	user, _ := authz.UserCtx(r)

	oid, index, ok := h.detailParams(w, r)
	if !ok {
		return
	}

	var req detailRequest
	if err := apiutil.DecodeJSON(w, r, &req); err != nil {
		apiutil.WriteError(w, h.Log, fmt.Errorf("%w: %v", workflow.ErrValidation, err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	caller := workflow.Caller{UserID: user.ID, Name: user.Name}
	m, err := h.Engine.UpdateItemDetail(ctx, caller, oid,
		chi.URLParam(r, "topicID"), chi.URLParam(r, "itemID"),
		index, htmlsanitize.Sanitize(req.Text))
	if err != nil {
		apiutil.WriteError(w, h.Log, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusOK, m)
}

// HandleRemoveDetail deletes a detail entry.
//
// Route: DELETE /minutes/{id}/topics/{topicID}/items/{itemID}/details/{index}
func (h *Handler) HandleRemoveDetail(w http.ResponseWriter, r *http.Request) {
	user, _ := authz.UserCtx(r)

	oid, index, ok := h.detailParams(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	caller := workflow.Caller{UserID: user.ID, Name: user.Name}
	m, err := h.Engine.RemoveItemDetail(ctx, caller, oid,
		chi.URLParam(r, "topicID"), chi.URLParam(r, "itemID"), index)
	if err != nil {
		apiutil.WriteError(w, h.Log, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusOK, m)
}

func (h *Handler) detailParams(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, int, bool) {
	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "bad minutes id", http.StatusBadRequest)
		return primitive.NilObjectID, 0, false
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		http.Error(w, "bad detail index", http.StatusBadRequest)
		return primitive.NilObjectID, 0, false
	}
	return oid, index, true
}
