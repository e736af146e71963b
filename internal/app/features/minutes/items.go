// internal/app/features/minutes/items.go
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
	"github.com/bubonicfred/5minitz-sub000/internal/domain/models"
)

// HandleAddItem adds an info or action item to a topic.
//
// Route: POST /minutes/{id}/topics/{topicID}/items
func (h *Handler) HandleAddItem(w http.ResponseWriter, r *http.Request) {
	user, _ := authz.UserCtx(r)

	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "bad minutes id", http.StatusBadRequest)
		return
	}

	var req itemRequest
	if err := apiutil.DecodeJSON(w, r, &req); err != nil {
		apiutil.WriteError(w, h.Log, fmt.Errorf("%w: %v", workflow.ErrValidation, err))
		return
	}
	it, err := itemFromRequest(req)
	if err != nil {
		apiutil.WriteError(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	caller := workflow.Caller{UserID: user.ID, Name: user.Name}
	m, err := h.Engine.AddItem(ctx, caller, oid, chi.URLParam(r, "topicID"), it)
	if err != nil {
		apiutil.WriteError(w, h.Log, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusCreated, m)
}

// HandleUpdateItem rewrites an item's content fields.
//
// Route: PATCH /minutes/{id}/topics/{topicID}/items/{itemID}
func (h *Handler) HandleUpdateItem(w http.ResponseWriter, r *http.Request) {
	user, _ := authz.UserCtx(r)

	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "bad minutes id", http.StatusBadRequest)
		return
	}

	var req itemRequest
	if err := apiutil.DecodeJSON(w, r, &req); err != nil {
		apiutil.WriteError(w, h.Log, fmt.Errorf("%w: %v", workflow.ErrValidation, err))
		return
	}
	// Kind is immutable after creation and ignored here.
	subject := htmlsanitize.PlainText(req.Subject)
	if subject == "" {
		apiutil.WriteError(w, h.Log,
			fmt.Errorf("%w: subject is required", workflow.ErrValidation))
		return
	}

	it := models.Item{
		ID:           chi.URLParam(r, "itemID"),
		Subject:      subject,
		LabelIDs:     req.LabelIDs,
		Responsibles: req.Responsibles,
		Priority:     req.Priority,
		DueDate:      req.DueDate,
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	caller := workflow.Caller{UserID: user.ID, Name: user.Name}
	m, err := h.Engine.UpdateItem(ctx, caller, oid, chi.URLParam(r, "topicID"), it)
	if err != nil {
		apiutil.WriteError(w, h.Log, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusOK, m)
}

// HandleRemoveItem deletes an item created in this minutes. Carried-in items
// degrade (action items close, sticky info items unstick). Moderators may
// remove any item, uploaders only their own.
//
// Route: DELETE /minutes/{id}/topics/{topicID}/items/{itemID}
func (h *Handler) HandleRemoveItem(w http.ResponseWriter, r *http.Request) {
	user, _ := authz.UserCtx(r)

	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "bad minutes id", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	caller := workflow.Caller{UserID: user.ID, Name: user.Name}
	res, err := h.Engine.RemoveItem(ctx, caller, oid,
		chi.URLParam(r, "topicID"), chi.URLParam(r, "itemID"))
	if err != nil {
		apiutil.WriteError(w, h.Log, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusOK, removeResponse{Degraded: res.Degraded})
}

// HandleToggleItemSticky flips an info item's sticky flag.
//
// Route: POST /minutes/{id}/topics/{topicID}/items/{itemID}/sticky
func (h *Handler) HandleToggleItemSticky(w http.ResponseWriter, r *http.Request) {
	h.runItemToggle(w, r, h.Engine.ToggleItemSticky)
}

// HandleToggleItemState flips an action item between open and closed.
//
// Route: POST /minutes/{id}/topics/{topicID}/items/{itemID}/toggle
func (h *Handler) HandleToggleItemState(w http.ResponseWriter, r *http.Request) {
	h.runItemToggle(w, r, h.Engine.ToggleItemState)
}

func (h *Handler) runItemToggle(w http.ResponseWriter, r *http.Request,
	op func(context.Context, workflow.Caller, primitive.ObjectID, string, string) (models.Minutes, error)) {

	user, _ := authz.UserCtx(r)

	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "bad minutes id", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	caller := workflow.Caller{UserID: user.ID, Name: user.Name}
	m, err := op(ctx, caller, oid, chi.URLParam(r, "topicID"), chi.URLParam(r, "itemID"))
	if err != nil {
		apiutil.WriteError(w, h.Log, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusOK, m)
}

func itemFromRequest(req itemRequest) (models.Item, error) {
	subject := htmlsanitize.PlainText(req.Subject)
	if subject == "" {
		return models.Item{}, fmt.Errorf("%w: subject is required", workflow.ErrValidation)
	}
	switch req.Priority {
	case "", models.PriorityLow, models.PriorityMedium, models.PriorityHigh:
	default:
		return models.Item{}, fmt.Errorf("%w: unknown priority %q", workflow.ErrValidation, req.Priority)
	}

	it := models.Item{
		ID:           req.ID,
		Kind:         req.Kind,
		Subject:      subject,
		LabelIDs:     req.LabelIDs,
		Responsibles: req.Responsibles,
		Priority:     req.Priority,
		DueDate:      req.DueDate,
	}
	if it.Kind == models.ItemKindAction {
		it.IsOpen = true
	}
	return it, nil
}
