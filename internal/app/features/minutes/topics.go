// internal/app/features/minutes/topics.go
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

// HandleAddTopic adds a topic to the top of an unfinalized minutes' agenda.
//
// Route: POST /minutes/{id}/topics
func (h *Handler) HandleAddTopic(w http.ResponseWriter, r *http.Request) {
	user, _ := authz.UserCtx(r)

	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "bad minutes id", http.StatusBadRequest)
		return
	}

	var req topicRequest
	if err := apiutil.DecodeJSON(w, r, &req); err != nil {
		apiutil.WriteError(w, h.Log, fmt.Errorf("%w: %v", workflow.ErrValidation, err))
		return
	}
	subject := htmlsanitize.PlainText(req.Subject)
	if subject == "" {
		apiutil.WriteError(w, h.Log,
			fmt.Errorf("%w: subject is required", workflow.ErrValidation))
		return
	}

	t := models.Topic{
		ID:           req.ID,
		Subject:      subject,
		Responsibles: req.Responsibles,
		LabelIDs:     req.LabelIDs,
		IsOpen:       true,
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	caller := workflow.Caller{UserID: user.ID, Name: user.Name}
	m, err := h.Engine.AddTopic(ctx, caller, oid, t)
	if err != nil {
		apiutil.WriteError(w, h.Log, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusCreated, m)
}

// HandleUpdateTopic rewrites a topic's content fields (subject, responsibles,
// labels). State flags have their own toggle routes.
//
// Route: PATCH /minutes/{id}/topics/{topicID}
func (h *Handler) HandleUpdateTopic(w http.ResponseWriter, r *http.Request) {
	user, _ := authz.UserCtx(r)

	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "bad minutes id", http.StatusBadRequest)
		return
	}

	var req topicRequest
	if err := apiutil.DecodeJSON(w, r, &req); err != nil {
		apiutil.WriteError(w, h.Log, fmt.Errorf("%w: %v", workflow.ErrValidation, err))
		return
	}
	subject := htmlsanitize.PlainText(req.Subject)
	if subject == "" {
		apiutil.WriteError(w, h.Log,
			fmt.Errorf("%w: subject is required", workflow.ErrValidation))
		return
	}

	t := models.Topic{
		ID:           chi.URLParam(r, "topicID"),
		Subject:      subject,
		Responsibles: req.Responsibles,
		LabelIDs:     req.LabelIDs,
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	caller := workflow.Caller{UserID: user.ID, Name: user.Name}
	m, err := h.Engine.UpdateTopic(ctx, caller, oid, t)
	if err != nil {
		apiutil.WriteError(w, h.Log, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusOK, m)
}

// HandleRemoveTopic deletes a topic created in this minutes. A carried-in
// topic degrades to closed instead, with its open action items closed too.
//
// Route: DELETE /minutes/{id}/topics/{topicID}
func (h *Handler) HandleRemoveTopic(w http.ResponseWriter, r *http.Request) {
	user, _ := authz.UserCtx(r)

	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "bad minutes id", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	caller := workflow.Caller{UserID: user.ID, Name: user.Name}
	res, err := h.Engine.RemoveTopic(ctx, caller, oid, chi.URLParam(r, "topicID"))
	if err != nil {
		apiutil.WriteError(w, h.Log, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusOK, removeResponse{Degraded: res.Degraded})
}

// Topic state toggles. Skipping forces a topic open; a skipped topic cannot
// be closed without unskipping it first, which these routes surface as the
// toggled document.

// HandleToggleTopicState flips a topic between open and closed.
//
// Route: POST /minutes/{id}/topics/{topicID}/toggle
func (h *Handler) HandleToggleTopicState(w http.ResponseWriter, r *http.Request) {
	h.runTopicToggle(w, r, h.Engine.ToggleTopicState)
}

// HandleToggleTopicSkip flips the skipped flag.
//
// Route: POST /minutes/{id}/topics/{topicID}/skip
func (h *Handler) HandleToggleTopicSkip(w http.ResponseWriter, r *http.Request) {
	h.runTopicToggle(w, r, h.Engine.ToggleTopicSkip)
}

// HandleToggleTopicRecurring flips the recurring flag.
//
// Route: POST /minutes/{id}/topics/{topicID}/recurring
func (h *Handler) HandleToggleTopicRecurring(w http.ResponseWriter, r *http.Request) {
	h.runTopicToggle(w, r, h.Engine.ToggleTopicRecurring)
}

func (h *Handler) runTopicToggle(w http.ResponseWriter, r *http.Request,
	op func(context.Context, workflow.Caller, primitive.ObjectID, string) (models.Minutes, error)) {

	user, _ := authz.UserCtx(r)

	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "bad minutes id", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	caller := workflow.Caller{UserID: user.ID, Name: user.Name}
	m, err := op(ctx, caller, oid, chi.URLParam(r, "topicID"))
	if err != nil {
		apiutil.WriteError(w, h.Log, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusOK, m)
}
