// internal/app/workflow/topics.go
package workflow

import (
	"context"
	"errors"
	"fmt"

	minutesstore "github.com/bubonicfred/5minitz-sub000/internal/app/store/minutes"
	"github.com/bubonicfred/5minitz-sub000/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// updateUnfinalized runs a read-compute-write cycle on an unfinalized
// minutes, retrying lost optimistic-lock races per the engine config.
func (e *Engine) updateUnfinalized(ctx context.Context, minutesID primitive.ObjectID, mutate func(*models.Minutes) error) (models.Minutes, error) {
	for attempt := 0; ; attempt++ {
		m, err := e.minutes.GetByID(ctx, minutesID)
		if err != nil {
			return models.Minutes{}, err
		}
		if m.IsFinalized {
			return models.Minutes{}, fmt.Errorf("%w: minutes are finalized", ErrNotAllowed)
		}
		if err := mutate(&m); err != nil {
			return models.Minutes{}, err
		}
		err = e.minutes.Replace(ctx, &m)
		if errors.Is(err, minutesstore.ErrVersionConflict) {
			if attempt < e.cfg.WriteRetries {
				continue
			}
			return models.Minutes{}, fmt.Errorf("%w: %v", ErrConcurrentModification, err)
		}
		return m, err
	}
}

// AddTopic inserts a new topic into an unfinalized minutes.
func (e *Engine) AddTopic(ctx context.Context, caller Caller, minutesID primitive.ObjectID, t models.Topic) (models.Minutes, error) {
	return e.updateUnfinalized(ctx, minutesID, func(m *models.Minutes) error {
		return m.AddTopic(t)
	})
}

// UpdateTopic replaces a topic in place (subject, responsibles, labels).
// Lifecycle flags go through the dedicated toggle operations.
func (e *Engine) UpdateTopic(ctx context.Context, caller Caller, minutesID primitive.ObjectID, t models.Topic) (models.Minutes, error) {
	return e.updateUnfinalized(ctx, minutesID, func(m *models.Minutes) error {
		cur, ok := m.FindTopic(t.ID)
		if !ok {
			return models.ErrTopicNotFound
		}
		// Only content fields are caller-writable.
		cur.Subject = t.Subject
		cur.Responsibles = append([]string(nil), t.Responsibles...)
		cur.LabelIDs = append([]string(nil), t.LabelIDs...)
		return nil
	})
}

// RemoveTopic deletes a topic created in this minutes; a carried-in topic
// degrades to closed with its open action items closed. The result tells the
// caller which path was taken.
func (e *Engine) RemoveTopic(ctx context.Context, caller Caller, minutesID primitive.ObjectID, topicID string) (models.RemoveTopicResult, error) {
	var res models.RemoveTopicResult
	_, err := e.updateUnfinalized(ctx, minutesID, func(m *models.Minutes) error {
		var err error
		res, err = m.RemoveTopic(topicID)
		return err
	})
	return res, err
}

// ToggleTopicState flips a topic between open and closed, honoring the rule
// that a skipped topic springs back open.
func (e *Engine) ToggleTopicState(ctx context.Context, caller Caller, minutesID primitive.ObjectID, topicID string) (models.Minutes, error) {
	return e.updateUnfinalized(ctx, minutesID, func(m *models.Minutes) error {
		t, ok := m.FindTopic(topicID)
		if !ok {
			return models.ErrTopicNotFound
		}
		t.Toggle()
		return nil
	})
}

// ToggleTopicSkip flips the skipped flag; newly skipped topics are forced
// open.
func (e *Engine) ToggleTopicSkip(ctx context.Context, caller Caller, minutesID primitive.ObjectID, topicID string) (models.Minutes, error) {
	return e.updateUnfinalized(ctx, minutesID, func(m *models.Minutes) error {
		t, ok := m.FindTopic(topicID)
		if !ok {
			return models.ErrTopicNotFound
		}
		t.ToggleSkip()
		return nil
	})
}

// ToggleTopicRecurring flips the recurring flag.
func (e *Engine) ToggleTopicRecurring(ctx context.Context, caller Caller, minutesID primitive.ObjectID, topicID string) (models.Minutes, error) {
	return e.updateUnfinalized(ctx, minutesID, func(m *models.Minutes) error {
		t, ok := m.FindTopic(topicID)
		if !ok {
			return models.ErrTopicNotFound
		}
		t.ToggleRecurring()
		return nil
	})
}

// UpdateGlobalNote replaces the minutes' free-text note.
func (e *Engine) UpdateGlobalNote(ctx context.Context, caller Caller, minutesID primitive.ObjectID, note string) (models.Minutes, error) {
	return e.updateUnfinalized(ctx, minutesID, func(m *models.Minutes) error {
		m.GlobalNote = note
		return nil
	})
}

// SetParticipantPresence flips the presence flag of one participant.
func (e *Engine) SetParticipantPresence(ctx context.Context, caller Caller, minutesID primitive.ObjectID, userID string, present bool) (models.Minutes, error) {
	return e.updateUnfinalized(ctx, minutesID, func(m *models.Minutes) error {
		for i := range m.Participants {
			if m.Participants[i].UserID == userID {
				m.Participants[i].Present = present
				return nil
			}
		}
		return fmt.Errorf("%w: unknown participant %s", ErrValidation, userID)
	})
}
