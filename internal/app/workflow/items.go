// internal/app/workflow/items.go
package workflow

import (
	"context"
	"fmt"

	"github.com/bubonicfred/5minitz-sub000/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// AddItem inserts a new info or action item into a topic of an unfinalized
// minutes. Free-text responsibles are accumulated on the series so they can
// be offered again later.
func (e *Engine) AddItem(ctx context.Context, caller Caller, minutesID primitive.ObjectID, topicID string, it models.Item) (models.Minutes, error) {
	if it.Kind != models.ItemKindInfo && it.Kind != models.ItemKindAction {
		return models.Minutes{}, fmt.Errorf("%w: unknown item kind %q", ErrValidation, it.Kind)
	}
	var seriesID primitive.ObjectID
	m, err := e.updateUnfinalized(ctx, minutesID, func(m *models.Minutes) error {
		t, ok := m.FindTopic(topicID)
		if !ok {
			return models.ErrTopicNotFound
		}
		it.CreatedBy = caller.UserID
		it.OriginMinutesID = m.ID
		seriesID = m.SeriesID
		return t.AddItem(it)
	})
	if err != nil {
		return models.Minutes{}, err
	}

	if it.Kind == models.ItemKindAction && len(it.Responsibles) > 0 {
		if err := e.updateSeries(ctx, seriesID, func(s *models.MeetingSeries) error {
			s.AddAdditionalResponsibles(it.Responsibles...)
			return nil
		}); err != nil {
			// The item is in; losing a responsible suggestion is not worth
			// failing the request over.
			e.log.Warn("recording additional responsibles failed",
				zap.String("series_id", seriesID.Hex()), zap.Error(err))
		}
	}
	return m, nil
}

// UpdateItem replaces an item's content fields in place.
func (e *Engine) UpdateItem(ctx context.Context, caller Caller, minutesID primitive.ObjectID, topicID string, it models.Item) (models.Minutes, error) {
	return e.updateUnfinalized(ctx, minutesID, func(m *models.Minutes) error {
		_, cur, ok := m.FindItem(topicID, it.ID)
		if !ok || cur == nil {
			return models.ErrItemNotFound
		}
		cur.Subject = it.Subject
		cur.LabelIDs = append([]string(nil), it.LabelIDs...)
		if cur.Kind == models.ItemKindAction {
			cur.Responsibles = append([]string(nil), it.Responsibles...)
			cur.Priority = it.Priority
			cur.DueDate = it.DueDate
		}
		return nil
	})
}

// RemoveItem deletes an item, gated by the shared removal capability
// predicate. Items carried in from earlier minutes degrade (action items
// close, sticky info items unstick) instead of being deleted.
func (e *Engine) RemoveItem(ctx context.Context, caller Caller, minutesID primitive.ObjectID, topicID, itemID string) (models.RemoveTopicResult, error) {
	m, err := e.minutes.GetByID(ctx, minutesID)
	if err != nil {
		return models.RemoveTopicResult{}, err
	}
	isMod, err := e.caps.IsModeratorOf(ctx, m.SeriesID, caller.UserID)
	if err != nil {
		return models.RemoveTopicResult{}, fmt.Errorf("moderator check: %w", err)
	}
	isUp, err := e.caps.IsUploaderFor(ctx, m.SeriesID, caller.UserID)
	if err != nil {
		return models.RemoveTopicResult{}, fmt.Errorf("uploader check: %w", err)
	}

	var res models.RemoveTopicResult
	_, err = e.updateUnfinalized(ctx, minutesID, func(m *models.Minutes) error {
		_, it, ok := m.FindItem(topicID, itemID)
		if !ok || it == nil {
			return models.ErrItemNotFound
		}
		if !it.MayRemove(m.IsFinalized, isMod, isUp, caller.UserID) {
			if !isMod && !isUp {
				return ErrNotUploader
			}
			return ErrNotAllowed
		}
		var err error
		res, err = m.RemoveItem(topicID, itemID)
		return err
	})
	return res, err
}

// ToggleItemSticky flips the sticky flag of an info item.
func (e *Engine) ToggleItemSticky(ctx context.Context, caller Caller, minutesID primitive.ObjectID, topicID, itemID string) (models.Minutes, error) {
	return e.updateUnfinalized(ctx, minutesID, func(m *models.Minutes) error {
		_, it, ok := m.FindItem(topicID, itemID)
		if !ok || it == nil {
			return models.ErrItemNotFound
		}
		it.ToggleSticky(m.IsFinalized)
		return nil
	})
}

// ToggleItemState flips an action item between open and closed.
func (e *Engine) ToggleItemState(ctx context.Context, caller Caller, minutesID primitive.ObjectID, topicID, itemID string) (models.Minutes, error) {
	return e.updateUnfinalized(ctx, minutesID, func(m *models.Minutes) error {
		_, it, ok := m.FindItem(topicID, itemID)
		if !ok || it == nil {
			return models.ErrItemNotFound
		}
		if it.Kind != models.ItemKindAction {
			return fmt.Errorf("%w: only action items have open/closed state", ErrValidation)
		}
		it.ToggleState()
		return nil
	})
}

// AddItemDetail appends a detail entry dated to the minutes' calendar day.
func (e *Engine) AddItemDetail(ctx context.Context, caller Caller, minutesID primitive.ObjectID, topicID, itemID, text string) (models.Minutes, error) {
	return e.updateUnfinalized(ctx, minutesID, func(m *models.Minutes) error {
		_, it, ok := m.FindItem(topicID, itemID)
		if !ok || it == nil {
			return models.ErrItemNotFound
		}
		it.AddDetails(m.Date, caller.UserID, text)
		return nil
	})
}

// UpdateItemDetail rewrites a detail entry; blank text removes it (the
// confirmation before getting here is the caller's concern).
func (e *Engine) UpdateItemDetail(ctx context.Context, caller Caller, minutesID primitive.ObjectID, topicID, itemID string, index int, text string) (models.Minutes, error) {
	return e.updateUnfinalized(ctx, minutesID, func(m *models.Minutes) error {
		_, it, ok := m.FindItem(topicID, itemID)
		if !ok || it == nil {
			return models.ErrItemNotFound
		}
		if text == "" {
			return it.RemoveDetails(index)
		}
		return it.UpdateDetails(index, text)
	})
}

// RemoveItemDetail deletes a detail entry outright.
func (e *Engine) RemoveItemDetail(ctx context.Context, caller Caller, minutesID primitive.ObjectID, topicID, itemID string, index int) (models.Minutes, error) {
	return e.updateUnfinalized(ctx, minutesID, func(m *models.Minutes) error {
		_, it, ok := m.FindItem(topicID, itemID)
		if !ok || it == nil {
			return models.ErrItemNotFound
		}
		return it.RemoveDetails(index)
	})
}
