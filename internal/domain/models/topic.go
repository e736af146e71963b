// internal/domain/models/topic.go
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Topic is a single discussion subject inside a minutes document. The same
// topic id reappears in successive minutes when the topic is carried forward,
// and in the series' denormalized topic projection.
//
// Topics are embedded value objects: they are never stored as independent
// rows in the steady-state schema (the normalized variant exists only as a
// migration version).
type Topic struct {
	ID           string   `bson:"id" json:"id"`
	Subject      string   `bson:"subject" json:"subject"`
	Responsibles []string `bson:"responsibles" json:"responsibles"`

	IsOpen      bool `bson:"is_open" json:"is_open"`
	IsRecurring bool `bson:"is_recurring" json:"is_recurring"`
	IsSkipped   bool `bson:"is_skipped" json:"is_skipped"`
	IsNew       bool `bson:"is_new" json:"is_new"`

	LabelIDs []string `bson:"label_ids,omitempty" json:"label_ids,omitempty"`
	Items    []Item   `bson:"items" json:"items"`

	// OriginMinutesID is the minutes document this topic was first created in.
	OriginMinutesID primitive.ObjectID `bson:"origin_minutes_id" json:"origin_minutes_id"`
}

// Open marks the topic as still under discussion.
func (t *Topic) Open() {
	t.IsOpen = true
}

// Close marks the topic as discussed. A skipped topic cannot be closed; an
// attempt while skipped forces the topic open instead.
func (t *Topic) Close() {
	if t.IsSkipped {
		t.IsOpen = true
		return
	}
	t.IsOpen = false
}

// Toggle flips the open/closed state, honoring the skip rule in Close.
func (t *Topic) Toggle() {
	if t.IsOpen {
		t.Close()
	} else {
		t.Open()
	}
}

// ToggleSkip flips the skipped flag. A newly skipped topic is forced open;
// unskipping leaves the open state alone.
func (t *Topic) ToggleSkip() {
	t.IsSkipped = !t.IsSkipped
	if t.IsSkipped {
		t.IsOpen = true
	}
}

// ToggleRecurring flips the recurring flag without touching the open state.
func (t *Topic) ToggleRecurring() {
	t.IsRecurring = !t.IsRecurring
}

// IsDeleteAllowed reports whether the topic may be hard-deleted from the
// given minutes. Only topics created in that minutes qualify; everything
// else degrades to close (see Minutes.RemoveTopic).
func (t *Topic) IsDeleteAllowed(currentMinutesID primitive.ObjectID) bool {
	return t.OriginMinutesID == currentMinutesID
}

// HasOpenActionItems reports whether any action item on the topic is open.
func (t *Topic) HasOpenActionItems() bool {
	for i := range t.Items {
		if t.Items[i].Kind == ItemKindAction && t.Items[i].IsOpen {
			return true
		}
	}
	return false
}

// HasStickyInfoItems reports whether any info item on the topic is sticky.
func (t *Topic) HasStickyInfoItems() bool {
	for i := range t.Items {
		if t.Items[i].Kind == ItemKindInfo && t.Items[i].IsSticky {
			return true
		}
	}
	return false
}

// CanBeCarriedForward reports whether the topic survives finalization into
// the series projection. A fully resolved topic (closed, not recurring, not
// skipped, no open action items, no sticky info items) is dropped.
func (t *Topic) CanBeCarriedForward() bool {
	return t.IsOpen ||
		t.IsRecurring ||
		t.IsSkipped ||
		t.HasOpenActionItems() ||
		t.HasStickyInfoItems()
}

// TailorForCarryForward returns a deep copy of the topic shaped for the next
// minutes: only open action items and sticky info items are retained, and
// the clone plus every retained item is marked IsNew=false.
func (t *Topic) TailorForCarryForward() Topic {
	out := t.Clone()
	out.IsNew = false

	kept := make([]Item, 0, len(out.Items))
	for _, it := range out.Items {
		if !it.CarriesForward() {
			continue
		}
		it.IsNew = false
		kept = append(kept, it)
	}
	out.Items = kept
	return out
}

// AddItem inserts a new item at the top of the topic's item list. An empty
// id is assigned; a replayed id fails with ErrDuplicateItemID.
func (t *Topic) AddItem(it Item) error {
	if it.ID == "" {
		it.ID = NewID()
	} else {
		for i := range t.Items {
			if t.Items[i].ID == it.ID {
				return ErrDuplicateItemID
			}
		}
	}
	it.IsNew = true
	t.Items = append([]Item{it}, t.Items...)
	return nil
}

// ReplaceItem swaps the item with matching id in place, preserving its
// position in the list.
func (t *Topic) ReplaceItem(it Item) error {
	for i := range t.Items {
		if t.Items[i].ID == it.ID {
			t.Items[i] = it
			return nil
		}
	}
	return ErrItemNotFound
}

// Clone returns a deep copy of the topic, including items and details.
func (t *Topic) Clone() Topic {
	out := *t
	out.Responsibles = append([]string(nil), t.Responsibles...)
	out.LabelIDs = append([]string(nil), t.LabelIDs...)
	out.Items = make([]Item, len(t.Items))
	for i := range t.Items {
		out.Items[i] = t.Items[i].Clone()
	}
	return out
}
