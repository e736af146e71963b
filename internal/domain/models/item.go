// internal/domain/models/item.go
package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Item kinds. Items are a tagged union rather than an interface hierarchy so
// that they serialize as one embedded array and dispatch stays explicit.
const (
	ItemKindInfo   = "infoItem"
	ItemKindAction = "actionItem"
)

// Action item priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Detail is one append-only history entry on an item.
type Detail struct {
	ID        string    `bson:"id" json:"id"`
	Date      string    `bson:"date" json:"date"` // YYYY-MM-DD of the minutes it was written in
	Text      string    `bson:"text" json:"text"`
	CreatedBy string    `bson:"created_by" json:"created_by"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Item is an info or action entry nested in a topic. Info items carry the
// sticky flag; action items carry open/closed state, responsibles, priority
// and a due date. Shared fields live on the base struct and variant fields
// are only meaningful for their kind.
type Item struct {
	ID      string `bson:"id" json:"id"`
	Kind    string `bson:"kind" json:"kind"`
	Subject string `bson:"subject" json:"subject"`

	LabelIDs []string `bson:"label_ids,omitempty" json:"label_ids,omitempty"`
	IsNew    bool     `bson:"is_new" json:"is_new"`

	// Info item only.
	IsSticky bool `bson:"is_sticky,omitempty" json:"is_sticky,omitempty"`

	// Action item only.
	IsOpen       bool     `bson:"is_open,omitempty" json:"is_open,omitempty"`
	Responsibles []string `bson:"responsibles,omitempty" json:"responsibles,omitempty"`
	Priority     string   `bson:"priority,omitempty" json:"priority,omitempty"`
	DueDate      string   `bson:"due_date,omitempty" json:"due_date,omitempty"`

	Details []Detail `bson:"details" json:"details"`

	CreatedBy       string             `bson:"created_by" json:"created_by"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updated_at"`
	OriginMinutesID primitive.ObjectID `bson:"origin_minutes_id" json:"origin_minutes_id"`
}

// CarriesForward reports whether this item survives into the next minutes:
// open action items and sticky info items do, everything else stays behind
// in the finalized history.
func (it *Item) CarriesForward() bool {
	switch it.Kind {
	case ItemKindAction:
		return it.IsOpen
	case ItemKindInfo:
		return it.IsSticky
	}
	return false
}

// AddDetails appends a detail entry. Blank text on a brand-new item adds
// nothing; the entry records the date of the minutes it was written in.
// Reports whether an entry was added.
func (it *Item) AddDetails(minutesDate, author, text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	now := time.Now().UTC()
	it.Details = append(it.Details, Detail{
		ID:        NewID(),
		Date:      minutesDate,
		Text:      text,
		CreatedBy: author,
		CreatedAt: now,
		UpdatedAt: now,
	})
	it.UpdatedAt = now
	return true
}

// UpdateDetails replaces the text of the detail at index. Unchanged text is
// a no-op; callers decide whether blank text should instead remove the entry
// (that confirmation policy lives outside the entity).
func (it *Item) UpdateDetails(index int, text string) error {
	if index < 0 || index >= len(it.Details) {
		return ErrDetailNotFound
	}
	if it.Details[index].Text == text {
		return nil
	}
	now := time.Now().UTC()
	it.Details[index].Text = text
	it.Details[index].UpdatedAt = now
	it.UpdatedAt = now
	return nil
}

// RemoveDetails deletes the detail entry at index.
func (it *Item) RemoveDetails(index int) error {
	if index < 0 || index >= len(it.Details) {
		return ErrDetailNotFound
	}
	it.Details = append(it.Details[:index], it.Details[index+1:]...)
	it.UpdatedAt = time.Now().UTC()
	return nil
}

// ToggleSticky flips the sticky flag on an info item. No-op for action items
// and while the owning minutes is finalized.
func (it *Item) ToggleSticky(minutesFinalized bool) {
	if it.Kind != ItemKindInfo || minutesFinalized {
		return
	}
	it.IsSticky = !it.IsSticky
	it.UpdatedAt = time.Now().UTC()
}

// ToggleState flips the open/closed state of an action item.
func (it *Item) ToggleState() {
	if it.Kind != ItemKindAction {
		return
	}
	it.IsOpen = !it.IsOpen
	it.UpdatedAt = time.Now().UTC()
}

// IsDeleteAllowed reports whether the item may be hard-deleted from the given
// minutes. Items created in an earlier minutes degrade instead: an action
// item is closed, a sticky info item is unstuck.
func (it *Item) IsDeleteAllowed(currentMinutesID primitive.ObjectID) bool {
	return it.OriginMinutesID == currentMinutesID
}

// MayRemove is the removal capability predicate: the minutes must be
// unfinalized and the caller must be a moderator or the owner via upload
// rights. The same predicate shape gates attachment removal in the upload
// collaborator.
func (it *Item) MayRemove(minutesFinalized, isModerator, isUploader bool, callerID string) bool {
	if minutesFinalized {
		return false
	}
	if isModerator {
		return true
	}
	return isUploader && it.CreatedBy == callerID
}

// Clone returns a deep copy of the item.
func (it *Item) Clone() Item {
	out := *it
	out.LabelIDs = append([]string(nil), it.LabelIDs...)
	out.Responsibles = append([]string(nil), it.Responsibles...)
	out.Details = append([]Detail(nil), it.Details...)
	return out
}
