// internal/domain/models/minutes.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Participant is one invited user on a minutes document with a presence flag.
type Participant struct {
	UserID  string `bson:"user_id" json:"user_id"`
	Present bool   `bson:"present" json:"present"`
}

// Minutes is one dated meeting record belonging to a series. It owns an
// ordered list of embedded topics. Once finalized it is immutable except for
// the finalize/unfinalize toggle.
type Minutes struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SeriesID primitive.ObjectID `bson:"series_id" json:"series_id"`

	// Date is the calendar day of the meeting as YYYY-MM-DD, unique within
	// the series and never earlier than the previous minutes' date.
	Date string `bson:"date" json:"date"`

	IsFinalized      bool       `bson:"is_finalized" json:"is_finalized"`
	FinalizedBy      string     `bson:"finalized_by,omitempty" json:"finalized_by,omitempty"`
	FinalizedAt      *time.Time `bson:"finalized_at,omitempty" json:"finalized_at,omitempty"`
	FinalizedVersion int        `bson:"finalized_version" json:"finalized_version"`

	Topics []Topic `bson:"topics" json:"topics"`

	GlobalNote             string        `bson:"global_note" json:"global_note"`
	Participants           []Participant `bson:"participants" json:"participants"`
	AdditionalParticipants string        `bson:"additional_participants" json:"additional_participants"`

	// Version is the optimistic-concurrency guard checked on every replace.
	Version int64 `bson:"version" json:"version"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// RemoveTopicResult reports how a topic removal was applied.
type RemoveTopicResult struct {
	// Degraded is true when the topic was not hard-deleted but closed
	// (together with its open action items) because it was carried in from
	// an earlier minutes.
	Degraded bool
}

// FindTopic returns a pointer to the embedded topic with the given id.
func (m *Minutes) FindTopic(topicID string) (*Topic, bool) {
	for i := range m.Topics {
		if m.Topics[i].ID == topicID {
			return &m.Topics[i], true
		}
	}
	return nil, false
}

// AddTopic inserts a new topic at the top of the list. An empty id is
// assigned; a replayed id fails with ErrDuplicateTopicID.
func (m *Minutes) AddTopic(t Topic) error {
	if t.ID == "" {
		t.ID = NewID()
	} else if _, ok := m.FindTopic(t.ID); ok {
		return ErrDuplicateTopicID
	}
	t.OriginMinutesID = m.ID
	t.IsNew = true
	m.Topics = append([]Topic{t}, m.Topics...)
	return nil
}

// ReplaceTopic swaps the topic with matching id in place, preserving its
// position in the list.
func (m *Minutes) ReplaceTopic(t Topic) error {
	for i := range m.Topics {
		if m.Topics[i].ID == t.ID {
			m.Topics[i] = t
			return nil
		}
	}
	return ErrTopicNotFound
}

// RemoveTopic hard-deletes the topic if it was created in this minutes.
// Otherwise the removal degrades: the topic is closed and every open action
// item on it is closed (sticky flags are left alone; unsticking is a
// per-item operation).
func (m *Minutes) RemoveTopic(topicID string) (RemoveTopicResult, error) {
	for i := range m.Topics {
		if m.Topics[i].ID != topicID {
			continue
		}
		if m.Topics[i].IsDeleteAllowed(m.ID) {
			m.Topics = append(m.Topics[:i], m.Topics[i+1:]...)
			return RemoveTopicResult{}, nil
		}
		t := &m.Topics[i]
		t.Close()
		for j := range t.Items {
			if t.Items[j].Kind == ItemKindAction && t.Items[j].IsOpen {
				t.Items[j].ToggleState()
			}
		}
		return RemoveTopicResult{Degraded: true}, nil
	}
	return RemoveTopicResult{}, ErrTopicNotFound
}

// FindItem returns pointers to the topic and item with the given ids.
func (m *Minutes) FindItem(topicID, itemID string) (*Topic, *Item, bool) {
	t, ok := m.FindTopic(topicID)
	if !ok {
		return nil, nil, false
	}
	for i := range t.Items {
		if t.Items[i].ID == itemID {
			return t, &t.Items[i], true
		}
	}
	return t, nil, false
}

// RemoveItem hard-deletes an item created in this minutes. A carried-in
// action item degrades to closed; a carried-in sticky info item degrades to
// unsticky.
func (m *Minutes) RemoveItem(topicID, itemID string) (RemoveTopicResult, error) {
	t, ok := m.FindTopic(topicID)
	if !ok {
		return RemoveTopicResult{}, ErrTopicNotFound
	}
	for i := range t.Items {
		if t.Items[i].ID != itemID {
			continue
		}
		if t.Items[i].IsDeleteAllowed(m.ID) {
			t.Items = append(t.Items[:i], t.Items[i+1:]...)
			return RemoveTopicResult{}, nil
		}
		it := &t.Items[i]
		switch it.Kind {
		case ItemKindAction:
			if it.IsOpen {
				it.ToggleState()
			}
		case ItemKindInfo:
			if it.IsSticky {
				it.ToggleSticky(false)
			}
		}
		return RemoveTopicResult{Degraded: true}, nil
	}
	return RemoveTopicResult{}, ErrItemNotFound
}

// ParticipantIDs returns the user ids of all listed participants.
func (m *Minutes) ParticipantIDs() []string {
	ids := make([]string, 0, len(m.Participants))
	for _, p := range m.Participants {
		ids = append(ids, p.UserID)
	}
	return ids
}

// Clone returns a deep copy of the minutes, including all topics.
func (m *Minutes) Clone() Minutes {
	out := *m
	out.Topics = make([]Topic, len(m.Topics))
	for i := range m.Topics {
		out.Topics[i] = m.Topics[i].Clone()
	}
	out.Participants = append([]Participant(nil), m.Participants...)
	if m.FinalizedAt != nil {
		at := *m.FinalizedAt
		out.FinalizedAt = &at
	}
	return out
}
