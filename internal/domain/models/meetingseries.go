// internal/domain/models/meetingseries.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Label is a per-series tag definition that topics and items reference by id.
type Label struct {
	ID    string `bson:"id" json:"id"`
	Name  string `bson:"name" json:"name"`
	Color string `bson:"color" json:"color"`
}

// MeetingSeries is the recurring parent grouping successive minutes. It
// carries a denormalized projection of the currently carried-forward topics,
// maintained exclusively by the workflow engine.
type MeetingSeries struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"id"`

	Project string `bson:"project" json:"project"`
	Name    string `bson:"name" json:"name"`
	NameCI  string `bson:"name_ci" json:"name_ci"` // Case-insensitive for search

	// Moderators may finalize/unfinalize and delete; VisibleFor users see the
	// series and are seeded as participants of new minutes.
	Moderators []string `bson:"moderators" json:"moderators"`
	VisibleFor []string `bson:"visible_for" json:"visible_for"`

	// Minutes holds the owned minutes ids ordered newest-first. At most one
	// of them is unfinalized, and only ever the first.
	Minutes              []primitive.ObjectID `bson:"minutes" json:"minutes"`
	LastMinutesID        primitive.ObjectID   `bson:"last_minutes_id,omitempty" json:"last_minutes_id,omitempty"`
	LastMinutesFinalized bool                 `bson:"last_minutes_finalized" json:"last_minutes_finalized"`

	// TopicProjection is the carry-forward snapshot used by the cross-minutes
	// topic and item views and as the seed for new minutes. Only the workflow
	// engine writes it.
	TopicProjection []Topic `bson:"topics" json:"topics"`

	Labels []Label `bson:"labels,omitempty" json:"labels,omitempty"`

	// AdditionalResponsibles accumulates free-text responsible names so they
	// can be offered again on later topics.
	AdditionalResponsibles []string `bson:"additional_responsibles,omitempty" json:"additional_responsibles,omitempty"`

	Version int64 `bson:"version" json:"version"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// IsModerator reports whether the user id is in the moderator list.
func (s *MeetingSeries) IsModerator(userID string) bool {
	for _, id := range s.Moderators {
		if id == userID {
			return true
		}
	}
	return false
}

// IsVisibleFor reports whether the user may see the series. Moderators are
// always visible-for.
func (s *MeetingSeries) IsVisibleFor(userID string) bool {
	if s.IsModerator(userID) {
		return true
	}
	for _, id := range s.VisibleFor {
		if id == userID {
			return true
		}
	}
	return false
}

// AllTopics returns the full topic projection.
func (s *MeetingSeries) AllTopics() []Topic {
	return s.TopicProjection
}

// OpenTopics returns the projection entries that are still open.
func (s *MeetingSeries) OpenTopics() []Topic {
	var out []Topic
	for i := range s.TopicProjection {
		if s.TopicProjection[i].IsOpen {
			out = append(out, s.TopicProjection[i])
		}
	}
	return out
}

// FindProjectedTopic returns a pointer to the projection entry with the id.
func (s *MeetingSeries) FindProjectedTopic(topicID string) (*Topic, bool) {
	for i := range s.TopicProjection {
		if s.TopicProjection[i].ID == topicID {
			return &s.TopicProjection[i], true
		}
	}
	return nil, false
}

// AddAdditionalResponsibles merges free-text responsible names into the
// accumulated list, skipping duplicates.
func (s *MeetingSeries) AddAdditionalResponsibles(names ...string) {
	for _, name := range names {
		if name == "" {
			continue
		}
		seen := false
		for _, have := range s.AdditionalResponsibles {
			if have == name {
				seen = true
				break
			}
		}
		if !seen {
			s.AdditionalResponsibles = append(s.AdditionalResponsibles, name)
		}
	}
}

// RemoveMinutesRef drops a minutes id from the ordered list. Reports whether
// the id was present.
func (s *MeetingSeries) RemoveMinutesRef(minutesID primitive.ObjectID) bool {
	for i, id := range s.Minutes {
		if id == minutesID {
			s.Minutes = append(s.Minutes[:i], s.Minutes[i+1:]...)
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the series, including the topic projection.
func (s *MeetingSeries) Clone() MeetingSeries {
	out := *s
	out.Moderators = append([]string(nil), s.Moderators...)
	out.VisibleFor = append([]string(nil), s.VisibleFor...)
	out.Minutes = append([]primitive.ObjectID(nil), s.Minutes...)
	out.Labels = append([]Label(nil), s.Labels...)
	out.AdditionalResponsibles = append([]string(nil), s.AdditionalResponsibles...)
	out.TopicProjection = make([]Topic, len(s.TopicProjection))
	for i := range s.TopicProjection {
		out.TopicProjection[i] = s.TopicProjection[i].Clone()
	}
	return out
}
