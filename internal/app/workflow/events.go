// internal/app/workflow/events.go
package workflow

import (
	"context"

	"github.com/bubonicfred/5minitz-sub000/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// EventMinutesFinalized is the type tag of the finalize domain event.
const EventMinutesFinalized = "minutes-finalized"

// FinalizedEvent is emitted after a successful finalize. The notification and
// protocol-generation collaborators subscribe to it; recipient resolution and
// rendering are theirs. Items belonging to skipped topics are filtered out
// before the event is built.
type FinalizedEvent struct {
	Type      string             `json:"type"`
	MinutesID primitive.ObjectID `json:"minutes_id"`
	SeriesID  primitive.ObjectID `json:"series_id"`

	OpenActionItems []models.Item `json:"open_action_items"`
	InfoItems       []models.Item `json:"info_items"`
}

// Emitter receives workflow domain events. Implementations must not block
// the finalize request path for long; delivery is at-least-once from the
// caller's perspective only if the implementation makes it so.
type Emitter interface {
	MinutesFinalized(ctx context.Context, ev FinalizedEvent)
}

// LogEmitter is the default emitter: it records the event in the log and
// nothing else. The email and protocol collaborators plug in here.
type LogEmitter struct {
	Log *zap.Logger
}

func (l *LogEmitter) MinutesFinalized(_ context.Context, ev FinalizedEvent) {
	l.Log.Info("minutes finalized",
		zap.String("event", ev.Type),
		zap.String("minutes_id", ev.MinutesID.Hex()),
		zap.String("series_id", ev.SeriesID.Hex()),
		zap.Int("open_action_items", len(ev.OpenActionItems)),
		zap.Int("info_items", len(ev.InfoItems)),
	)
}

// NopEmitter drops events. Used when finalize event logging is disabled.
type NopEmitter struct{}

func (NopEmitter) MinutesFinalized(context.Context, FinalizedEvent) {}

// buildFinalizedEvent collects the event payload from a just-finalized
// minutes, excluding items of skipped topics.
func buildFinalizedEvent(m *models.Minutes) FinalizedEvent {
	ev := FinalizedEvent{
		Type:      EventMinutesFinalized,
		MinutesID: m.ID,
		SeriesID:  m.SeriesID,
	}
	for ti := range m.Topics {
		t := &m.Topics[ti]
		if t.IsSkipped {
			continue
		}
		for _, it := range t.Items {
			switch it.Kind {
			case models.ItemKindAction:
				if it.IsOpen {
					ev.OpenActionItems = append(ev.OpenActionItems, it)
				}
			case models.ItemKindInfo:
				ev.InfoItems = append(ev.InfoItems, it)
			}
		}
	}
	return ev
}
