// internal/app/workflow/engine.go
package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	minutesstore "github.com/bubonicfred/5minitz-sub000/internal/app/store/minutes"
	seriesstore "github.com/bubonicfred/5minitz-sub000/internal/app/store/series"
	"github.com/bubonicfred/5minitz-sub000/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Caller identifies the user on whose behalf an operation runs. Identity
// resolution is the auth collaborator's job; the engine only consults the
// capability predicates.
type Caller struct {
	UserID string
	Name   string
}

// Capabilities is the boundary to the auth collaborator.
type Capabilities interface {
	IsModeratorOf(ctx context.Context, seriesID primitive.ObjectID, userID string) (bool, error)
	IsUploaderFor(ctx context.Context, seriesID primitive.ObjectID, userID string) (bool, error)
}

// Config holds the engine's tunables, threaded in at construction instead of
// living in a global settings object.
type Config struct {
	// WriteRetries is how many times a lost optimistic-lock race on a plain
	// minutes mutation is retried before ErrConcurrentModification.
	WriteRetries int
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{WriteRetries: 2}
}

// Engine orchestrates every multi-document operation across the minutes and
// meeting_series collections. It is the single writer of the series topic
// projection; no other component may touch it.
type Engine struct {
	series  *seriesstore.Store
	minutes *minutesstore.Store
	caps    Capabilities
	emitter Emitter
	cfg     Config
	log     *zap.Logger
}

func NewEngine(series *seriesstore.Store, minutes *minutesstore.Store, caps Capabilities, emitter Emitter, cfg Config, log *zap.Logger) *Engine {
	if cfg.WriteRetries < 0 {
		cfg.WriteRetries = 0
	}
	return &Engine{
		series:  series,
		minutes: minutes,
		caps:    caps,
		emitter: emitter,
		cfg:     cfg,
		log:     log,
	}
}

func (e *Engine) requireModerator(ctx context.Context, seriesID primitive.ObjectID, caller Caller) error {
	ok, err := e.caps.IsModeratorOf(ctx, seriesID, caller.UserID)
	if err != nil {
		return fmt.Errorf("moderator check: %w", err)
	}
	if !ok {
		return ErrNotModerator
	}
	return nil
}

// AddMinutes creates a new minutes document for the series, seeded with the
// carry-forward projection, and links it as the series' latest.
func (e *Engine) AddMinutes(ctx context.Context, caller Caller, seriesID primitive.ObjectID, date string) (models.Minutes, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return models.Minutes{}, fmt.Errorf("%w: bad date %q", ErrValidation, date)
	}

	s, err := e.series.GetByID(ctx, seriesID)
	if err != nil {
		return models.Minutes{}, err
	}
	if err := e.requireModerator(ctx, seriesID, caller); err != nil {
		return models.Minutes{}, err
	}

	open, err := e.minutes.CountUnfinalizedBySeries(ctx, seriesID)
	if err != nil {
		return models.Minutes{}, err
	}
	if open > 0 {
		return models.Minutes{}, fmt.Errorf("%w: an unfinalized minutes already exists", ErrValidation)
	}

	latest, err := e.minutes.GetLatestBySeries(ctx, seriesID)
	switch {
	case err == nil:
		if date < latest.Date {
			return models.Minutes{}, fmt.Errorf("%w: date %s is before the latest minutes (%s)", ErrValidation, date, latest.Date)
		}
	case errors.Is(err, minutesstore.ErrNotFound):
		// First minutes of the series.
	default:
		return models.Minutes{}, err
	}

	// Seed from the projection: deep copies so later edits in the new minutes
	// never reach back into the series document.
	seed := make([]models.Topic, len(s.TopicProjection))
	for i := range s.TopicProjection {
		seed[i] = s.TopicProjection[i].Clone()
	}

	m := models.Minutes{
		SeriesID:     seriesID,
		Date:         date,
		Topics:       seed,
		Participants: seedParticipants(&s),
	}
	created, err := e.minutes.Create(ctx, m)
	if err != nil {
		if errors.Is(err, minutesstore.ErrDuplicateDate) {
			return models.Minutes{}, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		return models.Minutes{}, err
	}

	err = e.updateSeries(ctx, seriesID, func(s *models.MeetingSeries) error {
		// Checked again under the version guard: a concurrent AddMinutes
		// that linked its minutes first forces this writer through a fresh
		// read that sees the other unfinalized head.
		if len(s.Minutes) > 0 && !s.LastMinutesFinalized {
			return fmt.Errorf("%w: an unfinalized minutes already exists", ErrValidation)
		}
		s.Minutes = append([]primitive.ObjectID{created.ID}, s.Minutes...)
		s.LastMinutesID = created.ID
		s.LastMinutesFinalized = false
		return nil
	})
	if err != nil {
		// Compensate: the new minutes must not stay orphaned.
		if _, delErr := e.minutes.Delete(ctx, created.ID); delErr != nil {
			e.log.Error("compensating minutes delete failed",
				zap.String("minutes_id", created.ID.Hex()),
				zap.NamedError("series_err", err),
				zap.Error(delErr))
			return models.Minutes{}, fmt.Errorf("%w: %v", ErrWorkflowInconsistency, delErr)
		}
		return models.Minutes{}, err
	}
	return created, nil
}

func seedParticipants(s *models.MeetingSeries) []models.Participant {
	seen := make(map[string]struct{}, len(s.Moderators)+len(s.VisibleFor))
	var out []models.Participant
	for _, uid := range append(append([]string{}, s.Moderators...), s.VisibleFor...) {
		if _, ok := seen[uid]; ok {
			continue
		}
		seen[uid] = struct{}{}
		out = append(out, models.Participant{UserID: uid})
	}
	return out
}

// Finalize locks the minutes and merges its carry-forward output into the
// series projection. The merge is computed fully in memory, validated, then
// persisted minutes-first with a compensating write if the series persist
// fails.
func (e *Engine) Finalize(ctx context.Context, caller Caller, minutesID primitive.ObjectID) error {
	m, err := e.minutes.GetByID(ctx, minutesID)
	if err != nil {
		return err
	}
	if m.IsFinalized {
		return ErrAlreadyFinalized
	}
	if err := e.requireModerator(ctx, m.SeriesID, caller); err != nil {
		return err
	}
	s, err := e.series.GetByID(ctx, m.SeriesID)
	if err != nil {
		return err
	}

	prev := m.Clone()

	now := time.Now().UTC()
	m.IsFinalized = true
	m.FinalizedBy = caller.Name
	m.FinalizedAt = &now
	m.FinalizedVersion++

	candidates, topicIDs := carryForwardCandidates(&m)
	s.TopicProjection = MergeProjection(s.TopicProjection, candidates, topicIDs)
	s.LastMinutesID = m.ID
	s.LastMinutesFinalized = true

	if err := e.persistPair(ctx, &m, &s, &prev); err != nil {
		return err
	}

	e.emitter.MinutesFinalized(ctx, buildFinalizedEvent(&m))
	return nil
}

// Unfinalize unlocks the latest minutes and rebuilds the series projection
// from the remaining finalized history, reversing the finalize merge without
// relying on the current projection state.
func (e *Engine) Unfinalize(ctx context.Context, caller Caller, minutesID primitive.ObjectID) error {
	m, err := e.minutes.GetByID(ctx, minutesID)
	if err != nil {
		return err
	}
	if !m.IsFinalized {
		return ErrNotFinalized
	}
	s, err := e.series.GetByID(ctx, m.SeriesID)
	if err != nil {
		return err
	}
	if s.LastMinutesID != m.ID {
		return ErrNotLatestMinutes
	}
	if err := e.requireModerator(ctx, m.SeriesID, caller); err != nil {
		return err
	}

	finalized, err := e.minutes.ListFinalizedBySeries(ctx, m.SeriesID)
	if err != nil {
		return err
	}
	history := finalized[:0]
	for i := range finalized {
		if finalized[i].ID != m.ID {
			history = append(history, finalized[i])
		}
	}

	prev := m.Clone()
	m.IsFinalized = false

	s.TopicProjection = ReplayProjection(history)
	s.LastMinutesID = m.ID
	s.LastMinutesFinalized = false

	return e.persistPair(ctx, &m, &s, &prev)
}

// persistPair writes the minutes, then the series. A failed series write is
// compensated by restoring the minutes' previous state; a failed
// compensation is fatal.
func (e *Engine) persistPair(ctx context.Context, m *models.Minutes, s *models.MeetingSeries, prevM *models.Minutes) error {
	if err := e.minutes.Replace(ctx, m); err != nil {
		if errors.Is(err, minutesstore.ErrVersionConflict) {
			return fmt.Errorf("%w: %v", ErrConcurrentModification, err)
		}
		return err
	}
	err := e.series.Replace(ctx, s)
	if err == nil {
		return nil
	}

	restore := prevM.Clone()
	restore.Version = m.Version
	if compErr := e.minutes.Replace(ctx, &restore); compErr != nil {
		e.log.Error("compensating minutes restore failed; state inconsistent",
			zap.String("minutes_id", m.ID.Hex()),
			zap.String("series_id", s.ID.Hex()),
			zap.NamedError("series_err", err),
			zap.Error(compErr))
		return fmt.Errorf("%w: series write: %v; compensation: %v", ErrWorkflowInconsistency, err, compErr)
	}
	if errors.Is(err, seriesstore.ErrVersionConflict) {
		return fmt.Errorf("%w: %v", ErrConcurrentModification, err)
	}
	return err
}

// RemoveMinutes deletes an unfinalized minutes and unlinks it from the
// series. Finalized minutes cannot be removed.
func (e *Engine) RemoveMinutes(ctx context.Context, caller Caller, minutesID primitive.ObjectID) error {
	m, err := e.minutes.GetByID(ctx, minutesID)
	if err != nil {
		return err
	}
	if m.IsFinalized {
		return fmt.Errorf("%w: finalized minutes cannot be removed", ErrNotAllowed)
	}
	if err := e.requireModerator(ctx, m.SeriesID, caller); err != nil {
		return err
	}

	err = e.updateSeries(ctx, m.SeriesID, func(s *models.MeetingSeries) error {
		s.RemoveMinutesRef(m.ID)
		if len(s.Minutes) > 0 {
			// The removed minutes was the only unfinalized one, so the new
			// head of the list is necessarily finalized.
			s.LastMinutesID = s.Minutes[0]
			s.LastMinutesFinalized = true
		} else {
			s.LastMinutesID = primitive.NilObjectID
			s.LastMinutesFinalized = false
		}
		return nil
	})
	if err != nil {
		return err
	}

	n, err := e.minutes.Delete(ctx, m.ID)
	if err == nil && n == 0 {
		// The delete is conditioned on is_finalized:false; matching nothing
		// means the minutes was finalized or removed after our read.
		err = fmt.Errorf("%w: minutes changed before it could be removed", ErrConcurrentModification)
	}
	if err != nil {
		// Compensate: relink so the series does not reference a minutes we
		// failed to delete while claiming it is gone.
		cur, readErr := e.minutes.GetByID(ctx, m.ID)
		if errors.Is(readErr, minutesstore.ErrNotFound) {
			// Removed concurrently; the unlink above already matches reality.
			return err
		}
		if readErr != nil {
			e.log.Error("compensating series relink failed; state inconsistent",
				zap.String("minutes_id", m.ID.Hex()),
				zap.NamedError("delete_err", err),
				zap.Error(readErr))
			return fmt.Errorf("%w: delete: %v; compensation: %v", ErrWorkflowInconsistency, err, readErr)
		}
		compErr := e.updateSeries(ctx, m.SeriesID, func(s *models.MeetingSeries) error {
			s.RemoveMinutesRef(cur.ID)
			s.Minutes = append([]primitive.ObjectID{cur.ID}, s.Minutes...)
			s.LastMinutesID = cur.ID
			s.LastMinutesFinalized = cur.IsFinalized
			return nil
		})
		if compErr != nil {
			e.log.Error("compensating series relink failed; state inconsistent",
				zap.String("minutes_id", m.ID.Hex()),
				zap.NamedError("delete_err", err),
				zap.Error(compErr))
			return fmt.Errorf("%w: delete: %v; compensation: %v", ErrWorkflowInconsistency, err, compErr)
		}
		return err
	}
	return nil
}

// RemoveSeries cascades: all owned minutes are deleted before the series
// itself, so a partial failure can never orphan minutes silently.
func (e *Engine) RemoveSeries(ctx context.Context, caller Caller, seriesID primitive.ObjectID) error {
	if _, err := e.series.GetByID(ctx, seriesID); err != nil {
		return err
	}
	if err := e.requireModerator(ctx, seriesID, caller); err != nil {
		return err
	}

	n, err := e.minutes.DeleteBySeries(ctx, seriesID)
	if err != nil {
		e.log.Error("cascading minutes delete failed; series left in place for retry",
			zap.String("series_id", seriesID.Hex()), zap.Error(err))
		return err
	}
	e.log.Info("series minutes deleted", zap.String("series_id", seriesID.Hex()), zap.Int64("count", n))

	if _, err := e.series.Delete(ctx, seriesID); err != nil {
		return err
	}
	return nil
}

// ReopenTopic reopens a closed topic in the series projection and, if an
// unfinalized minutes exists without that topic, injects it there too.
func (e *Engine) ReopenTopic(ctx context.Context, caller Caller, seriesID primitive.ObjectID, topicID string) error {
	if err := e.requireModerator(ctx, seriesID, caller); err != nil {
		return err
	}
	s, err := e.series.GetByID(ctx, seriesID)
	if err != nil {
		return err
	}
	t, ok := s.FindProjectedTopic(topicID)
	if !ok {
		return fmt.Errorf("%w: %v", ErrValidation, models.ErrTopicNotFound)
	}
	t.Open()

	// Inject into the open minutes when one exists and the topic is absent.
	if s.LastMinutesID != primitive.NilObjectID && !s.LastMinutesFinalized {
		m, err := e.minutes.GetByID(ctx, s.LastMinutesID)
		if err != nil {
			return err
		}
		if _, present := m.FindTopic(topicID); !present {
			prev := m.Clone()
			clone := t.Clone()
			m.Topics = append([]models.Topic{clone}, m.Topics...)
			return e.persistPair(ctx, &m, &s, &prev)
		}
	}

	if err := e.series.Replace(ctx, &s); err != nil {
		if errors.Is(err, seriesstore.ErrVersionConflict) {
			return fmt.Errorf("%w: %v", ErrConcurrentModification, err)
		}
		return err
	}
	return nil
}

// updateSeries runs a read-compute-write cycle on the series with retries on
// lost optimistic-lock races.
func (e *Engine) updateSeries(ctx context.Context, seriesID primitive.ObjectID, mutate func(*models.MeetingSeries) error) error {
	for attempt := 0; ; attempt++ {
		s, err := e.series.GetByID(ctx, seriesID)
		if err != nil {
			return err
		}
		if err := mutate(&s); err != nil {
			return err
		}
		err = e.series.Replace(ctx, &s)
		if errors.Is(err, seriesstore.ErrVersionConflict) {
			if attempt < e.cfg.WriteRetries {
				continue
			}
			return fmt.Errorf("%w: %v", ErrConcurrentModification, err)
		}
		return err
	}
}
