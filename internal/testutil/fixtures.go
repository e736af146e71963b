package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/bubonicfred/5minitz-sub000/internal/domain/models"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateSeries inserts a meeting series moderated by the given user.
func (f *Fixtures) CreateSeries(ctx context.Context, project, name, moderatorID string) models.MeetingSeries {
	f.t.Helper()

	now := time.Now().UTC()
	ms := models.MeetingSeries{
		ID:         primitive.NewObjectID(),
		Project:    project,
		Name:       name,
		NameCI:     text.Fold(name),
		Moderators: []string{moderatorID},
		Version:    1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if _, err := f.db.Collection("meeting_series").InsertOne(ctx, ms); err != nil {
		f.t.Fatalf("failed to create test series: %v", err)
	}
	return ms
}

// CreateMinutes inserts an unfinalized minutes for the series on the given
// date and links it as the series' newest minutes.
func (f *Fixtures) CreateMinutes(ctx context.Context, seriesID primitive.ObjectID, date string) models.Minutes {
	f.t.Helper()

	now := time.Now().UTC()
	m := models.Minutes{
		ID:        primitive.NewObjectID(),
		SeriesID:  seriesID,
		Date:      date,
		Topics:    []models.Topic{},
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := f.db.Collection("minutes").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("failed to create test minutes: %v", err)
	}

	update := map[string]any{
		"$push": map[string]any{
			"minutes": map[string]any{"$each": []primitive.ObjectID{m.ID}, "$position": 0},
		},
		"$set": map[string]any{
			"last_minutes_id":        m.ID,
			"last_minutes_finalized": false,
			"updated_at":             now,
		},
	}
	if _, err := f.db.Collection("meeting_series").UpdateByID(ctx, seriesID, update); err != nil {
		f.t.Fatalf("failed to link test minutes to series: %v", err)
	}
	return m
}

// NewTopic builds an open topic originating in the given minutes.
func NewTopic(subject string, origin primitive.ObjectID) models.Topic {
	return models.Topic{
		ID:              models.NewID(),
		Subject:         subject,
		IsOpen:          true,
		IsNew:           true,
		OriginMinutesID: origin,
	}
}

// NewActionItem builds an open action item originating in the given minutes.
func NewActionItem(subject, createdBy string, origin primitive.ObjectID) models.Item {
	now := time.Now().UTC()
	return models.Item{
		ID:              models.NewID(),
		Kind:            models.ItemKindAction,
		Subject:         subject,
		IsNew:           true,
		IsOpen:          true,
		CreatedBy:       createdBy,
		CreatedAt:       now,
		UpdatedAt:       now,
		OriginMinutesID: origin,
	}
}

// NewInfoItem builds an info item originating in the given minutes.
func NewInfoItem(subject, createdBy string, sticky bool, origin primitive.ObjectID) models.Item {
	now := time.Now().UTC()
	return models.Item{
		ID:              models.NewID(),
		Kind:            models.ItemKindInfo,
		Subject:         subject,
		IsNew:           true,
		IsSticky:        sticky,
		CreatedBy:       createdBy,
		CreatedAt:       now,
		UpdatedAt:       now,
		OriginMinutesID: origin,
	}
}
