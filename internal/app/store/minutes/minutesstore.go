// internal/app/store/minutes/minutesstore.go
package minutesstore

import (
	"context"
	"errors"
	"time"

	"github.com/bubonicfred/5minitz-sub000/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var (
	ErrNotFound      = errors.New("minutes not found")
	ErrDuplicateDate = errors.New("minutes with this date already exist in the series")

	// ErrVersionConflict means the version precondition on a replace did not
	// match: a concurrent writer got there first and the caller must re-read.
	ErrVersionConflict = errors.New("minutes were modified concurrently")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("minutes")}
}

// Create inserts a new minutes document with version 1. The (series, date)
// unique index rejects a second minutes on the same day.
func (s *Store) Create(ctx context.Context, m models.Minutes) (models.Minutes, error) {
	now := time.Now().UTC()
	m.ID = primitive.NewObjectID()
	if m.Topics == nil {
		m.Topics = []models.Topic{}
	}
	if m.Participants == nil {
		m.Participants = []models.Participant{}
	}
	m.Version = 1
	m.CreatedAt = now
	m.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, m); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Minutes{}, ErrDuplicateDate
		}
		return models.Minutes{}, err
	}
	return m, nil
}

// GetByID retrieves a minutes document by its ID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Minutes, error) {
	var m models.Minutes
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Minutes{}, ErrNotFound
		}
		return models.Minutes{}, err
	}
	return m, nil
}

// Replace persists the full minutes document conditioned on the version the
// caller read. On success the stored version is m.Version+1 and m is updated
// to match. A lost race returns ErrVersionConflict.
func (s *Store) Replace(ctx context.Context, m *models.Minutes) error {
	readVersion := m.Version
	m.Version = readVersion + 1
	m.UpdatedAt = time.Now().UTC()

	res, err := s.c.ReplaceOne(ctx, bson.M{"_id": m.ID, "version": readVersion}, *m)
	if err != nil {
		m.Version = readVersion
		return err
	}
	if res.MatchedCount == 0 {
		m.Version = readVersion
		n, err := s.c.CountDocuments(ctx, bson.M{"_id": m.ID})
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		return ErrVersionConflict
	}
	return nil
}

// Delete removes an unfinalized minutes document by ID. A minutes that was
// finalized (or removed) after the caller's read matches nothing; callers
// must treat a zero count as a lost race, not success.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "is_finalized": false})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteBySeries removes every minutes document owned by the series.
// Used by the cascading series delete.
func (s *Store) DeleteBySeries(ctx context.Context, seriesID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"series_id": seriesID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ListBySeries returns the series' minutes sorted newest-first by date.
func (s *Store) ListBySeries(ctx context.Context, seriesID primitive.ObjectID) ([]models.Minutes, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"series_id": seriesID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Minutes
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListFinalizedBySeries returns the series' finalized minutes oldest-first.
// The projection replay on unfinalize depends on this chronological order.
func (s *Store) ListFinalizedBySeries(ctx context.Context, seriesID primitive.ObjectID) ([]models.Minutes, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"series_id": seriesID, "is_finalized": true}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Minutes
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetLatestBySeries returns the newest minutes of the series by date.
func (s *Store) GetLatestBySeries(ctx context.Context, seriesID primitive.ObjectID) (models.Minutes, error) {
	var m models.Minutes
	opts := options.FindOne().SetSort(bson.D{{Key: "date", Value: -1}})
	err := s.c.FindOne(ctx, bson.M{"series_id": seriesID}, opts).Decode(&m)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Minutes{}, ErrNotFound
		}
		return models.Minutes{}, err
	}
	return m, nil
}

// CountUnfinalizedBySeries counts open minutes in the series. The workflow
// invariant keeps this at zero or one.
func (s *Store) CountUnfinalizedBySeries(ctx context.Context, seriesID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"series_id": seriesID, "is_finalized": false})
}

// EnsureIndexes creates indexes for the minutes collection.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "series_id", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_minutes_series_date"),
		},
		{
			Keys: bson.D{
				{Key: "series_id", Value: 1},
				{Key: "is_finalized", Value: 1},
				{Key: "date", Value: 1},
			},
			Options: options.Index().SetName("idx_minutes_series_finalized_date"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}
