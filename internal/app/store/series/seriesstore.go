// internal/app/store/series/seriesstore.go
package seriesstore

import (
	"context"
	"errors"
	"time"

	"github.com/bubonicfred/5minitz-sub000/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var (
	ErrNotFound      = errors.New("meeting series not found")
	ErrDuplicateName = errors.New("a series with this project and name already exists")

	// ErrVersionConflict means the version precondition on a replace did not
	// match: a concurrent writer got there first and the caller must re-read.
	ErrVersionConflict = errors.New("meeting series was modified concurrently")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("meeting_series")}
}

// Create inserts a new series with version 1 and an empty minutes list.
func (s *Store) Create(ctx context.Context, ms models.MeetingSeries) (models.MeetingSeries, error) {
	now := time.Now().UTC()
	ms.ID = primitive.NewObjectID()
	ms.NameCI = text.Fold(ms.Name)
	if ms.Minutes == nil {
		ms.Minutes = []primitive.ObjectID{}
	}
	if ms.TopicProjection == nil {
		ms.TopicProjection = []models.Topic{}
	}
	ms.Version = 1
	ms.CreatedAt = now
	ms.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, ms); err != nil {
		if wafflemongo.IsDup(err) {
			return models.MeetingSeries{}, ErrDuplicateName
		}
		return models.MeetingSeries{}, err
	}
	return ms, nil
}

// GetByID retrieves a series by its ID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.MeetingSeries, error) {
	var ms models.MeetingSeries
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&ms)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.MeetingSeries{}, ErrNotFound
		}
		return models.MeetingSeries{}, err
	}
	return ms, nil
}

// Replace persists the full series document conditioned on the version the
// caller read. On success the stored version is ms.Version+1 and ms is
// updated to match. A lost race returns ErrVersionConflict.
func (s *Store) Replace(ctx context.Context, ms *models.MeetingSeries) error {
	readVersion := ms.Version
	ms.NameCI = text.Fold(ms.Name)
	ms.Version = readVersion + 1
	ms.UpdatedAt = time.Now().UTC()

	res, err := s.c.ReplaceOne(ctx, bson.M{"_id": ms.ID, "version": readVersion}, *ms)
	if err != nil {
		ms.Version = readVersion
		if wafflemongo.IsDup(err) {
			return ErrDuplicateName
		}
		return err
	}
	if res.MatchedCount == 0 {
		ms.Version = readVersion
		n, err := s.c.CountDocuments(ctx, bson.M{"_id": ms.ID})
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

// Delete removes a series document. The workflow engine is responsible for
// cascading to the owned minutes first.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// Find returns series matching the given filter.
func (s *Store) Find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.MeetingSeries, error) {
	cur, err := s.c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.MeetingSeries
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListVisibleFor returns all series the user moderates or may see, sorted by
// folded name.
func (s *Store) ListVisibleFor(ctx context.Context, userID string) ([]models.MeetingSeries, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"moderators": userID},
		bson.M{"visible_for": userID},
	}}
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}})
	return s.Find(ctx, filter, opts)
}

// EnsureIndexes creates indexes for the meeting_series collection.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "project", Value: 1}, {Key: "name_ci", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_series_project_nameci"),
		},
		{
			Keys:    bson.D{{Key: "moderators", Value: 1}, {Key: "name_ci", Value: 1}},
			Options: options.Index().SetName("idx_series_moderators_nameci"),
		},
		{
			Keys:    bson.D{{Key: "visible_for", Value: 1}, {Key: "name_ci", Value: 1}},
			Options: options.Index().SetName("idx_series_visiblefor_nameci"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}
