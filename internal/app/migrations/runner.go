// internal/app/migrations/runner.go
package migrations

import (
	"context"
	"fmt"
	"sort"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Migration is one versioned, reversible schema transform over the persisted
// documents. Up and Down must both be safe to re-run: they check field
// presence before mutating.
type Migration struct {
	Version     int
	Description string
	Up          func(ctx context.Context, db *mongo.Database) error
	Down        func(ctx context.Context, db *mongo.Database) error
}

const markerCollection = "migrations"
const markerID = "schema"

// Runner applies migrations one version at a time, in order, tracking the
// applied version in a single marker document. A failing transform halts the
// run with the marker unchanged so the operator can retry.
type Runner struct {
	db         *mongo.Database
	migrations []Migration
	log        *zap.Logger
}

func NewRunner(db *mongo.Database, migrations []Migration, log *zap.Logger) *Runner {
	ms := append([]Migration(nil), migrations...)
	sort.Slice(ms, func(i, j int) bool { return ms[i].Version < ms[j].Version })
	return &Runner{db: db, migrations: ms, log: log}
}

// Current returns the currently applied schema version (0 when none).
func (r *Runner) Current(ctx context.Context) (int, error) {
	var doc struct {
		Version int `bson:"version"`
	}
	err := r.db.Collection(markerCollection).
		FindOne(ctx, bson.M{"_id": markerID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return doc.Version, nil
}

func (r *Runner) setCurrent(ctx context.Context, v int) error {
	_, err := r.db.Collection(markerCollection).UpdateOne(ctx,
		bson.M{"_id": markerID},
		bson.M{"$set": bson.M{"version": v}},
		options.Update().SetUpsert(true))
	return err
}

// Latest returns the highest known migration version.
func (r *Runner) Latest() int {
	if len(r.migrations) == 0 {
		return 0
	}
	return r.migrations[len(r.migrations)-1].Version
}

// MigrateTo moves the schema to the target version, stepping strictly one
// migration at a time in either direction. The marker is only advanced after
// a step succeeds, so a failed step leaves it pointing at the last good
// version.
func (r *Runner) MigrateTo(ctx context.Context, target int) error {
	cur, err := r.Current(ctx)
	if err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	for cur < target {
		m, ok := r.find(cur + 1)
		if !ok {
			return fmt.Errorf("no migration for version %d", cur+1)
		}
		r.log.Info("applying migration",
			zap.Int("version", m.Version), zap.String("description", m.Description))
		if err := m.Up(ctx, r.db); err != nil {
			return fmt.Errorf("migration %d up: %w", m.Version, err)
		}
		if err := r.setCurrent(ctx, m.Version); err != nil {
			return fmt.Errorf("advancing version marker to %d: %w", m.Version, err)
		}
		cur = m.Version
	}

	for cur > target {
		m, ok := r.find(cur)
		if !ok {
			return fmt.Errorf("no migration for version %d", cur)
		}
		r.log.Info("reverting migration",
			zap.Int("version", m.Version), zap.String("description", m.Description))
		if err := m.Down(ctx, r.db); err != nil {
			return fmt.Errorf("migration %d down: %w", m.Version, err)
		}
		if err := r.setCurrent(ctx, m.Version-1); err != nil {
			return fmt.Errorf("rewinding version marker to %d: %w", m.Version-1, err)
		}
		cur = m.Version - 1
	}
	return nil
}

func (r *Runner) find(version int) (Migration, bool) {
	for _, m := range r.migrations {
		if m.Version == version {
			return m, true
		}
	}
	return Migration{}, false
}
