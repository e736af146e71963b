// Package testutil provides shared helpers for database-backed and HTTP
// handler tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	minutesstore "github.com/bubonicfred/5minitz-sub000/internal/app/store/minutes"
	seriesstore "github.com/bubonicfred/5minitz-sub000/internal/app/store/series"
)

// testTimeout bounds each test's database operations.
const testTimeout = 10 * time.Second

// TestContext returns a context suitable for a single test's DB calls.
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), testTimeout)
}

// SetupTestDB connects to the test MongoDB instance and returns a database
// unique to the calling test. The database is dropped and the client
// disconnected during test cleanup. Tests are skipped when no MongoDB is
// reachable, so the pure-logic suite still runs everywhere.
//
// The URI comes from MONGO_TEST_URI, defaulting to mongodb://localhost:27017.
func SetupTestDB(t *testing.T) *mongo.Database {
	t.Helper()

	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Skipf("skipping: cannot connect to test MongoDB at %s: %v", uri, err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		t.Skipf("skipping: test MongoDB at %s not reachable: %v", uri, err)
	}

	db := client.Database(fmt.Sprintf("minitz_test_%d", time.Now().UnixNano()))

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
		defer cancel()
		if err := db.Drop(ctx); err != nil {
			t.Logf("dropping test database failed: %v", err)
		}
		_ = client.Disconnect(ctx)
	})

	// Stores rely on their unique indexes for duplicate detection.
	if err := seriesstore.New(db).EnsureIndexes(ctx); err != nil {
		t.Fatalf("ensure series indexes: %v", err)
	}
	if err := minutesstore.New(db).EnsureIndexes(ctx); err != nil {
		t.Fatalf("ensure minutes indexes: %v", err)
	}

	return db
}
