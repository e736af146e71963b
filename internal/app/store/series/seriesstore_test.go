package seriesstore_test

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	seriesstore "github.com/bubonicfred/5minitz-sub000/internal/app/store/series"
	"github.com/bubonicfred/5minitz-sub000/internal/domain/models"
	"github.com/bubonicfred/5minitz-sub000/internal/testutil"
)

func TestSeriesStoreCreate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := seriesstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.MeetingSeries{
		Project:    "Apollo",
		Name:       "Weekly Sync",
		Moderators: []string{"u1"},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID.IsZero() {
		t.Error("expected an assigned ID")
	}
	if created.Version != 1 {
		t.Errorf("expected version 1, got %d", created.Version)
	}
	if created.NameCI != "weekly sync" {
		t.Errorf("expected folded name, got %q", created.NameCI)
	}
	if created.Minutes == nil || created.TopicProjection == nil {
		t.Error("expected empty, non-nil minutes list and projection")
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}
}

func TestSeriesStoreCreateDuplicateName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := seriesstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, models.MeetingSeries{Project: "Apollo", Name: "Weekly Sync"}); err != nil {
		t.Fatal(err)
	}
	// The unique index folds case, so a case variant collides.
	if _, err := store.Create(ctx, models.MeetingSeries{Project: "Apollo", Name: "WEEKLY sync"}); !errors.Is(err, seriesstore.ErrDuplicateName) {
		t.Errorf("expected ErrDuplicateName, got %v", err)
	}
	// The same name under another project is fine.
	if _, err := store.Create(ctx, models.MeetingSeries{Project: "Gemini", Name: "Weekly Sync"}); err != nil {
		t.Errorf("different project must not collide: %v", err)
	}
}

func TestSeriesStoreGetByID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := seriesstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.MeetingSeries{Project: "Apollo", Name: "Retro"})
	if err != nil {
		t.Fatal(err)
	}
	got, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Name != "Retro" {
		t.Errorf("got %q", got.Name)
	}

	if _, err := store.GetByID(ctx, primitive.NewObjectID()); !errors.Is(err, seriesstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSeriesStoreReplaceVersioning(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := seriesstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.MeetingSeries{Project: "Apollo", Name: "Planning"})
	if err != nil {
		t.Fatal(err)
	}

	first := created
	first.Name = "Planning v2"
	if err := store.Replace(ctx, &first); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}
	if first.Version != 2 {
		t.Errorf("expected version bumped to 2, got %d", first.Version)
	}
	if first.NameCI != "planning v2" {
		t.Errorf("Replace must refold the name, got %q", first.NameCI)
	}

	// A writer still holding version 1 loses the race.
	stale := created
	stale.Name = "Planning stale"
	if err := store.Replace(ctx, &stale); !errors.Is(err, seriesstore.ErrVersionConflict) {
		t.Errorf("expected ErrVersionConflict, got %v", err)
	}
	if stale.Version != 1 {
		t.Errorf("failed replace must not bump the in-memory version, got %d", stale.Version)
	}

	gone := created
	gone.ID = primitive.NewObjectID()
	if err := store.Replace(ctx, &gone); !errors.Is(err, seriesstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSeriesStoreListVisibleFor(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := seriesstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	seed := []models.MeetingSeries{
		{Project: "Apollo", Name: "Zulu", Moderators: []string{"alice"}},
		{Project: "Apollo", Name: "Alpha", VisibleFor: []string{"alice"}},
		{Project: "Apollo", Name: "Mike", Moderators: []string{"bob"}},
	}
	for _, ms := range seed {
		if _, err := store.Create(ctx, ms); err != nil {
			t.Fatal(err)
		}
	}

	got, err := store.ListVisibleFor(ctx, "alice")
	if err != nil {
		t.Fatalf("ListVisibleFor failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 series, got %d", len(got))
	}
	// Sorted by folded name.
	if got[0].Name != "Alpha" || got[1].Name != "Zulu" {
		t.Errorf("wrong order: %q, %q", got[0].Name, got[1].Name)
	}

	none, err := store.ListVisibleFor(ctx, "nobody")
	if err != nil {
		t.Fatal(err)
	}
	if len(none) != 0 {
		t.Errorf("expected no series for an unknown user, got %d", len(none))
	}
}

func TestSeriesStoreDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := seriesstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.MeetingSeries{Project: "Apollo", Name: "Doomed"})
	if err != nil {
		t.Fatal(err)
	}
	n, err := store.Delete(ctx, created.ID)
	if err != nil || n != 1 {
		t.Fatalf("Delete: n=%d err=%v", n, err)
	}
	n, err = store.Delete(ctx, created.ID)
	if err != nil || n != 0 {
		t.Errorf("second delete: n=%d err=%v", n, err)
	}
}
