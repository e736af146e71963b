package minutesstore_test

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	minutesstore "github.com/bubonicfred/5minitz-sub000/internal/app/store/minutes"
	"github.com/bubonicfred/5minitz-sub000/internal/domain/models"
	"github.com/bubonicfred/5minitz-sub000/internal/testutil"
)

func TestMinutesStoreCreate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := minutesstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	seriesID := primitive.NewObjectID()
	created, err := store.Create(ctx, models.Minutes{SeriesID: seriesID, Date: "2026-03-02"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID.IsZero() {
		t.Error("expected an assigned ID")
	}
	if created.Version != 1 {
		t.Errorf("expected version 1, got %d", created.Version)
	}
	if created.Topics == nil || created.Participants == nil {
		t.Error("expected empty, non-nil topics and participants")
	}

	if _, err := store.Create(ctx, models.Minutes{SeriesID: seriesID, Date: "2026-03-02"}); !errors.Is(err, minutesstore.ErrDuplicateDate) {
		t.Errorf("expected ErrDuplicateDate, got %v", err)
	}
	// The same date in another series is fine.
	if _, err := store.Create(ctx, models.Minutes{SeriesID: primitive.NewObjectID(), Date: "2026-03-02"}); err != nil {
		t.Errorf("different series must not collide: %v", err)
	}
}

func TestMinutesStoreGetByID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := minutesstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Minutes{SeriesID: primitive.NewObjectID(), Date: "2026-03-02"})
	if err != nil {
		t.Fatal(err)
	}
	got, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Date != "2026-03-02" {
		t.Errorf("got date %q", got.Date)
	}

	if _, err := store.GetByID(ctx, primitive.NewObjectID()); !errors.Is(err, minutesstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMinutesStoreReplaceVersioning(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := minutesstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Minutes{SeriesID: primitive.NewObjectID(), Date: "2026-03-02"})
	if err != nil {
		t.Fatal(err)
	}

	first := created
	first.GlobalNote = "updated"
	if err := store.Replace(ctx, &first); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}
	if first.Version != 2 {
		t.Errorf("expected version bumped to 2, got %d", first.Version)
	}

	stale := created
	stale.GlobalNote = "stale"
	if err := store.Replace(ctx, &stale); !errors.Is(err, minutesstore.ErrVersionConflict) {
		t.Errorf("expected ErrVersionConflict, got %v", err)
	}
	if stale.Version != 1 {
		t.Errorf("failed replace must not bump the in-memory version, got %d", stale.Version)
	}

	gone := created
	gone.ID = primitive.NewObjectID()
	if err := store.Replace(ctx, &gone); !errors.Is(err, minutesstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMinutesStoreListBySeries(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := minutesstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	seriesID := primitive.NewObjectID()
	dates := []string{"2026-03-02", "2026-03-16", "2026-03-09"}
	for _, d := range dates {
		if _, err := store.Create(ctx, models.Minutes{SeriesID: seriesID, Date: d}); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := store.Create(ctx, models.Minutes{SeriesID: primitive.NewObjectID(), Date: "2026-03-02"}); err != nil {
		t.Fatal(err)
	}

	got, err := store.ListBySeries(ctx, seriesID)
	if err != nil {
		t.Fatalf("ListBySeries failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 minutes, got %d", len(got))
	}
	// Newest first.
	want := []string{"2026-03-16", "2026-03-09", "2026-03-02"}
	for i, d := range want {
		if got[i].Date != d {
			t.Errorf("position %d: got %s, want %s", i, got[i].Date, d)
		}
	}
}

func TestMinutesStoreFinalizedQueries(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := minutesstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	seriesID := primitive.NewObjectID()
	for _, m := range []models.Minutes{
		{SeriesID: seriesID, Date: "2026-03-02", IsFinalized: true},
		{SeriesID: seriesID, Date: "2026-03-09", IsFinalized: true},
		{SeriesID: seriesID, Date: "2026-03-16"},
	} {
		if _, err := store.Create(ctx, m); err != nil {
			t.Fatal(err)
		}
	}

	finalized, err := store.ListFinalizedBySeries(ctx, seriesID)
	if err != nil {
		t.Fatalf("ListFinalizedBySeries failed: %v", err)
	}
	if len(finalized) != 2 {
		t.Fatalf("expected 2 finalized minutes, got %d", len(finalized))
	}
	// Oldest first, the replay order.
	if finalized[0].Date != "2026-03-02" || finalized[1].Date != "2026-03-09" {
		t.Errorf("wrong order: %s, %s", finalized[0].Date, finalized[1].Date)
	}

	latest, err := store.GetLatestBySeries(ctx, seriesID)
	if err != nil {
		t.Fatalf("GetLatestBySeries failed: %v", err)
	}
	if latest.Date != "2026-03-16" {
		t.Errorf("expected the newest minutes, got %s", latest.Date)
	}

	n, err := store.CountUnfinalizedBySeries(ctx, seriesID)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("expected 1 unfinalized minutes, got %d", n)
	}

	if _, err := store.GetLatestBySeries(ctx, primitive.NewObjectID()); !errors.Is(err, minutesstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound for an empty series, got %v", err)
	}
}

func TestMinutesStoreDeleteRequiresUnfinalized(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := minutesstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	m, err := store.Create(ctx, models.Minutes{SeriesID: primitive.NewObjectID(), Date: "2026-03-02"})
	if err != nil {
		t.Fatal(err)
	}
	m.IsFinalized = true
	if err := store.Replace(ctx, &m); err != nil {
		t.Fatal(err)
	}

	// A minutes finalized after the caller's read no longer matches.
	n, err := store.Delete(ctx, m.ID)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("finalized minutes matched the delete, n=%d", n)
	}
	if _, err := store.GetByID(ctx, m.ID); err != nil {
		t.Errorf("finalized minutes must survive: %v", err)
	}

	m.IsFinalized = false
	if err := store.Replace(ctx, &m); err != nil {
		t.Fatal(err)
	}
	n, err = store.Delete(ctx, m.ID)
	if err != nil || n != 1 {
		t.Fatalf("unfinalized delete: n=%d err=%v", n, err)
	}
	if _, err := store.GetByID(ctx, m.ID); !errors.Is(err, minutesstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestMinutesStoreDeleteBySeries(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := minutesstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	seriesID := primitive.NewObjectID()
	for _, d := range []string{"2026-03-02", "2026-03-09"} {
		if _, err := store.Create(ctx, models.Minutes{SeriesID: seriesID, Date: d}); err != nil {
			t.Fatal(err)
		}
	}
	other, err := store.Create(ctx, models.Minutes{SeriesID: primitive.NewObjectID(), Date: "2026-03-02"})
	if err != nil {
		t.Fatal(err)
	}

	n, err := store.DeleteBySeries(ctx, seriesID)
	if err != nil || n != 2 {
		t.Fatalf("DeleteBySeries: n=%d err=%v", n, err)
	}
	if _, err := store.GetByID(ctx, other.ID); err != nil {
		t.Errorf("other series' minutes must survive: %v", err)
	}
}
