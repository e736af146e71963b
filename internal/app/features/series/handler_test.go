package series_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/bubonicfred/5minitz-sub000/internal/app/features/series"
	"github.com/bubonicfred/5minitz-sub000/internal/app/policy/seriespolicy"
	minutesstore "github.com/bubonicfred/5minitz-sub000/internal/app/store/minutes"
	seriesstore "github.com/bubonicfred/5minitz-sub000/internal/app/store/series"
	"github.com/bubonicfred/5minitz-sub000/internal/app/workflow"
	"github.com/bubonicfred/5minitz-sub000/internal/domain/models"
	"github.com/bubonicfred/5minitz-sub000/internal/testutil"
)

func newRouter(t *testing.T) (chi.Router, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	engine := workflow.NewEngine(seriesstore.New(db), minutesstore.New(db),
		&seriespolicy.Checker{DB: db},
		workflow.NopEmitter{},
		workflow.DefaultConfig(),
		zap.NewNop())
	h := series.NewHandler(db, engine, zap.NewNop())
	return series.Routes(h), db
}

func TestSeriesCreate(t *testing.T) {
	router, _ := newRouter(t)
	mod := testutil.ModeratorUser()

	req := testutil.NewAuthenticatedRequest(http.MethodPost, "/",
		`{"project":"Apollo","name":"Weekly Sync"}`, mod)
	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, req)
	rec.AssertStatus(t, http.StatusCreated)

	var created models.MeetingSeries
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.Name != "Weekly Sync" {
		t.Errorf("got name %q", created.Name)
	}
	if !created.IsModerator(mod.ID) {
		t.Error("creator must end up in the moderator list")
	}
}

func TestSeriesCreateValidation(t *testing.T) {
	router, _ := newRouter(t)
	mod := testutil.ModeratorUser()

	req := testutil.NewAuthenticatedRequest(http.MethodPost, "/", `{"project":"Apollo"}`, mod)
	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, req)
	rec.AssertStatus(t, http.StatusBadRequest)

	// Markup-only names sanitize to empty and are rejected.
	req = testutil.NewAuthenticatedRequest(http.MethodPost, "/",
		`{"project":"Apollo","name":"<script>x</script>"}`, mod)
	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, req)
	rec.AssertStatus(t, http.StatusBadRequest)

	// Anonymous requests never reach the handler.
	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewRequest(http.MethodPost, "/", `{"project":"A","name":"B"}`))
	rec.AssertStatus(t, http.StatusUnauthorized)
}

func TestSeriesCreateDuplicate(t *testing.T) {
	router, _ := newRouter(t)
	mod := testutil.ModeratorUser()

	body := `{"project":"Apollo","name":"Weekly Sync"}`
	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewAuthenticatedRequest(http.MethodPost, "/", body, mod))
	rec.AssertStatus(t, http.StatusCreated)

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewAuthenticatedRequest(http.MethodPost, "/", body, mod))
	rec.AssertStatus(t, http.StatusConflict)
}

func TestSeriesList(t *testing.T) {
	router, db := newRouter(t)
	mod := testutil.ModeratorUser()
	other := testutil.ParticipantUser()

	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)
	fx.CreateSeries(ctx, "Apollo", "Mine", mod.ID)
	fx.CreateSeries(ctx, "Apollo", "Theirs", other.ID)

	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewAuthenticatedRequest(http.MethodGet, "/", "", mod))
	rec.AssertStatus(t, http.StatusOK)

	var list []models.MeetingSeries
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(list) != 1 || list[0].Name != "Mine" {
		t.Errorf("expected only the caller's series, got %v", list)
	}

	// A user with nothing shared gets an empty array, not null.
	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewAuthenticatedRequest(http.MethodGet, "/", "", testutil.ParticipantUser()))
	rec.AssertStatus(t, http.StatusOK)
	if rec.Body.String() == "null\n" {
		t.Error("empty list must encode as [], not null")
	}
}

func TestSeriesView(t *testing.T) {
	router, db := newRouter(t)
	mod := testutil.ModeratorUser()

	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)
	ms := fx.CreateSeries(ctx, "Apollo", "Visible", mod.ID)

	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewAuthenticatedRequest(http.MethodGet, "/"+ms.ID.Hex(), "", mod))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "Visible")

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewAuthenticatedRequest(http.MethodGet, "/"+ms.ID.Hex(), "", testutil.ParticipantUser()))
	rec.AssertStatus(t, http.StatusForbidden)

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewAuthenticatedRequest(http.MethodGet, "/not-an-id", "", mod))
	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestSeriesEdit(t *testing.T) {
	router, db := newRouter(t)
	mod := testutil.ModeratorUser()

	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)
	ms := fx.CreateSeries(ctx, "Apollo", "Old Name", mod.ID)

	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewAuthenticatedRequest(http.MethodPatch, "/"+ms.ID.Hex(),
		`{"name":"New Name"}`, mod))
	rec.AssertStatus(t, http.StatusOK)

	var updated models.MeetingSeries
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if updated.Name != "New Name" || updated.NameCI != "new name" {
		t.Errorf("name not updated and refolded: %q / %q", updated.Name, updated.NameCI)
	}

	// A moderator cannot edit themselves out of the moderator list.
	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewAuthenticatedRequest(http.MethodPatch, "/"+ms.ID.Hex(),
		`{"moderators":["somebody-else"]}`, mod))
	rec.AssertStatus(t, http.StatusBadRequest)

	// Non-moderators cannot edit at all.
	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewAuthenticatedRequest(http.MethodPatch, "/"+ms.ID.Hex(),
		`{"name":"Sneaky"}`, testutil.ParticipantUser()))
	rec.AssertStatus(t, http.StatusForbidden)
}

func TestSeriesDelete(t *testing.T) {
	router, db := newRouter(t)
	mod := testutil.ModeratorUser()

	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)
	ms := fx.CreateSeries(ctx, "Apollo", "Doomed", mod.ID)

	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewAuthenticatedRequest(http.MethodDelete, "/"+ms.ID.Hex(), "",
		testutil.ParticipantUser()))
	rec.AssertStatus(t, http.StatusForbidden)

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewAuthenticatedRequest(http.MethodDelete, "/"+ms.ID.Hex(), "", mod))
	rec.AssertStatus(t, http.StatusNoContent)

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewAuthenticatedRequest(http.MethodGet, "/"+ms.ID.Hex(), "", mod))
	rec.AssertStatus(t, http.StatusNotFound)
}

func TestSeriesTopics(t *testing.T) {
	router, db := newRouter(t)
	mod := testutil.ModeratorUser()

	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)
	ms := fx.CreateSeries(ctx, "Apollo", "With Topics", mod.ID)

	store := seriesstore.New(db)
	loaded, err := store.GetByID(ctx, ms.ID)
	if err != nil {
		t.Fatal(err)
	}
	loaded.TopicProjection = []models.Topic{
		{ID: "t-open", Subject: "still going", IsOpen: true},
		{ID: "t-closed", Subject: "handled"},
	}
	if err := store.Replace(ctx, &loaded); err != nil {
		t.Fatal(err)
	}

	base := fmt.Sprintf("/%s/topics", ms.ID.Hex())
	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewAuthenticatedRequest(http.MethodGet, base, "", mod))
	rec.AssertStatus(t, http.StatusOK)

	var all []models.Topic
	if err := json.Unmarshal(rec.Body.Bytes(), &all); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected both topics, got %d", len(all))
	}

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewAuthenticatedRequest(http.MethodGet, base+"?open=true", "", mod))
	rec.AssertStatus(t, http.StatusOK)
	var open []models.Topic
	if err := json.Unmarshal(rec.Body.Bytes(), &open); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(open) != 1 || open[0].ID != "t-open" {
		t.Errorf("expected only the open topic, got %v", open)
	}
}

func TestSeriesReopenTopic(t *testing.T) {
	router, db := newRouter(t)
	mod := testutil.ModeratorUser()

	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)
	ms := fx.CreateSeries(ctx, "Apollo", "Reopen", mod.ID)

	store := seriesstore.New(db)
	loaded, err := store.GetByID(ctx, ms.ID)
	if err != nil {
		t.Fatal(err)
	}
	loaded.TopicProjection = []models.Topic{{ID: "t1", Subject: "resolved"}}
	if err := store.Replace(ctx, &loaded); err != nil {
		t.Fatal(err)
	}

	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewAuthenticatedRequest(http.MethodPost,
		fmt.Sprintf("/%s/topics/t1/reopen", ms.ID.Hex()), "", mod))
	rec.AssertStatus(t, http.StatusNoContent)

	reloaded, err := store.GetByID(ctx, ms.ID)
	if err != nil {
		t.Fatal(err)
	}
	top, ok := reloaded.FindProjectedTopic("t1")
	if !ok || !top.IsOpen {
		t.Error("projection topic must be open after reopen")
	}

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewAuthenticatedRequest(http.MethodPost,
		fmt.Sprintf("/%s/topics/ghost/reopen", ms.ID.Hex()), "", mod))
	rec.AssertStatus(t, http.StatusBadRequest)
}
