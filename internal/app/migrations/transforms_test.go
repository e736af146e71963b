package migrations_test

import (
	"fmt"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/bubonicfred/5minitz-sub000/internal/app/migrations"
	"github.com/bubonicfred/5minitz-sub000/internal/testutil"
)

func firstTopic(t *testing.T, c *mongo.Collection, id interface{}) bson.M {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	var doc bson.M
	if err := c.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		t.Fatalf("reload document: %v", err)
	}
	topics, ok := doc["topics"].(bson.A)
	if !ok || len(topics) == 0 {
		t.Fatalf("document has no topics: %v", doc["topics"])
	}
	top, ok := topics[0].(bson.M)
	if !ok {
		t.Fatalf("unexpected topic shape %T", topics[0])
	}
	return top
}

func TestResponsiblesMigration(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	minutes := db.Collection("minutes")
	id := primitive.NewObjectID()
	_, err := minutes.InsertOne(ctx, bson.M{
		"_id":       id,
		"series_id": primitive.NewObjectID(),
		"date":      "2026-03-02",
		"topics": bson.A{bson.M{
			"id":          "t1",
			"subject":     "roles",
			"responsible": "Alice, Bob",
			"items": bson.A{bson.M{
				"id":          "i1",
				"kind":        "actionItem",
				"responsible": " Carol ",
			}},
		}},
	})
	if err != nil {
		t.Fatal(err)
	}

	r := migrations.NewRunner(db, migrations.All(), zap.NewNop())
	if err := r.MigrateTo(ctx, 1); err != nil {
		t.Fatalf("MigrateTo(1) failed: %v", err)
	}

	top := firstTopic(t, minutes, id)
	if _, ok := top["responsible"]; ok {
		t.Error("legacy responsible field must be removed")
	}
	got, ok := top["responsibles"].(bson.A)
	if !ok || len(got) != 2 || got[0] != "Alice" || got[1] != "Bob" {
		t.Errorf("topic responsibles: %v", top["responsibles"])
	}
	item := top["items"].(bson.A)[0].(bson.M)
	gotItem, ok := item["responsibles"].(bson.A)
	if !ok || len(gotItem) != 1 || gotItem[0] != "Carol" {
		t.Errorf("item responsibles: %v", item["responsibles"])
	}

	if err := r.MigrateTo(ctx, 0); err != nil {
		t.Fatalf("MigrateTo(0) failed: %v", err)
	}
	top = firstTopic(t, minutes, id)
	if top["responsible"] != "Alice, Bob" {
		t.Errorf("reverted topic responsible: %v", top["responsible"])
	}
}

func TestTopicFlagsMigration(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	series := db.Collection("meeting_series")
	id := primitive.NewObjectID()
	_, err := series.InsertOne(ctx, bson.M{
		"_id":     id,
		"project": "Apollo",
		"name":    "Weekly",
		"topics":  bson.A{bson.M{"id": "t1", "subject": "flags"}},
	})
	if err != nil {
		t.Fatal(err)
	}

	r := migrations.NewRunner(db, migrations.All(), zap.NewNop())
	if err := r.MigrateTo(ctx, 2); err != nil {
		t.Fatalf("MigrateTo(2) failed: %v", err)
	}

	top := firstTopic(t, series, id)
	if top["is_recurring"] != false || top["is_skipped"] != false {
		t.Errorf("flags not defaulted: recurring=%v skipped=%v", top["is_recurring"], top["is_skipped"])
	}

	if err := r.MigrateTo(ctx, 1); err != nil {
		t.Fatalf("MigrateTo(1) failed: %v", err)
	}
	top = firstTopic(t, series, id)
	if _, ok := top["is_recurring"]; ok {
		t.Error("reverted topic must not carry is_recurring")
	}
}

func TestLastMinutesBackfill(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	seriesID := primitive.NewObjectID()
	newest := primitive.NewObjectID()
	older := primitive.NewObjectID()

	minutes := db.Collection("minutes")
	if _, err := minutes.InsertMany(ctx, []interface{}{
		bson.M{"_id": newest, "series_id": seriesID, "date": "2026-03-09", "is_finalized": true},
		bson.M{"_id": older, "series_id": seriesID, "date": "2026-03-02", "is_finalized": true},
	}); err != nil {
		t.Fatal(err)
	}
	series := db.Collection("meeting_series")
	if _, err := series.InsertOne(ctx, bson.M{
		"_id":     seriesID,
		"project": "Apollo",
		"name":    "Weekly",
		"minutes": bson.A{newest, older},
	}); err != nil {
		t.Fatal(err)
	}
	empty := primitive.NewObjectID()
	if _, err := series.InsertOne(ctx, bson.M{
		"_id":     empty,
		"project": "Apollo",
		"name":    "Fresh",
		"minutes": bson.A{},
	}); err != nil {
		t.Fatal(err)
	}

	r := migrations.NewRunner(db, migrations.All(), zap.NewNop())
	if err := r.MigrateTo(ctx, 3); err != nil {
		t.Fatalf("MigrateTo(3) failed: %v", err)
	}

	var doc bson.M
	if err := series.FindOne(ctx, bson.M{"_id": seriesID}).Decode(&doc); err != nil {
		t.Fatal(err)
	}
	if doc["last_minutes_id"] != newest {
		t.Errorf("last_minutes_id: got %v, want %v", doc["last_minutes_id"], newest)
	}
	if doc["last_minutes_finalized"] != true {
		t.Errorf("last_minutes_finalized: got %v", doc["last_minutes_finalized"])
	}

	if err := series.FindOne(ctx, bson.M{"_id": empty}).Decode(&doc); err != nil {
		t.Fatal(err)
	}
	if _, ok := doc["last_minutes_id"]; ok {
		t.Error("a series without minutes must not gain last_minutes_id")
	}
	if doc["last_minutes_finalized"] != false {
		t.Errorf("empty series finalized flag: got %v", doc["last_minutes_finalized"])
	}

	if err := r.MigrateTo(ctx, 2); err != nil {
		t.Fatalf("MigrateTo(2) failed: %v", err)
	}
	if err := series.FindOne(ctx, bson.M{"_id": seriesID}).Decode(&doc); err != nil {
		t.Fatal(err)
	}
	if _, ok := doc["last_minutes_id"]; ok {
		t.Error("revert must unset last_minutes_id")
	}
}

func TestNormalizeTopicsRoundTrip(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	seriesID := primitive.NewObjectID()
	minutesID := primitive.NewObjectID()
	minutes := db.Collection("minutes")
	if _, err := minutes.InsertOne(ctx, bson.M{
		"_id":       minutesID,
		"series_id": seriesID,
		"date":      "2026-03-02",
		"topics": bson.A{
			bson.M{"id": "t1", "subject": "first", "is_open": true},
			bson.M{"id": "t2", "subject": "second", "is_open": false},
		},
	}); err != nil {
		t.Fatal(err)
	}

	r := migrations.NewRunner(db, migrations.All(), zap.NewNop())
	if err := r.MigrateTo(ctx, 4); err != nil {
		t.Fatalf("MigrateTo(4) failed: %v", err)
	}

	var doc bson.M
	if err := minutes.FindOne(ctx, bson.M{"_id": minutesID}).Decode(&doc); err != nil {
		t.Fatal(err)
	}
	if topics, ok := doc["topics"].(bson.A); !ok || len(topics) != 0 {
		t.Errorf("embedded topics must be emptied, got %v", doc["topics"])
	}
	ids, ok := doc["topic_ids"].(bson.A)
	if !ok || len(ids) != 2 || ids[0] != "t1" || ids[1] != "t2" {
		t.Fatalf("topic_ids must keep the embedded order, got %v", doc["topic_ids"])
	}

	topics := db.Collection("topics")
	var row bson.M
	rowID := fmt.Sprintf("%v:%s", minutesID, "t2")
	if err := topics.FindOne(ctx, bson.M{"_id": rowID}).Decode(&row); err != nil {
		t.Fatalf("normalized row: %v", err)
	}
	if row["subject"] != "second" || row["minutes_id"] != minutesID || row["series_id"] != seriesID {
		t.Errorf("normalized row fields wrong: %v", row)
	}

	if err := r.MigrateTo(ctx, 3); err != nil {
		t.Fatalf("MigrateTo(3) failed: %v", err)
	}
	if err := minutes.FindOne(ctx, bson.M{"_id": minutesID}).Decode(&doc); err != nil {
		t.Fatal(err)
	}
	if _, ok := doc["topic_ids"]; ok {
		t.Error("revert must unset topic_ids")
	}
	embedded, ok := doc["topics"].(bson.A)
	if !ok || len(embedded) != 2 {
		t.Fatalf("embedded topics must be restored, got %v", doc["topics"])
	}
	top := embedded[0].(bson.M)
	if top["id"] != "t1" || top["subject"] != "first" {
		t.Errorf("restored topic wrong: %v", top)
	}
	if _, ok := top["minutes_id"]; ok {
		t.Error("restored topic must not carry back-reference fields")
	}
	n, err := topics.CountDocuments(ctx, bson.M{"minutes_id": minutesID})
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("normalized rows must be deleted on revert, got %d", n)
	}
}
