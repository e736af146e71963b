// internal/app/migrations/transforms.go
package migrations

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func replaceUpsert() *options.ReplaceOptions {
	return options.Replace().SetUpsert(true)
}

// All returns the ordered migration list. Versions are append-only; never
// renumber a shipped transform.
func All() []Migration {
	return []Migration{
		{
			Version:     1,
			Description: "topic/item responsible string becomes responsibles array",
			Up:          responsiblesUp,
			Down:        responsiblesDown,
		},
		{
			Version:     2,
			Description: "default isRecurring/isSkipped flags on embedded topics",
			Up:          topicFlagsUp,
			Down:        topicFlagsDown,
		},
		{
			Version:     3,
			Description: "denormalized last_minutes_id/last_minutes_finalized on series",
			Up:          lastMinutesUp,
			Down:        lastMinutesDown,
		},
		{
			Version:     4,
			Description: "extract embedded topics into a normalized topics collection",
			Up:          normalizeTopicsUp,
			Down:        normalizeTopicsDown,
		},
	}
}

func asArray(v interface{}) (bson.A, bool) {
	a, ok := v.(bson.A)
	return a, ok
}

// rewriteTopics loads every document of the collection and applies fn to
// each embedded topic map, persisting the document when fn reports a change.
func rewriteTopics(ctx context.Context, c *mongo.Collection, fn func(topic bson.M) bool) error {
	cur, err := c.Find(ctx, bson.M{})
	if err != nil {
		return err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var doc bson.M
		if err := cur.Decode(&doc); err != nil {
			return err
		}
		topics, ok := asArray(doc["topics"])
		if !ok {
			continue
		}
		changed := false
		for _, tv := range topics {
			t, ok := tv.(bson.M)
			if !ok {
				continue
			}
			if fn(t) {
				changed = true
			}
		}
		if !changed {
			continue
		}
		if _, err := c.UpdateOne(ctx, bson.M{"_id": doc["_id"]},
			bson.M{"$set": bson.M{"topics": topics}}); err != nil {
			return err
		}
	}
	return cur.Err()
}

/* ------------------------------- version 1 ------------------------------- */

func splitResponsible(m bson.M) bool {
	raw, ok := m["responsible"]
	if !ok {
		return false
	}
	delete(m, "responsible")
	var parts []string
	if s, ok := raw.(string); ok && strings.TrimSpace(s) != "" {
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
	}
	out := bson.A{}
	for _, p := range parts {
		out = append(out, p)
	}
	m["responsibles"] = out
	return true
}

func joinResponsibles(m bson.M) bool {
	raw, ok := m["responsibles"]
	if !ok {
		return false
	}
	delete(m, "responsibles")
	var parts []string
	if a, ok := asArray(raw); ok {
		for _, v := range a {
			if s, ok := v.(string); ok {
				parts = append(parts, s)
			}
		}
	}
	m["responsible"] = strings.Join(parts, ", ")
	return true
}

func forEachItem(topic bson.M, fn func(item bson.M) bool) bool {
	items, ok := asArray(topic["items"])
	if !ok {
		return false
	}
	changed := false
	for _, iv := range items {
		if it, ok := iv.(bson.M); ok && fn(it) {
			changed = true
		}
	}
	if changed {
		topic["items"] = items
	}
	return changed
}

func responsiblesUp(ctx context.Context, db *mongo.Database) error {
	fn := func(t bson.M) bool {
		changed := splitResponsible(t)
		if forEachItem(t, splitResponsible) {
			changed = true
		}
		return changed
	}
	if err := rewriteTopics(ctx, db.Collection("minutes"), fn); err != nil {
		return err
	}
	return rewriteTopics(ctx, db.Collection("meeting_series"), fn)
}

func responsiblesDown(ctx context.Context, db *mongo.Database) error {
	fn := func(t bson.M) bool {
		changed := joinResponsibles(t)
		if forEachItem(t, joinResponsibles) {
			changed = true
		}
		return changed
	}
	if err := rewriteTopics(ctx, db.Collection("minutes"), fn); err != nil {
		return err
	}
	return rewriteTopics(ctx, db.Collection("meeting_series"), fn)
}

/* ------------------------------- version 2 ------------------------------- */

func topicFlagsUp(ctx context.Context, db *mongo.Database) error {
	fn := func(t bson.M) bool {
		changed := false
		if _, ok := t["is_recurring"]; !ok {
			t["is_recurring"] = false
			changed = true
		}
		if _, ok := t["is_skipped"]; !ok {
			t["is_skipped"] = false
			changed = true
		}
		return changed
	}
	if err := rewriteTopics(ctx, db.Collection("minutes"), fn); err != nil {
		return err
	}
	return rewriteTopics(ctx, db.Collection("meeting_series"), fn)
}

func topicFlagsDown(ctx context.Context, db *mongo.Database) error {
	fn := func(t bson.M) bool {
		changed := false
		if _, ok := t["is_recurring"]; ok {
			delete(t, "is_recurring")
			changed = true
		}
		if _, ok := t["is_skipped"]; ok {
			delete(t, "is_skipped")
			changed = true
		}
		return changed
	}
	if err := rewriteTopics(ctx, db.Collection("minutes"), fn); err != nil {
		return err
	}
	return rewriteTopics(ctx, db.Collection("meeting_series"), fn)
}

/* ------------------------------- version 3 ------------------------------- */

// lastMinutesUp backfills the denormalized fields the workflow engine reads:
// the id of the newest minutes and whether it is finalized.
func lastMinutesUp(ctx context.Context, db *mongo.Database) error {
	series := db.Collection("meeting_series")
	minutes := db.Collection("minutes")

	cur, err := series.Find(ctx, bson.M{"last_minutes_id": bson.M{"$exists": false}})
	if err != nil {
		return err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var doc bson.M
		if err := cur.Decode(&doc); err != nil {
			return err
		}
		set := bson.M{"last_minutes_finalized": false}
		if refs, ok := asArray(doc["minutes"]); ok && len(refs) > 0 {
			lastID := refs[0]
			set["last_minutes_id"] = lastID
			var m bson.M
			err := minutes.FindOne(ctx, bson.M{"_id": lastID}).Decode(&m)
			if err != nil && err != mongo.ErrNoDocuments {
				return err
			}
			if fin, ok := m["is_finalized"].(bool); ok {
				set["last_minutes_finalized"] = fin
			}
		}
		if _, err := series.UpdateOne(ctx, bson.M{"_id": doc["_id"]}, bson.M{"$set": set}); err != nil {
			return err
		}
	}
	return cur.Err()
}

func lastMinutesDown(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("meeting_series").UpdateMany(ctx, bson.M{},
		bson.M{"$unset": bson.M{"last_minutes_id": "", "last_minutes_finalized": ""}})
	return err
}

/* ------------------------------- version 4 ------------------------------- */

// normalizeTopicsUp moves embedded minutes topics into a normalized topics
// collection with back-references, leaving an ordered topic_ids list behind.
// This is an alternate schema version; the steady state is the embedded form.
func normalizeTopicsUp(ctx context.Context, db *mongo.Database) error {
	minutes := db.Collection("minutes")
	topics := db.Collection("topics")

	cur, err := minutes.Find(ctx, bson.M{"topic_ids": bson.M{"$exists": false}})
	if err != nil {
		return err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var doc bson.M
		if err := cur.Decode(&doc); err != nil {
			return err
		}
		embedded, ok := asArray(doc["topics"])
		if !ok {
			continue
		}
		ids := bson.A{}
		for _, tv := range embedded {
			t, ok := tv.(bson.M)
			if !ok {
				continue
			}
			id, _ := t["id"].(string)
			if id == "" {
				return fmt.Errorf("minutes %v: embedded topic without id", doc["_id"])
			}
			ids = append(ids, id)
			row := bson.M{}
			for k, v := range t {
				row[k] = v
			}
			row["_id"] = fmt.Sprintf("%v:%s", doc["_id"], id)
			row["minutes_id"] = doc["_id"]
			row["series_id"] = doc["series_id"]
			if _, err := topics.ReplaceOne(ctx, bson.M{"_id": row["_id"]}, row,
				replaceUpsert()); err != nil {
				return err
			}
		}
		if _, err := minutes.UpdateOne(ctx, bson.M{"_id": doc["_id"]},
			bson.M{"$set": bson.M{"topics": bson.A{}, "topic_ids": ids}}); err != nil {
			return err
		}
	}
	return cur.Err()
}

func normalizeTopicsDown(ctx context.Context, db *mongo.Database) error {
	minutes := db.Collection("minutes")
	topics := db.Collection("topics")

	cur, err := minutes.Find(ctx, bson.M{"topic_ids": bson.M{"$exists": true}})
	if err != nil {
		return err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var doc bson.M
		if err := cur.Decode(&doc); err != nil {
			return err
		}
		ids, _ := asArray(doc["topic_ids"])
		embedded := bson.A{}
		for _, idv := range ids {
			id, _ := idv.(string)
			var row bson.M
			err := topics.FindOne(ctx,
				bson.M{"_id": fmt.Sprintf("%v:%s", doc["_id"], id)}).Decode(&row)
			if err != nil {
				return fmt.Errorf("minutes %v: normalized topic %s: %w", doc["_id"], id, err)
			}
			delete(row, "_id")
			delete(row, "minutes_id")
			delete(row, "series_id")
			embedded = append(embedded, row)
		}
		update := bson.M{
			"$set":   bson.M{"topics": embedded},
			"$unset": bson.M{"topic_ids": ""},
		}
		if _, err := minutes.UpdateOne(ctx, bson.M{"_id": doc["_id"]}, update); err != nil {
			return err
		}
		if _, err := topics.DeleteMany(ctx, bson.M{"minutes_id": doc["_id"]}); err != nil {
			return err
		}
	}
	return cur.Err()
}
