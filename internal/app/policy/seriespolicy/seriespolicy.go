// internal/app/policy/seriespolicy.go
package seriespolicy

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// IsModerator returns true if the given user is listed as a moderator of the
// series according to the authoritative meeting_series document.
func IsModerator(ctx context.Context, db *mongo.Database, seriesID primitive.ObjectID, userID string) (bool, error) {
	c := db.Collection("meeting_series")
	n, err := c.CountDocuments(ctx, bson.M{
		"_id":        seriesID,
		"moderators": userID,
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// IsUploader returns true if the user may upload to the series. Everyone the
// series is visible to (moderators included) has upload rights; the
// attachment collaborator applies the same rule.
func IsUploader(ctx context.Context, db *mongo.Database, seriesID primitive.ObjectID, userID string) (bool, error) {
	return CanView(ctx, db, seriesID, userID)
}

// CanView returns true if the user is a moderator of the series or in its
// visible-for list. Returns an error only on database failure so callers can
// distinguish "not authorized" (false, nil) from "check failed" (false, err).
func CanView(ctx context.Context, db *mongo.Database, seriesID primitive.ObjectID, userID string) (bool, error) {
	c := db.Collection("meeting_series")
	n, err := c.CountDocuments(ctx, bson.M{
		"_id": seriesID,
		"$or": bson.A{
			bson.M{"moderators": userID},
			bson.M{"visible_for": userID},
		},
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Checker adapts the predicates to the workflow engine's capability
// boundary.
type Checker struct {
	DB *mongo.Database
}

func (c *Checker) IsModeratorOf(ctx context.Context, seriesID primitive.ObjectID, userID string) (bool, error) {
	return IsModerator(ctx, c.DB, seriesID, userID)
}

func (c *Checker) IsUploaderFor(ctx context.Context, seriesID primitive.ObjectID, userID string) (bool, error) {
	return IsUploader(ctx, c.DB, seriesID, userID)
}
