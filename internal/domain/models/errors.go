// internal/domain/models/errors.go
package models

import "errors"

var (
	// ErrDuplicateTopicID is returned when an insert replays an id that is
	// already present in the minutes (double-submit defense).
	ErrDuplicateTopicID = errors.New("a topic with this id already exists in the minutes")

	// ErrDuplicateItemID is its counterpart for items within a topic.
	ErrDuplicateItemID = errors.New("an item with this id already exists in the topic")

	ErrTopicNotFound  = errors.New("topic not found in minutes")
	ErrItemNotFound   = errors.New("item not found in topic")
	ErrDetailNotFound = errors.New("detail entry not found in item")
)
