// internal/domain/models/ids.go
package models

import "github.com/google/uuid"

// NewID returns a fresh identifier for embedded value objects (topics, items,
// details). These ids must stay stable as the object is cloned across minutes
// documents, which is why they are not Mongo ObjectIDs tied to one document.
func NewID() string {
	return uuid.NewString()
}
