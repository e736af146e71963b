// internal/app/features/series/types.go
package series

import "github.com/bubonicfred/5minitz-sub000/internal/domain/models"

// createRequest is the payload for POST /series.
type createRequest struct {
	Project    string   `json:"project"`
	Name       string   `json:"name"`
	Moderators []string `json:"moderators,omitempty"`
	VisibleFor []string `json:"visible_for,omitempty"`
}

// updateRequest is the payload for PATCH /series/{id}. Nil fields are left
// unchanged.
type updateRequest struct {
	Project    *string         `json:"project,omitempty"`
	Name       *string         `json:"name,omitempty"`
	Moderators *[]string       `json:"moderators,omitempty"`
	VisibleFor *[]string       `json:"visible_for,omitempty"`
	Labels     *[]models.Label `json:"labels,omitempty"`
}
