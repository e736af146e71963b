// internal/app/features/minutes/types.go
package minutes

// createRequest is the payload for POST /minutes.
type createRequest struct {
	SeriesID string `json:"series_id"`
	Date     string `json:"date"` // YYYY-MM-DD
}

// topicRequest carries the editable content fields of a topic.
type topicRequest struct {
	ID           string   `json:"id,omitempty"`
	Subject      string   `json:"subject"`
	Responsibles []string `json:"responsibles,omitempty"`
	LabelIDs     []string `json:"label_ids,omitempty"`
}

// itemRequest carries the editable content fields of an info or action item.
type itemRequest struct {
	ID           string   `json:"id,omitempty"`
	Kind         string   `json:"kind"`
	Subject      string   `json:"subject"`
	LabelIDs     []string `json:"label_ids,omitempty"`
	Responsibles []string `json:"responsibles,omitempty"`
	Priority     string   `json:"priority,omitempty"`
	DueDate      string   `json:"due_date,omitempty"`
}

// detailRequest carries a detail entry's text.
type detailRequest struct {
	Text string `json:"text"`
}

// noteRequest carries the global note text.
type noteRequest struct {
	Text string `json:"text"`
}

// presenceRequest marks a participant present or absent.
type presenceRequest struct {
	Present bool `json:"present"`
}

// removeResponse reports whether a delete degraded into a close.
type removeResponse struct {
	Degraded bool `json:"degraded"`
}
