package insights

import "time"

// Summary is the stored narrative, written by the worker and served by the API.
type Summary struct {
	Text        string    `json:"text"`
	GeneratedAt time.Time `json:"generatedAt"`
}
