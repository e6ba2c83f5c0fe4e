package summarizer

import (
	"bytes"
	"encoding/json"
)

// FallbackTitle is substituted when the model output carries no title.
const FallbackTitle = "No title"

// Summary is the model-produced condensation of a message: either a bulleted
// factual summary or a single-line receipt summary.
type Summary struct {
	// Title is never empty after normalization.
	Title string `json:"title"`

	// Bullets is an ordered sequence of short factual strings. An empty
	// sequence is valid and meaningful (receipts, or nothing to say).
	Bullets []string `json:"bullets"`

	// IsReceipt marks receipt/invoice summaries. By prompt contract a
	// receipt has no bullets; that invariant is not re-validated here.
	IsReceipt bool `json:"isReceipt"`
}

// rawSummary is the wire shape of the model output before normalization.
// Bullets and IsReceipt stay raw so malformed values can be defaulted
// instead of failing the parse.
type rawSummary struct {
	Title     *string         `json:"title"`
	Bullets   json.RawMessage `json:"bullets"`
	IsReceipt json.RawMessage `json:"isReceipt"`
}

// normalize maps a raw model output onto safe defaults: missing title gets
// the fallback literal, a non-array bullets field becomes empty, and
// isReceipt is accepted only when it is the exact JSON boolean true. The
// policy is "fail to non-receipt", never "fail to error".
func (r rawSummary) normalize() *Summary {
	s := &Summary{Bullets: []string{}}

	if r.Title != nil {
		s.Title = *r.Title
	} else {
		s.Title = FallbackTitle
	}

	if len(r.Bullets) > 0 {
		var bullets []string
		if err := json.Unmarshal(r.Bullets, &bullets); err == nil && bullets != nil {
			s.Bullets = bullets
		}
	}

	s.IsReceipt = bytes.Equal(bytes.TrimSpace(r.IsReceipt), []byte("true"))

	return s
}
