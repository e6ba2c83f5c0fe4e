package gmail

import (
	"fmt"
	"strings"
	"time"

	"github.com/djokobozinov/email-ai-agent/internal/config"
)

// BuildQuery composes the Gmail search expression for one listing call:
// unread only, minus the excluded categories, bounded below by the lookback
// window, plus an optional label filter.
//
// The time bound is the only deduplication mechanism the pipeline has, since
// messages are never marked read. Keep the window coupled to the schedule
// interval (see config.DefaultLookbackWindow).
func BuildQuery(p config.PipelineConfig, labelFilter string, now time.Time) string {
	terms := []string{"is:unread"}

	for _, category := range p.ExcludedCategories {
		terms = append(terms, "-in:"+category)
	}

	cutoff := now.Add(-p.LookbackWindow).Unix()
	terms = append(terms, fmt.Sprintf("after:%d", cutoff))

	if labelFilter != "" {
		terms = append(terms, "label:"+labelFilter)
	}

	return strings.Join(terms, " ")
}
