package model

import (
	"encoding/json"
	"time"
)

// MentionedItem is a single job, pain, or gain surfaced by review analysis.
// Jobs and gains carry a Type; pains carry a Severity.
type MentionedItem struct {
	Text       string  `json:"text"`
	Type       string  `json:"type,omitempty"`
	Severity   string  `json:"severity,omitempty"`
	Confidence float64 `json:"confidence"`
}

// Topic is a lightweight keyword extracted from a review.
type Topic struct {
	Keyword string  `json:"keyword"`
	Weight  float64 `json:"weight"`
}

// FeedbackAnnotation is the per-review analysis record: the jobs, pains and
// gains a customer mentioned plus a normalized sentiment score
// (0 = most negative, 0.5 = neutral, 1 = most positive). One per review,
// never mutated after creation; recomputing an audit re-derives it.
type FeedbackAnnotation struct {
	ID             string          `json:"id"`
	CompanyID      string          `json:"company_id"`
	ReviewID       string          `json:"review_id"`
	JobsMentioned  []MentionedItem `json:"jobs_mentioned"`
	PainsMentioned []MentionedItem `json:"pains_mentioned"`
	GainsMentioned []MentionedItem `json:"gains_mentioned"`
	Sentiment      float64         `json:"sentiment"`
	Topics         []Topic         `json:"topics,omitempty"`
	AnalyzedAt     time.Time       `json:"analyzed_at"`

	// Joined from the owning review, for gap display only.
	ReviewText string `json:"review_text,omitempty"`
}

// Mentions returns the mention list for the given category.
func (f *FeedbackAnnotation) Mentions(category Category) []MentionedItem {
	switch category {
	case CategoryJob:
		return f.JobsMentioned
	case CategoryPain:
		return f.PainsMentioned
	case CategoryGain:
		return f.GainsMentioned
	}
	return nil
}

// NormalizeMentions decodes a mention list that may be stored either as a
// JSON array or as a JSON string containing an array. It is total: any parse
// failure yields an empty list, never an error. Applied once at the store
// boundary so scoring logic only ever sees []MentionedItem.
func NormalizeMentions(raw []byte) []MentionedItem {
	if len(raw) == 0 {
		return nil
	}

	var items []MentionedItem
	if err := json.Unmarshal(raw, &items); err == nil {
		return items
	}

	// Double-encoded: a JSON string whose contents are the array.
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	if err := json.Unmarshal([]byte(s), &items); err != nil {
		return nil
	}
	return items
}
