package model

import "time"

// Category classifies a value proposition along the Jobs-to-be-Done axes.
type Category string

const (
	CategoryJob  Category = "job"
	CategoryPain Category = "pain"
	CategoryGain Category = "gain"
)

// Valid reports whether c is one of the three scored categories.
func (c Category) Valid() bool {
	return c == CategoryJob || c == CategoryPain || c == CategoryGain
}

// Categories lists the scored categories in dimension order.
var Categories = []Category{CategoryJob, CategoryPain, CategoryGain}

// Job sub-types.
const (
	JobFunctional = "functional"
	JobEmotional  = "emotional"
	JobSocial     = "social"
)

// Gain sub-types, ordered from most to least essential.
const (
	GainRequired   = "required"
	GainExpected   = "expected"
	GainDesired    = "desired"
	GainUnexpected = "unexpected"
)

// Promise is a value-proposition claim extracted from company-controlled
// text. Immutable once stored.
type Promise struct {
	ID            string    `json:"id"`
	CompanyID     string    `json:"company_id"`
	SourceType    string    `json:"source_type"`
	SourceURL     string    `json:"source_url"`
	ExtractedText string    `json:"extracted_text"`
	Category      Category  `json:"category"`
	JobType       string    `json:"job_type,omitempty"`
	GainType      string    `json:"gain_type,omitempty"`
	Confidence    float64   `json:"confidence"`
	ExtractedAt   time.Time `json:"extracted_at"`
}
