package model

// GapType is the dimension a gap belongs to (plural form of Category).
type GapType string

const (
	GapJobs  GapType = "jobs"
	GapPains GapType = "pains"
	GapGains GapType = "gains"
)

// GapTypeFor maps a promise category to its gap dimension.
func GapTypeFor(c Category) GapType {
	switch c {
	case CategoryPain:
		return GapPains
	case CategoryGain:
		return GapGains
	default:
		return GapJobs
	}
}

// Severity grades how badly a gap hurts.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Gap is a promise-vs-reality mismatch surfaced for one audit. The full set
// for an audit is replaced on recomputation; a gap's lifetime is bounded by
// the audit it annotates.
type Gap struct {
	ID          string   `json:"id"`
	CompanyID   string   `json:"company_id"`
	AuditID     string   `json:"audit_id"`
	GapType     GapType  `json:"gap_type"`
	Description string   `json:"gap_description"`
	Severity    Severity `json:"gap_severity"`
	PromiseText string   `json:"promise_text"`
	RealityText string   `json:"reality_text"`
	ImpactScore float64  `json:"impact_score"`
	Priority    int      `json:"priority"`
}
