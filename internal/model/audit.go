package model

import "time"

// AuditStatus tracks an audit through its lifecycle.
type AuditStatus string

const (
	AuditPending    AuditStatus = "pending"
	AuditCollecting AuditStatus = "collecting"
	AuditAnalyzing  AuditStatus = "analyzing"
	AuditCompleted  AuditStatus = "completed"
	AuditFailed     AuditStatus = "failed"
)

// Audit is one promise-vs-reality audit run for a company.
type Audit struct {
	ID              string      `json:"id"`
	CompanyID       string      `json:"company_id"`
	Status          AuditStatus `json:"status"`
	StartDate       time.Time   `json:"start_date"`
	EndDate         *time.Time  `json:"end_date,omitempty"`
	TimePeriodStart time.Time   `json:"time_period_start"`
	TimePeriodEnd   time.Time   `json:"time_period_end"`
	CreatedAt       time.Time   `json:"created_at"`
}

// AuditScore is the scoring result for one audit run. Insert-only: re-running
// the scoring step adds a new row rather than updating in place.
//
// Invariant: OverallScore = JobsScore*0.4 + PainsScore*0.3 + GainsScore*0.3,
// all four in [0,100].
type AuditScore struct {
	ID                      string    `json:"id"`
	CompanyID               string    `json:"company_id"`
	AuditID                 string    `json:"audit_id"`
	AuditDate               time.Time `json:"audit_date"`
	OverallScore            float64   `json:"overall_score"`
	JobsScore               float64   `json:"jobs_score"`
	PainsScore              float64   `json:"pains_score"`
	GainsScore              float64   `json:"gains_score"`
	StatisticalSignificance float64   `json:"statistical_significance"`
	SampleSize              int       `json:"sample_size"`
}
