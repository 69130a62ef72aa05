package scoring

import "fmt"

// NoFeedbackError is returned by CalculateScores when a company has no
// feedback annotations at all. Scoring without ground truth is meaningless,
// so this is a hard stop: the caller should mark the audit failed.
type NoFeedbackError struct {
	CompanyID string
}

func (e *NoFeedbackError) Error() string {
	return fmt.Sprintf("scoring: no customer feedback available for company %s", e.CompanyID)
}
