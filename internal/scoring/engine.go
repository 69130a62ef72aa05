package scoring

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/cvpa-audit/internal/config"
	"github.com/sells-group/cvpa-audit/internal/model"
)

// PromiseSource provides the extracted value propositions for a company.
type PromiseSource interface {
	ListPromises(ctx context.Context, companyID string) ([]model.Promise, error)
}

// FeedbackSource provides the per-review feedback annotations for a company.
type FeedbackSource interface {
	ListFeedback(ctx context.Context, companyID string) ([]model.FeedbackAnnotation, error)
}

// ScoreStore persists and retrieves audit scores.
type ScoreStore interface {
	SaveAuditScore(ctx context.Context, score *model.AuditScore) (*model.AuditScore, error)
	// GetAuditScore returns the most recent score for an audit, or nil
	// when the audit has not been scored yet.
	GetAuditScore(ctx context.Context, auditID string) (*model.AuditScore, error)
}

// GapStore persists identified gaps.
type GapStore interface {
	DeleteGapsForAudit(ctx context.Context, auditID string) error
	InsertGap(ctx context.Context, gap *model.Gap) (*model.Gap, error)
}

// Engine is the promise-vs-reality scoring engine. It is a pure,
// synchronous-per-call computation: each operation reads its full input set
// up front, computes in memory, and writes its output as one logical unit.
// Concurrency control (at most one running audit per company) belongs to the
// calling orchestrator, not here.
type Engine struct {
	promises PromiseSource
	feedback FeedbackSource
	scores   ScoreStore
	gaps     GapStore
	cfg      config.ScoringConfig
}

// NewEngine creates an Engine with explicit store dependencies. Stores are
// injected rather than reached through globals so tests can run the full
// engine against fixture data.
func NewEngine(promises PromiseSource, feedback FeedbackSource, scores ScoreStore, gaps GapStore, cfg config.ScoringConfig) *Engine {
	return &Engine{
		promises: promises,
		feedback: feedback,
		scores:   scores,
		gaps:     gaps,
		cfg:      cfg,
	}
}

// CalculateScores scores all three dimensions for a company, persists the
// AuditScore and returns it. Fails with *NoFeedbackError when the company
// has no feedback annotations; persistence failures propagate, since a score
// that was never stored is useless to the audit pipeline.
func (e *Engine) CalculateScores(ctx context.Context, companyID, auditID string) (*model.AuditScore, error) {
	promises, err := e.promises.ListPromises(ctx, companyID)
	if err != nil {
		return nil, eris.Wrap(err, "scoring: list promises")
	}
	feedback, err := e.feedback.ListFeedback(ctx, companyID)
	if err != nil {
		return nil, eris.Wrap(err, "scoring: list feedback")
	}

	if len(feedback) == 0 {
		return nil, &NoFeedbackError{CompanyID: companyID}
	}

	jobsScore := dimensionScore(promises, feedback, model.CategoryJob, e.cfg)
	painsScore := dimensionScore(promises, feedback, model.CategoryPain, e.cfg)
	gainsScore := dimensionScore(promises, feedback, model.CategoryGain, e.cfg)

	overall := jobsScore*e.cfg.JobsWeight + painsScore*e.cfg.PainsWeight + gainsScore*e.cfg.GainsWeight

	score := &model.AuditScore{
		CompanyID:               companyID,
		AuditID:                 auditID,
		AuditDate:               time.Now().UTC(),
		OverallScore:            overall,
		JobsScore:               jobsScore,
		PainsScore:              painsScore,
		GainsScore:              gainsScore,
		StatisticalSignificance: e.significance(len(feedback)),
		SampleSize:              len(feedback),
	}

	saved, err := e.scores.SaveAuditScore(ctx, score)
	if err != nil {
		return nil, eris.Wrap(err, "scoring: save audit score")
	}

	zap.L().Info("scoring: calculated audit scores",
		zap.String("company_id", companyID),
		zap.String("audit_id", auditID),
		zap.Float64("overall", saved.OverallScore),
		zap.Float64("jobs", saved.JobsScore),
		zap.Float64("pains", saved.PainsScore),
		zap.Float64("gains", saved.GainsScore),
		zap.Int("sample_size", saved.SampleSize),
	)

	return saved, nil
}

// significance maps the feedback sample size to a coarse confidence label.
// A fixed lookup approximating population-proportion confidence, not a real
// hypothesis test.
func (e *Engine) significance(sampleSize int) float64 {
	switch {
	case sampleSize >= e.cfg.SampleSize95:
		return e.cfg.Significance95
	case sampleSize >= e.cfg.SampleSize90:
		return e.cfg.Significance90
	default:
		return e.cfg.SignificanceBase
	}
}
