// Package pipeline orchestrates a full promise-vs-reality audit: collect
// company-controlled pages, extract promises, analyze reviews, score, and
// identify gaps.
package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/cvpa-audit/internal/config"
	"github.com/sells-group/cvpa-audit/internal/ingest"
	"github.com/sells-group/cvpa-audit/internal/model"
	"github.com/sells-group/cvpa-audit/internal/nlp"
	"github.com/sells-group/cvpa-audit/internal/scoring"
	"github.com/sells-group/cvpa-audit/internal/store"
)

// ErrAuditInProgress is returned when a company already has a running audit.
var ErrAuditInProgress = eris.New("pipeline: audit already in progress for this company")

// analyzeWorkers bounds concurrent review analysis.
const analyzeWorkers = 8

// Extractor mines promises from one raw page of company-controlled text.
type Extractor interface {
	ExtractPromises(ctx context.Context, text, sourceType, sourceURL, companyID string) ([]model.Promise, error)
}

// RuleExtractor is the default Extractor, backed by the lexicon patterns.
type RuleExtractor struct{}

func (RuleExtractor) ExtractPromises(_ context.Context, text, sourceType, sourceURL, companyID string) ([]model.Promise, error) {
	return nlp.ExtractPromises(text, sourceType, sourceURL, companyID), nil
}

// Result is the outcome of one completed audit run.
type Result struct {
	Audit *model.Audit
	Score *model.AuditScore
	Gaps  []model.Gap
}

// Pipeline runs audits. Safe for concurrent use; at most one audit runs per
// company at a time, concurrent Run calls for the same company fail fast
// with ErrAuditInProgress.
type Pipeline struct {
	cfg    *config.Config
	store  store.Store
	engine *scoring.Engine
	snap   *ingest.Snapshotter

	// extractor mines promises; when it fails the rule-based extractor is
	// the fallback so a Claude outage degrades rather than aborts the audit.
	extractor Extractor

	mu      sync.Mutex
	running map[string]bool
}

// New creates a Pipeline. snap may be nil to skip live website collection;
// extractor may be nil to use the rule-based extractor.
func New(cfg *config.Config, st store.Store, engine *scoring.Engine, snap *ingest.Snapshotter, extractor Extractor) *Pipeline {
	if extractor == nil {
		extractor = RuleExtractor{}
	}
	return &Pipeline{
		cfg:       cfg,
		store:     st,
		engine:    engine,
		snap:      snap,
		extractor: extractor,
		running:   make(map[string]bool),
	}
}

// Run executes a full audit for the company and returns its result.
func (p *Pipeline) Run(ctx context.Context, companyID string) (*Result, error) {
	if !p.acquire(companyID) {
		return nil, ErrAuditInProgress
	}
	defer p.release(companyID)

	company, err := p.store.GetCompany(ctx, companyID)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: load company")
	}

	now := time.Now().UTC()
	audit, err := p.store.CreateAudit(ctx, &model.Audit{
		CompanyID:       companyID,
		Status:          model.AuditPending,
		StartDate:       now,
		TimePeriodStart: now.AddDate(-1, 0, 0),
		TimePeriodEnd:   now,
	})
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: create audit")
	}

	log := zap.L().With(
		zap.String("company_id", companyID),
		zap.String("audit_id", audit.ID),
	)
	log.Info("pipeline: audit started", zap.String("company", company.Name))

	fail := func(stage string, cause error) (*Result, error) {
		if err := p.store.FinishAudit(ctx, audit.ID, model.AuditFailed); err != nil {
			log.Warn("pipeline: failed to mark audit failed", zap.Error(err))
		}
		log.Error("pipeline: audit failed", zap.String("stage", stage), zap.Error(cause))
		return nil, eris.Wrapf(cause, "pipeline: %s", stage)
	}

	if err := p.store.UpdateAuditStatus(ctx, audit.ID, model.AuditCollecting); err != nil {
		return fail("set collecting", err)
	}
	if err := p.collect(ctx, company); err != nil {
		return fail("collect", err)
	}

	if err := p.store.UpdateAuditStatus(ctx, audit.ID, model.AuditAnalyzing); err != nil {
		return fail("set analyzing", err)
	}
	if err := p.analyze(ctx, companyID); err != nil {
		return fail("analyze", err)
	}

	score, err := p.engine.CalculateScores(ctx, companyID, audit.ID)
	if err != nil {
		return fail("score", err)
	}
	gaps := p.engine.IdentifyGaps(ctx, companyID, audit.ID)

	if err := p.store.FinishAudit(ctx, audit.ID, model.AuditCompleted); err != nil {
		return fail("finish", err)
	}

	finished, err := p.store.GetAudit(ctx, audit.ID)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: reload audit")
	}

	log.Info("pipeline: audit completed",
		zap.Float64("overall_score", score.OverallScore),
		zap.Int("gaps", len(gaps)),
		zap.Int("sample_size", score.SampleSize),
	)
	return &Result{Audit: finished, Score: score, Gaps: gaps}, nil
}

// RegenerateGaps recomputes the gap list for an existing audit without
// re-collecting or re-scoring.
func (p *Pipeline) RegenerateGaps(ctx context.Context, auditID string) ([]model.Gap, error) {
	audit, err := p.store.GetAudit(ctx, auditID)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: load audit")
	}
	return p.engine.IdentifyGaps(ctx, audit.CompanyID, audit.ID), nil
}

func (p *Pipeline) acquire(companyID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running[companyID] {
		return false
	}
	p.running[companyID] = true
	return true
}

func (p *Pipeline) release(companyID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.running, companyID)
}

// collect snapshots the company website when a snapshotter is configured,
// then mines promises from every pending raw page. A failed live snapshot is
// logged and skipped; pages already collected still get processed.
func (p *Pipeline) collect(ctx context.Context, company *model.Company) error {
	if p.snap != nil && company.WebsiteURL != "" {
		page, err := p.snap.Snapshot(ctx, company.ID, company.WebsiteURL)
		if err != nil {
			zap.L().Warn("pipeline: website snapshot failed, continuing with stored pages",
				zap.String("company_id", company.ID),
				zap.String("url", company.WebsiteURL),
				zap.Error(err),
			)
		} else if _, err := p.store.InsertRawPage(ctx, &page); err != nil {
			return eris.Wrap(err, "insert raw page")
		}
	}

	pages, err := p.store.ListPendingRawPages(ctx, company.ID)
	if err != nil {
		return eris.Wrap(err, "list pending pages")
	}

	for _, page := range pages {
		promises, err := p.extractor.ExtractPromises(ctx, page.Content, page.SourceType, page.SourceURL, company.ID)
		if err != nil {
			zap.L().Warn("pipeline: extractor failed, falling back to rule-based extraction",
				zap.String("page_id", page.ID),
				zap.Error(err),
			)
			promises = nlp.ExtractPromises(page.Content, page.SourceType, page.SourceURL, company.ID)
		}

		inserted := 0
		for i := range promises {
			if _, err := p.store.InsertPromise(ctx, &promises[i]); err != nil {
				return eris.Wrapf(err, "insert promise from page %s", page.ID)
			}
			inserted++
		}

		if err := p.store.SetRawPageStatus(ctx, page.ID, model.RawPageProcessed); err != nil {
			return eris.Wrapf(err, "mark page %s processed", page.ID)
		}
		zap.L().Debug("pipeline: page processed",
			zap.String("page_id", page.ID),
			zap.Int("promises", inserted),
		)
	}
	return nil
}

// analyze rebuilds feedback annotations from the company's reviews.
// Annotations are derived data; each audit recomputes them from scratch so
// lexicon changes take effect.
func (p *Pipeline) analyze(ctx context.Context, companyID string) error {
	reviews, err := p.store.ListReviews(ctx, companyID, store.ReviewFilter{})
	if err != nil {
		return eris.Wrap(err, "list reviews")
	}
	if len(reviews) == 0 {
		return eris.New("company has no reviews to analyze")
	}

	if err := p.store.DeleteFeedbackForCompany(ctx, companyID); err != nil {
		return eris.Wrap(err, "clear previous feedback")
	}

	annotations := make([]model.FeedbackAnnotation, len(reviews))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(analyzeWorkers)
	for i := range reviews {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			annotations[i] = nlp.AnalyzeReview(reviews[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return eris.Wrap(err, "analyze reviews")
	}

	saved, err := p.store.SaveFeedback(ctx, annotations)
	if err != nil {
		return eris.Wrap(err, "save feedback")
	}
	zap.L().Info("pipeline: reviews analyzed",
		zap.String("company_id", companyID),
		zap.Int("reviews", len(reviews)),
		zap.Int("annotations_saved", saved),
	)
	return nil
}
