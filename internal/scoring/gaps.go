package scoring

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/sells-group/cvpa-audit/internal/model"
)

// IdentifyGaps derives the ranked gap list for an audit and replaces the
// stored gap set. Two passes, concatenated: coarse gaps from low dimension
// scores, then fine-grained gaps per individual promise with poor
// fulfillment.
//
// Gap generation is best-effort enrichment, not a core metric: this method
// never fails. Any error or panic inside the computation is logged with
// context and converted to an empty list so audit-pipeline callers can
// proceed without crashing.
func (e *Engine) IdentifyGaps(ctx context.Context, companyID, auditID string) (gaps []model.Gap) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("scoring: gap identification panicked",
				zap.String("company_id", companyID),
				zap.String("audit_id", auditID),
				zap.Any("panic", r),
			)
			gaps = []model.Gap{}
		}
	}()

	gaps, err := e.identifyGaps(ctx, companyID, auditID)
	if err != nil {
		zap.L().Error("scoring: gap identification failed",
			zap.String("company_id", companyID),
			zap.String("audit_id", auditID),
			zap.Error(err),
		)
		return []model.Gap{}
	}
	return gaps
}

func (e *Engine) identifyGaps(ctx context.Context, companyID, auditID string) ([]model.Gap, error) {
	promises, err := e.promises.ListPromises(ctx, companyID)
	if err != nil {
		return nil, err
	}
	feedback, err := e.feedback.ListFeedback(ctx, companyID)
	if err != nil {
		return nil, err
	}
	score, err := e.scores.GetAuditScore(ctx, auditID)
	if err != nil {
		return nil, err
	}

	var gaps []model.Gap

	// Pass A: coarse gaps from low dimension scores. Fires even when no
	// individual promises were extracted.
	if score != nil {
		gaps = append(gaps, e.scoreGaps(companyID, auditID, score)...)
	}

	// Pass B: one gap per poorly fulfilled promise.
	for _, promise := range promises {
		if !promise.Category.Valid() {
			continue
		}
		stats := ComputeStats(promise, feedback, promise.Category, e.cfg)
		if stats.FulfillmentRate >= e.cfg.GapFulfillmentThreshold && stats.AverageSentiment >= e.cfg.GapSentimentThreshold {
			continue
		}

		gaps = append(gaps, model.Gap{
			CompanyID:   companyID,
			AuditID:     auditID,
			GapType:     model.GapTypeFor(promise.Category),
			Description: promiseGapDescription(promise),
			Severity:    e.frequencySeverity(stats.MentionCount, len(feedback)),
			PromiseText: promise.ExtractedText,
			RealityText: fmt.Sprintf("%.1f%% of reviews mention this. Average sentiment: %.2f/1.0. Fulfillment rate: %.1f%%",
				stats.MentionPercentage, stats.AverageSentiment, stats.FulfillmentRate*100),
			ImpactScore: (1 - stats.FulfillmentRate) * 100,
			Priority:    len(gaps) + 1,
		})
	}

	// Recomputation is a full replace: stale gaps must never accumulate
	// across re-runs.
	if err := e.gaps.DeleteGapsForAudit(ctx, auditID); err != nil {
		return nil, err
	}

	// A single failed insert loses one gap, not the whole batch.
	inserted := make([]model.Gap, 0, len(gaps))
	for i := range gaps {
		saved, err := e.gaps.InsertGap(ctx, &gaps[i])
		if err != nil {
			zap.L().Warn("scoring: gap insert failed, skipping",
				zap.String("audit_id", auditID),
				zap.String("gap_type", string(gaps[i].GapType)),
				zap.Error(err),
			)
			continue
		}
		inserted = append(inserted, *saved)
	}

	zap.L().Info("scoring: identified gaps",
		zap.String("company_id", companyID),
		zap.String("audit_id", auditID),
		zap.Int("gaps_generated", len(gaps)),
		zap.Int("gaps_saved", len(inserted)),
	)

	return inserted, nil
}

// scoreGaps emits one coarse gap per dimension scoring below the threshold,
// with fixed priorities 1/2/3 for jobs/pains/gains.
func (e *Engine) scoreGaps(companyID, auditID string, score *model.AuditScore) []model.Gap {
	var gaps []model.Gap

	if score.JobsScore < e.cfg.GapScoreThreshold {
		rounded := int(math.Round(score.JobsScore))
		gaps = append(gaps, model.Gap{
			CompanyID:   companyID,
			AuditID:     auditID,
			GapType:     model.GapJobs,
			Description: fmt.Sprintf("Jobs Fulfillment Score is %d/100 - Customers are not experiencing promised jobs to be done", rounded),
			Severity:    e.scoreSeverity(score.JobsScore),
			PromiseText: "Company promises to help customers accomplish specific jobs",
			RealityText: fmt.Sprintf("Only %d%% job fulfillment rate in customer feedback", rounded),
			ImpactScore: 100 - score.JobsScore,
			Priority:    1,
		})
	}

	if score.PainsScore < e.cfg.GapScoreThreshold {
		rounded := int(math.Round(score.PainsScore))
		gaps = append(gaps, model.Gap{
			CompanyID:   companyID,
			AuditID:     auditID,
			GapType:     model.GapPains,
			Description: fmt.Sprintf("Pain Relief Score is %d/100 - Customers are still experiencing promised pain relief", rounded),
			Severity:    e.scoreSeverity(score.PainsScore),
			PromiseText: "Company promises to eliminate customer pains",
			RealityText: fmt.Sprintf("Only %d%% pain relief effectiveness in customer feedback", rounded),
			ImpactScore: 100 - score.PainsScore,
			Priority:    2,
		})
	}

	if score.GainsScore < e.cfg.GapScoreThreshold {
		rounded := int(math.Round(score.GainsScore))
		gaps = append(gaps, model.Gap{
			CompanyID:   companyID,
			AuditID:     auditID,
			GapType:     model.GapGains,
			Description: fmt.Sprintf("Gain Achievement Score is %d/100 - Customers are not receiving promised gains", rounded),
			Severity:    e.scoreSeverity(score.GainsScore),
			PromiseText: "Company promises specific customer gains",
			RealityText: fmt.Sprintf("Only %d%% gain achievement rate in customer feedback", rounded),
			ImpactScore: 100 - score.GainsScore,
			Priority:    3,
		})
	}

	return gaps
}

// scoreSeverity grades a coarse gap by how far the dimension score fell.
// The bands are strict less-than: a score of exactly 50 is medium.
func (e *Engine) scoreSeverity(score float64) model.Severity {
	switch {
	case score < e.cfg.SeverityCriticalBelow:
		return model.SeverityCritical
	case score < e.cfg.SeverityHighBelow:
		return model.SeverityHigh
	default:
		return model.SeverityMedium
	}
}

// frequencySeverity grades a per-promise gap by how large a share of the
// feedback mentions it.
func (e *Engine) frequencySeverity(mentionCount, totalFeedback int) model.Severity {
	if totalFeedback == 0 {
		return model.SeverityLow
	}
	pct := float64(mentionCount) / float64(totalFeedback) * 100
	switch {
	case pct >= e.cfg.FreqCriticalPct:
		return model.SeverityCritical
	case pct >= e.cfg.FreqHighPct:
		return model.SeverityHigh
	case pct >= e.cfg.FreqMediumPct:
		return model.SeverityMedium
	default:
		return model.SeverityLow
	}
}

func promiseGapDescription(p model.Promise) string {
	switch p.Category {
	case model.CategoryPain:
		return "Pain relief promised but pain still experienced: " + p.ExtractedText
	case model.CategoryGain:
		return "Promised gain not achieved: " + p.ExtractedText
	default:
		return "Promised job not being fulfilled: " + p.ExtractedText
	}
}
