package scoring

import (
	"github.com/sells-group/cvpa-audit/internal/config"
	"github.com/sells-group/cvpa-audit/internal/model"
)

// PromiseStats aggregates how one promise shows up across a feedback set.
// It is the single source of truth reused by both the dimension scorers and
// the gap identifier.
type PromiseStats struct {
	// MentionCount is the number of feedback items with at least one
	// mention matching the promise text.
	MentionCount int
	// MentionPercentage is MentionCount over the total feedback count,
	// as a percentage rounded to 1 decimal.
	MentionPercentage float64
	// AverageSentiment is the mean sentiment of matching feedback items,
	// rounded to 2 decimals. 0.5 when nothing matches.
	AverageSentiment float64
	// FulfillmentRate is the category-specific 0-1 fulfillment measure,
	// rounded to 2 decimals.
	FulfillmentRate float64
	// Matching holds the feedback items that mention the promise.
	Matching []model.FeedbackAnnotation
}

// ComputeStats aggregates mention statistics for a promise against a
// feedback set. A feedback item matches when any of its mentions in the
// promise's category clears the similarity threshold.
//
// The fulfillment rate depends on the category:
//   - job:  fraction of feedback mentioning the job (job is being done)
//   - pain: inverse mention fraction (fewer mentions means more relief)
//   - gain: fraction of matching feedback with positive sentiment
func ComputeStats(promise model.Promise, feedback []model.FeedbackAnnotation, category model.Category, cfg config.ScoringConfig) PromiseStats {
	var matching []model.FeedbackAnnotation
	for _, f := range feedback {
		for _, item := range f.Mentions(category) {
			if Similarity(promise.ExtractedText, item.Text) > cfg.SimilarityThreshold {
				matching = append(matching, f)
				break
			}
		}
	}

	mentionCount := len(matching)
	total := len(feedback)

	var mentionPct float64
	if total > 0 {
		mentionPct = float64(mentionCount) / float64(total) * 100
	}

	avgSentiment := 0.5
	if mentionCount > 0 {
		sum := 0.0
		for _, f := range matching {
			sum += f.Sentiment
		}
		avgSentiment = sum / float64(mentionCount)
	}

	var fulfillment float64
	switch category {
	case model.CategoryJob:
		fulfillment = mentionPct / 100
	case model.CategoryPain:
		fulfillment = 1 - mentionPct/100
	case model.CategoryGain:
		if mentionCount > 0 {
			positive := 0
			for _, f := range matching {
				if f.Sentiment > cfg.PositiveSentiment {
					positive++
				}
			}
			fulfillment = float64(positive) / float64(mentionCount)
		}
	}

	return PromiseStats{
		MentionCount:      mentionCount,
		MentionPercentage: round1(mentionPct),
		AverageSentiment:  round2(avgSentiment),
		FulfillmentRate:   round2(fulfillment),
		Matching:          matching,
	}
}
