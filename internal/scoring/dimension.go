package scoring

import (
	"github.com/sells-group/cvpa-audit/internal/config"
	"github.com/sells-group/cvpa-audit/internal/model"
)

// dimensionScore computes the 0-100 score for one dimension. A dimension
// with no promises returns the neutral score: absence of promises is not
// evidence of good or bad delivery.
//
// Unlike ComputeStats, the dimension scorers weight by raw mention counts:
// every mention item examined bumps the denominator, so a promise echoed
// three times in one review weighs three times. A promise mentioned nowhere
// carries importance 0 and drops out of the weighted average unpenalized.
func dimensionScore(promises []model.Promise, feedback []model.FeedbackAnnotation, category model.Category, cfg config.ScoringConfig) float64 {
	var inCategory []model.Promise
	for _, p := range promises {
		if p.Category == category {
			inCategory = append(inCategory, p)
		}
	}
	if len(inCategory) == 0 {
		return cfg.NeutralScore
	}

	switch category {
	case model.CategoryPain:
		return scorePains(inCategory, feedback, cfg)
	case model.CategoryGain:
		return scoreGains(inCategory, feedback, cfg)
	default:
		return scoreJobs(inCategory, feedback, cfg)
	}
}

// scoreJobs measures how often promised jobs show up in feedback mentions.
func scoreJobs(promises []model.Promise, feedback []model.FeedbackAnnotation, cfg config.ScoringConfig) float64 {
	var totalScore, totalWeight float64

	for _, job := range promises {
		matched, mentions := 0, 0
		for _, f := range feedback {
			for _, m := range f.JobsMentioned {
				mentions++
				if Similarity(job.ExtractedText, m.Text) > cfg.SimilarityThreshold {
					matched++
				}
			}
		}

		var fulfillment float64
		if mentions > 0 {
			fulfillment = float64(matched) / float64(mentions)
		}
		importance := float64(mentions) / float64(len(feedback))

		totalScore += fulfillment * importance * 100
		totalWeight += importance
	}

	if totalWeight == 0 {
		return 0
	}
	return totalScore / totalWeight
}

// scorePains measures pain relief: the fewer feedback mentions of a promised
// pain, the better. A promise relieving more than the clamp threshold scores
// a flat 100 — a hard reward for "mostly relieved".
func scorePains(promises []model.Promise, feedback []model.FeedbackAnnotation, cfg config.ScoringConfig) float64 {
	var totalScore, totalWeight float64

	for _, promise := range promises {
		stillMentioned, totalMentions := 0, 0
		for _, f := range feedback {
			for _, m := range f.PainsMentioned {
				totalMentions++
				if Similarity(promise.ExtractedText, m.Text) > cfg.SimilarityThreshold {
					stillMentioned++
				}
			}
		}

		reduction := 1.0
		if totalMentions > 0 {
			reduction = 1 - float64(stillMentioned)/float64(totalMentions)
		}
		importance := float64(totalMentions) / float64(len(feedback))

		score := reduction * 100
		if reduction > cfg.PainReliefClamp {
			score = 100
		}

		totalScore += score * importance
		totalWeight += importance
	}

	if totalWeight == 0 {
		return 0
	}
	return totalScore / totalWeight
}

// scoreGains measures gain achievement, double-gated: a mention must match
// the promise text AND come from positive-sentiment feedback to count.
// Importance and contribution are both scaled by the gain-type weight so
// required gains dominate unexpected ones.
func scoreGains(promises []model.Promise, feedback []model.FeedbackAnnotation, cfg config.ScoringConfig) float64 {
	var totalScore, totalWeight float64

	for _, gain := range promises {
		achieved, mentions := 0, 0
		for _, f := range feedback {
			for _, m := range f.GainsMentioned {
				mentions++
				if Similarity(gain.ExtractedText, m.Text) > cfg.SimilarityThreshold {
					if f.Sentiment > cfg.PositiveSentiment {
						achieved++
					}
				}
			}
		}

		var rate float64
		if mentions > 0 {
			rate = float64(achieved) / float64(mentions)
		}
		importance := float64(mentions) / float64(len(feedback))
		typeWeight := gainTypeWeight(cfg, gain.GainType)

		totalScore += rate * importance * typeWeight * 100
		totalWeight += importance * typeWeight
	}

	if totalWeight == 0 {
		return 0
	}
	return totalScore / totalWeight
}
