// Package scoring implements the promise-vs-reality scoring and gap-analysis
// engine: per-dimension fulfillment scores, a weighted overall audit score,
// and a ranked list of gaps between what a company promises and what its
// customers report.
package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/cvpa-audit/internal/config"
)

// DefaultConfig returns the contract thresholds of the scoring engine.
// Dimension weights sum to 1.
func DefaultConfig() config.ScoringConfig {
	return config.ScoringConfig{
		SimilarityThreshold: 0.5,

		JobsWeight:  0.4,
		PainsWeight: 0.3,
		GainsWeight: 0.3,

		NeutralScore:      50,
		PainReliefClamp:   0.5,
		PositiveSentiment: 0.5,

		GainWeightRequired: 1.0,
		GainWeightExpected: 0.8,
		GainWeightDesired:  0.6,
		GainWeightOther:    0.4,

		GapScoreThreshold:     60,
		SeverityCriticalBelow: 40,
		SeverityHighBelow:     50,

		GapFulfillmentThreshold: 0.3,
		GapSentimentThreshold:   0.4,

		FreqCriticalPct: 30,
		FreqHighPct:     15,
		FreqMediumPct:   5,

		SampleSize95:     385,
		SampleSize90:     200,
		Significance95:   0.95,
		Significance90:   0.90,
		SignificanceBase: 0.85,
	}
}

// ValidateConfig checks that a ScoringConfig is internally consistent.
func ValidateConfig(c config.ScoringConfig) error {
	var errs []string

	if c.SimilarityThreshold <= 0 || c.SimilarityThreshold >= 1 {
		errs = append(errs, "similarity_threshold must be in (0,1)")
	}

	for name, w := range map[string]float64{
		"jobs_weight":  c.JobsWeight,
		"pains_weight": c.PainsWeight,
		"gains_weight": c.GainsWeight,
	} {
		if w < 0 {
			errs = append(errs, fmt.Sprintf("%s must be >= 0", name))
		}
	}
	if sum := c.JobsWeight + c.PainsWeight + c.GainsWeight; math.Abs(sum-1) > 0.01 {
		errs = append(errs, fmt.Sprintf("dimension weights should sum to 1, got %.2f", sum))
	}

	if c.NeutralScore < 0 || c.NeutralScore > 100 {
		errs = append(errs, "neutral_score must be between 0 and 100")
	}
	if c.GapScoreThreshold < 0 || c.GapScoreThreshold > 100 {
		errs = append(errs, "gap_score_threshold must be between 0 and 100")
	}
	if c.SeverityCriticalBelow > c.SeverityHighBelow {
		errs = append(errs, "severity_critical_below must be <= severity_high_below")
	}
	if c.GapFulfillmentThreshold < 0 || c.GapFulfillmentThreshold > 1 {
		errs = append(errs, "gap_fulfillment_threshold must be between 0 and 1")
	}
	if c.GapSentimentThreshold < 0 || c.GapSentimentThreshold > 1 {
		errs = append(errs, "gap_sentiment_threshold must be between 0 and 1")
	}
	if !(c.FreqCriticalPct >= c.FreqHighPct && c.FreqHighPct >= c.FreqMediumPct) {
		errs = append(errs, "frequency bands must be ordered critical >= high >= medium")
	}
	if c.SampleSize95 < c.SampleSize90 {
		errs = append(errs, "sample_size_95 must be >= sample_size_90")
	}

	if len(errs) > 0 {
		return eris.Errorf("scoring: config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// gainTypeWeight returns the contribution multiplier for a gain promise.
func gainTypeWeight(c config.ScoringConfig, gainType string) float64 {
	switch gainType {
	case "required":
		return c.GainWeightRequired
	case "expected":
		return c.GainWeightExpected
	case "desired":
		return c.GainWeightDesired
	default:
		return c.GainWeightOther
	}
}

// round1 rounds to 1 decimal place, round2 to 2.
func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
