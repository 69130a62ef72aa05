package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/cvpa-audit/internal/model"
)

func TestDimensionScoreNeutralWithoutPromises(t *testing.T) {
	cfg := DefaultConfig()
	feedback := jobFeedback("co-1", 5, 5, 0.9)

	// No promises at all, and no promises in the requested category: both
	// yield the neutral score regardless of the feedback set.
	for _, category := range model.Categories {
		assert.InDelta(t, 50.0, dimensionScore(nil, feedback, category, cfg), 1e-9)
	}

	painOnly := []model.Promise{{Category: model.CategoryPain, ExtractedText: "no more delays"}}
	assert.InDelta(t, 50.0, dimensionScore(painOnly, feedback, model.CategoryJob, cfg), 1e-9)
}

func TestDimensionScoreJobScenario(t *testing.T) {
	// Single promise, 60 of 100 mentions match: importance cancels in the
	// ratio, leaving fulfillment * 100 = 60.
	feedback := jobFeedback("co-1", 60, 40, 0.7)

	got := dimensionScore([]model.Promise{trackPromise}, feedback, model.CategoryJob, DefaultConfig())
	assert.InDelta(t, 60.0, got, 1e-9)
}

func TestDimensionScoreJobNoMentionsAnywhere(t *testing.T) {
	// Feedback exists but has no job mentions: every promise has importance
	// 0 and the weighted average collapses to 0.
	feedback := []model.FeedbackAnnotation{
		{CompanyID: "co-1", Sentiment: 0.9},
		{CompanyID: "co-1", Sentiment: 0.8},
	}

	got := dimensionScore([]model.Promise{trackPromise}, feedback, model.CategoryJob, DefaultConfig())
	assert.InDelta(t, 0.0, got, 1e-9)
}

func TestDimensionScorePainClamp(t *testing.T) {
	pain := model.Promise{
		CompanyID:     "co-1",
		ExtractedText: "no more waiting hours for customer support replies",
		Category:      model.CategoryPain,
	}

	stillMentioned := model.MentionedItem{Text: "waiting hours for customer support replies", Confidence: 0.7}
	otherPain := model.MentionedItem{Text: "packaging arrived slightly dented", Confidence: 0.7}

	// 2 of 10 pain mentions still match: reduction 0.8 > 0.5 clamps the
	// promise score to 100, not 80.
	var feedback []model.FeedbackAnnotation
	for i := 0; i < 2; i++ {
		feedback = append(feedback, model.FeedbackAnnotation{CompanyID: "co-1", PainsMentioned: []model.MentionedItem{stillMentioned}, Sentiment: 0.3})
	}
	for i := 0; i < 8; i++ {
		feedback = append(feedback, model.FeedbackAnnotation{CompanyID: "co-1", PainsMentioned: []model.MentionedItem{otherPain}, Sentiment: 0.6})
	}

	got := dimensionScore([]model.Promise{pain}, feedback, model.CategoryPain, DefaultConfig())
	assert.InDelta(t, 100.0, got, 1e-9)
}

func TestDimensionScorePainBelowClamp(t *testing.T) {
	pain := model.Promise{
		CompanyID:     "co-1",
		ExtractedText: "no more waiting hours for customer support replies",
		Category:      model.CategoryPain,
	}

	stillMentioned := model.MentionedItem{Text: "waiting hours for customer support replies", Confidence: 0.7}
	otherPain := model.MentionedItem{Text: "packaging arrived slightly dented", Confidence: 0.7}

	// 6 of 10 mentions still match: reduction 0.4 <= 0.5, so the promise
	// scores reduction*100 = 40.
	var feedback []model.FeedbackAnnotation
	for i := 0; i < 6; i++ {
		feedback = append(feedback, model.FeedbackAnnotation{CompanyID: "co-1", PainsMentioned: []model.MentionedItem{stillMentioned}, Sentiment: 0.3})
	}
	for i := 0; i < 4; i++ {
		feedback = append(feedback, model.FeedbackAnnotation{CompanyID: "co-1", PainsMentioned: []model.MentionedItem{otherPain}, Sentiment: 0.6})
	}

	got := dimensionScore([]model.Promise{pain}, feedback, model.CategoryPain, DefaultConfig())
	assert.InDelta(t, 40.0, got, 1e-9)
}

func TestDimensionScoreGainDoubleGated(t *testing.T) {
	gain := model.Promise{
		CompanyID:     "co-1",
		ExtractedText: "save money with every monthly subscription order",
		Category:      model.CategoryGain,
		GainType:      model.GainRequired,
	}

	mention := model.MentionedItem{Text: "save money with every monthly order", Confidence: 0.7}

	// All four mentions match the text, but only two come from
	// positive-sentiment feedback: achievement rate is 2/4.
	feedback := []model.FeedbackAnnotation{
		{CompanyID: "co-1", GainsMentioned: []model.MentionedItem{mention}, Sentiment: 0.9},
		{CompanyID: "co-1", GainsMentioned: []model.MentionedItem{mention}, Sentiment: 0.8},
		{CompanyID: "co-1", GainsMentioned: []model.MentionedItem{mention}, Sentiment: 0.3},
		{CompanyID: "co-1", GainsMentioned: []model.MentionedItem{mention}, Sentiment: 0.5}, // exactly neutral does not count
	}

	got := dimensionScore([]model.Promise{gain}, feedback, model.CategoryGain, DefaultConfig())
	assert.InDelta(t, 50.0, got, 1e-9)
}

func TestDimensionScoreGainTypeWeights(t *testing.T) {
	cfg := DefaultConfig()
	assert.InDelta(t, 1.0, gainTypeWeight(cfg, model.GainRequired), 1e-9)
	assert.InDelta(t, 0.8, gainTypeWeight(cfg, model.GainExpected), 1e-9)
	assert.InDelta(t, 0.6, gainTypeWeight(cfg, model.GainDesired), 1e-9)
	assert.InDelta(t, 0.4, gainTypeWeight(cfg, model.GainUnexpected), 1e-9)
	assert.InDelta(t, 0.4, gainTypeWeight(cfg, ""), 1e-9)
}

func TestDimensionScoreGainWeightedMix(t *testing.T) {
	// Two gain promises with equal mention patterns but different types:
	// the final score is the type-weighted average of their rates.
	required := model.Promise{
		CompanyID:     "co-1",
		ExtractedText: "unlock premium shipping discounts every order",
		Category:      model.CategoryGain,
		GainType:      model.GainRequired,
	}
	unexpected := model.Promise{
		CompanyID:     "co-1",
		ExtractedText: "receive surprise loyalty bonus points monthly",
		Category:      model.CategoryGain,
		GainType:      model.GainUnexpected,
	}

	feedback := []model.FeedbackAnnotation{
		// Positive match for the required gain only.
		{CompanyID: "co-1", GainsMentioned: []model.MentionedItem{
			{Text: "premium shipping discounts every order", Confidence: 0.7},
		}, Sentiment: 0.9},
		// Negative match for the unexpected gain only.
		{CompanyID: "co-1", GainsMentioned: []model.MentionedItem{
			{Text: "surprise loyalty bonus points monthly", Confidence: 0.7},
		}, Sentiment: 0.2},
	}

	// Each promise sees mentions=2 (both mention items are examined for
	// both promises), importance=1. Required: achieved=1, rate=0.5,
	// weight 1.0. Unexpected: achieved=0, rate=0, weight 0.4.
	// Score = (0.5*1*1.0*100 + 0) / (1*1.0 + 1*0.4) = 50 / 1.4.
	got := dimensionScore([]model.Promise{required, unexpected}, feedback, model.CategoryGain, DefaultConfig())
	assert.InDelta(t, 50.0/1.4, got, 1e-6)
}
