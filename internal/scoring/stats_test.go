package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/cvpa-audit/internal/model"
)

var trackPromise = model.Promise{
	ID:            "p-track",
	CompanyID:     "co-1",
	ExtractedText: "lets you track your order status easily",
	Category:      model.CategoryJob,
}

func TestComputeStatsJobScenario(t *testing.T) {
	// 100 reviews, 60 mention the promised job, 40 mention something else.
	feedback := jobFeedback("co-1", 60, 40, 0.7)

	stats := ComputeStats(trackPromise, feedback, model.CategoryJob, DefaultConfig())

	assert.Equal(t, 60, stats.MentionCount)
	assert.InDelta(t, 60.0, stats.MentionPercentage, 1e-9)
	assert.InDelta(t, 0.6, stats.FulfillmentRate, 1e-9)
	assert.InDelta(t, 0.7, stats.AverageSentiment, 1e-9)
	assert.Len(t, stats.Matching, 60)
}

func TestComputeStatsNoMatches(t *testing.T) {
	feedback := jobFeedback("co-1", 0, 10, 0.2)

	stats := ComputeStats(trackPromise, feedback, model.CategoryJob, DefaultConfig())

	assert.Equal(t, 0, stats.MentionCount)
	assert.InDelta(t, 0.0, stats.MentionPercentage, 1e-9)
	// Sentiment defaults to neutral when nothing matches.
	assert.InDelta(t, 0.5, stats.AverageSentiment, 1e-9)
	assert.InDelta(t, 0.0, stats.FulfillmentRate, 1e-9)
}

func TestComputeStatsEmptyFeedback(t *testing.T) {
	stats := ComputeStats(trackPromise, nil, model.CategoryJob, DefaultConfig())

	assert.Equal(t, 0, stats.MentionCount)
	assert.InDelta(t, 0.0, stats.MentionPercentage, 1e-9)
	assert.InDelta(t, 0.5, stats.AverageSentiment, 1e-9)
}

func TestComputeStatsPainInverts(t *testing.T) {
	// Pain still mentioned in 2 of 10 reviews: fulfillment = 1 - 0.2 = 0.8.
	pain := model.Promise{
		ID:            "p-pain",
		CompanyID:     "co-1",
		ExtractedText: "no more waiting hours for customer support replies",
		Category:      model.CategoryPain,
	}
	var feedback []model.FeedbackAnnotation
	for i := 0; i < 2; i++ {
		feedback = append(feedback, model.FeedbackAnnotation{
			CompanyID: "co-1",
			PainsMentioned: []model.MentionedItem{
				{Text: "waiting hours for customer support replies", Severity: "high", Confidence: 0.7},
			},
			Sentiment: 0.2,
		})
	}
	for i := 0; i < 8; i++ {
		feedback = append(feedback, model.FeedbackAnnotation{
			CompanyID: "co-1",
			PainsMentioned: []model.MentionedItem{
				{Text: "packaging arrived slightly dented", Severity: "low", Confidence: 0.7},
			},
			Sentiment: 0.6,
		})
	}

	stats := ComputeStats(pain, feedback, model.CategoryPain, DefaultConfig())

	assert.Equal(t, 2, stats.MentionCount)
	assert.InDelta(t, 20.0, stats.MentionPercentage, 1e-9)
	assert.InDelta(t, 0.8, stats.FulfillmentRate, 1e-9)
	assert.InDelta(t, 0.2, stats.AverageSentiment, 1e-9)
}

func TestComputeStatsGainPositiveFraction(t *testing.T) {
	gain := model.Promise{
		ID:            "p-gain",
		CompanyID:     "co-1",
		ExtractedText: "save money with every monthly subscription order",
		Category:      model.CategoryGain,
		GainType:      model.GainExpected,
	}

	mention := []model.MentionedItem{
		{Text: "save money with every monthly order", Type: "expected", Confidence: 0.7},
	}
	feedback := []model.FeedbackAnnotation{
		{CompanyID: "co-1", GainsMentioned: mention, Sentiment: 0.9},
		{CompanyID: "co-1", GainsMentioned: mention, Sentiment: 0.8},
		{CompanyID: "co-1", GainsMentioned: mention, Sentiment: 0.2},
		{CompanyID: "co-1", GainsMentioned: []model.MentionedItem{{Text: "arrived in nice packaging material", Confidence: 0.7}}, Sentiment: 0.9},
	}

	stats := ComputeStats(gain, feedback, model.CategoryGain, DefaultConfig())

	// 3 of 4 match; 2 of the 3 matches are positive.
	assert.Equal(t, 3, stats.MentionCount)
	assert.InDelta(t, 75.0, stats.MentionPercentage, 1e-9)
	assert.InDelta(t, 0.67, stats.FulfillmentRate, 1e-9) // 2/3 rounded to 2dp
	assert.InDelta(t, 0.63, stats.AverageSentiment, 1e-9)
}

func TestComputeStatsRounding(t *testing.T) {
	// 1 of 3 reviews matching: 33.333...% rounds to 33.3.
	feedback := jobFeedback("co-1", 1, 2, 0.123)

	stats := ComputeStats(trackPromise, feedback, model.CategoryJob, DefaultConfig())

	assert.InDelta(t, 33.3, stats.MentionPercentage, 1e-9)
	assert.InDelta(t, 0.12, stats.AverageSentiment, 1e-9)
	assert.InDelta(t, 0.33, stats.FulfillmentRate, 1e-9)
}
