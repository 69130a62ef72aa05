package scoring

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/cvpa-audit/internal/model"
)

func TestCalculateScoresNoFeedback(t *testing.T) {
	store := &fakeStore{
		promises: []model.Promise{trackPromise},
	}
	engine := newTestEngine(store)

	_, err := engine.CalculateScores(context.Background(), "co-1", "audit-1")
	require.Error(t, err)

	var noFeedback *NoFeedbackError
	require.True(t, errors.As(err, &noFeedback))
	assert.Equal(t, "co-1", noFeedback.CompanyID)

	// Nothing was persisted.
	assert.Empty(t, store.scores)
}

func TestCalculateScoresOverallInvariant(t *testing.T) {
	store := &fakeStore{
		promises: []model.Promise{trackPromise},
		feedback: jobFeedback("co-1", 60, 40, 0.7),
	}
	engine := newTestEngine(store)

	score, err := engine.CalculateScores(context.Background(), "co-1", "audit-1")
	require.NoError(t, err)

	assert.InDelta(t, 60.0, score.JobsScore, 1e-9)
	// No pain or gain promises: both dimensions sit at neutral.
	assert.InDelta(t, 50.0, score.PainsScore, 1e-9)
	assert.InDelta(t, 50.0, score.GainsScore, 1e-9)
	assert.InDelta(t, score.JobsScore*0.4+score.PainsScore*0.3+score.GainsScore*0.3, score.OverallScore, 1e-9)
	assert.Equal(t, 100, score.SampleSize)

	// Persisted with an assigned ID.
	require.Len(t, store.scores, 1)
	assert.NotEmpty(t, store.scores[0].ID)
	assert.Equal(t, "audit-1", store.scores[0].AuditID)
}

func TestCalculateScoresZeroPromises(t *testing.T) {
	store := &fakeStore{
		feedback: jobFeedback("co-1", 0, 10, 0.3),
	}
	engine := newTestEngine(store)

	score, err := engine.CalculateScores(context.Background(), "co-1", "audit-1")
	require.NoError(t, err)

	assert.InDelta(t, 50.0, score.JobsScore, 1e-9)
	assert.InDelta(t, 50.0, score.PainsScore, 1e-9)
	assert.InDelta(t, 50.0, score.GainsScore, 1e-9)
	assert.InDelta(t, 50.0, score.OverallScore, 1e-9)
}

func TestCalculateScoresSignificanceBands(t *testing.T) {
	tests := []struct {
		sampleSize int
		want       float64
	}{
		{10, 0.85},
		{199, 0.85},
		{200, 0.90},
		{384, 0.90},
		{385, 0.95},
		{1000, 0.95},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("n=%d", tt.sampleSize), func(t *testing.T) {
			var feedback []model.FeedbackAnnotation
			for i := 0; i < tt.sampleSize; i++ {
				feedback = append(feedback, model.FeedbackAnnotation{
					CompanyID: "co-1",
					ReviewID:  fmt.Sprintf("rv-%d", i),
					Sentiment: 0.5,
				})
			}
			store := &fakeStore{feedback: feedback}
			engine := newTestEngine(store)

			score, err := engine.CalculateScores(context.Background(), "co-1", "audit-1")
			require.NoError(t, err)
			assert.InDelta(t, tt.want, score.StatisticalSignificance, 1e-9)
			assert.Equal(t, tt.sampleSize, score.SampleSize)
		})
	}
}

func TestCalculateScoresSaveFailurePropagates(t *testing.T) {
	store := &fakeStore{
		feedback:     jobFeedback("co-1", 5, 5, 0.5),
		saveScoreErr: errBoom,
	}
	engine := newTestEngine(store)

	_, err := engine.CalculateScores(context.Background(), "co-1", "audit-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save audit score")
}

func TestCalculateScoresListFailurePropagates(t *testing.T) {
	store := &fakeStore{listFeedbackErr: errBoom}
	engine := newTestEngine(store)

	_, err := engine.CalculateScores(context.Background(), "co-1", "audit-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list feedback")
}
