package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{"identical", "track your order status easily", "track your order status easily", 1.0},
		{"no overlap", "fast checkout experience", "reliable customer support", 0.0},
		{"both empty", "", "", 0.0},
		{"one empty", "track your order", "", 0.0},
		{"only short tokens", "a an the of to", "is it at on", 0.0},
		{"case insensitive", "TRACK YOUR ORDER", "track your order", 1.0},
		{"punctuation split", "track, your/order!status", "track your order status", 1.0},
		// a: {lets,track,your,order,status,easily}=6, b: {track,your,order,status,easily}=5,
		// common=5, denominator max(6,5)=6.
		{"containment", "lets you track your order status easily", "track your order status easily", 5.0 / 6.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Similarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestSimilarityBounds(t *testing.T) {
	inputs := []string{
		"lets you track your order status easily",
		"delivery always arrives late",
		"saves money every single month",
	}
	for _, a := range inputs {
		for _, b := range inputs {
			s := Similarity(a, b)
			assert.GreaterOrEqual(t, s, 0.0)
			assert.LessOrEqual(t, s, 1.0)
		}
		// Self-similarity is exactly 1 for any string with a qualifying token.
		assert.InDelta(t, 1.0, Similarity(a, a), 1e-9)
	}
}

// The max() denominator makes the measure containment-style: symmetry is not
// required, only the bound.
func TestSimilarityAsymmetryAllowed(t *testing.T) {
	a := "track your order status easily today anywhere"
	b := "track order"

	ab := Similarity(a, b)
	ba := Similarity(b, a)
	assert.InDelta(t, ab, ba, 1e-9) // max() keeps these equal...

	// ...but duplicates collapse into the set, so repeated words do not
	// inflate the score.
	assert.InDelta(t, Similarity("track track track order", "track order"), 1.0, 1e-9)
}

func TestDefaultSimilarityThreshold(t *testing.T) {
	cfg := DefaultConfig()
	assert.InDelta(t, 0.5, cfg.SimilarityThreshold, 1e-9)

	// Matching five of six content words clears the threshold.
	assert.Greater(t, Similarity("lets you track your order status easily", "track your order status easily"), cfg.SimilarityThreshold)
	// Matching one of four does not.
	assert.LessOrEqual(t, Similarity("track your order status", "track something entirely different"), cfg.SimilarityThreshold)
}
