package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentiment(t *testing.T) {
	tests := []struct {
		name string
		text string
		want float64
	}{
		{
			name: "no lexicon words is neutral",
			text: "the app opened and showed my account",
			want: 0.5,
		},
		{
			name: "empty text is neutral",
			text: "",
			want: 0.5,
		},
		{
			name: "positive words",
			text: "I love this great app",
			want: 0.8, // avg valence 3 of 5
		},
		{
			name: "negative words",
			text: "terrible awful experience, I hate it",
			want: 0.2, // avg valence -3 of 5
		},
		{
			name: "mixed leans slightly negative",
			text: "great app but slow and buggy",
			want: (((3.0-2.0-2.0)/3.0)/5 + 1) / 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Sentiment(tt.text), 1e-9)
		})
	}
}

func TestSentimentBounds(t *testing.T) {
	texts := []string{
		"scam fraud disaster",
		"amazing awesome fantastic wonderful",
		"love love love hate hate hate",
	}
	for _, text := range texts {
		score := Sentiment(text)
		assert.GreaterOrEqual(t, score, 0.0, text)
		assert.LessOrEqual(t, score, 1.0, text)
	}
}

func TestSentimentCaseInsensitive(t *testing.T) {
	assert.InDelta(t, Sentiment("LOVE IT"), Sentiment("love it"), 1e-9)
}
