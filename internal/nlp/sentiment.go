package nlp

// valence assigns each lexicon word a score in [-5, 5], AFINN style.
var valence = map[string]int{
	"amazing":     4,
	"awesome":     4,
	"best":        3,
	"brilliant":   4,
	"convenient":  2,
	"delighted":   3,
	"easy":        2,
	"enjoy":       2,
	"excellent":   3,
	"fantastic":   4,
	"fast":        1,
	"flawless":    3,
	"good":        3,
	"great":       3,
	"happy":       3,
	"helpful":     2,
	"impressed":   3,
	"intuitive":   2,
	"love":        3,
	"loved":       3,
	"perfect":     3,
	"pleased":     3,
	"recommend":   2,
	"reliable":    2,
	"satisfied":   2,
	"seamless":    2,
	"simple":      1,
	"smooth":      2,
	"solid":       2,
	"wonderful":   4,
	"works":       1,

	"annoying":    -2,
	"awful":       -3,
	"bad":         -3,
	"broken":      -2,
	"buggy":       -2,
	"bug":         -2,
	"bugs":        -2,
	"confusing":   -2,
	"crash":       -3,
	"crashes":     -3,
	"crashed":     -3,
	"disappointed": -2,
	"disappointing": -2,
	"disaster":    -4,
	"fraud":       -4,
	"scam":        -4,
	"error":       -2,
	"errors":      -2,
	"fail":        -2,
	"failed":      -2,
	"fails":       -2,
	"frustrating": -2,
	"frustrated":  -2,
	"garbage":     -3,
	"hate":        -3,
	"horrible":    -3,
	"issue":       -2,
	"issues":      -2,
	"lost":        -2,
	"poor":        -2,
	"problem":     -2,
	"problems":    -2,
	"slow":        -2,
	"stuck":       -2,
	"terrible":    -3,
	"unreliable":  -2,
	"unusable":    -3,
	"useless":     -2,
	"waste":       -2,
	"worst":       -3,
	"wrong":       -2,
}

// Sentiment scores text on a 0-to-1 scale: 0 is most negative, 0.5 neutral,
// 1 most positive. The score is the average valence of lexicon words found
// in the text, rescaled from [-5, 5]. Text with no lexicon words is neutral.
func Sentiment(text string) float64 {
	sum, count := 0, 0
	for _, token := range tokenize(text) {
		if v, ok := valence[token]; ok {
			sum += v
			count++
		}
	}
	if count == 0 {
		return 0.5
	}
	avg := float64(sum) / float64(count)
	score := (avg/5 + 1) / 2
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
