package scoring

import (
	"regexp"
	"strings"
)

// minTokenLen is the shortest token that participates in similarity;
// anything this length or shorter is discarded as a stop word.
const minTokenLen = 3

var nonWord = regexp.MustCompile(`\W+`)

// Similarity compares two free-text strings by lexical overlap and returns a
// value in [0,1]. Both strings are lowercased and split on non-word runs;
// tokens of length <= 3 are dropped. The result is the shared-token count
// divided by the larger set size, so the measure is containment-style and
// not symmetric in general. Returns 0 when either token set is empty.
//
// Pure and deterministic: the rest of the engine relies on reproducible
// results for fixture-based tests.
func Similarity(a, b string) float64 {
	wa := tokenSet(a)
	wb := tokenSet(b)
	if len(wa) == 0 || len(wb) == 0 {
		return 0
	}

	common := 0
	for w := range wa {
		if _, ok := wb[w]; ok {
			common++
		}
	}

	denom := len(wa)
	if len(wb) > denom {
		denom = len(wb)
	}
	return float64(common) / float64(denom)
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range nonWord.Split(strings.ToLower(s), -1) {
		if len(w) > minTokenLen {
			set[w] = struct{}{}
		}
	}
	return set
}
