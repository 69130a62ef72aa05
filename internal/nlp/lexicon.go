// Package nlp provides rule-based review analysis and value-proposition
// extraction: sentiment scoring, jobs/pains/gains mention detection, and
// promise mining from company-controlled text.
package nlp

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/sells-group/cvpa-audit/internal/model"
)

// jobKeywords maps job sub-type to its trigger words.
var jobKeywords = map[string][]string{
	model.JobFunctional: {"accomplish", "complete", "finish", "achieve", "solve", "get", "obtain", "create", "build"},
	model.JobEmotional:  {"feel", "confident", "happy", "satisfied", "relieved", "proud", "secure"},
	model.JobSocial:     {"perceived", "recognized", "valued", "respected", "admired"},
}

// painKeywords trigger a pain mention regardless of sub-type.
var painKeywords = []string{
	"problem", "issue", "difficult", "hard", "frustrating", "slow",
	"broken", "error", "bug", "bad", "terrible", "awful", "hate",
}

// gainKeywords maps gain sub-type to its trigger words.
var gainKeywords = map[string][]string{
	model.GainRequired:   {"must", "need", "essential", "required"},
	model.GainExpected:   {"should", "expect", "standard"},
	model.GainDesired:    {"want", "would like", "prefer", "wish"},
	model.GainUnexpected: {"surprised", "amazed", "delighted", "love", "excellent", "perfect"},
}

// gainTypeOrder fixes iteration order so extraction output is deterministic.
var gainTypeOrder = []string{model.GainRequired, model.GainExpected, model.GainDesired, model.GainUnexpected}

var (
	nonWord       = regexp.MustCompile(`\W+`)
	sentenceSplit = regexp.MustCompile(`[.!?]+`)
)

// tokenize lowercases NFC-normalized text and splits it into word tokens.
func tokenize(text string) []string {
	text = strings.ToLower(norm.NFC.String(text))
	parts := nonWord.Split(text, -1)
	tokens := parts[:0]
	for _, p := range parts {
		if p != "" {
			tokens = append(tokens, p)
		}
	}
	return tokens
}

// sentences splits text on terminal punctuation and trims each piece.
func sentences(text string) []string {
	parts := sentenceSplit.Split(text, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// sentenceContaining returns the first sentence of text that contains the
// keyword, case-insensitively.
func sentenceContaining(text, keyword string) (string, bool) {
	for _, s := range sentences(text) {
		if strings.Contains(strings.ToLower(s), keyword) {
			return s, true
		}
	}
	return "", false
}
