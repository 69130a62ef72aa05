package nlp

import (
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/sells-group/cvpa-audit/internal/model"
	"github.com/sells-group/cvpa-audit/internal/scoring"
)

// maxPromises caps extraction output per source document.
const maxPromises = 50

// dedupThreshold is the word-overlap similarity above which two extracted
// promises of the same category count as duplicates.
const dedupThreshold = 0.7

// jobPatterns match sentences that promise a job to be done.
var jobPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:help|enable|allow|lets?|lets you|you can|enables you to|helps you|assist|support).*?(?:you|users|customers|clients|people)`),
	regexp.MustCompile(`(?i)(?:accomplish|complete|finish|achieve|get done|make it easy to)`),
	regexp.MustCompile(`(?i)(?:so you can|so that you|enabling you|to help you)`),
	regexp.MustCompile(`(?i)(?:we help|we enable|we make it|we allow|we assist)`),
}

// painReliefPatterns match sentences that promise relief from a pain.
var painReliefPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:no more|never again|eliminate|remove|end|stop|get rid of|free from|without)`),
	regexp.MustCompile(`(?i)(?:solve|fix|address|resolve|tackle|deal with|overcome|avoid)`),
	regexp.MustCompile(`(?i)(?:don't|won't|no need to|no longer)`),
	regexp.MustCompile(`(?i)(?:problem|issue|challenge|pain|difficulty|struggle|frustration).*?(?:solved|fixed|addressed|eliminated|removed|resolved)`),
}

// gainPatterns match sentences that promise a benefit.
var gainPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:save|earn|gain|get|receive|obtain|achieve|improve|increase|reduce|decrease)`),
	regexp.MustCompile(`(?i)(?:faster|easier|better|more|less|cheaper|affordable|convenient)`),
	regexp.MustCompile(`(?i)(?:you'll|you will|you get|you receive|benefit from|enjoy)`),
	regexp.MustCompile(`(?i)(?:which means|so you|resulting in|leading to|giving you|providing you)`),
}

var (
	jobPrefixRe      = regexp.MustCompile(`(?i)^(we help|we enable|we make it|we allow|we assist|help|enable|allows?|lets? you|you can|enables you to|helps you)`)
	fillerPrefixRe   = regexp.MustCompile(`(?i)^(to|so|and|,)`)
	painPrefixRe     = regexp.MustCompile(`(?i)^(we|our solution|our product|our service)`)
	painSolutionRe   = regexp.MustCompile(`(?i)(?:no more|eliminate|solve|fix|address|remove|end|stop)\s+([^.?!]+)`)
	benefitClauseRe  = regexp.MustCompile(`(?i)which means|so you|resulting in|leading to|giving you|providing you`)
	emotionalJobRe   = regexp.MustCompile(`(?i)feel|confident|happy|satisfied|relieved|proud|secure|comfortable|peace`)
	socialJobRe      = regexp.MustCompile(`(?i)perceived|recognized|valued|respected|admired|seen|viewed`)
	requiredGainRe   = regexp.MustCompile(`(?i)must|need|essential|required|crucial|critical`)
	unexpectedGainRe = regexp.MustCompile(`(?i)surprised|amazed|delighted|love|excellent|perfect|incredible|amazing|wow`)
	desiredGainRe    = regexp.MustCompile(`(?i)want|would like|prefer|wish|desire`)

	actionVerbRe  = regexp.MustCompile(`(?i)\b(help|enable|allow|solve|fix|save|improve|provide|deliver|offer|create|make|give|get|achieve|accomplish|eliminate|remove|reduce|increase|enhance|optimize)\b`)
	benefitWordRe = regexp.MustCompile(`(?i)\b(better|faster|easier|cheaper|affordable|convenient|reliable|secure|simple|quick|fast|easy|value|benefit|advantage)\b`)
)

// metadataPatterns reject company-profile boilerplate (directory listings,
// headcount blurbs) that pattern matching would otherwise pick up.
var metadataPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)industry\s+\w+`),
	regexp.MustCompile(`(?i)company\s+size`),
	regexp.MustCompile(`(?i)headquarters`),
	regexp.MustCompile(`(?i)locations?\s+`),
	regexp.MustCompile(`(?i)employees?\s+at`),
	regexp.MustCompile(`(?i)get\s+directions`),
	regexp.MustCompile(`(?i)\d+\s+employees`),
}

// ExtractPromises mines value propositions from company-controlled text.
// Sentences matching job, pain-relief, or gain patterns become promises;
// boilerplate is filtered out, near-duplicates are collapsed, and the result
// is capped at the most confident entries.
func ExtractPromises(text, sourceType, sourceURL, companyID string) []model.Promise {
	var promises []model.Promise

	sents := promiseSentences(text)
	now := time.Now().UTC()

	for _, sentence := range sents {
		if !anyMatch(jobPatterns, sentence) {
			continue
		}
		extracted := strings.TrimSpace(jobPrefixRe.ReplaceAllString(sentence, ""))
		extracted = strings.TrimSpace(fillerPrefixRe.ReplaceAllString(extracted, ""))

		if len(extracted) <= 15 || len(extracted) >= 200 || !isValidPromise(extracted) {
			continue
		}

		jobType := model.JobFunctional
		if emotionalJobRe.MatchString(extracted) {
			jobType = model.JobEmotional
		} else if socialJobRe.MatchString(extracted) {
			jobType = model.JobSocial
		}

		promises = append(promises, model.Promise{
			CompanyID:     companyID,
			SourceType:    sourceType,
			SourceURL:     sourceURL,
			ExtractedText: capitalize(extracted),
			Category:      model.CategoryJob,
			JobType:       jobType,
			Confidence:    0.8,
			ExtractedAt:   now,
		})
	}

	for _, sentence := range sents {
		if anyMatch(painReliefPatterns, sentence) {
			extracted := strings.TrimSpace(painPrefixRe.ReplaceAllString(sentence, ""))
			if len(extracted) > 20 && len(extracted) < 200 && isValidPromise(extracted) {
				promises = append(promises, model.Promise{
					CompanyID:     companyID,
					SourceType:    sourceType,
					SourceURL:     sourceURL,
					ExtractedText: capitalize(extracted),
					Category:      model.CategoryPain,
					Confidence:    0.8,
					ExtractedAt:   now,
				})
			}
		}

		// Explicit pain-with-solution mentions score higher.
		if m := painSolutionRe.FindStringSubmatch(strings.ToLower(sentence)); m != nil {
			painText := strings.TrimSpace(m[1])
			if len(painText) > 10 && len(painText) < 150 && isValidPromise(sentence) {
				promises = append(promises, model.Promise{
					CompanyID:     companyID,
					SourceType:    sourceType,
					SourceURL:     sourceURL,
					ExtractedText: sentence,
					Category:      model.CategoryPain,
					Confidence:    0.85,
					ExtractedAt:   now,
				})
			}
		}
	}

	for _, sentence := range sents {
		if !anyMatch(gainPatterns, sentence) {
			continue
		}
		extracted := sentence

		// Keep only the benefit clause when a connector is present.
		if benefitClauseRe.MatchString(extracted) {
			parts := benefitClauseRe.Split(extracted, 2)
			if len(parts) > 1 {
				extracted = strings.TrimSpace(parts[1])
			}
		}

		if len(extracted) <= 15 || len(extracted) >= 200 || !isValidPromise(extracted) {
			continue
		}

		gainType := model.GainExpected
		switch {
		case requiredGainRe.MatchString(extracted):
			gainType = model.GainRequired
		case unexpectedGainRe.MatchString(extracted):
			gainType = model.GainUnexpected
		case desiredGainRe.MatchString(extracted):
			gainType = model.GainDesired
		}

		promises = append(promises, model.Promise{
			CompanyID:     companyID,
			SourceType:    sourceType,
			SourceURL:     sourceURL,
			ExtractedText: capitalize(extracted),
			Category:      model.CategoryGain,
			GainType:      gainType,
			Confidence:    0.8,
			ExtractedAt:   now,
		})
	}

	// Keyword-based job extraction as a coverage fallback.
	for _, job := range ExtractJobs(text) {
		if len(job.Text) <= 20 || !isValidPromise(job.Text) {
			continue
		}
		exists := false
		for _, p := range promises {
			if p.Category != model.CategoryJob {
				continue
			}
			pl, jl := strings.ToLower(p.ExtractedText), strings.ToLower(job.Text)
			if strings.Contains(pl, jl) || strings.Contains(jl, pl) {
				exists = true
				break
			}
		}
		if !exists {
			promises = append(promises, model.Promise{
				CompanyID:     companyID,
				SourceType:    sourceType,
				SourceURL:     sourceURL,
				ExtractedText: job.Text,
				Category:      model.CategoryJob,
				JobType:       job.Type,
				Confidence:    job.Confidence,
				ExtractedAt:   now,
			})
		}
	}

	unique := dedupePromises(promises)
	if len(unique) > maxPromises {
		unique = unique[:maxPromises]
	}
	return unique
}

var promiseBoundaryRe = regexp.MustCompile(`[.!?\n]+`)

// promiseSentences splits source text on sentence boundaries and newlines.
func promiseSentences(text string) []string {
	parts := promiseBoundaryRe.Split(text, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); len(s) > 10 {
			out = append(out, s)
		}
	}
	return out
}

// isValidPromise accepts text that is long enough, carries an action verb or
// benefit word, and is not company-profile boilerplate.
func isValidPromise(text string) bool {
	if len(text) < 20 {
		return false
	}
	if !actionVerbRe.MatchString(text) && !benefitWordRe.MatchString(text) {
		return false
	}
	return !isMetadata(text)
}

func isMetadata(text string) bool {
	for _, pattern := range metadataPatterns {
		if pattern.MatchString(text) {
			return true
		}
	}
	textLower := strings.ToLower(text)
	if strings.Contains(textLower, "industry") &&
		(strings.Contains(textLower, "employees") || strings.Contains(textLower, "headquarters") || strings.Contains(textLower, "locations")) {
		return true
	}
	return false
}

// dedupePromises collapses same-category promises whose word overlap exceeds
// the duplicate threshold, keeping the most confident entries first.
func dedupePromises(promises []model.Promise) []model.Promise {
	var unique []model.Promise
	for _, p := range promises {
		dup := false
		for _, existing := range unique {
			if existing.Category != p.Category {
				continue
			}
			if scoring.Similarity(existing.ExtractedText, p.ExtractedText) > dedupThreshold {
				dup = true
				break
			}
		}
		if !dup {
			unique = append(unique, p)
		}
	}
	sort.SliceStable(unique, func(i, j int) bool {
		return unique[i].Confidence > unique[j].Confidence
	})
	return unique
}

func anyMatch(patterns []*regexp.Regexp, s string) bool {
	for _, p := range patterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
