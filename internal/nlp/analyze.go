package nlp

import (
	"strings"
	"time"

	"github.com/sells-group/cvpa-audit/internal/model"
)

const mentionConfidence = 0.7

// maxTopics caps the number of keywords attached to one annotation.
const maxTopics = 5

// AnalyzeReview derives a feedback annotation from one review: the jobs,
// pains and gains it mentions, an overall sentiment, and a few topic
// keywords. Deterministic; the same review always yields the same annotation.
func AnalyzeReview(review model.Review) model.FeedbackAnnotation {
	sentiment := Sentiment(review.ReviewText)

	return model.FeedbackAnnotation{
		CompanyID:      review.CompanyID,
		ReviewID:       review.ID,
		JobsMentioned:  ExtractJobs(review.ReviewText),
		PainsMentioned: ExtractPains(review.ReviewText),
		GainsMentioned: ExtractGains(review.ReviewText),
		Sentiment:      sentiment,
		Topics:         extractTopics(review.ReviewText),
		AnalyzedAt:     time.Now().UTC(),
	}
}

// ExtractJobs finds functional and emotional job mentions: for each trigger
// keyword present, the first sentence containing it becomes a mention.
func ExtractJobs(text string) []model.MentionedItem {
	var jobs []model.MentionedItem
	textLower := strings.ToLower(text)

	for _, jobType := range []string{model.JobFunctional, model.JobEmotional} {
		for _, keyword := range jobKeywords[jobType] {
			if !strings.Contains(textLower, keyword) {
				continue
			}
			if sentence, ok := sentenceContaining(text, keyword); ok {
				jobs = append(jobs, model.MentionedItem{
					Text:       sentence,
					Type:       jobType,
					Confidence: mentionConfidence,
				})
			}
		}
	}
	return jobs
}

// ExtractPains finds pain mentions. Severity is graded by the overall
// sentiment of the text: below 0.2 critical, below 0.3 high, otherwise medium.
func ExtractPains(text string) []model.MentionedItem {
	var pains []model.MentionedItem
	textLower := strings.ToLower(text)
	sentiment := Sentiment(text)

	severity := "medium"
	if sentiment < 0.3 {
		severity = "high"
	}
	if sentiment < 0.2 {
		severity = "critical"
	}

	for _, keyword := range painKeywords {
		if !strings.Contains(textLower, keyword) {
			continue
		}
		if sentence, ok := sentenceContaining(text, keyword); ok {
			pains = append(pains, model.MentionedItem{
				Text:       sentence,
				Severity:   severity,
				Confidence: mentionConfidence,
			})
		}
	}
	return pains
}

// ExtractGains finds gain mentions, tagged with the gain sub-type whose
// keyword triggered them.
func ExtractGains(text string) []model.MentionedItem {
	var gains []model.MentionedItem
	textLower := strings.ToLower(text)

	for _, gainType := range gainTypeOrder {
		for _, keyword := range gainKeywords[gainType] {
			if !strings.Contains(textLower, keyword) {
				continue
			}
			if sentence, ok := sentenceContaining(text, keyword); ok {
				gains = append(gains, model.MentionedItem{
					Text:       sentence,
					Type:       gainType,
					Confidence: mentionConfidence,
				})
			}
		}
	}
	return gains
}

// extractTopics picks the first few longer words as lightweight topics.
func extractTopics(text string) []model.Topic {
	var topics []model.Topic
	for _, token := range tokenize(text) {
		if len(token) <= 4 {
			continue
		}
		topics = append(topics, model.Topic{Keyword: token, Weight: 0.5})
		if len(topics) == maxTopics {
			break
		}
	}
	return topics
}
