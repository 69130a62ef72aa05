package nlp

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/cvpa-audit/internal/model"
	"github.com/sells-group/cvpa-audit/pkg/anthropic"
)

// maxSourceChars is the truncation limit for source text sent to Claude.
const maxSourceChars = 16000 // ~4K tokens

// extractPrompt is the system prompt for LLM-based promise extraction.
const extractPrompt = `You are extracting value propositions from company marketing text for a promise-vs-reality audit. Identify every distinct promise the company makes to customers and classify it using the Jobs-to-be-Done framework:
- "job": a task the product helps the customer accomplish (job_type: functional, emotional, or social)
- "pain": a problem the product promises to relieve or eliminate
- "gain": a benefit the product promises to deliver (gain_type: required, expected, desired, or unexpected)

Respond with ONLY a valid JSON array, no other text:
[{"text": "the promise in the company's words", "category": "job", "job_type": "functional", "gain_type": "", "confidence": 0.9}]`

// extractedPromise is the wire shape of one promise in Claude's response.
type extractedPromise struct {
	Text       string  `json:"text"`
	Category   string  `json:"category"`
	JobType    string  `json:"job_type"`
	GainType   string  `json:"gain_type"`
	Confidence float64 `json:"confidence"`
}

// ClaudeExtractor extracts value propositions with Claude instead of the
// rule-based patterns. Used when an API key is configured; callers fall back
// to ExtractPromises on error.
type ClaudeExtractor struct {
	ai    anthropic.Client
	model string
}

// NewClaudeExtractor creates a ClaudeExtractor using the given model ID.
func NewClaudeExtractor(ai anthropic.Client, model string) *ClaudeExtractor {
	return &ClaudeExtractor{ai: ai, model: model}
}

// ExtractPromises sends source text to Claude and parses the returned
// promise list.
func (e *ClaudeExtractor) ExtractPromises(ctx context.Context, text, sourceType, sourceURL, companyID string) ([]model.Promise, error) {
	if len(text) > maxSourceChars {
		text = text[:maxSourceChars]
	}

	resp, err := e.ai.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     e.model,
		MaxTokens: 2048,
		System:    anthropic.BuildCachedSystemBlocks(extractPrompt),
		Messages:  []anthropic.Message{{Role: "user", Content: text}},
	})
	if err != nil {
		return nil, eris.Wrap(err, "extract: claude request")
	}
	resp.Usage.LogCost(e.model, "extract")

	var raw string
	for _, block := range resp.Content {
		if block.Type == "text" {
			raw = block.Text
			break
		}
	}
	if raw == "" {
		return nil, eris.New("extract: empty claude response")
	}

	// Find the JSON array in the response (it may have surrounding text).
	jsonStart := strings.Index(raw, "[")
	jsonEnd := strings.LastIndex(raw, "]")
	if jsonStart < 0 || jsonEnd < 0 || jsonEnd <= jsonStart {
		return nil, eris.Errorf("extract: no JSON in response: %s", raw)
	}

	var extracted []extractedPromise
	if err := json.Unmarshal([]byte(raw[jsonStart:jsonEnd+1]), &extracted); err != nil {
		return nil, eris.Wrap(err, "extract: parse response JSON")
	}

	now := time.Now().UTC()
	var promises []model.Promise
	for _, ep := range extracted {
		category := model.Category(ep.Category)
		if !category.Valid() || strings.TrimSpace(ep.Text) == "" {
			zap.L().Debug("skipping malformed extracted promise",
				zap.String("category", ep.Category),
				zap.String("text", ep.Text))
			continue
		}

		confidence := ep.Confidence
		if confidence <= 0 || confidence > 1 {
			confidence = 0.8
		}

		promises = append(promises, model.Promise{
			CompanyID:     companyID,
			SourceType:    sourceType,
			SourceURL:     sourceURL,
			ExtractedText: strings.TrimSpace(ep.Text),
			Category:      category,
			JobType:       ep.JobType,
			GainType:      ep.GainType,
			Confidence:    confidence,
			ExtractedAt:   now,
		})
		if len(promises) == maxPromises {
			break
		}
	}
	return promises, nil
}
