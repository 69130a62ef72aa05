package scoring

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/sells-group/cvpa-audit/internal/model"
)

// fakeStore is an in-memory implementation of the engine's store interfaces
// with per-operation error injection.
type fakeStore struct {
	promises []model.Promise
	feedback []model.FeedbackAnnotation
	scores   []model.AuditScore
	gaps     []model.Gap

	listPromisesErr error
	listFeedbackErr error
	saveScoreErr    error
	getScoreErr     error
	deleteGapsErr   error
	insertGapErr    func(g *model.Gap) error

	deleteGapsCalls int
}

func (s *fakeStore) ListPromises(_ context.Context, companyID string) ([]model.Promise, error) {
	if s.listPromisesErr != nil {
		return nil, s.listPromisesErr
	}
	var out []model.Promise
	for _, p := range s.promises {
		if p.CompanyID == companyID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *fakeStore) ListFeedback(_ context.Context, companyID string) ([]model.FeedbackAnnotation, error) {
	if s.listFeedbackErr != nil {
		return nil, s.listFeedbackErr
	}
	var out []model.FeedbackAnnotation
	for _, f := range s.feedback {
		if f.CompanyID == companyID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (s *fakeStore) SaveAuditScore(_ context.Context, score *model.AuditScore) (*model.AuditScore, error) {
	if s.saveScoreErr != nil {
		return nil, s.saveScoreErr
	}
	saved := *score
	saved.ID = uuid.New().String()
	s.scores = append(s.scores, saved)
	return &saved, nil
}

func (s *fakeStore) GetAuditScore(_ context.Context, auditID string) (*model.AuditScore, error) {
	if s.getScoreErr != nil {
		return nil, s.getScoreErr
	}
	for i := len(s.scores) - 1; i >= 0; i-- {
		if s.scores[i].AuditID == auditID {
			sc := s.scores[i]
			return &sc, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) DeleteGapsForAudit(_ context.Context, auditID string) error {
	s.deleteGapsCalls++
	if s.deleteGapsErr != nil {
		return s.deleteGapsErr
	}
	kept := s.gaps[:0]
	for _, g := range s.gaps {
		if g.AuditID != auditID {
			kept = append(kept, g)
		}
	}
	s.gaps = kept
	return nil
}

func (s *fakeStore) InsertGap(_ context.Context, gap *model.Gap) (*model.Gap, error) {
	if s.insertGapErr != nil {
		if err := s.insertGapErr(gap); err != nil {
			return nil, err
		}
	}
	saved := *gap
	saved.ID = uuid.New().String()
	s.gaps = append(s.gaps, saved)
	return &saved, nil
}

func newTestEngine(s *fakeStore) *Engine {
	return NewEngine(s, s, s, s, DefaultConfig())
}

var errBoom = eris.New("boom")

// jobFeedback builds n feedback rows whose jobsMentioned text matches or
// misses the promise under test.
func jobFeedback(companyID string, matching, unrelated int, sentiment float64) []model.FeedbackAnnotation {
	var out []model.FeedbackAnnotation
	for i := 0; i < matching; i++ {
		out = append(out, model.FeedbackAnnotation{
			ID:        fmt.Sprintf("fb-match-%d", i),
			CompanyID: companyID,
			ReviewID:  fmt.Sprintf("rv-match-%d", i),
			JobsMentioned: []model.MentionedItem{
				{Text: "track your order status easily", Type: "functional", Confidence: 0.7},
			},
			Sentiment: sentiment,
		})
	}
	for i := 0; i < unrelated; i++ {
		out = append(out, model.FeedbackAnnotation{
			ID:        fmt.Sprintf("fb-other-%d", i),
			CompanyID: companyID,
			ReviewID:  fmt.Sprintf("rv-other-%d", i),
			JobsMentioned: []model.MentionedItem{
				{Text: "completely unrelated subject matter here", Type: "functional", Confidence: 0.7},
			},
			Sentiment: sentiment,
		})
	}
	return out
}
