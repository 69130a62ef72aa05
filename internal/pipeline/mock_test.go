package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/sells-group/cvpa-audit/internal/model"
	"github.com/sells-group/cvpa-audit/internal/store"
)

// fakeStore is an in-memory store.Store with per-operation error injection.
type fakeStore struct {
	mu sync.Mutex

	companies map[string]model.Company
	reviews   []model.Review
	pages     map[string]model.RawPage
	promises  []model.Promise
	feedback  []model.FeedbackAnnotation
	audits    map[string]model.Audit
	scores    []model.AuditScore
	gaps      []model.Gap

	listReviewsErr   error
	insertPromiseErr error
	saveFeedbackErr  error
	finishAuditErr   error

	deleteFeedbackCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		companies: make(map[string]model.Company),
		pages:     make(map[string]model.RawPage),
		audits:    make(map[string]model.Audit),
	}
}

func (s *fakeStore) CreateCompany(_ context.Context, c *model.Company) (*model.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	saved := *c
	if saved.ID == "" {
		saved.ID = uuid.New().String()
	}
	s.companies[saved.ID] = saved
	return &saved, nil
}

func (s *fakeStore) GetCompany(_ context.Context, companyID string) (*model.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.companies[companyID]
	if !ok {
		return nil, eris.Errorf("company %s not found", companyID)
	}
	return &c, nil
}

func (s *fakeStore) ListCompanies(_ context.Context) ([]model.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Company, 0, len(s.companies))
	for _, c := range s.companies {
		out = append(out, c)
	}
	return out, nil
}

func (s *fakeStore) CreateUser(_ context.Context, u *model.User) (*model.User, error) {
	return u, nil
}

func (s *fakeStore) GetUserByEmail(_ context.Context, _ string) (*model.User, error) {
	return nil, nil
}

func (s *fakeStore) InsertReviews(_ context.Context, reviews []model.Review) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reviews = append(s.reviews, reviews...)
	return len(reviews), nil
}

func (s *fakeStore) ListReviews(_ context.Context, companyID string, _ store.ReviewFilter) ([]model.Review, error) {
	if s.listReviewsErr != nil {
		return nil, s.listReviewsErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Review
	for _, r := range s.reviews {
		if r.CompanyID == companyID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *fakeStore) CountReviews(_ context.Context, companyID string) (int, error) {
	reviews, _ := s.ListReviews(context.Background(), companyID, store.ReviewFilter{})
	return len(reviews), nil
}

func (s *fakeStore) InsertRawPage(_ context.Context, p *model.RawPage) (*model.RawPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	saved := *p
	if saved.ID == "" {
		saved.ID = uuid.New().String()
	}
	s.pages[saved.ID] = saved
	return &saved, nil
}

func (s *fakeStore) ListPendingRawPages(_ context.Context, companyID string) ([]model.RawPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.RawPage
	for _, p := range s.pages {
		if p.CompanyID == companyID && p.Status == model.RawPagePending {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *fakeStore) SetRawPageStatus(_ context.Context, pageID string, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pages[pageID]
	if !ok {
		return eris.Errorf("page %s not found", pageID)
	}
	p.Status = status
	s.pages[pageID] = p
	return nil
}

func (s *fakeStore) InsertPromise(_ context.Context, p *model.Promise) (*model.Promise, error) {
	if s.insertPromiseErr != nil {
		return nil, s.insertPromiseErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	saved := *p
	saved.ID = uuid.New().String()
	s.promises = append(s.promises, saved)
	return &saved, nil
}

func (s *fakeStore) ListPromises(_ context.Context, companyID string) ([]model.Promise, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Promise
	for _, p := range s.promises {
		if p.CompanyID == companyID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *fakeStore) SaveFeedback(_ context.Context, feedback []model.FeedbackAnnotation) (int, error) {
	if s.saveFeedbackErr != nil {
		return 0, s.saveFeedbackErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feedback = append(s.feedback, feedback...)
	return len(feedback), nil
}

func (s *fakeStore) ListFeedback(_ context.Context, companyID string) ([]model.FeedbackAnnotation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.FeedbackAnnotation
	for _, f := range s.feedback {
		if f.CompanyID == companyID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (s *fakeStore) DeleteFeedbackForCompany(_ context.Context, companyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteFeedbackCalls++
	kept := s.feedback[:0]
	for _, f := range s.feedback {
		if f.CompanyID != companyID {
			kept = append(kept, f)
		}
	}
	s.feedback = kept
	return nil
}

func (s *fakeStore) CreateAudit(_ context.Context, a *model.Audit) (*model.Audit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	saved := *a
	saved.ID = uuid.New().String()
	saved.CreatedAt = time.Now().UTC()
	s.audits[saved.ID] = saved
	return &saved, nil
}

func (s *fakeStore) GetAudit(_ context.Context, auditID string) (*model.Audit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.audits[auditID]
	if !ok {
		return nil, eris.Errorf("audit %s not found", auditID)
	}
	return &a, nil
}

func (s *fakeStore) ListAudits(_ context.Context, companyID string) ([]model.Audit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Audit
	for _, a := range s.audits {
		if a.CompanyID == companyID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *fakeStore) UpdateAuditStatus(_ context.Context, auditID string, status model.AuditStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.audits[auditID]
	if !ok {
		return eris.Errorf("audit %s not found", auditID)
	}
	a.Status = status
	s.audits[auditID] = a
	return nil
}

func (s *fakeStore) FinishAudit(_ context.Context, auditID string, status model.AuditStatus) error {
	if s.finishAuditErr != nil {
		return s.finishAuditErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.audits[auditID]
	if !ok {
		return eris.Errorf("audit %s not found", auditID)
	}
	a.Status = status
	now := time.Now().UTC()
	a.EndDate = &now
	s.audits[auditID] = a
	return nil
}

func (s *fakeStore) SaveAuditScore(_ context.Context, score *model.AuditScore) (*model.AuditScore, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	saved := *score
	saved.ID = uuid.New().String()
	s.scores = append(s.scores, saved)
	return &saved, nil
}

func (s *fakeStore) GetAuditScore(_ context.Context, auditID string) (*model.AuditScore, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.scores) - 1; i >= 0; i-- {
		if s.scores[i].AuditID == auditID {
			sc := s.scores[i]
			return &sc, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) ListAuditScores(_ context.Context, companyID string) ([]model.AuditScore, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.AuditScore
	for _, sc := range s.scores {
		if sc.CompanyID == companyID {
			out = append(out, sc)
		}
	}
	return out, nil
}

func (s *fakeStore) DeleteGapsForAudit(_ context.Context, auditID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.gaps[:0]
	for _, g := range s.gaps {
		if g.AuditID != auditID {
			kept = append(kept, g)
		}
	}
	s.gaps = kept
	return nil
}

func (s *fakeStore) InsertGap(_ context.Context, g *model.Gap) (*model.Gap, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	saved := *g
	saved.ID = uuid.New().String()
	s.gaps = append(s.gaps, saved)
	return &saved, nil
}

func (s *fakeStore) ListGaps(_ context.Context, auditID string) ([]model.Gap, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Gap
	for _, g := range s.gaps {
		if g.AuditID == auditID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (s *fakeStore) Migrate(_ context.Context) error { return nil }
func (s *fakeStore) Close() error                    { return nil }
