package store

import (
	"context"

	"github.com/sells-group/cvpa-audit/internal/model"
)

// ReviewFilter specifies criteria for listing reviews.
type ReviewFilter struct {
	Source string `json:"source,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

// Store defines the persistence interface for the audit pipeline.
type Store interface {
	// Companies
	CreateCompany(ctx context.Context, company *model.Company) (*model.Company, error)
	GetCompany(ctx context.Context, companyID string) (*model.Company, error)
	ListCompanies(ctx context.Context) ([]model.Company, error)

	// Users
	CreateUser(ctx context.Context, user *model.User) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)

	// Reviews
	InsertReviews(ctx context.Context, reviews []model.Review) (int, error)
	ListReviews(ctx context.Context, companyID string, filter ReviewFilter) ([]model.Review, error)
	CountReviews(ctx context.Context, companyID string) (int, error)

	// Raw promise pages
	InsertRawPage(ctx context.Context, page *model.RawPage) (*model.RawPage, error)
	ListPendingRawPages(ctx context.Context, companyID string) ([]model.RawPage, error)
	SetRawPageStatus(ctx context.Context, pageID string, status string) error

	// Value propositions
	InsertPromise(ctx context.Context, promise *model.Promise) (*model.Promise, error)
	ListPromises(ctx context.Context, companyID string) ([]model.Promise, error)

	// Feedback annotations
	SaveFeedback(ctx context.Context, feedback []model.FeedbackAnnotation) (int, error)
	ListFeedback(ctx context.Context, companyID string) ([]model.FeedbackAnnotation, error)
	DeleteFeedbackForCompany(ctx context.Context, companyID string) error

	// Audits
	CreateAudit(ctx context.Context, audit *model.Audit) (*model.Audit, error)
	GetAudit(ctx context.Context, auditID string) (*model.Audit, error)
	ListAudits(ctx context.Context, companyID string) ([]model.Audit, error)
	UpdateAuditStatus(ctx context.Context, auditID string, status model.AuditStatus) error
	FinishAudit(ctx context.Context, auditID string, status model.AuditStatus) error

	// Audit scores
	SaveAuditScore(ctx context.Context, score *model.AuditScore) (*model.AuditScore, error)
	GetAuditScore(ctx context.Context, auditID string) (*model.AuditScore, error)
	ListAuditScores(ctx context.Context, companyID string) ([]model.AuditScore, error)

	// Gaps
	DeleteGapsForAudit(ctx context.Context, auditID string) error
	InsertGap(ctx context.Context, gap *model.Gap) (*model.Gap, error)
	ListGaps(ctx context.Context, auditID string) ([]model.Gap, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
