package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/cvpa-audit/internal/db"
	"github.com/sells-group/cvpa-audit/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the most frequently used store operations.
var preparedStatements = map[string]string{
	"list_promises":      `SELECT id, company_id, source_type, source_url, extracted_text, category, job_type, gain_type, confidence, extracted_at FROM value_propositions WHERE company_id = $1 ORDER BY extracted_at`,
	"get_audit":          `SELECT id, company_id, status, start_date, end_date, time_period_start, time_period_end, created_at FROM audits WHERE id = $1`,
	"update_audit_status": `UPDATE audits SET status = $1 WHERE id = $2`,
	"insert_audit_score": `INSERT INTO audit_scores (id, company_id, audit_id, audit_date, overall_score, jobs_score, pains_score, gains_score, statistical_significance, sample_size) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
	"get_audit_score":    `SELECT id, company_id, audit_id, audit_date, overall_score, jobs_score, pains_score, gains_score, statistical_significance, sample_size FROM audit_scores WHERE audit_id = $1 ORDER BY audit_date DESC LIMIT 1`,
	"delete_gaps":        `DELETE FROM gaps WHERE audit_id = $1`,
	"insert_gap":         `INSERT INTO gaps (id, company_id, audit_id, gap_type, gap_description, gap_severity, promise_text, reality_text, impact_score, priority) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	// Apply pool sizing from config with sensible defaults.
	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	// Prepare frequently-used statements on each new connection.
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// Pool returns the underlying database pool for subsystems that need direct
// query access.
func (s *PostgresStore) Pool() db.Pool {
	return s.pool
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	email         TEXT NOT NULL UNIQUE,
	name          TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	role          TEXT NOT NULL DEFAULT 'user',
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS companies (
	id                  TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	name                TEXT NOT NULL,
	industry            TEXT,
	website_url         TEXT NOT NULL,
	description         TEXT,
	app_store_id        TEXT,
	google_play_package TEXT,
	created_by          TEXT REFERENCES users(id),
	created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at          TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS reviews (
	id              TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	company_id      TEXT NOT NULL REFERENCES companies(id),
	source          TEXT NOT NULL,
	reviewer_name   TEXT NOT NULL DEFAULT '',
	rating          DOUBLE PRECISION,
	review_text     TEXT NOT NULL,
	review_date     TIMESTAMPTZ NOT NULL,
	verified        BOOLEAN NOT NULL DEFAULT false,
	sentiment_score DOUBLE PRECISION,
	collected_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (company_id, source, reviewer_name, review_date)
);

CREATE TABLE IF NOT EXISTS raw_pages (
	id           TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	company_id   TEXT NOT NULL REFERENCES companies(id),
	source_type  TEXT NOT NULL,
	source_url   TEXT NOT NULL,
	content      TEXT NOT NULL,
	collected_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	status       TEXT NOT NULL DEFAULT 'pending'
);

CREATE TABLE IF NOT EXISTS value_propositions (
	id             TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	company_id     TEXT NOT NULL REFERENCES companies(id),
	source_type    TEXT NOT NULL,
	source_url     TEXT NOT NULL DEFAULT '',
	extracted_text TEXT NOT NULL,
	category       TEXT NOT NULL CHECK (category IN ('job', 'pain', 'gain')),
	job_type       TEXT,
	gain_type      TEXT,
	confidence     DOUBLE PRECISION NOT NULL DEFAULT 0,
	extracted_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS customer_feedback (
	id              TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	company_id      TEXT NOT NULL REFERENCES companies(id),
	review_id       TEXT NOT NULL REFERENCES reviews(id),
	jobs_mentioned  JSONB NOT NULL DEFAULT '[]',
	pains_mentioned JSONB NOT NULL DEFAULT '[]',
	gains_mentioned JSONB NOT NULL DEFAULT '[]',
	sentiment       DOUBLE PRECISION NOT NULL DEFAULT 0.5,
	topics          JSONB,
	analyzed_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS audits (
	id                TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	company_id        TEXT NOT NULL REFERENCES companies(id),
	status            TEXT NOT NULL DEFAULT 'pending',
	start_date        TIMESTAMPTZ NOT NULL DEFAULT now(),
	end_date          TIMESTAMPTZ,
	time_period_start TIMESTAMPTZ NOT NULL,
	time_period_end   TIMESTAMPTZ NOT NULL,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS audit_scores (
	id                       TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	company_id               TEXT NOT NULL REFERENCES companies(id),
	audit_id                 TEXT NOT NULL REFERENCES audits(id),
	audit_date               TIMESTAMPTZ NOT NULL DEFAULT now(),
	overall_score            DOUBLE PRECISION NOT NULL,
	jobs_score               DOUBLE PRECISION NOT NULL,
	pains_score              DOUBLE PRECISION NOT NULL,
	gains_score              DOUBLE PRECISION NOT NULL,
	statistical_significance DOUBLE PRECISION NOT NULL,
	sample_size              INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS gaps (
	id              TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	company_id      TEXT NOT NULL REFERENCES companies(id),
	audit_id        TEXT NOT NULL REFERENCES audits(id),
	gap_type        TEXT NOT NULL CHECK (gap_type IN ('jobs', 'pains', 'gains')),
	gap_description TEXT NOT NULL,
	gap_severity    TEXT NOT NULL CHECK (gap_severity IN ('low', 'medium', 'high', 'critical')),
	promise_text    TEXT NOT NULL DEFAULT '',
	reality_text    TEXT NOT NULL DEFAULT '',
	impact_score    DOUBLE PRECISION NOT NULL DEFAULT 0,
	priority        INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_reviews_company_id ON reviews(company_id);
CREATE INDEX IF NOT EXISTS idx_reviews_review_date ON reviews(review_date);
CREATE INDEX IF NOT EXISTS idx_raw_pages_company_status ON raw_pages(company_id, status);
CREATE INDEX IF NOT EXISTS idx_value_propositions_company_id ON value_propositions(company_id);
CREATE INDEX IF NOT EXISTS idx_customer_feedback_company_id ON customer_feedback(company_id);
CREATE INDEX IF NOT EXISTS idx_customer_feedback_review_id ON customer_feedback(review_id);
CREATE INDEX IF NOT EXISTS idx_audits_company_id ON audits(company_id);
CREATE INDEX IF NOT EXISTS idx_audit_scores_audit_id ON audit_scores(audit_id);
CREATE INDEX IF NOT EXISTS idx_audit_scores_company_id ON audit_scores(company_id);
CREATE INDEX IF NOT EXISTS idx_gaps_audit_id ON gaps(audit_id);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) CreateCompany(ctx context.Context, company *model.Company) (*model.Company, error) {
	c := *company
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	var createdBy *string
	if c.CreatedBy != "" {
		createdBy = &c.CreatedBy
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO companies (id, name, industry, website_url, description, app_store_id, google_play_package, created_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		c.ID, c.Name, c.Industry, c.WebsiteURL, c.Description, c.AppStoreID, c.GooglePlayPackage, createdBy, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert company")
	}
	return &c, nil
}

func (s *PostgresStore) GetCompany(ctx context.Context, companyID string) (*model.Company, error) {
	var c model.Company
	var createdBy *string

	err := s.pool.QueryRow(ctx,
		`SELECT id, name, COALESCE(industry, ''), website_url, COALESCE(description, ''), COALESCE(app_store_id, ''), COALESCE(google_play_package, ''), created_by, created_at, updated_at
		 FROM companies WHERE id = $1`,
		companyID,
	).Scan(&c.ID, &c.Name, &c.Industry, &c.WebsiteURL, &c.Description, &c.AppStoreID, &c.GooglePlayPackage, &createdBy, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get company %s", companyID)
	}
	if createdBy != nil {
		c.CreatedBy = *createdBy
	}
	return &c, nil
}

func (s *PostgresStore) ListCompanies(ctx context.Context) ([]model.Company, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, COALESCE(industry, ''), website_url, COALESCE(description, ''), COALESCE(app_store_id, ''), COALESCE(google_play_package, ''), created_by, created_at, updated_at
		 FROM companies ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list companies")
	}
	defer rows.Close()

	var companies []model.Company
	for rows.Next() {
		var c model.Company
		var createdBy *string
		if err := rows.Scan(&c.ID, &c.Name, &c.Industry, &c.WebsiteURL, &c.Description, &c.AppStoreID, &c.GooglePlayPackage, &createdBy, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan company")
		}
		if createdBy != nil {
			c.CreatedBy = *createdBy
		}
		companies = append(companies, c)
	}
	return companies, eris.Wrap(rows.Err(), "postgres: list companies iterate")
}

func (s *PostgresStore) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	u := *user
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	if u.Role == "" {
		u.Role = "user"
	}
	u.CreatedAt = time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, email, name, password_hash, role, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		u.ID, u.Email, u.Name, u.PasswordHash, u.Role, u.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert user")
	}
	return &u, nil
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := s.pool.QueryRow(ctx,
		`SELECT id, email, name, password_hash, role, created_at FROM users WHERE email = $1`,
		email,
	).Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "postgres: get user by email")
	}
	return &u, nil
}

// reviewColumns is the column order used for bulk review upserts.
var reviewColumns = []string{
	"id", "company_id", "source", "reviewer_name", "rating",
	"review_text", "review_date", "verified", "sentiment_score", "collected_at",
}

// InsertReviews bulk-upserts reviews. Re-importing the same export is
// idempotent: rows matching an existing (company, source, reviewer, date)
// tuple update in place instead of duplicating.
func (s *PostgresStore) InsertReviews(ctx context.Context, reviews []model.Review) (int, error) {
	if len(reviews) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	rows := make([][]any, 0, len(reviews))
	for _, r := range reviews {
		id := r.ID
		if id == "" {
			id = uuid.New().String()
		}
		collectedAt := r.CollectedAt
		if collectedAt.IsZero() {
			collectedAt = now
		}
		rows = append(rows, []any{
			id, r.CompanyID, r.Source, r.ReviewerName, r.Rating,
			r.ReviewText, r.ReviewDate.UTC(), r.Verified, r.SentimentScore, collectedAt,
		})
	}

	n, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "reviews",
		Columns:      reviewColumns,
		ConflictKeys: []string{"company_id", "source", "reviewer_name", "review_date"},
		UpdateCols:   []string{"rating", "review_text", "verified"},
	}, rows)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: insert reviews")
	}
	return int(n), nil
}

func (s *PostgresStore) ListReviews(ctx context.Context, companyID string, filter ReviewFilter) ([]model.Review, error) {
	query := `SELECT id, company_id, source, reviewer_name, rating, review_text, review_date, verified, sentiment_score, collected_at
	          FROM reviews WHERE company_id = $1`
	args := []any{companyID}
	argIdx := 2

	if filter.Source != "" {
		query += fmt.Sprintf(` AND source = $%d`, argIdx)
		args = append(args, filter.Source)
		argIdx++
	}
	query += ` ORDER BY review_date DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 1000
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list reviews")
	}
	defer rows.Close()

	var reviews []model.Review
	for rows.Next() {
		var r model.Review
		if err := rows.Scan(&r.ID, &r.CompanyID, &r.Source, &r.ReviewerName, &r.Rating, &r.ReviewText, &r.ReviewDate, &r.Verified, &r.SentimentScore, &r.CollectedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan review")
		}
		reviews = append(reviews, r)
	}
	return reviews, eris.Wrap(rows.Err(), "postgres: list reviews iterate")
}

func (s *PostgresStore) CountReviews(ctx context.Context, companyID string) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM reviews WHERE company_id = $1`, companyID).Scan(&count)
	return count, eris.Wrap(err, "postgres: count reviews")
}

func (s *PostgresStore) InsertRawPage(ctx context.Context, page *model.RawPage) (*model.RawPage, error) {
	p := *page
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.Status == "" {
		p.Status = model.RawPagePending
	}
	if p.CollectedAt.IsZero() {
		p.CollectedAt = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO raw_pages (id, company_id, source_type, source_url, content, collected_at, status) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID, p.CompanyID, p.SourceType, p.SourceURL, p.Content, p.CollectedAt, p.Status,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert raw page")
	}
	return &p, nil
}

func (s *PostgresStore) ListPendingRawPages(ctx context.Context, companyID string) ([]model.RawPage, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, company_id, source_type, source_url, content, collected_at, status
		 FROM raw_pages WHERE company_id = $1 AND status = 'pending' ORDER BY collected_at`,
		companyID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list pending raw pages")
	}
	defer rows.Close()

	var pages []model.RawPage
	for rows.Next() {
		var p model.RawPage
		if err := rows.Scan(&p.ID, &p.CompanyID, &p.SourceType, &p.SourceURL, &p.Content, &p.CollectedAt, &p.Status); err != nil {
			return nil, eris.Wrap(err, "postgres: scan raw page")
		}
		pages = append(pages, p)
	}
	return pages, eris.Wrap(rows.Err(), "postgres: list pending raw pages iterate")
}

func (s *PostgresStore) SetRawPageStatus(ctx context.Context, pageID string, status string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE raw_pages SET status = $1 WHERE id = $2`,
		status, pageID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: set raw page status %s", pageID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("raw page not found: %s", pageID)
	}
	return nil
}

func (s *PostgresStore) InsertPromise(ctx context.Context, promise *model.Promise) (*model.Promise, error) {
	p := *promise
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.ExtractedAt.IsZero() {
		p.ExtractedAt = time.Now().UTC()
	}

	var jobType, gainType *string
	if p.JobType != "" {
		jobType = &p.JobType
	}
	if p.GainType != "" {
		gainType = &p.GainType
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO value_propositions (id, company_id, source_type, source_url, extracted_text, category, job_type, gain_type, confidence, extracted_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		p.ID, p.CompanyID, p.SourceType, p.SourceURL, p.ExtractedText, string(p.Category), jobType, gainType, p.Confidence, p.ExtractedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert promise")
	}
	return &p, nil
}

func (s *PostgresStore) ListPromises(ctx context.Context, companyID string) ([]model.Promise, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, company_id, source_type, source_url, extracted_text, category, job_type, gain_type, confidence, extracted_at
		 FROM value_propositions WHERE company_id = $1 ORDER BY extracted_at`,
		companyID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list promises")
	}
	defer rows.Close()

	var promises []model.Promise
	for rows.Next() {
		var p model.Promise
		var jobType, gainType *string
		if err := rows.Scan(&p.ID, &p.CompanyID, &p.SourceType, &p.SourceURL, &p.ExtractedText, &p.Category, &jobType, &gainType, &p.Confidence, &p.ExtractedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan promise")
		}
		if jobType != nil {
			p.JobType = *jobType
		}
		if gainType != nil {
			p.GainType = *gainType
		}
		promises = append(promises, p)
	}
	return promises, eris.Wrap(rows.Err(), "postgres: list promises iterate")
}

// feedbackColumns is the column order used for bulk feedback inserts.
var feedbackColumns = []string{
	"id", "company_id", "review_id", "jobs_mentioned", "pains_mentioned",
	"gains_mentioned", "sentiment", "topics", "analyzed_at",
}

// SaveFeedback bulk-inserts feedback annotations via COPY. Annotations are
// immutable; recomputation deletes the company's set first.
func (s *PostgresStore) SaveFeedback(ctx context.Context, feedback []model.FeedbackAnnotation) (int, error) {
	if len(feedback) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	rows := make([][]any, 0, len(feedback))
	for _, f := range feedback {
		id := f.ID
		if id == "" {
			id = uuid.New().String()
		}
		analyzedAt := f.AnalyzedAt
		if analyzedAt.IsZero() {
			analyzedAt = now
		}

		jobs, err := marshalMentions(f.JobsMentioned)
		if err != nil {
			return 0, err
		}
		pains, err := marshalMentions(f.PainsMentioned)
		if err != nil {
			return 0, err
		}
		gains, err := marshalMentions(f.GainsMentioned)
		if err != nil {
			return 0, err
		}

		var topics []byte
		if len(f.Topics) > 0 {
			topics, err = json.Marshal(f.Topics)
			if err != nil {
				return 0, eris.Wrap(err, "postgres: marshal topics")
			}
		}

		rows = append(rows, []any{
			id, f.CompanyID, f.ReviewID, jobs, pains,
			gains, f.Sentiment, topics, analyzedAt,
		})
	}

	n, err := db.CopyFrom(ctx, s.pool, "customer_feedback", feedbackColumns, rows)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: save feedback")
	}
	return int(n), nil
}

func marshalMentions(items []model.MentionedItem) ([]byte, error) {
	if items == nil {
		items = []model.MentionedItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal mentions")
	}
	return data, nil
}

// ListFeedback returns all feedback annotations for a company, joined with
// the owning review's text. Mention lists are normalized at this boundary so
// callers never see raw JSON.
func (s *PostgresStore) ListFeedback(ctx context.Context, companyID string) ([]model.FeedbackAnnotation, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT f.id, f.company_id, f.review_id, f.jobs_mentioned, f.pains_mentioned, f.gains_mentioned, f.sentiment, f.topics, f.analyzed_at, COALESCE(r.review_text, '')
		 FROM customer_feedback f
		 LEFT JOIN reviews r ON r.id = f.review_id
		 WHERE f.company_id = $1
		 ORDER BY f.analyzed_at`,
		companyID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list feedback")
	}
	defer rows.Close()

	var feedback []model.FeedbackAnnotation
	for rows.Next() {
		var f model.FeedbackAnnotation
		var jobs, pains, gains, topics []byte
		if err := rows.Scan(&f.ID, &f.CompanyID, &f.ReviewID, &jobs, &pains, &gains, &f.Sentiment, &topics, &f.AnalyzedAt, &f.ReviewText); err != nil {
			return nil, eris.Wrap(err, "postgres: scan feedback")
		}
		f.JobsMentioned = model.NormalizeMentions(jobs)
		f.PainsMentioned = model.NormalizeMentions(pains)
		f.GainsMentioned = model.NormalizeMentions(gains)
		if len(topics) > 0 {
			if err := json.Unmarshal(topics, &f.Topics); err != nil {
				return nil, eris.Wrap(err, "postgres: unmarshal topics")
			}
		}
		feedback = append(feedback, f)
	}
	return feedback, eris.Wrap(rows.Err(), "postgres: list feedback iterate")
}

func (s *PostgresStore) DeleteFeedbackForCompany(ctx context.Context, companyID string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM customer_feedback WHERE company_id = $1`, companyID)
	return eris.Wrap(err, "postgres: delete feedback")
}

func (s *PostgresStore) CreateAudit(ctx context.Context, audit *model.Audit) (*model.Audit, error) {
	a := *audit
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.Status == "" {
		a.Status = model.AuditPending
	}
	now := time.Now().UTC()
	if a.StartDate.IsZero() {
		a.StartDate = now
	}
	a.CreatedAt = now

	_, err := s.pool.Exec(ctx,
		`INSERT INTO audits (id, company_id, status, start_date, time_period_start, time_period_end, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.CompanyID, string(a.Status), a.StartDate, a.TimePeriodStart, a.TimePeriodEnd, a.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert audit")
	}
	return &a, nil
}

func (s *PostgresStore) GetAudit(ctx context.Context, auditID string) (*model.Audit, error) {
	var a model.Audit
	err := s.pool.QueryRow(ctx,
		`SELECT id, company_id, status, start_date, end_date, time_period_start, time_period_end, created_at
		 FROM audits WHERE id = $1`,
		auditID,
	).Scan(&a.ID, &a.CompanyID, &a.Status, &a.StartDate, &a.EndDate, &a.TimePeriodStart, &a.TimePeriodEnd, &a.CreatedAt)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get audit %s", auditID)
	}
	return &a, nil
}

func (s *PostgresStore) ListAudits(ctx context.Context, companyID string) ([]model.Audit, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, company_id, status, start_date, end_date, time_period_start, time_period_end, created_at
		 FROM audits WHERE company_id = $1 ORDER BY created_at DESC`,
		companyID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list audits")
	}
	defer rows.Close()

	var audits []model.Audit
	for rows.Next() {
		var a model.Audit
		if err := rows.Scan(&a.ID, &a.CompanyID, &a.Status, &a.StartDate, &a.EndDate, &a.TimePeriodStart, &a.TimePeriodEnd, &a.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan audit")
		}
		audits = append(audits, a)
	}
	return audits, eris.Wrap(rows.Err(), "postgres: list audits iterate")
}

func (s *PostgresStore) UpdateAuditStatus(ctx context.Context, auditID string, status model.AuditStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE audits SET status = $1 WHERE id = $2`,
		string(status), auditID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update audit status %s", auditID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("audit not found: %s", auditID)
	}
	return nil
}

func (s *PostgresStore) FinishAudit(ctx context.Context, auditID string, status model.AuditStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE audits SET status = $1, end_date = $2 WHERE id = $3`,
		string(status), time.Now().UTC(), auditID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: finish audit %s", auditID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("audit not found: %s", auditID)
	}
	return nil
}

// SaveAuditScore appends a new score row. Scores are never updated in
// place; the latest row for an audit wins.
func (s *PostgresStore) SaveAuditScore(ctx context.Context, score *model.AuditScore) (*model.AuditScore, error) {
	sc := *score
	if sc.ID == "" {
		sc.ID = uuid.New().String()
	}
	if sc.AuditDate.IsZero() {
		sc.AuditDate = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO audit_scores (id, company_id, audit_id, audit_date, overall_score, jobs_score, pains_score, gains_score, statistical_significance, sample_size)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		sc.ID, sc.CompanyID, sc.AuditID, sc.AuditDate, sc.OverallScore, sc.JobsScore, sc.PainsScore, sc.GainsScore, sc.StatisticalSignificance, sc.SampleSize,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert audit score")
	}
	return &sc, nil
}

func (s *PostgresStore) GetAuditScore(ctx context.Context, auditID string) (*model.AuditScore, error) {
	var sc model.AuditScore
	err := s.pool.QueryRow(ctx,
		`SELECT id, company_id, audit_id, audit_date, overall_score, jobs_score, pains_score, gains_score, statistical_significance, sample_size
		 FROM audit_scores WHERE audit_id = $1 ORDER BY audit_date DESC LIMIT 1`,
		auditID,
	).Scan(&sc.ID, &sc.CompanyID, &sc.AuditID, &sc.AuditDate, &sc.OverallScore, &sc.JobsScore, &sc.PainsScore, &sc.GainsScore, &sc.StatisticalSignificance, &sc.SampleSize)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: get audit score %s", auditID)
	}
	return &sc, nil
}

func (s *PostgresStore) ListAuditScores(ctx context.Context, companyID string) ([]model.AuditScore, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, company_id, audit_id, audit_date, overall_score, jobs_score, pains_score, gains_score, statistical_significance, sample_size
		 FROM audit_scores WHERE company_id = $1 ORDER BY audit_date DESC`,
		companyID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list audit scores")
	}
	defer rows.Close()

	var scores []model.AuditScore
	for rows.Next() {
		var sc model.AuditScore
		if err := rows.Scan(&sc.ID, &sc.CompanyID, &sc.AuditID, &sc.AuditDate, &sc.OverallScore, &sc.JobsScore, &sc.PainsScore, &sc.GainsScore, &sc.StatisticalSignificance, &sc.SampleSize); err != nil {
			return nil, eris.Wrap(err, "postgres: scan audit score")
		}
		scores = append(scores, sc)
	}
	return scores, eris.Wrap(rows.Err(), "postgres: list audit scores iterate")
}

func (s *PostgresStore) DeleteGapsForAudit(ctx context.Context, auditID string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM gaps WHERE audit_id = $1`, auditID)
	return eris.Wrap(err, "postgres: delete gaps")
}

func (s *PostgresStore) InsertGap(ctx context.Context, gap *model.Gap) (*model.Gap, error) {
	g := *gap
	if g.ID == "" {
		g.ID = uuid.New().String()
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO gaps (id, company_id, audit_id, gap_type, gap_description, gap_severity, promise_text, reality_text, impact_score, priority)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		g.ID, g.CompanyID, g.AuditID, string(g.GapType), g.Description, string(g.Severity), g.PromiseText, g.RealityText, g.ImpactScore, g.Priority,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert gap")
	}
	return &g, nil
}

func (s *PostgresStore) ListGaps(ctx context.Context, auditID string) ([]model.Gap, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, company_id, audit_id, gap_type, gap_description, gap_severity, promise_text, reality_text, impact_score, priority
		 FROM gaps WHERE audit_id = $1 ORDER BY priority`,
		auditID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list gaps")
	}
	defer rows.Close()

	var gaps []model.Gap
	for rows.Next() {
		var g model.Gap
		if err := rows.Scan(&g.ID, &g.CompanyID, &g.AuditID, &g.GapType, &g.Description, &g.Severity, &g.PromiseText, &g.RealityText, &g.ImpactScore, &g.Priority); err != nil {
			return nil, eris.Wrap(err, "postgres: scan gap")
		}
		gaps = append(gaps, g)
	}
	return gaps, eris.Wrap(rows.Err(), "postgres: list gaps iterate")
}
