package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/cvpa-audit/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. It is the
// zero-infrastructure backend for local runs and CI.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	email         TEXT NOT NULL UNIQUE,
	name          TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	role          TEXT NOT NULL DEFAULT 'user',
	created_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS companies (
	id                  TEXT PRIMARY KEY,
	name                TEXT NOT NULL,
	industry            TEXT NOT NULL DEFAULT '',
	website_url         TEXT NOT NULL,
	description         TEXT NOT NULL DEFAULT '',
	app_store_id        TEXT NOT NULL DEFAULT '',
	google_play_package TEXT NOT NULL DEFAULT '',
	created_by          TEXT NOT NULL DEFAULT '',
	created_at          DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at          DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS reviews (
	id              TEXT PRIMARY KEY,
	company_id      TEXT NOT NULL REFERENCES companies(id),
	source          TEXT NOT NULL,
	reviewer_name   TEXT NOT NULL DEFAULT '',
	rating          REAL,
	review_text     TEXT NOT NULL,
	review_date     DATETIME NOT NULL,
	verified        INTEGER NOT NULL DEFAULT 0,
	sentiment_score REAL,
	collected_at    DATETIME NOT NULL DEFAULT (datetime('now')),
	UNIQUE (company_id, source, reviewer_name, review_date)
);

CREATE TABLE IF NOT EXISTS raw_pages (
	id           TEXT PRIMARY KEY,
	company_id   TEXT NOT NULL REFERENCES companies(id),
	source_type  TEXT NOT NULL,
	source_url   TEXT NOT NULL,
	content      TEXT NOT NULL,
	collected_at DATETIME NOT NULL DEFAULT (datetime('now')),
	status       TEXT NOT NULL DEFAULT 'pending'
);

CREATE TABLE IF NOT EXISTS value_propositions (
	id             TEXT PRIMARY KEY,
	company_id     TEXT NOT NULL REFERENCES companies(id),
	source_type    TEXT NOT NULL,
	source_url     TEXT NOT NULL DEFAULT '',
	extracted_text TEXT NOT NULL,
	category       TEXT NOT NULL CHECK (category IN ('job', 'pain', 'gain')),
	job_type       TEXT NOT NULL DEFAULT '',
	gain_type      TEXT NOT NULL DEFAULT '',
	confidence     REAL NOT NULL DEFAULT 0,
	extracted_at   DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS customer_feedback (
	id              TEXT PRIMARY KEY,
	company_id      TEXT NOT NULL REFERENCES companies(id),
	review_id       TEXT NOT NULL REFERENCES reviews(id),
	jobs_mentioned  TEXT NOT NULL DEFAULT '[]',
	pains_mentioned TEXT NOT NULL DEFAULT '[]',
	gains_mentioned TEXT NOT NULL DEFAULT '[]',
	sentiment       REAL NOT NULL DEFAULT 0.5,
	topics          TEXT,
	analyzed_at     DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS audits (
	id                TEXT PRIMARY KEY,
	company_id        TEXT NOT NULL REFERENCES companies(id),
	status            TEXT NOT NULL DEFAULT 'pending',
	start_date        DATETIME NOT NULL DEFAULT (datetime('now')),
	end_date          DATETIME,
	time_period_start DATETIME NOT NULL,
	time_period_end   DATETIME NOT NULL,
	created_at        DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS audit_scores (
	id                       TEXT PRIMARY KEY,
	company_id               TEXT NOT NULL REFERENCES companies(id),
	audit_id                 TEXT NOT NULL REFERENCES audits(id),
	audit_date               DATETIME NOT NULL DEFAULT (datetime('now')),
	overall_score            REAL NOT NULL,
	jobs_score               REAL NOT NULL,
	pains_score              REAL NOT NULL,
	gains_score              REAL NOT NULL,
	statistical_significance REAL NOT NULL,
	sample_size              INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS gaps (
	id              TEXT PRIMARY KEY,
	company_id      TEXT NOT NULL REFERENCES companies(id),
	audit_id        TEXT NOT NULL REFERENCES audits(id),
	gap_type        TEXT NOT NULL CHECK (gap_type IN ('jobs', 'pains', 'gains')),
	gap_description TEXT NOT NULL,
	gap_severity    TEXT NOT NULL CHECK (gap_severity IN ('low', 'medium', 'high', 'critical')),
	promise_text    TEXT NOT NULL DEFAULT '',
	reality_text    TEXT NOT NULL DEFAULT '',
	impact_score    REAL NOT NULL DEFAULT 0,
	priority        INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_reviews_company_id ON reviews(company_id);
CREATE INDEX IF NOT EXISTS idx_raw_pages_company_status ON raw_pages(company_id, status);
CREATE INDEX IF NOT EXISTS idx_value_propositions_company_id ON value_propositions(company_id);
CREATE INDEX IF NOT EXISTS idx_customer_feedback_company_id ON customer_feedback(company_id);
CREATE INDEX IF NOT EXISTS idx_audits_company_id ON audits(company_id);
CREATE INDEX IF NOT EXISTS idx_audit_scores_audit_id ON audit_scores(audit_id);
CREATE INDEX IF NOT EXISTS idx_gaps_audit_id ON gaps(audit_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrapf(err, "sqlite: rows affected for %s %s", entity, id)
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

func (s *SQLiteStore) CreateCompany(ctx context.Context, company *model.Company) (*model.Company, error) {
	c := *company
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO companies (id, name, industry, website_url, description, app_store_id, google_play_package, created_by, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Industry, c.WebsiteURL, c.Description, c.AppStoreID, c.GooglePlayPackage, c.CreatedBy, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert company")
	}
	return &c, nil
}

func (s *SQLiteStore) GetCompany(ctx context.Context, companyID string) (*model.Company, error) {
	var c model.Company
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, industry, website_url, description, app_store_id, google_play_package, created_by, created_at, updated_at
		 FROM companies WHERE id = ?`,
		companyID,
	).Scan(&c.ID, &c.Name, &c.Industry, &c.WebsiteURL, &c.Description, &c.AppStoreID, &c.GooglePlayPackage, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get company %s", companyID)
	}
	return &c, nil
}

func (s *SQLiteStore) ListCompanies(ctx context.Context) ([]model.Company, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, industry, website_url, description, app_store_id, google_play_package, created_by, created_at, updated_at
		 FROM companies ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list companies")
	}
	defer rows.Close()

	var companies []model.Company
	for rows.Next() {
		var c model.Company
		if err := rows.Scan(&c.ID, &c.Name, &c.Industry, &c.WebsiteURL, &c.Description, &c.AppStoreID, &c.GooglePlayPackage, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan company")
		}
		companies = append(companies, c)
	}
	return companies, eris.Wrap(rows.Err(), "sqlite: list companies iterate")
}

func (s *SQLiteStore) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	u := *user
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	if u.Role == "" {
		u.Role = "user"
	}
	u.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, name, password_hash, role, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.Name, u.PasswordHash, u.Role, u.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert user")
	}
	return &u, nil
}

func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, name, password_hash, role, created_at FROM users WHERE email = ?`,
		email,
	).Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, eris.Wrap(err, "sqlite: get user by email")
	}
	return &u, nil
}

func (s *SQLiteStore) InsertReviews(ctx context.Context, reviews []model.Review) (int, error) {
	if len(reviews) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO reviews (id, company_id, source, reviewer_name, rating, review_text, review_date, verified, sentiment_score, collected_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (company_id, source, reviewer_name, review_date)
		 DO UPDATE SET rating = excluded.rating, review_text = excluded.review_text, verified = excluded.verified`,
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare insert review")
	}
	defer stmt.Close()

	now := time.Now().UTC()
	count := 0
	for _, r := range reviews {
		id := r.ID
		if id == "" {
			id = uuid.New().String()
		}
		collectedAt := r.CollectedAt
		if collectedAt.IsZero() {
			collectedAt = now
		}
		if _, err := stmt.ExecContext(ctx,
			id, r.CompanyID, r.Source, r.ReviewerName, r.Rating,
			r.ReviewText, r.ReviewDate.UTC(), r.Verified, r.SentimentScore, collectedAt,
		); err != nil {
			return 0, eris.Wrap(err, "sqlite: insert review")
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit reviews")
	}
	return count, nil
}

func (s *SQLiteStore) ListReviews(ctx context.Context, companyID string, filter ReviewFilter) ([]model.Review, error) {
	query := `SELECT id, company_id, source, reviewer_name, rating, review_text, review_date, verified, sentiment_score, collected_at
	          FROM reviews WHERE company_id = ?`
	args := []any{companyID}

	if filter.Source != "" {
		query += ` AND source = ?`
		args = append(args, filter.Source)
	}
	query += ` ORDER BY review_date DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 1000
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list reviews")
	}
	defer rows.Close()

	var reviews []model.Review
	for rows.Next() {
		var r model.Review
		if err := rows.Scan(&r.ID, &r.CompanyID, &r.Source, &r.ReviewerName, &r.Rating, &r.ReviewText, &r.ReviewDate, &r.Verified, &r.SentimentScore, &r.CollectedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan review")
		}
		reviews = append(reviews, r)
	}
	return reviews, eris.Wrap(rows.Err(), "sqlite: list reviews iterate")
}

func (s *SQLiteStore) CountReviews(ctx context.Context, companyID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reviews WHERE company_id = ?`, companyID).Scan(&count)
	return count, eris.Wrap(err, "sqlite: count reviews")
}

func (s *SQLiteStore) InsertRawPage(ctx context.Context, page *model.RawPage) (*model.RawPage, error) {
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

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO raw_pages (id, company_id, source_type, source_url, content, collected_at, status) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.CompanyID, p.SourceType, p.SourceURL, p.Content, p.CollectedAt, p.Status,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert raw page")
	}
	return &p, nil
}

func (s *SQLiteStore) ListPendingRawPages(ctx context.Context, companyID string) ([]model.RawPage, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, company_id, source_type, source_url, content, collected_at, status
		 FROM raw_pages WHERE company_id = ? AND status = 'pending' ORDER BY collected_at`,
		companyID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list pending raw pages")
	}
	defer rows.Close()

	var pages []model.RawPage
	for rows.Next() {
		var p model.RawPage
		if err := rows.Scan(&p.ID, &p.CompanyID, &p.SourceType, &p.SourceURL, &p.Content, &p.CollectedAt, &p.Status); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan raw page")
		}
		pages = append(pages, p)
	}
	return pages, eris.Wrap(rows.Err(), "sqlite: list pending raw pages iterate")
}

func (s *SQLiteStore) SetRawPageStatus(ctx context.Context, pageID string, status string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE raw_pages SET status = ? WHERE id = ?`,
		status, pageID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: set raw page status %s", pageID)
	}
	return checkRowsAffected(res, "raw page", pageID)
}

func (s *SQLiteStore) InsertPromise(ctx context.Context, promise *model.Promise) (*model.Promise, error) {
	p := *promise
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.ExtractedAt.IsZero() {
		p.ExtractedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO value_propositions (id, company_id, source_type, source_url, extracted_text, category, job_type, gain_type, confidence, extracted_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.CompanyID, p.SourceType, p.SourceURL, p.ExtractedText, string(p.Category), p.JobType, p.GainType, p.Confidence, p.ExtractedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert promise")
	}
	return &p, nil
}

func (s *SQLiteStore) ListPromises(ctx context.Context, companyID string) ([]model.Promise, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, company_id, source_type, source_url, extracted_text, category, job_type, gain_type, confidence, extracted_at
		 FROM value_propositions WHERE company_id = ? ORDER BY extracted_at`,
		companyID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list promises")
	}
	defer rows.Close()

	var promises []model.Promise
	for rows.Next() {
		var p model.Promise
		if err := rows.Scan(&p.ID, &p.CompanyID, &p.SourceType, &p.SourceURL, &p.ExtractedText, &p.Category, &p.JobType, &p.GainType, &p.Confidence, &p.ExtractedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan promise")
		}
		promises = append(promises, p)
	}
	return promises, eris.Wrap(rows.Err(), "sqlite: list promises iterate")
}

func (s *SQLiteStore) SaveFeedback(ctx context.Context, feedback []model.FeedbackAnnotation) (int, error) {
	if len(feedback) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO customer_feedback (id, company_id, review_id, jobs_mentioned, pains_mentioned, gains_mentioned, sentiment, topics, analyzed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare insert feedback")
	}
	defer stmt.Close()

	now := time.Now().UTC()
	count := 0
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

		var topics any
		if len(f.Topics) > 0 {
			data, err := json.Marshal(f.Topics)
			if err != nil {
				return 0, eris.Wrap(err, "sqlite: marshal topics")
			}
			topics = string(data)
		}

		if _, err := stmt.ExecContext(ctx,
			id, f.CompanyID, f.ReviewID, string(jobs), string(pains), string(gains), f.Sentiment, topics, analyzedAt,
		); err != nil {
			return 0, eris.Wrap(err, "sqlite: insert feedback")
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit feedback")
	}
	return count, nil
}

func (s *SQLiteStore) ListFeedback(ctx context.Context, companyID string) ([]model.FeedbackAnnotation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT f.id, f.company_id, f.review_id, f.jobs_mentioned, f.pains_mentioned, f.gains_mentioned, f.sentiment, f.topics, f.analyzed_at, COALESCE(r.review_text, '')
		 FROM customer_feedback f
		 LEFT JOIN reviews r ON r.id = f.review_id
		 WHERE f.company_id = ?
		 ORDER BY f.analyzed_at`,
		companyID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list feedback")
	}
	defer rows.Close()

	var feedback []model.FeedbackAnnotation
	for rows.Next() {
		var f model.FeedbackAnnotation
		var jobs, pains, gains string
		var topics sql.NullString
		if err := rows.Scan(&f.ID, &f.CompanyID, &f.ReviewID, &jobs, &pains, &gains, &f.Sentiment, &topics, &f.AnalyzedAt, &f.ReviewText); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan feedback")
		}
		f.JobsMentioned = model.NormalizeMentions([]byte(jobs))
		f.PainsMentioned = model.NormalizeMentions([]byte(pains))
		f.GainsMentioned = model.NormalizeMentions([]byte(gains))
		if topics.Valid && topics.String != "" {
			if err := json.Unmarshal([]byte(topics.String), &f.Topics); err != nil {
				return nil, eris.Wrap(err, "sqlite: unmarshal topics")
			}
		}
		feedback = append(feedback, f)
	}
	return feedback, eris.Wrap(rows.Err(), "sqlite: list feedback iterate")
}

func (s *SQLiteStore) DeleteFeedbackForCompany(ctx context.Context, companyID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM customer_feedback WHERE company_id = ?`, companyID)
	return eris.Wrap(err, "sqlite: delete feedback")
}

func (s *SQLiteStore) CreateAudit(ctx context.Context, audit *model.Audit) (*model.Audit, error) {
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

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audits (id, company_id, status, start_date, time_period_start, time_period_end, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.CompanyID, string(a.Status), a.StartDate, a.TimePeriodStart, a.TimePeriodEnd, a.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert audit")
	}
	return &a, nil
}

func (s *SQLiteStore) GetAudit(ctx context.Context, auditID string) (*model.Audit, error) {
	var a model.Audit
	err := s.db.QueryRowContext(ctx,
		`SELECT id, company_id, status, start_date, end_date, time_period_start, time_period_end, created_at
		 FROM audits WHERE id = ?`,
		auditID,
	).Scan(&a.ID, &a.CompanyID, &a.Status, &a.StartDate, &a.EndDate, &a.TimePeriodStart, &a.TimePeriodEnd, &a.CreatedAt)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get audit %s", auditID)
	}
	return &a, nil
}

func (s *SQLiteStore) ListAudits(ctx context.Context, companyID string) ([]model.Audit, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, company_id, status, start_date, end_date, time_period_start, time_period_end, created_at
		 FROM audits WHERE company_id = ? ORDER BY created_at DESC`,
		companyID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list audits")
	}
	defer rows.Close()

	var audits []model.Audit
	for rows.Next() {
		var a model.Audit
		if err := rows.Scan(&a.ID, &a.CompanyID, &a.Status, &a.StartDate, &a.EndDate, &a.TimePeriodStart, &a.TimePeriodEnd, &a.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan audit")
		}
		audits = append(audits, a)
	}
	return audits, eris.Wrap(rows.Err(), "sqlite: list audits iterate")
}

func (s *SQLiteStore) UpdateAuditStatus(ctx context.Context, auditID string, status model.AuditStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE audits SET status = ? WHERE id = ?`,
		string(status), auditID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update audit status %s", auditID)
	}
	return checkRowsAffected(res, "audit", auditID)
}

func (s *SQLiteStore) FinishAudit(ctx context.Context, auditID string, status model.AuditStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE audits SET status = ?, end_date = ? WHERE id = ?`,
		string(status), time.Now().UTC(), auditID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: finish audit %s", auditID)
	}
	return checkRowsAffected(res, "audit", auditID)
}

func (s *SQLiteStore) SaveAuditScore(ctx context.Context, score *model.AuditScore) (*model.AuditScore, error) {
	sc := *score
	if sc.ID == "" {
		sc.ID = uuid.New().String()
	}
	if sc.AuditDate.IsZero() {
		sc.AuditDate = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_scores (id, company_id, audit_id, audit_date, overall_score, jobs_score, pains_score, gains_score, statistical_significance, sample_size)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sc.ID, sc.CompanyID, sc.AuditID, sc.AuditDate, sc.OverallScore, sc.JobsScore, sc.PainsScore, sc.GainsScore, sc.StatisticalSignificance, sc.SampleSize,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert audit score")
	}
	return &sc, nil
}

func (s *SQLiteStore) GetAuditScore(ctx context.Context, auditID string) (*model.AuditScore, error) {
	var sc model.AuditScore
	err := s.db.QueryRowContext(ctx,
		`SELECT id, company_id, audit_id, audit_date, overall_score, jobs_score, pains_score, gains_score, statistical_significance, sample_size
		 FROM audit_scores WHERE audit_id = ? ORDER BY audit_date DESC, rowid DESC LIMIT 1`,
		auditID,
	).Scan(&sc.ID, &sc.CompanyID, &sc.AuditID, &sc.AuditDate, &sc.OverallScore, &sc.JobsScore, &sc.PainsScore, &sc.GainsScore, &sc.StatisticalSignificance, &sc.SampleSize)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "sqlite: get audit score %s", auditID)
	}
	return &sc, nil
}

func (s *SQLiteStore) ListAuditScores(ctx context.Context, companyID string) ([]model.AuditScore, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, company_id, audit_id, audit_date, overall_score, jobs_score, pains_score, gains_score, statistical_significance, sample_size
		 FROM audit_scores WHERE company_id = ? ORDER BY audit_date DESC`,
		companyID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list audit scores")
	}
	defer rows.Close()

	var scores []model.AuditScore
	for rows.Next() {
		var sc model.AuditScore
		if err := rows.Scan(&sc.ID, &sc.CompanyID, &sc.AuditID, &sc.AuditDate, &sc.OverallScore, &sc.JobsScore, &sc.PainsScore, &sc.GainsScore, &sc.StatisticalSignificance, &sc.SampleSize); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan audit score")
		}
		scores = append(scores, sc)
	}
	return scores, eris.Wrap(rows.Err(), "sqlite: list audit scores iterate")
}

func (s *SQLiteStore) DeleteGapsForAudit(ctx context.Context, auditID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM gaps WHERE audit_id = ?`, auditID)
	return eris.Wrap(err, "sqlite: delete gaps")
}

func (s *SQLiteStore) InsertGap(ctx context.Context, gap *model.Gap) (*model.Gap, error) {
	g := *gap
	if g.ID == "" {
		g.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO gaps (id, company_id, audit_id, gap_type, gap_description, gap_severity, promise_text, reality_text, impact_score, priority)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.CompanyID, g.AuditID, string(g.GapType), g.Description, string(g.Severity), g.PromiseText, g.RealityText, g.ImpactScore, g.Priority,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert gap")
	}
	return &g, nil
}

func (s *SQLiteStore) ListGaps(ctx context.Context, auditID string) ([]model.Gap, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, company_id, audit_id, gap_type, gap_description, gap_severity, promise_text, reality_text, impact_score, priority
		 FROM gaps WHERE audit_id = ? ORDER BY priority`,
		auditID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list gaps")
	}
	defer rows.Close()

	var gaps []model.Gap
	for rows.Next() {
		var g model.Gap
		if err := rows.Scan(&g.ID, &g.CompanyID, &g.AuditID, &g.GapType, &g.Description, &g.Severity, &g.PromiseText, &g.RealityText, &g.ImpactScore, &g.Priority); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan gap")
		}
		gaps = append(gaps, g)
	}
	return gaps, eris.Wrap(rows.Err(), "sqlite: list gaps iterate")
}
