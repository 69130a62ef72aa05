package model

import "time"

// Review is a single piece of customer-generated feedback collected from an
// external source (app store, review site, marketplace).
type Review struct {
	ID             string    `json:"id"`
	CompanyID      string    `json:"company_id"`
	Source         string    `json:"source"`
	ReviewerName   string    `json:"reviewer_name,omitempty"`
	Rating         *float64  `json:"rating,omitempty"`
	ReviewText     string    `json:"review_text"`
	ReviewDate     time.Time `json:"review_date"`
	Verified       bool      `json:"verified"`
	SentimentScore *float64  `json:"sentiment_score,omitempty"`
	CollectedAt    time.Time `json:"collected_at"`
}

// RawPage is a snapshot of company-controlled text (website page, store
// listing) awaiting value-proposition extraction.
type RawPage struct {
	ID          string    `json:"id"`
	CompanyID   string    `json:"company_id"`
	SourceType  string    `json:"source_type"`
	SourceURL   string    `json:"source_url"`
	Content     string    `json:"content"`
	CollectedAt time.Time `json:"collected_at"`
	Status      string    `json:"status"`
}

// Company-controlled source types.
const (
	SourceWebsite     = "website"
	SourceAppStore    = "app_store"
	SourceGooglePlay  = "google_play"
	SourceSocialMedia = "social_media"
)

// RawPage status values.
const (
	RawPagePending   = "pending"
	RawPageProcessed = "processed"
	RawPageFailed    = "failed"
)
