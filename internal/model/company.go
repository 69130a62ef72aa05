// Package model defines the domain types shared across the audit pipeline.
package model

import "time"

// Company represents an audited company.
type Company struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Industry          string    `json:"industry,omitempty"`
	WebsiteURL        string    `json:"website_url"`
	Description       string    `json:"description,omitempty"`
	AppStoreID        string    `json:"app_store_id,omitempty"`
	GooglePlayPackage string    `json:"google_play_package,omitempty"`
	CreatedBy         string    `json:"created_by,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// User is an account that owns companies and triggers audits.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}
