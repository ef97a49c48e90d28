package models

import (
	"time"
)

// CampaignRecord is one saved tracking link. FinalURL is derived from the
// other fields at creation time and doubles as the (non-unique) deletion key.
type CampaignRecord struct {
	Timestamp   time.Time `json:"timestamp"`
	UserEmail   string    `json:"user_email"`
	InitialURL  string    `json:"initial_url"`
	UTMSource   string    `json:"utm_source"`
	UTMMedium   string    `json:"utm_medium"`
	UTMCampaign string    `json:"utm_campaign"`
	UTMContent  string    `json:"utm_content,omitempty"`
	UTMTerm     string    `json:"utm_term,omitempty"`
	FinalURL    string    `json:"final_url"`
}

// SaveLinkInput only requires the base URL to be non-empty. The composer
// is additive over whatever string is given, so no URL syntax is enforced.
type SaveLinkInput struct {
	BaseURL  string `json:"base_url" binding:"required"`
	Source   string `json:"source" binding:"required"`
	Medium   string `json:"medium" binding:"required"`
	Campaign string `json:"campaign" binding:"required"`
	Content  string `json:"content,omitempty"`
	Term     string `json:"term,omitempty"`
}

// QueryFilter narrows a history query. Source and Medium are exact matches,
// Campaign is a case-insensitive substring match. Zero values mean "no filter".
type QueryFilter struct {
	Limit    int
	Source   string
	Medium   string
	Campaign string
}

// FilterChoices feeds the history view's filter dropdowns.
type FilterChoices struct {
	Sources []string `json:"sources"`
	Mediums []string `json:"mediums"`
}
