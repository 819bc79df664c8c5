package models

import (
	"time"
)

// Status des Medien-Moduls.
const (
	SearchPending   = "pending"
	SearchSearching = "searching"
	SearchCompleted = "completed"
	SearchFailed    = "failed"
)

// Herkunft einer Medienerwähnung.
const (
	MentionCompany     = "company"
	MentionShareholder = "shareholder"
	MentionIndustry    = "industry"
)

// MediaSearchStatus ist die eine Statuszeile des Medien-Moduls pro Firma.
type MediaSearchStatus struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CompanyID uint `json:"company_id" gorm:"uniqueIndex;not null"`

	SearchStatus   string     `json:"search_status" gorm:"index;default:pending"`
	SearchError    string     `json:"search_error,omitempty" gorm:"type:text"`
	MentionsFound  int        `json:"mentions_found"`
	MediaSummary   string     `json:"media_summary,omitempty" gorm:"type:text"`
	LastSearchedAt *time.Time `json:"last_searched_at,omitempty"`
}

func (MediaSearchStatus) TableName() string { return "company_media_searches" }

// MediaMention ist ein deduplizierter Suchtreffer. Der Bestand einer Firma
// wird pro Lauf vollständig ersetzt (delete-then-insert), nie gemerged.
type MediaMention struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CompanyID uint   `json:"company_id" gorm:"index:idx_media_mentions_company_url,unique;not null"`
	URL       string `json:"url" gorm:"index:idx_media_mentions_company_url,unique;size:2048;not null"`

	Title       string     `json:"title" gorm:"type:text"`
	Source      string     `json:"source,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	Snippet     string     `json:"snippet,omitempty" gorm:"type:text"`

	// Sentiment ist für eine spätere Klassifikation reserviert.
	Sentiment          string `json:"sentiment" gorm:"default:unknown"`
	MentionType        string `json:"mention_type" gorm:"index"`
	RelatedShareholder string `json:"related_shareholder,omitempty"`
	SearchQuery        string `json:"search_query,omitempty" gorm:"type:text"`
}

func (MediaMention) TableName() string { return "company_media_mentions" }
