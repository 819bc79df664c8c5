package models

import (
	"time"

	"gorm.io/datatypes"
)

// Crawl-Status des Website-Moduls.
const (
	CrawlPending   = "pending"
	CrawlCrawling  = "crawling"
	CrawlCompleted = "completed"
	CrawlFailed    = "failed"
	CrawlNotFound  = "not_found"
)

// WebsiteProfile ist das Ergebnis des Website-Moduls, eine Zeile pro Firma.
// Jeder Lauf überschreibt die Zeile vollständig (kein Merge).
type WebsiteProfile struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CompanyID uint `json:"company_id" gorm:"uniqueIndex;not null"`

	WebsiteURL  string `json:"website_url,omitempty"`
	Domain      string `json:"domain,omitempty" gorm:"index"`
	ImpressumURL string `json:"impressum_url,omitempty"`

	CompanyDescription string         `json:"company_description,omitempty" gorm:"type:text"`
	ProductsServices   datatypes.JSON `json:"products_services,omitempty" gorm:"type:jsonb"`
	TeamMembers        datatypes.JSON `json:"team_members,omitempty" gorm:"type:jsonb"`

	ContactEmail string `json:"contact_email,omitempty"`
	ContactPhone string `json:"contact_phone,omitempty"`
	ContactFax   string `json:"contact_fax,omitempty"`

	SocialLinks   datatypes.JSON `json:"social_links,omitempty" gorm:"type:jsonb"`
	ImpressumData datatypes.JSON `json:"impressum_data,omitempty" gorm:"type:jsonb"`
	SearchResults datatypes.JSON `json:"search_results,omitempty" gorm:"type:jsonb"`
	RawPages      datatypes.JSON `json:"raw_pages,omitempty" gorm:"type:jsonb"`

	CrawlStatus string     `json:"crawl_status" gorm:"index;default:pending"`
	CrawlError  string     `json:"crawl_error,omitempty" gorm:"type:text"`
	CrawledAt   *time.Time `json:"crawled_at,omitempty"`
}

func (WebsiteProfile) TableName() string { return "company_website_profiles" }

// TeamMember ist ein Eintrag im team_members-JSON.
type TeamMember struct {
	Name string `json:"name"`
	Role string `json:"role,omitempty"`
}

// RawPage ist ein Auszug einer gecrawlten Seite im raw_pages-JSON.
type RawPage struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	TextExcerpt string `json:"text_excerpt"`
}

// SitelinkRef ist ein Unterseiten-Link aus einem Suchergebnis.
type SitelinkRef struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}

// StoredSearchResult ist ein Eintrag im search_results-JSON.
type StoredSearchResult struct {
	Title     string        `json:"title"`
	Link      string        `json:"link"`
	Snippet   string        `json:"snippet"`
	Position  int           `json:"position"`
	Sitelinks []SitelinkRef `json:"sitelinks"`
}
