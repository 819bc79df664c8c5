package models

import (
	"time"

	"gorm.io/datatypes"
)

// Status der Gesellschafter-Anreicherung.
const (
	EnrichmentPending   = "pending"
	EnrichmentEnriching = "enriching"
	EnrichmentCompleted = "completed"
	EnrichmentFailed    = "failed"
	EnrichmentIsCompany = "is_company"
)

// ShareholderBackground ist das Rechercheergebnis für einen Gesellschafter,
// natürlicher Schlüssel (company_id, shareholder_name).
type ShareholderBackground struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CompanyID       uint   `json:"company_id" gorm:"index:idx_shareholder_bg_key,unique;not null"`
	ShareholderName string `json:"shareholder_name" gorm:"index:idx_shareholder_bg_key,unique;size:512;not null"`

	ShareholderDOB string `json:"shareholder_dob,omitempty"`

	OtherCompanies        datatypes.JSON `json:"other_companies,omitempty" gorm:"type:jsonb"`
	HandelsregisterEntries datatypes.JSON `json:"handelsregister_entries,omitempty" gorm:"type:jsonb"`
	CrossReferences       datatypes.JSON `json:"cross_references,omitempty" gorm:"type:jsonb"`
	PublicRoles           datatypes.JSON `json:"public_roles,omitempty" gorm:"type:jsonb"`

	LinkedInURL string `json:"linkedin_url,omitempty" gorm:"column:linkedin_url"`
	XingURL     string `json:"xing_url,omitempty"`
	BioSummary  string `json:"bio_summary,omitempty" gorm:"type:text"`

	EnrichmentStatus string     `json:"enrichment_status" gorm:"index;default:pending"`
	EnrichmentError  string     `json:"enrichment_error,omitempty" gorm:"type:text"`
	EnrichedAt       *time.Time `json:"enriched_at,omitempty"`
}

func (ShareholderBackground) TableName() string { return "shareholder_backgrounds" }

// OtherCompany ist ein Eintrag im other_companies-JSON.
type OtherCompany struct {
	Name      string `json:"name"`
	Role      string `json:"role,omitempty"`
	HRBNumber string `json:"hrb_number,omitempty"`
	Status    string `json:"status,omitempty"`
	SourceURL string `json:"source_url,omitempty"`
	Snippet   string `json:"snippet,omitempty"`
}

// RegisterEntry ist ein Handelsregister-Fund im handelsregister_entries-JSON.
type RegisterEntry struct {
	HRBNumber   string `json:"hrb_number"`
	Court       string `json:"court,omitempty"`
	CompanyName string `json:"company_name,omitempty"`
	Role        string `json:"role,omitempty"`
	Source      string `json:"source,omitempty"`
	Context     string `json:"context,omitempty"`
}

// CrossReference zeigt auf eine andere Firma im Bestand mit demselben
// Gesellschafternamen.
type CrossReference struct {
	CompanyID   uint   `json:"company_id"`
	CompanyName string `json:"company_name"`
}
