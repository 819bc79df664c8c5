package models

import (
	"time"
)

// Modulstatus innerhalb einer Recherche.
const (
	ModuleNotStarted = "not_started"
	ModuleInProgress = "in_progress"
	ModuleCompleted  = "completed"
)

// Gesamtstatus einer Recherche.
const (
	OverallNotStarted = "not_started"
	OverallInProgress = "in_progress"
	OverallCompleted  = "completed"
	OverallPartial    = "partial"
	OverallFailed     = "failed"
)

// ResearchStatus ist die eine Statuszeile pro Firma, die das Frontend pollt.
// Jeder neue Trigger überschreibt sie vollständig, Historie wird nicht geführt.
type ResearchStatus struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CompanyID uint `json:"company_id" gorm:"uniqueIndex;not null"`

	WebsiteStatus      string `json:"website_status" gorm:"default:not_started"`
	MediaStatus        string `json:"media_status" gorm:"default:not_started"`
	ShareholdersStatus string `json:"shareholders_status" gorm:"default:not_started"`
	OverallStatus      string `json:"overall_status" gorm:"index;default:not_started"`

	TriggeredAt *time.Time `json:"triggered_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func (ResearchStatus) TableName() string { return "company_research_status" }
