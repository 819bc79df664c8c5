package models

import (
	"encoding/json"
	"strings"
	"time"

	"gorm.io/datatypes"
)

// Company repräsentiert einen Nachfolge-Kandidaten aus dem Zielbestand.
// Die Tabelle wird vom Import-Prozess befüllt und hier nur gelesen.
type Company struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CompanyName    string `json:"company_name"`
	AddressCity    string `json:"address_city"`
	AddressCountry string `json:"address_country"`
	WZDescription  string `json:"wz_description" gorm:"column:wz_description;type:text"`

	Tel     string `json:"tel,omitempty"`
	Fax     string `json:"fax,omitempty"`
	Email   string `json:"email,omitempty"`
	Website string `json:"website,omitempty"`

	// Gesellschafter: strukturiert (JSON) oder als kommagetrennter Text
	ShareholderDetails datatypes.JSON `json:"shareholder_details,omitempty" gorm:"type:jsonb"`
	ShareholderNames   string         `json:"shareholder_names,omitempty" gorm:"type:text"`
	ShareholderDOBs    string         `json:"shareholder_dobs,omitempty" gorm:"column:shareholder_dobs;type:text"`
}

func (Company) TableName() string { return "companies" }

// ShareholderDetail ist ein Eintrag aus dem strukturierten Gesellschafter-Feld.
type ShareholderDetail struct {
	Name       string  `json:"name,omitempty"`
	DOB        string  `json:"dob,omitempty"`
	Percentage float64 `json:"percentage,omitempty"`
}

// ShareholderList liefert die Gesellschafternamen. Strukturierte Details haben
// Vorrang vor dem kommagetrennten Textfeld.
func (c *Company) ShareholderList() []string {
	if len(c.ShareholderDetails) > 0 {
		var details []ShareholderDetail
		if err := json.Unmarshal(c.ShareholderDetails, &details); err == nil {
			var names []string
			for _, d := range details {
				if d.Name != "" {
					names = append(names, d.Name)
				}
			}
			if len(names) > 0 {
				return names
			}
		}
	}
	var names []string
	for _, part := range strings.Split(c.ShareholderNames, ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}
