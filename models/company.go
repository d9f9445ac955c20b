package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Unknown steht für nicht ableitbare Gründungsjahre und Standorte.
const Unknown = "Unknown"

// Founder ist ein Gründer bzw. eine Führungskraft einer Firma.
type Founder struct {
	Name     string `json:"name" yaml:"name"`
	LinkedIn string `json:"linkedin" yaml:"linkedin"`
}

// Company repräsentiert eine Firma aus dem Batch-Export inklusive Bewertung.
type Company struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name             string  `json:"name" gorm:"uniqueIndex;not null"`
	URL              string  `json:"url"`
	Website          string  `json:"website"`
	Description      string  `json:"description" gorm:"type:text"`
	ShortDescription string  `json:"short_description" gorm:"type:text"`
	FoundedYear      string  `json:"founded_year" gorm:"default:'Unknown'"`
	Location         string  `json:"location" gorm:"default:'Unknown'"`
	CompanyLinkedIn  *string `json:"company_linkedin,omitempty"`

	// Founders und Tags liegen als JSON-Listen in der Tabelle.
	Founders datatypes.JSON `json:"-"`
	Tags     datatypes.JSON `json:"-"`

	// Rank 0 bedeutet "noch nicht bewertet", sonst gilt: kleiner ist besser.
	Rank int  `json:"rank" gorm:"not null;default:0;index"`
	Tier Tier `json:"tier" gorm:"size:1;not null;default:'C';index"`
}

// TableName gibt den expliziten Tabellennamen für GORM an.
func (Company) TableName() string {
	return "companies"
}

// FounderList dekodiert die Gründerliste. Kaputte Payloads ergeben eine leere Liste.
func (c *Company) FounderList() ([]Founder, error) {
	founders := []Founder{}
	if len(c.Founders) == 0 {
		return founders, nil
	}
	if err := json.Unmarshal(c.Founders, &founders); err != nil {
		return []Founder{}, err
	}
	return founders, nil
}

// SetFounders kodiert die Gründerliste in die JSON-Spalte.
func (c *Company) SetFounders(founders []Founder) {
	if founders == nil {
		founders = []Founder{}
	}
	b, _ := json.Marshal(founders)
	c.Founders = datatypes.JSON(b)
}

// TagList dekodiert die Tags. Kaputte Payloads ergeben eine leere Liste.
func (c *Company) TagList() ([]string, error) {
	tags := []string{}
	if len(c.Tags) == 0 {
		return tags, nil
	}
	if err := json.Unmarshal(c.Tags, &tags); err != nil {
		return []string{}, err
	}
	return tags, nil
}

// SetTags kodiert die Tags in die JSON-Spalte.
func (c *Company) SetTags(tags []string) {
	if tags == nil {
		tags = []string{}
	}
	b, _ := json.Marshal(tags)
	c.Tags = datatypes.JSON(b)
}
