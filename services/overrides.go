package services

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/d3ming/ycx25-voter/models"
)

// Override korrigiert die Daten einer einzelnen Firma nach dem allgemeinen Import.
// Nur gesetzte Felder werden übernommen.
type Override struct {
	Company         string           `yaml:"company"`
	Founders        []models.Founder `yaml:"founders,omitempty"`
	Description     *string          `yaml:"description,omitempty"`
	Location        *string          `yaml:"location,omitempty"`
	FoundedYear     *string          `yaml:"founded_year,omitempty"`
	CompanyLinkedIn *string          `yaml:"company_linkedin,omitempty"`
}

// LoadOverrides liest die Override-Tabelle aus einer YAML-Datei. Ein leerer Pfad ergibt keine Overrides.
func LoadOverrides(path string) ([]Override, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading overrides: %w", err)
	}
	return ParseOverrides(data)
}

// ParseOverrides dekodiert eine YAML-Liste von Overrides.
func ParseOverrides(data []byte) ([]Override, error) {
	var overrides []Override
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("parsing overrides: %w", err)
	}
	for i, o := range overrides {
		if o.Company == "" {
			return nil, fmt.Errorf("override #%d has no company", i+1)
		}
	}
	return overrides, nil
}

// ApplyOverrides wendet die Overrides an und liefert die Namen, zu denen keine Firma existiert.
func ApplyOverrides(companies []models.Company, overrides []Override) []string {
	byName := make(map[string]int, len(companies))
	for i, c := range companies {
		byName[c.Name] = i
	}

	var unknown []string
	for _, o := range overrides {
		i, ok := byName[o.Company]
		if !ok {
			unknown = append(unknown, o.Company)
			continue
		}
		c := &companies[i]
		if o.Founders != nil {
			var kept []models.Founder
			for _, f := range o.Founders {
				if f.Name != "" && f.Name != c.Name && !hasFounder(kept, f.Name) {
					kept = append(kept, f)
				}
			}
			c.SetFounders(kept)
		}
		if o.Description != nil {
			c.Description = *o.Description
			c.ShortDescription = ShortDescription(c.Description)
			if o.FoundedYear == nil {
				c.FoundedYear = FoundedYear(c.Description)
			}
			if o.Location == nil {
				c.Location = Location(c.Description)
			}
		}
		if o.Location != nil {
			c.Location = *o.Location
		}
		if o.FoundedYear != nil {
			c.FoundedYear = *o.FoundedYear
		}
		if o.CompanyLinkedIn != nil {
			link := *o.CompanyLinkedIn
			c.CompanyLinkedIn = &link
		}
	}
	return unknown
}
