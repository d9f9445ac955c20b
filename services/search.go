package services

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/d3ming/ycx25-voter/models"
)

// SearchFilter beschreibt eine Suche über Freitext und/oder Tags.
type SearchFilter struct {
	Query string
	Tags  []string
}

func (f SearchFilter) empty() bool {
	return strings.TrimSpace(f.Query) == "" && len(f.cleanTags()) == 0
}

func (f SearchFilter) cleanTags() []string {
	var out []string
	for _, t := range f.Tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// matcher faltet Groß-/Kleinschreibung einmal pro Suche.
type matcher struct {
	fold  cases.Caser
	query string
	tags  map[string]bool
}

func newMatcher(f SearchFilter) *matcher {
	m := &matcher{fold: cases.Fold(), tags: map[string]bool{}}
	m.query = m.fold.String(strings.TrimSpace(f.Query))
	for _, t := range f.cleanTags() {
		m.tags[m.fold.String(t)] = true
	}
	return m
}

func (m *matcher) matchesQuery(name string, founders []models.Founder) bool {
	if m.query == "" {
		return false
	}
	if strings.Contains(m.fold.String(name), m.query) {
		return true
	}
	for _, f := range founders {
		if strings.Contains(m.fold.String(f.Name), m.query) {
			return true
		}
	}
	return false
}

func (m *matcher) matchesTags(tags []string) bool {
	if len(m.tags) == 0 {
		return false
	}
	for _, t := range tags {
		if m.tags[m.fold.String(t)] {
			return true
		}
	}
	return false
}

// Match: Freitext trifft Name oder Gründer ODER ein Tag trifft einen Filter-Tag.
func (m *matcher) Match(name string, founders []models.Founder, tags []string) bool {
	return m.matchesQuery(name, founders) || m.matchesTags(tags)
}
