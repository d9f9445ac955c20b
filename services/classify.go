package services

import (
	"strings"
)

// FounderClass ist das Ergebnis der Gründer-Klassifizierung einer CSV-Zeile.
type FounderClass int

const (
	// NotFounder: der Titel deutet auf keine Gründer- oder C-Level-Rolle hin.
	NotFounder FounderClass = iota
	// Ambiguous: der Titel passt, der Name sieht aber nach Rauschen aus.
	Ambiguous
	// Founder: Titel und Name bestehen alle Prüfungen.
	Founder
)

func (c FounderClass) String() string {
	switch c {
	case Founder:
		return "founder"
	case Ambiguous:
		return "ambiguous"
	default:
		return "not_founder"
	}
}

const maxFounderNameLen = 50

var founderTitles = map[string]bool{
	"Founder":                  true,
	"Co-Founder":               true,
	"Co-founder":               true,
	"Cofounder":                true,
	"Founder & CEO":            true,
	"CEO":                      true,
	"CTO":                      true,
	"COO":                      true,
	"Chief Executive Officer":  true,
	"Chief Technology Officer": true,
	"Chief Operating Officer":  true,
}

var founderTitleMarkers = []string{"Founder", "founder", "CEO", "CTO", "COO"}

// Schlüsselwörter, an denen sich Werbeslogans in der Namensspalte erkennen lassen.
var marketingKeywords = []string{
	"platform",
	"powered",
	"solution",
	"automat",
	"software",
	"agent",
	"startup",
	"helps",
	"building",
	"http",
	"www.",
	"@",
	" for ",
	" your ",
	" the ",
	" with ",
}

// IsFounderTitle meldet, ob der Titel eine Gründer- oder Führungsrolle beschreibt.
func IsFounderTitle(title string) bool {
	title = strings.TrimSpace(title)
	if founderTitles[title] {
		return true
	}
	for _, m := range founderTitleMarkers {
		if strings.Contains(title, m) {
			return true
		}
	}
	return false
}

// LooksLikePersonName wendet die Rauschfilter auf einen Kandidatennamen an.
func LooksLikePersonName(name, company string) bool {
	name = strings.TrimSpace(name)
	if name == "" || name == company {
		return false
	}
	if len([]rune(name)) > maxFounderNameLen {
		return false
	}
	if !strings.Contains(name, " ") {
		return false
	}
	padded := " " + strings.ToLower(name) + " "
	for _, kw := range marketingKeywords {
		if strings.Contains(padded, kw) {
			return false
		}
	}
	return true
}

// ClassifyFounder entscheidet, ob eine Zeile (Titel, Name) einen Gründer beschreibt.
func ClassifyFounder(title, name, company string) FounderClass {
	if !IsFounderTitle(title) {
		return NotFounder
	}
	if !LooksLikePersonName(name, company) {
		return Ambiguous
	}
	return Founder
}
