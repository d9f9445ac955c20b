package services

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// MaxTagLen ist die maximale Länge eines Tags in Zeichen.
const MaxTagLen = 30

// maxSanitizePasses begrenzt das wiederholte Entfernen verschachtelt escapeter Markups.
const maxSanitizePasses = 8

// markupTagRe erkennt vollständige Tags, Kommentare und Doctypes.
var markupTagRe = regexp.MustCompile(`<[A-Za-z/!?][^<>]*>`)

// SanitizeTag entfernt Markup, trimmt und kürzt auf MaxTagLen Zeichen.
// Das Ergebnis ist ein Fixpunkt: erneutes Bereinigen ändert es nicht mehr.
func SanitizeTag(text string) string {
	cur := text
	for i := 0; i < maxSanitizePasses; i++ {
		next := sanitizePass(cur)
		if next == cur {
			return next
		}
		cur = next
	}
	// Ohne Fixpunkt bleibt kein verwertbarer Text übrig.
	return ""
}

func sanitizePass(text string) string {
	plain := text
	if strings.ContainsAny(text, "<&") {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(protectBareLT(text)))
		if err == nil {
			plain = doc.Text()
		}
	}
	plain = strings.Join(strings.Fields(plain), " ")
	if r := []rune(plain); len(r) > MaxTagLen {
		plain = strings.TrimSpace(string(r[:MaxTagLen]))
	}
	return plain
}

// protectBareLT escapet jedes "<", das keinen vollständigen Tag einleitet ("AI<ML").
func protectBareLT(text string) string {
	starts := map[int]bool{}
	for _, loc := range markupTagRe.FindAllStringIndex(text, -1) {
		starts[loc[0]] = true
	}
	var b strings.Builder
	for i := 0; i < len(text); i++ {
		if text[i] == '<' && !starts[i] {
			b.WriteString("&lt;")
			continue
		}
		b.WriteByte(text[i])
	}
	return b.String()
}

func indexOf(tags []string, tag string) int {
	for i, t := range tags {
		if t == tag {
			return i
		}
	}
	return -1
}
