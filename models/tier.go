package models

import (
	"fmt"
	"strings"
)

// Tier ist die grobe manuelle Einstufung von A (beste) bis D.
type Tier string

const (
	TierA Tier = "A"
	TierB Tier = "B"
	TierC Tier = "C"
	TierD Tier = "D"
)

// DefaultTier wird beim Import gesetzt.
const DefaultTier = TierC

// Index liefert die Sortierposition; unbekannte Werte landen bei D.
func (t Tier) Index() int {
	switch t {
	case TierA:
		return 0
	case TierB:
		return 1
	case TierC:
		return 2
	default:
		return 3
	}
}

// Valid meldet, ob t eine der vier Stufen ist.
func (t Tier) Valid() bool {
	switch t {
	case TierA, TierB, TierC, TierD:
		return true
	}
	return false
}

// ParseTier akzeptiert genau "A" bis "D" (umgebende Leerzeichen werden entfernt).
func ParseTier(s string) (Tier, error) {
	t := Tier(strings.TrimSpace(s))
	if !t.Valid() {
		return "", fmt.Errorf("invalid tier %q", s)
	}
	return t, nil
}
