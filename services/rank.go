package services

import (
	"math"
	"sort"

	"github.com/d3ming/ycx25-voter/models"
)

// MinRank ist der beste vergebbare Rang.
const MinRank = 1

// EffectiveRank behandelt unbewertete Firmen (Rang <= 0) als schlechteste.
func EffectiveRank(rank int) int {
	if rank > 0 {
		return rank
	}
	return math.MaxInt
}

// ClampRank begrenzt einen gesetzten Rang nach unten auf MinRank.
func ClampRank(rank int) int {
	if rank < MinRank {
		return MinRank
	}
	return rank
}

// NextRank schiebt um eine Position nach hinten; die erste Stimme springt von 0 auf 2.
func NextRank(rank int) int {
	if rank <= 0 {
		return 2
	}
	return rank + 1
}

// PrevRank schiebt um eine Position nach vorne; die erste Stimme springt von 0 auf 1.
func PrevRank(rank int) int {
	if rank <= 0 {
		return MinRank
	}
	return ClampRank(rank - 1)
}

func sortKeyLess(a, b models.Company) bool {
	if ta, tb := a.Tier.Index(), b.Tier.Index(); ta != tb {
		return ta < tb
	}
	return EffectiveRank(a.Rank) < EffectiveRank(b.Rank)
}

// SortCompanies sortiert stabil nach (Stufe, effektiver Rang).
func SortCompanies(companies []models.Company) {
	sort.SliceStable(companies, func(i, j int) bool {
		return sortKeyLess(companies[i], companies[j])
	})
}
