// services/ranks.go - Rank ladder
package services

// Rank is one step of the progression ladder.
type Rank struct {
	Name  string `json:"name"`
	MinXP int    `json:"min_xp"`
	Icon  string `json:"icon"`
}

// rankLadder is ordered ascending by MinXP. RankForXP walks it from the
// top, so thresholds must stay strictly increasing.
var rankLadder = []Rank{
	{Name: "Germoglio", MinXP: 0, Icon: "🌱"},
	{Name: "Cadetto", MinXP: 200, Icon: "🎓"},
	{Name: "Cavaliere", MinXP: 1000, Icon: "⚔️"},
	{Name: "Guardiano", MinXP: 2200, Icon: "🛡️"},
	{Name: "Campione", MinXP: 3800, Icon: "🏆"},
	{Name: "Leggenda", MinXP: 6000, Icon: "🌟"},
	{Name: "Maestro", MinXP: 9000, Icon: "👑"},
	{Name: "GranMaestro", MinXP: 13000, Icon: "💎"},
	{Name: "Immortale", MinXP: 18000, Icon: "🔥"},
}

// RankForXP returns the highest rank whose threshold the XP meets.
// Negative XP clamps to the first rank.
func RankForXP(totalXP int) Rank {
	current := rankLadder[0]
	for _, r := range rankLadder {
		if totalXP >= r.MinXP {
			current = r
		} else {
			break
		}
	}
	return current
}

// NextRank returns the rank after the current one for the given XP, or
// nil when the ladder is exhausted.
func NextRank(totalXP int) *Rank {
	for i := range rankLadder {
		if totalXP < rankLadder[i].MinXP {
			r := rankLadder[i]
			return &r
		}
	}
	return nil
}

// RankProgress returns progress toward the next rank in [0,1]. At the
// top rank progress is always 1.
func RankProgress(totalXP int) float64 {
	current := RankForXP(totalXP)
	next := NextRank(totalXP)
	if next == nil {
		return 1.0
	}
	span := next.MinXP - current.MinXP
	if span <= 0 {
		return 1.0
	}
	return float64(totalXP-current.MinXP) / float64(span)
}

// rankIndex returns the position of a rank name in the ladder, -1 for
// unknown names so any real rank compares above them.
func rankIndex(name string) int {
	for i, r := range rankLadder {
		if r.Name == name {
			return i
		}
	}
	return -1
}

// AllRanks returns a copy of the ladder for API responses.
func AllRanks() []Rank {
	out := make([]Rank, len(rankLadder))
	copy(out, rankLadder)
	return out
}
