// services/matching.go - Opportunity scoring
package services

import (
	"sort"
	"strings"

	"skaila/models"
)

// ScoredOpportunity pairs an opportunity with its match score.
type ScoredOpportunity struct {
	Opportunity models.Opportunity `json:"opportunity"`
	Score       int                `json:"score"`
}

// ScoreOpportunities scores each opportunity against the card: +10 per
// card skill whose name appears in the posting text, +5 for remote
// work. Pure and idempotent; ties preserve input order.
func ScoreOpportunities(card *CandidateCard, opportunities []models.Opportunity) []ScoredOpportunity {
	scored := make([]ScoredOpportunity, len(opportunities))
	for i, opp := range opportunities {
		scored[i] = ScoredOpportunity{
			Opportunity: opp,
			Score:       scoreOne(card, &opp),
		}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

func scoreOne(card *CandidateCard, opp *models.Opportunity) int {
	text := strings.ToLower(opp.Title + " " + opp.Description + " " + opp.Sector)
	score := 0
	for _, skill := range card.Skills {
		name := strings.ToLower(strings.TrimSpace(skill.Name))
		if name != "" && strings.Contains(text, name) {
			score += 10
		}
	}
	if opp.Remote() {
		score += 5
	}
	return score
}
