// services/matching_test.go
package services

import (
	"testing"

	"skaila/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cardWithSkills(names ...string) *CandidateCard {
	card := &CandidateCard{}
	for _, name := range names {
		card.Skills = append(card.Skills, models.StudentSkill{Name: name})
	}
	return card
}

func TestScoreOpportunities(t *testing.T) {
	card := cardWithSkills("python", "sql")

	dev := models.Opportunity{
		Title:        "Python Developer",
		Description:  "Stage su pipeline dati con SQL e Python",
		Sector:       "tech",
		LocationType: "remote",
	}
	marketing := models.Opportunity{
		Title:        "Marketing Intern",
		Description:  "Gestione social e newsletter",
		Sector:       "marketing",
		LocationType: "onsite",
	}

	scored := ScoreOpportunities(card, []models.Opportunity{marketing, dev})
	require.Len(t, scored, 2)

	// python +10, sql +10, remote +5
	assert.Equal(t, "Python Developer", scored[0].Opportunity.Title)
	assert.Equal(t, 25, scored[0].Score)
	assert.Equal(t, "Marketing Intern", scored[1].Opportunity.Title)
	assert.Equal(t, 0, scored[1].Score)
}

func TestScoreOpportunitiesMatchesAnyField(t *testing.T) {
	card := cardWithSkills("Python")

	byTitle := models.Opportunity{Title: "Junior Python", LocationType: "onsite"}
	bySector := models.Opportunity{Title: "Stage", Sector: "python tooling", LocationType: "onsite"}
	noMatch := models.Opportunity{Title: "Cameriere", LocationType: "onsite"}

	scored := ScoreOpportunities(card, []models.Opportunity{byTitle, bySector, noMatch})
	assert.Equal(t, 10, scored[0].Score)
	assert.Equal(t, 10, scored[1].Score)
	assert.Equal(t, 0, scored[2].Score)
}

func TestScoreOpportunitiesHybridCountsAsRemote(t *testing.T) {
	card := cardWithSkills()

	hybrid := models.Opportunity{Title: "Stage ibrido", LocationType: "hybrid"}
	onsite := models.Opportunity{Title: "Stage in sede", LocationType: "onsite"}

	scored := ScoreOpportunities(card, []models.Opportunity{hybrid, onsite})
	assert.Equal(t, 5, scored[0].Score)
	assert.Equal(t, 0, scored[1].Score)
}

func TestScoreOpportunitiesTiesKeepInputOrder(t *testing.T) {
	card := cardWithSkills()

	first := models.Opportunity{Title: "Primo", LocationType: "onsite"}
	second := models.Opportunity{Title: "Secondo", LocationType: "onsite"}

	scored := ScoreOpportunities(card, []models.Opportunity{first, second})
	assert.Equal(t, "Primo", scored[0].Opportunity.Title)
	assert.Equal(t, "Secondo", scored[1].Opportunity.Title)
}

func TestScoreOpportunitiesIgnoresBlankSkills(t *testing.T) {
	card := cardWithSkills("  ", "")

	opp := models.Opportunity{Title: "Qualsiasi cosa", LocationType: "onsite"}
	scored := ScoreOpportunities(card, []models.Opportunity{opp})
	assert.Equal(t, 0, scored[0].Score)
}
