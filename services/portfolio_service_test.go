// services/portfolio_service_test.go
package services

import (
	"testing"
	"time"

	"skaila/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCandidateCardDefaults(t *testing.T) {
	db := setupTestDB(t)
	user := createStudent(t, db, "nora", "3A")

	card, err := BuildCandidateCard(user.ID, false)
	require.NoError(t, err)

	assert.Equal(t, user.ID, card.UserID)
	assert.Equal(t, "nora", card.DisplayName)
	assert.Equal(t, "ITIS Galilei", card.School)
	assert.Equal(t, "Germoglio", card.Rank)
	assert.Equal(t, []string{"Communication", "Teamwork", "Problem Solving"}, card.SoftSkills)
	assert.Equal(t, []string{"Italian:Native"}, card.Languages)
}

func TestCandidateCardPrivateGating(t *testing.T) {
	db := setupTestDB(t)
	user := createStudent(t, db, "piero", "3A")

	_, err := AddGrade(user.ID, "Matematica", 8, "primo quadrimestre")
	require.NoError(t, err)
	_, err = AddGrade(user.ID, "Fisica", 6, "primo quadrimestre")
	require.NoError(t, err)

	public, err := BuildCandidateCard(user.ID, false)
	require.NoError(t, err)
	assert.Zero(t, public.AverageGrade)
	assert.Empty(t, public.RecentGrades)
	assert.Empty(t, public.TopSubjects)

	private, err := BuildCandidateCard(user.ID, true)
	require.NoError(t, err)
	assert.InDelta(t, 7.0, private.AverageGrade, 0.001)
	assert.Len(t, private.RecentGrades, 2)
	require.Len(t, private.TopSubjects, 2)
	assert.Equal(t, "Matematica", private.TopSubjects[0].Subject)
}

func TestCandidateCardCompleteness(t *testing.T) {
	db := setupTestDB(t)
	user := createStudent(t, db, "sofia", "3B")

	// Display name, default soft skills and default languages already
	// count, grades are hidden from the public card but still score.
	card, err := BuildCandidateCard(user.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 30, card.Completeness)

	_, err = AddGrade(user.ID, "Informatica", 9, "")
	require.NoError(t, err)
	badge := models.Badge{Code: "primo_traguardo", Name: "Primo Traguardo"}
	require.NoError(t, db.Create(&badge).Error)
	require.NoError(t, db.Create(&models.UserBadge{UserID: user.ID, BadgeID: badge.ID, EarnedAt: time.Now()}).Error)
	for _, name := range []string{"python", "sql", "git"} {
		_, err = AddSkill(user.ID, name, models.ProficiencyIntermediate)
		require.NoError(t, err)
	}
	_, err = AddProject(user.ID, models.StudentProject{Title: "Orto scolastico IoT"})
	require.NoError(t, err)

	card, err = BuildCandidateCard(user.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 100, card.Completeness)
}

func TestCandidateCardSkillOrdering(t *testing.T) {
	db := setupTestDB(t)
	user := createStudent(t, db, "luca", "3A")

	_, err := AddSkill(user.ID, "excel", models.ProficiencyBeginner)
	require.NoError(t, err)
	_, err = AddSkill(user.ID, "python", models.ProficiencyExpert)
	require.NoError(t, err)
	_, err = AddSkill(user.ID, "sql", models.ProficiencyAdvanced)
	require.NoError(t, err)
	_, err = AddSkill(user.ID, "docker", models.ProficiencyIntermediate)
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.StudentSkill{}).
		Where("user_id = ? AND name = ?", user.ID, "docker").
		Update("verified", true).Error)

	card, err := BuildCandidateCard(user.ID, false)
	require.NoError(t, err)
	require.Len(t, card.Skills, 4)
	assert.Equal(t, "python", card.Skills[0].Name)
	assert.Equal(t, "sql", card.Skills[1].Name)
	assert.Equal(t, "docker", card.Skills[2].Name)
	assert.Equal(t, "excel", card.Skills[3].Name)
}

func TestCandidateCardProjectOrdering(t *testing.T) {
	db := setupTestDB(t)
	user := createStudent(t, db, "marta", "3C")

	old := time.Now().AddDate(0, -6, 0)
	recent := time.Now().AddDate(0, -1, 0)
	_, err := AddProject(user.ID, models.StudentProject{Title: "vecchio", EndedAt: &old})
	require.NoError(t, err)
	_, err = AddProject(user.ID, models.StudentProject{Title: "in corso", Ongoing: true})
	require.NoError(t, err)
	_, err = AddProject(user.ID, models.StudentProject{Title: "recente", EndedAt: &recent})
	require.NoError(t, err)

	card, err := BuildCandidateCard(user.ID, false)
	require.NoError(t, err)
	require.Len(t, card.Projects, 3)
	assert.Equal(t, "in corso", card.Projects[0].Title)
	assert.Equal(t, "recente", card.Projects[1].Title)
	assert.Equal(t, "vecchio", card.Projects[2].Title)
}

func TestAddSkillUpdatesLevel(t *testing.T) {
	db := setupTestDB(t)
	user := createStudent(t, db, "enea", "3A")

	skill, err := AddSkill(user.ID, "python", models.ProficiencyBeginner)
	require.NoError(t, err)
	updated, err := AddSkill(user.ID, "python", models.ProficiencyAdvanced)
	require.NoError(t, err)
	assert.Equal(t, skill.ID, updated.ID)
	assert.Equal(t, models.ProficiencyAdvanced, updated.Level)

	var count int64
	db.Model(&models.StudentSkill{}).Where("user_id = ?", user.ID).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestAddSkillRejectsUnknownLevel(t *testing.T) {
	db := setupTestDB(t)
	user := createStudent(t, db, "gaia", "3A")

	skill, err := AddSkill(user.ID, "canva", "ninja")
	require.NoError(t, err)
	assert.Equal(t, models.ProficiencyBeginner, skill.Level)
}

func TestUpsertPortfolioOverwrites(t *testing.T) {
	db := setupTestDB(t)
	user := createStudent(t, db, "dario", "3A")

	first, err := UpsertPortfolio(user.ID, "Aspirante dev", "", []string{"Empatia"}, nil, true)
	require.NoError(t, err)
	second, err := UpsertPortfolio(user.ID, "Backend dev", "Mi piace Go", []string{"Empatia", "Leadership"}, []string{"Italian:Native", "English:B2"}, true)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Backend dev", second.Headline)

	card, err := BuildCandidateCard(user.ID, false)
	require.NoError(t, err)
	assert.Equal(t, "Backend dev", card.Headline)
	assert.Equal(t, []string{"Empatia", "Leadership"}, []string(card.SoftSkills))
	assert.Len(t, card.Languages, 2)
}
