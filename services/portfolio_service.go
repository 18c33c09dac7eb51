// services/portfolio_service.go - Candidate cards and completeness
package services

import (
	"sort"

	"skaila/database"
	"skaila/models"

	"gorm.io/gorm"
)

// Default sections for thin profiles.
var (
	defaultSoftSkills = []string{"Communication", "Teamwork", "Problem Solving"}
	defaultLanguages  = []string{"Italian:Native"}
)

// SubjectAverage is one line of the top-subjects section.
type SubjectAverage struct {
	Subject string  `json:"subject"`
	Average float64 `json:"average"`
}

// CandidateCard is the aggregated view of a student shown to partner
// companies and fed to the matching scorer. Academic fields are
// populated only when the caller may see private data.
type CandidateCard struct {
	UserID      uint   `json:"user_id"`
	DisplayName string `json:"display_name"`
	School      string `json:"school"`
	Class       string `json:"class"`
	Avatar      string `json:"avatar"`
	Headline    string `json:"headline,omitempty"`

	AverageGrade float64          `json:"average_grade,omitempty"`
	RecentGrades []models.Grade   `json:"recent_grades,omitempty"`
	TopSubjects  []SubjectAverage `json:"top_subjects,omitempty"`

	Badges     []models.UserBadge      `json:"badges"`
	Skills     []models.StudentSkill   `json:"skills"`
	Projects   []models.StudentProject `json:"projects"`
	SoftSkills []string                `json:"soft_skills"`
	Languages  []string                `json:"languages"`

	Rank       string `json:"rank"`
	TotalXP    int    `json:"total_xp"`
	BadgeCount int    `json:"badge_count"`
	StreakDays int    `json:"streak_days"`

	Completeness int `json:"completeness"`
}

var proficiencyOrder = map[string]int{
	models.ProficiencyExpert:       3,
	models.ProficiencyAdvanced:     2,
	models.ProficiencyIntermediate: 1,
}

// BuildCandidateCard aggregates profile, grades, skills, projects and
// gamification into one card. includePrivate gates the academic
// section.
func BuildCandidateCard(userID uint, includePrivate bool) (*CandidateCard, error) {
	db := database.GetDB()

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return nil, ErrUserNotFound
	}

	var portfolio models.Portfolio
	if err := db.Where("user_id = ?", userID).First(&portfolio).Error; err != nil && err != gorm.ErrRecordNotFound {
		return nil, err
	}

	var skills []models.StudentSkill
	db.Where("user_id = ?", userID).Find(&skills)
	sort.SliceStable(skills, func(i, j int) bool {
		oi, oj := proficiencyOrder[skills[i].Level], proficiencyOrder[skills[j].Level]
		if oi != oj {
			return oi > oj
		}
		return skills[i].Verified && !skills[j].Verified
	})

	var projects []models.StudentProject
	db.Where("user_id = ?", userID).Find(&projects)
	sort.SliceStable(projects, func(i, j int) bool {
		if projects[i].Ongoing != projects[j].Ongoing {
			return projects[i].Ongoing
		}
		ei, ej := projects[i].EndedAt, projects[j].EndedAt
		if ei == nil || ej == nil {
			return ej == nil && ei != nil
		}
		return ei.After(*ej)
	})

	var badges []models.UserBadge
	db.Preload("Badge").Where("user_id = ?", userID).Find(&badges)

	state, err := getOrCreateState(db, userID)
	if err != nil {
		return nil, err
	}

	card := &CandidateCard{
		UserID:      user.ID,
		DisplayName: user.DisplayName,
		School:      user.School,
		Class:       user.Class,
		Avatar:      user.Avatar,
		Headline:    portfolio.Headline,
		Badges:      badges,
		Skills:      skills,
		Projects:    projects,
		SoftSkills:  portfolio.SoftSkills,
		Languages:   portfolio.Languages,
		Rank:        state.Rank,
		TotalXP:     state.TotalXP,
		BadgeCount:  len(badges),
		StreakDays:  state.StreakDays,
	}
	if len(card.SoftSkills) == 0 {
		card.SoftSkills = defaultSoftSkills
	}
	if len(card.Languages) == 0 {
		card.Languages = defaultLanguages
	}

	if includePrivate {
		fillAcademics(db, userID, card)
	}

	card.Completeness = completeness(user, card)
	return card, nil
}

func fillAcademics(db *gorm.DB, userID uint, card *CandidateCard) {
	db.Model(&models.Grade{}).Where("user_id = ?", userID).
		Select("COALESCE(AVG(value), 0)").Scan(&card.AverageGrade)

	db.Where("user_id = ?", userID).
		Order("created_at DESC").Limit(5).Find(&card.RecentGrades)

	var subjects []SubjectAverage
	db.Model(&models.Grade{}).Where("user_id = ?", userID).
		Select("subject, AVG(value) AS average").
		Group("subject").Order("average DESC").Limit(3).
		Scan(&subjects)
	card.TopSubjects = subjects
}

// completeness scores how filled-in a profile is, out of 100. The
// weights favor the sections companies look at first.
func completeness(user models.User, card *CandidateCard) int {
	score := 0
	if user.DisplayName != "" {
		score += 10
	}
	if card.AverageGrade > 0 || hasGrades(user.ID) {
		score += 15
	}
	if card.BadgeCount >= 1 {
		score += 15
	}
	if len(card.Skills) >= 3 {
		score += 20
	}
	if len(card.Projects) >= 1 {
		score += 20
	}
	if len(card.SoftSkills) >= 3 {
		score += 10
	}
	if len(card.Languages) >= 1 {
		score += 10
	}
	if score > 100 {
		score = 100
	}
	return score
}

func hasGrades(userID uint) bool {
	var count int64
	database.GetDB().Model(&models.Grade{}).Where("user_id = ?", userID).Count(&count)
	return count > 0
}

// UpsertPortfolio creates or updates the free-form profile sections.
func UpsertPortfolio(userID uint, headline, summary string, softSkills, languages []string, visible bool) (*models.Portfolio, error) {
	db := database.GetDB()
	var portfolio models.Portfolio
	err := db.Where("user_id = ?", userID).First(&portfolio).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, err
	}
	portfolio.UserID = userID
	portfolio.Headline = headline
	portfolio.Summary = summary
	portfolio.SoftSkills = softSkills
	portfolio.Languages = languages
	portfolio.Visible = visible
	if err := db.Save(&portfolio).Error; err != nil {
		return nil, err
	}
	return &portfolio, nil
}

// AddSkill records or updates a hard skill.
func AddSkill(userID uint, name, level string) (*models.StudentSkill, error) {
	if _, ok := proficiencyOrder[level]; !ok && level != models.ProficiencyBeginner {
		level = models.ProficiencyBeginner
	}
	db := database.GetDB()
	var skill models.StudentSkill
	err := db.Where("user_id = ? AND name = ?", userID, name).First(&skill).Error
	if err == gorm.ErrRecordNotFound {
		skill = models.StudentSkill{UserID: userID, Name: name, Level: level}
		if err := db.Create(&skill).Error; err != nil {
			return nil, err
		}
		return &skill, nil
	}
	if err != nil {
		return nil, err
	}
	skill.Level = level
	if err := db.Save(&skill).Error; err != nil {
		return nil, err
	}
	return &skill, nil
}

// AddProject attaches a project to the portfolio.
func AddProject(userID uint, project models.StudentProject) (*models.StudentProject, error) {
	project.ID = 0
	project.UserID = userID
	if err := database.GetDB().Create(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// AddGrade records a subject grade.
func AddGrade(userID uint, subject string, value float64, term string) (*models.Grade, error) {
	grade := models.Grade{UserID: userID, Subject: subject, Value: value, Term: term}
	if err := database.GetDB().Create(&grade).Error; err != nil {
		return nil, err
	}
	return &grade, nil
}
