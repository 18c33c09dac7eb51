// handlers/portfolio.go
package handlers

import (
	"skaila/middleware"
	"skaila/models"
	"skaila/services"

	"github.com/gofiber/fiber/v2"
)

// CandidateCard builds the caller's own card with private sections
// included.
func CandidateCard(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	card, err := services.BuildCandidateCard(userID, true)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to build candidate card"})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"card":    card,
	})
}

// PublicCandidateCard builds another student's card without the
// private academic sections. Used by company-facing views.
func PublicCandidateCard(c *fiber.Ctx) error {
	studentID, err := c.ParamsInt("id")
	if err != nil || studentID <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid student id"})
	}

	card, err := services.BuildCandidateCard(uint(studentID), false)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Student not found"})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"card":    card,
	})
}

type UpsertPortfolioRequest struct {
	Headline   string   `json:"headline"`
	Summary    string   `json:"summary"`
	SoftSkills []string `json:"soft_skills"`
	Languages  []string `json:"languages"`
	// pointer so an omitted field means visible
	Visible *bool `json:"visible"`
}

// UpsertPortfolio creates or replaces the caller's portfolio header.
func UpsertPortfolio(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	var req UpsertPortfolioRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	visible := true
	if req.Visible != nil {
		visible = *req.Visible
	}
	portfolio, err := services.UpsertPortfolio(userID, req.Headline, req.Summary, req.SoftSkills, req.Languages, visible)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to save portfolio"})
	}
	return c.JSON(fiber.Map{
		"success":   true,
		"portfolio": portfolio,
	})
}

type AddSkillRequest struct {
	Name  string `json:"name"`
	Level string `json:"level"`
}

// AddSkill records or updates one of the caller's skills.
func AddSkill(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	var req AddSkillRequest
	if err := c.BodyParser(&req); err != nil || req.Name == "" {
		return c.Status(400).JSON(fiber.Map{"error": "name required"})
	}
	switch req.Level {
	case models.ProficiencyBeginner, models.ProficiencyIntermediate,
		models.ProficiencyAdvanced, models.ProficiencyExpert:
	case "":
		req.Level = models.ProficiencyBeginner
	default:
		return c.Status(400).JSON(fiber.Map{"error": "Invalid proficiency level"})
	}

	skill, err := services.AddSkill(userID, req.Name, req.Level)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to save skill"})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"skill":   skill,
	})
}

// AddProject records a project on the caller's portfolio.
func AddProject(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	var project models.StudentProject
	if err := c.BodyParser(&project); err != nil || project.Title == "" {
		return c.Status(400).JSON(fiber.Map{"error": "title required"})
	}

	saved, err := services.AddProject(userID, project)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to save project"})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"project": saved,
	})
}

type AddGradeRequest struct {
	UserID  uint    `json:"user_id"`
	Subject string  `json:"subject"`
	Value   float64 `json:"value"`
	Term    string  `json:"term"`
}

// AddGrade lets a teacher record a grade for a student. Grades feed
// the private academic section of the candidate card.
func AddGrade(c *fiber.Ctx) error {
	var req AddGradeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.UserID == 0 || req.Subject == "" {
		return c.Status(400).JSON(fiber.Map{"error": "user_id and subject required"})
	}
	if req.Value < 1 || req.Value > 10 {
		return c.Status(400).JSON(fiber.Map{"error": "Grade must be between 1 and 10"})
	}

	grade, err := services.AddGrade(req.UserID, req.Subject, req.Value, req.Term)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to save grade"})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"grade":   grade,
	})
}
