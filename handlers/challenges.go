// handlers/challenges.go
package handlers

import (
	"skaila/database"
	"skaila/middleware"
	"skaila/models"
	"skaila/services"

	"github.com/gofiber/fiber/v2"
)

// AssignDailyChallenge gives the caller today's challenge. Calling it
// again the same day returns the existing assignment unchanged.
func AssignDailyChallenge(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	assigned, challenge, err := services.AssignDaily(userID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to assign daily challenge"})
	}
	return c.JSON(fiber.Map{
		"success":   true,
		"assigned":  assigned,
		"challenge": challenge,
	})
}

// AssignWeeklyChallenges fills the caller's three weekly slots, one
// per difficulty. Uncompleted challenges from past weeks are dropped.
func AssignWeeklyChallenges(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	challenges, err := services.AssignWeekly(userID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to assign weekly challenges"})
	}
	return c.JSON(fiber.Map{
		"success":    true,
		"challenges": challenges,
	})
}

// MyChallenges lists the caller's current unexpired assignments.
func MyChallenges(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	challenges, err := services.ActiveChallenges(userID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to load challenges"})
	}
	return c.JSON(fiber.Map{
		"success":    true,
		"challenges": challenges,
	})
}

type AssignClassChallengeRequest struct {
	Class       string `json:"class"`
	School      string `json:"school"`
	ChallengeID uint   `json:"challenge_id"`
}

// AssignClassChallenge lets an admin attach a collective challenge to
// a class. One active assignment per (class, challenge) pair.
func AssignClassChallenge(c *fiber.Ctx) error {
	var req AssignClassChallengeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Class == "" || req.ChallengeID == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "class and challenge_id required"})
	}

	cc, err := services.AssignClass(req.Class, req.School, req.ChallengeID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to assign class challenge"})
	}
	return c.JSON(fiber.Map{
		"success":   true,
		"challenge": cc,
	})
}

// ClassChallengeStatus shows the caller's class challenges with the
// top contributors for each.
func ClassChallengeStatus(c *fiber.Ctx) error {
	user, err := middleware.GetUser(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}
	if user.Class == "" {
		return c.JSON(fiber.Map{"success": true, "challenges": []fiber.Map{}})
	}

	var rows []models.ClassChallenge
	err = database.GetDB().Preload("Challenge").
		Where("class = ? AND completed = ?", user.Class, false).
		Find(&rows).Error
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to load class challenges"})
	}

	out := make([]fiber.Map, 0, len(rows))
	for i := range rows {
		out = append(out, fiber.Map{
			"challenge":        rows[i],
			"top_contributors": services.TopContributors(&rows[i], 5),
		})
	}
	return c.JSON(fiber.Map{
		"success":    true,
		"challenges": out,
	})
}

// ListChallengeTemplates lists the active challenge catalog, used by
// admins when assigning class challenges.
func ListChallengeTemplates(c *fiber.Ctx) error {
	var templates []models.Challenge
	q := database.GetDB().Where("active = ?", true)
	if kind := c.Query("kind"); kind != "" {
		q = q.Where("kind = ?", kind)
	}
	if err := q.Order("kind, difficulty").Find(&templates).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to load challenges"})
	}
	return c.JSON(fiber.Map{
		"success":    true,
		"challenges": templates,
	})
}
