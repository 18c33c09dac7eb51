// handlers/leaderboard.go
package handlers

import (
	"skaila/middleware"
	"skaila/services"

	"github.com/gofiber/fiber/v2"
)

// GetLeaderboard returns the weekly or all-time ranking.
// GET /api/leaderboard?scope=weekly&class=3A&limit=50
func GetLeaderboard(c *fiber.Ctx) error {
	scope := c.Query("scope", "weekly")
	if scope != "weekly" && scope != "alltime" {
		return c.Status(400).JSON(fiber.Map{"error": "scope must be weekly or alltime"})
	}
	class := c.Query("class")
	limit := c.QueryInt("limit", 50)
	if limit < 1 || limit > 100 {
		limit = 50
	}

	rows, err := services.GetLeaderboard(scope, class, limit)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch leaderboard"})
	}
	return c.JSON(fiber.Map{
		"success":     true,
		"scope":       scope,
		"leaderboard": rows,
	})
}

// GetMyPosition returns the caller's position in the given scope.
func GetMyPosition(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	scope := c.Query("scope", "weekly")
	if scope != "weekly" && scope != "alltime" {
		return c.Status(400).JSON(fiber.Map{"error": "scope must be weekly or alltime"})
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"scope":    scope,
		"position": services.UserPosition(userID, scope),
	})
}
