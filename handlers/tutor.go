// handlers/tutor.go
package handlers

import (
	"errors"

	"skaila/middleware"
	"skaila/models"
	"skaila/services"

	"github.com/gofiber/fiber/v2"
)

type AskRequest struct {
	Message string         `json:"message"`
	Context models.JSONMap `json:"context"`
}

// AskTutor answers a study question through the cached text pipeline.
// Identical questions within the cache TTL are served for free.
func AskTutor(c *fiber.Ctx) error {
	user, err := middleware.GetUser(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	var req AskRequest
	if err := c.BodyParser(&req); err != nil || req.Message == "" {
		return c.Status(400).JSON(fiber.Map{"error": "message required"})
	}

	result, err := services.Ask(c.Context(), user, req.Message, req.Context)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrBudgetExceeded):
			return c.Status(429).JSON(fiber.Map{
				"error":  "Daily or monthly AI budget exhausted",
				"reason": "budget",
			})
		case errors.Is(err, services.ErrGeneratorUnavailable):
			return c.Status(503).JSON(fiber.Map{"error": "Tutor temporarily unavailable"})
		}
		return c.Status(502).JSON(fiber.Map{"error": "Failed to generate answer"})
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"response":    result.Response,
		"model":       result.Model,
		"cached":      result.Cached,
		"tokens_used": result.TokensUsed,
		"cost_usd":    result.CostUSD,
	})
}

// TutorUsage reports the caller's AI spend against their budgets.
func TutorUsage(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	summary, err := services.UserCostSummary(userID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to load usage"})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"usage":   summary,
	})
}
