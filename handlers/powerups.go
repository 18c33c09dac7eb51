// handlers/powerups.go
package handlers

import (
	"errors"

	"skaila/database"
	"skaila/middleware"
	"skaila/models"
	"skaila/services"

	"github.com/gofiber/fiber/v2"
)

// PowerUpShop lists purchasable power-ups.
func PowerUpShop(c *fiber.Ctx) error {
	var powerups []models.PowerUp
	if err := database.GetDB().Order("cost_xp").Find(&powerups).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to load shop"})
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"powerups": powerups,
	})
}

type BuyPowerUpRequest struct {
	Code string `json:"code"`
}

// BuyPowerUp spends XP on a power-up for the caller.
func BuyPowerUp(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	var req BuyPowerUpRequest
	if err := c.BodyParser(&req); err != nil || req.Code == "" {
		return c.Status(400).JSON(fiber.Map{"error": "code required"})
	}

	active, err := services.BuyPowerUp(userID, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPowerUpNotFound):
			return c.Status(404).JSON(fiber.Map{"error": "Power-up not found"})
		case errors.Is(err, services.ErrInsufficientXP):
			return c.Status(409).JSON(fiber.Map{"error": "Not enough XP"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to buy power-up"})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"powerup": active,
	})
}

// MyPowerUps lists the caller's unexpired power-ups.
func MyPowerUps(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	active, err := services.ActivePowerUps(userID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to load power-ups"})
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"powerups": active,
	})
}
