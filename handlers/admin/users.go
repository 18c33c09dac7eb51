// handlers/admin/users.go
package admin

import (
	"time"

	"skaila/database"
	"skaila/models"

	"github.com/gofiber/fiber/v2"
)

// ListUsers returns users filtered by school, class or role.
// GET /api/admin/users?school=...&class=...&role=...
func ListUsers(c *fiber.Ctx) error {
	q := database.GetDB().Model(&models.User{})
	if school := c.Query("school"); school != "" {
		q = q.Where("school = ?", school)
	}
	if class := c.Query("class"); class != "" {
		q = q.Where("class = ?", class)
	}
	if role := c.Query("role"); role != "" {
		q = q.Where("role = ?", role)
	}

	limit := c.QueryInt("limit", 100)
	if limit < 1 || limit > 500 {
		limit = 100
	}

	var users []models.User
	if err := q.Order("id").Limit(limit).Offset(c.QueryInt("offset", 0)).Find(&users).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch users"})
	}
	for i := range users {
		users[i].Password = ""
	}
	return c.JSON(fiber.Map{
		"success": true,
		"users":   users,
	})
}

type SetRoleRequest struct {
	Role string `json:"role"`
}

// SetUserRole changes a user's role.
func SetUserRole(c *fiber.Ctx) error {
	userID, err := c.ParamsInt("id")
	if err != nil || userID <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid user id"})
	}

	var req SetRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}
	switch req.Role {
	case "student", "teacher", "admin":
	default:
		return c.Status(400).JSON(fiber.Map{"error": "Invalid role"})
	}

	result := database.GetDB().Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{"role": req.Role, "updated_at": time.Now()})
	if result.Error != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to update role"})
	}
	if result.RowsAffected == 0 {
		return c.Status(404).JSON(fiber.Map{"error": "User not found"})
	}
	return c.JSON(fiber.Map{"success": true})
}

type BanRequest struct {
	Banned bool `json:"banned"`
}

// BanUser toggles a user's banned flag. Banned users keep their data
// but drop out of leaderboards and cannot log in.
func BanUser(c *fiber.Ctx) error {
	userID, err := c.ParamsInt("id")
	if err != nil || userID <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid user id"})
	}

	var req BanRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	result := database.GetDB().Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{"is_banned": req.Banned, "updated_at": time.Now()})
	if result.Error != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to update user"})
	}
	if result.RowsAffected == 0 {
		return c.Status(404).JSON(fiber.Map{"error": "User not found"})
	}
	return c.JSON(fiber.Map{"success": true})
}

type CostLimitsRequest struct {
	DailyLimitUSD   float64 `json:"daily_limit_usd"`
	MonthlyLimitUSD float64 `json:"monthly_limit_usd"`
}

// SetCostLimits overrides a user's AI budget ceilings.
func SetCostLimits(c *fiber.Ctx) error {
	userID, err := c.ParamsInt("id")
	if err != nil || userID <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid user id"})
	}

	var req CostLimitsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.DailyLimitUSD <= 0 || req.MonthlyLimitUSD <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Limits must be positive"})
	}

	db := database.GetDB()
	var limits models.UserCostLimits
	err = db.Where("user_id = ?", userID).First(&limits).Error
	if err != nil {
		limits = models.UserCostLimits{UserID: uint(userID)}
	}
	limits.DailyLimitUSD = req.DailyLimitUSD
	limits.MonthlyLimitUSD = req.MonthlyLimitUSD
	if err := db.Save(&limits).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to save limits"})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"limits":  limits,
	})
}
