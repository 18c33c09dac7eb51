// handlers/progression.go
package handlers

import (
	"skaila/database"
	"skaila/middleware"
	"skaila/models"
	"skaila/services"

	"github.com/gofiber/fiber/v2"
)

type AwardActionRequest struct {
	Group   bool           `json:"group"`
	Study   bool           `json:"study"`
	Context models.JSONMap `json:"context"`
}

type AdminAwardRequest struct {
	UserID  uint           `json:"user_id"`
	Amount  int            `json:"amount"`
	Reason  string         `json:"reason"`
	Context models.JSONMap `json:"context"`
}

// GetProgressionState returns the caller's XP state, rank and rank
// progress toward the next tier.
func GetProgressionState(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	state, err := services.GetState(userID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to load state"})
	}

	resp := fiber.Map{
		"success":       true,
		"total_xp":      state.TotalXP,
		"seasonal_xp":   state.SeasonalXP,
		"weekly_xp":     state.WeeklyXP,
		"daily_xp":      state.DailyXP,
		"rank":          state.Rank,
		"max_rank":      state.MaxRank,
		"streak_days":   state.StreakDays,
		"max_streak":    state.MaxStreak,
		"rank_progress": services.RankProgress(state.TotalXP),
	}
	if next := services.NextRank(state.TotalXP); next != nil {
		resp["next_rank"] = next.Name
		resp["next_rank_xp"] = next.MinXP
	}
	return c.JSON(resp)
}

// GetLedger returns the caller's most recent XP ledger entries.
func GetLedger(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	limit := c.QueryInt("limit", 50)
	entries, err := services.RecentLedger(userID, limit)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to load ledger"})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"entries": entries,
	})
}

// GetRanks returns the full rank ladder.
func GetRanks(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"ranks":   services.AllRanks(),
	})
}

// AwardMessageXP credits XP for a message the caller just sent.
func AwardMessageXP(c *fiber.Ctx) error {
	return awardAction(c, func(userID uint, req AwardActionRequest) (*services.AwardResult, error) {
		return services.AwardMessage(userID, req.Group, req.Context)
	})
}

// AwardChatbotXP credits XP for a chatbot interaction.
func AwardChatbotXP(c *fiber.Ctx) error {
	return awardAction(c, func(userID uint, req AwardActionRequest) (*services.AwardResult, error) {
		return services.AwardChatbot(userID, req.Study, req.Context)
	})
}

// AwardHelpXP credits XP for helping a peer.
func AwardHelpXP(c *fiber.Ctx) error {
	return awardAction(c, func(userID uint, req AwardActionRequest) (*services.AwardResult, error) {
		return services.AwardHelp(userID, req.Context)
	})
}

// AwardReactionXP credits XP for a reaction received on the caller's
// content.
func AwardReactionXP(c *fiber.Ctx) error {
	return awardAction(c, func(userID uint, req AwardActionRequest) (*services.AwardResult, error) {
		return services.AwardReaction(userID, req.Context)
	})
}

func awardAction(c *fiber.Ctx, award func(uint, AwardActionRequest) (*services.AwardResult, error)) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	var req AwardActionRequest
	// Empty body is fine, all fields are optional
	_ = c.BodyParser(&req)

	result, err := award(userID, req)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to award XP"})
	}
	return c.JSON(result)
}

// AdminAwardXP lets an admin grant or revoke XP directly. Negative
// amounts are allowed here and nowhere else.
func AdminAwardXP(c *fiber.Ctx) error {
	var req AdminAwardRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.UserID == 0 || req.Amount == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "user_id and amount required"})
	}

	result, err := services.AdminAdjust(req.UserID, req.Amount, req.Reason, req.Context)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to adjust XP"})
	}
	return c.JSON(result)
}

// GetBadges returns the caller's earned badges.
func GetBadges(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	var earned []models.UserBadge
	err = database.GetDB().Preload("Badge").
		Where("user_id = ?", userID).
		Order("earned_at DESC").
		Find(&earned).Error
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to load badges"})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"badges":  earned,
	})
}
