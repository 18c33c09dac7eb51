// services/powerup_service.go - Power-up shop
package services

import (
	"time"

	"skaila/database"
	"skaila/models"
)

// BuyPowerUp spends XP on a power-up and activates it immediately.
// The spend is a negative ledger entry so totals stay reconcilable
// against the log.
func BuyPowerUp(userID uint, code string) (*models.UserPowerUp, error) {
	mu := lockUser(userID)
	mu.Lock()
	defer mu.Unlock()

	db := database.GetDB()

	var powerup models.PowerUp
	if err := db.Where("code = ?", code).First(&powerup).Error; err != nil {
		return nil, ErrPowerUpNotFound
	}

	state, err := getOrCreateState(db, userID)
	if err != nil {
		return nil, err
	}
	if state.TotalXP < powerup.CostXP {
		return nil, ErrInsufficientXP
	}

	now := time.Now().UTC()
	active := models.UserPowerUp{
		UserID:    userID,
		PowerUpID: powerup.ID,
		ExpiresAt: now.Add(time.Duration(powerup.DurationMin) * time.Minute),
		CreatedAt: now,
	}
	if err := db.Create(&active).Error; err != nil {
		return nil, err
	}

	db.Create(&models.XPLogEntry{
		UserID:      userID,
		Source:      models.XPSourceAdmin,
		BaseAmount:  -powerup.CostXP,
		Amount:      -powerup.CostXP,
		Multiplier:  1,
		Description: "powerup_purchase",
		Context:     models.JSONMap{"power_up": powerup.Code},
		CreatedAt:   now,
	})
	state.TotalXP -= powerup.CostXP
	state.Rank = RankForXP(state.TotalXP).Name
	if err := db.Save(state).Error; err != nil {
		return nil, err
	}

	active.PowerUp = powerup
	return &active, nil
}

// ActivePowerUps lists a user's unexpired power-ups.
func ActivePowerUps(userID uint) ([]models.UserPowerUp, error) {
	var active []models.UserPowerUp
	err := database.GetDB().Preload("PowerUp").
		Where("user_id = ? AND expires_at > ?", userID, time.Now().UTC()).
		Find(&active).Error
	return active, err
}
