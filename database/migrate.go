// database/migrate.go - Database Migration Runner
package database

import (
	"log"

	"skaila/models"

	"gorm.io/gorm"
)

// RunMigrations runs all database migrations
func RunMigrations() {
	db := GetDB()
	log.Println("🔄 Running database migrations...")

	if err := MigrateAll(db); err != nil {
		log.Fatalf("❌ Failed to run migrations: %v", err)
	}

	createCoreIndexes(db)
	SeedDefaults(db)

	log.Println("✅ All migrations completed successfully")
}

// MigrateAll migrates every model. Exposed so tests can run it against
// an in-memory database.
func MigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.GamificationState{},
		&models.XPLogEntry{},
		&models.Badge{},
		&models.UserBadge{},
		&models.PowerUp{},
		&models.UserPowerUp{},
		&models.Notification{},
		&models.Challenge{},
		&models.UserChallenge{},
		&models.ClassChallenge{},
		&models.TelemetryEvent{},
		&models.TelemetrySession{},
		&models.Alert{},
		&models.RecoveryPath{},
		&models.Company{},
		&models.Opportunity{},
		&models.Application{},
		&models.Portfolio{},
		&models.StudentSkill{},
		&models.StudentProject{},
		&models.Grade{},
		&models.TextCacheEntry{},
		&models.CostEntry{},
		&models.UserCostLimits{},
	)
}

// createCoreIndexes creates indexes AutoMigrate does not cover
func createCoreIndexes(db *gorm.DB) {
	db.Exec("CREATE INDEX IF NOT EXISTS idx_xp_logs_source_created ON xp_log_entries(user_id, source, created_at)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_alerts_active ON alerts(user_id, type, status)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_text_cache_age ON text_cache(created_at, hit_count)")
}

// SeedDefaults inserts the default badge, power-up and challenge
// catalog. Idempotent: existing rows (matched by code) are left alone.
func SeedDefaults(db *gorm.DB) {
	seedBadges(db)
	seedPowerUps(db)
	seedChallenges(db)
}

func seedBadges(db *gorm.DB) {
	badges := []models.Badge{
		{Code: "first_steps", Name: "Primi Passi", Description: "Earn your first XP", Icon: "🌱", Rarity: "common", XPReward: 10, Condition: models.JSONMap{"type": "total_xp", "value": 1}},
		{Code: "rising_star", Name: "Stella Nascente", Description: "Reach 1000 total XP", Icon: "⭐", Rarity: "rare", XPReward: 50, Condition: models.JSONMap{"type": "total_xp", "value": 1000}},
		{Code: "veteran", Name: "Veterano", Description: "Reach 6000 total XP", Icon: "🏅", Rarity: "epic", XPReward: 150, Condition: models.JSONMap{"type": "total_xp", "value": 6000}},
		{Code: "week_warrior", Name: "Guerriero della Settimana", Description: "Keep a 7 day streak", Icon: "🔥", Rarity: "rare", XPReward: 50, Condition: models.JSONMap{"type": "streak_days", "value": 7}},
		{Code: "unstoppable", Name: "Inarrestabile", Description: "Keep a 30 day streak", Icon: "💪", Rarity: "legendary", XPReward: 200, Condition: models.JSONMap{"type": "streak_days", "value": 30}},
		{Code: "helper", Name: "Compagno di Banco", Description: "Help a classmate 10 times", Icon: "🤝", Rarity: "rare", XPReward: 75, Condition: models.JSONMap{"type": "action_count", "source": "help", "value": 10}},
	}
	for _, b := range badges {
		var count int64
		db.Model(&models.Badge{}).Where("code = ?", b.Code).Count(&count)
		if count == 0 {
			db.Create(&b)
		}
	}
}

func seedPowerUps(db *gorm.DB) {
	powerups := []models.PowerUp{
		{Code: "xp_boost", Name: "XP Boost", Description: "Doubles XP earned for one hour", CostXP: 100, Effect: "xp_boost", Magnitude: 2.0, DurationMin: 60},
		{Code: "streak_shield", Name: "Scudo Streak", Description: "Protects the streak for one missed day", CostXP: 150, Effect: "streak_shield", Magnitude: 1.0, DurationMin: 1440},
	}
	for _, p := range powerups {
		var count int64
		db.Model(&models.PowerUp{}).Where("code = ?", p.Code).Count(&count)
		if count == 0 {
			db.Create(&p)
		}
	}
}

func seedChallenges(db *gorm.DB) {
	challenges := []models.Challenge{
		{Name: "Voce del Giorno", Description: "Send 10 messages today", Kind: models.ChallengeKindDaily, Difficulty: models.DifficultyEasy, Targets: models.IntMap{"messages": 10}, RewardXP: 40, Active: true},
		{Name: "Curiosità", Description: "Ask the tutor 3 questions today", Kind: models.ChallengeKindDaily, Difficulty: models.DifficultyEasy, Targets: models.IntMap{"chatbot_interactions": 3}, RewardXP: 30, Active: true},
		{Name: "Mano Tesa", Description: "Help a classmate today", Kind: models.ChallengeKindDaily, Difficulty: models.DifficultyMedium, Targets: models.IntMap{"peers_helped": 1}, RewardXP: 60, Active: true},
		{Name: "Chiacchierone", Description: "Send 50 messages this week", Kind: models.ChallengeKindWeekly, Difficulty: models.DifficultyEasy, Targets: models.IntMap{"messages": 50}, RewardXP: 150, Active: true},
		{Name: "Studioso", Description: "Ask the tutor 15 questions this week", Kind: models.ChallengeKindWeekly, Difficulty: models.DifficultyMedium, Targets: models.IntMap{"chatbot_interactions": 15}, RewardXP: 250, Active: true},
		{Name: "Pilastro della Classe", Description: "Help classmates 5 times and earn 500 XP this week", Kind: models.ChallengeKindWeekly, Difficulty: models.DifficultyHard, Targets: models.IntMap{"peers_helped": 5, "xp_accumulated": 500}, RewardXP: 400, Active: true},
		{Name: "Classe Unita", Description: "Send 500 messages together", Kind: models.ChallengeKindClass, Difficulty: models.DifficultyMedium, Targets: models.IntMap{"messages": 500}, RewardXP: 100, Active: true},
	}
	for _, c := range challenges {
		var count int64
		db.Model(&models.Challenge{}).Where("name = ?", c.Name).Count(&count)
		if count == 0 {
			db.Create(&c)
		}
	}
}
