// config/config.go - Environment-backed configuration with defaults
package config

import (
	"os"
	"strconv"
	"strings"
)

// XP caps and bonuses.
var (
	MaxXPMessagesPerDay = intEnv("MAX_XP_MESSAGES_PER_DAY", 500)
	MaxXPChatbotPerDay  = intEnv("MAX_XP_CHATBOT_PER_DAY", 300)
	PrimeTimeBonus      = floatEnv("PRIME_TIME_BONUS", 0.20)
)

// Streak milestones mapped to bonus XP.
var StreakMilestones = map[int]int{
	3:  50,
	7:  150,
	14: 350,
	30: 800,
}

// Telemetry and alerting windows.
var (
	AlertWindowDays          = intEnv("ALERT_WINDOW_DAYS", 7)
	AlertMinStruggleCount    = intEnv("ALERT_MIN_STRUGGLE_COUNT", 5)
	SessionInactivityMinutes = intEnv("SESSION_INACTIVITY_MINUTES", 30)
)

// AI cache and budget controls.
var (
	CacheTTLHours         = intEnv("CACHE_TTL_HOURS", 24)
	DailyBudgetLimitUSD   = floatEnv("DAILY_BUDGET_LIMIT_USD", 2.0)
	MonthlyBudgetLimitUSD = floatEnv("MONTHLY_BUDGET_LIMIT_USD", 30.0)
)

// JWTSecret returns the HMAC secret for token signing.
func JWTSecret() string {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "skaila-secret-change-in-production"
	}
	return secret
}

// BaseXP amounts per action, from the gamification configuration table.
var BaseXP = map[string]int{
	"message_base":        5,
	"message_first_today": 15,
	"message_group":       20,
	"chatbot_question":    5,
	"chatbot_first_today": 20,
	"chatbot_study":       25,
	"help_peer":           30,
	"reaction_received":   2,
}

func intEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return def
}

func floatEnv(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	}
	return def
}
