// services/textcache_service.go - Cost-controlled cache for the AI tutor
package services

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"skaila/config"
	"skaila/database"
	"skaila/logger"
	"skaila/models"

	"gorm.io/gorm"
)

// Generator produces tutor text for a prompt. Implementations wrap the
// external LLM API; tests plug in a fake. Returns the response and the
// tokens consumed.
type Generator func(ctx context.Context, model, prompt string) (string, int, error)

// Tutor model tiers.
const (
	ModelPremium = "gpt-4o"
	ModelEconomy = "gpt-4o-mini"
)

// pricePerKToken is the USD price per thousand tokens.
var pricePerKToken = map[string]float64{
	ModelPremium: 0.010,
	ModelEconomy: 0.0006,
}

// complexityKeywords force the premium model regardless of length.
var complexityKeywords = []string{
	"dimostra", "dimostrazione", "derivata", "integrale", "equazione",
	"teorema", "analizza", "confronta", "spiega perché", "spiegami perché",
}

var generator Generator

// SetGenerator installs the text generator. Must be called before
// Ask; tests install fakes.
func SetGenerator(g Generator) {
	generator = g
}

// AskResult is the tutor answer with its cost accounting.
type AskResult struct {
	Response   string  `json:"response"`
	Model      string  `json:"model"`
	Cached     bool    `json:"cached"`
	TokensUsed int     `json:"tokens_used"`
	CostUSD    float64 `json:"cost_usd"`
}

// Ask answers a tutor question through the cache. A fresh cached entry
// is returned at zero cost; a miss is admitted only within the user's
// budget, then generated and written back.
func Ask(ctx context.Context, user *models.User, message string, userContext models.JSONMap) (*AskResult, error) {
	db := database.GetDB()
	now := time.Now().UTC()

	model := selectModel(user, message)
	key := CacheKey(message, fingerprint(userContext))

	var entry models.TextCacheEntry
	err := db.Where("cache_key = ?", key).First(&entry).Error
	if err == nil && now.Sub(entry.CreatedAt) < time.Duration(config.CacheTTLHours)*time.Hour {
		entry.HitCount++
		entry.LastAccessed = now
		db.Save(&entry)
		return &AskResult{Response: entry.Response, Model: entry.Model, Cached: true}, nil
	}
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, err
	}

	estimated := estimateCost(model, message)
	if err := checkBudget(db, user.ID, estimated, now); err != nil {
		return nil, err
	}

	if generator == nil {
		return nil, ErrGeneratorUnavailable
	}
	genCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	response, tokens, err := generator(genCtx, model, message)
	if err != nil {
		// cancelled or failed: no cache write, no budget consumed
		return nil, err
	}

	cost := tokenCost(model, tokens)
	db.Create(&models.CostEntry{
		UserID:     user.ID,
		Model:      model,
		TokensUsed: tokens,
		CostUSD:    cost,
		CreatedAt:  now,
	})

	writeCache(db, key, model, message, response, now)

	return &AskResult{Response: response, Model: model, TokensUsed: tokens, CostUSD: cost}, nil
}

// CacheKey hashes the normalised message together with the context
// fingerprint. Stable across calls.
func CacheKey(message, contextFingerprint string) string {
	sum := md5.Sum([]byte(normalise(message) + "|" + contextFingerprint))
	return hex.EncodeToString(sum[:])
}

// normalise lowercases and collapses whitespace so trivially different
// phrasings share an entry.
func normalise(message string) string {
	return strings.Join(strings.Fields(strings.ToLower(message)), " ")
}

// fingerprint reduces the user context to the fields that change the
// answer.
func fingerprint(userContext models.JSONMap) string {
	if userContext == nil {
		return ""
	}
	parts := make([]string, 0, 3)
	for _, k := range []string{"subject", "topic", "difficulty"} {
		if v, ok := userContext[k]; ok {
			parts = append(parts, fmt.Sprintf("%s=%v", k, v))
		}
	}
	return strings.Join(parts, ",")
}

// selectModel picks premium for staff, complex questions, or users who
// prefer advanced difficulty; economy otherwise.
func selectModel(user *models.User, message string) string {
	if user.IsTeacher() {
		return ModelPremium
	}
	if user.DifficultyPref == "advanced" {
		return ModelPremium
	}
	if classifyComplexity(message) == "high" {
		return ModelPremium
	}
	return ModelEconomy
}

// classifyComplexity buckets a question: high above 50 words or on a
// keyword match, medium above 20 words, low otherwise.
func classifyComplexity(message string) string {
	lower := strings.ToLower(message)
	words := len(strings.Fields(message))
	if words > 50 {
		return "high"
	}
	for _, kw := range complexityKeywords {
		if strings.Contains(lower, kw) {
			return "high"
		}
	}
	if words > 20 {
		return "medium"
	}
	return "low"
}

// estimateTokens approximates the token count of a text.
func estimateTokens(text string) int {
	return int(float64(len(text)) / 3.5)
}

func tokenCost(model string, tokens int) float64 {
	return float64(tokens) / 1000 * pricePerKToken[model]
}

func estimateCost(model, message string) float64 {
	// answer is assumed comparable in size to the question
	return tokenCost(model, estimateTokens(message)*2)
}

// checkBudget admits a call only if both the daily and monthly ceiling
// survive the estimated cost.
func checkBudget(db *gorm.DB, userID uint, estimated float64, now time.Time) error {
	daily, monthly := budgetLimits(db, userID)

	var spentToday float64
	db.Model(&models.CostEntry{}).
		Where("user_id = ? AND DATE(created_at) = ?", userID, now.Format("2006-01-02")).
		Select("COALESCE(SUM(cost_usd), 0)").Scan(&spentToday)
	if spentToday+estimated > daily {
		return ErrBudgetExceeded
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	var spentMonth float64
	db.Model(&models.CostEntry{}).
		Where("user_id = ? AND created_at >= ?", userID, monthStart).
		Select("COALESCE(SUM(cost_usd), 0)").Scan(&spentMonth)
	if spentMonth+estimated > monthly {
		return ErrBudgetExceeded
	}
	return nil
}

func budgetLimits(db *gorm.DB, userID uint) (float64, float64) {
	var limits models.UserCostLimits
	if err := db.Where("user_id = ?", userID).First(&limits).Error; err == nil {
		return limits.DailyLimitUSD, limits.MonthlyLimitUSD
	}
	return config.DailyBudgetLimitUSD, config.MonthlyBudgetLimitUSD
}

// writeCache upserts the entry. A key collision overwrites the
// response and bumps the hit counter, last writer wins.
func writeCache(db *gorm.DB, key, model, message, response string, now time.Time) {
	var entry models.TextCacheEntry
	err := db.Where("cache_key = ?", key).First(&entry).Error
	if err == gorm.ErrRecordNotFound {
		db.Create(&models.TextCacheEntry{
			CacheKey:     key,
			Model:        model,
			Message:      message,
			Response:     response,
			LastAccessed: now,
			CreatedAt:    now,
		})
		return
	}
	if err != nil {
		return
	}
	entry.Model = model
	entry.Response = response
	entry.HitCount++
	entry.LastAccessed = now
	entry.CreatedAt = now
	db.Save(&entry)
}

// EvictCache purges entries older than 7 days, then trims the table to
// the 800 best rows by (hit_count, last_accessed) when it exceeds
// 1000. Returns rows removed.
func EvictCache() (int64, error) {
	db := database.GetDB()
	cutoff := time.Now().UTC().AddDate(0, 0, -7)

	res := db.Where("created_at < ?", cutoff).Delete(&models.TextCacheEntry{})
	if res.Error != nil {
		return 0, res.Error
	}
	removed := res.RowsAffected

	var total int64
	db.Model(&models.TextCacheEntry{}).Count(&total)
	if total > 1000 {
		var keep []uint
		db.Model(&models.TextCacheEntry{}).
			Order("hit_count DESC, last_accessed DESC").
			Limit(800).Pluck("id", &keep)
		res = db.Where("id NOT IN ?", keep).Delete(&models.TextCacheEntry{})
		if res.Error != nil {
			return removed, res.Error
		}
		removed += res.RowsAffected
	}

	if removed > 0 {
		logger.Info("text cache evicted", "removed", removed)
	}
	return removed, nil
}

// CostSummary aggregates spend for the analytics endpoint.
type CostSummary struct {
	SpentTodayUSD float64 `json:"spent_today_usd"`
	SpentMonthUSD float64 `json:"spent_month_usd"`
	DailyLimitUSD float64 `json:"daily_limit_usd"`
	MonthlyLimit  float64 `json:"monthly_limit_usd"`
	CacheEntries  int64   `json:"cache_entries"`
	CacheHits     int64   `json:"cache_hits"`
}

// UserCostSummary reports a user's current budget position.
func UserCostSummary(userID uint) (*CostSummary, error) {
	db := database.GetDB()
	now := time.Now().UTC()
	daily, monthly := budgetLimits(db, userID)

	summary := &CostSummary{DailyLimitUSD: daily, MonthlyLimit: monthly}
	db.Model(&models.CostEntry{}).
		Where("user_id = ? AND DATE(created_at) = ?", userID, now.Format("2006-01-02")).
		Select("COALESCE(SUM(cost_usd), 0)").Scan(&summary.SpentTodayUSD)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	db.Model(&models.CostEntry{}).
		Where("user_id = ? AND created_at >= ?", userID, monthStart).
		Select("COALESCE(SUM(cost_usd), 0)").Scan(&summary.SpentMonthUSD)
	db.Model(&models.TextCacheEntry{}).Count(&summary.CacheEntries)
	db.Model(&models.TextCacheEntry{}).
		Select("COALESCE(SUM(hit_count), 0)").Scan(&summary.CacheHits)
	return summary, nil
}
