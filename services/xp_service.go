// services/xp_service.go - XP Engine: awards, caps, multipliers, ledger
package services

import (
	"context"
	"math"
	"sync"
	"time"

	"skaila/config"
	"skaila/database"
	"skaila/logger"
	"skaila/models"

	"gorm.io/gorm"
)

// userLocks serialises awards per user without a global lock. Two
// concurrent awards for the same user run one after the other; awards
// for different users do not contend.
var userLocks sync.Map

func lockUser(userID uint) *sync.Mutex {
	mu, _ := userLocks.LoadOrStore(userID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// AwardResult is the outcome of one award call. Capped awards are a
// normal outcome, not an error: Granted is false and Reason says why.
type AwardResult struct {
	Granted       bool     `json:"granted"`
	Reason        string   `json:"reason,omitempty"`
	GrantedAmount int      `json:"granted_amount"`
	Multiplier    float64  `json:"multiplier,omitempty"`
	NewTotalXP    int      `json:"new_total_xp"`
	Rank          string   `json:"rank"`
	RankUp        bool     `json:"rank_up"`
	NewRank       string   `json:"new_rank,omitempty"`
	NewBadges     []string `json:"new_badges,omitempty"`
}

// dailyCap returns the per-source daily ceiling, zero meaning uncapped.
func dailyCap(source string) int {
	switch source {
	case models.XPSourceMessage:
		return config.MaxXPMessagesPerDay
	case models.XPSourceChatbot:
		return config.MaxXPChatbotPerDay
	}
	return 0
}

// AwardMessage awards XP for a chat message. The first message of the
// day earns more, group messages more still.
func AwardMessage(userID uint, group bool, ctxData models.JSONMap) (*AwardResult, error) {
	TouchStreak(userID, time.Now().UTC())
	amount := config.BaseXP["message_base"]
	desc := "Messaggio inviato"
	action := models.XPSourceMessage
	if group {
		amount = config.BaseXP["message_group"]
		desc = "Messaggio in gruppo studio"
		action = models.XPActionGroupStudy
	} else if !hasSourceToday(userID, models.XPSourceMessage) {
		amount = config.BaseXP["message_first_today"]
		desc = "Primo messaggio del giorno"
	}
	return awardAs(userID, amount, models.XPSourceMessage, action, desc, ctxData, true, true)
}

// AwardChatbot awards XP for a tutor interaction.
func AwardChatbot(userID uint, study bool, ctxData models.JSONMap) (*AwardResult, error) {
	TouchStreak(userID, time.Now().UTC())
	amount := config.BaseXP["chatbot_question"]
	desc := "Domanda al tutor"
	if study {
		amount = config.BaseXP["chatbot_study"]
		desc = "Sessione di studio col tutor"
	} else if !hasSourceToday(userID, models.XPSourceChatbot) {
		amount = config.BaseXP["chatbot_first_today"]
		desc = "Prima domanda del giorno"
	}
	return Award(userID, amount, models.XPSourceChatbot, desc, ctxData, true, true)
}

// AwardHelp awards XP for helping a classmate. Uncapped source.
func AwardHelp(userID uint, ctxData models.JSONMap) (*AwardResult, error) {
	TouchStreak(userID, time.Now().UTC())
	return Award(userID, config.BaseXP["help_peer"], models.XPSourceHelp, "Aiuto a un compagno", ctxData, true, true)
}

// AwardReaction awards XP for a reaction received. Bypasses caps.
func AwardReaction(userID uint, ctxData models.JSONMap) (*AwardResult, error) {
	return Award(userID, config.BaseXP["reaction_received"], models.XPSourceReaction, "Reazione ricevuta", ctxData, false, true)
}

// AwardChallengeReward pays a completed challenge. Bypasses caps and
// multipliers so the reward lands exactly as defined.
func AwardChallengeReward(userID uint, amount int, ctxData models.JSONMap) (*AwardResult, error) {
	return Award(userID, amount, models.XPSourceChallenge, "Sfida completata", ctxData, false, false)
}

// AwardStreakBonus pays a streak milestone. Bypasses caps and
// multipliers.
func AwardStreakBonus(userID uint, amount int, ctxData models.JSONMap) (*AwardResult, error) {
	return Award(userID, amount, models.XPSourceStreak, "Bonus serie giornaliera", ctxData, false, false)
}

// AdminAdjust writes a compensating ledger entry. The only path where
// negative amounts are allowed.
func AdminAdjust(userID uint, amount int, description string, ctxData models.JSONMap) (*AwardResult, error) {
	return Award(userID, amount, models.XPSourceAdmin, description, ctxData, false, false)
}

// Award runs the full pipeline for one credit: cap check, multiplier,
// ledger append, aggregate update, rank transition, notifications,
// badge unlocks and challenge progression. Serialised per user; a
// capped call performs no writes at all.
func Award(userID uint, amount int, source, description string, ctxData models.JSONMap, checkLimits, applyMultipliers bool) (*AwardResult, error) {
	return awardAs(userID, amount, source, source, description, ctxData, checkLimits, applyMultipliers)
}

// awardAs separates the ledger source from the challenge action:
// a study-group message books under the message cap but advances the
// study_groups objective.
func awardAs(userID uint, amount int, source, action, description string, ctxData models.JSONMap, checkLimits, applyMultipliers bool) (*AwardResult, error) {
	mu := lockUser(userID)
	mu.Lock()
	result, err := awardLocked(userID, amount, source, description, ctxData, checkLimits, applyMultipliers)
	mu.Unlock()
	if err != nil || !result.Granted {
		return result, err
	}

	// Challenge progression observes the action outside the user lock:
	// a completed challenge re-enters Award to pay its reward.
	// Challenge and admin credits do not feed back into progress.
	if source != models.XPSourceChallenge && source != models.XPSourceAdmin {
		ProgressChallenges(userID, action, 1, result.GrantedAmount)
	}
	return result, nil
}

func awardLocked(userID uint, amount int, source, description string, ctxData models.JSONMap, checkLimits, applyMultipliers bool) (*AwardResult, error) {
	db := database.GetDB()
	now := time.Now().UTC()

	state, err := getOrCreateState(db, userID)
	if err != nil {
		return nil, err
	}

	multiplier := 1.0
	if applyMultipliers {
		multiplier = computeMultiplier(db, userID, now)
	}
	effective := int(math.Floor(float64(amount) * multiplier))

	if checkLimits {
		if limit := dailyCap(source); limit > 0 {
			used := xpUsedToday(db, userID, source, now)
			if used+effective > limit {
				return &AwardResult{
					Reason:     "cap",
					NewTotalXP: state.TotalXP,
					Rank:       state.Rank,
				}, nil
			}
		}
	}

	oldRank := state.Rank
	state.TotalXP += effective
	state.SeasonalXP += effective
	state.WeeklyXP += effective
	state.DailyXP += effective
	switch source {
	case models.XPSourceMessage:
		state.MessagesCount++
	case models.XPSourceChatbot:
		state.ChatbotCount++
	case models.XPSourceHelp:
		state.HelpCount++
	}

	newRank := RankForXP(state.TotalXP).Name
	rankUp := rankIndex(newRank) > rankIndex(oldRank)
	state.Rank = newRank
	if rankIndex(newRank) > rankIndex(state.MaxRank) {
		state.MaxRank = newRank
	}

	entry := models.XPLogEntry{
		UserID:      userID,
		Source:      source,
		Amount:      effective,
		BaseAmount:  amount,
		Multiplier:  multiplier,
		Description: description,
		Context:     ctxData,
		CreatedAt:   now,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}
		return tx.Save(state).Error
	})
	if err != nil {
		return nil, err
	}

	result := &AwardResult{
		Granted:       true,
		GrantedAmount: effective,
		Multiplier:    multiplier,
		NewTotalXP:    state.TotalXP,
		Rank:          state.Rank,
		RankUp:        rankUp,
	}
	if result.RankUp {
		result.NewRank = newRank
		GetNotifier().Notify(userID, "rank_up", "Nuovo rango!",
			"Hai raggiunto il rango "+newRank,
			models.JSONMap{"rank": newRank, "total_xp": state.TotalXP})
	}

	if effective > 0 {
		bumpLeaderboards(userID, effective)
	}
	result.NewBadges = checkBadges(db, state)

	return result, nil
}

// computeMultiplier builds the award multiplier: active xp_boost
// power-ups multiply, prime time adds a flat bonus.
func computeMultiplier(db *gorm.DB, userID uint, now time.Time) float64 {
	mult := 1.0

	var boosts []models.UserPowerUp
	if err := db.Joins("PowerUp").
		Where("user_power_ups.user_id = ? AND user_power_ups.expires_at > ?", userID, now).
		Where(`"PowerUp".effect = ?`, "xp_boost").
		Find(&boosts).Error; err == nil {
		for _, b := range boosts {
			if b.PowerUp.Magnitude > 0 {
				mult *= b.PowerUp.Magnitude
			}
		}
	}

	if now.Hour() >= 14 && now.Hour() < 19 {
		mult += config.PrimeTimeBonus
	}
	return mult
}

// xpUsedToday sums today's ledger amounts for a capped source. The
// ledger, not the state row, is authoritative for caps.
func xpUsedToday(db *gorm.DB, userID uint, source string, now time.Time) int {
	var total int64
	db.Model(&models.XPLogEntry{}).
		Where("user_id = ? AND source = ?", userID, source).
		Where("DATE(created_at) = ?", now.Format("2006-01-02")).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total)
	return int(total)
}

func hasSourceToday(userID uint, source string) bool {
	var count int64
	database.GetDB().Model(&models.XPLogEntry{}).
		Where("user_id = ? AND source = ?", userID, source).
		Where("DATE(created_at) = ?", time.Now().UTC().Format("2006-01-02")).
		Count(&count)
	return count > 0
}

func getOrCreateState(db *gorm.DB, userID uint) (*models.GamificationState, error) {
	var state models.GamificationState
	err := db.Where("user_id = ?", userID).First(&state).Error
	if err == gorm.ErrRecordNotFound {
		first := rankLadder[0].Name
		state = models.GamificationState{UserID: userID, Rank: first, MaxRank: first}
		if err := db.Create(&state).Error; err != nil {
			return nil, err
		}
		return &state, nil
	}
	if err != nil {
		return nil, err
	}
	return &state, nil
}

// GetState returns a user's progression state, creating it if missing.
func GetState(userID uint) (*models.GamificationState, error) {
	return getOrCreateState(database.GetDB(), userID)
}

// RecentLedger returns the newest ledger entries for a user.
func RecentLedger(userID uint, limit int) ([]models.XPLogEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var entries []models.XPLogEntry
	err := database.GetDB().Where("user_id = ?", userID).
		Order("created_at DESC").Limit(limit).Find(&entries).Error
	return entries, err
}

// checkBadges awards any badge whose condition the state now meets.
// Returns the codes of newly earned badges.
func checkBadges(db *gorm.DB, state *models.GamificationState) []string {
	var badges []models.Badge
	if err := db.Find(&badges).Error; err != nil {
		return nil
	}

	var earned []string
	for _, badge := range badges {
		var count int64
		db.Model(&models.UserBadge{}).
			Where("user_id = ? AND badge_id = ?", state.UserID, badge.ID).
			Count(&count)
		if count > 0 {
			continue
		}
		if !badgeConditionMet(db, state, badge.Condition) {
			continue
		}

		db.Create(&models.UserBadge{UserID: state.UserID, BadgeID: badge.ID, EarnedAt: time.Now().UTC()})
		if badge.XPReward > 0 {
			db.Create(&models.XPLogEntry{
				UserID:      state.UserID,
				Source:      models.XPSourceBadge,
				Amount:      badge.XPReward,
				BaseAmount:  badge.XPReward,
				Multiplier:  1,
				Description: "Badge " + badge.Name,
				Context:     models.JSONMap{"badge": badge.Code},
				CreatedAt:   time.Now().UTC(),
			})
			state.TotalXP += badge.XPReward
			state.SeasonalXP += badge.XPReward
			state.WeeklyXP += badge.XPReward
			state.DailyXP += badge.XPReward
			state.Rank = RankForXP(state.TotalXP).Name
			if rankIndex(state.Rank) > rankIndex(state.MaxRank) {
				state.MaxRank = state.Rank
			}
			db.Save(state)
			bumpLeaderboards(state.UserID, badge.XPReward)
		}
		GetNotifier().Notify(state.UserID, "badge_earned", "Nuovo badge!",
			"Hai sbloccato "+badge.Name,
			models.JSONMap{"badge": badge.Code, "rarity": badge.Rarity})
		earned = append(earned, badge.Code)
		logger.Info("badge earned", "user_id", state.UserID, "badge", badge.Code)
	}
	return earned
}

func badgeConditionMet(db *gorm.DB, state *models.GamificationState, cond models.JSONMap) bool {
	ctype, _ := cond["type"].(string)
	value := jsonInt(cond["value"])

	switch ctype {
	case "total_xp":
		return state.TotalXP >= value
	case "streak_days":
		return state.StreakDays >= value || state.MaxStreak >= value
	case "action_count":
		source, _ := cond["source"].(string)
		var count int64
		db.Model(&models.XPLogEntry{}).
			Where("user_id = ? AND source = ?", state.UserID, source).
			Count(&count)
		return int(count) >= value
	}
	return false
}

// jsonInt reads an int out of decoded JSON, where numbers arrive as
// float64.
func jsonInt(v interface{}) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	}
	return 0
}

func bumpLeaderboards(userID uint, amount int) {
	rdb := database.GetRedis()
	if rdb == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	member := leaderboardMember(userID)
	if err := rdb.ZIncrBy(ctx, leaderboardKeyWeekly, float64(amount), member).Err(); err != nil {
		logger.Warn("leaderboard bump failed", "key", leaderboardKeyWeekly, "error", err)
	}
	rdb.ZIncrBy(ctx, leaderboardKeyAllTime, float64(amount), member)
}

// ResetDailyXP zeroes every user's daily counter. Run at midnight UTC.
func ResetDailyXP() error {
	return database.GetDB().Model(&models.GamificationState{}).
		Where("daily_xp <> 0").
		Update("daily_xp", 0).Error
}

// ResetWeeklyXP zeroes the weekly counters and drops the weekly
// leaderboard. Run Monday midnight UTC.
func ResetWeeklyXP() error {
	if err := database.GetDB().Model(&models.GamificationState{}).
		Where("weekly_xp <> 0").
		Update("weekly_xp", 0).Error; err != nil {
		return err
	}
	if rdb := database.GetRedis(); rdb != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		rdb.Del(ctx, leaderboardKeyWeekly)
	}
	return nil
}
