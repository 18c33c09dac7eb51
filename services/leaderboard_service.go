// services/leaderboard_service.go - Weekly and all-time leaderboards
package services

import (
	"context"
	"strconv"
	"time"

	"skaila/database"
	"skaila/logger"
	"skaila/models"
)

const (
	leaderboardKeyWeekly  = "skaila:lb:weekly"
	leaderboardKeyAllTime = "skaila:lb:alltime"
)

func leaderboardMember(userID uint) string {
	return strconv.FormatUint(uint64(userID), 10)
}

// LeaderboardRow is one ranked line of a leaderboard response.
type LeaderboardRow struct {
	Position    int    `json:"position"`
	UserID      uint   `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	XP          int    `json:"xp"`
	Rank        string `json:"rank"`
}

// GetLeaderboard returns the top rows for scope "weekly" or "alltime".
// A non-empty class narrows to classmates, which always uses SQL since
// the Redis sets are global.
func GetLeaderboard(scope, class string, limit int) ([]LeaderboardRow, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if class == "" {
		if rows, ok := leaderboardFromRedis(scope, limit); ok {
			return rows, nil
		}
	}
	return leaderboardFromSQL(scope, class, limit)
}

func leaderboardFromRedis(scope string, limit int) ([]LeaderboardRow, bool) {
	rdb := database.GetRedis()
	if rdb == nil {
		return nil, false
	}
	key := leaderboardKeyAllTime
	if scope == "weekly" {
		key = leaderboardKeyWeekly
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	entries, err := rdb.ZRevRangeWithScores(ctx, key, 0, int64(limit-1)).Result()
	if err != nil || len(entries) == 0 {
		return nil, false
	}

	db := database.GetDB()
	rows := make([]LeaderboardRow, 0, len(entries))
	for i, e := range entries {
		id, err := strconv.ParseUint(e.Member.(string), 10, 64)
		if err != nil {
			continue
		}
		var user models.User
		if err := db.First(&user, uint(id)).Error; err != nil {
			continue
		}
		xp := int(e.Score)
		rows = append(rows, LeaderboardRow{
			Position:    i + 1,
			UserID:      user.ID,
			Username:    user.Username,
			DisplayName: user.DisplayName,
			XP:          xp,
			Rank:        RankForXP(xp).Name,
		})
	}
	return rows, true
}

func leaderboardFromSQL(scope, class string, limit int) ([]LeaderboardRow, error) {
	db := database.GetDB()
	column := "gamification_states.total_xp"
	if scope == "weekly" {
		column = "gamification_states.weekly_xp"
	}

	type row struct {
		UserID      uint
		Username    string
		DisplayName string
		XP          int
		TotalXP     int
	}
	var raw []row

	selectCols := "gamification_states.user_id, users.username, users.display_name, " +
		column + " AS xp, gamification_states.total_xp"
	q := db.Model(&models.GamificationState{}).
		Select(selectCols).
		Joins("JOIN users ON users.id = gamification_states.user_id").
		Where("users.is_banned = ?", false)
	if class != "" {
		q = q.Where("users.class = ?", class)
	}
	if err := q.Order(column + " DESC").Limit(limit).Scan(&raw).Error; err != nil {
		logger.Error("leaderboard query failed", "scope", scope, "error", err)
		return nil, err
	}

	rows := make([]LeaderboardRow, len(raw))
	for i, r := range raw {
		rows[i] = LeaderboardRow{
			Position:    i + 1,
			UserID:      r.UserID,
			Username:    r.Username,
			DisplayName: r.DisplayName,
			XP:          r.XP,
			Rank:        RankForXP(r.TotalXP).Name,
		}
	}
	return rows, nil
}

// UserPosition returns the 1-based position of a user in a scope, SQL
// path. Zero when the user has no state row.
func UserPosition(userID uint, scope string) int {
	db := database.GetDB()
	column := "total_xp"
	if scope == "weekly" {
		column = "weekly_xp"
	}

	var state models.GamificationState
	if err := db.Where("user_id = ?", userID).First(&state).Error; err != nil {
		return 0
	}
	score := state.TotalXP
	if scope == "weekly" {
		score = state.WeeklyXP
	}

	var ahead int64
	db.Model(&models.GamificationState{}).Where(column+" > ?", score).Count(&ahead)
	return int(ahead) + 1
}
