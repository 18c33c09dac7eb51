// services/challenge_service.go - Daily, weekly and class challenges
package services

import (
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"skaila/database"
	"skaila/logger"
	"skaila/models"

	"gorm.io/gorm"
)

func dailySlotKey(t time.Time) string {
	return "daily:" + t.UTC().Format("2006-01-02")
}

func weeklySlotKey(t time.Time, difficulty string) string {
	year, week := t.UTC().ISOWeek()
	return fmt.Sprintf("weekly:%d-W%02d:%s", year, week, difficulty)
}

// nextMidnight returns the first instant of the next UTC day.
func nextMidnight(t time.Time) time.Time {
	return dateOf(t.UTC()).AddDate(0, 0, 1)
}

// nextMonday returns the first instant of the next ISO week.
func nextMonday(t time.Time) time.Time {
	d := dateOf(t.UTC())
	offset := (8 - int(d.Weekday())) % 7
	if offset == 0 {
		offset = 7
	}
	return d.AddDate(0, 0, offset)
}

// AssignDaily gives the user one random eligible daily challenge for
// today. The slot key's unique index makes double assignment a no-op:
// the existing instance is returned with assigned=false.
func AssignDaily(userID uint) (bool, *models.UserChallenge, error) {
	db := database.GetDB()
	now := time.Now().UTC()
	slot := dailySlotKey(now)

	var existing models.UserChallenge
	if err := db.Preload("Challenge").
		Where("user_id = ? AND slot_key = ?", userID, slot).
		First(&existing).Error; err == nil {
		return false, &existing, nil
	}

	pool, err := eligibleChallenges(db, userID, models.ChallengeKindDaily, "")
	if err != nil {
		return false, nil, err
	}
	if len(pool) == 0 {
		return false, nil, nil
	}
	tpl := pool[rand.Intn(len(pool))]

	instance, err := instantiate(db, userID, &tpl, slot, expiryFor(&tpl, nextMidnight(now)))
	if err != nil {
		// lost the race on the slot, someone assigned concurrently
		if err := db.Preload("Challenge").
			Where("user_id = ? AND slot_key = ?", userID, slot).
			First(&existing).Error; err == nil {
			return false, &existing, nil
		}
		return false, nil, err
	}
	return true, instance, nil
}

// AssignWeekly deletes uncompleted weekly instances from past weeks
// and assigns one easy, one medium and one hard challenge for the
// current week. Existing slots are kept.
func AssignWeekly(userID uint) ([]models.UserChallenge, error) {
	db := database.GetDB()
	now := time.Now().UTC()

	db.Where("user_id = ? AND completed = ? AND slot_key LIKE 'weekly:%' AND expires_at <= ?",
		userID, false, now).Delete(&models.UserChallenge{})

	for _, difficulty := range []string{models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard} {
		slot := weeklySlotKey(now, difficulty)
		var count int64
		db.Model(&models.UserChallenge{}).
			Where("user_id = ? AND slot_key = ?", userID, slot).Count(&count)
		if count > 0 {
			continue
		}

		pool, err := eligibleChallenges(db, userID, models.ChallengeKindWeekly, difficulty)
		if err != nil {
			return nil, err
		}
		if len(pool) == 0 {
			continue
		}
		tpl := pool[rand.Intn(len(pool))]
		instantiate(db, userID, &tpl, slot, expiryFor(&tpl, nextMonday(now)))
	}

	var instances []models.UserChallenge
	err := db.Preload("Challenge").
		Where("user_id = ? AND slot_key LIKE 'weekly:%' AND expires_at > ?", userID, now).
		Find(&instances).Error
	return instances, err
}

// AssignClass attaches a class challenge to a class. One row per
// (class, challenge), enforced by the unique index.
func AssignClass(class, school string, challengeID uint) (*models.ClassChallenge, error) {
	db := database.GetDB()

	var tpl models.Challenge
	if err := db.First(&tpl, challengeID).Error; err != nil {
		return nil, err
	}

	progress := models.IntMap{}
	for k := range tpl.Targets {
		progress[k] = 0
	}
	cc := models.ClassChallenge{
		Class:        class,
		ChallengeID:  challengeID,
		School:       school,
		Progress:     progress,
		Contributors: models.IntMap{},
		AssignedAt:   time.Now().UTC(),
	}
	if err := db.Create(&cc).Error; err != nil {
		return nil, err
	}
	cc.Challenge = &tpl
	return &cc, nil
}

func eligibleChallenges(db *gorm.DB, userID uint, kind models.ChallengeKind, difficulty string) ([]models.Challenge, error) {
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return nil, ErrUserNotFound
	}

	q := db.Where("kind = ? AND active = ?", kind, true)
	if difficulty != "" {
		q = q.Where("difficulty = ?", difficulty)
	}
	if user.Year > 0 {
		q = q.Where("year_min <= ? AND year_max >= ?", user.Year, user.Year)
	}

	var pool []models.Challenge
	err := q.Find(&pool).Error
	return pool, err
}

func instantiate(db *gorm.DB, userID uint, tpl *models.Challenge, slot string, expires time.Time) (*models.UserChallenge, error) {
	progress := models.IntMap{}
	for k := range tpl.Targets {
		progress[k] = 0
	}
	instance := models.UserChallenge{
		UserID:      userID,
		ChallengeID: tpl.ID,
		SlotKey:     slot,
		Progress:    progress,
		AssignedAt:  time.Now().UTC(),
		ExpiresAt:   expires,
	}
	if err := db.Create(&instance).Error; err != nil {
		return nil, err
	}
	instance.Challenge = tpl
	return &instance, nil
}

// expiryFor honours a challenge's own end time when it comes before
// the period boundary.
func expiryFor(tpl *models.Challenge, boundary time.Time) time.Time {
	if tpl.EndsAt != nil && tpl.EndsAt.Before(boundary) {
		return *tpl.EndsAt
	}
	return boundary
}

// objectiveKey maps an action to the challenge objective it advances.
func objectiveKey(action string) string {
	switch action {
	case models.XPSourceMessage:
		return "messages"
	case models.XPSourceChatbot:
		return "chatbot_interactions"
	case models.XPSourceHelp:
		return "peers_helped"
	case models.XPActionGroupStudy:
		return "study_groups"
	case models.XPSourceReaction:
		return "reactions"
	}
	return ""
}

// ProgressChallenges advances every live instance whose targets track
// the action, plus xp_accumulated by the credited amount. Completion
// pays the reward, grants the badge and notifies, all marked in the
// same transaction so a double completion cannot double-award.
func ProgressChallenges(userID uint, action string, count, xpGained int) {
	db := database.GetDB()
	now := time.Now().UTC()
	key := objectiveKey(action)

	var instances []models.UserChallenge
	if err := db.Preload("Challenge").
		Where("user_id = ? AND completed = ? AND expires_at > ?", userID, false, now).
		Find(&instances).Error; err != nil {
		return
	}

	for i := range instances {
		uc := &instances[i]
		if uc.Challenge == nil {
			continue
		}
		if !applyProgress(uc, key, count, xpGained) {
			continue
		}

		done := challengeComplete(uc)
		err := db.Transaction(func(tx *gorm.DB) error {
			if done {
				uc.Completed = true
				completedAt := now
				uc.CompletedAt = &completedAt
			}
			return tx.Save(uc).Error
		})
		if err != nil {
			logger.Error("challenge progress save failed", "user_id", userID, "challenge_id", uc.ChallengeID, "error", err)
			continue
		}
		if done {
			rewardChallenge(db, uc)
		}
	}

	progressClassChallenges(db, userID, key, count, xpGained, now)
}

// applyProgress bumps the tracked objectives, clamped at their
// targets. Returns false when nothing tracked changed.
func applyProgress(uc *models.UserChallenge, key string, count, xpGained int) bool {
	if uc.Progress == nil {
		uc.Progress = models.IntMap{}
	}
	changed := false
	if target, tracked := uc.Challenge.Targets[key]; tracked && key != "" {
		next := uc.Progress[key] + count
		if next > target {
			next = target
		}
		if next != uc.Progress[key] {
			uc.Progress[key] = next
			changed = true
		}
	}
	if target, tracked := uc.Challenge.Targets["xp_accumulated"]; tracked && xpGained > 0 {
		next := uc.Progress["xp_accumulated"] + xpGained
		if next > target {
			next = target
		}
		if next != uc.Progress["xp_accumulated"] {
			uc.Progress["xp_accumulated"] = next
			changed = true
		}
	}
	return changed
}

func challengeComplete(uc *models.UserChallenge) bool {
	for key, target := range uc.Challenge.Targets {
		if uc.Progress[key] < target {
			return false
		}
	}
	return true
}

func rewardChallenge(db *gorm.DB, uc *models.UserChallenge) {
	AwardChallengeReward(uc.UserID, uc.Challenge.RewardXP,
		models.JSONMap{"challenge": uc.Challenge.Name, "slot_key": uc.SlotKey})

	if uc.Challenge.BadgeID != nil {
		var count int64
		db.Model(&models.UserBadge{}).
			Where("user_id = ? AND badge_id = ?", uc.UserID, *uc.Challenge.BadgeID).
			Count(&count)
		if count == 0 {
			db.Create(&models.UserBadge{
				UserID:   uc.UserID,
				BadgeID:  *uc.Challenge.BadgeID,
				EarnedAt: time.Now().UTC(),
			})
		}
	}

	GetNotifier().Notify(uc.UserID, "challenge_completed", "Sfida completata!",
		uc.Challenge.Name, models.JSONMap{
			"challenge": uc.Challenge.Name,
			"reward_xp": uc.Challenge.RewardXP,
		})
	logger.Info("challenge completed", "user_id", uc.UserID, "challenge", uc.Challenge.Name)
}

// progressClassChallenges adds the contribution to any open
// cooperative challenge of the user's class and tracks the per-user
// contribution for the leaderboard.
func progressClassChallenges(db *gorm.DB, userID uint, key string, count, xpGained int, now time.Time) {
	var user models.User
	if err := db.First(&user, userID).Error; err != nil || user.Class == "" {
		return
	}

	var rows []models.ClassChallenge
	if err := db.Preload("Challenge").
		Where("class = ? AND completed = ?", user.Class, false).
		Find(&rows).Error; err != nil {
		return
	}

	member := strconv.FormatUint(uint64(userID), 10)
	for i := range rows {
		cc := &rows[i]
		if cc.Challenge == nil {
			continue
		}
		if cc.Challenge.EndsAt != nil && cc.Challenge.EndsAt.Before(now) {
			continue
		}

		changed := false
		if cc.Progress == nil {
			cc.Progress = models.IntMap{}
		}
		if _, tracked := cc.Challenge.Targets[key]; tracked && key != "" {
			cc.Progress[key] += count
			changed = true
		}
		if _, tracked := cc.Challenge.Targets["xp_accumulated"]; tracked && xpGained > 0 {
			cc.Progress["xp_accumulated"] += xpGained
			changed = true
		}
		if !changed {
			continue
		}

		if cc.Contributors == nil {
			cc.Contributors = models.IntMap{}
		}
		cc.Contributors[member] += count

		if classChallengeComplete(cc) {
			cc.Completed = true
			completedAt := now
			cc.CompletedAt = &completedAt
		}
		db.Save(cc)

		if cc.Completed {
			rewardClassChallenge(db, cc)
		}
	}
}

func classChallengeComplete(cc *models.ClassChallenge) bool {
	for key, target := range cc.Challenge.Targets {
		if cc.Progress[key] < target {
			return false
		}
	}
	return true
}

// rewardClassChallenge pays every student of the class once the shared
// target is reached.
func rewardClassChallenge(db *gorm.DB, cc *models.ClassChallenge) {
	var members []models.User
	if err := db.Where("class = ? AND role = ?", cc.Class, "student").Find(&members).Error; err != nil {
		return
	}
	for _, m := range members {
		AwardChallengeReward(m.ID, cc.Challenge.RewardXP,
			models.JSONMap{"class_challenge": cc.ID})
		GetNotifier().Notify(m.ID, "class_challenge_completed", "Sfida di classe completata!",
			cc.Challenge.Name, models.JSONMap{"reward_xp": cc.Challenge.RewardXP})
	}
	logger.Info("class challenge completed", "class", cc.Class, "challenge_id", cc.ChallengeID)
}

// TopContributors returns the class challenge contributor board,
// sorted by contribution descending.
func TopContributors(cc *models.ClassChallenge, limit int) []LeaderboardRow {
	type pair struct {
		id    uint
		count int
	}
	pairs := make([]pair, 0, len(cc.Contributors))
	for member, count := range cc.Contributors {
		id, err := strconv.ParseUint(member, 10, 64)
		if err != nil {
			continue
		}
		pairs = append(pairs, pair{uint(id), count})
	}
	for i := 1; i < len(pairs); i++ {
		for j := i; j > 0 && pairs[j].count > pairs[j-1].count; j-- {
			pairs[j], pairs[j-1] = pairs[j-1], pairs[j]
		}
	}
	if limit > 0 && len(pairs) > limit {
		pairs = pairs[:limit]
	}

	db := database.GetDB()
	rows := make([]LeaderboardRow, 0, len(pairs))
	for i, p := range pairs {
		var user models.User
		if err := db.First(&user, p.id).Error; err != nil {
			continue
		}
		rows = append(rows, LeaderboardRow{
			Position:    i + 1,
			UserID:      user.ID,
			Username:    user.Username,
			DisplayName: user.DisplayName,
			XP:          p.count,
		})
	}
	return rows
}

// ActiveChallenges returns the user's unexpired instances.
func ActiveChallenges(userID uint) ([]models.UserChallenge, error) {
	var instances []models.UserChallenge
	err := database.GetDB().Preload("Challenge").
		Where("user_id = ? AND expires_at > ?", userID, time.Now().UTC()).
		Order("completed ASC, id ASC").
		Find(&instances).Error
	return instances, err
}
