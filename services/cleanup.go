// services/cleanup.go - Background maintenance sweeps
package services

import (
	"time"

	"skaila/database"
	"skaila/logger"
	"skaila/models"
)

// CleanupService runs the periodic maintenance: closing idle telemetry
// sessions, evicting the text cache, purging expired power-ups and
// resetting the daily and weekly XP counters at their boundaries.
type CleanupService struct {
	stop chan struct{}
}

var cleanupService *CleanupService

// InitCleanupService initializes the singleton cleanup service.
func InitCleanupService() {
	cleanupService = &CleanupService{stop: make(chan struct{})}
}

// GetCleanupService returns the initialized cleanup service.
func GetCleanupService() *CleanupService {
	return cleanupService
}

// Start launches the background workers.
func (s *CleanupService) Start() {
	go s.sweepLoop()
	go s.resetLoop()
}

// Stop signals the workers to exit.
func (s *CleanupService) Stop() {
	close(s.stop)
}

// sweepLoop runs the frequent housekeeping every five minutes.
func (s *CleanupService) sweepLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			if closed, err := CloseInactiveSessions(); err != nil {
				logger.Error("session sweep failed", "error", err)
			} else if closed > 0 {
				logger.Info("closed inactive sessions", "count", closed)
			}
			if _, err := EvictCache(); err != nil {
				logger.Error("cache eviction failed", "error", err)
			}
			s.purgeExpiredPowerUps()
		}
	}
}

// resetLoop fires the daily and weekly counter resets at UTC midnight.
func (s *CleanupService) resetLoop() {
	for {
		now := time.Now().UTC()
		next := dateOf(now).AddDate(0, 0, 1)
		select {
		case <-s.stop:
			return
		case <-time.After(next.Sub(now)):
		}

		if err := ResetDailyXP(); err != nil {
			logger.Error("daily xp reset failed", "error", err)
		}
		if time.Now().UTC().Weekday() == time.Monday {
			if err := ResetWeeklyXP(); err != nil {
				logger.Error("weekly xp reset failed", "error", err)
			}
		}
	}
}

func (s *CleanupService) purgeExpiredPowerUps() {
	res := database.GetDB().
		Where("expires_at < ?", time.Now().UTC()).
		Delete(&models.UserPowerUp{})
	if res.Error != nil {
		logger.Error("power-up purge failed", "error", res.Error)
	}
}
