// services/alert_service.go - Early-warning alerts for teachers
package services

import (
	"fmt"
	"time"

	"skaila/config"
	"skaila/database"
	"skaila/logger"
	"skaila/models"

	"gorm.io/gorm"
)

// recommendedActions is the deterministic action list per alert type.
var recommendedActions = map[string]models.StringList{
	models.AlertTypeStrugglePattern: {
		"Fissare un colloquio individuale",
		"Proporre esercizi guidati sui punti deboli",
		"Attivare il tutor virtuale in modalità studio",
	},
	models.AlertTypeHintDependency: {
		"Ridurre gradualmente i suggerimenti disponibili",
		"Proporre esercizi di consolidamento",
	},
	models.AlertTypeRetrySaturation: {
		"Rivedere il materiale introduttivo",
		"Abbassare la difficoltà degli esercizi assegnati",
	},
	models.AlertTypeEngagementDrop: {
		"Contattare lo studente",
		"Proporre una sfida di classe",
	},
}

// EvaluateAlerts aggregates the user's telemetry over the rolling
// window and opens a struggle_pattern alert when the struggle count
// crosses the threshold. De-duplication: at most one active alert per
// (user, type); an existing active alert is refreshed in place.
func EvaluateAlerts(userID uint) error {
	db := database.GetDB()
	since := time.Now().UTC().AddDate(0, 0, -config.AlertWindowDays)

	var struggleCount int64
	if err := db.Model(&models.TelemetryEvent{}).
		Where("user_id = ? AND created_at >= ? AND struggle = ?", userID, since, true).
		Count(&struggleCount).Error; err != nil {
		return err
	}
	if int(struggleCount) < config.AlertMinStruggleCount {
		return nil
	}

	var avgAccuracy float64
	db.Model(&models.TelemetryEvent{}).
		Where("user_id = ? AND created_at >= ? AND accuracy IS NOT NULL", userID, since).
		Select("COALESCE(AVG(accuracy), 100)").
		Scan(&avgAccuracy)

	return upsertAlert(db, userID, models.AlertTypeStrugglePattern, int(struggleCount), avgAccuracy)
}

func upsertAlert(db *gorm.DB, userID uint, alertType string, struggleCount int, avgAccuracy float64) error {
	severity := severityFor(struggleCount, avgAccuracy)
	evidence := models.JSONMap{
		"struggle_count": struggleCount,
		"avg_accuracy":   avgAccuracy,
		"window_days":    config.AlertWindowDays,
	}
	title := "Pattern di difficoltà rilevato"
	description := fmt.Sprintf(
		"%d segnali di difficoltà negli ultimi %d giorni, accuratezza media %.0f%%",
		struggleCount, config.AlertWindowDays, avgAccuracy)

	var alert models.Alert
	err := db.Where("user_id = ? AND type = ? AND status = ?", userID, alertType, models.AlertStatusActive).
		First(&alert).Error

	if err == gorm.ErrRecordNotFound {
		var user models.User
		db.First(&user, userID)

		alert = models.Alert{
			UserID:             userID,
			School:             user.School,
			Type:               alertType,
			Severity:           severity,
			Status:             models.AlertStatusActive,
			Title:              title,
			Description:        description,
			Evidence:           evidence,
			RecommendedActions: recommendedActions[alertType],
			CreatedAt:          time.Now().UTC(),
		}
		// Uniqueness of (user, type, active) holds because every
		// evaluation funnels through the single alert worker.
		if err := db.Create(&alert).Error; err != nil {
			return err
		}
		if severity == models.AlertSeverityHigh || severity == models.AlertSeverityCritical {
			attachRecoveryPath(db, &alert)
		}
		notifyTeachers(db, &user, &alert)
		logger.Info("alert raised", "user_id", userID, "type", alertType, "severity", severity)
		return nil
	}
	if err != nil {
		return err
	}

	alert.Severity = maxSeverity(alert.Severity, severity)
	alert.Description = description
	alert.Evidence = evidence
	return db.Save(&alert).Error
}

// severityFor applies the escalation ladder, first match wins.
func severityFor(struggleCount int, avgAccuracy float64) string {
	switch {
	case avgAccuracy < 30 || struggleCount > 10:
		return models.AlertSeverityCritical
	case avgAccuracy < 50 || struggleCount > 7:
		return models.AlertSeverityHigh
	case avgAccuracy < 60 || struggleCount > 5:
		return models.AlertSeverityMedium
	default:
		return models.AlertSeverityLow
	}
}

var severityOrder = map[string]int{
	models.AlertSeverityLow:      0,
	models.AlertSeverityMedium:   1,
	models.AlertSeverityHigh:     2,
	models.AlertSeverityCritical: 3,
}

// maxSeverity keeps an active alert from de-escalating between sweeps.
func maxSeverity(a, b string) string {
	if severityOrder[b] > severityOrder[a] {
		return b
	}
	return a
}

// attachRecoveryPath builds a remediation plan for high severity
// alerts and links it back to the alert.
func attachRecoveryPath(db *gorm.DB, alert *models.Alert) {
	path := models.RecoveryPath{
		AlertID: alert.ID,
		UserID:  alert.UserID,
		Steps: models.JSONMap{
			"tutor_sessions": 3,
			"practice_mode":  "guided",
			"review_window":  "7d",
		},
		Status:    "suggested",
		CreatedAt: time.Now().UTC(),
	}
	if err := db.Create(&path).Error; err != nil {
		return
	}
	alert.RecoveryPathID = &path.ID
	db.Save(alert)
}

// notifyTeachers pushes the alert to every teacher of the student's
// class, or the school when no class is set.
func notifyTeachers(db *gorm.DB, student *models.User, alert *models.Alert) {
	var teachers []models.User
	q := db.Where("role = ?", "teacher")
	if student.Class != "" {
		q = q.Where("class = ?", student.Class)
	} else if student.School != "" {
		q = q.Where("school = ?", student.School)
	}
	if err := q.Find(&teachers).Error; err != nil {
		return
	}

	for _, t := range teachers {
		GetNotifier().Notify(t.ID, "student_alert", "Studente in difficoltà",
			alert.Description, models.JSONMap{
				"alert_id": alert.ID,
				"student":  student.Username,
				"type":     alert.Type,
				"severity": alert.Severity,
			})
	}
}

// AcknowledgeAlert marks an alert as seen by a teacher.
func AcknowledgeAlert(alertID, teacherID uint, notes string) (*models.Alert, error) {
	db := database.GetDB()
	var alert models.Alert
	if err := db.First(&alert, alertID).Error; err != nil {
		return nil, ErrAlertNotFound
	}
	if alert.Status != models.AlertStatusActive {
		return nil, ErrInvalidAlertState
	}
	now := time.Now().UTC()
	alert.Status = models.AlertStatusAcknowledged
	alert.AcknowledgedBy = &teacherID
	alert.AcknowledgedAt = &now
	if notes != "" {
		if alert.Evidence == nil {
			alert.Evidence = models.JSONMap{}
		}
		alert.Evidence["notes"] = notes
	}
	if err := db.Save(&alert).Error; err != nil {
		return nil, err
	}
	return &alert, nil
}

// ResolveAlert closes an alert, recording how it was resolved.
func ResolveAlert(alertID uint, method string) (*models.Alert, error) {
	db := database.GetDB()
	var alert models.Alert
	if err := db.First(&alert, alertID).Error; err != nil {
		return nil, ErrAlertNotFound
	}
	if alert.Status == models.AlertStatusResolved {
		return nil, ErrInvalidAlertState
	}
	now := time.Now().UTC()
	alert.Status = models.AlertStatusResolved
	alert.ResolvedAt = &now
	alert.ResolutionMethod = method
	if err := db.Save(&alert).Error; err != nil {
		return nil, err
	}
	return &alert, nil
}

// TeacherAlerts lists unresolved alerts for a teacher's students,
// severity descending then newest first.
func TeacherAlerts(teacher *models.User) ([]models.Alert, error) {
	db := database.GetDB()
	q := db.Model(&models.Alert{}).
		Joins("JOIN users ON users.id = alerts.user_id").
		Where("alerts.status IN ?", []string{models.AlertStatusActive, models.AlertStatusAcknowledged})
	if teacher.Class != "" {
		q = q.Where("users.class = ?", teacher.Class)
	} else if teacher.School != "" {
		q = q.Where("users.school = ?", teacher.School)
	}

	var alerts []models.Alert
	err := q.Order(`CASE alerts.severity
			WHEN 'critical' THEN 3
			WHEN 'high' THEN 2
			WHEN 'medium' THEN 1
			ELSE 0 END DESC, alerts.created_at DESC`).
		Find(&alerts).Error
	return alerts, err
}

// UserAlerts lists a student's own alerts.
func UserAlerts(userID uint) ([]models.Alert, error) {
	var alerts []models.Alert
	err := database.GetDB().Where("user_id = ?", userID).
		Order("created_at DESC").Find(&alerts).Error
	return alerts, err
}

// Recovery path statuses walk suggested -> in_progress -> completed.
var recoveryNextStatus = map[string]string{
	"suggested":   "in_progress",
	"in_progress": "completed",
}

// UserRecoveryPaths lists a student's remediation plans, newest first.
func UserRecoveryPaths(userID uint) ([]models.RecoveryPath, error) {
	var paths []models.RecoveryPath
	err := database.GetDB().Where("user_id = ?", userID).
		Order("created_at DESC").Find(&paths).Error
	return paths, err
}

// AdvanceRecoveryPath moves a student's plan to its next status. A
// completed plan cannot advance further.
func AdvanceRecoveryPath(pathID, userID uint) (*models.RecoveryPath, error) {
	db := database.GetDB()
	var path models.RecoveryPath
	if err := db.Where("id = ? AND user_id = ?", pathID, userID).First(&path).Error; err != nil {
		return nil, ErrRecoveryPathNotFound
	}
	next, ok := recoveryNextStatus[path.Status]
	if !ok {
		return nil, ErrInvalidAlertState
	}
	path.Status = next
	if err := db.Save(&path).Error; err != nil {
		return nil, err
	}
	logger.Info("recovery path advanced", "path_id", path.ID, "user_id", userID, "status", next)
	return &path, nil
}
