// handlers/notifications.go
package handlers

import (
	"skaila/database"
	"skaila/middleware"
	"skaila/models"
	"skaila/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// ListNotifications returns the caller's notifications, newest first.
func ListNotifications(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	limit := c.QueryInt("limit", 50)
	unreadOnly := c.Query("unread") == "true"

	q := database.GetDB().Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("read = ?", false)
	}

	var notifications []models.Notification
	if err := q.Order("created_at DESC").Limit(limit).Find(&notifications).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to load notifications"})
	}
	return c.JSON(fiber.Map{
		"success":       true,
		"notifications": notifications,
	})
}

// MarkNotificationsRead flags all of the caller's notifications read,
// or just one when an id is given.
func MarkNotificationsRead(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	q := database.GetDB().Model(&models.Notification{}).Where("user_id = ?", userID)
	if id := c.QueryInt("id", 0); id > 0 {
		q = q.Where("id = ?", id)
	}
	if err := q.Update("read", true).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to update notifications"})
	}
	return c.JSON(fiber.Map{"success": true})
}

// NotificationSocket keeps a WebSocket open and pushes the caller's
// notifications as they happen. Reads are drained only to detect
// disconnects.
func NotificationSocket() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userID, ok := socketUserID(conn)
		if !ok {
			conn.Close()
			return
		}

		notifier := services.GetNotifier()
		notifier.Register(userID, conn)
		defer notifier.Unregister(userID, conn)

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
}

func socketUserID(conn *websocket.Conn) (uint, bool) {
	switch id := conn.Locals("userId").(type) {
	case float64:
		return uint(id), true
	case uint:
		return id, true
	}
	return 0, false
}
