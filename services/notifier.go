// services/notifier.go - Notification fan-out
package services

import (
	"sync"
	"time"

	"skaila/database"
	"skaila/logger"
	"skaila/models"

	"github.com/gofiber/websocket/v2"
)

// Notifier persists notifications and pushes them to connected
// websocket clients. A user may have several open connections.
type Notifier struct {
	mu    sync.RWMutex
	conns map[uint]map[*websocket.Conn]bool
}

var (
	notifier     *Notifier
	notifierOnce sync.Once
)

// GetNotifier returns the shared notifier instance.
func GetNotifier() *Notifier {
	notifierOnce.Do(func() {
		notifier = &Notifier{conns: make(map[uint]map[*websocket.Conn]bool)}
	})
	return notifier
}

// Register attaches a websocket connection for a user.
func (n *Notifier) Register(userID uint, conn *websocket.Conn) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.conns[userID] == nil {
		n.conns[userID] = make(map[*websocket.Conn]bool)
	}
	n.conns[userID][conn] = true
}

// Unregister detaches a connection. Safe to call twice.
func (n *Notifier) Unregister(userID uint, conn *websocket.Conn) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if set, ok := n.conns[userID]; ok {
		delete(set, conn)
		if len(set) == 0 {
			delete(n.conns, userID)
		}
	}
}

// Notify stores the notification and pushes it to any live connections.
// Delivery failures are logged and ignored, the DB row is the source of
// truth.
func (n *Notifier) Notify(userID uint, ntype, title, body string, data models.JSONMap) {
	notif := models.Notification{
		UserID:    userID,
		Type:      ntype,
		Title:     title,
		Body:      body,
		Data:      data,
		CreatedAt: time.Now().UTC(),
	}
	if err := database.GetDB().Create(&notif).Error; err != nil {
		logger.Error("failed to store notification", "user_id", userID, "type", ntype, "error", err)
		return
	}

	n.mu.RLock()
	defer n.mu.RUnlock()
	for conn := range n.conns[userID] {
		if err := conn.WriteJSON(notif); err != nil {
			logger.Warn("websocket push failed", "user_id", userID, "error", err)
		}
	}
}
