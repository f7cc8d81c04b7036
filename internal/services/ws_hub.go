package services

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// WSMessage represents a notification sent over a WebSocket connection.
type WSMessage struct {
	Type      string `json:"type"`
	PinID     string `json:"pin_id,omitempty"`
	UserID    string `json:"user_id,omitempty"`
	Username  string `json:"username,omitempty"`
	Timestamp int64  `json:"timestamp,omitempty"`
	Message   string `json:"message,omitempty"`
}

// WSHub manages the notification connections. Delivery is best-effort:
// offline users simply miss events, and send failures never propagate to
// the request that produced them.
type WSHub struct {
	mu          sync.RWMutex
	connections map[string]*websocket.Conn
}

// NewWSHub creates a new WebSocket hub
func NewWSHub() *WSHub {
	return &WSHub{
		connections: make(map[string]*websocket.Conn),
	}
}

// Register registers a connection for a user, replacing any existing one.
func (h *WSHub) Register(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if existing, ok := h.connections[userID]; ok {
		existing.Close()
	}
	h.connections[userID] = conn

	log.Info().Str("user_id", userID).Msg("WebSocket connection registered")
}

// Unregister removes a user's connection if it is the given one.
func (h *WSHub) Unregister(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if current, ok := h.connections[userID]; ok && current == conn {
		current.Close()
		delete(h.connections, userID)
		log.Info().Str("user_id", userID).Msg("WebSocket connection unregistered")
	}
}

// IsOnline checks if a user has a registered connection.
func (h *WSHub) IsOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.connections[userID]
	return ok
}

// SendToUser sends a message to a specific user.
func (h *WSHub) SendToUser(userID string, message WSMessage) error {
	h.mu.RLock()
	conn, ok := h.connections[userID]
	h.mu.RUnlock()

	if !ok {
		return fmt.Errorf("user %s is not connected", userID)
	}

	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		h.Unregister(userID, conn)
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}

// NotifyPinLiked tells a pin's owner that someone liked it.
func (h *WSHub) NotifyPinLiked(ownerID, pinID, likerID string) {
	if ownerID == likerID || !h.IsOnline(ownerID) {
		return
	}

	msg := WSMessage{
		Type:      "pin_liked",
		PinID:     pinID,
		UserID:    likerID,
		Timestamp: time.Now().UnixMilli(),
	}
	if err := h.SendToUser(ownerID, msg); err != nil {
		log.Error().Err(err).Str("user_id", ownerID).Msg("Failed to notify pin owner")
	}
}

// NotifyNewFollower tells a user that someone started following them.
func (h *WSHub) NotifyNewFollower(targetID, followerID string) {
	if !h.IsOnline(targetID) {
		return
	}

	msg := WSMessage{
		Type:      "new_follower",
		UserID:    followerID,
		Timestamp: time.Now().UnixMilli(),
	}
	if err := h.SendToUser(targetID, msg); err != nil {
		log.Error().Err(err).Str("user_id", targetID).Msg("Failed to notify new follower")
	}
}
