package models

import "time"

// NotificationKind tells clients how to style a notification.
type NotificationKind string

const (
	NotificationInfo  NotificationKind = "info"
	NotificationAlert NotificationKind = "alert"
	NotificationError NotificationKind = "error"
)

// NotificationTTL is how long a notification stays visible.
const NotificationTTL = 5 * time.Second

// Notification is a transient user-facing message.
type Notification struct {
	UserID    string           `json:"userId"`
	Kind      NotificationKind `json:"kind"`
	Message   string           `json:"message"`
	CreatedAt time.Time        `json:"createdAt"`
	ExpiresAt time.Time        `json:"expiresAt"`
}

// OutboundMessageRequest represents requests to send a message manually via the API.
type OutboundMessageRequest struct {
	To         string `json:"to" binding:"required"`
	Message    string `json:"message" binding:"required"`
	PreviewURL bool   `json:"preview_url"`
}
