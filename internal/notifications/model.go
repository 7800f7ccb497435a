package notifications

import "time"

// Kind labels what a notification is about.
type Kind string

const (
	KindOrderStatus     Kind = "ORDER_STATUS"
	KindMessageResponse Kind = "MESSAGE_RESPONSE"
	KindSystem          Kind = "SYSTEM"
)

// Notification is an in-app alert delivered to one user.
type Notification struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Kind      Kind      `json:"kind"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}
