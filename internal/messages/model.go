package messages

import "time"

// MessageStatus tracks whether staff already answered a message.
type MessageStatus string

const (
	MessageStatusPending   MessageStatus = "PENDING"
	MessageStatusResponded MessageStatus = "RESPONDED"
)

// Message is a customer inquiry addressed to the print shop.
type Message struct {
	ID          int64         `json:"id"`
	UserID      int64         `json:"user_id"`
	Subject     string        `json:"subject"`
	Body        string        `json:"body"`
	Status      MessageStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	RespondedAt *time.Time    `json:"responded_at,omitempty"`
}

// Response is a staff answer attached to a message.
type Response struct {
	ID          int64     `json:"id"`
	MessageID   int64     `json:"message_id"`
	ResponderID int64     `json:"responder_id"`
	Body        string    `json:"body"`
	CreatedAt   time.Time `json:"created_at"`
}

// MessageWithSender carries the sender name for the staff inbox.
type MessageWithSender struct {
	Message
	SenderName  string `json:"sender_name"`
	SenderEmail string `json:"sender_email"`
}

// MessageDetail bundles a message with its responses.
type MessageDetail struct {
	Message
	Responses []Response `json:"responses"`
}
