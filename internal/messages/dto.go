package messages

// CreateMessageRequest is the payload for sending a new inquiry.
type CreateMessageRequest struct {
	Subject string `json:"subject" validate:"required,max=200"`
	Body    string `json:"body" validate:"required,max=5000"`
}

// RespondRequest is the payload for a staff answer.
type RespondRequest struct {
	Body string `json:"body" validate:"required,max=5000"`
}
