package messages

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/printdesk/printdesk/internal/platform/db"
	"github.com/printdesk/printdesk/internal/shared"
)

const messageColumns = `id, user_id, subject, body, status, created_at, responded_at`

// Repository provides message storage backed by Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ RepositoryPort = (*Repository)(nil)

func (r *Repository) Create(ctx context.Context, userID int64, req CreateMessageRequest) (Message, error) {
	var m Message
	err := r.pool.QueryRow(ctx, `
		INSERT INTO messages (user_id, subject, body, status)
		VALUES ($1, $2, $3, 'PENDING')
		RETURNING `+messageColumns,
		userID, req.Subject, req.Body,
	).Scan(&m.ID, &m.UserID, &m.Subject, &m.Body, &m.Status, &m.CreatedAt, &m.RespondedAt)
	if err != nil {
		return Message{}, fmt.Errorf("messages: create: %w", err)
	}
	return m, nil
}

func (r *Repository) Get(ctx context.Context, id int64) (MessageDetail, error) {
	var d MessageDetail
	err := r.pool.QueryRow(ctx, `
		SELECT `+messageColumns+` FROM messages WHERE id = $1`, id,
	).Scan(&d.ID, &d.UserID, &d.Subject, &d.Body, &d.Status, &d.CreatedAt, &d.RespondedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return MessageDetail{}, shared.ErrNotFound
		}
		return MessageDetail{}, fmt.Errorf("messages: get: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, message_id, responder_id, body, created_at
		FROM message_responses
		WHERE message_id = $1
		ORDER BY created_at ASC`, id)
	if err != nil {
		return MessageDetail{}, fmt.Errorf("messages: list responses: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var resp Response
		if err := rows.Scan(&resp.ID, &resp.MessageID, &resp.ResponderID, &resp.Body, &resp.CreatedAt); err != nil {
			return MessageDetail{}, fmt.Errorf("messages: scan response: %w", err)
		}
		d.Responses = append(d.Responses, resp)
	}
	return d, rows.Err()
}

func (r *Repository) ListByUser(ctx context.Context, userID int64) ([]Message, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+messageColumns+`
		FROM messages
		WHERE user_id = $1
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("messages: list by user: %w", err)
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.UserID, &m.Subject, &m.Body, &m.Status, &m.CreatedAt, &m.RespondedAt); err != nil {
			return nil, fmt.Errorf("messages: scan: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *Repository) ListAll(ctx context.Context) ([]MessageWithSender, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT m.id, m.user_id, m.subject, m.body, m.status, m.created_at, m.responded_at,
		       u.name, u.email
		FROM messages m
		JOIN users u ON u.id = m.user_id
		ORDER BY m.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("messages: list all: %w", err)
	}
	defer rows.Close()

	var out []MessageWithSender
	for rows.Next() {
		var m MessageWithSender
		if err := rows.Scan(&m.ID, &m.UserID, &m.Subject, &m.Body, &m.Status, &m.CreatedAt, &m.RespondedAt,
			&m.SenderName, &m.SenderEmail); err != nil {
			return nil, fmt.Errorf("messages: scan: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Respond inserts the answer and marks the parent message responded in one
// transaction. A failure on either statement leaves the message untouched.
func (r *Repository) Respond(ctx context.Context, messageID, responderID int64, body string) (Response, error) {
	var resp Response
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO message_responses (message_id, responder_id, body)
			VALUES ($1, $2, $3)
			RETURNING id, message_id, responder_id, body, created_at`,
			messageID, responderID, body,
		).Scan(&resp.ID, &resp.MessageID, &resp.ResponderID, &resp.Body, &resp.CreatedAt)
		if err != nil {
			return fmt.Errorf("messages: insert response: %w", err)
		}

		tag, err := tx.Exec(ctx, `
			UPDATE messages
			SET status = 'RESPONDED', responded_at = now()
			WHERE id = $1`, messageID)
		if err != nil {
			return fmt.Errorf("messages: mark responded: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return Response{}, err
	}
	return resp, nil
}
