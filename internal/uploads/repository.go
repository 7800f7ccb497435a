package uploads

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/printdesk/printdesk/internal/shared"
)

const uploadColumns = `id, user_id, category, file_path, file_name, file_size, content_type, created_at, deleted_at`

// Repository provides upload metadata storage backed by Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ RepositoryPort = (*Repository)(nil)

func (r *Repository) Create(ctx context.Context, u Upload) (Upload, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO uploads (user_id, category, file_path, file_name, file_size, content_type)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`,
		u.UserID, u.Category, u.FilePath, u.FileName, u.FileSize, u.ContentType,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		return Upload{}, fmt.Errorf("uploads: create: %w", err)
	}
	return u, nil
}

func (r *Repository) Get(ctx context.Context, id int64) (Upload, error) {
	var u Upload
	err := r.pool.QueryRow(ctx, `
		SELECT `+uploadColumns+` FROM uploads WHERE id = $1 AND deleted_at IS NULL`, id,
	).Scan(&u.ID, &u.UserID, &u.Category, &u.FilePath, &u.FileName, &u.FileSize, &u.ContentType, &u.CreatedAt, &u.DeletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Upload{}, shared.ErrNotFound
		}
		return Upload{}, fmt.Errorf("uploads: get: %w", err)
	}
	return u, nil
}

// SoftDelete stamps deleted_at; the worker purges the object later.
func (r *Repository) SoftDelete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE uploads SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("uploads: soft delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ListExpired returns soft-deleted uploads older than the cutoff whose
// objects still need purging from storage.
func (r *Repository) ListExpired(ctx context.Context, cutoff time.Time) ([]Upload, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+uploadColumns+`
		FROM uploads
		WHERE deleted_at IS NOT NULL AND deleted_at < $1
		ORDER BY deleted_at ASC
		LIMIT 500`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("uploads: list expired: %w", err)
	}
	defer rows.Close()

	var out []Upload
	for rows.Next() {
		var u Upload
		if err := rows.Scan(&u.ID, &u.UserID, &u.Category, &u.FilePath, &u.FileName, &u.FileSize, &u.ContentType, &u.CreatedAt, &u.DeletedAt); err != nil {
			return nil, fmt.Errorf("uploads: scan: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Purge removes the metadata row after the object itself is gone.
func (r *Repository) Purge(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM uploads WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("uploads: purge: %w", err)
	}
	return nil
}
