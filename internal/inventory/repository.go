package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/printdesk/printdesk/internal/platform/db"
	"github.com/printdesk/printdesk/internal/shared"
)

const materialColumns = `id, name, sku, unit, quantity, updated_at`

// Repository provides material storage backed by Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ RepositoryPort = (*Repository)(nil)

func (r *Repository) CreateMaterial(ctx context.Context, req CreateMaterialRequest) (Material, error) {
	var m Material
	err := r.pool.QueryRow(ctx, `
		INSERT INTO materials (name, sku, unit, quantity)
		VALUES ($1, $2, $3, $4)
		RETURNING `+materialColumns,
		req.Name, req.SKU, req.Unit, req.Quantity,
	).Scan(&m.ID, &m.Name, &m.SKU, &m.Unit, &m.Quantity, &m.UpdatedAt)
	if err != nil {
		return Material{}, fmt.Errorf("inventory: create material: %w", err)
	}
	return m, nil
}

func (r *Repository) GetMaterial(ctx context.Context, id int64) (Material, error) {
	var m Material
	err := r.pool.QueryRow(ctx, `
		SELECT `+materialColumns+` FROM materials WHERE id = $1`, id,
	).Scan(&m.ID, &m.Name, &m.SKU, &m.Unit, &m.Quantity, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Material{}, shared.ErrNotFound
		}
		return Material{}, fmt.Errorf("inventory: get material: %w", err)
	}
	return m, nil
}

func (r *Repository) ListMaterials(ctx context.Context) ([]Material, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+materialColumns+` FROM materials ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("inventory: list materials: %w", err)
	}
	defer rows.Close()

	var out []Material
	for rows.Next() {
		var m Material
		if err := rows.Scan(&m.ID, &m.Name, &m.SKU, &m.Unit, &m.Quantity, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("inventory: scan material: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Adjust applies a signed delta and records the movement in one transaction.
// It returns ErrInsufficientStock when the delta would drive stock below zero;
// the transaction rolls back and neither row changes.
func (r *Repository) Adjust(ctx context.Context, materialID, actorID, delta int64, reason string) (Material, error) {
	var m Material
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			UPDATE materials
			SET quantity = quantity + $2, updated_at = now()
			WHERE id = $1
			RETURNING `+materialColumns,
			materialID, delta,
		).Scan(&m.ID, &m.Name, &m.SKU, &m.Unit, &m.Quantity, &m.UpdatedAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return shared.ErrNotFound
			}
			return fmt.Errorf("inventory: adjust: %w", err)
		}
		if m.Quantity < 0 {
			return ErrInsufficientStock
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO material_movements (material_id, actor_id, delta, reason)
			VALUES ($1, $2, $3, $4)`,
			materialID, actorID, delta, reason)
		if err != nil {
			return fmt.Errorf("inventory: record movement: %w", err)
		}
		return nil
	})
	if err != nil {
		return Material{}, err
	}
	return m, nil
}

func (r *Repository) ListMovements(ctx context.Context, materialID int64) ([]Movement, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, material_id, actor_id, delta, reason, created_at
		FROM material_movements
		WHERE material_id = $1
		ORDER BY created_at DESC
		LIMIT 200`, materialID)
	if err != nil {
		return nil, fmt.Errorf("inventory: list movements: %w", err)
	}
	defer rows.Close()

	var out []Movement
	for rows.Next() {
		var mv Movement
		if err := rows.Scan(&mv.ID, &mv.MaterialID, &mv.ActorID, &mv.Delta, &mv.Reason, &mv.CreatedAt); err != nil {
			return nil, fmt.Errorf("inventory: scan movement: %w", err)
		}
		out = append(out, mv)
	}
	return out, rows.Err()
}
