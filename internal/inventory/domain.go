package inventory

import (
	"errors"
	"time"
)

// ErrInvalidQuantity marks a zero adjustment delta.
var ErrInvalidQuantity = errors.New("inventory: quantity must be non-zero")

// ErrInsufficientStock marks an adjustment that would drive stock negative.
var ErrInsufficientStock = errors.New("inventory: insufficient stock")

// Material is a consumable the shop tracks, like paper or ink.
type Material struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	SKU       string    `json:"sku"`
	Unit      string    `json:"unit"`
	Quantity  int64     `json:"quantity"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Movement records one stock change for the audit trail.
type Movement struct {
	ID         int64     `json:"id"`
	MaterialID int64     `json:"material_id"`
	ActorID    int64     `json:"actor_id"`
	Delta      int64     `json:"delta"`
	Reason     string    `json:"reason"`
	CreatedAt  time.Time `json:"created_at"`
}
