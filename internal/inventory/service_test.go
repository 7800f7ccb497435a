package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/printdesk/printdesk/internal/authz"
	"github.com/printdesk/printdesk/internal/platform/httpx"
	"github.com/printdesk/printdesk/internal/shared"
)

type memoryRepo struct {
	materials map[int64]Material
	movements map[int64][]Movement
	skus      map[string]bool
	nextID    int64
	clock     time.Time
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		materials: make(map[int64]Material),
		movements: make(map[int64][]Movement),
		skus:      make(map[string]bool),
		nextID:    1,
		clock:     time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC),
	}
}

func (r *memoryRepo) CreateMaterial(ctx context.Context, req CreateMaterialRequest) (Material, error) {
	r.clock = r.clock.Add(time.Minute)
	m := Material{ID: r.nextID, Name: req.Name, SKU: req.SKU, Unit: req.Unit, Quantity: req.Quantity, UpdatedAt: r.clock}
	r.nextID++
	r.materials[m.ID] = m
	r.skus[req.SKU] = true
	return m, nil
}

func (r *memoryRepo) GetMaterial(ctx context.Context, id int64) (Material, error) {
	m, ok := r.materials[id]
	if !ok {
		return Material{}, shared.ErrNotFound
	}
	return m, nil
}

func (r *memoryRepo) ListMaterials(ctx context.Context) ([]Material, error) {
	var out []Material
	for _, m := range r.materials {
		out = append(out, m)
	}
	return out, nil
}

// Adjust mirrors the transactional repository: a rejected delta leaves both
// the quantity and the movement log untouched.
func (r *memoryRepo) Adjust(ctx context.Context, materialID, actorID, delta int64, reason string) (Material, error) {
	m, ok := r.materials[materialID]
	if !ok {
		return Material{}, shared.ErrNotFound
	}
	if m.Quantity+delta < 0 {
		return Material{}, ErrInsufficientStock
	}
	r.clock = r.clock.Add(time.Minute)
	m.Quantity += delta
	m.UpdatedAt = r.clock
	r.materials[materialID] = m
	r.movements[materialID] = append(r.movements[materialID], Movement{
		ID: r.nextID, MaterialID: materialID, ActorID: actorID, Delta: delta, Reason: reason, CreatedAt: r.clock,
	})
	r.nextID++
	return m, nil
}

func (r *memoryRepo) ListMovements(ctx context.Context, materialID int64) ([]Movement, error) {
	return r.movements[materialID], nil
}

type memoryAudit struct {
	entries []shared.AuditLog
}

func (a *memoryAudit) Record(ctx context.Context, log shared.AuditLog) error {
	a.entries = append(a.entries, log)
	return nil
}

var staff = authz.Principal{ID: 3, Role: authz.RoleStaff}

func TestAdjustRecordsMovementAndAudit(t *testing.T) {
	repo := newMemoryRepo()
	audit := &memoryAudit{}
	svc := NewService(repo, audit)
	ctx := context.Background()

	m, err := svc.CreateMaterial(ctx, CreateMaterialRequest{Name: "A4 80gsm", SKU: "PPR-A4-80", Unit: "sheet", Quantity: 500})
	require.NoError(t, err)

	got, err := svc.Adjust(ctx, staff, m.ID, AdjustRequest{Delta: -120, Reason: "order #42 run"})
	require.NoError(t, err)
	require.EqualValues(t, 380, got.Quantity)

	moves, err := svc.History(ctx, m.ID)
	require.NoError(t, err)
	require.Len(t, moves, 1)
	require.EqualValues(t, -120, moves[0].Delta)
	require.Equal(t, staff.ID, moves[0].ActorID)

	require.Len(t, audit.entries, 1)
	require.Equal(t, "inventory.adjust", audit.entries[0].Action)
}

func TestAdjustRejectsNegativeStock(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	m, err := svc.CreateMaterial(ctx, CreateMaterialRequest{Name: "Cyan ink", SKU: "INK-C", Unit: "ml", Quantity: 50})
	require.NoError(t, err)

	_, err = svc.Adjust(ctx, staff, m.ID, AdjustRequest{Delta: -80, Reason: "big run"})
	require.ErrorIs(t, err, httpx.ErrValidation)

	// The failed adjustment must not change stock or leave a movement.
	current, err := repo.GetMaterial(ctx, m.ID)
	require.NoError(t, err)
	require.EqualValues(t, 50, current.Quantity)
	moves, err := svc.History(ctx, m.ID)
	require.NoError(t, err)
	require.Empty(t, moves)
}

func TestAdjustValidation(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	m, err := svc.CreateMaterial(ctx, CreateMaterialRequest{Name: "Vinyl", SKU: "VNL-1", Unit: "m", Quantity: 10})
	require.NoError(t, err)

	_, err = svc.Adjust(ctx, staff, m.ID, AdjustRequest{Delta: 0, Reason: "noop"})
	require.ErrorIs(t, err, httpx.ErrValidation)
	_, err = svc.Adjust(ctx, staff, m.ID, AdjustRequest{Delta: 5, Reason: "   "})
	require.ErrorIs(t, err, httpx.ErrValidation)
	_, err = svc.Adjust(ctx, staff, 999, AdjustRequest{Delta: 5, Reason: "restock"})
	require.ErrorIs(t, err, httpx.ErrNotFound)
	_, err = svc.History(ctx, 999)
	require.ErrorIs(t, err, httpx.ErrNotFound)
}
