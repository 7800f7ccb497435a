package products

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/printdesk/printdesk/internal/authz"
	"github.com/printdesk/printdesk/internal/platform/httpx"
	"github.com/printdesk/printdesk/internal/shared"
)

type memoryRepo struct {
	products map[int64]Product
	nextID   int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{products: make(map[int64]Product), nextID: 1}
}

func (r *memoryRepo) List(ctx context.Context) ([]Product, error) {
	var out []Product
	for _, p := range r.products {
		if p.IsActive {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (Product, error) {
	p, ok := r.products[id]
	if !ok {
		return Product{}, shared.ErrNotFound
	}
	return p, nil
}

func (r *memoryRepo) Create(ctx context.Context, p Product) (Product, error) {
	p.ID = r.nextID
	p.IsActive = true
	r.nextID++
	r.products[p.ID] = p
	return p, nil
}

func (r *memoryRepo) Update(ctx context.Context, p Product) error {
	if _, ok := r.products[p.ID]; !ok {
		return shared.ErrNotFound
	}
	r.products[p.ID] = p
	return nil
}

func (r *memoryRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.products[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.products, id)
	return nil
}

func TestCreateAndList(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	ctx := context.Background()

	p, err := svc.Create(ctx, CreateProductRequest{Name: "  Flyer A5  ", Category: "flyers", UnitPrice: 0.12})
	require.NoError(t, err)
	require.Equal(t, "Flyer A5", p.Name)
	require.True(t, p.IsActive)

	items, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func TestCreateRequiresName(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	_, err := svc.Create(context.Background(), CreateProductRequest{Name: "   ", Category: "flyers", UnitPrice: 1})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestUpdatePartial(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	p, err := svc.Create(ctx, CreateProductRequest{Name: "Poster A2", Category: "posters", UnitPrice: 4.5})
	require.NoError(t, err)

	newPrice := 5.0
	updated, err := svc.Update(ctx, p.ID, UpdateProductRequest{UnitPrice: &newPrice})
	require.NoError(t, err)
	require.Equal(t, "Poster A2", updated.Name)
	require.Equal(t, 5.0, updated.UnitPrice)

	_, err = svc.Update(ctx, 999, UpdateProductRequest{UnitPrice: &newPrice})
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestDeleteIdempotence(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()
	admin := authz.Principal{ID: 1, Role: authz.RoleAdmin}

	p, err := svc.Create(ctx, CreateProductRequest{Name: "Sticker", Category: "stickers", UnitPrice: 0.4})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, admin, p.ID))
	err = svc.Delete(ctx, admin, p.ID)
	require.ErrorIs(t, err, httpx.ErrNotFound)
}
