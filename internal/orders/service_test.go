package orders

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/printdesk/printdesk/internal/authz"
	"github.com/printdesk/printdesk/internal/platform/httpx"
	"github.com/printdesk/printdesk/internal/shared"
)

type memoryRepo struct {
	orders map[int64]Order
	owners map[int64]string
	nextID int64
	clock  time.Time
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		orders: make(map[int64]Order),
		owners: map[int64]string{1: "Root", 3: "Staffer", 4: "Customer"},
		nextID: 1,
		clock:  time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (r *memoryRepo) Create(ctx context.Context, userID int64, req CreateOrderRequest) (Order, error) {
	r.clock = r.clock.Add(time.Minute)
	o := Order{
		ID: r.nextID, UserID: userID, ProductID: req.ProductID,
		Quantity: req.Quantity, Status: OrderStatusPending,
		Notes: req.Notes, CreatedAt: r.clock, UpdatedAt: r.clock,
	}
	r.nextID++
	r.orders[o.ID] = o
	return o, nil
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return Order{}, shared.ErrNotFound
	}
	return o, nil
}

func (r *memoryRepo) ListByUser(ctx context.Context, userID int64) ([]Order, error) {
	var out []Order
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memoryRepo) ListAll(ctx context.Context) ([]OrderWithCustomer, error) {
	var out []OrderWithCustomer
	for _, o := range r.orders {
		out = append(out, OrderWithCustomer{Order: o, CustomerName: r.owners[o.UserID]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memoryRepo) UpdateStatus(ctx context.Context, id int64, status OrderStatus) error {
	o, ok := r.orders[id]
	if !ok {
		return shared.ErrNotFound
	}
	o.Status = status
	r.orders[id] = o
	return nil
}

func (r *memoryRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.orders[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.orders, id)
	return nil
}

type recordedNotice struct {
	userID, orderID int64
	status          string
}

type fakeNotifier struct {
	notices []recordedNotice
}

func (f *fakeNotifier) NotifyOrderStatus(ctx context.Context, userID, orderID int64, status string) {
	f.notices = append(f.notices, recordedNotice{userID: userID, orderID: orderID, status: status})
}

var (
	admin    = authz.Principal{ID: 1, Role: authz.RoleAdmin}
	staff    = authz.Principal{ID: 3, Role: authz.RoleStaff}
	customer = authz.Principal{ID: 4, Role: authz.RoleCustomer}
	stranger = authz.Principal{ID: 5, Role: authz.RoleCustomer}
)

func TestCreateOwnedByCaller(t *testing.T) {
	svc := NewService(newMemoryRepo(), authz.NewGate(), nil)
	o, err := svc.Create(context.Background(), customer, CreateOrderRequest{ProductID: 1, Quantity: 100})
	require.NoError(t, err)
	require.Equal(t, customer.ID, o.UserID)
	require.Equal(t, OrderStatusPending, o.Status)
}

func TestListAllNewestFirst(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, authz.NewGate(), nil)
	ctx := context.Background()

	first, err := svc.Create(ctx, customer, CreateOrderRequest{ProductID: 1, Quantity: 1})
	require.NoError(t, err)
	second, err := svc.Create(ctx, stranger, CreateOrderRequest{ProductID: 2, Quantity: 2})
	require.NoError(t, err)

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, second.ID, all[0].ID)
	require.Equal(t, first.ID, all[1].ID)
	require.Equal(t, "Customer", all[1].CustomerName)
}

func TestGetOwnershipOverride(t *testing.T) {
	svc := NewService(newMemoryRepo(), authz.NewGate(), nil)
	ctx := context.Background()

	o, err := svc.Create(ctx, customer, CreateOrderRequest{ProductID: 1, Quantity: 1})
	require.NoError(t, err)

	_, err = svc.Get(ctx, customer, o.ID)
	require.NoError(t, err)
	_, err = svc.Get(ctx, staff, o.ID)
	require.NoError(t, err)
	_, err = svc.Get(ctx, stranger, o.ID)
	require.ErrorIs(t, err, httpx.ErrForbidden)
	_, err = svc.Get(ctx, customer, 999)
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestUpdateStatusLifecycle(t *testing.T) {
	repo := newMemoryRepo()
	notifier := &fakeNotifier{}
	svc := NewService(repo, authz.NewGate(), notifier)
	ctx := context.Background()

	o, err := svc.Create(ctx, customer, CreateOrderRequest{ProductID: 1, Quantity: 1})
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(ctx, o.ID, OrderStatusInProduction)
	require.NoError(t, err)
	require.Equal(t, OrderStatusInProduction, updated.Status)
	require.Len(t, notifier.notices, 1)
	require.Equal(t, customer.ID, notifier.notices[0].userID)

	// Skipping states is rejected and no notification fires.
	_, err = svc.UpdateStatus(ctx, o.ID, OrderStatusCompleted)
	require.ErrorIs(t, err, httpx.ErrValidation)
	require.Len(t, notifier.notices, 1)

	_, err = svc.UpdateStatus(ctx, o.ID, OrderStatusReady)
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, o.ID, OrderStatusCompleted)
	require.NoError(t, err)

	// Completed is terminal.
	_, err = svc.UpdateStatus(ctx, o.ID, OrderStatusCancelled)
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestDeleteRules(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, authz.NewGate(), nil)
	ctx := context.Background()

	o, err := svc.Create(ctx, customer, CreateOrderRequest{ProductID: 1, Quantity: 1})
	require.NoError(t, err)

	require.ErrorIs(t, svc.Delete(ctx, stranger, o.ID), httpx.ErrForbidden)
	require.ErrorIs(t, svc.Delete(ctx, staff, o.ID), httpx.ErrForbidden)

	// Owner can withdraw while pending.
	require.NoError(t, svc.Delete(ctx, customer, o.ID))
	require.ErrorIs(t, svc.Delete(ctx, customer, o.ID), httpx.ErrNotFound)

	// Once in production the owner cannot withdraw, but an admin still can.
	o2, err := svc.Create(ctx, customer, CreateOrderRequest{ProductID: 1, Quantity: 1})
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, o2.ID, OrderStatusInProduction)
	require.NoError(t, err)
	require.ErrorIs(t, svc.Delete(ctx, customer, o2.ID), httpx.ErrValidation)
	require.NoError(t, svc.Delete(ctx, admin, o2.ID))
}
