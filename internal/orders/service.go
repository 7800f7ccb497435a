package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/printdesk/printdesk/internal/authz"
	"github.com/printdesk/printdesk/internal/platform/httpx"
	"github.com/printdesk/printdesk/internal/shared"
)

// RepositoryPort defines data access methods for orders.
type RepositoryPort interface {
	Create(ctx context.Context, userID int64, req CreateOrderRequest) (Order, error)
	Get(ctx context.Context, id int64) (Order, error)
	ListByUser(ctx context.Context, userID int64) ([]Order, error)
	ListAll(ctx context.Context) ([]OrderWithCustomer, error)
	UpdateStatus(ctx context.Context, id int64, status OrderStatus) error
	Delete(ctx context.Context, id int64) error
}

// Notifier is invoked after status changes so the owner learns about them.
// Implementations enqueue a background task; failures never fail the request.
type Notifier interface {
	NotifyOrderStatus(ctx context.Context, userID, orderID int64, status string)
}

// Service handles order logic.
type Service struct {
	repo     RepositoryPort
	gate     *authz.Gate
	notifier Notifier
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, gate *authz.Gate, notifier Notifier) *Service {
	return &Service{repo: repo, gate: gate, notifier: notifier}
}

// Create places an order owned by the actor.
func (s *Service) Create(ctx context.Context, actor authz.Principal, req CreateOrderRequest) (Order, error) {
	return s.repo.Create(ctx, actor.ID, req)
}

// Get returns one order if the actor may see it.
func (s *Service) Get(ctx context.Context, actor authz.Principal, id int64) (Order, error) {
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return Order{}, fmt.Errorf("%w: order %d", httpx.ErrNotFound, id)
		}
		return Order{}, err
	}
	if err := s.gate.Authorize(actor, authz.ResourceOrder, authz.ActionView, authz.Target{OwnerID: order.UserID}); err != nil {
		return Order{}, err
	}
	return order, nil
}

// ListOwn returns the actor's orders.
func (s *Service) ListOwn(ctx context.Context, actor authz.Principal) ([]Order, error) {
	return s.repo.ListByUser(ctx, actor.ID)
}

// ListAll returns every order for the staff dashboard.
func (s *Service) ListAll(ctx context.Context) ([]OrderWithCustomer, error) {
	return s.repo.ListAll(ctx)
}

// UpdateStatus moves an order along its lifecycle and notifies the owner.
func (s *Service) UpdateStatus(ctx context.Context, id int64, next OrderStatus) (Order, error) {
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return Order{}, fmt.Errorf("%w: order %d", httpx.ErrNotFound, id)
		}
		return Order{}, err
	}
	if !CanTransition(order.Status, next) {
		return Order{}, fmt.Errorf("%w: cannot move order from %s to %s", httpx.ErrValidation, order.Status, next)
	}
	if err := s.repo.UpdateStatus(ctx, id, next); err != nil {
		return Order{}, err
	}
	order.Status = next
	if s.notifier != nil {
		s.notifier.NotifyOrderStatus(ctx, order.UserID, order.ID, string(next))
	}
	return order, nil
}

// Delete removes an order. Owners may withdraw only while the order is still
// PENDING; once production started only the status lifecycle applies.
func (s *Service) Delete(ctx context.Context, actor authz.Principal, id int64) error {
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return fmt.Errorf("%w: order %d", httpx.ErrNotFound, id)
		}
		return err
	}
	if err := s.gate.Authorize(actor, authz.ResourceOrder, authz.ActionDelete, authz.Target{OwnerID: order.UserID}); err != nil {
		return err
	}
	if actor.Role != authz.RoleAdmin && order.Status != OrderStatusPending {
		return fmt.Errorf("%w: only pending orders can be withdrawn", httpx.ErrValidation)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return fmt.Errorf("%w: order %d", httpx.ErrNotFound, id)
		}
		return err
	}
	return nil
}
