package notifications

import (
	"context"
	"errors"
	"fmt"

	"github.com/printdesk/printdesk/internal/authz"
	"github.com/printdesk/printdesk/internal/platform/httpx"
	"github.com/printdesk/printdesk/internal/shared"
)

// RepositoryPort defines data access methods for notifications.
type RepositoryPort interface {
	Create(ctx context.Context, userID int64, kind Kind, title, body string) (Notification, error)
	Get(ctx context.Context, id int64) (Notification, error)
	ListByUser(ctx context.Context, userID int64) ([]Notification, error)
	UnreadCount(ctx context.Context, userID int64) (int64, error)
	MarkRead(ctx context.Context, id int64) error
	MarkAllRead(ctx context.Context, userID int64) error
	Delete(ctx context.Context, id int64) error
}

// Service handles notification logic.
type Service struct {
	repo RepositoryPort
	gate *authz.Gate
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, gate *authz.Gate) *Service {
	return &Service{repo: repo, gate: gate}
}

// Deliver stores a new alert for a user. Background workers call this; there
// is no HTTP endpoint for it.
func (s *Service) Deliver(ctx context.Context, userID int64, kind Kind, title, body string) (Notification, error) {
	return s.repo.Create(ctx, userID, kind, title, body)
}

// ListOwn returns the actor's notifications, newest first.
func (s *Service) ListOwn(ctx context.Context, actor authz.Principal) ([]Notification, error) {
	return s.repo.ListByUser(ctx, actor.ID)
}

// UnreadCount returns how many of the actor's notifications are unread.
func (s *Service) UnreadCount(ctx context.Context, actor authz.Principal) (int64, error) {
	return s.repo.UnreadCount(ctx, actor.ID)
}

// MarkRead flags one notification as read. Only the recipient may do this,
// admins included, so read state always reflects the recipient's own action.
func (s *Service) MarkRead(ctx context.Context, actor authz.Principal, id int64) (Notification, error) {
	n, err := s.load(ctx, id)
	if err != nil {
		return Notification{}, err
	}
	if err := s.gate.Authorize(actor, authz.ResourceNotification, authz.ActionEdit, authz.Target{OwnerID: n.UserID}); err != nil {
		return Notification{}, err
	}
	if err := s.repo.MarkRead(ctx, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return Notification{}, fmt.Errorf("%w: notification %d", httpx.ErrNotFound, id)
		}
		return Notification{}, err
	}
	n.IsRead = true
	return n, nil
}

// MarkAllRead flags every unread notification of the actor as read.
func (s *Service) MarkAllRead(ctx context.Context, actor authz.Principal) error {
	return s.repo.MarkAllRead(ctx, actor.ID)
}

// Delete removes one notification for its recipient.
func (s *Service) Delete(ctx context.Context, actor authz.Principal, id int64) error {
	n, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.gate.Authorize(actor, authz.ResourceNotification, authz.ActionEdit, authz.Target{OwnerID: n.UserID}); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return fmt.Errorf("%w: notification %d", httpx.ErrNotFound, id)
		}
		return err
	}
	return nil
}

func (s *Service) load(ctx context.Context, id int64) (Notification, error) {
	n, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return Notification{}, fmt.Errorf("%w: notification %d", httpx.ErrNotFound, id)
		}
		return Notification{}, err
	}
	return n, nil
}
