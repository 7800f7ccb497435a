package users

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/printdesk/printdesk/internal/authz"
	"github.com/printdesk/printdesk/internal/platform/httpx"
	"github.com/printdesk/printdesk/internal/shared"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	ListUsers(ctx context.Context) ([]User, error)
	GetUser(ctx context.Context, id int64) (User, error)
	DeleteUser(ctx context.Context, id int64) error
}

// Service handles user management logic.
type Service struct {
	repo  RepositoryPort
	gate  *authz.Gate
	audit *shared.AuditLogger
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, gate *authz.Gate, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, gate: gate, audit: audit}
}

// ListUsers returns all users.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.ListUsers(ctx)
}

// DeleteUser removes an account after the policy gate clears it. The target
// row is loaded first so the gate sees its role: a missing target is 404, an
// ADMIN target or self-deletion is 403.
func (s *Service) DeleteUser(ctx context.Context, actor authz.Principal, id int64) error {
	target, err := s.repo.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return fmt.Errorf("%w: user %d", httpx.ErrNotFound, id)
		}
		return err
	}

	if err := s.gate.Authorize(actor, authz.ResourceUser, authz.ActionDelete, authz.Target{
		TargetID:   target.ID,
		TargetRole: target.Role,
	}); err != nil {
		return err
	}

	if err := s.repo.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return fmt.Errorf("%w: user %d", httpx.ErrNotFound, id)
		}
		return err
	}

	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  actor.ID,
			Action:   "user.delete",
			Entity:   "user",
			EntityID: strconv.FormatInt(id, 10),
			Meta:     map[string]any{"email": target.Email, "role": string(target.Role)},
		})
	}
	return nil
}
