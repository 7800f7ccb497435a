package inventory

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/printdesk/printdesk/internal/authz"
	"github.com/printdesk/printdesk/internal/platform/httpx"
	"github.com/printdesk/printdesk/internal/shared"
)

// RepositoryPort abstracts repository usage for service.
type RepositoryPort interface {
	CreateMaterial(ctx context.Context, req CreateMaterialRequest) (Material, error)
	GetMaterial(ctx context.Context, id int64) (Material, error)
	ListMaterials(ctx context.Context) ([]Material, error)
	Adjust(ctx context.Context, materialID, actorID, delta int64, reason string) (Material, error)
	ListMovements(ctx context.Context, materialID int64) ([]Movement, error)
}

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service coordinates stock operations.
type Service struct {
	repo  RepositoryPort
	audit AuditPort
}

// NewService builds Service.
func NewService(repo RepositoryPort, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit}
}

// CreateMaterial registers a new material.
func (s *Service) CreateMaterial(ctx context.Context, req CreateMaterialRequest) (Material, error) {
	if strings.TrimSpace(req.Name) == "" {
		return Material{}, fmt.Errorf("%w: material name is required", httpx.ErrValidation)
	}
	m, err := s.repo.CreateMaterial(ctx, req)
	if err != nil {
		if httpx.IsUniqueViolation(err) {
			return Material{}, fmt.Errorf("%w: sku %s already exists", httpx.ErrDuplicate, req.SKU)
		}
		return Material{}, err
	}
	return m, nil
}

// ListMaterials returns every tracked material.
func (s *Service) ListMaterials(ctx context.Context) ([]Material, error) {
	return s.repo.ListMaterials(ctx)
}

// Adjust changes stock by a signed delta and records who did it and why.
func (s *Service) Adjust(ctx context.Context, actor authz.Principal, materialID int64, req AdjustRequest) (Material, error) {
	if req.Delta == 0 {
		return Material{}, fmt.Errorf("%w: %s", httpx.ErrValidation, ErrInvalidQuantity)
	}
	if strings.TrimSpace(req.Reason) == "" {
		return Material{}, fmt.Errorf("%w: adjustment reason is required", httpx.ErrValidation)
	}

	m, err := s.repo.Adjust(ctx, materialID, actor.ID, req.Delta, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, shared.ErrNotFound):
			return Material{}, fmt.Errorf("%w: material %d", httpx.ErrNotFound, materialID)
		case errors.Is(err, ErrInsufficientStock):
			return Material{}, fmt.Errorf("%w: %s", httpx.ErrValidation, ErrInsufficientStock)
		default:
			return Material{}, err
		}
	}

	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  actor.ID,
			Action:   "inventory.adjust",
			Entity:   "material",
			EntityID: strconv.FormatInt(materialID, 10),
			Meta:     map[string]any{"delta": req.Delta, "reason": req.Reason},
		})
	}
	return m, nil
}

// History returns recent movements for one material.
func (s *Service) History(ctx context.Context, materialID int64) ([]Movement, error) {
	if _, err := s.repo.GetMaterial(ctx, materialID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, fmt.Errorf("%w: material %d", httpx.ErrNotFound, materialID)
		}
		return nil, err
	}
	return s.repo.ListMovements(ctx, materialID)
}
