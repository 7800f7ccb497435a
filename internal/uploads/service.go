package uploads

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/printdesk/printdesk/internal/authz"
	"github.com/printdesk/printdesk/internal/platform/httpx"
	"github.com/printdesk/printdesk/internal/platform/storage"
	"github.com/printdesk/printdesk/internal/shared"
)

// RepositoryPort defines metadata access for uploads.
type RepositoryPort interface {
	Create(ctx context.Context, u Upload) (Upload, error)
	Get(ctx context.Context, id int64) (Upload, error)
	SoftDelete(ctx context.Context, id int64) error
	ListExpired(ctx context.Context, cutoff time.Time) ([]Upload, error)
	Purge(ctx context.Context, id int64) error
}

// Service stores files and their metadata.
type Service struct {
	repo    RepositoryPort
	store   storage.Client
	gate    *authz.Gate
	nowFunc func() time.Time
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, store storage.Client, gate *authz.Gate) *Service {
	return &Service{repo: repo, store: store, gate: gate, nowFunc: time.Now}
}

// Store validates, uploads and records one file. The size ceiling is checked
// before anything reaches storage, so an oversized request writes nothing.
func (s *Service) Store(ctx context.Context, actor authz.Principal, category, fileName, contentType string, data []byte) (Upload, error) {
	if len(data) == 0 {
		return Upload{}, fmt.Errorf("%w: empty file", httpx.ErrValidation)
	}
	if len(data) > MaxUploadSize {
		return Upload{}, fmt.Errorf("%w: file exceeds %d bytes", httpx.ErrValidation, MaxUploadSize)
	}
	if category == "" {
		category = "misc"
	}

	safe := SanitizeFilename(fileName)
	path := fmt.Sprintf("%s/%d_%s", category, s.nowFunc().Unix(), safe)

	if err := s.store.Upload(ctx, path, data, contentType); err != nil {
		return Upload{}, fmt.Errorf("uploads: store object: %w", err)
	}

	u, err := s.repo.Create(ctx, Upload{
		UserID:      actor.ID,
		Category:    category,
		FilePath:    path,
		FileName:    safe,
		FileSize:    int64(len(data)),
		ContentType: contentType,
	})
	if err != nil {
		// Metadata failed; remove the orphaned object so storage and the
		// database stay in step.
		_ = s.store.Delete(ctx, path)
		return Upload{}, err
	}
	u.URL = s.store.PublicURL(path)
	return u, nil
}

// Delete soft-deletes an upload. Owners and admins may delete; the object is
// purged from storage later by the background worker.
func (s *Service) Delete(ctx context.Context, actor authz.Principal, id int64) error {
	u, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return fmt.Errorf("%w: upload %d", httpx.ErrNotFound, id)
		}
		return err
	}
	if err := s.gate.Authorize(actor, authz.ResourceUpload, authz.ActionDelete, authz.Target{OwnerID: u.UserID}); err != nil {
		return err
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return fmt.Errorf("%w: upload %d", httpx.ErrNotFound, id)
		}
		return err
	}
	return nil
}

// PurgeExpired removes objects and rows for uploads soft-deleted before the
// cutoff. Called from the worker cron; one bad object never stops the sweep.
func (s *Service) PurgeExpired(ctx context.Context, retention time.Duration) (int, error) {
	cutoff := s.nowFunc().Add(-retention)
	expired, err := s.repo.ListExpired(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	purged := 0
	for _, u := range expired {
		if err := s.store.Delete(ctx, u.FilePath); err != nil {
			continue
		}
		if err := s.repo.Purge(ctx, u.ID); err != nil {
			continue
		}
		purged++
	}
	return purged, nil
}
