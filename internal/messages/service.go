package messages

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/printdesk/printdesk/internal/authz"
	"github.com/printdesk/printdesk/internal/platform/httpx"
	"github.com/printdesk/printdesk/internal/shared"
)

// RepositoryPort defines data access methods for messages.
type RepositoryPort interface {
	Create(ctx context.Context, userID int64, req CreateMessageRequest) (Message, error)
	Get(ctx context.Context, id int64) (MessageDetail, error)
	ListByUser(ctx context.Context, userID int64) ([]Message, error)
	ListAll(ctx context.Context) ([]MessageWithSender, error)
	Respond(ctx context.Context, messageID, responderID int64, body string) (Response, error)
}

// Notifier tells a customer their message got an answer. Implementations
// enqueue a background task; failures never fail the request.
type Notifier interface {
	NotifyMessageResponse(ctx context.Context, userID, messageID int64)
}

// Service handles inquiry logic.
type Service struct {
	repo     RepositoryPort
	gate     *authz.Gate
	notifier Notifier
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, gate *authz.Gate, notifier Notifier) *Service {
	return &Service{repo: repo, gate: gate, notifier: notifier}
}

// Create records a new inquiry owned by the actor.
func (s *Service) Create(ctx context.Context, actor authz.Principal, req CreateMessageRequest) (Message, error) {
	if strings.TrimSpace(req.Subject) == "" {
		return Message{}, fmt.Errorf("%w: subject is required", httpx.ErrValidation)
	}
	return s.repo.Create(ctx, actor.ID, req)
}

// Get returns a message with its responses if the actor may see it.
func (s *Service) Get(ctx context.Context, actor authz.Principal, id int64) (MessageDetail, error) {
	detail, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return MessageDetail{}, fmt.Errorf("%w: message %d", httpx.ErrNotFound, id)
		}
		return MessageDetail{}, err
	}
	if err := s.gate.Authorize(actor, authz.ResourceMessage, authz.ActionView, authz.Target{OwnerID: detail.UserID}); err != nil {
		return MessageDetail{}, err
	}
	return detail, nil
}

// ListOwn returns the actor's messages.
func (s *Service) ListOwn(ctx context.Context, actor authz.Principal) ([]Message, error) {
	return s.repo.ListByUser(ctx, actor.ID)
}

// ListAll returns every message for the staff inbox.
func (s *Service) ListAll(ctx context.Context) ([]MessageWithSender, error) {
	return s.repo.ListAll(ctx)
}

// Respond stores a staff answer. The response row and the parent status flip
// commit together, so a half-answered message can never be observed.
func (s *Service) Respond(ctx context.Context, actor authz.Principal, id int64, req RespondRequest) (Response, error) {
	detail, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return Response{}, fmt.Errorf("%w: message %d", httpx.ErrNotFound, id)
		}
		return Response{}, err
	}
	if strings.TrimSpace(req.Body) == "" {
		return Response{}, fmt.Errorf("%w: response body is required", httpx.ErrValidation)
	}

	resp, err := s.repo.Respond(ctx, id, actor.ID, req.Body)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return Response{}, fmt.Errorf("%w: message %d", httpx.ErrNotFound, id)
		}
		return Response{}, err
	}

	if s.notifier != nil {
		s.notifier.NotifyMessageResponse(ctx, detail.UserID, id)
	}
	return resp, nil
}
