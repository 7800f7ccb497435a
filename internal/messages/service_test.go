package messages

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/printdesk/printdesk/internal/authz"
	"github.com/printdesk/printdesk/internal/platform/httpx"
	"github.com/printdesk/printdesk/internal/shared"
)

var errStorage = errors.New("storage unavailable")

type memoryRepo struct {
	messages  map[int64]Message
	responses map[int64][]Response
	nextID    int64
	failWrite bool
	clock     time.Time
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		messages:  make(map[int64]Message),
		responses: make(map[int64][]Response),
		nextID:    1,
		clock:     time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (r *memoryRepo) Create(ctx context.Context, userID int64, req CreateMessageRequest) (Message, error) {
	r.clock = r.clock.Add(time.Minute)
	m := Message{
		ID: r.nextID, UserID: userID, Subject: req.Subject, Body: req.Body,
		Status: MessageStatusPending, CreatedAt: r.clock,
	}
	r.nextID++
	r.messages[m.ID] = m
	return m, nil
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (MessageDetail, error) {
	m, ok := r.messages[id]
	if !ok {
		return MessageDetail{}, shared.ErrNotFound
	}
	return MessageDetail{Message: m, Responses: r.responses[id]}, nil
}

func (r *memoryRepo) ListByUser(ctx context.Context, userID int64) ([]Message, error) {
	var out []Message
	for _, m := range r.messages {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memoryRepo) ListAll(ctx context.Context) ([]MessageWithSender, error) {
	var out []MessageWithSender
	for _, m := range r.messages {
		out = append(out, MessageWithSender{Message: m})
	}
	return out, nil
}

// Respond mimics the transactional repository: on failure neither the
// response row nor the status flip is applied.
func (r *memoryRepo) Respond(ctx context.Context, messageID, responderID int64, body string) (Response, error) {
	if r.failWrite {
		return Response{}, errStorage
	}
	m, ok := r.messages[messageID]
	if !ok {
		return Response{}, shared.ErrNotFound
	}
	r.clock = r.clock.Add(time.Minute)
	resp := Response{
		ID: r.nextID, MessageID: messageID, ResponderID: responderID,
		Body: body, CreatedAt: r.clock,
	}
	r.nextID++
	r.responses[messageID] = append(r.responses[messageID], resp)
	at := r.clock
	m.Status = MessageStatusResponded
	m.RespondedAt = &at
	r.messages[messageID] = m
	return resp, nil
}

type fakeNotifier struct {
	notified []int64
}

func (f *fakeNotifier) NotifyMessageResponse(ctx context.Context, userID, messageID int64) {
	f.notified = append(f.notified, userID)
}

var (
	staff    = authz.Principal{ID: 3, Role: authz.RoleStaff}
	customer = authz.Principal{ID: 4, Role: authz.RoleCustomer}
	stranger = authz.Principal{ID: 5, Role: authz.RoleCustomer}
)

func TestCreateStartsPending(t *testing.T) {
	svc := NewService(newMemoryRepo(), authz.NewGate(), nil)
	m, err := svc.Create(context.Background(), customer, CreateMessageRequest{Subject: "Banner quote", Body: "Need 3 banners."})
	require.NoError(t, err)
	require.Equal(t, customer.ID, m.UserID)
	require.Equal(t, MessageStatusPending, m.Status)
	require.Nil(t, m.RespondedAt)

	_, err = svc.Create(context.Background(), customer, CreateMessageRequest{Subject: "   ", Body: "x"})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestGetOwnershipOverride(t *testing.T) {
	svc := NewService(newMemoryRepo(), authz.NewGate(), nil)
	ctx := context.Background()

	m, err := svc.Create(ctx, customer, CreateMessageRequest{Subject: "Quote", Body: "Hi"})
	require.NoError(t, err)

	_, err = svc.Get(ctx, customer, m.ID)
	require.NoError(t, err)
	_, err = svc.Get(ctx, staff, m.ID)
	require.NoError(t, err)
	_, err = svc.Get(ctx, stranger, m.ID)
	require.ErrorIs(t, err, httpx.ErrForbidden)
	_, err = svc.Get(ctx, customer, 999)
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestRespondFlipsStatusAndNotifies(t *testing.T) {
	repo := newMemoryRepo()
	notifier := &fakeNotifier{}
	svc := NewService(repo, authz.NewGate(), notifier)
	ctx := context.Background()

	m, err := svc.Create(ctx, customer, CreateMessageRequest{Subject: "Quote", Body: "Hi"})
	require.NoError(t, err)

	resp, err := svc.Respond(ctx, staff, m.ID, RespondRequest{Body: "On its way."})
	require.NoError(t, err)
	require.Equal(t, staff.ID, resp.ResponderID)

	detail, err := svc.Get(ctx, staff, m.ID)
	require.NoError(t, err)
	require.Equal(t, MessageStatusResponded, detail.Status)
	require.NotNil(t, detail.RespondedAt)
	require.Len(t, detail.Responses, 1)
	require.Equal(t, []int64{customer.ID}, notifier.notified)
}

func TestRespondFailureLeavesMessagePending(t *testing.T) {
	repo := newMemoryRepo()
	notifier := &fakeNotifier{}
	svc := NewService(repo, authz.NewGate(), notifier)
	ctx := context.Background()

	m, err := svc.Create(ctx, customer, CreateMessageRequest{Subject: "Quote", Body: "Hi"})
	require.NoError(t, err)

	repo.failWrite = true
	_, err = svc.Respond(ctx, staff, m.ID, RespondRequest{Body: "On its way."})
	require.ErrorIs(t, err, errStorage)

	repo.failWrite = false
	detail, err := svc.Get(ctx, staff, m.ID)
	require.NoError(t, err)
	require.Equal(t, MessageStatusPending, detail.Status)
	require.Nil(t, detail.RespondedAt)
	require.Empty(t, detail.Responses)
	require.Empty(t, notifier.notified)
}

func TestRespondValidation(t *testing.T) {
	svc := NewService(newMemoryRepo(), authz.NewGate(), nil)
	ctx := context.Background()

	m, err := svc.Create(ctx, customer, CreateMessageRequest{Subject: "Quote", Body: "Hi"})
	require.NoError(t, err)

	_, err = svc.Respond(ctx, staff, m.ID, RespondRequest{Body: "  "})
	require.ErrorIs(t, err, httpx.ErrValidation)
	_, err = svc.Respond(ctx, staff, 999, RespondRequest{Body: "Hello"})
	require.ErrorIs(t, err, httpx.ErrNotFound)
}
