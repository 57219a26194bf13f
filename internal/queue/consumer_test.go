package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/event-planner/internal/model"
	"github.com/iliyamo/event-planner/internal/repository"
)

type activatorMock struct {
	err       error
	user      uuid.UUID
	group     uuid.UUID
	activated int
}

func (m *activatorMock) Get(context.Context, repository.UserQuery) (*model.User, error) {
	return nil, nil
}
func (m *activatorMock) Create(context.Context, *model.User) error { return nil }
func (m *activatorMock) Activate(_ context.Context, id, groupID uuid.UUID) error {
	if m.err != nil {
		return m.err
	}
	m.user, m.group = id, groupID
	m.activated++
	return nil
}

func TestHandleActivation(t *testing.T) {
	userID, groupID := uuid.New(), uuid.New()
	body, _ := json.Marshal(UserActivationJob{
		UserID:      userID.String(),
		GroupID:     groupID.String(),
		SubmittedAt: time.Now().UTC(),
	})

	users := &activatorMock{}
	if err := handleActivation(body, users); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if users.user != userID || users.group != groupID {
		t.Errorf("activated (%v, %v), want (%v, %v)", users.user, users.group, userID, groupID)
	}
}

// guardedActivator applies the promotion with the same status guard
// the repository statement carries: only a PENDING user changes
// state, anything else is a no-op.
type guardedActivator struct {
	status  model.UserStatus
	group   uuid.UUID
	applied int
}

func (m *guardedActivator) Get(context.Context, repository.UserQuery) (*model.User, error) {
	return nil, nil
}
func (m *guardedActivator) Create(context.Context, *model.User) error { return nil }
func (m *guardedActivator) Activate(_ context.Context, _, groupID uuid.UUID) error {
	if m.status != model.UserStatusPending {
		return nil
	}
	m.status = model.UserStatusActive
	m.group = groupID
	m.applied++
	return nil
}

func TestHandleActivationIdempotent(t *testing.T) {
	userID, groupID := uuid.New(), uuid.New()
	users := &guardedActivator{status: model.UserStatusPending}
	body := mustJob(userID.String(), groupID.String())

	// At-least-once delivery redelivers jobs; both applications must
	// ack cleanly and the end state must match a single application.
	if err := handleActivation(body, users); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	if err := handleActivation(body, users); err != nil {
		t.Fatalf("redelivery: %v", err)
	}
	if users.status != model.UserStatusActive || users.group != groupID {
		t.Errorf("state = (%v, %v), want (ACTIVE, %v)", users.status, users.group, groupID)
	}

	// A straggler carrying a different group id must not clobber the
	// group recorded by the first promotion.
	if err := handleActivation(mustJob(userID.String(), uuid.New().String()), users); err != nil {
		t.Fatalf("straggler delivery: %v", err)
	}
	if users.group != groupID {
		t.Errorf("group = %v, want %v untouched", users.group, groupID)
	}
	if users.applied != 1 {
		t.Errorf("promotion applied %d times, want 1", users.applied)
	}
}

func TestHandleActivationMalformed(t *testing.T) {
	cases := []struct {
		name string
		body []byte
	}{
		{"not json", []byte("{")},
		{"bad user id", mustJob("not-a-uuid", uuid.New().String())},
		{"bad group id", mustJob(uuid.New().String(), "nope")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := handleActivation(tc.body, &activatorMock{})
			var malformed *malformedJobError
			if !errors.As(err, &malformed) {
				t.Errorf("err = %v, want malformedJobError", err)
			}
		})
	}
}

func TestHandleActivationStorageFailure(t *testing.T) {
	users := &activatorMock{err: errors.New("deadlock")}
	err := handleActivation(mustJob(uuid.New().String(), uuid.New().String()), users)
	if err == nil {
		t.Fatal("expected an error")
	}
	// Storage failures are transient; they must not be classified as
	// malformed, so the delivery gets requeued.
	var malformed *malformedJobError
	if errors.As(err, &malformed) {
		t.Error("storage failure classified as malformed")
	}
}

func mustJob(userID, groupID string) []byte {
	body, _ := json.Marshal(UserActivationJob{UserID: userID, GroupID: groupID, SubmittedAt: time.Now().UTC()})
	return body
}
