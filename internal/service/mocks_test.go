package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/event-planner/internal/model"
	"github.com/iliyamo/event-planner/internal/queue"
	"github.com/iliyamo/event-planner/internal/repository"
)

// Function-field mocks. Unset fields mean the test does not expect
// that call; hitting one panics, which fails the test loudly.

type userRepoMock struct {
	getFn      func(ctx context.Context, q repository.UserQuery) (*model.User, error)
	createFn   func(ctx context.Context, u *model.User) error
	activateFn func(ctx context.Context, id, groupID uuid.UUID) error
}

func (m *userRepoMock) Get(ctx context.Context, q repository.UserQuery) (*model.User, error) {
	return m.getFn(ctx, q)
}
func (m *userRepoMock) Create(ctx context.Context, u *model.User) error { return m.createFn(ctx, u) }
func (m *userRepoMock) Activate(ctx context.Context, id, groupID uuid.UUID) error {
	return m.activateFn(ctx, id, groupID)
}

type groupRepoMock struct {
	getFn         func(ctx context.Context, q repository.GroupQuery) (*model.Group, error)
	createFn      func(ctx context.Context, g *model.Group) error
	addMemberFn   func(ctx context.Context, groupID, memberID uuid.UUID) error
	listMembersFn func(ctx context.Context, groupID uuid.UUID) ([]model.User, error)
	listForFn     func(ctx context.Context, memberID uuid.UUID) ([]model.Group, error)
}

func (m *groupRepoMock) Get(ctx context.Context, q repository.GroupQuery) (*model.Group, error) {
	return m.getFn(ctx, q)
}
func (m *groupRepoMock) Create(ctx context.Context, g *model.Group) error {
	return m.createFn(ctx, g)
}
func (m *groupRepoMock) AddMember(ctx context.Context, groupID, memberID uuid.UUID) error {
	return m.addMemberFn(ctx, groupID, memberID)
}
func (m *groupRepoMock) ListMembers(ctx context.Context, groupID uuid.UUID) ([]model.User, error) {
	return m.listMembersFn(ctx, groupID)
}
func (m *groupRepoMock) ListForMember(ctx context.Context, memberID uuid.UUID) ([]model.Group, error) {
	return m.listForFn(ctx, memberID)
}

type eventRepoMock struct {
	createFn           func(ctx context.Context, e *model.Event, tagIDs []uuid.UUID) error
	getFn              func(ctx context.Context, id uuid.UUID) (*model.Event, error)
	listFn             func(ctx context.Context, q repository.ListEventQuery) ([]model.Event, error)
	countOverlappingFn func(ctx context.Context, ownerID, groupID uuid.UUID, start, end time.Time, exclude *uuid.UUID) (int, error)
	updateFn           func(ctx context.Context, e *model.Event, tagIDs []uuid.UUID) (bool, error)
	deleteFn           func(ctx context.Context, id, ownerID uuid.UUID) (bool, error)
	listTagsFn         func(ctx context.Context, eventID uuid.UUID) ([]model.Tag, error)
}

func (m *eventRepoMock) Create(ctx context.Context, e *model.Event, tagIDs []uuid.UUID) error {
	return m.createFn(ctx, e, tagIDs)
}
func (m *eventRepoMock) Get(ctx context.Context, id uuid.UUID) (*model.Event, error) {
	return m.getFn(ctx, id)
}
func (m *eventRepoMock) List(ctx context.Context, q repository.ListEventQuery) ([]model.Event, error) {
	return m.listFn(ctx, q)
}
func (m *eventRepoMock) CountOverlapping(ctx context.Context, ownerID, groupID uuid.UUID, start, end time.Time, exclude *uuid.UUID) (int, error) {
	return m.countOverlappingFn(ctx, ownerID, groupID, start, end, exclude)
}
func (m *eventRepoMock) Update(ctx context.Context, e *model.Event, tagIDs []uuid.UUID) (bool, error) {
	return m.updateFn(ctx, e, tagIDs)
}
func (m *eventRepoMock) Delete(ctx context.Context, id, ownerID uuid.UUID) (bool, error) {
	return m.deleteFn(ctx, id, ownerID)
}
func (m *eventRepoMock) ListTags(ctx context.Context, eventID uuid.UUID) ([]model.Tag, error) {
	return m.listTagsFn(ctx, eventID)
}

type tagRepoMock struct {
	createFn    func(ctx context.Context, t *model.Tag) error
	getByNameFn func(ctx context.Context, name string) (*model.Tag, error)
	listFn      func(ctx context.Context) ([]model.Tag, error)
}

func (m *tagRepoMock) Create(ctx context.Context, t *model.Tag) error { return m.createFn(ctx, t) }
func (m *tagRepoMock) GetByName(ctx context.Context, name string) (*model.Tag, error) {
	return m.getByNameFn(ctx, name)
}
func (m *tagRepoMock) List(ctx context.Context) ([]model.Tag, error) { return m.listFn(ctx) }

// txRunnerMock runs the callback directly; transactional isolation is
// the repository layer's concern, not the services'.
type txRunnerMock struct{}

func (txRunnerMock) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// submitterMock records submitted jobs and optionally fails.
type submitterMock struct {
	mu   sync.Mutex
	err  error
	jobs []queue.UserActivationJob
}

func (m *submitterMock) PublishUserActivation(_ context.Context, job queue.UserActivationJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.jobs = append(m.jobs, job)
	return nil
}

func (m *submitterMock) submitted() []queue.UserActivationJob {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]queue.UserActivationJob(nil), m.jobs...)
}
