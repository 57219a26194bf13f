package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/event-planner/internal/middleware"
	"github.com/iliyamo/event-planner/internal/model"
	"github.com/iliyamo/event-planner/internal/queue"
	"github.com/iliyamo/event-planner/internal/repository"
	"github.com/iliyamo/event-planner/internal/schedule"
	"github.com/iliyamo/event-planner/internal/service"
	"github.com/iliyamo/event-planner/internal/token"
)

// memStore is an in-memory stand-in for the MySQL repositories. It
// implements just enough of the repository contracts for end-to-end
// handler tests.
type memStore struct {
	mu     sync.Mutex
	users  map[uuid.UUID]*model.User
	groups map[uuid.UUID]*model.Group
	events map[uuid.UUID]*model.Event
	tags   map[uuid.UUID]*model.Tag
}

func newMemStore() *memStore {
	return &memStore{
		users:  map[uuid.UUID]*model.User{},
		groups: map[uuid.UUID]*model.Group{},
		events: map[uuid.UUID]*model.Event{},
		tags:   map[uuid.UUID]*model.Tag{},
	}
}

// --- repository.UserRepository ---

func (s *memStore) Get(_ context.Context, q repository.UserQuery) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Status == model.UserStatusDeleted && !q.IncludeDeleted {
			continue
		}
		if q.ID != nil && u.ID == *q.ID {
			return u, nil
		}
		if q.Email != "" && strings.EqualFold(u.Email, q.Email) {
			return u, nil
		}
	}
	return nil, nil
}

func (s *memStore) Create(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *u
	cp.CreatedAt = time.Now().UTC()
	s.users[u.ID] = &cp
	return nil
}

func (s *memStore) Activate(_ context.Context, id, groupID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok && u.Status == model.UserStatusPending {
		u.Status = model.UserStatusActive
		u.ActiveGroupID = &groupID
	}
	return nil
}

// groupStore adapts memStore to repository.GroupRepository; the two
// Get signatures collide otherwise.
type groupStore struct{ *memStore }

func (s groupStore) Get(_ context.Context, q repository.GroupQuery) (*model.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range s.groups {
		if q.ID != nil && g.ID == *q.ID {
			return g, nil
		}
		if q.Name != "" && g.Name == q.Name {
			return g, nil
		}
	}
	return nil, nil
}

func (s groupStore) Create(_ context.Context, g *model.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *g
	s.groups[g.ID] = &cp
	return nil
}

func (s groupStore) AddMember(context.Context, uuid.UUID, uuid.UUID) error { return nil }

func (s groupStore) ListMembers(context.Context, uuid.UUID) ([]model.User, error) {
	return nil, nil
}

func (s groupStore) ListForMember(context.Context, uuid.UUID) ([]model.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Group
	for _, g := range s.groups {
		out = append(out, *g)
	}
	return out, nil
}

// eventStore adapts memStore to repository.EventRepository.
type eventStore struct{ *memStore }

func (s eventStore) Create(_ context.Context, e *model.Event, _ []uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *e
	s.events[e.ID] = &cp
	return nil
}

func (s eventStore) Get(_ context.Context, id uuid.UUID) (*model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.events[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, nil
}

func (s eventStore) List(_ context.Context, q repository.ListEventQuery) ([]model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Event
	for _, e := range s.events {
		if e.GroupID == q.GroupID && int(e.StartTime.Month()) == q.Month && e.StartTime.Year() == q.Year {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (s eventStore) CountOverlapping(_ context.Context, ownerID, groupID uuid.UUID, start, end time.Time, exclude *uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.events {
		if e.OwnerID != ownerID || e.GroupID != groupID {
			continue
		}
		if exclude != nil && e.ID == *exclude {
			continue
		}
		if schedule.Overlaps(e.StartTime, e.EndTime, start, end) {
			n++
		}
	}
	return n, nil
}

func (s eventStore) Update(_ context.Context, e *model.Event, _ []uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if stored, ok := s.events[e.ID]; ok && stored.OwnerID == e.OwnerID {
		cp := *e
		s.events[e.ID] = &cp
		return true, nil
	}
	return false, nil
}

func (s eventStore) Delete(_ context.Context, id, ownerID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if stored, ok := s.events[id]; ok && stored.OwnerID == ownerID {
		delete(s.events, id)
		return true, nil
	}
	return false, nil
}

func (s eventStore) ListTags(context.Context, uuid.UUID) ([]model.Tag, error) { return nil, nil }

// tagStore adapts memStore to repository.TagRepository.
type tagStore struct{ *memStore }

func (s tagStore) Create(_ context.Context, t *model.Tag) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *t
	s.tags[t.ID] = &cp
	return nil
}

func (s tagStore) GetByName(_ context.Context, name string) (*model.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tags {
		if t.Name == name {
			return t, nil
		}
	}
	return nil, nil
}

func (s tagStore) List(context.Context) ([]model.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Tag
	for _, t := range s.tags {
		out = append(out, *t)
	}
	return out, nil
}

type passTx struct{}

func (passTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }

type dropJobs struct{}

func (dropJobs) PublishUserActivation(context.Context, queue.UserActivationJob) error { return nil }

func newTestServer(t *testing.T) (*echo.Echo, *memStore) {
	t.Helper()
	store := newMemStore()
	codec := token.NewCodec("handler-test-secret", 15, 7)
	events := eventStore{store}

	authSvc := service.NewAuthService(store, groupStore{store}, passTx{}, codec, dropJobs{}, nil, bcrypt.MinCost)
	eventSvc := service.NewEventService(events, groupStore{store}, store, passTx{}, schedule.NewValidator(events), nil)
	groupSvc := service.NewGroupService(groupStore{store}, passTx{})
	tagSvc := service.NewTagService(tagStore{store})

	e := echo.New()
	e.GET("/v1/categories", NewTagHandler(tagSvc).Categories)
	auth := NewAuthHandler(authSvc)
	e.POST("/v1/auth/register", auth.Register)
	e.POST("/v1/auth/login", auth.Login)
	e.POST("/v1/auth/refresh", auth.Refresh)

	v1 := e.Group("/v1", middleware.RequireAuth(authSvc))
	v1.GET("/me", auth.Me)
	evh := NewEventHandler(eventSvc)
	v1.POST("/events", evh.Create)
	v1.GET("/events", evh.List)
	gh := NewGroupHandler(groupSvc)
	v1.POST("/groups", gh.Create)
	return e, store
}

func postJSON(e *echo.Echo, path, body, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

const registerBody = `{"name":"Alice","email":"alice@example.com","password":"passw0rd1"}`
const loginBody = `{"email":"alice@example.com","password":"passw0rd1"}`

func TestRegisterEndpoint(t *testing.T) {
	e, _ := newTestServer(t)

	rec := postJSON(e, "/v1/auth/register", registerBody, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	user := decode(t, rec)["user"].(map[string]any)
	if user["status"] != "PENDING" {
		t.Errorf("status = %v, want PENDING", user["status"])
	}
	if user["active_group_id"] != nil {
		t.Errorf("active_group_id = %v before first login", user["active_group_id"])
	}

	// Same email again.
	rec = postJSON(e, "/v1/auth/register", registerBody, "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("duplicate register status = %d, want 400", rec.Code)
	}
	if got := decode(t, rec)["code"]; got != "EMAIL_ALREADY_EXISTS" {
		t.Errorf("code = %v", got)
	}
}

func TestLoginBootstrapsAndAuthenticates(t *testing.T) {
	e, store := newTestServer(t)
	postJSON(e, "/v1/auth/register", registerBody, "")

	rec := postJSON(e, "/v1/auth/login", loginBody, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body = %s", rec.Code, rec.Body.String())
	}
	resp := decode(t, rec)
	access := resp["access"].(map[string]any)["token"].(string)

	// The default group exists after first login.
	if len(store.groups) != 1 {
		t.Fatalf("groups = %d, want 1", len(store.groups))
	}
	for _, g := range store.groups {
		if g.Name != "Alice's Group" {
			t.Errorf("group name = %q", g.Name)
		}
	}

	// The access token works on a protected route.
	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+access)
	meRec := httptest.NewRecorder()
	e.ServeHTTP(meRec, req)
	if meRec.Code != http.StatusOK {
		t.Fatalf("me status = %d", meRec.Code)
	}
	if decode(t, meRec)["email"] != "alice@example.com" {
		t.Errorf("me = %s", meRec.Body.String())
	}
}

func TestLoginWrongPasswordEndpoint(t *testing.T) {
	e, _ := newTestServer(t)
	postJSON(e, "/v1/auth/register", registerBody, "")

	rec := postJSON(e, "/v1/auth/login", `{"email":"alice@example.com","password":"wrongpass1"}`, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if got := decode(t, rec)["code"]; got != "INVALID_CREDENTIALS" {
		t.Errorf("code = %v", got)
	}
}

func TestRefreshEndpoint(t *testing.T) {
	e, _ := newTestServer(t)
	postJSON(e, "/v1/auth/register", registerBody, "")
	login := decode(t, postJSON(e, "/v1/auth/login", loginBody, ""))
	refresh := login["refresh"].(map[string]any)["token"].(string)
	access := login["access"].(map[string]any)["token"].(string)

	rec := postJSON(e, "/v1/auth/refresh", `{"refresh_token":"`+refresh+`"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh status = %d, body = %s", rec.Code, rec.Body.String())
	}

	// An access token is not accepted in the refresh slot.
	rec = postJSON(e, "/v1/auth/refresh", `{"refresh_token":"`+access+`"}`, "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if got := decode(t, rec)["code"]; got != "WRONG_TOKEN_TYPE" {
		t.Errorf("code = %v", got)
	}
}

func TestCreateEventConflictEndpoint(t *testing.T) {
	e, store := newTestServer(t)
	postJSON(e, "/v1/auth/register", registerBody, "")
	login := decode(t, postJSON(e, "/v1/auth/login", loginBody, ""))
	access := login["access"].(map[string]any)["token"].(string)

	var groupID string
	for id := range store.groups {
		groupID = id.String()
	}

	body := `{"group_id":"` + groupID + `","name":"lunch","start_time":"2026-05-01T12:00:00Z","end_time":"2026-05-01T13:00:00Z"}`
	rec := postJSON(e, "/v1/events", body, access)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", rec.Code, rec.Body.String())
	}

	// Overlapping window in the same group for the same owner.
	body = `{"group_id":"` + groupID + `","name":"meeting","start_time":"2026-05-01T12:30:00Z","end_time":"2026-05-01T13:30:00Z"}`
	rec = postJSON(e, "/v1/events", body, access)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("conflict status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if got := decode(t, rec)["code"]; got != "SCHEDULING_CONFLICT" {
		t.Errorf("code = %v", got)
	}

	// Back-to-back is allowed.
	body = `{"group_id":"` + groupID + `","name":"review","start_time":"2026-05-01T13:00:00Z","end_time":"2026-05-01T14:00:00Z"}`
	rec = postJSON(e, "/v1/events", body, access)
	if rec.Code != http.StatusCreated {
		t.Errorf("back-to-back status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestCreateEventGroupIDErrors(t *testing.T) {
	e, _ := newTestServer(t)
	postJSON(e, "/v1/auth/register", registerBody, "")
	login := decode(t, postJSON(e, "/v1/auth/login", loginBody, ""))
	access := login["access"].(map[string]any)["token"].(string)

	// Absent group_id is a missing field.
	body := `{"name":"lunch","start_time":"2026-05-01T12:00:00Z","end_time":"2026-05-01T13:00:00Z"}`
	rec := postJSON(e, "/v1/events", body, access)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if got := decode(t, rec)["code"]; got != "MISSING_FIELD" {
		t.Errorf("missing code = %v, want MISSING_FIELD", got)
	}

	// A present but unparseable group_id is a validation error.
	body = `{"group_id":"not-a-uuid","name":"lunch","start_time":"2026-05-01T12:00:00Z","end_time":"2026-05-01T13:00:00Z"}`
	rec = postJSON(e, "/v1/events", body, access)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if got := decode(t, rec)["code"]; got != "VALIDATION" {
		t.Errorf("malformed code = %v, want VALIDATION", got)
	}
}

func TestCategoriesEndpoint(t *testing.T) {
	e, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/v1/categories", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	cats := decode(t, rec)["categories"].([]any)
	if len(cats) != len(model.EventCategories) {
		t.Errorf("got %d categories, want %d", len(cats), len(model.EventCategories))
	}
}
