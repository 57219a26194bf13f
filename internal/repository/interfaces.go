// Package repository abstracts storage of users, groups, events and
// tags behind narrow interfaces. Services depend only on these
// interfaces; the MySQL implementations live alongside them in this
// package. Lookups return (nil, nil) when no row matches so callers
// can distinguish absence from failure without sentinel errors.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/event-planner/internal/model"
)

// ErrDuplicate reports a violated unique index. Inserts that race
// past a service-level existence check return it; services translate
// it into the matching business error instead of an internal one.
var ErrDuplicate = errors.New("duplicate key")

// UserQuery narrows a user lookup. Exactly one field is typically
// set. Soft-deleted users are excluded unless IncludeDeleted is true.
type UserQuery struct {
	ID             *uuid.UUID
	Email          string
	IncludeDeleted bool
}

// UserRepository persists users.
type UserRepository interface {
	// Get returns the first user matching the query, or nil.
	Get(ctx context.Context, q UserQuery) (*model.User, error)
	// Create inserts a new user row. A losing race on the unique
	// email index returns ErrDuplicate.
	Create(ctx context.Context, u *model.User) error
	// Activate promotes a PENDING user to ACTIVE and records the
	// default group. It is idempotent: once the user has left the
	// PENDING state the statement matches no row and does nothing.
	Activate(ctx context.Context, id, groupID uuid.UUID) error
}

// GroupQuery narrows a group lookup.
type GroupQuery struct {
	ID      *uuid.UUID
	Name    string
	OwnerID *uuid.UUID
}

// GroupRepository persists groups and their membership relation.
type GroupRepository interface {
	Get(ctx context.Context, q GroupQuery) (*model.Group, error)
	// Create inserts a new group row. A losing race on the unique
	// name index returns ErrDuplicate.
	Create(ctx context.Context, g *model.Group) error
	AddMember(ctx context.Context, groupID, memberID uuid.UUID) error
	ListMembers(ctx context.Context, groupID uuid.UUID) ([]model.User, error)
	// ListForMember returns every group the user is a member of.
	ListForMember(ctx context.Context, memberID uuid.UUID) ([]model.Group, error)
}

// ListEventQuery selects the events of one calendar month. OwnerID
// and TagIDs optionally narrow the result; Page/PageSize paginate it.
// Results are always ordered by start_time ascending; the calendar
// day-bucketing in the service layer depends on that ordering.
type ListEventQuery struct {
	Month    int
	Year     int
	GroupID  uuid.UUID
	OwnerID  *uuid.UUID
	TagIDs   []uuid.UUID
	Page     int
	PageSize int
}

// EventRepository persists events and their tag references.
type EventRepository interface {
	// Create inserts the event and its tag references in one go. The
	// caller supplies the generated id.
	Create(ctx context.Context, e *model.Event, tagIDs []uuid.UUID) error
	// Get returns an event by id, or nil.
	Get(ctx context.Context, id uuid.UUID) (*model.Event, error)
	// List returns a month of events ordered by start_time ascending.
	List(ctx context.Context, q ListEventQuery) ([]model.Event, error)
	// CountOverlapping counts events of the same owner and group whose
	// [start_time, end_time) window overlaps [start, end), optionally
	// excluding one event id (used when re-validating an update).
	CountOverlapping(ctx context.Context, ownerID, groupID uuid.UUID, start, end time.Time, exclude *uuid.UUID) (int, error)
	// Update rewrites the mutable columns of an event owned by
	// e.OwnerID and replaces its tag references when tagIDs is
	// non-nil. Returns (false, nil) when no row matched.
	Update(ctx context.Context, e *model.Event, tagIDs []uuid.UUID) (bool, error)
	// Delete removes an event owned by ownerID. Returns (false, nil)
	// when no row matched.
	Delete(ctx context.Context, id, ownerID uuid.UUID) (bool, error)
	// ListTags returns the tags attached to an event.
	ListTags(ctx context.Context, eventID uuid.UUID) ([]model.Tag, error)
}

// TagRepository persists global tags.
type TagRepository interface {
	Create(ctx context.Context, t *model.Tag) error
	GetByName(ctx context.Context, name string) (*model.Tag, error)
	List(ctx context.Context) ([]model.Tag, error)
}

// TxRunner is the scoped "run in transaction" capability services use
// to bound multi-step writes. The callback's context carries the
// transaction; repository calls made with it join the transaction
// automatically. Commit happens on nil return, rollback on error or
// panic, and the connection is released on every exit path.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
