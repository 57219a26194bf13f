// Package schedule decides whether a candidate event window may be
// created. It owns the duration rules and the overlap predicate;
// transactional consistency of the check-then-insert sequence is the
// caller's responsibility.
package schedule

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/event-planner/internal/apperr"
	"github.com/iliyamo/event-planner/internal/appctx"
)

// MinDuration is the shortest window an event may occupy.
const MinDuration = 15 * time.Minute

// Candidate describes a proposed event window. Conflict detection is
// scoped to the (OwnerID, GroupID) pair. ExcludeEventID is set when
// re-validating an update so the event does not collide with itself.
type Candidate struct {
	OwnerID        uuid.UUID
	GroupID        uuid.UUID
	Start          time.Time
	End            time.Time
	ExcludeEventID *uuid.UUID
}

// ConflictLookup is the snapshot capability the validator needs over
// existing events. The SQL repository implements it; tests supply
// in-memory fakes.
type ConflictLookup interface {
	// CountOverlapping returns how many events of the same owner and
	// group have a window overlapping [start, end), optionally
	// excluding one event id.
	CountOverlapping(ctx context.Context, ownerID, groupID uuid.UUID, start, end time.Time, exclude *uuid.UUID) (int, error)
}

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. Back-to-back windows, where one interval
// ends exactly when the other begins, do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// ValidateDuration enforces the window bounds: the end must be after
// the start, and the window must span at least MinDuration.
func ValidateDuration(start, end time.Time) error {
	if !end.After(start) {
		return apperr.New(apperr.KindInvalidDuration, "event end time must be after start time")
	}
	if end.Sub(start) < MinDuration {
		return apperr.New(apperr.KindTooShort, "event duration must be at least 15 minutes")
	}
	return nil
}

// Validator runs the full admission check for a candidate window.
type Validator struct {
	Events ConflictLookup
}

// NewValidator binds the validator to a lookup over existing events.
func NewValidator(events ConflictLookup) *Validator {
	return &Validator{Events: events}
}

// Validate checks the candidate's duration bounds and then queries
// for overlapping events of the same owner and group. It is
// synchronous and deterministic given its snapshot of existing
// events; it never retries. Duration failures surface as
// InvalidDuration or TooShort, a non-empty overlap set as
// SchedulingConflict, and lookup failures as Internal.
func (v *Validator) Validate(ctx context.Context, actx appctx.Context, cand Candidate) error {
	if err := ValidateDuration(cand.Start, cand.End); err != nil {
		actx.Errorf("window rejected: %v", err)
		return err
	}

	n, err := v.Events.CountOverlapping(ctx, cand.OwnerID, cand.GroupID, cand.Start, cand.End, cand.ExcludeEventID)
	if err != nil {
		actx.Errorf("conflict lookup failed: %v", err)
		return apperr.Internal(err)
	}
	if n > 0 {
		actx.Errorf("window [%s, %s) collides with %d event(s)", cand.Start, cand.End, n)
		return apperr.New(apperr.KindSchedulingConflict, "there is an event(s) within the time span")
	}
	return nil
}
