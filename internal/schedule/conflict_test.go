package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/event-planner/internal/apperr"
	"github.com/iliyamo/event-planner/internal/appctx"
)

var base = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func at(h, m int) time.Time {
	return time.Date(2026, 3, 10, h, m, 0, 0, time.UTC)
}

type lookupFunc func(ctx context.Context, ownerID, groupID uuid.UUID, start, end time.Time, exclude *uuid.UUID) (int, error)

func (f lookupFunc) CountOverlapping(ctx context.Context, ownerID, groupID uuid.UUID, start, end time.Time, exclude *uuid.UUID) (int, error) {
	return f(ctx, ownerID, groupID, start, end, exclude)
}

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name                           string
		aStart, aEnd, bStart, bEnd     time.Time
		want                           bool
	}{
		{"identical", at(9, 0), at(10, 0), at(9, 0), at(10, 0), true},
		{"partial overlap", at(9, 0), at(10, 0), at(9, 30), at(10, 30), true},
		{"containment", at(9, 0), at(12, 0), at(10, 0), at(11, 0), true},
		{"back to back", at(9, 0), at(10, 0), at(10, 0), at(11, 0), false},
		{"back to back reversed", at(10, 0), at(11, 0), at(9, 0), at(10, 0), false},
		{"disjoint", at(9, 0), at(10, 0), at(14, 0), at(15, 0), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Overlaps(tc.aStart, tc.aEnd, tc.bStart, tc.bEnd); got != tc.want {
				t.Errorf("Overlaps = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestValidateDuration(t *testing.T) {
	if err := ValidateDuration(at(9, 0), at(9, 15)); err != nil {
		t.Errorf("exactly 15 minutes should pass, got %v", err)
	}
	if err := ValidateDuration(at(9, 0), at(9, 10)); apperr.KindOf(err) != apperr.KindTooShort {
		t.Errorf("10 minutes: kind = %v, want TOO_SHORT", apperr.KindOf(err))
	}
	if err := ValidateDuration(at(10, 0), at(9, 0)); apperr.KindOf(err) != apperr.KindInvalidDuration {
		t.Errorf("inverted window: kind = %v, want INVALID_DURATION", apperr.KindOf(err))
	}
	if err := ValidateDuration(at(9, 0), at(9, 0)); apperr.KindOf(err) != apperr.KindInvalidDuration {
		t.Errorf("zero-length window: kind = %v, want INVALID_DURATION", apperr.KindOf(err))
	}
}

func TestValidateRejectsConflict(t *testing.T) {
	v := NewValidator(lookupFunc(func(_ context.Context, _, _ uuid.UUID, _, _ time.Time, _ *uuid.UUID) (int, error) {
		return 2, nil
	}))
	err := v.Validate(context.Background(), appctx.New("test", uuid.Nil), Candidate{
		OwnerID: uuid.New(), GroupID: uuid.New(), Start: at(9, 0), End: at(10, 0),
	})
	if apperr.KindOf(err) != apperr.KindSchedulingConflict {
		t.Fatalf("kind = %v, want SCHEDULING_CONFLICT", apperr.KindOf(err))
	}
}

func TestValidateDurationCheckedBeforeConflict(t *testing.T) {
	// A window that is both too short and conflicting must fail on the
	// duration rule; the lookup must not run at all.
	called := false
	v := NewValidator(lookupFunc(func(_ context.Context, _, _ uuid.UUID, _, _ time.Time, _ *uuid.UUID) (int, error) {
		called = true
		return 1, nil
	}))
	err := v.Validate(context.Background(), appctx.New("test", uuid.Nil), Candidate{
		OwnerID: uuid.New(), GroupID: uuid.New(), Start: at(9, 0), End: at(9, 5),
	})
	if apperr.KindOf(err) != apperr.KindTooShort {
		t.Fatalf("kind = %v, want TOO_SHORT", apperr.KindOf(err))
	}
	if called {
		t.Error("conflict lookup ran before the duration check failed")
	}
}

func TestValidatePassesExclusion(t *testing.T) {
	self := uuid.New()
	var got *uuid.UUID
	v := NewValidator(lookupFunc(func(_ context.Context, _, _ uuid.UUID, _, _ time.Time, exclude *uuid.UUID) (int, error) {
		got = exclude
		return 0, nil
	}))
	err := v.Validate(context.Background(), appctx.New("test", uuid.Nil), Candidate{
		OwnerID: uuid.New(), GroupID: uuid.New(), Start: at(9, 0), End: at(10, 0), ExcludeEventID: &self,
	})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if got == nil || *got != self {
		t.Errorf("exclusion id not forwarded to the lookup")
	}
}

func TestValidateLookupFailure(t *testing.T) {
	v := NewValidator(lookupFunc(func(_ context.Context, _, _ uuid.UUID, _, _ time.Time, _ *uuid.UUID) (int, error) {
		return 0, errors.New("connection reset")
	}))
	err := v.Validate(context.Background(), appctx.New("test", uuid.Nil), Candidate{
		OwnerID: uuid.New(), GroupID: uuid.New(), Start: base, End: base.Add(time.Hour),
	})
	if apperr.KindOf(err) != apperr.KindInternal {
		t.Errorf("kind = %v, want INTERNAL", apperr.KindOf(err))
	}
}
