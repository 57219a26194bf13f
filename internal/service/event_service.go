package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/event-planner/internal/apperr"
	"github.com/iliyamo/event-planner/internal/appctx"
	"github.com/iliyamo/event-planner/internal/metrics"
	"github.com/iliyamo/event-planner/internal/model"
	"github.com/iliyamo/event-planner/internal/repository"
	"github.com/iliyamo/event-planner/internal/schedule"
)

// IncludeOptions declares which related rows a read should fetch
// alongside the event itself. Relations are loaded eagerly and only
// when asked for; there is no lazy loading after the call returns.
type IncludeOptions struct {
	Owner bool
	Tags  bool
}

// EventView is an event plus whatever relations the caller asked for.
// Owner and Tags are nil unless the corresponding include was set.
type EventView struct {
	Event model.Event
	Owner *model.User
	Tags  []model.Tag
}

// CalendarDay groups one day's events, ordered by start time.
type CalendarDay struct {
	Date   string // YYYY-MM-DD, UTC
	Events []model.Event
}

// CreateEventInput carries the fields for a new event.
type CreateEventInput struct {
	GroupID     uuid.UUID
	Name        string
	Destination string
	Cost        string
	StartTime   time.Time
	EndTime     time.Time
	Priority    model.EventPriority
	Category    model.EventCategory
	Description *string
	TagIDs      []uuid.UUID
}

// UpdateEventInput carries a partial update. Nil fields keep their
// stored value; a nil TagIDs leaves tag references untouched while an
// empty non-nil slice clears them.
type UpdateEventInput struct {
	Name        *string
	Destination *string
	Cost        *string
	StartTime   *time.Time
	EndTime     *time.Time
	Priority    *model.EventPriority
	Category    *model.EventCategory
	Description *string
	TagIDs      []uuid.UUID
}

// ListCalendarQuery selects one calendar month of a group's events.
type ListCalendarQuery struct {
	Month    int
	Year     int
	GroupID  uuid.UUID
	OwnerID  *uuid.UUID
	TagIDs   []uuid.UUID
	Page     int
	PageSize int
}

// EventService owns the event lifecycle. All writes run inside a
// transaction so the conflict check and the insert observe the same
// snapshot.
type EventService struct {
	events    repository.EventRepository
	groups    repository.GroupRepository
	users     repository.UserRepository
	tx        repository.TxRunner
	validator *schedule.Validator
	stats     *metrics.Collector
}

// NewEventService wires the event service.
func NewEventService(
	events repository.EventRepository,
	groups repository.GroupRepository,
	users repository.UserRepository,
	tx repository.TxRunner,
	validator *schedule.Validator,
	stats *metrics.Collector,
) *EventService {
	return &EventService{
		events:    events,
		groups:    groups,
		users:     users,
		tx:        tx,
		validator: validator,
		stats:     stats,
	}
}

// Create validates and persists a new event for the credential's user.
// The window check and the insert run in one transaction, so two
// concurrent creations for the same owner and group cannot both pass
// the conflict check and both commit.
func (s *EventService) Create(ctx context.Context, actx appctx.Context, cred model.Credential, in CreateEventInput) (*EventView, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperr.New(apperr.KindMissingField, "name is required")
	}
	if in.GroupID == uuid.Nil {
		return nil, apperr.New(apperr.KindMissingField, "group_id is required")
	}
	if in.StartTime.IsZero() || in.EndTime.IsZero() {
		return nil, apperr.New(apperr.KindMissingField, "start_time and end_time are required")
	}
	if in.Priority == "" {
		in.Priority = model.EventPriorityMedium
	}
	if !model.ValidPriority(in.Priority) {
		return nil, apperr.New(apperr.KindValidation, "unknown priority")
	}
	if in.Category == "" {
		in.Category = model.EventCategoryOther
	}
	if !model.ValidCategory(in.Category) {
		return nil, apperr.New(apperr.KindValidation, "unknown category")
	}

	group, err := s.groups.Get(ctx, repository.GroupQuery{ID: &in.GroupID})
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if group == nil {
		return nil, apperr.New(apperr.KindNotFound, "group not found")
	}

	event := &model.Event{
		ID:          uuid.New(),
		GroupID:     in.GroupID,
		OwnerID:     cred.ID,
		Name:        strings.TrimSpace(in.Name),
		Destination: in.Destination,
		Cost:        in.Cost,
		StartTime:   in.StartTime.UTC(),
		EndTime:     in.EndTime.UTC(),
		Priority:    in.Priority,
		Category:    in.Category,
		Description: in.Description,
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		cand := schedule.Candidate{
			OwnerID: cred.ID,
			GroupID: in.GroupID,
			Start:   event.StartTime,
			End:     event.EndTime,
		}
		if err := s.validator.Validate(ctx, actx, cand); err != nil {
			return err
		}
		if err := s.events.Create(ctx, event, in.TagIDs); err != nil {
			return apperr.Internal(err)
		}
		return nil
	})
	if err != nil {
		if apperr.KindOf(err) == apperr.KindSchedulingConflict {
			s.stats.RecordSchedulingConflict()
		}
		return nil, err
	}

	s.stats.RecordEventCreated()
	actx.Infof("event %s created in group %s", event.ID, event.GroupID)
	return s.view(ctx, event, IncludeOptions{Tags: len(in.TagIDs) > 0})
}

// ListCalendar returns one month of a group's events bucketed by day.
// Days appear in chronological order and only when they have events;
// within a day events are ordered by start time.
func (s *EventService) ListCalendar(ctx context.Context, actx appctx.Context, q ListCalendarQuery) ([]CalendarDay, error) {
	if q.Month < 1 || q.Month > 12 {
		return nil, apperr.New(apperr.KindValidation, "month must be between 1 and 12")
	}
	if q.Year < 1 {
		return nil, apperr.New(apperr.KindValidation, "year is required")
	}
	if q.GroupID == uuid.Nil {
		return nil, apperr.New(apperr.KindMissingField, "group_id is required")
	}

	events, err := s.events.List(ctx, repository.ListEventQuery{
		Month:    q.Month,
		Year:     q.Year,
		GroupID:  q.GroupID,
		OwnerID:  q.OwnerID,
		TagIDs:   q.TagIDs,
		Page:     q.Page,
		PageSize: q.PageSize,
	})
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return bucketByDay(events), nil
}

// bucketByDay folds a start-time-ordered slice into per-day groups.
// It relies on the repository's ordering: a single pass, appending to
// the current bucket while the date stays the same.
func bucketByDay(events []model.Event) []CalendarDay {
	days := make([]CalendarDay, 0, len(events))
	for _, e := range events {
		date := e.StartTime.UTC().Format("2006-01-02")
		if n := len(days); n > 0 && days[n-1].Date == date {
			days[n-1].Events = append(days[n-1].Events, e)
			continue
		}
		days = append(days, CalendarDay{Date: date, Events: []model.Event{e}})
	}
	return days
}

// Get returns a single event with the requested relations.
func (s *EventService) Get(ctx context.Context, actx appctx.Context, id uuid.UUID, inc IncludeOptions) (*EventView, error) {
	event, err := s.events.Get(ctx, id)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if event == nil {
		return nil, apperr.New(apperr.KindNotFound, "event not found")
	}
	view := &EventView{Event: *event}
	if inc.Owner {
		owner, err := s.users.Get(ctx, repository.UserQuery{ID: &event.OwnerID, IncludeDeleted: true})
		if err != nil {
			return nil, apperr.Internal(err)
		}
		view.Owner = owner
	}
	if inc.Tags {
		tags, err := s.events.ListTags(ctx, event.ID)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		view.Tags = tags
	}
	return view, nil
}

// Update applies a partial update to an event owned by the caller.
// When the update moves the window, the duration and conflict checks
// run again with the event itself excluded, so an event may always
// keep its current slot.
func (s *EventService) Update(ctx context.Context, actx appctx.Context, cred model.Credential, id uuid.UUID, in UpdateEventInput) (*EventView, error) {
	event, err := s.events.Get(ctx, id)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if event == nil || event.OwnerID != cred.ID {
		// Ownership is not disclosed; a foreign event reads as absent.
		return nil, apperr.New(apperr.KindNotFound, "event not found")
	}

	windowChanged := false
	if in.StartTime != nil {
		event.StartTime = in.StartTime.UTC()
		windowChanged = true
	}
	if in.EndTime != nil {
		event.EndTime = in.EndTime.UTC()
		windowChanged = true
	}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, apperr.New(apperr.KindMissingField, "name is required")
		}
		event.Name = strings.TrimSpace(*in.Name)
	}
	if in.Destination != nil {
		event.Destination = *in.Destination
	}
	if in.Cost != nil {
		event.Cost = *in.Cost
	}
	if in.Priority != nil {
		if !model.ValidPriority(*in.Priority) {
			return nil, apperr.New(apperr.KindValidation, "unknown priority")
		}
		event.Priority = *in.Priority
	}
	if in.Category != nil {
		if !model.ValidCategory(*in.Category) {
			return nil, apperr.New(apperr.KindValidation, "unknown category")
		}
		event.Category = *in.Category
	}
	if in.Description != nil {
		event.Description = in.Description
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if windowChanged {
			cand := schedule.Candidate{
				OwnerID:        event.OwnerID,
				GroupID:        event.GroupID,
				Start:          event.StartTime,
				End:            event.EndTime,
				ExcludeEventID: &event.ID,
			}
			if err := s.validator.Validate(ctx, actx, cand); err != nil {
				return err
			}
		}
		matched, err := s.events.Update(ctx, event, in.TagIDs)
		if err != nil {
			return apperr.Internal(err)
		}
		if !matched {
			return apperr.New(apperr.KindNotFound, "event not found")
		}
		return nil
	})
	if err != nil {
		if apperr.KindOf(err) == apperr.KindSchedulingConflict {
			s.stats.RecordSchedulingConflict()
		}
		return nil, err
	}

	actx.Infof("event %s updated", event.ID)
	return s.view(ctx, event, IncludeOptions{Tags: true})
}

// Delete removes an event owned by the caller.
func (s *EventService) Delete(ctx context.Context, actx appctx.Context, cred model.Credential, id uuid.UUID) error {
	matched, err := s.events.Delete(ctx, id, cred.ID)
	if err != nil {
		return apperr.Internal(err)
	}
	if !matched {
		return apperr.New(apperr.KindNotFound, "event not found")
	}
	actx.Infof("event %s deleted", id)
	return nil
}

func (s *EventService) view(ctx context.Context, event *model.Event, inc IncludeOptions) (*EventView, error) {
	view := &EventView{Event: *event}
	if inc.Tags {
		tags, err := s.events.ListTags(ctx, event.ID)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		view.Tags = tags
	}
	return view, nil
}
