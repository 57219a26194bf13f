package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/event-planner/internal/model"
)

const eventColumns = "id, group_id, owner_id, name, destination, cost, start_time, end_time, priority, category, description, created_at, updated_at"

// EventRepo is the MySQL implementation of EventRepository. All
// methods resolve their executor from the context, so calls made
// inside TxRunner.RunInTx join the surrounding transaction.
type EventRepo struct {
	DB *sql.DB
}

func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{DB: db} }

// Create inserts the event row and one event_tags row per tag id.
func (r *EventRepo) Create(ctx context.Context, e *model.Event, tagIDs []uuid.UUID) error {
	var desc any
	if e.Description != nil {
		desc = *e.Description
	}
	_, err := exec(ctx, r.DB).ExecContext(ctx,
		"INSERT INTO events (id, group_id, owner_id, name, destination, cost, start_time, end_time, priority, category, description)"+
			" VALUES (?,?,?,?,?,?,?,?,?,?,?)",
		e.ID.String(), e.GroupID.String(), e.OwnerID.String(), e.Name, e.Destination, e.Cost,
		e.StartTime.UTC(), e.EndTime.UTC(), string(e.Priority), string(e.Category), desc)
	if err != nil {
		return err
	}
	return r.insertTags(ctx, e.ID, tagIDs)
}

// Get returns an event by id, or nil when absent.
func (r *EventRepo) Get(ctx context.Context, id uuid.UUID) (*model.Event, error) {
	row := exec(ctx, r.DB).QueryRowContext(ctx,
		"SELECT "+eventColumns+" FROM events WHERE id=? LIMIT 1", id.String())
	e, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// List returns the events of one calendar month ordered by start_time
// ascending. The ordering is load-bearing: the service layer groups
// the result into per-day buckets by scanning consecutively.
func (r *EventRepo) List(ctx context.Context, q ListEventQuery) ([]model.Event, error) {
	query := "SELECT " + eventColumns + " FROM events" +
		" WHERE group_id=? AND MONTH(start_time)=? AND YEAR(start_time)=?"
	args := []any{q.GroupID.String(), q.Month, q.Year}
	if q.OwnerID != nil {
		query += " AND owner_id=?"
		args = append(args, q.OwnerID.String())
	}
	if len(q.TagIDs) > 0 {
		query += " AND id IN (SELECT event_id FROM event_tags WHERE tag_id IN (?" +
			strings.Repeat(",?", len(q.TagIDs)-1) + "))"
		for _, t := range q.TagIDs {
			args = append(args, t.String())
		}
	}
	query += " ORDER BY start_time ASC"
	if q.Page > 0 && q.PageSize > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, q.PageSize, (q.Page-1)*q.PageSize)
	}

	rows, err := exec(ctx, r.DB).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

// CountOverlapping counts events of the same owner and group whose
// half-open window overlaps [start, end). Back-to-back windows do not
// count: the comparison is strictly start_time < end AND
// end_time > start. There is no database constraint backing this;
// concurrent creations can both see zero here and commit a conflict
// unless the surrounding transaction isolation prevents phantoms.
func (r *EventRepo) CountOverlapping(ctx context.Context, ownerID, groupID uuid.UUID, start, end time.Time, exclude *uuid.UUID) (int, error) {
	query := "SELECT COUNT(*) FROM events WHERE owner_id=? AND group_id=? AND start_time < ? AND end_time > ?"
	args := []any{ownerID.String(), groupID.String(), end.UTC(), start.UTC()}
	if exclude != nil {
		query += " AND id<>?"
		args = append(args, exclude.String())
	}
	var n int
	err := exec(ctx, r.DB).QueryRowContext(ctx, query, args...).Scan(&n)
	return n, err
}

// Update rewrites the mutable columns of an event owned by e.OwnerID.
// When tagIDs is non-nil the tag references are replaced wholesale.
// Returns (false, nil) when the event does not exist or belongs to a
// different owner.
func (r *EventRepo) Update(ctx context.Context, e *model.Event, tagIDs []uuid.UUID) (bool, error) {
	var desc any
	if e.Description != nil {
		desc = *e.Description
	}
	res, err := exec(ctx, r.DB).ExecContext(ctx,
		"UPDATE events SET name=?, destination=?, cost=?, start_time=?, end_time=?, priority=?, category=?, description=?"+
			" WHERE id=? AND owner_id=?",
		e.Name, e.Destination, e.Cost, e.StartTime.UTC(), e.EndTime.UTC(),
		string(e.Priority), string(e.Category), desc,
		e.ID.String(), e.OwnerID.String())
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		// RowsAffected is 0 both for a missing row and for a no-op
		// update of an existing row; re-check existence before giving up.
		var exists int
		err := exec(ctx, r.DB).QueryRowContext(ctx,
			"SELECT COUNT(*) FROM events WHERE id=? AND owner_id=?",
			e.ID.String(), e.OwnerID.String()).Scan(&exists)
		if err != nil {
			return false, err
		}
		if exists == 0 {
			return false, nil
		}
	}
	if tagIDs != nil {
		if _, err := exec(ctx, r.DB).ExecContext(ctx,
			"DELETE FROM event_tags WHERE event_id=?", e.ID.String()); err != nil {
			return false, err
		}
		if err := r.insertTags(ctx, e.ID, tagIDs); err != nil {
			return false, err
		}
	}
	return true, nil
}

// Delete removes an event owned by ownerID. Tag references cascade.
func (r *EventRepo) Delete(ctx context.Context, id, ownerID uuid.UUID) (bool, error) {
	res, err := exec(ctx, r.DB).ExecContext(ctx,
		"DELETE FROM events WHERE id=? AND owner_id=?", id.String(), ownerID.String())
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListTags returns the tags attached to an event ordered by name.
func (r *EventRepo) ListTags(ctx context.Context, eventID uuid.UUID) ([]model.Tag, error) {
	rows, err := exec(ctx, r.DB).QueryContext(ctx,
		"SELECT t.id, t.name, t.color, t.description, t.created_at, t.updated_at"+
			" FROM tags t JOIN event_tags et ON et.tag_id = t.id"+
			" WHERE et.event_id=? ORDER BY t.name",
		eventID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []model.Tag
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, *t)
	}
	return tags, rows.Err()
}

func (r *EventRepo) insertTags(ctx context.Context, eventID uuid.UUID, tagIDs []uuid.UUID) error {
	if len(tagIDs) == 0 {
		return nil
	}
	query := "INSERT INTO event_tags (event_id, tag_id) VALUES (?,?)" +
		strings.Repeat(",(?,?)", len(tagIDs)-1)
	args := make([]any, 0, len(tagIDs)*2)
	for _, t := range tagIDs {
		args = append(args, eventID.String(), t.String())
	}
	_, err := exec(ctx, r.DB).ExecContext(ctx, query, args...)
	return err
}

func scanEvent(row rowScanner) (*model.Event, error) {
	var (
		e        model.Event
		id       string
		groupID  string
		ownerID  string
		priority string
		category string
		desc     sql.NullString
	)
	err := row.Scan(&id, &groupID, &ownerID, &e.Name, &e.Destination, &e.Cost,
		&e.StartTime, &e.EndTime, &priority, &category, &desc, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if e.ID, err = uuid.Parse(id); err != nil {
		return nil, err
	}
	if e.GroupID, err = uuid.Parse(groupID); err != nil {
		return nil, err
	}
	if e.OwnerID, err = uuid.Parse(ownerID); err != nil {
		return nil, err
	}
	e.Priority = model.EventPriority(priority)
	e.Category = model.EventCategory(category)
	if desc.Valid {
		v := desc.String
		e.Description = &v
	}
	return &e, nil
}
