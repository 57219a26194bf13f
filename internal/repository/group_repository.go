package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/iliyamo/event-planner/internal/model"
)

const groupColumns = "id, name, description, owner_id, created_at, updated_at"

// GroupRepo is the MySQL implementation of GroupRepository.
type GroupRepo struct {
	DB *sql.DB
}

func NewGroupRepo(db *sql.DB) *GroupRepo { return &GroupRepo{DB: db} }

// Get fetches the first group matching the query; (nil, nil) means no
// match.
func (r *GroupRepo) Get(ctx context.Context, q GroupQuery) (*model.Group, error) {
	query := "SELECT " + groupColumns + " FROM `groups` WHERE 1=1"
	args := []any{}
	if q.ID != nil {
		query += " AND id=?"
		args = append(args, q.ID.String())
	}
	if q.Name != "" {
		query += " AND name=?"
		args = append(args, q.Name)
	}
	if q.OwnerID != nil {
		query += " AND owner_id=?"
		args = append(args, q.OwnerID.String())
	}
	query += " LIMIT 1"

	row := exec(ctx, r.DB).QueryRowContext(ctx, query, args...)
	g, err := scanGroup(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}

// Create inserts a new group row.
func (r *GroupRepo) Create(ctx context.Context, g *model.Group) error {
	var desc any
	if g.Description != nil {
		desc = *g.Description
	}
	_, err := exec(ctx, r.DB).ExecContext(ctx,
		"INSERT INTO `groups` (id, name, description, owner_id) VALUES (?,?,?,?)",
		g.ID.String(), g.Name, desc, g.OwnerID.String())
	if duplicateKey(err) {
		return ErrDuplicate
	}
	return err
}

// AddMember links a user to a group. Re-adding an existing member is
// a no-op.
func (r *GroupRepo) AddMember(ctx context.Context, groupID, memberID uuid.UUID) error {
	_, err := exec(ctx, r.DB).ExecContext(ctx,
		"INSERT IGNORE INTO group_members (member_id, group_id) VALUES (?,?)",
		memberID.String(), groupID.String())
	return err
}

// ListForMember returns every group the user belongs to, ordered by
// name.
func (r *GroupRepo) ListForMember(ctx context.Context, memberID uuid.UUID) ([]model.Group, error) {
	rows, err := exec(ctx, r.DB).QueryContext(ctx,
		"SELECT g.id, g.name, g.description, g.owner_id, g.created_at, g.updated_at"+
			" FROM `groups` g JOIN group_members gm ON gm.group_id = g.id"+
			" WHERE gm.member_id=? ORDER BY g.name",
		memberID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []model.Group
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		groups = append(groups, *g)
	}
	return groups, rows.Err()
}

// ListMembers returns the users belonging to a group, soft-deleted
// accounts excluded.
func (r *GroupRepo) ListMembers(ctx context.Context, groupID uuid.UUID) ([]model.User, error) {
	rows, err := exec(ctx, r.DB).QueryContext(ctx,
		"SELECT u.id, u.name, u.email, u.password_hash, u.status, u.active_group_id, u.image_url, u.created_at, u.updated_at"+
			" FROM users u JOIN group_members gm ON gm.member_id = u.id"+
			" WHERE gm.group_id=? AND u.status<>? ORDER BY u.name",
		groupID.String(), string(model.UserStatusDeleted))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, *u)
	}
	return members, rows.Err()
}

func scanGroup(row rowScanner) (*model.Group, error) {
	var (
		g       model.Group
		id      string
		ownerID string
		desc    sql.NullString
	)
	err := row.Scan(&id, &g.Name, &desc, &ownerID, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if g.ID, err = uuid.Parse(id); err != nil {
		return nil, err
	}
	if g.OwnerID, err = uuid.Parse(ownerID); err != nil {
		return nil, err
	}
	if desc.Valid {
		v := desc.String
		g.Description = &v
	}
	return &g, nil
}
