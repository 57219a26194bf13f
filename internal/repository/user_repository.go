package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"

	"github.com/iliyamo/event-planner/internal/model"
)

const userColumns = "id, name, email, password_hash, status, active_group_id, image_url, created_at, updated_at"

// UserRepo is the MySQL implementation of UserRepository.
type UserRepo struct {
	DB *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Get fetches the first user matching the query. Soft-deleted rows
// are excluded unless the query opts in; (nil, nil) means no match.
func (r *UserRepo) Get(ctx context.Context, q UserQuery) (*model.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE 1=1"
	args := []any{}
	if q.ID != nil {
		query += " AND id=?"
		args = append(args, q.ID.String())
	}
	if q.Email != "" {
		query += " AND email=?"
		args = append(args, strings.ToLower(strings.TrimSpace(q.Email)))
	}
	if !q.IncludeDeleted {
		query += " AND status<>?"
		args = append(args, string(model.UserStatusDeleted))
	}
	query += " LIMIT 1"

	row := exec(ctx, r.DB).QueryRowContext(ctx, query, args...)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Create inserts a new user row. Timestamps are filled in by the
// database and read back by subsequent lookups.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	var groupID, imageURL any
	if u.ActiveGroupID != nil {
		groupID = u.ActiveGroupID.String()
	}
	if u.ImageURL != nil {
		imageURL = *u.ImageURL
	}
	_, err := exec(ctx, r.DB).ExecContext(ctx,
		"INSERT INTO users (id, name, email, password_hash, status, active_group_id, image_url) VALUES (?,?,?,?,?,?,?)",
		u.ID.String(), u.Name, strings.ToLower(strings.TrimSpace(u.Email)), u.PasswordHash, string(u.Status), groupID, imageURL)
	if duplicateKey(err) {
		return ErrDuplicate
	}
	return err
}

// Activate promotes a PENDING user to ACTIVE and records the default
// group id. The status guard makes the statement idempotent and keeps
// a later INACTIVE or DELETED state from being clobbered by a
// redelivered activation job.
func (r *UserRepo) Activate(ctx context.Context, id, groupID uuid.UUID) error {
	_, err := exec(ctx, r.DB).ExecContext(ctx,
		"UPDATE users SET status=?, active_group_id=? WHERE id=? AND status=?",
		string(model.UserStatusActive), groupID.String(), id.String(), string(model.UserStatusPending))
	return err
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*model.User, error) {
	var (
		u        model.User
		id       string
		status   string
		groupID  sql.NullString
		imageURL sql.NullString
	)
	err := row.Scan(&id, &u.Name, &u.Email, &u.PasswordHash, &status, &groupID, &imageURL, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	u.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	u.Status = model.UserStatus(status)
	if groupID.Valid {
		gid, err := uuid.Parse(groupID.String)
		if err != nil {
			return nil, err
		}
		u.ActiveGroupID = &gid
	}
	if imageURL.Valid {
		v := imageURL.String
		u.ImageURL = &v
	}
	return &u, nil
}
