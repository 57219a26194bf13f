package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/iliyamo/event-planner/internal/model"
)

const tagColumns = "id, name, color, description, created_at, updated_at"

// TagRepo is the MySQL implementation of TagRepository.
type TagRepo struct {
	DB *sql.DB
}

func NewTagRepo(db *sql.DB) *TagRepo { return &TagRepo{DB: db} }

// Create inserts a new tag row.
func (r *TagRepo) Create(ctx context.Context, t *model.Tag) error {
	var desc any
	if t.Description != nil {
		desc = *t.Description
	}
	_, err := exec(ctx, r.DB).ExecContext(ctx,
		"INSERT INTO tags (id, name, color, description) VALUES (?,?,?,?)",
		t.ID.String(), t.Name, t.Color, desc)
	return err
}

// GetByName returns a tag by exact name, or nil.
func (r *TagRepo) GetByName(ctx context.Context, name string) (*model.Tag, error) {
	row := exec(ctx, r.DB).QueryRowContext(ctx,
		"SELECT "+tagColumns+" FROM tags WHERE name=? LIMIT 1", name)
	t, err := scanTag(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// List returns every tag ordered by name.
func (r *TagRepo) List(ctx context.Context) ([]model.Tag, error) {
	rows, err := exec(ctx, r.DB).QueryContext(ctx,
		"SELECT "+tagColumns+" FROM tags ORDER BY name")
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

func scanTag(row rowScanner) (*model.Tag, error) {
	var (
		t    model.Tag
		id   string
		desc sql.NullString
	)
	err := row.Scan(&id, &t.Name, &t.Color, &desc, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if t.ID, err = uuid.Parse(id); err != nil {
		return nil, err
	}
	if desc.Valid {
		v := desc.String
		t.Description = &v
	}
	return &t, nil
}
