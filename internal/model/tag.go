package model

import (
	"time"

	"github.com/google/uuid"
)

// Tag mirrors the `tags` table. Tags are global labels that events
// reference through the event_tags join table.
type Tag struct {
	ID          uuid.UUID // tags.id
	Name        string    // tags.name
	Color       string    // tags.color
	Description *string   // tags.description (nullable)
	CreatedAt   time.Time // tags.created_at
	UpdatedAt   time.Time // tags.updated_at
}

// EventTag mirrors the `event_tags` join table.
type EventTag struct {
	EventID   uuid.UUID // event_tags.event_id
	TagID     uuid.UUID // event_tags.tag_id
	CreatedAt time.Time // event_tags.created_at
}
