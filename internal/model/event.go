package model

import (
	"time"

	"github.com/google/uuid"
)

// EventPriority enumerates how urgent an event is.
type EventPriority string

const (
	EventPriorityHigh   EventPriority = "HIGH"
	EventPriorityMedium EventPriority = "MEDIUM"
	EventPriorityLow    EventPriority = "LOW"
)

// EventCategory is a closed enumeration of activity kinds. Unknown
// input is rejected at the handler boundary; the default is OTHER.
type EventCategory string

const (
	EventCategoryTravel        EventCategory = "TRAVEL"
	EventCategoryFood          EventCategory = "FOOD"
	EventCategorySport         EventCategory = "SPORT"
	EventCategoryEntertainment EventCategory = "ENTERTAINMENT"
	EventCategoryWork          EventCategory = "WORK"
	EventCategoryStudy         EventCategory = "STUDY"
	EventCategorySocial        EventCategory = "SOCIAL"
	EventCategoryOther         EventCategory = "OTHER"
)

// EventCategories lists every valid category in a stable order. The
// public /v1/categories endpoint serves this slice directly.
var EventCategories = []EventCategory{
	EventCategoryTravel,
	EventCategoryFood,
	EventCategorySport,
	EventCategoryEntertainment,
	EventCategoryWork,
	EventCategoryStudy,
	EventCategorySocial,
	EventCategoryOther,
}

// ValidPriority reports whether p is a member of the priority enum.
func ValidPriority(p EventPriority) bool {
	switch p {
	case EventPriorityHigh, EventPriorityMedium, EventPriorityLow:
		return true
	}
	return false
}

// ValidCategory reports whether c is a member of the category enum.
func ValidCategory(c EventCategory) bool {
	for _, known := range EventCategories {
		if c == known {
			return true
		}
	}
	return false
}

// Event mirrors the `events` table. StartTime and EndTime are
// timezone-aware instants stored in UTC; the conflict window is the
// half-open interval [StartTime, EndTime).
//
// Fields:
//  ID          – primary key (UUIDv4), generated by the service layer.
//  GroupID     – group the event belongs to.
//  OwnerID     – the user who created the event; conflict detection is
//                scoped to the (OwnerID, GroupID) pair.
//  Name        – short event title.
//  Destination – where the event takes place.
//  Cost        – free-form cost description.
//  Priority    – HIGH, MEDIUM or LOW.
//  Category    – closed activity enumeration, see EventCategory.
//  Description – optional longer text.
type Event struct {
	ID          uuid.UUID     // events.id
	GroupID     uuid.UUID     // events.group_id
	OwnerID     uuid.UUID     // events.owner_id
	Name        string        // events.name
	Destination string        // events.destination
	Cost        string        // events.cost
	StartTime   time.Time     // events.start_time
	EndTime     time.Time     // events.end_time
	Priority    EventPriority // events.priority
	Category    EventCategory // events.category
	Description *string       // events.description (nullable)
	CreatedAt   time.Time     // events.created_at
	UpdatedAt   time.Time     // events.updated_at
}
