package model

import (
	"time"

	"github.com/google/uuid"
)

// Group mirrors the `groups` table. Every group is owned by exactly
// one user (the creator); other users join through the group_members
// relation.
//
// Fields:
//  ID          – primary key (UUIDv4).
//  Name        – globally unique group name.
//  Description – optional free-form description.
//  OwnerID     – the creating user.
type Group struct {
	ID          uuid.UUID // groups.id
	Name        string    // groups.name
	Description *string   // groups.description (nullable)
	OwnerID     uuid.UUID // groups.owner_id
	CreatedAt   time.Time // groups.created_at
	UpdatedAt   time.Time // groups.updated_at
}

// GroupMember mirrors the `group_members` join table linking users to
// the groups they belong to.
type GroupMember struct {
	MemberID  uuid.UUID // group_members.member_id
	GroupID   uuid.UUID // group_members.group_id
	CreatedAt time.Time // group_members.created_at
}
