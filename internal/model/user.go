package model

import (
	"time"

	"github.com/google/uuid"
)

// UserStatus enumerates the lifecycle states of a user account.
// A user is created PENDING at registration, becomes ACTIVE once the
// first-login bootstrap has created a default group, may be switched
// to INACTIVE administratively, and is soft-deleted by setting
// DELETED. DELETED rows are never physically removed and are excluded
// from repository lookups by default.
type UserStatus string

const (
	UserStatusPending  UserStatus = "PENDING"
	UserStatusActive   UserStatus = "ACTIVE"
	UserStatusInactive UserStatus = "INACTIVE"
	UserStatusDeleted  UserStatus = "DELETED"
)

// User mirrors the `users` table. The json tags are omitted because
// these structs are used internally by the repository layer; handlers
// define separate response types with appropriate JSON tags.
//
// Fields:
//  ID            – primary key (UUIDv4).
//  Name          – display name used to derive the default group name.
//  Email         – unique email address (lower-cased on write).
//  PasswordHash  – bcrypt hashed password.
//  Status        – lifecycle state, see UserStatus.
//  ActiveGroupID – the group selected as the user's working group.
//                  Nil until the first-login bootstrap completes.
//  ImageURL      – optional avatar URL.
type User struct {
	ID            uuid.UUID  // users.id
	Name          string     // users.name
	Email         string     // users.email
	PasswordHash  string     // users.password_hash
	Status        UserStatus // users.status
	ActiveGroupID *uuid.UUID // users.active_group_id (nullable)
	ImageURL      *string    // users.image_url (nullable)
	CreatedAt     time.Time  // users.created_at
	UpdatedAt     time.Time  // users.updated_at
}

// Credential is the request-scoped identity produced by the auth
// middleware after validating an access token. It is what handlers
// see; the full User row stays behind the service boundary.
type Credential struct {
	ID        uuid.UUID
	Email     string
	IsPending bool
}
