// Package appctx carries the per-request correlation object through
// service and repository calls. A Context is created fresh for every
// request, is never persisted, and exists purely so log lines from
// one request can be stitched together.
package appctx

import (
	"log"
	"strings"

	"github.com/google/uuid"
)

// Context identifies one request: a random trace id, the logical
// action being performed (e.g. "create_event") and the acting user.
// Actor is the zero UUID for unauthenticated actions.
type Context struct {
	TraceID uuid.UUID
	Action  string
	Actor   uuid.UUID
}

// New builds a Context with a fresh trace id.
func New(action string, actor uuid.UUID) Context {
	return Context{TraceID: uuid.New(), Action: action, Actor: actor}
}

// Metadata renders the correlation fields for log lines.
func (c Context) Metadata() string {
	parts := []string{"trace_id=" + c.TraceID.String()}
	if c.Action != "" {
		parts = append(parts, "action="+c.Action)
	}
	if c.Actor != uuid.Nil {
		parts = append(parts, "actor="+c.Actor.String())
	}
	return strings.Join(parts, " ")
}

// Infof logs an informational line prefixed with the correlation metadata.
func (c Context) Infof(format string, args ...any) {
	log.Printf("INFO "+c.Metadata()+" | "+format, args...)
}

// Errorf logs an error line prefixed with the correlation metadata.
func (c Context) Errorf(format string, args ...any) {
	log.Printf("ERROR "+c.Metadata()+" | "+format, args...)
}
