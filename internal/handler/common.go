// Package handler contains the HTTP boundary: request DTOs, response
// shaping and the translation of service errors into status codes.
// Handlers never contain business rules; they bind, delegate and
// render.
package handler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-planner/internal/apperr"
	"github.com/iliyamo/event-planner/internal/appctx"
	"github.com/iliyamo/event-planner/internal/middleware"
	"github.com/iliyamo/event-planner/internal/model"
)

// dbTimeout bounds every storage-touching request.
const dbTimeout = 5 * time.Second

// respondErr renders a service error. The kind decides the status and
// the caller-facing message; internal causes are never exposed.
func respondErr(c echo.Context, err error) error {
	return c.JSON(apperr.HTTPStatus(err), echo.Map{
		"error": apperr.Message(err),
		"code":  string(apperr.KindOf(err)),
	})
}

// requestCtx derives a bounded context from the request.
func requestCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// actionCtx builds the correlation context for one request. The actor
// is the authenticated user when the route carries a credential.
func actionCtx(c echo.Context, action string) appctx.Context {
	actor := uuid.Nil
	if cred, ok := middleware.CredentialFrom(c); ok {
		actor = cred.ID
	}
	return appctx.New(action, actor)
}

// credential returns the authenticated credential. Routes behind
// RequireAuth always have one; the bool guards against misuse on
// public routes.
func credential(c echo.Context) (model.Credential, bool) {
	return middleware.CredentialFrom(c)
}

// pathID parses the :id path parameter as a UUID.
func pathID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apperr.New(apperr.KindValidation, "invalid id")
	}
	return id, nil
}
