package http

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/taskmaster/todos/internal/domain/entities"
	"github.com/taskmaster/todos/internal/ports"
)

// UserContextKey is where the identity middleware stores the caller's user id.
const UserContextKey = "user"

// OwnerResolver decides which owner a request acts for. The token subject
// wins over an owner_id supplied in the body, which wins over the owner_id
// query parameter. In multi-tenant mode an owner is mandatory.
type OwnerResolver struct {
	MultiTenant bool
}

// Resolve returns the acting owner, or nil in single-user mode when the
// request names none.
func (r OwnerResolver) Resolve(c echo.Context, requested *uuid.UUID) (*uuid.UUID, error) {
	if id, ok := userIDFromContext(c); ok {
		return &id, nil
	}

	if requested != nil {
		return requested, nil
	}

	if raw := c.QueryParam("owner_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, entities.NewValidationError("owner_id", "must be a UUID")
		}
		return &id, nil
	}

	if r.MultiTenant {
		return nil, entities.NewValidationError("owner_id", "is required")
	}
	return nil, nil
}

// Scope returns the query scope for the request.
func (r OwnerResolver) Scope(c echo.Context) (ports.Scope, error) {
	owner, err := r.Resolve(c, nil)
	if err != nil {
		return ports.Scope{}, err
	}
	return ports.Scope{OwnerID: owner}, nil
}

func userIDFromContext(c echo.Context) (uuid.UUID, bool) {
	raw, ok := c.Get(UserContextKey).(string)
	if !ok || raw == "" {
		return uuid.Nil, false
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
