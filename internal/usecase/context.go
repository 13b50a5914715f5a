package usecase

import (
	"context"

	"go-clinic-scheduling/internal/delivery/http/middleware"
	"go-clinic-scheduling/internal/domain/entity"

	"github.com/google/uuid"
)

// actorFromContext returns the authenticated user for audit rows, or nil
// for anonymous flows such as public booking.
func actorFromContext(ctx context.Context) *uuid.UUID {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil
	}
	return &userID
}

func isAdmin(ctx context.Context) bool {
	roleID, ok := middleware.GetRoleIDFromContext(ctx)
	return ok && roleID == entity.RoleIDAdmin
}
