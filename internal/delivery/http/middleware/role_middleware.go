package middleware

import (
	"net/http"
	"strings"

	"go-clinic-scheduling/internal/domain/entity"
	"go-clinic-scheduling/pkg/response"
)

// RequireRole admits requests whose token role is one of roleIDs. It must
// run after AuthMiddleware.Authenticate, which puts the role in the context.
func RequireRole(roleIDs ...int) func(http.Handler) http.Handler {
	allowed := make(map[int]struct{}, len(roleIDs))
	names := make([]string, 0, len(roleIDs))
	for _, id := range roleIDs {
		allowed[id] = struct{}{}
		names = append(names, entity.RoleNameByID(id))
	}
	denied := "This endpoint is only available to: " + strings.Join(names, ", ")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			roleID, ok := GetRoleIDFromContext(r.Context())
			if !ok {
				response.Unauthorized(w, "Role information not found")
				return
			}
			if _, ok := allowed[roleID]; !ok {
				response.Forbidden(w, denied)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func RequireAdmin(next http.Handler) http.Handler {
	return RequireRole(entity.RoleIDAdmin)(next)
}

// RequireDoctor guards the schedule, interval and appointment management routes.
func RequireDoctor(next http.Handler) http.Handler {
	return RequireRole(entity.RoleIDDoctor)(next)
}

func RequirePatient(next http.Handler) http.Handler {
	return RequireRole(entity.RoleIDPatient)(next)
}

// RequireAnyRole admits every seeded role; appointment ownership is checked
// in the usecase.
func RequireAnyRole(next http.Handler) http.Handler {
	return RequireRole(entity.RoleIDAdmin, entity.RoleIDDoctor, entity.RoleIDPatient)(next)
}
