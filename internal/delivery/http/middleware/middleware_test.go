package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go-clinic-scheduling/config"
	"go-clinic-scheduling/internal/domain/entity"
	"go-clinic-scheduling/internal/service"
	"go-clinic-scheduling/pkg/jwt"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func setupTestAuth(t *testing.T) (*AuthMiddleware, *jwt.JWTService, *service.TokenStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	jwtService := jwt.NewJWTService(config.JWTConfig{
		Secret:        "test-secret",
		AccessExpiry:  15 * time.Minute,
		RefreshExpiry: time.Hour,
	})
	tokens := service.NewTokenStore(client)
	return NewAuthMiddleware(jwtService, tokens), jwtService, tokens
}

// echoUser responds 200 and records the identity the middleware attached.
func echoUser(gotUser *uuid.UUID, gotRole *int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*gotUser, _ = GetUserIDFromContext(r.Context())
		*gotRole, _ = GetRoleIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware_Authenticate(t *testing.T) {
	auth, jwtService, tokens := setupTestAuth(t)
	ctx := context.Background()
	userID := uuid.New()

	access, accessID, _ := jwtService.GenerateAccessToken(userID, "dr.sari@example.com", entity.RoleIDDoctor)
	_ = tokens.Store(ctx, userID, accessID, jwt.AccessToken, time.Minute)
	refresh, refreshID, _ := jwtService.GenerateRefreshToken(userID, "dr.sari@example.com", entity.RoleIDDoctor)
	_ = tokens.Store(ctx, userID, refreshID, jwt.RefreshToken, time.Minute)
	unstored, _, _ := jwtService.GenerateAccessToken(userID, "dr.sari@example.com", entity.RoleIDDoctor)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid", "Bearer " + access, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Token " + access, http.StatusUnauthorized},
		{"garbage token", "Bearer not.a.jwt", http.StatusUnauthorized},
		{"refresh token", "Bearer " + refresh, http.StatusUnauthorized},
		{"not in allow-list", "Bearer " + unstored, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUser uuid.UUID
			var gotRole int
			req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			auth.Authenticate(echoUser(&gotUser, &gotRole)).ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
			if tt.want == http.StatusOK && (gotUser != userID || gotRole != entity.RoleIDDoctor) {
				t.Errorf("context user = %s role %d", gotUser, gotRole)
			}
		})
	}

	_ = tokens.Revoke(ctx, userID, accessID, jwt.AccessToken)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	rec := httptest.NewRecorder()
	auth.Authenticate(http.NotFoundHandler()).ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("revoked token status = %d, want 401", rec.Code)
	}
}

func TestRequireRole(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	tests := []struct {
		name    string
		guard   func(http.Handler) http.Handler
		roleID  int
		hasRole bool
		want    int
	}{
		{"doctor on doctor route", RequireDoctor, entity.RoleIDDoctor, true, http.StatusOK},
		{"patient on doctor route", RequireDoctor, entity.RoleIDPatient, true, http.StatusForbidden},
		{"doctor on admin route", RequireAdmin, entity.RoleIDDoctor, true, http.StatusForbidden},
		{"admin on admin route", RequireAdmin, entity.RoleIDAdmin, true, http.StatusOK},
		{"patient on patient route", RequirePatient, entity.RoleIDPatient, true, http.StatusOK},
		{"patient on shared route", RequireAnyRole, entity.RoleIDPatient, true, http.StatusOK},
		{"unknown role on shared route", RequireAnyRole, 42, true, http.StatusForbidden},
		{"no role in context", RequireAnyRole, 0, false, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.hasRole {
				req = req.WithContext(WithUser(req.Context(), uuid.New(), tt.roleID))
			}
			rec := httptest.NewRecorder()
			tt.guard(ok).ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestRequireRole_ForbiddenNamesAllowedRoles(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	req := httptest.NewRequest(http.MethodPut, "/api/v1/doctor/interval", nil)
	req = req.WithContext(WithUser(req.Context(), uuid.New(), entity.RoleIDPatient))
	rec := httptest.NewRecorder()

	RequireDoctor(ok).ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "only available to: doctor") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	called := false
	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true })

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/doctor/appointments/x/paid", nil)
	req.Header.Set("Origin", "https://app.clinic.test")
	rec := httptest.NewRecorder()
	NewCORSMiddleware(config.CORSConfig{AllowedOrigins: []string{"*"}}).Handle(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || called {
		t.Errorf("preflight status %d, next called %v", rec.Code, called)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing allow-origin header")
	}
	if !strings.Contains(rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPatch) {
		t.Error("PATCH not allowed")
	}
}

func TestCORSMiddleware_ConfiguredOrigins(t *testing.T) {
	cors := NewCORSMiddleware(config.CORSConfig{
		AllowedOrigins: []string{" https://app.clinic.test/ ", "https://admin.clinic.test", ""},
	})
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })

	tests := []struct {
		name   string
		origin string
		want   string
	}{
		{"listed", "https://app.clinic.test", "https://app.clinic.test"},
		{"second listed", "https://admin.clinic.test", "https://admin.clinic.test"},
		{"unlisted", "https://evil.test", ""},
		{"no origin header", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/doctors", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rec := httptest.NewRecorder()
			cors.Handle(next).ServeHTTP(rec, req)

			if rec.Code != http.StatusNoContent {
				t.Errorf("status = %d, want request passed through", rec.Code)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.want {
				t.Errorf("allow-origin = %q, want %q", got, tt.want)
			}
			if tt.want != "" && rec.Header().Get("Vary") != "Origin" {
				t.Error("echoed origin without Vary: Origin")
			}
		})
	}
}
