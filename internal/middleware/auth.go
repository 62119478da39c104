package middleware

import (
	"context"
	"net/http"
	"strings"

	"waste-bknd/internal/auth"

	"go.uber.org/zap"
)

type AuthMiddleware struct {
	jwt  *auth.JWTManager
	logr *zap.Logger
}

type contextKey string

const (
	ContextSubjectKey contextKey = "subject"
	ContextRolesKey   contextKey = "roles"
)

// NewAuthMiddleware creates a reusable JWT auth middleware instance. A nil
// manager lets every request through.
func NewAuthMiddleware(jwtMgr *auth.JWTManager, logr *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwtMgr, logr: logr}
}

// Enabled reports whether tokens are checked.
func (m *AuthMiddleware) Enabled() bool {
	return m.jwt != nil
}

// JWTAuth validates the bearer token and attaches the subject to the request context
func (m *AuthMiddleware) JWTAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.jwt == nil {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "missing authorization header", http.StatusUnauthorized)
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			http.Error(w, "invalid token format", http.StatusUnauthorized)
			return
		}

		claims, err := m.jwt.VerifyToken(tokenString)
		if err != nil {
			m.logr.Warn("token rejected", zap.Error(err))
			http.Error(w, "invalid or expired token", http.StatusUnauthorized)
			return
		}

		subject, _ := claims["sub"].(string)
		var roles []string
		if raw, ok := claims["roles"].([]interface{}); ok {
			for _, v := range raw {
				if s, ok := v.(string); ok {
					roles = append(roles, s)
				}
			}
		}

		ctx := context.WithValue(r.Context(), ContextSubjectKey, subject)
		ctx = context.WithValue(ctx, ContextRolesKey, roles)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Subject returns the authenticated subject, if any.
func Subject(ctx context.Context) string {
	s, _ := ctx.Value(ContextSubjectKey).(string)
	return s
}
