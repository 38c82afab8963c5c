package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/wsupload/service/internal/response"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

// SubjectKey is the context key for the authenticated token subject.
const SubjectKey contextKey = "subject"

// TokenVerifier returns the subject of a valid token.
type TokenVerifier interface {
	Verify(raw string) (string, error)
}

// RequireToken returns middleware that validates a Bearer token and injects the
// subject into the request context. Browsers cannot set headers on a WebSocket
// handshake, so the "token" query parameter is accepted as well.
func RequireToken(v TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := tokenFromRequest(r)
			if !ok {
				response.Unauthorized(w, "authorization token required")
				return
			}

			subject, err := v.Verify(raw)
			if err != nil {
				response.Unauthorized(w, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), SubjectKey, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Subject returns the authenticated subject, or "" when the route is unauthenticated.
func Subject(ctx context.Context) string {
	s, _ := ctx.Value(SubjectKey).(string)
	return s
}

func tokenFromRequest(r *http.Request) (string, bool) {
	if h := r.Header.Get("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return "", false
		}
		return parts[1], true
	}
	if t := r.URL.Query().Get("token"); t != "" {
		return t, true
	}
	return "", false
}
