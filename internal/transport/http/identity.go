package http

import (
	"context"
	"net/http"
	"strings"

	"qquiz-service/internal/domain"
)

// TokenParser resolves a bearer token to a user ID.
type TokenParser interface {
	Parse(raw string) (string, error)
}

// UserLookup loads the account behind a token subject.
type UserLookup interface {
	User(ctx context.Context, userID string) (domain.User, error)
}

type actorKey struct{}

func withActor(ctx context.Context, user domain.User) context.Context {
	return context.WithValue(ctx, actorKey{}, user)
}

// ActorFromContext returns the authenticated user stored by Authenticate.
func ActorFromContext(ctx context.Context) (domain.User, bool) {
	user, ok := ctx.Value(actorKey{}).(domain.User)
	return user, ok
}

// Authenticate requires a valid bearer token. WebSocket clients that cannot
// set headers may pass the token as the access_token query parameter.
func Authenticate(tokens TokenParser, users UserLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				writeMessage(w, http.StatusUnauthorized, "missing bearer token")
				return
			}
			userID, err := tokens.Parse(raw)
			if err != nil {
				writeMessage(w, http.StatusUnauthorized, "invalid token")
				return
			}
			user, err := users.User(r.Context(), userID)
			if err != nil {
				writeMessage(w, http.StatusUnauthorized, "unknown user")
				return
			}
			next.ServeHTTP(w, r.WithContext(withActor(r.Context(), user)))
		})
	}
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		raw, ok := strings.CutPrefix(h, "Bearer ")
		if !ok {
			return ""
		}
		return strings.TrimSpace(raw)
	}
	return r.URL.Query().Get("access_token")
}
