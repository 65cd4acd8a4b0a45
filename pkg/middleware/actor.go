package middleware

import (
	"context"
	"net/http"
)

type contextKeyType string

const actorKey contextKeyType = "actor"

// DefaultActor is attributed to requests that do not report an identity.
const DefaultActor = "anonymous"

// Actor returns middleware that extracts the caller-reported identity from
// the X-Actor header and stores it in the request context. Review edits are
// attributed to this identity in history snapshots. The service performs no
// authentication; the actor is informational only.
func Actor() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := r.Header.Get("X-Actor")
			if actor == "" {
				actor = DefaultActor
			}
			ctx := context.WithValue(r.Context(), actorKey, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ActorFromContext extracts the acting identity from the request context.
// Returns an empty string when the Actor middleware is not mounted.
func ActorFromContext(ctx context.Context) string {
	if actor, ok := ctx.Value(actorKey).(string); ok {
		return actor
	}
	return ""
}
