package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/vendfleet/dashboard/internal/models"
	"github.com/vendfleet/dashboard/internal/session"
)

// contextKey is a type for context keys
type contextKey string

// Context keys
const (
	SessionIDKey contextKey = "sessionID"
	SessionKey   contextKey = "session"
	ReadyKey     contextKey = "sessionReady"
)

// Session resolves the session cookie and loads the session into the
// request context. While the store is hydrating the session is empty and
// not ready.
func Session(codec *session.Codec, store *session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sid, err := codec.Resolve(w, r)
			if err != nil {
				http.Error(w, "Could not start a session", http.StatusInternalServerError)
				return
			}

			ready := store.Ready()
			var sess models.Session
			if ready {
				sess, err = store.Current(r.Context(), sid)
				if err != nil && !errors.Is(err, session.ErrNotReady) {
					log.Printf("Failed to load session: %v", err)
				}
			}

			ctx := context.WithValue(r.Context(), SessionIDKey, sid)
			ctx = context.WithValue(ctx, SessionKey, sess)
			ctx = context.WithValue(ctx, ReadyKey, ready)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Helper functions for extracting values from context
func GetSessionID(ctx context.Context) string {
	id, _ := ctx.Value(SessionIDKey).(string)
	return id
}

func GetSession(ctx context.Context) models.Session {
	sess, _ := ctx.Value(SessionKey).(models.Session)
	return sess
}

func IsReady(ctx context.Context) bool {
	ready, _ := ctx.Value(ReadyKey).(bool)
	return ready
}
