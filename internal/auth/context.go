package auth

import (
	"context"
	"net/http"

	"google.golang.org/grpc/metadata"
)

// SystemActor is recorded for work that no caller initiated, such as cron runs.
const SystemActor = "system"

const HeaderUserID = "X-User-ID"

type actorKey struct{}

func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// GetActor returns who triggered the current operation. It checks the context
// first, then incoming gRPC metadata, and falls back to SystemActor.
func GetActor(ctx context.Context) string {
	if val, ok := ctx.Value(actorKey{}).(string); ok && val != "" {
		return val
	}

	md, ok := metadata.FromIncomingContext(ctx)
	if ok {
		if val := md.Get("x-user-id"); len(val) > 0 && val[0] != "" {
			return val[0]
		}
	}
	return SystemActor
}

// Middleware copies the X-User-ID header into the request context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := r.Header.Get(HeaderUserID); id != "" {
			r = r.WithContext(WithActor(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}
