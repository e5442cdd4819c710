package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/metadata"
)

func TestGetActor(t *testing.T) {
	assert.Equal(t, SystemActor, GetActor(context.Background()))
	assert.Equal(t, "u-1", GetActor(WithActor(context.Background(), "u-1")))

	md := metadata.NewIncomingContext(context.Background(), metadata.Pairs("x-user-id", "u-2"))
	assert.Equal(t, "u-2", GetActor(md))
}

func TestMiddleware(t *testing.T) {
	var got string
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetActor(r.Context())
	}))

	req := httptest.NewRequest(http.MethodPost, "/graphql", nil)
	req.Header.Set(HeaderUserID, "admin")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "admin", got)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/graphql", nil))
	assert.Equal(t, SystemActor, got)
}
