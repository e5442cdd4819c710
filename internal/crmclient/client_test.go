package crmclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecute_DecodesData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "{ hello }", body["query"])
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		_, _ = w.Write([]byte(`{"data":{"hello":"Hello, GraphQL!"}}`))
	}))
	defer srv.Close()

	var out struct {
		Hello string `json:"hello"`
	}
	err := New(srv.URL, time.Second).Execute(context.Background(), "{ hello }", nil, &out)
	require.NoError(t, err)
	assert.Equal(t, "Hello, GraphQL!", out.Hello)
}

func TestExecute_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))
	defer srv.Close()

	err := New(srv.URL, time.Second).Execute(context.Background(), "{ hello }", nil, nil)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusInternalServerError, se.Status)
	assert.Equal(t, "boom", se.Body)
}

func TestExecute_GraphQLErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":null,"errors":[{"message":"restock already running"}]}`))
	}))
	defer srv.Close()

	err := New(srv.URL, time.Second).Execute(context.Background(), "mutation { x }", nil, nil)

	var re *ResponseError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, "graphql errors: restock already running", re.Error())
}

func TestExecute_InvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	}))
	defer srv.Close()

	err := New(srv.URL, time.Second).Execute(context.Background(), "{ hello }", nil, nil)
	assert.ErrorContains(t, err, "decode response")
}

func TestExecute_Unreachable(t *testing.T) {
	err := New("http://127.0.0.1:1/graphql", time.Second).Execute(context.Background(), "{ hello }", nil, nil)
	assert.Error(t, err)
}
