package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	chimiddleware "github.com/go-chi/chi/middleware"
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"
	"go.uber.org/zap"

	"github.com/fekuna/omnipos-crm-service/internal/auth"
	"github.com/fekuna/omnipos-crm-service/internal/gql"
	"github.com/fekuna/omnipos-crm-service/pkg/logger"
)

const maxRequestBody = 1 << 20

type graphQLHandler struct {
	schema graphql.Schema
	log    logger.ZapLogger
}

// NewRouter mounts the GraphQL endpoint and the liveness probe.
func NewRouter(schema graphql.Schema, log logger.ZapLogger) http.Handler {
	h := &graphQLHandler{schema: schema, log: log}

	r := chi.NewRouter()
	r.Use(chimiddleware.StripSlashes)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(auth.Middleware)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Post("/graphql", h.ServeHTTP)
	r.Get("/graphql", h.ServeHTTP)
	return r
}

func (h *graphQLHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRequest(w, r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"errors": []map[string]string{{"message": err.Error()}},
		})
		return
	}
	if r.Method == http.MethodGet && isMutation(req) {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, map[string]interface{}{
			"errors": []map[string]string{{"message": "mutations must be sent with POST"}},
		})
		return
	}

	start := time.Now()
	res := gql.Execute(r.Context(), h.schema, req)

	status := http.StatusOK
	if res.HasErrors() && res.Data == nil {
		status = http.StatusBadRequest
	}
	h.log.Debug("graphql request",
		zap.String("operation", req.OperationName),
		zap.Int("errors", len(res.Errors)),
		zap.Duration("took", time.Since(start)),
		zap.String("request_id", chimiddleware.GetReqID(r.Context())),
	)
	writeJSON(w, status, res)
}

func decodeRequest(w http.ResponseWriter, r *http.Request) (gql.Request, error) {
	var req gql.Request
	if r.Method == http.MethodGet {
		q := r.URL.Query()
		req.Query = q.Get("query")
		req.OperationName = q.Get("operationName")
		if v := q.Get("variables"); v != "" {
			if err := json.Unmarshal([]byte(v), &req.Variables); err != nil {
				return req, errors.New("variables must be a JSON object")
			}
		}
	} else {
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
			return req, errors.New("request body must be a JSON object")
		}
	}
	if req.Query == "" {
		return req, errors.New("must provide query string")
	}
	return req, nil
}

// isMutation reports whether the operation selected by req is a mutation.
// Documents that fail to parse are left to the executor to reject.
func isMutation(req gql.Request) bool {
	doc, err := parser.Parse(parser.ParseParams{Source: req.Query})
	if err != nil {
		return false
	}
	for _, def := range doc.Definitions {
		op, ok := def.(*ast.OperationDefinition)
		if !ok {
			continue
		}
		if req.OperationName != "" && (op.Name == nil || op.Name.Value != req.OperationName) {
			continue
		}
		if op.Operation == ast.OperationTypeMutation {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// RunHTTP runs srv until ctx is cancelled, then drains in-flight requests.
func RunHTTP(ctx context.Context, srv *http.Server, log logger.ZapLogger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	log.Info("Shutting down HTTP server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return <-errCh
}
