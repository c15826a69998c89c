package proxy

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/dgraph-io/gqlparser/v2/ast"
	"github.com/dgraph-io/gqlparser/v2/parser"
	graphql "github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/pranshuj73/gifzoo/logger"
)

//go:embed schema.graphql
var sdl string

//go:embed graphiql.html
var graphiqlPage []byte

const (
	// GraphQLPath is where the schema is served
	GraphQLPath = "/graphql"
	// MetricsPath is where Prometheus metrics are served
	MetricsPath = "/metrics"

	shutdownTimeout = 10 * time.Second
)

// NewSchema parses the user schema against a resolver for upstream
func NewSchema(upstream Upstream) (*graphql.Schema, error) {
	schema, err := graphql.ParseSchema(sdl, NewResolver(upstream))
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}
	return schema, nil
}

// NewHandler builds the proxy's HTTP surface. gatherer may be nil to leave
// out /metrics.
func NewHandler(upstream Upstream, gatherer prometheus.Gatherer) (http.Handler, error) {
	schema, err := NewSchema(upstream)
	if err != nil {
		return nil, err
	}

	gql := &relay.Handler{Schema: schema}

	mux := http.NewServeMux()
	mux.HandleFunc(GraphQLPath, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			if wantsGraphiQL(r) {
				w.Header().Set("Content-Type", "text/html; charset=utf-8")
				_, _ = w.Write(graphiqlPage)
				return
			}
			serveGet(schema, w, r)
		case http.MethodPost:
			gql.ServeHTTP(w, r)
		default:
			w.Header().Set("Allow", "GET, POST, OPTIONS")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})
	if gatherer != nil {
		mux.Handle(MetricsPath, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	return cors.AllowAll().Handler(withRequestLog(mux)), nil
}

// wantsGraphiQL is true for GETs without a query and for browsers asking
// for HTML
func wantsGraphiQL(r *http.Request) bool {
	if r.URL.Query().Get("query") == "" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

// serveGet runs a query passed as URL parameters. Mutations are only
// accepted over POST.
func serveGet(schema *graphql.Schema, w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	query := params.Get("query")
	opName := params.Get("operationName")

	var variables map[string]interface{}
	if raw := params.Get("variables"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &variables); err != nil {
			writeJSONError(w, http.StatusBadRequest, "variables are invalid JSON")
			return
		}
	}

	if isMutation(query, opName) {
		w.Header().Set("Allow", "POST")
		writeJSONError(w, http.StatusMethodNotAllowed, "Can only perform a mutation operation from a POST request.")
		return
	}

	resp := schema.Exec(r.Context(), query, opName, variables)
	body, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}

// isMutation reports whether the operation selected by opName is a
// mutation. Unparsable documents are left to the schema to reject.
func isMutation(query, opName string) bool {
	doc, gqlErr := parser.ParseQuery(&ast.Source{Input: query})
	if gqlErr != nil {
		return false
	}
	for _, op := range doc.Operations {
		if opName != "" && op.Name != opName {
			continue
		}
		if op.Operation == ast.Mutation {
			return true
		}
	}
	return false
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"errors": []map[string]string{{"message": message}},
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Debug("Handled request", map[string]interface{}{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start).String(),
		})
	})
}

// Serve listens on addr and serves handler until ctx is cancelled, then
// shuts down gracefully. A bind failure is returned immediately.
func Serve(ctx context.Context, addr string, handler http.Handler) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return serveListener(ctx, ln, handler)
}

func serveListener(ctx context.Context, ln net.Listener, handler http.Handler) error {
	srv := &http.Server{
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Proxy server listening", map[string]interface{}{
			"addr": ln.Addr().String(),
			"path": GraphQLPath,
		})
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err

	case <-ctx.Done():
		logger.Info("Shutting down proxy server", nil)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("forced shutdown: %w", err)
		}
		<-errCh
		logger.Info("Proxy server stopped", nil)
		return nil
	}
}
