// Package httpapi exposes cluster operations over HTTP for the serve command.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/kompox/tmpcluster/internal/logging"
	"github.com/kompox/tmpcluster/usecase/cluster"
)

// ClusterService is the subset of the cluster use case served over HTTP.
type ClusterService interface {
	Create(ctx context.Context, in *cluster.CreateInput) (*cluster.CreateOutput, error)
	Delete(ctx context.Context, in *cluster.DeleteInput) (*cluster.DeleteOutput, error)
	Status(ctx context.Context, in *cluster.StatusInput) (*cluster.StatusOutput, error)
	History(ctx context.Context, in *cluster.HistoryInput) (*cluster.HistoryOutput, error)
}

// ReadyFunc reports whether settings and templates are loaded.
type ReadyFunc func() bool

// Options configure the handler.
type Options struct {
	Clusters ClusterService
	Ready    ReadyFunc
	Metrics  http.Handler
	Logger   logging.Logger
	// RequestTimeout bounds each request context (0 = none).
	RequestTimeout time.Duration
}

// NewHandler builds the router.
func NewHandler(opts Options) http.Handler {
	h := &handler{clusters: opts.Clusters, ready: opts.Ready}
	logger := opts.Logger
	if logger == nil {
		logger = logging.FromContext(context.Background())
	}

	r := mux.NewRouter()
	r.Use(requestLogger(logger), recoverer, requestTimeout(opts.RequestTimeout))

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/clusters", h.createCluster).Methods(http.MethodPost)
	v1.HandleFunc("/clusters/{name}", h.deleteCluster).Methods(http.MethodDelete)
	v1.HandleFunc("/clusters/{name}/status", h.clusterStatus).Methods(http.MethodGet)
	v1.HandleFunc("/clusters/{name}/history", h.clusterHistory).Methods(http.MethodGet)

	r.HandleFunc("/healthz", h.healthz).Methods(http.MethodGet)
	if opts.Metrics != nil {
		r.Handle("/metrics", opts.Metrics).Methods(http.MethodGet)
	}
	return r
}

// requestLogger attaches a request-scoped logger carrying requestId.
func requestLogger(base logging.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = uuid.NewString()
			}
			logger := base.With("requestId", requestID)
			ctx := logging.WithLogger(r.Context(), logger)
			w.Header().Set("X-Request-ID", requestID)

			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(wrapped, r.WithContext(ctx))
			logger.Info(ctx, "HTTP request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", wrapped.statusCode,
				"elapsed", time.Since(start).Seconds(),
			)
		})
	}
}

func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				logging.FromContext(r.Context()).Error(r.Context(), "panic recovered", "panic", v)
				writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal", Message: "internal server error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func requestTimeout(timeout time.Duration) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		if timeout <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// responseWriter captures the status code for logging.
type responseWriter struct {
	http.ResponseWriter
	statusCode    int
	headerWritten bool
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	if !rw.headerWritten {
		rw.statusCode = statusCode
		rw.headerWritten = true
		rw.ResponseWriter.WriteHeader(statusCode)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.headerWritten {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
