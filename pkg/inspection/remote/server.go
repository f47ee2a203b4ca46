package remote

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/patchview/pkg/inspection"
)

// HandlerOptions configures [Handler].
type HandlerOptions struct {
	// Timeout bounds how long a request waits for the source to answer.
	// Defaults to DefaultTimeout.
	Timeout time.Duration
	Logger  *log.Logger
}

// Handler serves snapshots from src.
// GET /inspection answers 503 when src closes its channel or does not answer
// within the timeout.
func Handler(src inspection.Source, opts HandlerOptions) http.Handler {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(echoRequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(opts.Logger))

	r.Get(HealthPath, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})

	r.Get(InspectionPath, func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), opts.Timeout)
		defer cancel()

		var (
			in inspection.Inspection
			ok bool
		)
		select {
		case in, ok = <-src.RequestInspection(ctx):
		case <-ctx.Done():
		}
		if !ok {
			http.Error(w, "inspection unavailable", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := inspection.Write(in, w); err != nil {
			opts.Logger.Warn("writing inspection", "err", err)
		}
	})

	return r
}

// echoRequestID copies the request ID assigned by middleware.RequestID into
// the response.
func echoRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := middleware.GetReqID(r.Context()); id != "" {
			w.Header().Set(RequestIDHeader, id)
		}
		next.ServeHTTP(w, r)
	})
}

func requestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
