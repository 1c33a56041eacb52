// Package api exposes the plan and the tracked activities over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/kilianp07/energyadvisor/api/activities"
	"github.com/kilianp07/energyadvisor/api/plan"
	"github.com/kilianp07/energyadvisor/core/logger"
	"github.com/kilianp07/energyadvisor/core/planlog"
)

// Deps are the services behind the routes. History may be nil.
type Deps struct {
	Plans      plan.Provider
	Activities activities.Manager
	History    planlog.Store
	// Token guards mutating routes and the history when non-empty.
	Token string
	Log   logger.Logger
}

// NewRouter registers every route on a fresh ServeMux.
func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()
	guard := func(h http.Handler) http.Handler { return requireToken(d.Token, h) }

	mux.Handle("GET /api/plan", plan.NewPlanHandler(d.Plans))
	mux.Handle("GET /api/plan.csv", plan.NewCSVHandler(d.Plans))
	mux.Handle("GET /api/plan/chart", plan.NewChartHandler(d.Plans))
	mux.Handle("POST /api/plan/recompute", guard(plan.NewRecomputeHandler(d.Plans)))
	if d.History != nil {
		mux.Handle("GET /api/plan/history", plan.NewHistoryHandler(d.History, d.Token))
	}

	mux.Handle("GET /api/activities", activities.NewListHandler(d.Activities))
	mux.Handle("POST /api/activities", guard(activities.NewCreateHandler(d.Activities)))
	mux.Handle("PUT /api/activities/{id}", guard(activities.NewUpdateHandler(d.Activities)))
	mux.Handle("DELETE /api/activities/{id}", guard(activities.NewDeleteHandler(d.Activities)))

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	if d.Log == nil {
		return mux
	}
	return withLogging(d.Log, mux)
}

func requireToken(token string, next http.Handler) http.Handler {
	if token == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+token {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
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

func withLogging(log logger.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Debugw("http request", map[string]any{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rec.status,
			"duration_ms": time.Since(start).Milliseconds(),
		})
	})
}

// Serve runs an HTTP server on addr until ctx is canceled.
func Serve(ctx context.Context, addr string, h http.Handler, log logger.Logger) error {
	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warnf("api server shutdown: %v", err)
		}
		cancel()
	}()
	log.Infof("serving api on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
