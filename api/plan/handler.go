package plan

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kilianp07/energyadvisor/core/events"
	"github.com/kilianp07/energyadvisor/core/model"
	"github.com/kilianp07/energyadvisor/core/price"
	"github.com/kilianp07/energyadvisor/pkg/export"
)

// Provider exposes the current plan. coordinator.Coordinator implements it.
type Provider interface {
	// Current returns the latest plan and the prices it was built from.
	Current() (*model.ScheduleSolution, []model.PricePoint, bool)
	LastError() error
	Refresh(ctx context.Context, trigger events.Trigger) (*model.ScheduleSolution, error)
	RequestRefresh(trigger events.Trigger)
}

type errorBody struct {
	Error     string `json:"error"`
	LastError string `json:"last_error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// current writes 503 and returns false while no plan has been produced.
func current(w http.ResponseWriter, p Provider) (*model.ScheduleSolution, []model.PricePoint, bool) {
	sol, prices, ok := p.Current()
	if ok {
		return sol, prices, true
	}
	body := errorBody{Error: "no plan available yet"}
	if err := p.LastError(); err != nil {
		body.LastError = err.Error()
	}
	writeJSON(w, http.StatusServiceUnavailable, body)
	return nil, nil, false
}

// recomputeStatus maps a failed run to 503 when the price source could not
// be read and to 422 when the inputs could not be planned.
func recomputeStatus(err error) int {
	if errors.Is(err, price.ErrSensorUnavailable) || errors.Is(err, context.DeadlineExceeded) {
		return http.StatusServiceUnavailable
	}
	return http.StatusUnprocessableEntity
}

// NewPlanHandler serves the current plan as JSON via GET /api/plan.
func NewPlanHandler(p Provider) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sol, _, ok := current(w, p)
		if !ok {
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := export.WriteJSON(w, *sol); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}

// NewCSVHandler serves the current plan as CSV via GET /api/plan.csv.
func NewCSVHandler(p Provider) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sol, _, ok := current(w, p)
		if !ok {
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="plan.csv"`)
		if err := export.WriteCSV(w, *sol); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}

// NewChartHandler renders the prices behind the current plan via
// GET /api/plan/chart.
func NewChartHandler(p Provider) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sol, prices, ok := current(w, p)
		if !ok {
			return
		}
		html, err := export.PriceChartHTML(prices, sol)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(html))
	})
}

// NewRecomputeHandler replans via POST /api/plan/recompute. With
// ?async=true the run is queued and 202 is returned immediately. A price
// source outage or fetch timeout yields 503; other failures yield 422.
func NewRecomputeHandler(p Provider) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("async") == "true" {
			p.RequestRefresh(events.TriggerManual)
			w.WriteHeader(http.StatusAccepted)
			return
		}
		sol, err := p.Refresh(r.Context(), events.TriggerManual)
		if err != nil {
			writeJSON(w, recomputeStatus(err), errorBody{Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, export.NewPlanDocument(*sol))
	})
}
