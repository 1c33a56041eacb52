package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/energyadvisor/core/metrics"
)

// PromSink records planning runs in Prometheus metrics.
type PromSink struct {
	runs        *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	scheduled   prometheus.Gauge
	unscheduled prometheus.Gauge
	totalCost   prometheus.Gauge
	avgPrice    prometheus.Gauge
	placement   *prometheus.GaugeVec
	placedCost  *prometheus.GaugeVec
	fetches     *prometheus.CounterVec
	pricePoints prometheus.Gauge
	priceStats  *prometheus.GaugeVec
	activities  prometheus.Gauge
}

// NewPromSink registers planning metrics on the default Prometheus registerer.
// The /metrics endpoint is served separately by StartPromServer.
func NewPromSink() (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (coremetrics.MetricsSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "plan_runs_total",
			Help: "Total number of planning runs",
		}, []string{"trigger", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "plan_run_duration_seconds",
			Help:    "Time spent fetching prices and computing a plan",
			Buckets: prometheus.DefBuckets,
		}, []string{"trigger"}),
		scheduled: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "plan_scheduled_activities",
			Help: "Activities placed by the last successful plan",
		}),
		unscheduled: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "plan_unscheduled_activities",
			Help: "Activities the last successful plan could not place",
		}),
		totalCost: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "plan_total_cost",
			Help: "Total cost of the last successful plan",
		}),
		avgPrice: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "plan_average_price",
			Help: "Average price per hour of scheduled activity time",
		}),
		placement: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "plan_activity_scheduled",
			Help: "1 when the activity is part of the last plan, 0 when it could not be placed",
		}, []string{"activity_id"}),
		placedCost: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "plan_activity_cost",
			Help: "Cost of each scheduled activity in the last plan",
		}, []string{"activity_id"}),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "price_fetches_total",
			Help: "Price sensor fetches by source and result",
		}, []string{"source", "result"}),
		pricePoints: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "price_points",
			Help: "Number of raw price points in the last fetch",
		}),
		priceStats: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "price_statistic",
			Help: "Distribution of the last fetched prices",
		}, []string{"stat"}),
		activities: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "activities_tracked",
			Help: "Number of activities known to the planner",
		}),
	}

	var err error
	if s.runs, err = register(reg, s.runs); err != nil {
		return nil, err
	}
	if s.duration, err = register(reg, s.duration); err != nil {
		return nil, err
	}
	if s.scheduled, err = register(reg, s.scheduled); err != nil {
		return nil, err
	}
	if s.unscheduled, err = register(reg, s.unscheduled); err != nil {
		return nil, err
	}
	if s.totalCost, err = register(reg, s.totalCost); err != nil {
		return nil, err
	}
	if s.avgPrice, err = register(reg, s.avgPrice); err != nil {
		return nil, err
	}
	if s.placement, err = register(reg, s.placement); err != nil {
		return nil, err
	}
	if s.placedCost, err = register(reg, s.placedCost); err != nil {
		return nil, err
	}
	if s.fetches, err = register(reg, s.fetches); err != nil {
		return nil, err
	}
	if s.pricePoints, err = register(reg, s.pricePoints); err != nil {
		return nil, err
	}
	if s.priceStats, err = register(reg, s.priceStats); err != nil {
		return nil, err
	}
	if s.activities, err = register(reg, s.activities); err != nil {
		return nil, err
	}
	return s, nil
}

// register returns the already registered collector when one with the same
// descriptor exists, so several sinks can share the default registry.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordPlanRun counts the run and, on success, refreshes the plan gauges.
func (s *PromSink) RecordPlanRun(ev coremetrics.PlanRunEvent) error {
	result := "ok"
	if !ev.Success {
		result = ev.ErrorKind
		if result == "" {
			result = "error"
		}
	}
	s.runs.WithLabelValues(ev.Trigger, result).Inc()
	s.duration.WithLabelValues(ev.Trigger).Observe(ev.Duration.Seconds())
	if !ev.Success {
		return nil
	}
	s.scheduled.Set(float64(ev.Scheduled))
	s.unscheduled.Set(float64(ev.Unscheduled))
	s.totalCost.Set(ev.TotalCost)
	s.avgPrice.Set(ev.AveragePrice)
	return nil
}

// RecordPlacements replaces the per-activity gauges with the latest plan.
func (s *PromSink) RecordPlacements(evs []coremetrics.PlacementEvent) error {
	s.placement.Reset()
	s.placedCost.Reset()
	for _, e := range evs {
		if e.Scheduled {
			s.placement.WithLabelValues(e.ActivityID).Set(1)
			s.placedCost.WithLabelValues(e.ActivityID).Set(e.Cost)
			continue
		}
		s.placement.WithLabelValues(e.ActivityID).Set(0)
	}
	return nil
}

// RecordPriceIngest counts the fetch and publishes the price distribution.
func (s *PromSink) RecordPriceIngest(ev coremetrics.PriceIngestEvent) error {
	if ev.Error != "" {
		s.fetches.WithLabelValues(ev.Source, "error").Inc()
		return nil
	}
	s.fetches.WithLabelValues(ev.Source, "ok").Inc()
	s.pricePoints.Set(float64(ev.Points))
	s.priceStats.WithLabelValues("min").Set(ev.Summary.Min)
	s.priceStats.WithLabelValues("max").Set(ev.Summary.Max)
	s.priceStats.WithLabelValues("mean").Set(ev.Summary.Mean)
	s.priceStats.WithLabelValues("stddev").Set(ev.Summary.StdDev)
	return nil
}

// RecordActivityCount sets the tracked activities gauge.
func (s *PromSink) RecordActivityCount(n int) error {
	s.activities.Set(float64(n))
	return nil
}
