package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/energyadvisor/core/metrics"
	"github.com/kilianp07/energyadvisor/infra/logger"
)

// InfluxSink writes planning events to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// Close releases the HTTP client.
func (s *InfluxSink) Close() {
	s.client.Close()
}

// RecordPlanRun writes the run outcome as a plan_run point.
func (s *InfluxSink) RecordPlanRun(ev coremetrics.PlanRunEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("plan_run").
		AddTag("run_id", ev.RunID).
		AddTag("trigger", ev.Trigger).
		AddTag("success", strconv.FormatBool(ev.Success))
	if ev.ErrorKind != "" {
		p = p.AddTag("error_kind", ev.ErrorKind)
	}
	p = p.AddField("duration_ms", round3(ev.Duration.Seconds()*1000)).
		AddField("scheduled", ev.Scheduled).
		AddField("unscheduled", ev.Unscheduled).
		AddField("total_cost", round6(ev.TotalCost)).
		AddField("average_price", round6(ev.AveragePrice)).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordPlacements writes one activity_placement point per activity in a
// single request.
func (s *InfluxSink) RecordPlacements(evs []coremetrics.PlacementEvent) error {
	if len(evs) == 0 {
		return nil
	}
	pts := make([]*write.Point, 0, len(evs))
	for _, e := range evs {
		p := write.NewPointWithMeasurement("activity_placement").
			AddTag("run_id", e.RunID).
			AddTag("activity_id", e.ActivityID).
			AddTag("scheduled", strconv.FormatBool(e.Scheduled)).
			AddField("minutes", e.Minutes).
			AddField("cost", round6(e.Cost))
		if e.Scheduled {
			p = p.AddField("start", e.Start.Unix())
		}
		pts = append(pts, p.SetTime(e.Time))
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, pts...)
}

// RecordPriceIngest writes the price distribution of a fetch.
func (s *InfluxSink) RecordPriceIngest(ev coremetrics.PriceIngestEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("price_ingest").
		AddTag("source", ev.Source).
		AddField("points", ev.Points).
		AddField("min", round6(ev.Summary.Min)).
		AddField("max", round6(ev.Summary.Max)).
		AddField("mean", round6(ev.Summary.Mean)).
		AddField("stddev", round6(ev.Summary.StdDev))
	if ev.Error != "" {
		p = p.AddField("error", ev.Error)
	}
	p = p.SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}

func round6(f float64) float64 {
	return math.Round(f*1e6) / 1e6
}
