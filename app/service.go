package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/energyadvisor/api"
	"github.com/kilianp07/energyadvisor/config"
	"github.com/kilianp07/energyadvisor/connectors/pricefeed"
	"github.com/kilianp07/energyadvisor/core/activity"
	"github.com/kilianp07/energyadvisor/core/coordinator"
	"github.com/kilianp07/energyadvisor/core/events"
	coremetrics "github.com/kilianp07/energyadvisor/core/metrics"
	"github.com/kilianp07/energyadvisor/core/planlog"
	"github.com/kilianp07/energyadvisor/infra/logger"
	"github.com/kilianp07/energyadvisor/infra/metrics"
	"github.com/kilianp07/energyadvisor/infra/mqtt"
	"github.com/kilianp07/energyadvisor/infra/store"
	"github.com/kilianp07/energyadvisor/internal/eventbus"
)

// Service wires the coordinator to its price source, activity store,
// publishers and HTTP surfaces.
type Service struct {
	Coordinator *coordinator.Coordinator
	Activities  *activity.Manager

	cfg         *config.Config
	log         logger.Logger
	bus         *eventbus.Bus[events.PlanEvent]
	sink        coremetrics.MetricsSink
	planLog     planlog.Store
	storeCloser io.Closer
	mqtt        *mqtt.PahoClient
	feed        *pricefeed.Client
	state       *mqtt.StatePublisher
}

// New creates a Service from the configuration.
func New(ctx context.Context, cfg *config.Config) (*Service, error) {
	logg := logger.New("service")
	plannerCfg, err := cfg.Planner.Model()
	if err != nil {
		return nil, fmt.Errorf("planner config: %w", err)
	}

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}

	actStore, closer, err := store.Open(cfg.Store.Backend, cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("activity store: %w", err)
	}
	manager, err := activity.NewManager(ctx, actStore, logger.New("activities"))
	if err != nil {
		_ = closer.Close()
		return nil, err
	}

	planLog, err := planlog.Open(planlog.Options{
		Backend:    cfg.PlanLog.Backend,
		Path:       cfg.PlanLog.Path,
		MaxSizeMB:  cfg.PlanLog.MaxSizeMB,
		MaxBackups: cfg.PlanLog.MaxBackups,
		MaxAgeDays: cfg.PlanLog.MaxAgeDays,
	})
	if err != nil {
		_ = closer.Close()
		return nil, fmt.Errorf("plan log: %w", err)
	}

	svc := &Service{
		Activities:  manager,
		cfg:         cfg,
		log:         logg,
		bus:         eventbus.New[events.PlanEvent](),
		sink:        sink,
		planLog:     planLog,
		storeCloser: closer,
	}

	if cfg.MQTT.Broker != "" {
		mcfg := cfg.MQTT
		if cfg.Price.Mode == config.PriceModeMQTT && cfg.Price.Topic != "" {
			mcfg.PriceTopic = cfg.Price.Topic
		}
		if cfg.Price.Mode != config.PriceModeMQTT {
			mcfg.PriceTopic = ""
		}
		client, err := mqtt.NewPahoClient(mcfg, logger.New("mqtt"))
		if err != nil {
			_ = svc.Close()
			return nil, fmt.Errorf("mqtt client: %w", err)
		}
		svc.mqtt = client
		svc.state = mqtt.NewStatePublisher(client, mcfg.StateTopic, logger.New("mqtt_state"))
	}

	src, err := newPriceSource(cfg.Price, svc.mqtt)
	if err != nil {
		_ = svc.Close()
		return nil, err
	}
	if feed, ok := src.(*pricefeed.Client); ok {
		svc.feed = feed
	}

	svc.Coordinator = coordinator.New(coordinator.Config{
		Planner:      plannerCfg,
		Interval:     cfg.Refresh.Interval(),
		FetchTimeout: cfg.Price.FetchTimeout(),
		SourceName:   cfg.Price.Mode,
	}, src, manager, svc.bus, sink, logger.New("coordinator"))
	return svc, nil
}

// Run starts every component and blocks until ctx is canceled or a server
// fails.
func (s *Service) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	metrics.StartEventCollector(ctx, s.bus, s.sink, logger.New("metrics"))
	recorded := planlog.StartRecorder(ctx, s.bus, s.planLog, logger.New("planlog"))
	if s.state != nil {
		published := s.state.Start(ctx, s.bus)
		g.Go(func() error {
			<-published
			return nil
		})
	}
	if s.feed != nil {
		g.Go(func() error {
			s.feed.Watch(ctx, s.cfg.Price.PollInterval())
			return nil
		})
	}
	if addr := s.cfg.Metrics.PrometheusAddr; addr != "" {
		g.Go(func() error {
			return metrics.StartPromServer(ctx, addr, logger.New("prometheus"))
		})
	}
	if addr := s.cfg.API.Address; addr != "" {
		router := api.NewRouter(api.Deps{
			Plans:      s.Coordinator,
			Activities: s.Activities,
			History:    s.planLog,
			Token:      s.cfg.API.Token,
			Log:        logger.New("api"),
		})
		g.Go(func() error {
			return api.Serve(ctx, addr, router, logger.New("api"))
		})
	}
	g.Go(func() error {
		s.Coordinator.Run(ctx)
		return nil
	})
	err := g.Wait()
	<-recorded
	return err
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.bus.Close()
	if d := s.bus.Dropped(); d > 0 {
		s.log.Warnf("%d plan event deliveries dropped by slow subscribers", d)
	}
	if s.mqtt != nil {
		s.mqtt.Disconnect()
	}
	if c, ok := s.sink.(interface{ Close() }); ok {
		c.Close()
	}
	var errs []error
	if s.planLog != nil {
		errs = append(errs, s.planLog.Close())
	}
	if s.storeCloser != nil {
		errs = append(errs, s.storeCloser.Close())
	}
	return errors.Join(errs...)
}
