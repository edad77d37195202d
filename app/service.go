// Package app wires configuration, the planner and its adapters into one
// long running service.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/kilianp07/docksched/api/schedule"
	"github.com/kilianp07/docksched/app/plugins"
	"github.com/kilianp07/docksched/config"
	"github.com/kilianp07/docksched/core/audit"
	"github.com/kilianp07/docksched/core/classify"
	"github.com/kilianp07/docksched/core/edit"
	"github.com/kilianp07/docksched/core/events"
	"github.com/kilianp07/docksched/core/gates"
	coremetrics "github.com/kilianp07/docksched/core/metrics"
	"github.com/kilianp07/docksched/core/model"
	"github.com/kilianp07/docksched/core/monitoring"
	coremqtt "github.com/kilianp07/docksched/core/mqtt"
	"github.com/kilianp07/docksched/core/persist"
	"github.com/kilianp07/docksched/core/planner"
	"github.com/kilianp07/docksched/core/session"
	"github.com/kilianp07/docksched/core/stats"
	"github.com/kilianp07/docksched/infra/logger"
	"github.com/kilianp07/docksched/infra/metrics"
	inframon "github.com/kilianp07/docksched/infra/monitoring"
	"github.com/kilianp07/docksched/infra/mqtt"
	"github.com/kilianp07/docksched/internal/eventbus"
)

const busBuffer = 32

// Service owns the planner, its stores and the HTTP, MQTT and metrics
// endpoints around it.
type Service struct {
	Planner *planner.Planner
	Handler http.Handler

	cfg      *config.Config
	bus      *eventbus.TypedBus[events.DayChanged]
	sink     coremetrics.MetricsSink
	store    persist.Store
	audit    audit.LogStore
	mqtt     *mqtt.PahoClient
	log      logger.Logger
	hasFeed  bool
	promPort string
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	mon, err := inframon.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	monitoring.Init(mon)

	dir := gates.Default()
	if cfg.Schedule.GatesFile != "" {
		if dir, err = gates.LoadDirectory(cfg.Schedule.GatesFile); err != nil {
			return nil, fmt.Errorf("gates: %w", err)
		}
	}
	if unknown := dir.Unknown(cfg.Schedule.BlockedGates); len(unknown) > 0 {
		logg.Warnf("blocked gates not in directory: %v", unknown)
	}
	loc, err := cfg.Schedule.Location()
	if err != nil {
		return nil, err
	}
	win, err := cfg.Schedule.Window()
	if err != nil {
		return nil, err
	}

	src, err := plugins.NewSource(cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	store, err := plugins.NewStore(cfg.Persist)
	if err != nil {
		return nil, fmt.Errorf("persist: %w", err)
	}
	auditStore, err := plugins.NewAuditStore(cfg.Audit)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("audit: %w", err)
	}
	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		_ = store.Close()
		_ = auditStore.Close()
		return nil, fmt.Errorf("metrics: %w", err)
	}

	p, err := planner.New(dir, classify.New(cfg.Schedule.DefaultDurationMinutes), edit.NewValidator(dir, win),
		src, store, session.NewMemoryStore(), loc, logger.New("planner"))
	if err != nil {
		return nil, err
	}
	bus := eventbus.NewTyped[events.DayChanged](busBuffer)
	p.SetMetricsSink(sink)
	p.SetAuditStore(auditStore)
	p.SetBus(bus)
	p.SetBlockedGates(cfg.Schedule.BlockedGates)

	s := &Service{
		Planner: p,
		cfg:     cfg,
		bus:     bus,
		sink:    sink,
		store:   store,
		audit:   auditStore,
		log:     logg,
		hasFeed: src != nil,
	}
	for _, sc := range cfg.Metrics.Sinks {
		if sc.Type == "prometheus" {
			s.promPort = cfg.Metrics.PrometheusPort
		}
	}
	if cfg.MQTT.Broker != "" {
		client, err := mqtt.NewPahoClient(cfg.MQTT, s.onArrival)
		if err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("mqtt client: %w", err)
		}
		s.mqtt = client
	}
	s.Handler = schedule.NewRouter(p, logger.New("api"), schedule.Options{
		Token:          cfg.API.Token,
		AllowedOrigins: cfg.API.AllowedOrigins,
		Audit:          auditStore,
	})
	return s, nil
}

// Run starts the background loops and the HTTP listener and blocks until
// ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	metrics.StartCycleCollector(ctx, s.bus, s.sink)
	if s.mqtt != nil {
		mqtt.StartBoardPublisher(ctx, s.bus, s.mqtt, logger.New("board"))
	}
	if s.promPort != "" {
		go func() {
			defer monitoring.Recover()
			if err := metrics.StartPromServer(ctx, ":"+s.promPort, s.log); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	if s.hasFeed {
		s.refreshToday(ctx)
		go s.every(ctx, s.cfg.Schedule.RefreshInterval(), s.refreshToday)
	}
	go s.every(ctx, s.cfg.Schedule.SweepInterval(), s.sweep)

	srv := &http.Server{Addr: s.cfg.API.Address, Handler: s.Handler, ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("listening on %s", s.cfg.API.Address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.log.Errorf("http shutdown: %v", err)
	}
	return nil
}

func (s *Service) every(ctx context.Context, d time.Duration, fn func(context.Context)) {
	defer monitoring.Recover()
	t := time.NewTicker(d)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			fn(ctx)
		}
	}
}

func (s *Service) refreshToday(ctx context.Context) {
	day := s.Planner.Today()
	if _, err := s.Planner.Refresh(ctx, day); err != nil {
		if errors.Is(err, planner.ErrRefreshInProgress) {
			s.log.Debugf("refresh %s skipped: %v", day, err)
		} else {
			s.log.Warnf("refresh %s: %v", day, err)
		}
	}
	s.prune(day)
}

// prune drops loaded days that fell out of the history range.
func (s *Service) prune(today string) {
	t, err := model.ParseDayKey(today, s.Planner.Location())
	if err != nil {
		return
	}
	oldest := model.DayKey(t.AddDate(0, 0, -stats.HistoryDays))
	for _, d := range s.Planner.LoadedDays() {
		if d < oldest {
			s.Planner.Forget(d)
		}
	}
}

func (s *Service) sweep(ctx context.Context) {
	for day, ids := range s.Planner.Sweep(ctx) {
		s.log.Infow("departed", map[string]any{"day": day, "ids": ids})
	}
}

func (s *Service) onArrival(a coremqtt.Arrival) {
	at := a.At
	if at.IsZero() {
		at = time.Now()
	}
	if _, err := s.Planner.MarkArrived(context.Background(), a.Day, a.ID, at); err != nil {
		s.log.Warnf("arrival %s/%s: %v", a.Day, a.ID, err)
	}
}

// Close waits for pending saves and releases every store and client.
func (s *Service) Close() error {
	if s.mqtt != nil {
		s.mqtt.Disconnect()
	}
	s.Planner.Wait()
	s.bus.Close()
	closeSink(s.sink)
	monitoring.Flush(2 * time.Second)
	return errors.Join(s.store.Close(), s.audit.Close())
}

func closeSink(sink coremetrics.MetricsSink) {
	switch v := sink.(type) {
	case *coremetrics.MultiSink:
		for _, inner := range v.Sinks {
			closeSink(inner)
		}
	case interface{ Close() }:
		v.Close()
	}
}
