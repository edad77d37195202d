package metrics

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/docksched/core/metrics"
	"github.com/kilianp07/docksched/infra/logger"
)

const influxWriteTimeout = 5 * time.Second

// InfluxConfig locates the bucket receiving scheduler points.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

// InfluxSink writes scheduler events to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a sink for the given endpoint. A URL ending in
// /api/v2/write is accepted.
func NewInfluxSink(cfg InfluxConfig) *InfluxSink {
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: influxWriteTimeout}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings the instance and returns a NopSink when
// the health check fails.
func NewInfluxSinkWithFallback(cfg InfluxConfig) coremetrics.MetricsSink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), influxWriteTimeout)
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

// Close releases the underlying client.
func (s *InfluxSink) Close() { s.client.Close() }

func (s *InfluxSink) write(p *write.Point) error {
	ctx, cancel := context.WithTimeout(context.Background(), influxWriteTimeout)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordCycle writes one schedule_cycle point.
func (s *InfluxSink) RecordCycle(ev coremetrics.CycleEvent) error {
	p := write.NewPointWithMeasurement("schedule_cycle").
		AddTag("day", ev.Day).
		AddTag("trigger", ev.Trigger).
		AddField("items", ev.Items).
		AddField("on_site", ev.OnSite).
		AddField("shifts", ev.Shifts).
		AddField("departed", ev.Departed).
		AddField("conflicts", ev.Conflicts).
		AddField("bus_dropped", int64(ev.Dropped)).
		AddField("duration_ms", ev.Duration.Milliseconds()).
		SetTime(ev.Time)
	return s.write(p)
}

// RecordFetch writes one upstream_fetch point.
func (s *InfluxSink) RecordFetch(ev coremetrics.FetchEvent) error {
	p := write.NewPointWithMeasurement("upstream_fetch").
		AddTag("day", ev.Day).
		AddTag("failed", strconv.FormatBool(ev.Failed)).
		AddField("records", ev.Records).
		AddField("kept", ev.Kept).
		AddField("duration_ms", ev.Duration.Milliseconds()).
		SetTime(ev.Time)
	return s.write(p)
}

func (s *InfluxSink) RecordEdit(ev coremetrics.EditEvent) error {
	p := write.NewPointWithMeasurement("operator_edit").
		AddTag("day", ev.Day).
		AddTag("kind", ev.Kind).
		AddField("accepted", ev.Accepted).
		SetTime(ev.Time)
	return s.write(p)
}

// RecordOccupancy writes one gate_occupancy point per gate.
func (s *InfluxSink) RecordOccupancy(ev coremetrics.GateOccupancy) error {
	for gate, n := range ev.Gates {
		p := write.NewPointWithMeasurement("gate_occupancy").
			AddTag("day", ev.Day).
			AddTag("gate", gate).
			AddField("appointments", n).
			SetTime(ev.Time)
		if err := s.write(p); err != nil {
			return err
		}
	}
	return nil
}

func (s *InfluxSink) RecordPersistFailure(ev coremetrics.PersistFailure) error {
	p := write.NewPointWithMeasurement("persist_failure").
		AddTag("day", ev.Day).
		AddField("error", ev.Err).
		SetTime(ev.Time)
	return s.write(p)
}
