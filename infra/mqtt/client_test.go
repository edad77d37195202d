package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/kilianp07/docksched/core/events"
	"github.com/kilianp07/docksched/core/model"
	coremon "github.com/kilianp07/docksched/core/monitoring"
	coremqtt "github.com/kilianp07/docksched/core/mqtt"
	"github.com/kilianp07/docksched/infra/logger"
	"github.com/kilianp07/docksched/internal/eventbus"
)

type recordMonitor struct {
	err  error
	tags map[string]string
}

func (r *recordMonitor) CaptureException(err error, tags map[string]string) {
	r.err = err
	r.tags = tags
}
func (r *recordMonitor) CapturePanic(any)    {}
func (r *recordMonitor) Flush(time.Duration) {}

func TestNewClientOptionsAuth(t *testing.T) {
	opts, err := NewClientOptions(Config{Broker: "tcp://localhost:1883", ClientID: "id", Username: "u", Password: "p"})
	if err != nil {
		t.Fatalf("opts: %v", err)
	}
	if opts.Username != "u" || opts.Password != "p" {
		t.Fatalf("auth not set")
	}
}

func TestPublishBoardRetained(t *testing.T) {
	mc := &mockClient{}
	defer useMock(mc)()
	cli, err := NewPahoClient(Config{Broker: "tcp://localhost:1883", BoardTopicPrefix: "dock/board/", QoS: map[string]byte{"board": 2}}, nil)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	b := coremqtt.BuildBoard("2025-11-20", "refresh", []model.Appointment{{ID: "a", GateID: "Brama W5", TimeLabel: "08:00"}}, time.Unix(0, 0))
	if err := cli.PublishBoard(b); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(mc.published) != 1 {
		t.Fatalf("expected one publish, got %d", len(mc.published))
	}
	call := mc.published[0]
	if call.topic != "dock/board/2025-11-20" || !call.retained || call.qos != 2 {
		t.Fatalf("unexpected publish %+v", call)
	}
	var got coremqtt.Board
	if err := json.Unmarshal(call.payload, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Day != "2025-11-20" || len(got.Gates) != 1 {
		t.Fatalf("unexpected board %+v", got)
	}
}

func TestPublishBoardRetries(t *testing.T) {
	mc := &mockClient{publishErrs: []error{errors.New("net fail"), nil}}
	defer useMock(mc)()
	cli, err := NewPahoClient(Config{Broker: "tcp://localhost:1883", MaxRetries: 1, BackoffMS: 1}, nil)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	if err := cli.PublishBoard(coremqtt.Board{Day: "d"}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(mc.published) != 2 {
		t.Fatalf("expected retry, got %d publishes", len(mc.published))
	}
}

func TestPublishBoardErrorCaptured(t *testing.T) {
	fail := errors.New("net fail")
	mc := &mockClient{publishErrs: []error{fail, fail}}
	defer useMock(mc)()
	mon := &recordMonitor{}
	coremon.Init(mon)
	defer coremon.Init(coremon.NopMonitor{})

	cli, err := NewPahoClient(Config{Broker: "tcp://localhost:1883", MaxRetries: 1, BackoffMS: 1}, nil)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	if err := cli.PublishBoard(coremqtt.Board{Day: "2025-11-20"}); !errors.Is(err, fail) {
		t.Fatalf("expected wrapped publish error, got %v", err)
	}
	if mon.err == nil || mon.tags["day"] != "2025-11-20" || mon.tags["module"] != "mqtt" {
		t.Fatalf("error not captured: %+v", mon)
	}
}

func TestPublishBoardOffline(t *testing.T) {
	mc := &mockClient{}
	defer useMock(mc)()
	cli, err := NewPahoClient(Config{Broker: "tcp://localhost:1883"}, nil)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	mc.offline = true
	if err := cli.PublishBoard(coremqtt.Board{Day: "d"}); !errors.Is(err, coremqtt.ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
}

func TestArrivalDelivered(t *testing.T) {
	mc := &mockClient{}
	defer useMock(mc)()
	got := make(chan coremqtt.Arrival, 4)
	cli, err := NewPahoClient(Config{Broker: "tcp://localhost:1883", ArrivalTopic: "dock/arrivals"}, func(a coremqtt.Arrival) { got <- a })
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	defer cli.Disconnect()
	if _, ok := mc.subscribed["dock/arrivals"]; !ok {
		t.Fatalf("arrival topic not subscribed")
	}
	mc.deliver("dock/arrivals", []byte(`not json`))
	mc.deliver("dock/arrivals", []byte(`{"id":"x"}`))
	mc.deliver("dock/arrivals", []byte(`{"id":"x","day":"2025-11-20","on_site":false}`))
	mc.deliver("dock/arrivals", []byte(`{"id":"del-1-2025-11-20","day":"2025-11-20","on_site":true}`))
	select {
	case a := <-got:
		if a.ID != "del-1-2025-11-20" {
			t.Fatalf("unexpected arrival %+v", a)
		}
	default:
		t.Fatal("arrival not delivered")
	}
	if len(got) != 0 {
		t.Fatalf("invalid arrivals were delivered")
	}
}

func TestBoardPublisherFollowsBus(t *testing.T) {
	mc := &mockClient{}
	defer useMock(mc)()
	cli, err := NewPahoClient(Config{Broker: "tcp://localhost:1883"}, nil)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	bus := eventbus.NewTyped[events.DayChanged](2)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	StartBoardPublisher(ctx, bus, cli, logger.NopLogger{})
	bus.Publish(events.DayChanged{Day: "2025-11-20", Trigger: events.TriggerSweep})

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		mc.mu.Lock()
		n := len(mc.published)
		mc.mu.Unlock()
		if n == 1 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("board not published")
}
