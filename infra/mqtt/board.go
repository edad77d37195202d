package mqtt

import (
	"context"

	"github.com/kilianp07/docksched/core/events"
	coremqtt "github.com/kilianp07/docksched/core/mqtt"
	"github.com/kilianp07/docksched/infra/logger"
	"github.com/kilianp07/docksched/internal/eventbus"
)

// StartBoardPublisher publishes a board for every resolved day seen on
// bus until ctx is canceled. Publish failures are logged only.
func StartBoardPublisher(ctx context.Context, bus *eventbus.TypedBus[events.DayChanged], pub coremqtt.BoardPublisher, log logger.Logger) {
	if bus == nil || pub == nil {
		return
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				b := coremqtt.BuildBoard(ev.Day, string(ev.Trigger), ev.Items, ev.Time)
				if err := pub.PublishBoard(b); err != nil {
					log.Errorf("board %s: %v", ev.Day, err)
				}
			}
		}
	}()
}
