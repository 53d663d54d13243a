package events

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"salesrep_portal/platform/logger"
)

type pingEvent struct{ BaseEvent }

func (pingEvent) EventName() string { return "test.ping" }

func TestPublishReachesAllHandlers(t *testing.T) {
	bus := NewInMemoryBus(logger.Discard())
	var calls int32
	for i := 0; i < 3; i++ {
		bus.Subscribe("test.ping", HandlerFunc(func(context.Context, Event) error {
			atomic.AddInt32(&calls, 1)
			return nil
		}))
	}

	bus.Publish(context.Background(), pingEvent{BaseEvent: NewBaseEvent()})
	bus.Wait()

	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Fatalf("expected 3 handler calls, got %d", got)
	}
}

func TestPublishSyncStopsAtFirstError(t *testing.T) {
	bus := NewInMemoryBus(logger.Discard())
	boom := errors.New("boom")
	secondCalled := false
	bus.Subscribe("test.ping", HandlerFunc(func(context.Context, Event) error { return boom }))
	bus.Subscribe("test.ping", HandlerFunc(func(context.Context, Event) error {
		secondCalled = true
		return nil
	}))

	err := bus.PublishSync(context.Background(), pingEvent{BaseEvent: NewBaseEvent()})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if secondCalled {
		t.Fatal("second handler should not run after an error")
	}
}
