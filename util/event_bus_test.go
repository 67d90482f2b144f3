// api/util/event_bus_test.go

package util

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus_PublishDeliversToSubscribers(t *testing.T) {
	bus := NewEventBus()

	received := make(chan Event, 2)
	handler := func(ctx context.Context, event Event) error {
		received <- event
		return nil
	}

	bus.Subscribe("object.created", handler)
	bus.Subscribe("object.created", handler)

	bus.Publish(context.Background(), "object.created", "payload-1")

	for i := 0; i < 2; i++ {
		select {
		case event := <-received:
			assert.Equal(t, "object.created", event.Type)
			assert.Equal(t, "payload-1", event.Payload)
		case <-time.After(time.Second):
			t.Fatal("handler was not invoked")
		}
	}
}

func TestEventBus_SubscribeAccumulatesHandlers(t *testing.T) {
	bus := NewEventBus()

	noop := func(ctx context.Context, event Event) error { return nil }
	bus.Subscribe("user.created", noop)
	bus.Subscribe("user.created", noop)
	bus.Subscribe("user.updated", noop)

	require.Len(t, bus.subscribers["user.created"], 2)
	require.Len(t, bus.subscribers["user.updated"], 1)
}

func TestEventBus_PublishWithoutSubscribersIsNoop(t *testing.T) {
	bus := NewEventBus()
	bus.Publish(context.Background(), "nobody.listens", 42)
}

func TestEventBus_HandlerErrorsReachErrorChannel(t *testing.T) {
	bus := NewEventBus()

	sentinel := errors.New("handler blew up")
	bus.Subscribe("object.updated", func(ctx context.Context, event Event) error {
		return sentinel
	})

	bus.Publish(context.Background(), "object.updated", nil)

	select {
	case err := <-bus.errorChan:
		assert.True(t, errors.Is(err, sentinel))
	case <-time.After(time.Second):
		t.Fatal("handler error never reached the error channel")
	}
}
