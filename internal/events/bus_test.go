package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublishRunsHandlersInSubscriptionOrder(t *testing.T) {
	bus := NewBus(nil)
	var order []string

	bus.Subscribe("test.event", HandlerFunc(func(ctx context.Context, payload any) error {
		order = append(order, "first")
		return nil
	}))
	bus.Subscribe("test.event", HandlerFunc(func(ctx context.Context, payload any) error {
		order = append(order, "second")
		return nil
	}))

	bus.Publish(context.Background(), "test.event", nil)

	assert.Equal(t, []string{"first", "second"}, order)
}

func TestHandlerFailureDoesNotStopLaterHandlers(t *testing.T) {
	bus := NewBus(nil)
	var ran bool

	bus.Subscribe("test.event", HandlerFunc(func(ctx context.Context, payload any) error {
		return errors.New("boom")
	}))
	bus.Subscribe("test.event", HandlerFunc(func(ctx context.Context, payload any) error {
		ran = true
		return nil
	}))

	bus.Publish(context.Background(), "test.event", nil)

	assert.True(t, ran, "handler after a failing one should still run")
}

func TestHandlerPanicIsRecovered(t *testing.T) {
	bus := NewBus(nil)
	var ran bool

	bus.Subscribe("test.event", HandlerFunc(func(ctx context.Context, payload any) error {
		panic("handler blew up")
	}))
	bus.Subscribe("test.event", HandlerFunc(func(ctx context.Context, payload any) error {
		ran = true
		return nil
	}))

	assert.NotPanics(t, func() {
		bus.Publish(context.Background(), "test.event", nil)
	})
	assert.True(t, ran)
}

func TestPublishUnknownEventIsNoop(t *testing.T) {
	bus := NewBus(nil)

	assert.NotPanics(t, func() {
		bus.Publish(context.Background(), "nobody.listens", struct{}{})
	})
}

func TestHandlersAreScopedToEventName(t *testing.T) {
	bus := NewBus(nil)
	var calls int

	bus.Subscribe("event.a", HandlerFunc(func(ctx context.Context, payload any) error {
		calls++
		return nil
	}))

	bus.Publish(context.Background(), "event.b", nil)
	assert.Zero(t, calls)

	bus.Publish(context.Background(), "event.a", nil)
	assert.Equal(t, 1, calls)
}

func TestPayloadReachesHandler(t *testing.T) {
	bus := NewBus(nil)
	var got any

	bus.Subscribe(AppointmentCreated, HandlerFunc(func(ctx context.Context, payload any) error {
		got = payload
		return nil
	}))

	evt := AppointmentCreatedV1{AppointmentID: 42, PatientEmail: "ana@example.com"}
	bus.Publish(context.Background(), AppointmentCreated, evt)

	assert.Equal(t, evt, got)
}
