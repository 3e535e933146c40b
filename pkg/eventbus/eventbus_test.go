package eventbus_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitcheck/fitcheck-go/pkg/eventbus"
)

func TestBus(t *testing.T) {
	t.Parallel()

	t.Run("publish reaches subscribers synchronously", func(t *testing.T) {
		t.Parallel()

		bus := eventbus.New()
		var got eventbus.SessionEventData
		require.NoError(t, bus.Subscribe(eventbus.EventSessionSignedIn, func(data eventbus.SessionEventData) {
			got = data
		}))

		bus.Publish(eventbus.EventSessionSignedIn, eventbus.SessionEventData{Username: "alice"})
		assert.Equal(t, "alice", got.Username)
	})

	t.Run("async subscription delivers after wait", func(t *testing.T) {
		t.Parallel()

		bus := eventbus.New()
		received := make(chan string, 1)
		require.NoError(t, bus.SubscribeAsync(eventbus.EventMutationFailed, func(data eventbus.MutationEventData) {
			received <- data.Message
		}))

		bus.Publish(eventbus.EventMutationFailed, eventbus.MutationEventData{Message: "Failed to follow user"})
		bus.WaitAsync()
		assert.Equal(t, "Failed to follow user", <-received)
	})

	t.Run("unsubscribe stops delivery", func(t *testing.T) {
		t.Parallel()

		bus := eventbus.New()
		calls := 0
		handler := func(eventbus.SessionEventData) { calls++ }
		require.NoError(t, bus.Subscribe(eventbus.EventSessionSignedOut, handler))

		bus.Publish(eventbus.EventSessionSignedOut, eventbus.SessionEventData{})
		require.NoError(t, bus.Unsubscribe(eventbus.EventSessionSignedOut, handler))
		bus.Publish(eventbus.EventSessionSignedOut, eventbus.SessionEventData{})

		assert.Equal(t, 1, calls)
	})
}
