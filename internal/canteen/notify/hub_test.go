package notify_test

import (
	"testing"
	"time"

	"github.com/canteenhq/canteen/internal/canteen/notify"

	"github.com/stretchr/testify/require"
)

func TestHubDeliversToTopicSubscribers(t *testing.T) {
	t.Parallel()

	hub := notify.NewHub()
	ch, cancel := hub.Subscribe(notify.TopicMenu, 4)
	defer cancel()

	hub.Publish(notify.Event{Topic: notify.TopicMenu, Kind: "created", Payload: "pad-thai"})

	select {
	case ev := <-ch:
		require.Equal(t, notify.TopicMenu, ev.Topic)
		require.Equal(t, "created", ev.Kind)
		require.Equal(t, "pad-thai", ev.Payload)
	case <-time.After(time.Second):
		t.Fatal("expected event delivery")
	}
}

func TestHubIsolatesTopics(t *testing.T) {
	t.Parallel()

	hub := notify.NewHub()
	menuCh, cancelMenu := hub.Subscribe(notify.TopicMenu, 4)
	defer cancelMenu()

	hub.Publish(notify.Event{Topic: notify.TopicOrders, Kind: "created"})

	select {
	case ev := <-menuCh:
		t.Fatalf("menu subscriber received foreign event: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubCancelStopsDelivery(t *testing.T) {
	t.Parallel()

	hub := notify.NewHub()
	ch, cancel := hub.Subscribe(notify.TopicBalances, 4)

	cancel()
	require.Equal(t, 0, hub.SubscriberCount(notify.TopicBalances))

	// Publish after cancel must not panic and must not deliver.
	hub.Publish(notify.Event{Topic: notify.TopicBalances, Kind: "reset"})

	_, open := <-ch
	require.False(t, open, "channel should be closed after cancel")
}

func TestHubCancelIsIdempotent(t *testing.T) {
	t.Parallel()

	hub := notify.NewHub()
	_, cancel := hub.Subscribe(notify.TopicOrders, 1)

	cancel()
	cancel() // second call must be a no-op
}

func TestHubSkipsSlowSubscriber(t *testing.T) {
	t.Parallel()

	hub := notify.NewHub()
	ch, cancel := hub.Subscribe(notify.TopicOrders, 1)
	defer cancel()

	// Fill the buffer, then publish more than it can hold. Publish must not
	// block even though nobody is draining.
	for i := 0; i < 5; i++ {
		hub.Publish(notify.Event{Topic: notify.TopicOrders, Kind: "created", Payload: i})
	}

	ev := <-ch
	require.Equal(t, 0, ev.Payload, "first event should survive, the rest dropped")
}
