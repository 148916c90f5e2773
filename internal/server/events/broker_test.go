package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSubscriber records every event it receives.
type mockSubscriber struct {
	mu     sync.Mutex
	events []Event
	closed bool
}

func (m *mockSubscriber) Send(event Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *mockSubscriber) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockSubscriber) received() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Event(nil), m.events...)
}

func (m *mockSubscriber) isClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func startBroker(t *testing.T) (*Broker, context.CancelFunc) {
	t.Helper()
	logger := zerolog.Nop()
	b := NewBroker(&logger)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go b.Run(ctx)
	return b, cancel
}

func TestBroker_PublishReachesSubscribers(t *testing.T) {
	b, _ := startBroker(t)

	sub1, sub2 := &mockSubscriber{}, &mockSubscriber{}
	b.Subscribe(sub1)
	b.Subscribe(sub2)
	require.Eventually(t, func() bool { return b.SubscriberCount() == 2 }, time.Second, 5*time.Millisecond)

	b.Publish(ArticleAdded, map[string]any{"identity": "row-1"})

	for _, sub := range []*mockSubscriber{sub1, sub2} {
		require.Eventually(t, func() bool { return len(sub.received()) == 1 }, time.Second, 5*time.Millisecond)
		got := sub.received()[0]
		assert.Equal(t, ArticleAdded, got.Type)
		assert.NotEmpty(t, got.ID)
		assert.False(t, got.Timestamp.IsZero())
	}
}

func TestBroker_Unsubscribe(t *testing.T) {
	b, _ := startBroker(t)

	sub := &mockSubscriber{}
	b.Subscribe(sub)
	require.Eventually(t, func() bool { return b.SubscriberCount() == 1 }, time.Second, 5*time.Millisecond)

	b.Unsubscribe(sub)
	require.Eventually(t, func() bool { return b.SubscriberCount() == 0 }, time.Second, 5*time.Millisecond)
	assert.True(t, sub.isClosed())
}

func TestBroker_ShutdownClosesSubscribers(t *testing.T) {
	b, cancel := startBroker(t)

	sub := &mockSubscriber{}
	b.Subscribe(sub)
	require.Eventually(t, func() bool { return b.SubscriberCount() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	require.Eventually(t, func() bool { return b.SubscriberCount() == 0 }, time.Second, 5*time.Millisecond)
	assert.True(t, sub.isClosed())
}

// Subscribing before Run must not block: the server wires its transports
// before starting background services.
func TestBroker_SubscribeBeforeRun(t *testing.T) {
	logger := zerolog.Nop()
	b := NewBroker(&logger)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 5; i++ {
			b.Subscribe(&mockSubscriber{})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Subscribe blocked before Run")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go b.Run(ctx)

	assert.Eventually(t, func() bool { return b.SubscriberCount() == 5 }, time.Second, 5*time.Millisecond)
}

func TestBroker_PublishDropsWhenFull(t *testing.T) {
	logger := zerolog.Nop()
	b := NewBroker(&logger)

	// Nothing drains the queue without Run.
	for i := 0; i < cap(b.events)+10; i++ {
		b.Publish(SyncStatus, i)
	}
	assert.Len(t, b.events, cap(b.events))
}
