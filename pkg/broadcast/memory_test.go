package broadcast_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/storefront/pkg/broadcast"
)

func receive[T any](t *testing.T, sub broadcast.Subscriber[T]) (T, bool) {
	t.Helper()
	select {
	case msg, ok := <-sub.Receive(context.Background()):
		return msg.Data, ok
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
	}
	var zero T
	return zero, false
}

func TestMemoryBroadcaster_Broadcast(t *testing.T) {
	t.Run("fans out to every subscriber", func(t *testing.T) {
		b := broadcast.NewMemoryBroadcaster[string](4)
		defer b.Close()

		ctx := context.Background()
		first := b.Subscribe(ctx)
		second := b.Subscribe(ctx)

		require.NoError(t, b.Broadcast(ctx, broadcast.Message[string]{Data: "signed_out"}))

		got, ok := receive(t, first)
		require.True(t, ok)
		assert.Equal(t, "signed_out", got)

		got, ok = receive(t, second)
		require.True(t, ok)
		assert.Equal(t, "signed_out", got)
	})

	t.Run("preserves publish order", func(t *testing.T) {
		b := broadcast.NewMemoryBroadcaster[int](8)
		defer b.Close()

		ctx := context.Background()
		sub := b.Subscribe(ctx)
		for i := range 5 {
			require.NoError(t, b.Broadcast(ctx, broadcast.Message[int]{Data: i}))
		}
		for i := range 5 {
			got, ok := receive(t, sub)
			require.True(t, ok)
			assert.Equal(t, i, got)
		}
	})

	t.Run("slow subscriber is dropped", func(t *testing.T) {
		b := broadcast.NewMemoryBroadcaster[int](1)
		defer b.Close()

		ctx := context.Background()
		sub := b.Subscribe(ctx)
		require.NoError(t, b.Broadcast(ctx, broadcast.Message[int]{Data: 1}))
		require.NoError(t, b.Broadcast(ctx, broadcast.Message[int]{Data: 2}))

		got, ok := receive(t, sub)
		require.True(t, ok)
		assert.Equal(t, 1, got)

		_, ok = receive(t, sub)
		assert.False(t, ok, "channel should be closed after overflow")
	})

	t.Run("broadcast after close is a no-op", func(t *testing.T) {
		b := broadcast.NewMemoryBroadcaster[int](1)
		require.NoError(t, b.Close())
		assert.NoError(t, b.Broadcast(context.Background(), broadcast.Message[int]{Data: 1}))
	})
}

func TestMemoryBroadcaster_Subscribe(t *testing.T) {
	t.Run("context cancellation unsubscribes", func(t *testing.T) {
		b := broadcast.NewMemoryBroadcaster[int](4)
		defer b.Close()

		ctx, cancel := context.WithCancel(context.Background())
		sub := b.Subscribe(ctx)
		cancel()

		_, ok := receive(t, sub)
		assert.False(t, ok)
		assert.Eventually(t, func() bool { return b.Subscribers() == 0 }, time.Second, 5*time.Millisecond)
	})

	t.Run("closing the subscriber removes it", func(t *testing.T) {
		b := broadcast.NewMemoryBroadcaster[int](4)
		defer b.Close()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sub := b.Subscribe(ctx)
		require.NoError(t, sub.Close())
		require.NoError(t, sub.Close())

		assert.Eventually(t, func() bool { return b.Subscribers() == 0 }, time.Second, 5*time.Millisecond)
	})

	t.Run("subscribe after close returns closed subscriber", func(t *testing.T) {
		b := broadcast.NewMemoryBroadcaster[int](4)
		require.NoError(t, b.Close())

		sub := b.Subscribe(context.Background())
		_, ok := receive(t, sub)
		assert.False(t, ok)
	})

	t.Run("close ends every subscription", func(t *testing.T) {
		b := broadcast.NewMemoryBroadcaster[int](4)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sub := b.Subscribe(ctx)
		require.NoError(t, b.Close())

		_, ok := receive(t, sub)
		assert.False(t, ok)
		assert.Equal(t, 0, b.Subscribers())
	})
}

func TestTopics(t *testing.T) {
	t.Run("delivers only the subscribed topic", func(t *testing.T) {
		topics := broadcast.NewTopics[string](4)
		defer topics.Close()

		ctx := context.Background()
		a := topics.Subscribe(ctx, "a")
		defer a.Close()
		b := topics.Subscribe(ctx, "b")
		defer b.Close()

		require.NoError(t, topics.Publish(ctx, "b", broadcast.Message[string]{Data: "for-b"}))
		require.NoError(t, topics.Publish(ctx, "a", broadcast.Message[string]{Data: "for-a"}))

		got, ok := receive(t, a)
		require.True(t, ok)
		assert.Equal(t, "for-a", got)

		got, ok = receive(t, b)
		require.True(t, ok)
		assert.Equal(t, "for-b", got)
	})

	t.Run("a full topic does not affect others", func(t *testing.T) {
		topics := broadcast.NewTopics[int](1)
		defer topics.Close()

		ctx := context.Background()
		quiet := topics.Subscribe(ctx, "quiet")
		defer quiet.Close()
		busy := topics.Subscribe(ctx, "busy")
		defer busy.Close()

		for i := range 10 {
			require.NoError(t, topics.Publish(ctx, "busy", broadcast.Message[int]{Data: i}))
		}
		require.NoError(t, topics.Publish(ctx, "quiet", broadcast.Message[int]{Data: 1}))

		got, ok := receive(t, quiet)
		require.True(t, ok)
		assert.Equal(t, 1, got)
	})

	t.Run("topic is removed with its last subscriber", func(t *testing.T) {
		topics := broadcast.NewTopics[string](1)
		defer topics.Close()

		ctx, cancel := context.WithCancel(context.Background())
		first := topics.Subscribe(ctx, "a")
		second := topics.Subscribe(context.Background(), "a")
		assert.Equal(t, 1, topics.Len())

		cancel()
		_, ok := receive(t, first)
		assert.False(t, ok)
		assert.Equal(t, 1, topics.Len())

		require.NoError(t, second.Close())
		assert.Eventually(t, func() bool { return topics.Len() == 0 }, time.Second, 5*time.Millisecond)
		assert.NoError(t, topics.Publish(context.Background(), "a", broadcast.Message[string]{Data: "nobody"}))
	})

	t.Run("closed topics hand out closed subscribers", func(t *testing.T) {
		topics := broadcast.NewTopics[string](1)
		require.NoError(t, topics.Close())
		assert.True(t, topics.Closed())

		_, ok := receive(t, topics.Subscribe(context.Background(), "a"))
		assert.False(t, ok)
	})
}
