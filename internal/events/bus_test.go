package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBus_PublishSubscribe(t *testing.T) {
	b := NewBus()
	defer b.Close()

	ch, unsubscribe := Subscribe[Notice](b, 1)
	defer unsubscribe()

	notice := Notice{SessionID: "s1", Level: LevelWarning, Message: "cannot move section up"}
	require.NoError(t, b.Publish(context.Background(), notice))

	select {
	case got := <-ch:
		require.Equal(t, "s1", got.SessionID)
		require.Equal(t, LevelWarning, got.Level)
	case <-time.After(250 * time.Millisecond):
		t.Fatal("timed out waiting for event")
	}
}

func TestBus_TypedDelivery(t *testing.T) {
	b := NewBus()
	defer b.Close()

	notices, unsubNotices := Subscribe[Notice](b, 1)
	changes, unsubChanges := Subscribe[DocumentChanged](b, 1)
	defer unsubNotices()
	defer unsubChanges()

	require.NoError(t, b.Publish(context.Background(), DocumentChanged{SessionID: "s1", Op: "hide_section"}))

	select {
	case got := <-changes:
		require.Equal(t, "hide_section", got.Op)
	case <-time.After(250 * time.Millisecond):
		t.Fatal("timed out waiting for change event")
	}

	select {
	case n := <-notices:
		t.Fatalf("notice channel received unrelated event: %+v", n)
	default:
	}
}

func TestBus_PublishBlockedByFullBufferRespectsContext(t *testing.T) {
	b := NewBus()
	defer b.Close()

	_, unsubscribe := Subscribe[Notice](b, 0) // unbuffered, nobody reading
	defer unsubscribe()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := b.Publish(ctx, Notice{SessionID: "s1"})
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestBus_CloseClosesChannels(t *testing.T) {
	b := NewBus()
	ch, _ := Subscribe[SaveCompleted](b, 1)

	b.Close()

	_, open := <-ch
	require.False(t, open)

	require.Error(t, b.Publish(context.Background(), SaveCompleted{}))
}

func TestBus_SubscribeAfterClose(t *testing.T) {
	b := NewBus()
	b.Close()

	ch, unsubscribe := Subscribe[Notice](b, 1)
	defer unsubscribe()

	_, open := <-ch
	require.False(t, open)
}

func TestBus_SubscribeRacingCloseAlwaysClosesChannel(t *testing.T) {
	b := NewBus()

	const n = 32
	channels := make([]<-chan Notice, n)

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			channels[i], _ = Subscribe[Notice](b, 1)
		}()
	}

	close(start)
	b.Close()
	wg.Wait()

	for _, ch := range channels {
		select {
		case _, open := <-ch:
			require.False(t, open)
		case <-time.After(250 * time.Millisecond):
			t.Fatal("subscription channel never closed")
		}
	}
}
