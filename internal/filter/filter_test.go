package filter

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flyer-kart/internal/events"
)

func receive(t *testing.T, ch <-chan Selection) Selection {
	t.Helper()
	select {
	case sel := <-ch:
		return sel
	case <-time.After(time.Second):
		t.Fatal("no selection published")
		return Selection{}
	}
}

func TestStore_PublishesChanges(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := events.NewHub[Selection]()
	store := NewStore(hub, zerolog.Nop())
	ch := hub.Subscribe(ctx)

	store.SetPrice(" 15 ")
	assert.Equal(t, Selection{Price: "15"}, receive(t, ch))

	store.SetCategory("Club")
	assert.Equal(t, Selection{Price: "15", Category: "Club"}, receive(t, ch))

	store.Clear()
	got := receive(t, ch)
	assert.True(t, got.IsZero())
	assert.True(t, store.Selection().IsZero())
}

func TestStore_NoPublishWithoutChange(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := events.NewHub[Selection]()
	store := NewStore(hub, zerolog.Nop())
	ch := hub.Subscribe(ctx)

	store.Set(Selection{Price: "10"})
	require.Equal(t, Selection{Price: "10"}, receive(t, ch))

	store.SetPrice("10")

	select {
	case sel := <-ch:
		t.Fatalf("unexpected publish: %+v", sel)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestStore_ConcurrentSetsPublishInOrder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := events.NewHub[Selection]()
	ch := hub.Subscribe(ctx)
	store := NewStore(hub, zerolog.Nop())

	const writers = events.DefaultBuffer - 2
	var wg sync.WaitGroup
	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.Set(Selection{Category: fmt.Sprintf("cat-%d", i)})
		}()
	}
	wg.Wait()

	var last Selection
	received := 0
	for done := false; !done; {
		select {
		case sel := <-ch:
			last = sel
			received++
		default:
			done = true
		}
	}

	require.Equal(t, writers, received)
	assert.Equal(t, store.Selection(), last, "last published selection is the stored one")
}
