package events

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestPublishAndListen(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	bus := NewRedisBus(rdb, "EVENT_LISTING_CHANGED")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	got := make(chan Change, 4)
	done := make(chan error, 1)
	go func() {
		done <- bus.Listen(ctx, func(_ context.Context, c Change) { got <- c })
	}()

	// the subscriber may not be registered yet; retry until it is
	deadline := time.Now().Add(2 * time.Second)
	for len(mr.PubSubChannels("")) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscriber never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}
	mr.Publish("EVENT_LISTING_CHANGED", "not json")
	want := Change{Collection: "jobs", ID: "42", Op: OpDelete}
	if err := bus.Publish(ctx, want); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case c := <-got:
		if c != want {
			t.Errorf("got %+v, want %+v", c, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no change received")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Listen returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Listen did not stop")
	}
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = Nop{}
	if err := p.Publish(context.Background(), Change{}); err != nil {
		t.Fatal(err)
	}
}
