package listing

import (
	"context"
	"sync"
	"testing"
	"time"

	"opportunity-board/internal/model"
	"opportunity-board/internal/storage"
)

func newTestFeed(src Source) *Feed {
	f := NewFeed(&Aggregator{Store: src}, Renderer{})
	f.now = func() time.Time { return now }
	return f
}

func TestFeedRefreshAndPage(t *testing.T) {
	src := fakeSource{docs: map[string][]storage.Document{
		"jobs":             {{ID: "j1", Fields: map[string]string{"title": "Go Dev"}, PostedAt: daysAgo(1)}},
		"internships":      {{ID: "i1", Fields: map[string]string{"title": "Intern"}, PostedAt: daysAgo(20)}},
		model.CollectionAds: {{ID: "ad", Fields: map[string]string{"title": "Sponsor", "placement": "top"}}},
	}}
	f := newTestFeed(src)
	if got := f.Page(model.DefaultFilter()); !got.Empty() {
		t.Fatalf("page before refresh has %d posts", got.Count)
	}
	if !f.Refresh(context.Background()) {
		t.Fatal("first refresh not committed")
	}
	page := f.Page(model.DefaultFilter())
	if page.Count != 2 || page.Banner == nil {
		t.Fatalf("page = %+v", page)
	}
	week := model.DefaultFilter()
	week.Window = model.WindowWeek
	if got := f.Page(week); got.Count != 1 || got.Items[0].Card.ID != "j1" {
		t.Errorf("week page = %+v", got)
	}
}

func TestFeedDiscardsStaleGeneration(t *testing.T) {
	f := newTestFeed(fakeSource{})
	older := f.begin()
	newer := f.begin()
	if !f.commit(newer, []model.Post{{ID: "new"}}, nil) {
		t.Fatal("newer generation rejected")
	}
	if f.commit(older, []model.Post{{ID: "old"}}, nil) {
		t.Fatal("stale generation committed")
	}
	snap := f.Snapshot()
	if snap.Generation != newer || len(snap.Posts) != 1 || snap.Posts[0].ID != "new" {
		t.Fatalf("snapshot = %+v", snap)
	}
}

// blockingSource holds the first List call of the jobs collection until
// released, so two refreshes can complete out of order.
type blockingSource struct {
	once    sync.Once
	gate    chan struct{}
	entered chan struct{}
	docs    []storage.Document
}

func (b *blockingSource) List(ctx context.Context, collection string) ([]storage.Document, error) {
	if collection != "jobs" {
		return nil, nil
	}
	first := false
	b.once.Do(func() { first = true })
	if first {
		close(b.entered)
		<-b.gate
		return []storage.Document{{ID: "stale"}}, nil
	}
	return b.docs, nil
}

func TestFeedOverlappingRefreshes(t *testing.T) {
	src := &blockingSource{
		gate:    make(chan struct{}),
		entered: make(chan struct{}),
		docs:    []storage.Document{{ID: "fresh"}},
	}
	f := newTestFeed(src)
	done := make(chan bool)
	go func() { done <- f.Refresh(context.Background()) }()
	<-src.entered // first refresh is now parked inside List
	if !f.Refresh(context.Background()) {
		t.Fatal("second refresh not committed")
	}
	close(src.gate)
	if <-done {
		t.Fatal("superseded refresh committed")
	}
	posts := f.Snapshot().Posts
	if len(posts) != 1 || posts[0].ID != "fresh" {
		t.Fatalf("posts = %v", ids(posts))
	}
}

func TestFeedKeepsSnapshotWhenRefreshCancelled(t *testing.T) {
	store := storage.NewMemoryStore()
	ctx := context.Background()
	for _, title := range []string{"Go Dev", "Rust Dev", "Zig Dev"} {
		if _, err := store.Create(ctx, "jobs", map[string]string{"title": title}); err != nil {
			t.Fatal(err)
		}
	}
	f := newTestFeed(store)
	if !f.Refresh(ctx) {
		t.Fatal("refresh not committed")
	}
	before := f.Snapshot()
	if len(before.Posts) != 3 {
		t.Fatalf("posts = %d, want 3", len(before.Posts))
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if f.Refresh(cancelled) {
		t.Fatal("cancelled refresh committed")
	}
	after := f.Snapshot()
	if after.Generation != before.Generation || len(after.Posts) != 3 {
		t.Fatalf("snapshot replaced: generation %d -> %d, posts %d", before.Generation, after.Generation, len(after.Posts))
	}
}
