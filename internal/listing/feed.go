package listing

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"opportunity-board/internal/model"
)

// Snapshot is one committed aggregation result.
type Snapshot struct {
	Generation uint64
	Posts      []model.Post
	Ads        []model.Ad
	LoadedAt   time.Time
}

// Feed owns the canonical post list and ad pool. Every refresh replaces the
// whole snapshot; a refresh that completes after a newer one has committed
// is discarded.
type Feed struct {
	agg      *Aggregator
	renderer Renderer
	now      func() time.Time

	next atomic.Uint64
	mu   sync.RWMutex
	snap Snapshot
}

func NewFeed(agg *Aggregator, r Renderer) *Feed {
	return &Feed{agg: agg, renderer: r, now: time.Now}
}

// Refresh re-aggregates posts and ads and reports whether the result was
// committed. A refresh whose context ends before aggregation finishes is
// dropped: its failed reads would otherwise commit as empty collections.
func (f *Feed) Refresh(ctx context.Context) bool {
	gen := f.begin()
	var (
		wg    sync.WaitGroup
		posts []model.Post
		ads   []model.Ad
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		posts = f.agg.Aggregate(ctx)
	}()
	go func() {
		defer wg.Done()
		ads = f.agg.LoadAds(ctx)
	}()
	wg.Wait()
	if err := ctx.Err(); err != nil {
		slog.Warn("feed: refresh abandoned", "generation", gen, "error", err)
		return false
	}
	ok := f.commit(gen, posts, ads)
	if ok {
		slog.Debug("feed: refreshed", "generation", gen, "posts", len(posts), "ads", len(ads))
	}
	return ok
}

func (f *Feed) begin() uint64 { return f.next.Add(1) }

func (f *Feed) commit(gen uint64, posts []model.Post, ads []model.Ad) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if gen <= f.snap.Generation {
		slog.Info("feed: discarding stale refresh", "generation", gen, "committed", f.snap.Generation)
		return false
	}
	f.snap = Snapshot{Generation: gen, Posts: posts, Ads: ads, LoadedAt: f.now()}
	return true
}

// Snapshot returns the committed state. Callers must not modify its slices.
func (f *Feed) Snapshot() Snapshot {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.snap
}

// Page filters and renders the committed snapshot.
func (f *Feed) Page(state model.FilterState) Page {
	snap := f.Snapshot()
	now := f.now()
	return f.renderer.Render(Apply(snap.Posts, state, now), snap.Ads, state, now)
}

// Card renders a single post with the feed's renderer.
func (f *Feed) Card(p model.Post) Card {
	return f.renderer.Card(p, f.now())
}
