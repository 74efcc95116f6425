package listing

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"opportunity-board/internal/model"
	"opportunity-board/internal/storage"
)

// Source is the read side of the document store.
type Source interface {
	List(ctx context.Context, collection string) ([]storage.Document, error)
}

// Aggregator merges every category collection into one list, newest first.
type Aggregator struct {
	Store      Source
	Categories []model.Category // defaults to model.Categories()
	Timeout    time.Duration    // per collection; zero means no extra deadline
}

// Aggregate fetches all categories concurrently. A collection that fails to
// load contributes nothing and is logged; Aggregate itself never fails.
func (a *Aggregator) Aggregate(ctx context.Context) []model.Post {
	cats := a.Categories
	if len(cats) == 0 {
		cats = model.Categories()
	}
	results := make([][]model.Post, len(cats))
	var wg sync.WaitGroup
	for i, c := range cats {
		wg.Add(1)
		go func(i int, c model.Category) {
			defer wg.Done()
			results[i] = a.fetch(ctx, c)
		}(i, c)
	}
	wg.Wait()

	var out []model.Post
	for _, r := range results {
		out = append(out, r...)
	}
	SortNewestFirst(out)
	return out
}

func (a *Aggregator) fetch(ctx context.Context, c model.Category) []model.Post {
	if a.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.Timeout)
		defer cancel()
	}
	docs, err := a.Store.List(ctx, c.Collection())
	if err != nil {
		slog.Warn("aggregate: collection fetch failed", "collection", c.Collection(), "error", err)
		return nil
	}
	posts := make([]model.Post, 0, len(docs))
	for _, d := range docs {
		posts = append(posts, model.PostFromFields(c, d.ID, d.Fields, d.PostedAt))
	}
	return posts
}

// LoadAds reads the ad collection in store order. Failure yields no ads.
func (a *Aggregator) LoadAds(ctx context.Context) []model.Ad {
	if a.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.Timeout)
		defer cancel()
	}
	docs, err := a.Store.List(ctx, model.CollectionAds)
	if err != nil {
		slog.Warn("aggregate: ads fetch failed", "error", err)
		return nil
	}
	ads := make([]model.Ad, 0, len(docs))
	for _, d := range docs {
		ads = append(ads, model.AdFromFields(d.ID, d.Fields, d.PostedAt))
	}
	return ads
}

// SortNewestFirst orders posts by PostedAt descending in place. Undated posts
// sort as earliest; ties keep their input order.
func SortNewestFirst(posts []model.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		a, b := posts[i], posts[j]
		if a.Dated() != b.Dated() {
			return a.Dated()
		}
		return a.PostedAt.After(b.PostedAt)
	})
}
