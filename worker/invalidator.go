package worker

import (
	"context"
	"log/slog"

	"opportunity-board/internal/events"
)

// Refresher re-aggregates a feed.
type Refresher interface {
	Refresh(ctx context.Context) bool
}

// Listener delivers change events until the context is cancelled.
type Listener interface {
	Listen(ctx context.Context, handle func(context.Context, events.Change)) error
}

// Invalidator refreshes the feed whenever another instance reports a write.
type Invalidator struct {
	Events Listener
	Feed   Refresher
}

func (w *Invalidator) Start(ctx context.Context) error {
	return w.Events.Listen(ctx, func(ctx context.Context, c events.Change) {
		slog.Debug("invalidator: change received", "collection", c.Collection, "id", c.ID, "op", c.Op)
		w.Feed.Refresh(ctx)
	})
}
