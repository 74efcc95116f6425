package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"opportunity-board/internal/ai"
	"opportunity-board/internal/config"
	"opportunity-board/internal/listing"
	"opportunity-board/internal/model"
	"opportunity-board/internal/redisclient"
	"opportunity-board/internal/storage"

	"github.com/redis/go-redis/v9"
)

// app bundles the long-lived dependencies shared by subcommands.
type app struct {
	cfg   config.Config
	rdb   *redis.Client // nil unless the store or events need redis
	store storage.Store
}

func openApp(ctx context.Context, cfg config.Config) (*app, error) {
	a := &app{cfg: cfg}
	if cfg.Store.Driver == "redis" || cfg.Events.Enabled {
		rdb, err := redisclient.New(cfg.Redis)
		if err != nil {
			return nil, err
		}
		a.rdb = rdb
	}
	store, err := storage.Open(ctx, cfg.Store, a.rdb)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.store = store
	slog.Debug("store opened", "driver", cfg.Store.Driver, "prefix", cfg.Store.CollectionPrefix)
	return a, nil
}

func (a *app) Close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			slog.Warn("closing store", "error", err)
		}
	}
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
}

func (a *app) aggregator() *listing.Aggregator {
	return &listing.Aggregator{
		Store:      a.store,
		Categories: model.Categories(),
		Timeout:    a.cfg.Feed.FetchTimeout,
	}
}

func (a *app) renderer() listing.Renderer {
	return listing.Renderer{
		SiteName:   a.cfg.App.SiteName,
		AdEvery:    a.cfg.Feed.AdEvery,
		TruncateAt: a.cfg.Feed.TruncateAt,
	}
}

// summarizer returns nil when no OpenAI key is configured.
func (a *app) summarizer() (ai.Summarizer, error) {
	if a.cfg.OpenAI.APIKey == "" {
		return nil, nil
	}
	c, err := ai.NewOpenAI(ai.Config{APIKey: a.cfg.OpenAI.APIKey, Model: a.cfg.OpenAI.Model, BaseURL: a.cfg.OpenAI.BaseURL})
	if err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}
	return c, nil
}
