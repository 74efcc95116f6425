package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"opportunity-board/internal/admin"
	"opportunity-board/internal/auth"
	"opportunity-board/internal/events"
	"opportunity-board/internal/listing"
	"opportunity-board/internal/web"
	"opportunity-board/worker"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web server and background workers",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		a, err := openApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		feed := listing.NewFeed(a.aggregator(), a.renderer())
		summarizer, err := a.summarizer()
		if err != nil {
			return err
		}

		var publisher events.Publisher = events.Nop{}
		var bus *events.RedisBus
		if cfg.Events.Enabled {
			bus = events.NewRedisBus(a.rdb, cfg.Events.Channel)
			publisher = bus
		}

		authProvider := auth.NewProvider(a.store, cfg.Auth)
		srv := &web.Server{
			Feed:  feed,
			Store: a.store,
			Admin: &admin.Service{
				Store:      a.store,
				Feed:       feed,
				Events:     publisher,
				Summarizer: summarizer,
				Language:   cfg.OpenAI.Language,
			},
			Auth:         authProvider,
			SiteName:     cfg.App.SiteName,
			CookieSecure: cfg.HTTP.CookieSecure,
		}

		ws := []worker.Worker{
			&worker.HTTPServer{
				Addr:         cfg.HTTP.Addr,
				Handler:      srv.Handler(),
				ReadTimeout:  cfg.HTTP.ReadTimeout,
				WriteTimeout: cfg.HTTP.WriteTimeout,
			},
			&worker.Scheduled{
				Name:       "feed-refresh",
				Spec:       cfg.Feed.RefreshSchedule,
				Job:        worker.FeedRefresh(feed),
				RunAtStart: true,
			},
			&worker.Scheduled{
				Name: "session-cleanup",
				Spec: cfg.Auth.SessionCleanup,
				Job:  worker.SessionCleanup(authProvider),
			},
		}
		if bus != nil {
			slog.Info("listening for listing changes", "channel", cfg.Events.Channel)
			ws = append(ws, &worker.Invalidator{Events: bus, Feed: feed})
		}
		if cfg.Digest.Enabled {
			b := newDigestBuilder(a)
			ws = append(ws, &worker.Scheduled{Name: "digest", Spec: cfg.Digest.Schedule, Job: b.Job()})
		}

		// Signal handling for systemd
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			select {
			case s := <-sigc:
				slog.Info("received signal, shutting down", "signal", s.String())
				cancel()
			case <-ctx.Done():
			}
		}()

		return worker.NewManager(ws...).Start(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
