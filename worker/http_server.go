package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// HTTPServer serves Handler on Addr until the context is cancelled, then
// shuts down gracefully.
type HTTPServer struct {
	Addr            string
	Handler         http.Handler
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// Listener, when set, is used instead of listening on Addr.
	Listener net.Listener
}

func (w *HTTPServer) Start(ctx context.Context) error {
	if w.ShutdownTimeout <= 0 {
		w.ShutdownTimeout = 10 * time.Second
	}
	srv := &http.Server{
		Addr:         w.Addr,
		Handler:      w.Handler,
		ReadTimeout:  w.ReadTimeout,
		WriteTimeout: w.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}
	ln := w.Listener
	if ln == nil {
		var err error
		if ln, err = net.Listen("tcp", w.Addr); err != nil {
			return fmt.Errorf("http: listen %s: %w", w.Addr, err)
		}
	}

	errc := make(chan error, 1)
	go func() {
		slog.Info("http: listening", "addr", ln.Addr().String())
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http: serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), w.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http: shutdown error", "error", err)
		return err
	}
	slog.Info("http: stopped")
	return nil
}
