package worker

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"opportunity-board/internal/digest"
	"opportunity-board/internal/model"
)

// PostSource yields every post across the categories.
type PostSource interface {
	Aggregate(ctx context.Context) []model.Post
}

// DigestBuilder renders the recent-listings digest to OutputDir. It is run
// by a Scheduled worker; a digest already written for the day is left alone
// unless Force is set.
type DigestBuilder struct {
	Posts     PostSource
	OutputDir string
	Options   digest.Options
	Force     bool

	now func() time.Time
}

// Path returns the output file for the digest of day t.
func (w *DigestBuilder) Path(t time.Time) string {
	return filepath.Join(w.OutputDir, "digest-"+t.UTC().Format("2006-01-02")+".md")
}

// Run builds and writes one digest. It returns the written path, or "" when
// the digest was skipped.
func (w *DigestBuilder) Run(ctx context.Context) (string, error) {
	now := time.Now()
	if w.now != nil {
		now = w.now()
	}
	path := w.Path(now)
	if !w.Force {
		if _, err := os.Stat(path); err == nil {
			slog.Debug("digest: already written", "path", path)
			return "", nil
		}
	}

	posts := w.Posts.Aggregate(ctx)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data := digest.Build(posts, w.Options, now)
	if data.Count == 0 {
		slog.Info("digest: nothing new", "window", w.Options.Window)
		return "", nil
	}
	out, err := digest.Render(data)
	if err != nil {
		return "", fmt.Errorf("render digest: %w", err)
	}
	if err := os.MkdirAll(w.OutputDir, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
		return "", err
	}
	slog.Info("digest: written", "path", path, "items", data.Count, "sections", len(data.Sections))
	return path, nil
}

// Job adapts the builder to a Scheduled job.
func (w *DigestBuilder) Job() Job {
	return func(ctx context.Context) error {
		_, err := w.Run(ctx)
		return err
	}
}
