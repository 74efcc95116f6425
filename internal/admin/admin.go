package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"opportunity-board/internal/ai"
	"opportunity-board/internal/events"
	"opportunity-board/internal/listing"
	"opportunity-board/internal/model"
	"opportunity-board/internal/storage"
)

// ValidationError is returned when submitted values do not fit the schema.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Refresher re-aggregates the public feed after a write.
type Refresher interface {
	Refresh(ctx context.Context) bool
}

// Service implements the admin console's write operations.
type Service struct {
	Store      storage.Store
	Feed       Refresher        // optional
	Events     events.Publisher // optional
	Summarizer ai.Summarizer    // optional; fills summary on create and update
	Language   string
}

// Schema returns the editable fields of a content collection.
func (s *Service) Schema(collection string) ([]model.Field, error) {
	fields, err := model.Schema(collection)
	if err != nil {
		return nil, &ValidationError{Msg: err.Error()}
	}
	return fields, nil
}

// Create validates values against the collection schema and stores a new
// document authored by author. The store assigns the id and timestamp.
func (s *Service) Create(ctx context.Context, collection string, values map[string]string, author *model.User) (storage.Document, error) {
	schema, err := s.Schema(collection)
	if err != nil {
		return storage.Document{}, err
	}
	fields, err := model.Project(schema, values)
	if err != nil {
		return storage.Document{}, &ValidationError{Msg: err.Error()}
	}
	if author != nil {
		fields["createdBy"] = author.ID
	}
	if cat, err := model.ParseCategory(collection); err == nil {
		if sum := s.summarize(ctx, model.PostFromFields(cat, "", fields, time.Time{})); sum != "" {
			fields["summary"] = sum
		}
	}
	doc, err := s.Store.Create(ctx, collection, fields)
	if err != nil {
		return storage.Document{}, fmt.Errorf("create %s: %w", collection, err)
	}
	slog.Info("admin: created", "collection", collection, "id", doc.ID)
	s.changed(ctx, collection, doc.ID, events.OpCreate)
	return doc, nil
}

func (s *Service) summarize(ctx context.Context, p model.Post) string {
	if s.Summarizer == nil {
		return ""
	}
	out, err := s.Summarizer.SummarizePost(ctx, p, s.Language)
	if err != nil {
		slog.Warn("admin: summary skipped", "category", p.Category, "error", err)
		return ""
	}
	return out
}

// Get loads one document for editing.
func (s *Service) Get(ctx context.Context, collection, id string) (storage.Document, error) {
	if _, err := s.Schema(collection); err != nil {
		return storage.Document{}, err
	}
	return s.Store.Get(ctx, collection, id)
}

// Update writes only the schema's fields of values to the document.
// storage.ErrNotFound is returned unchanged when the id does not exist.
func (s *Service) Update(ctx context.Context, collection, id string, values map[string]string) error {
	schema, err := s.Schema(collection)
	if err != nil {
		return err
	}
	fields, err := model.Project(schema, values)
	if err != nil {
		return &ValidationError{Msg: err.Error()}
	}
	if cat, err := model.ParseCategory(collection); err == nil {
		// the old blurb describes the old text
		fields["summary"] = s.summarize(ctx, model.PostFromFields(cat, id, fields, time.Time{}))
	}
	if err := s.Store.Update(ctx, collection, id, fields); err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	slog.Info("admin: updated", "collection", collection, "id", id)
	s.changed(ctx, collection, id, events.OpUpdate)
	return nil
}

// Delete removes a document permanently.
func (s *Service) Delete(ctx context.Context, collection, id string) error {
	if _, err := s.Schema(collection); err != nil {
		return err
	}
	if err := s.Store.Delete(ctx, collection, id); err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	slog.Info("admin: deleted", "collection", collection, "id", id)
	s.changed(ctx, collection, id, events.OpDelete)
	return nil
}

func (s *Service) changed(ctx context.Context, collection, id string, op events.Op) {
	if s.Events != nil {
		if err := s.Events.Publish(ctx, events.Change{Collection: collection, ID: id, Op: op}); err != nil {
			slog.Warn("admin: publish change failed", "collection", collection, "id", id, "error", err)
		}
	}
	if s.Feed != nil {
		// the write already happened; a client hanging up must not abandon the refresh
		s.Feed.Refresh(context.WithoutCancel(ctx))
	}
}

// CollectionCount is one dashboard tile.
type CollectionCount struct {
	Collection string `json:"collection"`
	Label      string `json:"label"`
	Icon       string `json:"icon"`
	Count      int    `json:"count"`
}

// Dashboard holds per-collection document counts.
type Dashboard struct {
	Counts []CollectionCount `json:"counts"`
	Total  int               `json:"total"`
}

// Dashboard counts every content collection. A collection whose count fails
// is left out.
func (s *Service) Dashboard(ctx context.Context) Dashboard {
	var d Dashboard
	for _, col := range model.ContentCollections() {
		n, err := s.Store.Count(ctx, col)
		if err != nil {
			slog.Warn("admin: count failed", "collection", col, "error", err)
			continue
		}
		label, icon := collectionLabel(col)
		d.Counts = append(d.Counts, CollectionCount{Collection: col, Label: label, Icon: icon, Count: n})
		d.Total += n
	}
	return d
}

func collectionLabel(col string) (label, icon string) {
	if col == model.CollectionAds {
		return "Ads", "📢"
	}
	b := model.Category(col).Badge()
	return b.Label + "s", b.Icon
}

// Row is one line of the management table.
type Row struct {
	ID         string      `json:"id"`
	Collection string      `json:"collection"`
	Title      string      `json:"title"`
	Badge      model.Badge `json:"badge"`
	Org        string      `json:"org"`
	Place      string      `json:"place"`
	Posted     string      `json:"posted"`
}

// ManageList lists documents for the management table. An empty collection
// or "all" lists every post category, unfiltered, newest first; "ads" lists
// the ads.
func (s *Service) ManageList(ctx context.Context, collection string) ([]Row, error) {
	if collection == model.CollectionAds {
		docs, err := s.Store.List(ctx, model.CollectionAds)
		if err != nil {
			return nil, fmt.Errorf("list ads: %w", err)
		}
		rows := make([]Row, 0, len(docs))
		for _, d := range docs {
			rows = append(rows, Row{
				ID:         d.ID,
				Collection: model.CollectionAds,
				Title:      orDefault(d.Fields["title"], "Untitled"),
				Badge:      model.Badge{Icon: "📢", Label: "Ad " + d.Fields["placement"]},
				Org:        "—",
				Place:      "—",
				Posted:     listing.FormatDate(d.PostedAt),
			})
		}
		return rows, nil
	}

	agg := &listing.Aggregator{Store: s.Store}
	if collection != "" && collection != model.AllCategories {
		c, err := model.ParseCategory(collection)
		if err != nil {
			return nil, &ValidationError{Msg: err.Error()}
		}
		agg.Categories = []model.Category{c}
	}
	posts := agg.Aggregate(ctx)
	rows := make([]Row, 0, len(posts))
	for _, p := range posts {
		rows = append(rows, Row{
			ID:         p.ID,
			Collection: p.Category.Collection(),
			Title:      orDefault(p.Title, "Untitled"),
			Badge:      p.Category.Badge(),
			Org:        orDefault(firstNonEmpty(p.Company, p.Organizer), "—"),
			Place:      orDefault(firstNonEmpty(p.Location, p.Venue), "—"),
			Posted:     listing.FormatDate(p.PostedAt),
		})
	}
	return rows, nil
}

// IsNotFound reports whether err means the target document does not exist.
func IsNotFound(err error) bool { return errors.Is(err, storage.ErrNotFound) }

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
