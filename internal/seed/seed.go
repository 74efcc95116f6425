// Package seed loads listings into the store from YAML fixture files and
// Markdown documents.
package seed

import (
	"context"
	"fmt"
	"io"
	"time"

	"opportunity-board/internal/markdown"
	"opportunity-board/internal/model"
	"opportunity-board/internal/storage"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Entry is one document to write. Category is ignored for ads.
type Entry struct {
	ID       string            `yaml:"id"`
	Category string            `yaml:"category"`
	PostedAt *time.Time        `yaml:"posted_at"`
	Fields   map[string]string `yaml:"fields"`
}

// File is the layout of a seed YAML file.
type File struct {
	Posts []Entry `yaml:"posts"`
	Ads   []Entry `yaml:"ads"`
}

func Parse(r io.Reader) (File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return File{}, fmt.Errorf("seed: %w", err)
	}
	return f, nil
}

// FromMarkdown converts a Markdown listing into an entry of category cat.
// Frontmatter keys become fields; `id` and `posted_at` are lifted out.
func FromMarkdown(doc markdown.Document, cat model.Category) Entry {
	fields := doc.Fields()
	e := Entry{ID: fields["id"], Category: string(cat), Fields: fields}
	delete(fields, "id")
	delete(fields, "posted_at")
	if at, ok := doc.PostedAt(); ok {
		e.PostedAt = &at
	}
	return e
}

// Writer validates entries against the collection schema and stores them
// with their own id and timestamp.
type Writer struct {
	Store storage.Store

	now func() time.Time
}

// Write stores e in collection. Missing ids are generated and missing
// timestamps default to now.
func (w *Writer) Write(ctx context.Context, collection string, e Entry) (storage.Document, error) {
	schema, err := model.Schema(collection)
	if err != nil {
		return storage.Document{}, err
	}
	fields, err := model.Project(schema, e.Fields)
	if err != nil {
		return storage.Document{}, fmt.Errorf("%s %q: %w", collection, e.ID, err)
	}
	if by := e.Fields["createdBy"]; by != "" {
		fields["createdBy"] = by
	}
	doc := storage.Document{ID: e.ID, Fields: fields}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if e.PostedAt != nil {
		doc.PostedAt = *e.PostedAt
	} else if w.now != nil {
		doc.PostedAt = w.now()
	} else {
		doc.PostedAt = time.Now()
	}
	if err := w.Store.Put(ctx, collection, doc); err != nil {
		return storage.Document{}, fmt.Errorf("put %s/%s: %w", collection, doc.ID, err)
	}
	return doc, nil
}

// Apply writes every entry of f and returns the number written per
// collection. It stops at the first invalid entry.
func (w *Writer) Apply(ctx context.Context, f File) (map[string]int, error) {
	written := map[string]int{}
	for _, e := range f.Posts {
		cat, err := model.ParseCategory(e.Category)
		if err != nil {
			return written, fmt.Errorf("post %q: %w", e.ID, err)
		}
		if _, err := w.Write(ctx, cat.Collection(), e); err != nil {
			return written, err
		}
		written[cat.Collection()]++
	}
	for _, e := range f.Ads {
		if _, err := w.Write(ctx, model.CollectionAds, e); err != nil {
			return written, err
		}
		written[model.CollectionAds]++
	}
	return written, nil
}
