// Package storage implements the collection-based document store that holds
// posts, ads and identity records.
package storage

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a document does not exist in its collection.
var ErrNotFound = errors.New("document not found")

// Document is a stored record. PostedAt is zero when the document carries no
// timestamp; such documents sort after every dated one.
type Document struct {
	ID       string            `json:"id"`
	Fields   map[string]string `json:"fields"`
	PostedAt time.Time         `json:"posted_at"`
}

// Store is a collection-based document database.
type Store interface {
	// List returns every document of a collection, newest first.
	List(ctx context.Context, collection string) ([]Document, error)
	Get(ctx context.Context, collection, id string) (Document, error)
	// Create stores fields under a new id with a store-assigned timestamp.
	Create(ctx context.Context, collection string, fields map[string]string) (Document, error)
	// Put writes a document with the caller's id and timestamp, replacing any existing one.
	Put(ctx context.Context, collection string, doc Document) error
	// Update merges fields into an existing document.
	Update(ctx context.Context, collection, id string, fields map[string]string) error
	Delete(ctx context.Context, collection, id string) error
	Count(ctx context.Context, collection string) (int, error)
	Close() error
}

func newID() string { return uuid.NewString() }

// sortNewestFirst orders documents by PostedAt descending, undated last.
// Ties keep their id order so results are deterministic.
func sortNewestFirst(docs []Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		a, b := docs[i].PostedAt, docs[j].PostedAt
		if a.Equal(b) {
			return docs[i].ID < docs[j].ID
		}
		return a.After(b)
	})
}

func millis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

func copyFields(f map[string]string) map[string]string {
	out := make(map[string]string, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}
