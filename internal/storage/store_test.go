package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

var fixedNow = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

type storeFactory func(t *testing.T) Store

func newMemory(t *testing.T) Store {
	return NewMemoryStore().WithClock(func() time.Time { return fixedNow })
}

func newRedis(t *testing.T) Store {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	s := NewRedisStore(rdb, "test_")
	s.now = func() time.Time { return fixedNow }
	return s
}

func newSQLite(t *testing.T) Store {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "board.db"), "test_")
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	s.now = func() time.Time { return fixedNow }
	t.Cleanup(func() { s.Close() })
	return s
}

func newPostgres(t *testing.T) Store {
	url := os.Getenv("OB_TEST_POSTGRES_URL")
	if url == "" {
		t.Skip("OB_TEST_POSTGRES_URL not set")
	}
	s, err := NewPostgresStore(context.Background(), url, "test_"+time.Now().Format("150405.000000")+"_")
	if err != nil {
		t.Fatalf("NewPostgresStore: %v", err)
	}
	s.now = func() time.Time { return fixedNow }
	t.Cleanup(func() { s.Close() })
	return s
}

func backends() map[string]storeFactory {
	return map[string]storeFactory{
		"memory":   newMemory,
		"redis":    newRedis,
		"sqlite":   newSQLite,
		"postgres": newPostgres,
	}
}

func TestCreateAndGet(t *testing.T) {
	for name, factory := range backends() {
		t.Run(name, func(t *testing.T) {
			s := factory(t)
			ctx := context.Background()
			d, err := s.Create(ctx, "jobs", map[string]string{"title": "Go Developer"})
			if err != nil {
				t.Fatalf("Create: %v", err)
			}
			if d.ID == "" {
				t.Fatal("Create returned empty id")
			}
			if !d.PostedAt.Equal(fixedNow) {
				t.Errorf("PostedAt = %v, want %v", d.PostedAt, fixedNow)
			}
			got, err := s.Get(ctx, "jobs", d.ID)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if got.Fields["title"] != "Go Developer" {
				t.Errorf("title = %q", got.Fields["title"])
			}
			if !got.PostedAt.Equal(fixedNow) {
				t.Errorf("stored PostedAt = %v, want %v", got.PostedAt, fixedNow)
			}
		})
	}
}

func TestListNewestFirstUndatedLast(t *testing.T) {
	for name, factory := range backends() {
		t.Run(name, func(t *testing.T) {
			s := factory(t)
			ctx := context.Background()
			docs := []Document{
				{ID: "old", Fields: map[string]string{"title": "old"}, PostedAt: fixedNow.Add(-40 * 24 * time.Hour)},
				{ID: "undated", Fields: map[string]string{"title": "undated"}},
				{ID: "new", Fields: map[string]string{"title": "new"}, PostedAt: fixedNow.Add(-2 * 24 * time.Hour)},
				{ID: "mid", Fields: map[string]string{"title": "mid"}, PostedAt: fixedNow.Add(-10 * 24 * time.Hour)},
			}
			for _, d := range docs {
				if err := s.Put(ctx, "hackathons", d); err != nil {
					t.Fatalf("Put %s: %v", d.ID, err)
				}
			}
			got, err := s.List(ctx, "hackathons")
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			want := []string{"new", "mid", "old", "undated"}
			if len(got) != len(want) {
				t.Fatalf("List returned %d docs, want %d", len(got), len(want))
			}
			for i, id := range want {
				if got[i].ID != id {
					t.Errorf("position %d = %s, want %s", i, got[i].ID, id)
				}
			}
			if !got[3].PostedAt.IsZero() {
				t.Errorf("undated doc PostedAt = %v, want zero", got[3].PostedAt)
			}
		})
	}
}

func TestUpdateMergesFields(t *testing.T) {
	for name, factory := range backends() {
		t.Run(name, func(t *testing.T) {
			s := factory(t)
			ctx := context.Background()
			d, err := s.Create(ctx, "seminars", map[string]string{"title": "Intro", "venue": "Hall A"})
			if err != nil {
				t.Fatalf("Create: %v", err)
			}
			if err := s.Update(ctx, "seminars", d.ID, map[string]string{"venue": "Hall B", "speaker": "Ada"}); err != nil {
				t.Fatalf("Update: %v", err)
			}
			got, err := s.Get(ctx, "seminars", d.ID)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if got.Fields["title"] != "Intro" || got.Fields["venue"] != "Hall B" || got.Fields["speaker"] != "Ada" {
				t.Errorf("fields after update = %v", got.Fields)
			}
			if !got.PostedAt.Equal(d.PostedAt) {
				t.Errorf("update changed PostedAt: %v -> %v", d.PostedAt, got.PostedAt)
			}
		})
	}
}

func TestMissingDocuments(t *testing.T) {
	for name, factory := range backends() {
		t.Run(name, func(t *testing.T) {
			s := factory(t)
			ctx := context.Background()
			if _, err := s.Get(ctx, "jobs", "nope"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Get missing: err = %v, want ErrNotFound", err)
			}
			if err := s.Update(ctx, "jobs", "nope", map[string]string{"title": "x"}); !errors.Is(err, ErrNotFound) {
				t.Errorf("Update missing: err = %v, want ErrNotFound", err)
			}
			if err := s.Delete(ctx, "jobs", "nope"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Delete missing: err = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestDeleteAndCount(t *testing.T) {
	for name, factory := range backends() {
		t.Run(name, func(t *testing.T) {
			s := factory(t)
			ctx := context.Background()
			a, _ := s.Create(ctx, "ads", map[string]string{"title": "a"})
			if _, err := s.Create(ctx, "ads", map[string]string{"title": "b"}); err != nil {
				t.Fatalf("Create: %v", err)
			}
			if _, err := s.Create(ctx, "jobs", map[string]string{"title": "other collection"}); err != nil {
				t.Fatalf("Create: %v", err)
			}
			if n, _ := s.Count(ctx, "ads"); n != 2 {
				t.Fatalf("Count = %d, want 2", n)
			}
			if err := s.Delete(ctx, "ads", a.ID); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if n, _ := s.Count(ctx, "ads"); n != 1 {
				t.Errorf("Count after delete = %d, want 1", n)
			}
			docs, err := s.List(ctx, "ads")
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(docs) != 1 || docs[0].Fields["title"] != "b" {
				t.Errorf("List after delete = %+v", docs)
			}
		})
	}
}

func TestPutRejectsEmptyID(t *testing.T) {
	for name, factory := range backends() {
		t.Run(name, func(t *testing.T) {
			if err := factory(t).Put(context.Background(), "jobs", Document{}); err == nil {
				t.Fatal("expected error for empty id")
			}
		})
	}
}

func TestRedisStoreSkipsDanglingIndexEntries(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	s := NewRedisStore(rdb, "")
	ctx := context.Background()
	d, err := s.Create(ctx, "jobs", map[string]string{"title": "kept"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	rdb.ZAdd(ctx, s.indexKey("jobs"), redis.Z{Score: 1, Member: "ghost"})
	docs, err := s.List(ctx, "jobs")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(docs) != 1 || docs[0].ID != d.ID {
		t.Fatalf("List = %+v, want only %s", docs, d.ID)
	}
	if n, err := s.Count(ctx, "jobs"); err != nil || n != 1 {
		t.Errorf("Count = %d, %v; want 1", n, err)
	}
	if n := rdb.ZCard(ctx, s.indexKey("jobs")).Val(); n != 1 {
		t.Errorf("index size after List = %d, want dangling entry pruned", n)
	}
}

func TestRedisStoreCountIgnoresDanglingIndexEntries(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	s := NewRedisStore(rdb, "")
	ctx := context.Background()
	if _, err := s.Create(ctx, "jobs", map[string]string{"title": "kept"}); err != nil {
		t.Fatal(err)
	}
	rdb.ZAdd(ctx, s.indexKey("jobs"), redis.Z{Score: 1, Member: "ghost"})
	if n, err := s.Count(ctx, "jobs"); err != nil || n != 1 {
		t.Fatalf("Count = %d, %v; want 1", n, err)
	}
	if n, err := s.Count(ctx, "ads"); err != nil || n != 0 {
		t.Fatalf("empty Count = %d, %v", n, err)
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), configFor("cassandra"), nil); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
