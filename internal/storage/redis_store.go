package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each document as JSON under its own key and indexes a
// collection with a sorted set scored by posting time in milliseconds.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
	now    func() time.Time
}

func NewRedisStore(rdb *redis.Client, prefix string) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: prefix, now: time.Now}
}

func (s *RedisStore) indexKey(collection string) string {
	return fmt.Sprintf("board:col:%s%s", s.prefix, collection)
}

func (s *RedisStore) docKey(collection, id string) string {
	return fmt.Sprintf("board:doc:%s%s:%s", s.prefix, collection, id)
}

// List returns every document of a collection, newest first.
func (s *RedisStore) List(ctx context.Context, collection string) ([]Document, error) {
	ids, err := s.rdb.ZRevRange(ctx, s.indexKey(collection), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []Document{}, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.docKey(collection, id)
	}
	vals, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	out := make([]Document, 0, len(vals))
	var dangling []any
	for i, v := range vals {
		raw, ok := v.(string)
		if !ok {
			dangling = append(dangling, ids[i])
			continue
		}
		var d Document
		if err := json.Unmarshal([]byte(raw), &d); err != nil {
			return nil, fmt.Errorf("decode %s: %w", ids[i], err)
		}
		out = append(out, d)
	}
	if len(dangling) > 0 {
		// index entries without a document; drop them so Count agrees
		if err := s.rdb.ZRem(ctx, s.indexKey(collection), dangling...).Err(); err != nil {
			slog.Warn("redis store: prune index failed", "collection", collection, "error", err)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *RedisStore) Get(ctx context.Context, collection, id string) (Document, error) {
	b, err := s.rdb.Get(ctx, s.docKey(collection, id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Document{}, ErrNotFound
	}
	if err != nil {
		return Document{}, err
	}
	var d Document
	if err := json.Unmarshal(b, &d); err != nil {
		return Document{}, err
	}
	return d, nil
}

func (s *RedisStore) Create(ctx context.Context, collection string, fields map[string]string) (Document, error) {
	d := Document{ID: newID(), Fields: copyFields(fields), PostedAt: s.now().UTC()}
	if err := s.Put(ctx, collection, d); err != nil {
		return Document{}, err
	}
	return d, nil
}

func (s *RedisStore) Put(ctx context.Context, collection string, doc Document) error {
	if doc.ID == "" {
		return errors.New("put: empty document id")
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	_, err = s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, s.docKey(collection, doc.ID), b, 0)
		p.ZAdd(ctx, s.indexKey(collection), redis.Z{Score: float64(millis(doc.PostedAt)), Member: doc.ID})
		return nil
	})
	return err
}

// Update merges fields into the stored document under WATCH so concurrent
// updates of the same document do not lose writes.
func (s *RedisStore) Update(ctx context.Context, collection, id string, fields map[string]string) error {
	key := s.docKey(collection, id)
	return s.rdb.Watch(ctx, func(tx *redis.Tx) error {
		b, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		var d Document
		if err := json.Unmarshal(b, &d); err != nil {
			return err
		}
		if d.Fields == nil {
			d.Fields = map[string]string{}
		}
		for k, v := range fields {
			d.Fields[k] = v
		}
		nb, err := json.Marshal(d)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, key, nb, 0)
			return nil
		})
		return err
	}, key)
}

func (s *RedisStore) Delete(ctx context.Context, collection, id string) error {
	var del *redis.IntCmd
	_, err := s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		del = p.Del(ctx, s.docKey(collection, id))
		p.ZRem(ctx, s.indexKey(collection), id)
		return nil
	})
	if err != nil {
		return err
	}
	if del.Val() == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of indexed ids that still have a document, the
// same set List returns.
func (s *RedisStore) Count(ctx context.Context, collection string) (int, error) {
	ids, err := s.rdb.ZRange(ctx, s.indexKey(collection), 0, -1).Result()
	if err != nil || len(ids) == 0 {
		return 0, err
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.docKey(collection, id)
	}
	n, err := s.rdb.Exists(ctx, keys...).Result()
	return int(n), err
}

// Close is a no-op; the Redis client is owned by the caller.
func (s *RedisStore) Close() error { return nil }
