package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS documents (
	collection TEXT        NOT NULL,
	id         TEXT        NOT NULL,
	fields     JSONB       NOT NULL DEFAULT '{}'::jsonb,
	posted_at  TIMESTAMPTZ,
	PRIMARY KEY (collection, id)
);
CREATE INDEX IF NOT EXISTS idx_documents_posted_at ON documents (collection, posted_at DESC);
`

// PostgresStore keeps documents in a single JSONB table keyed by collection and id.
type PostgresStore struct {
	pool   *pgxpool.Pool
	prefix string
	now    func() time.Time
}

// NewPostgresStore connects, verifies connectivity and creates the schema.
func NewPostgresStore(ctx context.Context, databaseURL, prefix string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres migrate: %w", err)
	}
	return &PostgresStore{pool: pool, prefix: prefix, now: time.Now}, nil
}

func (s *PostgresStore) col(collection string) string { return s.prefix + collection }

func (s *PostgresStore) List(ctx context.Context, collection string) ([]Document, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, fields, posted_at
		 FROM documents
		 WHERE collection = $1
		 ORDER BY posted_at DESC NULLS LAST, id`,
		s.col(collection),
	)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	defer rows.Close()

	out := make([]Document, 0)
	for rows.Next() {
		d, err := scanPgDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("list %s scan: %w", collection, err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Get(ctx context.Context, collection, id string) (Document, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, fields, posted_at FROM documents WHERE collection = $1 AND id = $2`,
		s.col(collection), id,
	)
	d, err := scanPgDocument(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Document{}, ErrNotFound
	}
	return d, err
}

func (s *PostgresStore) Create(ctx context.Context, collection string, fields map[string]string) (Document, error) {
	d := Document{ID: newID(), Fields: copyFields(fields), PostedAt: s.now().UTC()}
	if err := s.Put(ctx, collection, d); err != nil {
		return Document{}, err
	}
	return d, nil
}

func (s *PostgresStore) Put(ctx context.Context, collection string, doc Document) error {
	if doc.ID == "" {
		return errors.New("put: empty document id")
	}
	raw, err := json.Marshal(fieldsOrEmpty(doc.Fields))
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO documents (collection, id, fields, posted_at)
		 VALUES ($1, $2, $3::jsonb, $4)
		 ON CONFLICT (collection, id) DO UPDATE SET
		   fields    = excluded.fields,
		   posted_at = excluded.posted_at`,
		s.col(collection), doc.ID, string(raw), nullableTime(doc.PostedAt),
	)
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", collection, doc.ID, err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, collection, id string, fields map[string]string) error {
	raw, err := json.Marshal(fieldsOrEmpty(fields))
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE documents SET fields = fields || $3::jsonb WHERE collection = $1 AND id = $2`,
		s.col(collection), id, string(raw),
	)
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, collection, id string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM documents WHERE collection = $1 AND id = $2`,
		s.col(collection), id,
	)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Count(ctx context.Context, collection string) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM documents WHERE collection = $1`, s.col(collection),
	).Scan(&n)
	return n, err
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func scanPgDocument(row pgx.Row) (Document, error) {
	var (
		d        Document
		raw      []byte
		postedAt *time.Time
	)
	if err := row.Scan(&d.ID, &raw, &postedAt); err != nil {
		return Document{}, err
	}
	if err := json.Unmarshal(raw, &d.Fields); err != nil {
		return Document{}, err
	}
	if postedAt != nil {
		d.PostedAt = postedAt.UTC()
	}
	return d, nil
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

func fieldsOrEmpty(f map[string]string) map[string]string {
	if f == nil {
		return map[string]string{}
	}
	return f
}
