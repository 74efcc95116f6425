package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps documents in an embedded SQLite database. Posting time is
// stored as unix milliseconds; NULL marks an undated document.
type SQLiteStore struct {
	db     *sql.DB
	prefix string
	now    func() time.Time
}

// NewSQLiteStore opens (creating if needed) the database at path.
func NewSQLiteStore(path, prefix string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// one writer avoids SQLITE_BUSY under concurrent fan-out reads mixed with writes
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db, prefix: prefix, now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS documents (
		collection TEXT NOT NULL,
		id TEXT NOT NULL,
		fields TEXT NOT NULL DEFAULT '{}',
		posted_at INTEGER,
		PRIMARY KEY (collection, id)
	);

	CREATE INDEX IF NOT EXISTS idx_documents_posted_at ON documents(collection, posted_at);
	`)
	return err
}

func (s *SQLiteStore) col(collection string) string { return s.prefix + collection }

func (s *SQLiteStore) List(ctx context.Context, collection string) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, fields, posted_at FROM documents
		WHERE collection = ?
		ORDER BY posted_at IS NULL, posted_at DESC, id
	`, s.col(collection))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Document, 0)
	for rows.Next() {
		d, err := scanSQLiteDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Get(ctx context.Context, collection, id string) (Document, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, fields, posted_at FROM documents WHERE collection = ? AND id = ?`,
		s.col(collection), id)
	d, err := scanSQLiteDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, ErrNotFound
	}
	return d, err
}

func (s *SQLiteStore) Create(ctx context.Context, collection string, fields map[string]string) (Document, error) {
	d := Document{ID: newID(), Fields: copyFields(fields), PostedAt: s.now().UTC()}
	if err := s.Put(ctx, collection, d); err != nil {
		return Document{}, err
	}
	return d, nil
}

func (s *SQLiteStore) Put(ctx context.Context, collection string, doc Document) error {
	if doc.ID == "" {
		return errors.New("put: empty document id")
	}
	raw, err := json.Marshal(fieldsOrEmpty(doc.Fields))
	if err != nil {
		return err
	}
	var posted sql.NullInt64
	if !doc.PostedAt.IsZero() {
		posted = sql.NullInt64{Int64: doc.PostedAt.UnixMilli(), Valid: true}
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (collection, id, fields, posted_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(collection, id) DO UPDATE SET
			fields = excluded.fields,
			posted_at = excluded.posted_at
	`, s.col(collection), doc.ID, string(raw), posted)
	return err
}

func (s *SQLiteStore) Update(ctx context.Context, collection, id string, fields map[string]string) error {
	raw, err := json.Marshal(fieldsOrEmpty(fields))
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE documents SET fields = json_patch(fields, ?) WHERE collection = ? AND id = ?`,
		string(raw), s.col(collection), id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (s *SQLiteStore) Delete(ctx context.Context, collection, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = ? AND id = ?`, s.col(collection), id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (s *SQLiteStore) Count(ctx context.Context, collection string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM documents WHERE collection = ?`, s.col(collection)).Scan(&n)
	return n, err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteDocument(row rowScanner) (Document, error) {
	var (
		d      Document
		raw    string
		posted sql.NullInt64
	)
	if err := row.Scan(&d.ID, &raw, &posted); err != nil {
		return Document{}, err
	}
	if err := json.Unmarshal([]byte(raw), &d.Fields); err != nil {
		return Document{}, fmt.Errorf("decode %s: %w", d.ID, err)
	}
	if posted.Valid {
		d.PostedAt = fromMillis(posted.Int64)
	}
	return d, nil
}
