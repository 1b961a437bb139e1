// Package sqlite provides a store.Store backed by a single SQLite file using
// the pure Go modernc.org/sqlite driver.
//
// Members are stored one row per member as JSON payloads; the view
// configuration is a plain key/value table:
//
//	members(id TEXT PRIMARY KEY, payload BLOB NOT NULL)
//	config(key TEXT PRIMARY KEY, value TEXT NOT NULL)
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/matzehuels/kintree/pkg/family"
	"github.com/matzehuels/kintree/pkg/store"
	"github.com/matzehuels/kintree/pkg/viewconfig"
)

// DefaultPath is used when Open receives an empty path.
const DefaultPath = "kintree.db"

// Store is a SQLite-backed store.Store.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (and creates when missing) the database at path. The special
// path ":memory:" gives a private in-memory database.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if path == ":memory:" {
		// every pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}
	for _, stmt := range []string{
		`CREATE TABLE IF NOT EXISTS members (
			id TEXT PRIMARY KEY,
			payload BLOB NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS config (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("create tables: %w", err)
		}
	}
	return &Store{db: db, path: path}, nil
}

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) ListMembers(ctx context.Context) ([]family.Member, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT payload FROM members`)
	if err != nil {
		return nil, fmt.Errorf("select members: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []family.Member
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		var m family.Member
		if err := json.Unmarshal(payload, &m); err != nil {
			return nil, fmt.Errorf("decode member: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate members: %w", err)
	}
	store.SortMembers(out)
	return out, nil
}

func (s *Store) GetMember(ctx context.Context, id family.ID) (family.Member, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM members WHERE id = ?`, string(id)).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return family.Member{}, store.NotFound(id)
	}
	if err != nil {
		return family.Member{}, fmt.Errorf("select member %s: %w", id, err)
	}
	var m family.Member
	if err := json.Unmarshal(payload, &m); err != nil {
		return family.Member{}, fmt.Errorf("decode member %s: %w", id, err)
	}
	return m, nil
}

func (s *Store) PutMember(ctx context.Context, m family.Member) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode member %s: %w", m.ID, err)
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO members(id, payload) VALUES(?, ?) ON CONFLICT(id) DO UPDATE SET payload=excluded.payload`,
		string(m.ID), data); err != nil {
		return fmt.Errorf("upsert member %s: %w", m.ID, err)
	}
	return nil
}

func (s *Store) DeleteMember(ctx context.Context, id family.ID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM members WHERE id = ?`, string(id))
	if err != nil {
		return fmt.Errorf("delete member %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.NotFound(id)
	}
	return nil
}

func (s *Store) Config(ctx context.Context) (viewconfig.Values, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM config`)
	if err != nil {
		return nil, fmt.Errorf("select config: %w", err)
	}
	defer func() { _ = rows.Close() }()

	values := viewconfig.Values{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		values[k] = v
	}
	return values, rows.Err()
}

func (s *Store) PatchConfig(ctx context.Context, p viewconfig.Patch) (retErr error) {
	p = p.Sanitize()
	if len(p) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	for k, v := range p {
		if v == "" {
			_, err = tx.ExecContext(ctx, `DELETE FROM config WHERE key = ?`, k)
		} else {
			_, err = tx.ExecContext(ctx,
				`INSERT INTO config(key, value) VALUES(?, ?) ON CONFLICT(key) DO UPDATE SET value=excluded.value`, k, v)
		}
		if err != nil {
			return fmt.Errorf("patch config %s: %w", k, err)
		}
	}
	return tx.Commit()
}

func (s *Store) Close() error { return s.db.Close() }

var _ store.Store = (*Store)(nil)
