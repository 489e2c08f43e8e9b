package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"resume-builder/internal/draft"
)

const sqliteSchemaSQL = `
CREATE TABLE IF NOT EXISTS resume_drafts (
	namespace  TEXT NOT NULL,
	slot       TEXT NOT NULL,
	value      TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (namespace, slot)
);
`

// SQLiteDrafts stores slots in a single SQLite table.
type SQLiteDrafts struct {
	conn *sql.DB
}

// OpenSQLiteDrafts opens (or creates) the database and applies the schema.
func OpenSQLiteDrafts(path string) (*SQLiteDrafts, error) {
	conn, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("drafts: open sqlite: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("drafts: ping sqlite: %w", err)
	}
	if _, err := conn.Exec(sqliteSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("drafts: apply sqlite schema: %w", err)
	}
	return &SQLiteDrafts{conn: conn}, nil
}

func (s *SQLiteDrafts) Close() error {
	return s.conn.Close()
}

func (s *SQLiteDrafts) Backend(namespace string) draft.Backend {
	return &sqliteBackend{conn: s.conn, ns: namespace}
}

type sqliteBackend struct {
	conn *sql.DB
	ns   string
}

func (b *sqliteBackend) Get(key draft.Key) ([]byte, error) {
	var v string
	err := b.conn.QueryRow(`SELECT value FROM resume_drafts WHERE namespace = ? AND slot = ?`, b.ns, string(key)).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, draft.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(v), nil
}

func (b *sqliteBackend) Put(key draft.Key, value []byte) error {
	_, err := b.conn.Exec(`INSERT INTO resume_drafts (namespace, slot, value, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(namespace, slot) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		b.ns, string(key), string(value))
	return err
}

func (b *sqliteBackend) Delete(keys ...draft.Key) error {
	if len(keys) == 0 {
		return nil
	}
	args := make([]interface{}, 0, len(keys)+1)
	args = append(args, b.ns)
	marks := make([]string, 0, len(keys))
	for _, k := range keys {
		args = append(args, string(k))
		marks = append(marks, "?")
	}
	_, err := b.conn.Exec(`DELETE FROM resume_drafts WHERE namespace = ? AND slot IN (`+strings.Join(marks, ",")+`)`, args...)
	return err
}
