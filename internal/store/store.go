package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	_ "modernc.org/sqlite"
)

const sqliteFileName = "bycore.sqlite"

// Keys owned by the application. Everything under KeyPrefix is covered by backup/reset.
const (
	KeyPrefix       = "bycore-"
	KeyNotes        = "bycore-notes"
	KeyTasks        = "bycore-tasks"
	KeyEvents       = "bycore-events"
	KeyTheme        = "bycore-theme"
	KeyUsername     = "bycore-username"
	KeyActiveModule = "bycore-active-module"
)

// KV is a flat string key/value store. Values are opaque UTF-8 text.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	// Keys returns the keys starting with prefix, sorted.
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// Store is the SQLite-backed KV used by every surface. Each call opens its own connection, so a
// CLI process and a running web server can share one data directory.
type Store struct {
	Dir string
}

var _ KV = Store{}

func (s Store) Ensure() error {
	if strings.TrimSpace(s.Dir) == "" {
		return errors.New("store: dir is empty")
	}
	return os.MkdirAll(s.Dir, 0o755)
}

func (s Store) sqlitePath() string {
	return filepath.Join(s.Dir, sqliteFileName)
}

// Path is the database file; the web shell watches its directory for foreign writes.
func (s Store) Path() string {
	return s.sqlitePath()
}

func (s Store) openSQLite(ctx context.Context) (*sql.DB, error) {
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", s.sqlitePath())
	if err != nil {
		return nil, err
	}
	// WAL enables one writer + many readers; busy_timeout helps avoid "database is locked" flakiness.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrateSQLite(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func migrateSQLite(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS kv (
			k TEXT PRIMARY KEY,
			v TEXT NOT NULL
		);`,
		// kv_version.n moves on every row change, whoever makes it.
		`CREATE TABLE IF NOT EXISTS kv_version (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			n INTEGER NOT NULL
		);`,
		`INSERT OR IGNORE INTO kv_version(id, n) VALUES(1, 0);`,
		`CREATE TRIGGER IF NOT EXISTS kv_version_insert AFTER INSERT ON kv
			BEGIN UPDATE kv_version SET n = n + 1 WHERE id = 1; END;`,
		`CREATE TRIGGER IF NOT EXISTS kv_version_update AFTER UPDATE ON kv
			BEGIN UPDATE kv_version SET n = n + 1 WHERE id = 1; END;`,
		`CREATE TRIGGER IF NOT EXISTS kv_version_delete AFTER DELETE ON kv
			BEGIN UPDATE kv_version SET n = n + 1 WHERE id = 1; END;`,
	}
	for _, st := range stmts {
		if _, err := db.ExecContext(ctx, st); err != nil {
			return err
		}
	}
	return nil
}

// Version is a counter bumped by every write to the kv table. Opening a connection touches the
// WAL files without moving it, so it tells real writes apart from connection churn.
func (s Store) Version(ctx context.Context) (int64, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	var n int64
	if err := db.QueryRowContext(ctx, `SELECT n FROM kv_version WHERE id = 1`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (s Store) Get(ctx context.Context, key string) (string, bool, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return "", false, err
	}
	defer db.Close()

	var v string
	err = db.QueryRowContext(ctx, `SELECT v FROM kv WHERE k = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s Store) Set(ctx context.Context, key, value string) error {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()
	_, err = db.ExecContext(ctx, `INSERT OR REPLACE INTO kv(k, v) VALUES(?, ?)`, key, value)
	return err
}

func (s Store) Delete(ctx context.Context, key string) error {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()
	_, err = db.ExecContext(ctx, `DELETE FROM kv WHERE k = ?`, key)
	return err
}

func (s Store) Keys(ctx context.Context, prefix string) ([]string, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `SELECT k FROM kv WHERE substr(k, 1, ?) = ? ORDER BY k ASC`, utf8.RuneCountInString(prefix), prefix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

// SetMany writes every pair in one transaction.
func (s Store) SetMany(ctx context.Context, pairs map[string]string) error {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, k := range sortedKeys(pairs) {
		if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO kv(k, v) VALUES(?, ?)`, k, pairs[k]); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func sortedKeys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
