// Package sqlite implements the repository interfaces using SQLite as the storage backend.
//
// WHY SQLITE?
// SQLite is an embedded database — it lives inside your Go binary as a single file.
// No separate database server to install, configure, or manage. Perfect for:
// - Single-server deployments (which is most apps, honestly)
// - Development and testing (use ":memory:" for an in-memory DB)
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo (calls C code from Go), which means you need a C compiler
// installed and cross-compilation becomes painful. modernc.org/sqlite is a pure Go
// translation of the SQLite C code — no C compiler needed, works everywhere Go works.
//
// DATABASE/SQL OVERVIEW:
// Go's standard library provides "database/sql" — a generic interface for SQL databases.
// It works with any database through "drivers" (SQLite, Postgres, MySQL, etc.).
// Key types:
//   - sql.DB      — a connection pool (NOT a single connection!)
//   - sql.Row     — a single result row
//   - sql.Rows    — multiple result rows (must be closed!)
//
// The pattern is always:
//  1. sql.Open(driverName, dataSourceName) → creates a pool
//  2. db.QueryContext / db.ExecContext     → runs queries
//  3. rows.Scan(&field1, &field2)          → reads results into Go variables
package sqlite

import (
	"database/sql"
	"fmt"

	// BLANK IMPORT:
	// The underscore import `_ "modernc.org/sqlite"` is a "side-effect only" import.
	// It doesn't give us any symbols to use directly. Instead, the sqlite package's
	// init() function registers itself with database/sql as a driver named "sqlite".
	// After this import, sql.Open("sqlite", ...) knows how to talk to SQLite.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and provides the repository methods.
// It implements repository.UserRepository, PostRepository, and
// CommentRepository (compile-time checks live next to each implementation).
type DB struct {
	conn *sql.DB
}

// New creates a new SQLite database connection and runs migrations.
//
// dbPath examples:
//   - "data/snippetshare.db" → file-based database (persistent)
//   - ":memory:"             → in-memory database (great for tests, lost on close)
//
// PRAGMAS GO IN THE DSN, NOT IN Exec():
// sql.DB is a connection POOL. A `conn.Exec("PRAGMA foreign_keys=ON")` runs on
// whichever single connection the pool hands out, and every other connection
// keeps the SQLite default (foreign keys OFF). The modernc driver applies
// `_pragma` DSN parameters to EVERY connection it opens, which is the only way
// to get consistent behavior through the pool:
//   - journal_mode(WAL): allows concurrent reads while a write is happening —
//     default SQLite locks the whole database during writes
//   - foreign_keys(1): referential integrity; comments reference posts and
//     users, posts reference users (OFF by default for backwards compat)
//
// sql.Open() does NOT actually open a connection — it just creates a pool
// manager. We call Ping() to force an immediate connection so a bad path or
// permissions issue surfaces here, not on the first query.
func New(dbPath string) (*DB, error) {
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
//
// ALWAYS DEFER CLOSE:
// Wherever you call New(), immediately defer Close(). This ensures the
// connection is cleaned up even if a panic occurs.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the three tables and their indexes.
//
// The index set mirrors the read paths:
//   - posts sorted newest-first, overall and per author/language/source
//   - comments sorted oldest-first within a post, and grouped by parent
//   - users looked up by github_id (sign-in) and username (profile URLs)
//
// CREATE TABLE IF NOT EXISTS is idempotent — safe to run on every start.
// For a larger schema you'd reach for golang-migrate and versioned files.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id         TEXT PRIMARY KEY,
			github_id  INTEGER NOT NULL UNIQUE,
			username   TEXT NOT NULL UNIQUE,
			name       TEXT NOT NULL DEFAULT '',
			email      TEXT NOT NULL UNIQUE,
			avatar_url TEXT NOT NULL DEFAULT '',
			bio        TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS posts (
			id          TEXT PRIMARY KEY,
			author_id   TEXT NOT NULL REFERENCES users(id),
			title       TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			code        TEXT NOT NULL,
			language    TEXT NOT NULL,
			source      TEXT NOT NULL DEFAULT 'other',
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts(created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_posts_author_created ON posts(author_id, created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_posts_language_created ON posts(language, created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_posts_source_created ON posts(source, created_at DESC);
	`)
	if err != nil {
		return fmt.Errorf("creating posts table: %w", err)
	}

	// parent_comment_id deliberately has no foreign key: comments are removed
	// in bulk by post, and a FK would force delete ordering among siblings.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS comments (
			id                TEXT PRIMARY KEY,
			post_id           TEXT NOT NULL REFERENCES posts(id),
			author_id         TEXT NOT NULL REFERENCES users(id),
			content           TEXT NOT NULL,
			line_reference    INTEGER,
			parent_comment_id TEXT,
			created_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_comments_post_created ON comments(post_id, created_at ASC);
		CREATE INDEX IF NOT EXISTS idx_comments_parent ON comments(parent_comment_id);
	`)
	if err != nil {
		return fmt.Errorf("creating comments table: %w", err)
	}

	return nil
}
