// Package sqlite implements repository.Store on an embedded SQLite database.
//
// WHY modernc.org/sqlite?
// It is a pure Go translation of SQLite: no CGo, no C toolchain, and
// cross-compiling the server stays a plain `go build`.
//
// CONNECTION SETTINGS:
// PRAGMAs such as foreign_keys are per connection, and database/sql keeps a
// pool of them. Running `PRAGMA foreign_keys=ON` once after sql.Open would only
// configure whichever connection happened to serve that statement. The
// _pragma DSN parameters below are applied by the driver to every new
// connection instead.
//
// ":memory:" is special: every connection would get its own private, empty
// database. The pool is pinned to a single connection in that case.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/sakif/prompt-market/internal/apperror"
	"github.com/sakif/prompt-market/internal/repository"
)

var _ repository.Store = (*DB)(nil)

// DB wraps the connection pool and hands out the per-entity repositories.
type DB struct {
	conn *sql.DB
}

// New opens (creating if needed) the database at dbPath and runs migrations.
//
// dbPath examples:
//   - "data/marketplace.db" → file-based database
//   - ":memory:"            → in-memory database, gone on Close
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}
	if dbPath == ":memory:" {
		conn.SetMaxOpenConns(1)
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

// dsn appends the per-connection settings.
//
//   - journal_mode(WAL):   readers don't block the single writer
//   - foreign_keys(1):     enforce prompt → category/author references
//   - busy_timeout(5000):  wait up to 5s for the write lock instead of failing
//   - _time_format=sqlite: store times as "2006-01-02 15:04:05.999999999-07:00",
//     which sorts correctly as text for UTC values
func dsn(dbPath string) string {
	return dbPath + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite"
}

func (db *DB) Users() repository.UserRepository           { return userRepo{db.conn} }
func (db *DB) Categories() repository.CategoryRepository { return categoryRepo{db.conn} }
func (db *DB) Prompts() repository.PromptRepository       { return promptRepo{db.conn} }
func (db *DB) Reviews() repository.ReviewRepository       { return reviewRepo{db.conn} }
func (db *DB) Purchases() repository.PurchaseRepository   { return purchaseRepo{db.conn} }

func (db *DB) Favorites() repository.MembershipRepository {
	return membershipRepo{conn: db.conn, table: "favorites", name: "favorite"}
}

func (db *DB) Cart() repository.MembershipRepository {
	return membershipRepo{conn: db.conn, table: "cart_items", name: "cart item"}
}

func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Close closes the connection pool. Wherever New is called, defer Close.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. Every statement is idempotent, so it runs on
// each start.
//
// Column notes:
//   - price, rating, purchases.price are TEXT holding decimal strings; exact
//     arithmetic happens in Go with shopspring/decimal
//   - tags is a JSON array; search reads it through json_each
//   - favorites and cart_items carry UNIQUE(user_id, prompt_id), which is what
//     makes concurrent duplicate Adds fail
func (db *DB) migrate() error {
	steps := []struct {
		name string
		sql  string
	}{
		{"users", `
			CREATE TABLE IF NOT EXISTS users (
				id            INTEGER PRIMARY KEY AUTOINCREMENT,
				username      TEXT NOT NULL UNIQUE,
				email         TEXT NOT NULL UNIQUE,
				password_hash TEXT NOT NULL DEFAULT '',
				avatar        TEXT,
				created_at    DATETIME NOT NULL
			);`},
		{"categories", `
			CREATE TABLE IF NOT EXISTS categories (
				id          INTEGER PRIMARY KEY AUTOINCREMENT,
				name        TEXT NOT NULL,
				slug        TEXT NOT NULL UNIQUE,
				icon        TEXT NOT NULL DEFAULT '',
				description TEXT
			);`},
		{"prompts", `
			CREATE TABLE IF NOT EXISTS prompts (
				id            INTEGER PRIMARY KEY AUTOINCREMENT,
				title         TEXT NOT NULL,
				description   TEXT NOT NULL,
				content       TEXT NOT NULL,
				price         TEXT NOT NULL DEFAULT '0',
				category_id   INTEGER NOT NULL REFERENCES categories(id),
				author_id     INTEGER NOT NULL REFERENCES users(id),
				rating        TEXT NOT NULL DEFAULT '0',
				sales_count   INTEGER NOT NULL DEFAULT 0,
				featured      BOOLEAN NOT NULL DEFAULT 0,
				trending      BOOLEAN NOT NULL DEFAULT 0,
				is_new        BOOLEAN NOT NULL DEFAULT 0,
				tags          TEXT NOT NULL DEFAULT '[]',
				preview_image TEXT,
				created_at    DATETIME NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_prompts_created ON prompts(created_at DESC, id DESC);
			CREATE INDEX IF NOT EXISTS idx_prompts_category ON prompts(category_id);
			CREATE INDEX IF NOT EXISTS idx_prompts_author ON prompts(author_id);`},
		{"favorites", membershipDDL("favorites")},
		{"cart_items", membershipDDL("cart_items")},
		{"reviews", `
			CREATE TABLE IF NOT EXISTS reviews (
				id         INTEGER PRIMARY KEY AUTOINCREMENT,
				prompt_id  INTEGER NOT NULL REFERENCES prompts(id),
				user_id    INTEGER NOT NULL REFERENCES users(id),
				rating     INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
				comment    TEXT,
				created_at DATETIME NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_reviews_prompt ON reviews(prompt_id);`},
		{"purchases", `
			CREATE TABLE IF NOT EXISTS purchases (
				id         INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id    INTEGER NOT NULL REFERENCES users(id),
				prompt_id  INTEGER NOT NULL REFERENCES prompts(id),
				price      TEXT NOT NULL,
				created_at DATETIME NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_purchases_user ON purchases(user_id);`},
	}

	for _, step := range steps {
		if _, err := db.conn.Exec(step.sql); err != nil {
			return fmt.Errorf("creating %s table: %w", step.name, err)
		}
	}

	// github_id arrived after the first schema; add it to existing databases.
	if err := db.addColumnIfNotExists("users", "github_id", "INTEGER"); err != nil {
		return fmt.Errorf("adding github_id to users: %w", err)
	}
	if _, err := db.conn.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_github_id ON users(github_id)`,
	); err != nil {
		return fmt.Errorf("creating users github_id index: %w", err)
	}

	return nil
}

func membershipDDL(table string) string {
	return fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %[1]s (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id    INTEGER NOT NULL REFERENCES users(id),
			prompt_id  INTEGER NOT NULL REFERENCES prompts(id),
			created_at DATETIME NOT NULL,
			UNIQUE (user_id, prompt_id)
		);`, table)
}

// addColumnIfNotExists adds a column to a table only if it doesn't already exist.
// Makes ALTER TABLE migrations idempotent.
func (db *DB) addColumnIfNotExists(table, column, definition string) error {
	var count int
	err := db.conn.QueryRow(
		`SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`,
		table, column,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("checking column %s.%s: %w", table, column, err)
	}
	if count > 0 {
		return nil
	}
	_, err = db.conn.Exec(fmt.Sprintf(
		`ALTER TABLE %s ADD COLUMN %s %s`, table, column, definition,
	))
	return err
}

// =========================================================================
// CONSTRAINT ERRORS
// =========================================================================

type constraint int

const (
	constraintNone constraint = iota
	constraintUnique
	constraintForeignKey
)

// classify reports which constraint, if any, err violated. The extended result
// code is authoritative; the message check covers drivers built without
// extended codes.
func classify(err error) constraint {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return constraintNone
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return constraintUnique
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		return constraintForeignKey
	}
	if se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
		msg := se.Error()
		switch {
		case strings.Contains(msg, "UNIQUE"):
			return constraintUnique
		case strings.Contains(msg, "FOREIGN KEY"):
			return constraintForeignKey
		}
	}
	return constraintNone
}

// rowsChanged returns notFound() when the statement touched no rows.
func rowsChanged(res sql.Result, notFound func() error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return notFound()
	}
	return nil
}

func danglingReference(field string) error {
	return apperror.ValidationFailed(field, "Referenced record does not exist")
}
