package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jaaberaziz-code/gitolink-sub001/pkg/ports"
	_ "github.com/tursodatabase/libsql-client-go/libsql" // Turso driver
	_ "modernc.org/sqlite"                               // Local SQLite driver
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbURL string) (*SQLiteRepository, error) {
	driverName := "sqlite"
	if strings.Contains(dbURL, "libsql://") || strings.Contains(dbURL, "wss://") {
		driverName = "libsql"
	} else {
		dbURL = withLocalPragmas(dbURL)
	}

	db, err := sql.Open(driverName, dbURL)
	if err != nil {
		return nil, err
	}

	// An in-memory database lives inside its connections; one connection keeps
	// every caller on the same data and serializes transactions.
	if strings.Contains(dbURL, ":memory:") || strings.Contains(dbURL, "mode=memory") {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	if err := migrate(db); err != nil {
		return nil, err
	}

	return &SQLiteRepository{db: db}, nil
}

// Close releases the underlying database handle.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// Ping is used by the health check.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// withLocalPragmas stores timestamps in the sqlite text format so range
// comparisons in SQL order correctly, and waits on locks instead of failing.
func withLocalPragmas(dbURL string) string {
	var params []string
	if !strings.Contains(dbURL, "_time_format") {
		params = append(params, "_time_format=sqlite")
	}
	if !strings.Contains(dbURL, "busy_timeout") {
		params = append(params, "_pragma=busy_timeout(5000)")
	}
	if len(params) == 0 {
		return dbURL
	}
	sep := "?"
	if strings.Contains(dbURL, "?") {
		sep = "&"
	}
	return dbURL + sep + strings.Join(params, "&")
}

func migrate(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		username TEXT NOT NULL UNIQUE,
		display_name TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_users_username ON users(username);

	CREATE TABLE IF NOT EXISTS links (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		title TEXT NOT NULL,
		url TEXT NOT NULL,
		icon TEXT,
		embed_type TEXT,
		sort_order INTEGER NOT NULL DEFAULT 0,
		active BOOLEAN NOT NULL DEFAULT 0,
		scheduled_at DATETIME,
		expires_at DATETIME,
		published_at DATETIME,
		expired_at DATETIME,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_links_user_order ON links(user_id, sort_order);
	CREATE INDEX IF NOT EXISTS idx_links_schedule ON links(active, scheduled_at);
	CREATE INDEX IF NOT EXISTS idx_links_expiry ON links(active, expires_at);

	CREATE TABLE IF NOT EXISTS clicks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		link_id INTEGER NOT NULL,
		user_id TEXT NOT NULL,
		ip TEXT,
		country TEXT,
		city TEXT,
		device TEXT,
		browser TEXT,
		os TEXT,
		referrer TEXT,
		created_at DATETIME NOT NULL,
		FOREIGN KEY(link_id) REFERENCES links(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_clicks_user_created ON clicks(user_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_clicks_link_id ON clicks(link_id);
	`
	_, err := db.Exec(query)
	return err
}

// Ensure interface compliance
var _ ports.Store = (*SQLiteRepository)(nil)
