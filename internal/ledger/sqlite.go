package ledger

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"nbabot/internal/logger"
)

// SQLiteLedger stores published items in a local SQLite file.
type SQLiteLedger struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLiteLedger, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create ledger directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping ledger: %w", err)
	}

	l := &SQLiteLedger{db: db}
	if err := l.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	logger.Info("sqlite ledger ready", "path", path)
	return l, nil
}

func (l *SQLiteLedger) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS posts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		feed TEXT NOT NULL,
		guid TEXT NOT NULL UNIQUE,
		title TEXT,
		url TEXT,
		published_at TEXT,
		posted_at TEXT
	);`
	if _, err := l.db.Exec(schema); err != nil {
		return fmt.Errorf("create ledger schema: %w", err)
	}
	return nil
}

func (l *SQLiteLedger) Has(guid string) bool {
	var one int
	err := l.db.QueryRow(`SELECT 1 FROM posts WHERE guid = ?`, guid).Scan(&one)
	if err == sql.ErrNoRows {
		return false
	}
	if err != nil {
		logger.Warn("ledger lookup failed", "err", err)
		return false
	}
	return true
}

func (l *SQLiteLedger) Record(feed, guid, title, link, publishedAt string) error {
	_, err := l.db.Exec(`
		INSERT OR IGNORE INTO posts (feed, guid, title, url, published_at, posted_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		feed, guid, title, link, publishedAt, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("record post: %w", err)
	}
	return nil
}

func (l *SQLiteLedger) Recent(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := l.db.Query(`
		SELECT feed, guid, title, url, published_at, posted_at
		FROM posts ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntries(rows)
}

func (l *SQLiteLedger) Stats() (map[string]int, error) {
	var total int
	if err := l.db.QueryRow(`SELECT COUNT(*) FROM posts`).Scan(&total); err != nil {
		return nil, err
	}
	return map[string]int{"total_posts": total}, nil
}

func (l *SQLiteLedger) Close() error {
	return l.db.Close()
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var e Entry
		var posted string
		if err := rows.Scan(&e.Feed, &e.GUID, &e.Title, &e.Link, &e.PublishedAt, &posted); err != nil {
			logger.Warn("ledger scan failed", "err", err)
			continue
		}
		if t, err := time.Parse(time.RFC3339, posted); err == nil {
			e.PostedAt = t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
