package ledger

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"nbabot/internal/logger"
)

// PostgresLedger stores published items in PostgreSQL. Used when DATABASE_URL
// is set, e.g. when the bot runs on a host without persistent disk.
type PostgresLedger struct {
	db *sql.DB
}

func OpenPostgres(connectionString string) (*PostgresLedger, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping ledger: %w", err)
	}

	l := &PostgresLedger{db: db}
	if err := l.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	logger.Info("postgres ledger ready")
	return l, nil
}

func (l *PostgresLedger) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS posts (
		id SERIAL PRIMARY KEY,
		feed TEXT NOT NULL,
		guid TEXT NOT NULL UNIQUE,
		title TEXT,
		url TEXT,
		published_at TEXT,
		posted_at TIMESTAMP NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_posts_guid ON posts(guid);`
	if _, err := l.db.Exec(schema); err != nil {
		return fmt.Errorf("create ledger schema: %w", err)
	}
	return nil
}

func (l *PostgresLedger) Has(guid string) bool {
	var one int
	err := l.db.QueryRow(`SELECT 1 FROM posts WHERE guid = $1`, guid).Scan(&one)
	if err == sql.ErrNoRows {
		return false
	}
	if err != nil {
		logger.Warn("ledger lookup failed", "err", err)
		return false
	}
	return true
}

// Record appends the entry; ON CONFLICT DO NOTHING keeps the ledger
// append-only even under overlapping cycles.
func (l *PostgresLedger) Record(feed, guid, title, link, publishedAt string) error {
	_, err := l.db.Exec(`
		INSERT INTO posts (feed, guid, title, url, published_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (guid) DO NOTHING`,
		feed, guid, title, link, publishedAt)
	if err != nil {
		return fmt.Errorf("record post: %w", err)
	}
	return nil
}

func (l *PostgresLedger) Recent(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := l.db.Query(`
		SELECT feed, guid, title, url, published_at, posted_at
		FROM posts ORDER BY id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Feed, &e.GUID, &e.Title, &e.Link, &e.PublishedAt, &e.PostedAt); err != nil {
			logger.Warn("ledger scan failed", "err", err)
			continue
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (l *PostgresLedger) Stats() (map[string]int, error) {
	var total int
	if err := l.db.QueryRow(`SELECT COUNT(*) FROM posts`).Scan(&total); err != nil {
		return nil, err
	}
	return map[string]int{"total_posts": total}, nil
}

func (l *PostgresLedger) Close() error {
	return l.db.Close()
}
