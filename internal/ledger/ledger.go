// Package ledger is the durable record of published feed items. The unique
// constraint on guid is the authoritative duplicate guard; Has exists only as
// a cheap short-circuit so the pipeline can skip translation and image work
// for items it has already posted.
package ledger

import "time"

// Entry is one row of the append-only posts ledger.
type Entry struct {
	Feed        string    `json:"feed"`
	GUID        string    `json:"guid"`
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	PublishedAt string    `json:"published_at"`
	PostedAt    time.Time `json:"posted_at"`
}

type Ledger interface {
	// Has reports whether guid was already recorded. Storage errors are
	// logged and reported as "not seen": the insert constraint still holds.
	Has(guid string) bool

	// Record appends an entry. Recording an already-known guid is a no-op,
	// not an error.
	Record(feed, guid, title, link, publishedAt string) error

	// Recent returns the newest entries, for the monitoring endpoint.
	Recent(limit int) ([]Entry, error)

	Stats() (map[string]int, error)
	Close() error
}

// Open picks the backend: Postgres when a connection string is given,
// a local SQLite file otherwise.
func Open(databaseURL, sqlitePath string) (Ledger, error) {
	if databaseURL != "" {
		return OpenPostgres(databaseURL)
	}
	return OpenSQLite(sqlitePath)
}
