package ledger

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestLedger(t *testing.T) *SQLiteLedger {
	t.Helper()
	l, err := OpenSQLite(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

func TestRecordAndHas(t *testing.T) {
	l := openTestLedger(t)

	assert.False(t, l.Has("guid-1"))
	require.NoError(t, l.Record("feed-a", "guid-1", "Title", "https://example.com/1", "Fri, 28 Aug 2026"))
	assert.True(t, l.Has("guid-1"))
}

func TestDuplicateRecordIsSilentNoOp(t *testing.T) {
	l := openTestLedger(t)

	require.NoError(t, l.Record("feed-a", "guid-1", "Title", "link", "when"))
	require.NoError(t, l.Record("feed-b", "guid-1", "Other title", "other link", "later"))

	stats, err := l.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats["total_posts"])

	// First write wins: the ledger is append-only.
	entries, err := l.Recent(10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "feed-a", entries[0].Feed)
	assert.Equal(t, "Title", entries[0].Title)
}

func TestRecentOrdering(t *testing.T) {
	l := openTestLedger(t)

	require.NoError(t, l.Record("f", "g1", "first", "", ""))
	require.NoError(t, l.Record("f", "g2", "second", "", ""))

	entries, err := l.Recent(1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "g2", entries[0].GUID)
	assert.False(t, entries[0].PostedAt.IsZero())
}
