package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:token")
	t.Setenv("TELEGRAM_CHANNEL_ID", "-100123")
	t.Setenv("RSS_FEEDS", "https://example.com/a.xml, https://example.com/b.xml")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"https://example.com/a.xml", "https://example.com/b.xml"}, cfg.Feeds)
	assert.Equal(t, "20m0s", cfg.CheckEvery.String())
	assert.Equal(t, 8, cfg.MaxPerPoll)
	assert.Equal(t, "es", cfg.TargetLang)
	assert.Len(t, cfg.CTACrons, 3)
	assert.Equal(t, "0 10 * * *", cfg.ScheduleDailyCron)
	assert.Contains(t, cfg.PostTemplate, "{title}")
	assert.Contains(t, cfg.CTAMessage, "NBA LEAGUE PASS")
	assert.NotNil(t, cfg.Location)
}

func TestLoadMissingTokenIsFatal(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("TELEGRAM_CHANNEL_ID", "-100123")
	t.Setenv("RSS_FEEDS", "https://example.com/a.xml")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TELEGRAM_BOT_TOKEN")
}

func TestLoadRejectsUnknownTemplatePlaceholder(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("POST_TEMPLATE", "{title} {oops}")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "POST_TEMPLATE")
}

func TestLoadRejectsBadTimezone(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("TIMEZONE", "Mars/Olympus_Mons")

	_, err := Load()
	assert.Error(t, err)
}

func TestFeedsFromYAMLFile(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:token")
	t.Setenv("TELEGRAM_CHANNEL_ID", "-100123")
	t.Setenv("RSS_FEEDS", "")

	path := filepath.Join(t.TempDir(), "feeds.yaml")
	require.NoError(t, os.WriteFile(path, []byte("feeds:\n  - https://example.com/rss.xml\n"), 0o644))
	t.Setenv("FEEDS_CONFIG_PATH", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/rss.xml"}, cfg.Feeds)
}
