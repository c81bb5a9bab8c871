package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"nbabot/internal/message"
)

const espnScoreboardURL = "https://site.api.espn.com/apis/site/v2/sports/basketball/nba/scoreboard"

const defaultCTAMessage = "🚨 ULTIMAS CUENTAS DE NBA LEAGUE PASS 🚨\\n\\n" +
	"🏀 Mirá todos los juegos desde tu cuenta propia de NBA League Pass.\\n\\n" +
	"💸 Pago único de $26.700 por toda la temporada\\n\\n" +
	"📩 Escribime por privado para que te cree tu cuenta en el momento @nbapass_latam."

const defaultPostTemplate = "📰 {title}\n\n{excerpt}\n\n🔗 {link}\n🕒 {published}\nFuente: {source}"

type Config struct {
	// Telegram settings
	TelegramToken  string
	TelegramChatID string

	// Feed polling
	Feeds           []string
	FeedsConfigPath string
	CheckEvery      time.Duration
	MaxPerPoll      int
	PublishPause    time.Duration

	// Posting
	PostTemplate    string
	TargetLang      string
	PlaceholderPath string

	// CTA / schedule posts
	CTACrons           []string
	CTAMessage         string
	CTAIncludeSchedule bool
	ScheduleDailyCron  string
	ScheduleHeader     string
	ScoreboardURL      string

	// Time zone used for schedule rendering and cron triggers
	Timezone string
	Location *time.Location

	// Storage: Postgres when DatabaseURL is set, SQLite file otherwise
	DatabaseURL string
	SQLitePath  string

	// App settings
	RequestTimeout time.Duration
	Debug          bool
}

// feedsFile is the YAML shape of configs/feeds.yaml:
// feeds:
//   - https://...
type feedsFile struct {
	Feeds []string `yaml:"feeds"`
}

func Load() (*Config, error) {
	// .env is optional; real deployments use environment variables.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("CHECK_EVERY_MINUTES", 20)
	v.SetDefault("MAX_PER_POLL", 8)
	v.SetDefault("PUBLISH_PAUSE_SECONDS", 2)
	v.SetDefault("TIMEZONE", "America/Argentina/Buenos_Aires")
	v.SetDefault("TARGET_LANG", "es")
	v.SetDefault("FEEDS_CONFIG_PATH", "configs/feeds.yaml")
	v.SetDefault("NEWS_PLACEHOLDER", "assets/news_placeholder.png")
	v.SetDefault("CTA_CRONS", "0 11 * * *; 0 16 * * *; 30 21 * * *")
	v.SetDefault("CTA_INCLUDE_SCHEDULE", true)
	v.SetDefault("SCHEDULE_DAILY_CRON", "0 10 * * *")
	v.SetDefault("SCHEDULE_HEADER", "🗓️ Partidos NBA de hoy")
	v.SetDefault("ESPN_SCOREBOARD_URL", espnScoreboardURL)
	v.SetDefault("SQLITE_PATH", "data/state.db")
	v.SetDefault("REQUEST_TIMEOUT_SECONDS", 15)

	cfg := &Config{
		TelegramToken:      strings.TrimSpace(v.GetString("TELEGRAM_BOT_TOKEN")),
		TelegramChatID:     strings.TrimSpace(v.GetString("TELEGRAM_CHANNEL_ID")),
		FeedsConfigPath:    v.GetString("FEEDS_CONFIG_PATH"),
		CheckEvery:         time.Duration(v.GetInt("CHECK_EVERY_MINUTES")) * time.Minute,
		MaxPerPoll:         v.GetInt("MAX_PER_POLL"),
		PublishPause:       time.Duration(v.GetInt("PUBLISH_PAUSE_SECONDS")) * time.Second,
		PostTemplate:       v.GetString("POST_TEMPLATE"),
		TargetLang:         v.GetString("TARGET_LANG"),
		PlaceholderPath:    v.GetString("NEWS_PLACEHOLDER"),
		CTAMessage:         strings.TrimSpace(v.GetString("CTA_MESSAGE")),
		CTAIncludeSchedule: v.GetBool("CTA_INCLUDE_SCHEDULE"),
		ScheduleDailyCron:  v.GetString("SCHEDULE_DAILY_CRON"),
		ScheduleHeader:     v.GetString("SCHEDULE_HEADER"),
		ScoreboardURL:      v.GetString("ESPN_SCOREBOARD_URL"),
		Timezone:           v.GetString("TIMEZONE"),
		DatabaseURL:        v.GetString("DATABASE_URL"),
		SQLitePath:         v.GetString("SQLITE_PATH"),
		RequestTimeout:     time.Duration(v.GetInt("REQUEST_TIMEOUT_SECONDS")) * time.Second,
		Debug:              v.GetString("DEBUG") == "true",
	}

	if cfg.PostTemplate == "" {
		cfg.PostTemplate = defaultPostTemplate
	}
	if cfg.CTAMessage == "" {
		cfg.CTAMessage = defaultCTAMessage
	}

	for _, c := range strings.Split(v.GetString("CTA_CRONS"), ";") {
		if c = strings.TrimSpace(c); c != "" {
			cfg.CTACrons = append(cfg.CTACrons, c)
		}
	}

	cfg.Feeds = splitList(v.GetString("RSS_FEEDS"))
	if len(cfg.Feeds) == 0 {
		if feeds, err := loadFeedsFile(cfg.FeedsConfigPath); err == nil {
			cfg.Feeds = feeds
		}
	}

	return cfg, cfg.Validate()
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// loadFeedsFile reads the RSS feeds list from a YAML file.
func loadFeedsFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var ff feedsFile
	if err := yaml.NewDecoder(f).Decode(&ff); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return ff.Feeds, nil
}

func (c *Config) Validate() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}
	if c.TelegramChatID == "" {
		return fmt.Errorf("TELEGRAM_CHANNEL_ID is required")
	}
	if len(c.Feeds) == 0 {
		return fmt.Errorf("no RSS feeds configured (set RSS_FEEDS or %s)", c.FeedsConfigPath)
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	c.Location = loc
	if err := message.ValidateTemplate(c.PostTemplate); err != nil {
		return fmt.Errorf("invalid POST_TEMPLATE: %w", err)
	}
	return nil
}
