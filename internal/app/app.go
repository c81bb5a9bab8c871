// Package app wires the ingestion pipeline and the CTA/schedule composers.
// The App value is the process-wide context: configuration, ledger handle and
// the outbound capabilities, passed explicitly to every job.
package app

import (
	"fmt"
	"os"
	"time"

	"github.com/mmcdole/gofeed"

	"nbabot/internal/config"
	"nbabot/internal/feed"
	"nbabot/internal/ledger"
	"nbabot/internal/logger"
	"nbabot/internal/message"
	"nbabot/internal/metrics"
	"nbabot/internal/render"
	"nbabot/internal/scoreboard"
)

const (
	titleTranslateLimit   = 200
	excerptTranslateLimit = 1000
	excerptMaxChars       = 350
)

// Publisher delivers a finished post. Exactly one of imageBytes/imageURL is
// used, preferring bytes; with neither, the post is text-only.
type Publisher interface {
	Publish(text string, imageBytes []byte, imageURL string) error
}

// Translator translates text best-effort, returning the original on failure.
type Translator interface {
	Translate(text string, limit int) string
}

type App struct {
	Cfg      *config.Config
	Ledger   ledger.Ledger
	Pub      Publisher
	Tr       Translator
	Resolver *feed.Resolver
	Scores   *scoreboard.Client
	Renderer *render.Renderer
	Metrics  *metrics.Metrics

	// sleep is replaceable in tests; production pacing only.
	sleep func(time.Duration)
}

func New(cfg *config.Config, led ledger.Ledger, pub Publisher, tr Translator) *App {
	return &App{
		Cfg:      cfg,
		Ledger:   led,
		Pub:      pub,
		Tr:       tr,
		Resolver: feed.NewResolver(cfg.RequestTimeout),
		Scores:   scoreboard.New(cfg.ScoreboardURL, cfg.Location, cfg.RequestTimeout),
		Renderer: render.New(cfg.Location, "assets/fonts", cfg.RequestTimeout),
		Metrics:  metrics.Global,
		sleep:    time.Sleep,
	}
}

// CheckFeeds runs one ingestion cycle. A failure in one feed is isolated:
// logged, and the loop moves on to the next source.
func (a *App) CheckFeeds() {
	healthy := true
	for _, feedURL := range a.Cfg.Feeds {
		if err := a.checkFeed(feedURL); err != nil {
			logger.Error("feed cycle failed", "feed", feedURL, "err", err)
			a.Metrics.SetError(err.Error())
			healthy = false
		}
	}
	a.Metrics.SetLastRun(healthy)
}

func (a *App) checkFeed(feedURL string) error {
	name, items, err := feed.Fetch(feedURL, a.Cfg.MaxPerPoll, a.Cfg.RequestTimeout)
	if err != nil {
		return err
	}

	for _, item := range items {
		guid := feed.GUID(item)
		if guid == "" {
			logger.Debug("dropping unidentifiable entry", "feed", feedURL, "title", item.Title)
			a.Metrics.IncrementUnidentified()
			continue
		}
		if a.Ledger.Has(guid) {
			a.Metrics.IncrementDuplicates()
			continue
		}

		text, err := a.composePost(name, item)
		if err != nil {
			// Template errors mean malformed configuration; no point
			// trying the remaining entries of this feed.
			return err
		}

		a.publishEntry(text, item)

		// The entry is recorded even when delivery failed: at-most-once
		// by design, the ledger stops re-attempts on the next poll.
		if err := a.Ledger.Record(feedURL, guid, item.Title, item.Link, item.Published); err != nil {
			return err
		}
		a.sleep(a.Cfg.PublishPause)
	}
	return nil
}

func (a *App) composePost(source string, item *gofeed.Item) (string, error) {
	excerpt := feed.Excerpt(item, excerptMaxChars)
	return message.Render(a.Cfg.PostTemplate, message.Fields{
		Title:     a.Tr.Translate(item.Title, titleTranslateLimit),
		Excerpt:   a.Tr.Translate(excerpt, excerptTranslateLimit),
		Link:      item.Link,
		Published: feed.PublishedDisplay(item),
		Source:    source,
	})
}

// publishEntry applies the three-tier degradation: resolved article image,
// local placeholder bytes, then plain text. A resolved image is downloaded and
// sent as bytes; when the download fails, delivery by URL is left to Telegram.
func (a *App) publishEntry(text string, item *gofeed.Item) {
	var err error
	if imgURL := a.Resolver.Resolve(item); imgURL != "" {
		if data := a.Resolver.Download(imgURL); len(data) > 0 {
			err = a.Pub.Publish(text, data, "")
		} else {
			err = a.Pub.Publish(text, nil, imgURL)
		}
	} else if placeholder, readErr := os.ReadFile(a.Cfg.PlaceholderPath); readErr == nil {
		a.Metrics.IncrementPlaceholderFallbacks()
		err = a.Pub.Publish(text, placeholder, "")
	} else {
		a.Metrics.IncrementTextOnlyFallbacks()
		err = a.Pub.Publish(text, nil, "")
	}

	if err != nil {
		logger.Error("publish failed", "link", item.Link, "err", err)
		a.Metrics.IncrementDeliveryFailures()
		return
	}
	a.Metrics.IncrementPublished()
}

// PostCTA publishes the promotional message, optionally with the textual
// schedule appended and the rendered board attached. Every branch degrades to
// "publish something".
func (a *App) PostCTA() {
	msg := message.UnescapeLiterals(a.Cfg.CTAMessage)
	if a.Cfg.CTAIncludeSchedule {
		msg = msg + "\n\n" + a.Scores.TodayMessage(a.Cfg.ScheduleHeader)
	}
	a.publishWithBoard(msg)
	a.Metrics.IncrementCTAPosted()
}

// PostDailySchedule publishes the day's games on their own, without the CTA
// text.
func (a *App) PostDailySchedule() {
	a.publishWithBoard(a.Scores.TodayMessage(a.Cfg.ScheduleHeader))
}

// publishWithBoard sends text with the rendered schedule board when the
// scoreboard and renderer cooperate, else text alone. Exactly one publish
// happens either way.
func (a *App) publishWithBoard(text string) {
	if img := a.renderBoard(); img != nil {
		if err := a.Pub.Publish(text, img, ""); err != nil {
			logger.Error("publish with board failed", "err", err)
			a.Metrics.IncrementDeliveryFailures()
		}
		return
	}
	if err := a.Pub.Publish(text, nil, ""); err != nil {
		logger.Error("publish failed", "err", err)
		a.Metrics.IncrementDeliveryFailures()
	}
}

func (a *App) renderBoard() []byte {
	games, err := a.Scores.Today()
	if err != nil {
		logger.Warn("skipping schedule board", "err", err)
		return nil
	}
	if len(games) == 0 {
		return nil
	}
	img, err := a.Renderer.Render(games)
	if err != nil {
		logger.Warn("schedule board render failed", "err", err)
		return nil
	}
	return img
}

// Describe returns a short human-readable summary for startup logging.
func (a *App) Describe() string {
	return fmt.Sprintf("%d feeds, poll every %s, %d CTA triggers",
		len(a.Cfg.Feeds), a.Cfg.CheckEvery, len(a.Cfg.CTACrons))
}
