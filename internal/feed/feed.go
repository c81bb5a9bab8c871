// Package feed wraps gofeed polling and the per-entry helpers the ingestion
// pipeline needs: guid derivation, excerpt extraction and image resolution.
package feed

import (
	"fmt"
	"html"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"nbabot/internal/logger"
)

const userAgent = "Mozilla/5.0"

var (
	tagPattern        = regexp.MustCompile(`<[^>]+>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// Fetch downloads and parses one feed, returning its display name and the
// newest window of entries in source order.
func Fetch(url string, limit int, timeout time.Duration) (string, []*gofeed.Item, error) {
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: timeout}
	parser.UserAgent = userAgent

	f, err := parser.ParseURL(url)
	if err != nil {
		return "", nil, fmt.Errorf("parse feed %s: %w", url, err)
	}

	name := f.Title
	if name == "" {
		name = url
	}

	items := f.Items
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	logger.Debug("feed fetched", "feed", url, "entries", len(items))
	return name, items, nil
}

// GUID derives the stable identifier for an entry: the feed-native id when
// present, else the link URL. An empty result means the entry cannot be
// tracked and must be dropped.
func GUID(item *gofeed.Item) string {
	if item.GUID != "" {
		return item.GUID
	}
	return item.Link
}

// Excerpt picks the richest text field of the entry, strips markup and
// truncates at a word boundary.
func Excerpt(item *gofeed.Item, maxChars int) string {
	raw := item.Content
	if raw == "" {
		raw = item.Description
	}

	text := tagPattern.ReplaceAllString(raw, " ")
	text = html.UnescapeString(text)
	text = strings.TrimSpace(whitespacePattern.ReplaceAllString(text, " "))

	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}
	cut := string(runes[:maxChars])
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return cut + "…"
}

// PublishedDisplay prefers the parsed timestamp over the raw feed string.
func PublishedDisplay(item *gofeed.Item) string {
	if item.PublishedParsed != nil {
		return item.PublishedParsed.Format("02 Jan 2006 15:04")
	}
	if item.Published != "" {
		return item.Published
	}
	return item.Updated
}
