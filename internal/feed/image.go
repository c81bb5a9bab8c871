package feed

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"nbabot/internal/logger"
)

const maxImageBytes = 10 << 20

// Resolver finds a representative image URL for a feed entry by trying, in
// order: feed-native media attachments, image enclosures, and finally an
// og:image scrape of the article page. The first tier that yields a URL wins;
// a failing tier is logged and the chain continues.
type Resolver struct {
	Client *http.Client
}

func NewResolver(timeout time.Duration) *Resolver {
	return &Resolver{Client: &http.Client{Timeout: timeout}}
}

func (r *Resolver) Resolve(item *gofeed.Item) string {
	tiers := []func(*gofeed.Item) string{
		mediaAttachmentURL,
		enclosureImageURL,
		r.openGraphImageURL,
	}
	for _, tier := range tiers {
		if url := tier(item); url != "" {
			return url
		}
	}
	return ""
}

// mediaAttachmentURL reads media:content / media:thumbnail extensions and the
// feed-level item image.
func mediaAttachmentURL(item *gofeed.Item) string {
	if media, ok := item.Extensions["media"]; ok {
		for _, key := range []string{"content", "thumbnail"} {
			for _, ext := range media[key] {
				if url := ext.Attrs["url"]; url != "" {
					return url
				}
			}
		}
	}
	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL
	}
	return ""
}

func enclosureImageURL(item *gofeed.Item) string {
	for _, enc := range item.Enclosures {
		if enc != nil && enc.URL != "" && strings.HasPrefix(enc.Type, "image/") {
			return enc.URL
		}
	}
	return ""
}

// openGraphImageURL fetches the article page and scans it for an og:image
// meta tag.
func (r *Resolver) openGraphImageURL(item *gofeed.Item) string {
	if item.Link == "" {
		return ""
	}

	doc, err := r.fetchDocument(item.Link)
	if err != nil {
		logger.Warn("og:image fallback failed", "link", item.Link, "err", err)
		return ""
	}

	for _, selector := range []string{`meta[property="og:image"]`, `meta[name="og:image"]`} {
		if content, ok := doc.Find(selector).First().Attr("content"); ok {
			if content = strings.TrimSpace(content); content != "" {
				return content
			}
		}
	}
	return ""
}

func (r *Resolver) fetchDocument(url string) (*goquery.Document, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := r.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return goquery.NewDocumentFromReader(resp.Body)
}

// Download fetches image bytes best-effort; an empty slice means failure.
func (r *Resolver) Download(url string) []byte {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := r.Client.Do(req)
	if err != nil {
		logger.Warn("image download failed", "url", url, "err", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Warn("image download failed", "url", url, "status", resp.StatusCode)
		return nil
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		logger.Warn("image download failed", "url", url, "err", err)
		return nil
	}
	return data
}
