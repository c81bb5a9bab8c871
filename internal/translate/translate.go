// Package translate calls the public Google Translate endpoint. Translation
// is an enhancement for the pipeline, never a hard dependency: any failure
// returns the original text.
package translate

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"nbabot/internal/logger"
)

const defaultEndpoint = "https://translate.googleapis.com/translate_a/single"

type Translator struct {
	Endpoint string
	Target   string
	Client   *http.Client
}

func New(target string, timeout time.Duration) *Translator {
	return &Translator{
		Endpoint: defaultEndpoint,
		Target:   target,
		Client:   &http.Client{Timeout: timeout},
	}
}

// Translate translates text to the configured target language. The input is
// truncated to limit characters first (the service caps request size); limit
// <= 0 means no cap. On any failure the original text comes back unchanged.
func (t *Translator) Translate(text string, limit int) string {
	if text == "" {
		return text
	}

	input := text
	if limit > 0 {
		if runes := []rune(input); len(runes) > limit {
			input = string(runes[:limit])
		}
	}

	result, err := t.translateOnce(input)
	if err != nil {
		logger.Warn("translation failed, keeping original", "err", err)
		return text
	}
	if result == "" {
		return text
	}
	return result
}

func (t *Translator) translateOnce(text string) (string, error) {
	params := url.Values{}
	params.Set("client", "gtx")
	params.Set("sl", "auto")
	params.Set("tl", t.Target)
	params.Set("dt", "t")
	params.Set("q", text)

	resp, err := t.Client.Get(t.Endpoint + "?" + params.Encode())
	if err != nil {
		return "", fmt.Errorf("HTTP error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translate API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	return parseResponse(body)
}

// parseResponse unpacks the nested-array payload the endpoint returns:
// [[["translated","original",...],...],...]
func parseResponse(body []byte) (string, error) {
	var response []interface{}
	if err := json.Unmarshal(body, &response); err != nil {
		return "", err
	}
	if len(response) == 0 {
		return "", errors.New("empty response")
	}

	chunks, ok := response[0].([]interface{})
	if !ok {
		return "", errors.New("unexpected response format")
	}

	var result strings.Builder
	for _, chunk := range chunks {
		if parts, ok := chunk.([]interface{}); ok && len(parts) > 0 {
			if translated, ok := parts[0].(string); ok {
				result.WriteString(translated)
			}
		}
	}
	return result.String(), nil
}
