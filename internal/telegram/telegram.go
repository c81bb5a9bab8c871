// Package telegram posts to a chat through the Bot HTTP API.
package telegram

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

const captionMaxRunes = 1024

// Client publishes messages to one Telegram chat.
type Client struct {
	APIBase string // overridable in tests
	token   string
	chatID  string
	http    *http.Client
}

func New(token, chatID string) *Client {
	return &Client{
		APIBase: "https://api.telegram.org",
		token:   token,
		chatID:  chatID,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Publish sends the post. Image bytes are preferred over an image URL; with
// neither, a plain text message goes out.
func (c *Client) Publish(text string, imageBytes []byte, imageURL string) error {
	switch {
	case len(imageBytes) > 0:
		return c.sendPhotoBytes(imageBytes, text)
	case imageURL != "":
		return c.sendPhotoURL(imageURL, text)
	default:
		return c.sendMessage(text)
	}
}

func (c *Client) sendMessage(text string) error {
	payload := map[string]interface{}{
		"chat_id":                  c.chatID,
		"text":                     text,
		"parse_mode":               "HTML",
		"disable_web_page_preview": false,
	}
	return c.postJSON("sendMessage", payload)
}

func (c *Client) sendPhotoURL(photoURL, caption string) error {
	payload := map[string]interface{}{
		"chat_id":    c.chatID,
		"photo":      photoURL,
		"caption":    trimCaption(caption),
		"parse_mode": "HTML",
	}
	return c.postJSON("sendPhoto", payload)
}

func (c *Client) sendPhotoBytes(photo []byte, caption string) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField("chat_id", c.chatID); err != nil {
		return fmt.Errorf("build multipart: %w", err)
	}
	if err := w.WriteField("caption", trimCaption(caption)); err != nil {
		return fmt.Errorf("build multipart: %w", err)
	}
	if err := w.WriteField("parse_mode", "HTML"); err != nil {
		return fmt.Errorf("build multipart: %w", err)
	}
	part, err := w.CreateFormFile("photo", "photo.png")
	if err != nil {
		return fmt.Errorf("build multipart: %w", err)
	}
	if _, err := part.Write(photo); err != nil {
		return fmt.Errorf("build multipart: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("build multipart: %w", err)
	}

	resp, err := c.http.Post(c.methodURL("sendPhoto"), w.FormDataContentType(), &buf)
	if err != nil {
		return fmt.Errorf("HTTP request: %w", err)
	}
	return checkResponse(resp)
}

func (c *Client) postJSON(method string, payload map[string]interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	resp, err := c.http.Post(c.methodURL(method), "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("HTTP request: %w", err)
	}
	return checkResponse(resp)
}

func (c *Client) methodURL(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", c.APIBase, c.token, method)
}

func checkResponse(resp *http.Response) error {
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("telegram API error: status %d: %s", resp.StatusCode, body)
	}
	return nil
}

func trimCaption(caption string) string {
	runes := []rune(caption)
	if len(runes) > captionMaxRunes {
		return string(runes[:captionMaxRunes])
	}
	return caption
}
