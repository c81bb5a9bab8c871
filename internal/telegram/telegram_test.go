package telegram

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	path        string
	contentType string
	body        []byte
}

func newTestClient(t *testing.T, status int) (*Client, *recordedRequest) {
	t.Helper()
	rec := &recordedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.path = r.URL.Path
		rec.contentType = r.Header.Get("Content-Type")
		rec.body, _ = io.ReadAll(r.Body)
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)

	c := New("tok123", "-100555")
	c.APIBase = srv.URL
	return c, rec
}

func TestPublishTextOnly(t *testing.T) {
	c, rec := newTestClient(t, http.StatusOK)

	require.NoError(t, c.Publish("hola", nil, ""))
	assert.Equal(t, "/bottok123/sendMessage", rec.path)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.body, &payload))
	assert.Equal(t, "-100555", payload["chat_id"])
	assert.Equal(t, "hola", payload["text"])
	assert.Equal(t, "HTML", payload["parse_mode"])
}

func TestPublishPhotoURL(t *testing.T) {
	c, rec := newTestClient(t, http.StatusOK)

	require.NoError(t, c.Publish("caption", nil, "https://img.example.com/a.jpg"))
	assert.Equal(t, "/bottok123/sendPhoto", rec.path)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.body, &payload))
	assert.Equal(t, "https://img.example.com/a.jpg", payload["photo"])
	assert.Equal(t, "caption", payload["caption"])
}

func TestPublishPrefersBytesOverURL(t *testing.T) {
	c, rec := newTestClient(t, http.StatusOK)

	require.NoError(t, c.Publish("caption", []byte("raw-png"), "https://img.example.com/a.jpg"))
	assert.Equal(t, "/bottok123/sendPhoto", rec.path)
	assert.True(t, strings.HasPrefix(rec.contentType, "multipart/form-data"))
	assert.Contains(t, string(rec.body), "raw-png")
	assert.Contains(t, string(rec.body), `name="photo"`)
}

func TestPublishSurfacesAPIError(t *testing.T) {
	c, _ := newTestClient(t, http.StatusTooManyRequests)

	err := c.Publish("hola", nil, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}

func TestCaptionTrimmedToTelegramLimit(t *testing.T) {
	long := strings.Repeat("á", 2000)
	trimmed := trimCaption(long)
	assert.Equal(t, captionMaxRunes, len([]rune(trimmed)))
}
