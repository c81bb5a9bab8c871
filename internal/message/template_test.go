package message

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderResolvesAllPlaceholders(t *testing.T) {
	got, err := Render("📰 {title}\n{excerpt}\n🔗 {link}\n🕒 {published}\nFuente: {source}", Fields{
		Title:     "Gran triunfo",
		Excerpt:   "Resumen del partido",
		Link:      "https://example.com/nota",
		Published: "14 Mar 2026 21:30",
		Source:    "ESPN",
	})
	require.NoError(t, err)
	assert.Equal(t, "📰 Gran triunfo\nResumen del partido\n🔗 https://example.com/nota\n🕒 14 Mar 2026 21:30\nFuente: ESPN", got)
}

func TestRenderRejectsUnknownPlaceholder(t *testing.T) {
	_, err := Render("{title} {autor}", Fields{Title: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "{autor}")
}

func TestValidateTemplate(t *testing.T) {
	assert.NoError(t, ValidateTemplate("{title} {excerpt} {link} {published} {source}"))
	assert.NoError(t, ValidateTemplate("no placeholders at all"))
	assert.Error(t, ValidateTemplate("{nope}"))
}

func TestUnescapeLiterals(t *testing.T) {
	assert.Equal(t, "line one\nline two\tend", UnescapeLiterals(`line one\nline two\tend `))
}
