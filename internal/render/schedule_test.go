package render

import (
	"bytes"
	"image"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nbabot/internal/scoreboard"
)

var testLoc = time.FixedZone("ART", -3*60*60)

func newTestRenderer() *Renderer {
	r := New(testLoc, "", 2*time.Second)
	r.Now = func() time.Time { return time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC) }
	return r
}

func game(home, away string) scoreboard.Game {
	return scoreboard.Game{Home: home, Away: away, Kickoff: "2026-08-28T23:00Z", Status: "pre"}
}

func decode(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, format, err := image.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, "png", format)
	return img
}

func rgbAt(img image.Image, x, y int) (uint8, uint8, uint8) {
	r, g, b, _ := img.At(x, y).RGBA()
	return uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)
}

func TestRenderCanvasSizeIsFixed(t *testing.T) {
	r := newTestRenderer()

	var inputs [][]scoreboard.Game
	inputs = append(inputs, nil)
	inputs = append(inputs, []scoreboard.Game{game("Lakers", "Celtics")})
	many := make([]scoreboard.Game, 10)
	for i := range many {
		many[i] = game("Home", "Away")
	}
	inputs = append(inputs, many)

	for _, games := range inputs {
		data, err := r.Render(games)
		require.NoError(t, err)
		img := decode(t, data)
		assert.Equal(t, 1080, img.Bounds().Dx())
		assert.Equal(t, 1080, img.Bounds().Dy())
	}
}

func TestRenderZebraParityFollowsRenderedRows(t *testing.T) {
	r := newTestRenderer()

	games := []scoreboard.Game{
		game("Lakers", "Celtics"),
		{Kickoff: "2026-08-28T23:00Z"}, // malformed: no competitor names
		game("Heat", "Knicks"),
		game("Bulls", "Nets"),
		game("Suns", "Mavs"),
	}

	data, err := r.Render(games)
	require.NoError(t, err)
	img := decode(t, data)

	shadeA := [3]uint8{24, 26, 38}
	shadeB := [3]uint8{18, 20, 30}

	for i := 0; i < 4; i++ {
		top := titleH + 10 + i*rowH
		cr, cg, cb := rgbAt(img, canvasW/2, top+20)
		want := shadeA
		if i%2 == 1 {
			want = shadeB
		}
		assert.Equal(t, want, [3]uint8{cr, cg, cb}, "row %d shade", i)
	}

	// Only four rows were rendered: the fifth slot shows canvas background.
	top := titleH + 10 + 4*rowH
	cr, cg, cb := rgbAt(img, canvasW/2, top+20)
	assert.Equal(t, [3]uint8{12, 14, 22}, [3]uint8{cr, cg, cb})
}

func TestRenderPillShowsDashesForBadKickoff(t *testing.T) {
	r := newTestRenderer()

	g := game("Lakers", "Celtics")
	g.Kickoff = "not-a-timestamp"

	// The render must not fail; the pill itself is still drawn.
	data, err := r.Render([]scoreboard.Game{g})
	require.NoError(t, err)
	img := decode(t, data)

	pillX := canvasW - pad - pillW - 140
	top := titleH + 10
	centerY := top + (rowH-12)/2
	cr, cg, cb := rgbAt(img, pillX+10, centerY)
	assert.Equal(t, [3]uint8{39, 161, 79}, [3]uint8{cr, cg, cb}, "time pill background")
}

func TestRenderSurvivesLogoFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	g := game("Lakers", "Celtics")
	g.HomeLogo = srv.URL + "/home.png"
	g.AwayLogo = srv.URL + "/away.png"

	r := newTestRenderer()
	data, err := r.Render([]scoreboard.Game{g})
	require.NoError(t, err)
	img := decode(t, data)
	assert.Equal(t, 1080, img.Bounds().Dx())
}

func TestFitOnlyDownscales(t *testing.T) {
	small := image.NewRGBA(image.Rect(0, 0, 40, 60))
	assert.Equal(t, small.Bounds(), fit(small, logoSize).Bounds())

	big := image.NewRGBA(image.Rect(0, 0, 400, 200))
	fitted := fit(big, logoSize)
	assert.Equal(t, logoSize, fitted.Bounds().Dx())
	assert.Equal(t, 55, fitted.Bounds().Dy())
}
