// Package render draws the daily schedule board: a fixed 1080x1080 PNG with a
// header, one zebra-striped row per game and a footer credit. Rendering is
// deterministic for a given game list; missing logos or unparseable kickoff
// times degrade the affected slot, never the whole canvas.
package render

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/fogleman/gg"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"nbabot/internal/logger"
	"nbabot/internal/scoreboard"
)

const (
	canvasW = 1080
	canvasH = 1080

	pad     = 48
	rowH    = 150
	maxRows = 6
	titleH  = 180
	footerH = 70

	logoSize = 110

	pillW = 150
	pillH = 44

	headerTitle  = "PARTIDOS NBA DE HOY"
	footerCredit = "Fuente: ESPN Scoreboard"
)

type Renderer struct {
	Loc     *time.Location
	FontDir string // optional TTF overrides, e.g. assets/fonts
	HTTP    *http.Client

	// Now is split out so tests can pin the header date.
	Now func() time.Time
}

func New(loc *time.Location, fontDir string, timeout time.Duration) *Renderer {
	return &Renderer{
		Loc:     loc,
		FontDir: fontDir,
		HTTP:    &http.Client{Timeout: timeout},
		Now:     time.Now,
	}
}

// Render produces the schedule board. Games beyond the slot capacity are
// omitted; games missing either competitor name are skipped without consuming
// a slot, so striping parity follows rendered position.
func (r *Renderer) Render(games []scoreboard.Game) ([]byte, error) {
	dc := gg.NewContext(canvasW, canvasH)
	dc.SetRGB255(12, 14, 22)
	dc.Clear()

	r.drawHeader(dc)

	shown := 0
	for _, g := range games {
		if shown >= maxRows {
			break
		}
		if g.Home == "" || g.Away == "" {
			continue
		}
		r.drawRow(dc, g, shown)
		shown++
	}

	dc.SetFontFace(r.face("Inter-Regular.ttf", 24, false))
	dc.SetRGB255(170, 174, 196)
	dc.DrawString(footerCredit, pad, canvasH-footerH+40)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode schedule board: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) drawHeader(dc *gg.Context) {
	dc.SetRGB255(20, 22, 34)
	dc.DrawRectangle(0, 0, canvasW, titleH)
	dc.Fill()

	dc.SetFontFace(r.face("Inter-SemiBold.ttf", 56, true))
	dc.SetRGB255(245, 246, 255)
	dc.DrawString(headerTitle, pad, 100)

	dc.SetFontFace(r.face("Inter-Regular.ttf", 24, false))
	dc.SetRGB255(180, 184, 205)
	dc.DrawString(r.Now().In(r.Loc).Format("Monday 02 Jan 2006"), pad, 140)
}

func (r *Renderer) drawRow(dc *gg.Context, g scoreboard.Game, shown int) {
	top := float64(titleH + 10 + shown*rowH)
	bottom := top + rowH - 12
	centerY := (top + bottom) / 2

	if shown%2 == 0 {
		dc.SetRGB255(24, 26, 38)
	} else {
		dc.SetRGB255(18, 20, 30)
	}
	dc.DrawRoundedRectangle(pad, top, canvasW-2*pad, bottom-top, 18)
	dc.Fill()

	r.pasteLogo(dc, g.AwayLogo, pad+20, centerY)
	r.pasteLogo(dc, g.HomeLogo, canvasW-pad-20-logoSize, centerY)

	dc.SetFontFace(r.face("Inter-SemiBold.ttf", 36, true))
	dc.SetRGB255(235, 238, 250)
	dc.DrawStringAnchored(fmt.Sprintf("%s  @  %s", g.Away, g.Home), pad+150, centerY, 0, 0.35)

	hour := "--:--"
	if t, ok := scoreboard.KickoffLocal(g, r.Loc); ok {
		hour = t.Format("15:04")
	}

	pillX := float64(canvasW - pad - pillW - 140)
	dc.SetRGB255(39, 161, 79)
	dc.DrawRoundedRectangle(pillX, centerY-pillH/2, pillW, pillH, 22)
	dc.Fill()

	dc.SetFontFace(r.face("Inter-Medium.ttf", 34, false))
	dc.SetRGB255(255, 255, 255)
	dc.DrawStringAnchored(hour, pillX+pillW/2, centerY, 0.5, 0.35)
}

// pasteLogo downloads, decodes and fits one team logo. Every failure leaves
// the slot blank.
func (r *Renderer) pasteLogo(dc *gg.Context, url string, x int, centerY float64) {
	if url == "" {
		return
	}

	resp, err := r.HTTP.Get(url)
	if err != nil {
		logger.Warn("logo fetch failed", "url", url, "err", err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		logger.Warn("logo fetch failed", "url", url, "status", resp.StatusCode)
		return
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		logger.Warn("logo decode failed", "url", url, "err", err)
		return
	}

	img = fit(img, logoSize)
	dc.DrawImage(img, x, int(centerY)-img.Bounds().Dy()/2)
}

// fit downscales the image to the bounding box, preserving aspect ratio.
// Images already inside the box are untouched.
func fit(img image.Image, size int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= size && h <= size {
		return img
	}

	scale := float64(size) / float64(w)
	if sh := float64(size) / float64(h); sh < scale {
		scale = sh
	}
	dw, dh := int(float64(w)*scale), int(float64(h)*scale)
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, xdraw.Over, nil)
	return dst
}

// face loads a TTF from FontDir when present, else falls back to the embedded
// Go fonts so the board renders on a bare deployment.
func (r *Renderer) face(name string, size float64, bold bool) font.Face {
	if r.FontDir != "" {
		if data, err := os.ReadFile(filepath.Join(r.FontDir, name)); err == nil {
			if f, err := opentype.Parse(data); err == nil {
				if fc, err := opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull}); err == nil {
					return fc
				}
			}
		}
	}

	ttf := goregular.TTF
	if bold {
		ttf = gobold.TTF
	}
	f, err := opentype.Parse(ttf)
	if err != nil {
		return nil
	}
	fc, err := opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil
	}
	return fc
}
