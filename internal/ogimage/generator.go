// Package ogimage draws the share images linked from listing pages.
package ogimage

import (
	"bytes"
	"fmt"
	"image/color"
	"image/png"
	"strings"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/skip2/go-qrcode"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// Open Graph recommends 1200x630
const (
	Width  = 1200
	Height = 630

	margin = 56
	qrSize = 190
)

// Card is what a listing's share image shows
type Card struct {
	Site     string
	Title    string
	Category string
	Location string
	Price    string
	// URL is encoded as a QR code in the corner. Empty leaves it out.
	URL string
}

type fontSet struct {
	regular *truetype.Font
	bold    *truetype.Font
}

var loadFonts = sync.OnceValues(func() (fontSet, error) {
	regular, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return fontSet{}, fmt.Errorf("parse regular font: %w", err)
	}
	bold, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return fontSet{}, fmt.Errorf("parse bold font: %w", err)
	}
	return fontSet{regular: regular, bold: bold}, nil
})

// Render draws card and returns it PNG encoded
func Render(card Card) ([]byte, error) {
	fonts, err := loadFonts()
	if err != nil {
		return nil, err
	}

	dc := gg.NewContext(Width, Height)
	bg := gg.NewLinearGradient(0, 0, Width, Height)
	bg.AddColorStop(0, color.RGBA{79, 70, 229, 255})
	bg.AddColorStop(1, color.RGBA{30, 27, 75, 255})
	dc.SetFillStyle(bg)
	dc.DrawRectangle(0, 0, Width, Height)
	dc.Fill()

	textWidth := float64(Width - 2*margin)
	if card.URL != "" {
		textWidth -= qrSize + margin
	}

	dc.SetRGB(1, 1, 1)
	dc.SetFontFace(truetype.NewFace(fonts.bold, &truetype.Options{Size: 30}))
	dc.DrawString(card.Site, margin, margin+30)

	if card.Category != "" {
		label := strings.ToUpper(card.Category)
		dc.SetFontFace(truetype.NewFace(fonts.bold, &truetype.Options{Size: 24}))
		w, _ := dc.MeasureString(label)
		dc.SetRGBA(1, 1, 1, 0.2)
		dc.DrawRoundedRectangle(margin, 130, w+36, 44, 22)
		dc.Fill()
		dc.SetRGB(1, 1, 1)
		dc.DrawStringAnchored(label, margin+18, 152, 0, 0.35)
	}

	dc.SetFontFace(truetype.NewFace(fonts.bold, &truetype.Options{Size: 64}))
	lines := dc.WordWrap(card.Title, textWidth)
	if len(lines) > 2 {
		lines = append(lines[:1], ellipsize(dc, strings.Join(lines[1:], " "), textWidth))
	}
	y := 270.0
	for _, line := range lines {
		dc.DrawString(line, margin, y)
		y += 78
	}

	if card.Location != "" {
		dc.SetFontFace(truetype.NewFace(fonts.regular, &truetype.Options{Size: 34}))
		dc.SetRGBA(1, 1, 1, 0.85)
		dc.DrawString(ellipsize(dc, card.Location, textWidth), margin, y+6)
	}

	if card.Price != "" {
		dc.SetFontFace(truetype.NewFace(fonts.bold, &truetype.Options{Size: 48}))
		dc.SetRGB(1, 1, 1)
		dc.DrawString(card.Price, margin, Height-margin)
	}

	if card.URL != "" {
		qr, err := qrcode.New(card.URL, qrcode.Medium)
		if err != nil {
			return nil, fmt.Errorf("encode qr code: %w", err)
		}
		x := Width - margin - qrSize
		top := Height - margin - qrSize
		dc.SetRGB(1, 1, 1)
		dc.DrawRoundedRectangle(float64(x-10), float64(top-10), qrSize+20, qrSize+20, 14)
		dc.Fill()
		dc.DrawImage(qr.Image(qrSize), x, top)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, dc.Image()); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// QRCode returns a size x size PNG QR code pointing at url
func QRCode(url string, size int) ([]byte, error) {
	out, err := qrcode.Encode(url, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encode qr code: %w", err)
	}
	return out, nil
}

// ellipsize shortens s until it fits in width with a trailing "..."
func ellipsize(dc *gg.Context, s string, width float64) string {
	if w, _ := dc.MeasureString(s); w <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := strings.TrimSpace(string(runes)) + "..."
		if w, _ := dc.MeasureString(candidate); w <= width {
			return candidate
		}
	}
	return "..."
}
