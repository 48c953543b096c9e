package drawing

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// EncodePNG writes the canonical bitmap as PNG.
func (s *Surface) EncodePNG(w io.Writer) error {
	return png.Encode(w, s.canonical)
}

// DecodePNG reads a PNG image.
func DecodePNG(r io.Reader) (image.Image, error) {
	img, err := png.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode png: %w", err)
	}
	return img, nil
}

// SaveFile writes the canonical bitmap to path as PNG.
func (s *Surface) SaveFile(path string) error {
	if err := gg.SavePNG(path, s.canonical); err != nil {
		return fmt.Errorf("save drawing %s: %w", path, err)
	}
	return nil
}

// LoadFile reads a PNG from path into the surface, resampling to fit. Unlike
// Import, a successful load counts as an edit.
func (s *Surface) LoadFile(path string) error {
	img, err := gg.LoadPNG(path)
	if err != nil {
		return fmt.Errorf("load drawing %s: %w", path, err)
	}
	if err := s.Import(img, true); err != nil {
		return err
	}
	s.touch()
	return nil
}

const (
	captionFontSize = 14.0
	captionPadding  = 12.0
	captionSpacing  = 1.4
)

// Annotate returns img with caption rendered in a band below it. An empty
// caption returns img unchanged.
func Annotate(img image.Image, caption string) (image.Image, error) {
	if caption == "" {
		return img, nil
	}

	ttfFont, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	face := truetype.NewFace(ttfFont, &truetype.Options{
		Size:    captionFontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	defer face.Close()

	b := img.Bounds()
	wrapWidth := math.Max(float64(b.Dx())-2*captionPadding, captionFontSize)

	measure := gg.NewContext(1, 1)
	measure.SetFontFace(face)
	lines := measure.WordWrap(caption, wrapWidth)
	lineHeight := measure.FontHeight() * captionSpacing
	band := int(math.Ceil(float64(len(lines))*lineHeight + 2*captionPadding))

	dc := gg.NewContext(b.Dx(), b.Dy()+band)
	dc.SetColor(color.White)
	dc.Clear()
	dc.DrawImage(img, -b.Min.X, -b.Min.Y)

	dc.SetFontFace(face)
	dc.SetColor(color.Black)
	y := float64(b.Dy()) + captionPadding
	for _, line := range lines {
		dc.DrawStringAnchored(line, captionPadding, y, 0, 1)
		y += lineHeight
	}
	return dc.Image(), nil
}
