// Package export turns tab content into files for other programs. Exporters
// receive a Payload holding copies, so they cannot change the open documents.
package export

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"inkpad/internal/document"
	"inkpad/internal/drawing"
)

// ErrEmptyPayload is returned when an exporter has nothing it can write.
var ErrEmptyPayload = errors.New("nothing to export")

// Marker is an inline image reference at a rune offset of Text.
type Marker struct {
	Offset   int
	ImageRef string
}

// Payload is the resolved content handed to an exporter.
type Payload struct {
	Text    string
	Markers []Marker
	Bitmap  image.Image
	Caption string
}

// FromDocument builds a payload from a text document.
func FromDocument(doc *document.Document) Payload {
	p := Payload{Text: doc.Text()}
	for _, m := range doc.ImageMarkers() {
		p.Markers = append(p.Markers, Marker{Offset: m.Offset, ImageRef: m.Ref})
	}
	return p
}

// FromSurface builds a payload from a drawing, captioned with the linked
// text when caption is not empty.
func FromSurface(s *drawing.Surface, caption string) Payload {
	return Payload{Bitmap: s.ExportBitmap(), Caption: caption}
}

// Exporter writes a payload in one format.
type Exporter interface {
	Name() string
	Extension() string
	Export(w io.Writer, p Payload) error
}

// PlainText writes the text with each image marker replaced by its reference.
type PlainText struct{}

func (PlainText) Name() string      { return "text" }
func (PlainText) Extension() string { return ".txt" }

// Export implements Exporter.
func (PlainText) Export(w io.Writer, p Payload) error {
	if p.Text == "" && len(p.Markers) == 0 {
		return ErrEmptyPayload
	}
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(ResolveMarkers(p.Text, p.Markers)); err != nil {
		return err
	}
	return bw.Flush()
}

// ResolveMarkers replaces the marker text at each offset with "[IMAGE: ref]".
func ResolveMarkers(text string, markers []Marker) string {
	runes := []rune(text)
	marker := []rune(document.ImageMarker)

	var b strings.Builder
	pos := 0
	for _, m := range markers {
		end := m.Offset + len(marker)
		if m.Offset < pos || end > len(runes) || string(runes[m.Offset:end]) != document.ImageMarker {
			continue
		}
		b.WriteString(string(runes[pos:m.Offset]))
		fmt.Fprintf(&b, "[IMAGE: %s]", m.ImageRef)
		pos = end
	}
	b.WriteString(string(runes[pos:]))
	return b.String()
}

// PNG writes the bitmap, with the caption rendered underneath when present.
type PNG struct{}

func (PNG) Name() string      { return "png" }
func (PNG) Extension() string { return ".png" }

// Export implements Exporter.
func (PNG) Export(w io.Writer, p Payload) error {
	if p.Bitmap == nil {
		return ErrEmptyPayload
	}
	img, err := drawing.Annotate(p.Bitmap, p.Caption)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// ForPath picks an exporter by file extension, defaulting to fallback.
func ForPath(path string, fallback Exporter) Exporter {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return PNG{}
	case ".txt":
		return PlainText{}
	default:
		return fallback
	}
}

// WriteFile exports p to path, replacing any existing file only on success.
func WriteFile(path string, e Exporter, p Payload) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := e.Export(f, p); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("export %s: %w", e.Name(), err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
