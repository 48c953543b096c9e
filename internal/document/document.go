// Package document holds the content of a text tab: a rune buffer, its
// formatting model, inline image markers and an undo history. Every text
// mutation shifts the formatting before returning, so ranges never drift
// from the characters they were applied to.
package document

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"inkpad/internal/styles"
)

// ErrInvalidRange is returned for positions outside the document.
var ErrInvalidRange = errors.New("invalid document range")

// ImageMarker is the text inserted where an image is placed.
const ImageMarker = "[IMAGE]"

// Marker ties an inline image reference to a character offset.
type Marker struct {
	Offset int
	Ref    string
}

// Stats summarises a document for the status bar.
type Stats struct {
	Words      int
	Characters int
	Lines      int
	Line       int // 1-based line of the cursor
	Column     int // 0-based column of the cursor
}

// Document is one text tab's content.
type Document struct {
	text    []rune
	styles  *styles.Model
	markers []Marker

	undoStack []Action
	redoStack []Action

	modified   bool
	modifiedAt time.Time
	now        func() time.Time
}

// New creates an empty document with the given default formatting.
func New(defaults styles.Attribute) *Document {
	return &Document{
		styles: styles.New(defaults, 0),
		now:    time.Now,
	}
}

// NewWithText creates a document holding text, with no formatting and no history.
func NewWithText(defaults styles.Attribute, text string) *Document {
	d := New(defaults)
	d.text = []rune(text)
	d.styles = styles.New(defaults, len(d.text))
	return d
}

// Text returns the full content.
func (d *Document) Text() string { return string(d.text) }

// Len returns the length in runes.
func (d *Document) Len() int { return len(d.text) }

// Slice returns the runes in [start,end) as a string.
func (d *Document) Slice(start, end int) (string, error) {
	if err := d.checkSpan(start, end); err != nil {
		return "", err
	}
	return string(d.text[start:end]), nil
}

// Styles exposes the formatting model for read access.
func (d *Document) Styles() *styles.Model { return d.styles }

// ResolvedAttributeAt returns the formatting at offset.
func (d *Document) ResolvedAttributeAt(offset int) styles.Attribute {
	return d.styles.ResolvedAttributeAt(offset)
}

// Runs returns the resolved formatting runs.
func (d *Document) Runs() []styles.Run { return d.styles.Runs() }

// Modified reports whether the document changed since the last MarkSaved.
func (d *Document) Modified() bool { return d.modified }

// ModifiedAt returns the time of the last mutation.
func (d *Document) ModifiedAt() time.Time { return d.modifiedAt }

// MarkSaved clears the modified flag.
func (d *Document) MarkSaved() { d.modified = false }

func (d *Document) touch() {
	d.modified = true
	d.modifiedAt = d.now()
}

func (d *Document) checkPos(pos int) error {
	if pos < 0 || pos > len(d.text) {
		return fmt.Errorf("%w: position %d in document of length %d", ErrInvalidRange, pos, len(d.text))
	}
	return nil
}

func (d *Document) checkSpan(start, end int) error {
	if start < 0 || end > len(d.text) || start > end {
		return fmt.Errorf("%w: [%d,%d) in document of length %d", ErrInvalidRange, start, end, len(d.text))
	}
	return nil
}

// Insert places s at pos.
func (d *Document) Insert(pos int, s string) error {
	return d.Replace(pos, pos, s)
}

// Delete removes [start,end).
func (d *Document) Delete(start, end int) error {
	return d.Replace(start, end, "")
}

// Replace swaps [start,end) for s as a single undoable edit.
func (d *Document) Replace(start, end int, s string) error {
	if err := d.checkSpan(start, end); err != nil {
		return err
	}
	inserted := []rune(s)
	if start == end && len(inserted) == 0 {
		return nil
	}

	before := d.capture()
	removed := append([]rune(nil), d.text[start:end]...)
	if err := d.splice(start, end, inserted); err != nil {
		return err
	}

	d.record(Action{
		Type:     actionTypeFor(removed, inserted),
		Pos:      start,
		Removed:  removed,
		Inserted: inserted,
		Before:   before,
		After:    d.capture(),
	})
	return nil
}

// splice edits the buffer and shifts formatting and markers.
func (d *Document) splice(start, end int, inserted []rune) error {
	if end > start {
		if err := d.styles.ShiftAfterEdit(start, start-end); err != nil {
			return err
		}
		d.shiftMarkers(start, start-end)
	}
	if len(inserted) > 0 {
		if err := d.styles.ShiftAfterEdit(start, len(inserted)); err != nil {
			return err
		}
		d.shiftMarkers(start, len(inserted))
	}

	out := make([]rune, 0, len(d.text)-(end-start)+len(inserted))
	out = append(out, d.text[:start]...)
	out = append(out, inserted...)
	out = append(out, d.text[end:]...)
	d.text = out
	d.touch()
	return nil
}

func (d *Document) shiftMarkers(offset, delta int) {
	out := d.markers[:0]
	markerLen := len([]rune(ImageMarker))
	for _, m := range d.markers {
		switch {
		case delta > 0 && m.Offset >= offset:
			m.Offset += delta
		case delta < 0:
			delEnd := offset - delta
			if m.Offset < delEnd && m.Offset+markerLen > offset {
				continue
			}
			if m.Offset >= delEnd {
				m.Offset += delta
			}
		}
		out = append(out, m)
	}
	d.markers = out
}

// ApplyAttribute formats [start,end) with the axes set in p.
func (d *Document) ApplyAttribute(start, end int, p styles.Partial) error {
	return d.format(func(m *styles.Model) error {
		_, err := m.ApplyAttribute(start, end, p)
		return err
	})
}

// ToggleBold flips bold on [start,end).
func (d *Document) ToggleBold(start, end int) error {
	return d.format(func(m *styles.Model) error { return m.ToggleBold(start, end) })
}

// ToggleItalic flips italic on [start,end).
func (d *Document) ToggleItalic(start, end int) error {
	return d.format(func(m *styles.Model) error { return m.ToggleItalic(start, end) })
}

// ToggleUnderline flips underline on [start,end).
func (d *Document) ToggleUnderline(start, end int) error {
	return d.format(func(m *styles.Model) error { return m.ToggleUnderline(start, end) })
}

// Highlight sets the highlight color of [start,end).
func (d *Document) Highlight(start, end int, c styles.Color) error {
	return d.ApplyAttribute(start, end, styles.WithHighlight(c))
}

// RemoveHighlight clears highlighting from [start,end).
func (d *Document) RemoveHighlight(start, end int) error {
	return d.format(func(m *styles.Model) error {
		_, err := m.RemoveHighlight(start, end)
		return err
	})
}

// SetFont sets family and size on [start,end).
func (d *Document) SetFont(start, end int, family string, sizePt int) error {
	return d.ApplyAttribute(start, end, styles.WithFont(family, sizePt))
}

func (d *Document) format(fn func(*styles.Model) error) error {
	before := d.capture()
	if err := fn(d.styles); err != nil {
		return err
	}
	d.touch()
	d.record(Action{Type: ActionFormat, Before: before, After: d.capture()})
	return nil
}

// InsertImage places an image marker line at pos and records ref for export.
func (d *Document) InsertImage(pos int, ref string) error {
	if err := d.checkPos(pos); err != nil {
		return err
	}
	if ref == "" {
		return fmt.Errorf("%w: empty image reference", ErrInvalidRange)
	}

	before := d.capture()
	inserted := []rune("\n" + ImageMarker + "\n")
	if err := d.splice(pos, pos, inserted); err != nil {
		return err
	}
	d.markers = append(d.markers, Marker{Offset: pos + 1, Ref: ref})
	sortMarkers(d.markers)

	d.record(Action{
		Type:     ActionInsert,
		Pos:      pos,
		Inserted: inserted,
		Before:   before,
		After:    d.capture(),
	})
	return nil
}

// ImageMarkers returns the inline images in document order.
func (d *Document) ImageMarkers() []Marker {
	out := make([]Marker, len(d.markers))
	copy(out, d.markers)
	return out
}

func sortMarkers(ms []Marker) {
	for i := 1; i < len(ms); i++ {
		for j := i; j > 0 && ms[j].Offset < ms[j-1].Offset; j-- {
			ms[j], ms[j-1] = ms[j-1], ms[j]
		}
	}
}

// SetText replaces the whole content, dropping formatting, markers and history.
func (d *Document) SetText(text string) {
	d.text = []rune(text)
	d.styles = styles.New(d.styles.Defaults(), len(d.text))
	d.markers = nil
	d.undoStack = nil
	d.redoStack = nil
	d.modified = false
}

// Find returns the offsets of every case-insensitive occurrence of query.
func (d *Document) Find(query string) []int {
	q := []rune(strings.ToLower(query))
	if len(q) == 0 {
		return nil
	}
	hay := []rune(strings.ToLower(string(d.text)))

	var hits []int
	for i := 0; i+len(q) <= len(hay); i++ {
		if string(hay[i:i+len(q)]) == string(q) {
			hits = append(hits, i)
		}
	}
	return hits
}

// Stats counts words, characters and lines, and locates cursor.
func (d *Document) Stats(cursor int) Stats {
	s := Stats{
		Words:      len(strings.Fields(string(d.text))),
		Characters: len(d.text),
		Lines:      1,
		Line:       1,
	}
	if cursor < 0 {
		cursor = 0
	}
	if cursor > len(d.text) {
		cursor = len(d.text)
	}
	for i, r := range d.text {
		if r != '\n' {
			if i < cursor {
				s.Column++
			}
			continue
		}
		s.Lines++
		if i < cursor {
			s.Line++
			s.Column = 0
		}
	}
	return s
}

// WordAt returns the bounds of the letter run containing offset.
func (d *Document) WordAt(offset int) (int, int, bool) {
	if offset < 0 || offset > len(d.text) {
		return 0, 0, false
	}
	start, end := offset, offset
	for start > 0 && unicode.IsLetter(d.text[start-1]) {
		start--
	}
	for end < len(d.text) && unicode.IsLetter(d.text[end]) {
		end++
	}
	return start, end, start < end
}
