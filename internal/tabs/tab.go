package tabs

import (
	"fmt"
	"image"
	"time"

	"inkpad/internal/document"
	"inkpad/internal/drawing"
	"inkpad/internal/styles"
)

// Kind distinguishes text tabs from drawing tabs.
type Kind int

const (
	KindText Kind = iota
	KindDrawing
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindDrawing:
		return "drawing"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "text":
		return KindText, nil
	case "drawing":
		return KindDrawing, nil
	default:
		return 0, fmt.Errorf("%w: unknown tab kind %q", ErrInvalidState, s)
	}
}

// Content is what a Loader produces: Text for text tabs, Bitmap for drawings.
type Content struct {
	Text   string
	Bitmap image.Image
}

// Loader fetches a tab's content on first access.
type Loader func() (Content, error)

// Options are the defaults new tab content is created with.
type Options struct {
	TextDefaults  styles.Attribute
	DrawingWidth  int
	DrawingHeight int
	BrushSize     int
	Theme         string
	DarkMode      bool
}

// DefaultOptions matches the built-in configuration.
func DefaultOptions() Options {
	return Options{
		TextDefaults:  styles.Attribute{Family: "Arial", SizePt: 10},
		DrawingWidth:  1200,
		DrawingHeight: 900,
		BrushSize:     drawing.DefaultBrushSize,
		Theme:         drawing.DefaultTheme,
	}
}

// Tab is one open document. Content is created or loaded on first access.
type Tab struct {
	Kind           Kind
	Number         int
	Name           string
	LinkedName     string
	BackingPath    string
	Theme          string
	DarkMode       bool
	LastSavedAt    time.Time
	LastModifiedAt time.Time

	doc     *document.Document
	surface *drawing.Surface
	loader  Loader
	opts    *Options
	owner   *Registry
}

// SetLoader defers content creation to l. It has no effect once content exists.
func (t *Tab) SetLoader(l Loader) {
	if t.loaded() {
		return
	}
	t.loader = l
}

// Loaded reports whether the content has been materialized.
func (t *Tab) Loaded() bool { return t.loaded() }

func (t *Tab) loaded() bool { return t.doc != nil || t.surface != nil }

// Document returns the text content, or nil for a drawing tab.
func (t *Tab) Document() *document.Document {
	if t.Kind != KindText {
		return nil
	}
	t.materialize()
	return t.doc
}

// Surface returns the drawing content, or nil for a text tab.
func (t *Tab) Surface() *drawing.Surface {
	if t.Kind != KindDrawing {
		return nil
	}
	t.materialize()
	return t.surface
}

// Modified reports unsaved changes in loaded content.
func (t *Tab) Modified() bool {
	switch {
	case t.doc != nil:
		return t.doc.Modified()
	case t.surface != nil:
		return t.surface.Modified()
	default:
		return false
	}
}

// ModifiedAt returns the later of LastModifiedAt and the content's last change.
func (t *Tab) ModifiedAt() time.Time {
	var content time.Time
	switch {
	case t.doc != nil:
		content = t.doc.ModifiedAt()
	case t.surface != nil:
		content = t.surface.ModifiedAt()
	}
	if content.After(t.LastModifiedAt) {
		return content
	}
	return t.LastModifiedAt
}

// MarkSaved records a successful save at now.
func (t *Tab) MarkSaved(now time.Time) {
	t.LastSavedAt = now
	switch {
	case t.doc != nil:
		t.doc.MarkSaved()
	case t.surface != nil:
		t.surface.MarkSaved()
	}
}

func (t *Tab) options() Options {
	if t.opts != nil {
		return *t.opts
	}
	return DefaultOptions()
}

func (t *Tab) materialize() {
	if t.loaded() {
		return
	}
	opts := t.options()

	var content Content
	if t.loader != nil {
		c, err := t.loader()
		if err != nil {
			t.logger().Warn().Err(err).Str("tab", t.Name).Msg("tab content unavailable, starting empty")
		} else {
			content = c
		}
		t.loader = nil
	}

	switch t.Kind {
	case KindText:
		t.doc = document.NewWithText(opts.TextDefaults, content.Text)
	case KindDrawing:
		t.surface = t.newSurface(opts)
		if content.Bitmap != nil {
			if err := t.surface.Import(content.Bitmap, true); err != nil {
				t.logger().Warn().Err(err).Str("tab", t.Name).Msg("drawing import failed, starting blank")
			}
		}
	}
}

func (t *Tab) newSurface(opts Options) *drawing.Surface {
	theme := t.Theme
	if theme == "" {
		theme = opts.Theme
	}
	s, err := drawing.New(opts.DrawingWidth, opts.DrawingHeight, theme)
	if err != nil {
		t.logger().Warn().Err(err).Str("theme", theme).Msg("falling back to default drawing settings")
		d := DefaultOptions()
		s, _ = drawing.New(d.DrawingWidth, d.DrawingHeight, d.Theme)
	}
	t.Theme = s.Theme()
	if t.DarkMode {
		s.SetDarkMode(true)
	}
	if opts.BrushSize != 0 {
		if err := s.SetBrushSize(opts.BrushSize); err != nil {
			t.logger().Warn().Err(err).Msg("ignoring configured brush size")
		}
	}
	s.MarkSaved()
	return s
}
