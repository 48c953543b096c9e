// Package drawing implements the pixel state of a drawing tab.
//
// A Surface keeps two layers. The canonical bitmap is the only thing that is
// persisted or exported. The preview layer exists only while a line, rectangle
// or oval is being dragged and is discarded on release, after the shape has been
// rasterized once into the canonical bitmap. Pen strokes skip the preview and
// commit every drag sample directly.
package drawing

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"time"

	"github.com/fogleman/gg"
	"github.com/rs/zerolog"
	xdraw "golang.org/x/image/draw"

	"inkpad/internal/logging"
)

// Brush size limits in pixels.
const (
	MinBrushSize     = 1
	MaxBrushSize     = 50
	DefaultBrushSize = 3
)

var (
	// ErrSizeMismatch is returned by Import when the image does not match the
	// surface and resampling was not requested.
	ErrSizeMismatch = errors.New("image size does not match surface")

	// ErrInvalidBrush is returned for a brush size outside MinBrushSize..MaxBrushSize.
	ErrInvalidBrush = errors.New("invalid brush size")

	// ErrInvalidSize is returned for non-positive surface dimensions.
	ErrInvalidSize = errors.New("invalid surface size")
)

// Tool selects what a stroke draws.
type Tool int

const (
	ToolPen Tool = iota
	ToolLine
	ToolRect
	ToolOval
)

func (t Tool) String() string {
	switch t {
	case ToolPen:
		return "pen"
	case ToolLine:
		return "line"
	case ToolRect:
		return "rect"
	case ToolOval:
		return "oval"
	default:
		return fmt.Sprintf("tool(%d)", int(t))
	}
}

// State is the position of the current stroke in its lifecycle.
type State int

const (
	StateIdle State = iota
	StatePressed
	StateDragging
)

// Surface is one drawing document.
type Surface struct {
	width, height int

	theme      string
	darkMode   bool
	background color.RGBA

	canonical *image.RGBA
	preview   *image.RGBA
	previewOn bool

	tool   Tool
	color  color.RGBA
	brush  int
	eraser bool

	state  State
	anchor image.Point
	last   image.Point

	modified   bool
	modifiedAt time.Time
	now        func() time.Time

	log zerolog.Logger
}

// New creates a blank surface filled with the theme background.
func New(width, height int, theme string) (*Surface, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	if theme == "" {
		theme = DefaultTheme
	}
	bg, err := ThemeBackground(theme)
	if err != nil {
		return nil, err
	}

	s := &Surface{
		width:      width,
		height:     height,
		theme:      theme,
		background: bg,
		canonical:  image.NewRGBA(image.Rect(0, 0, width, height)),
		tool:       ToolPen,
		color:      black,
		brush:      DefaultBrushSize,
		now:        time.Now,
		log:        logging.Component("drawing"),
	}
	s.fill()
	return s, nil
}

// Width returns the fixed width in pixels.
func (s *Surface) Width() int { return s.width }

// Height returns the fixed height in pixels.
func (s *Surface) Height() int { return s.height }

// Theme returns the current theme name.
func (s *Surface) Theme() string { return s.theme }

// DarkMode reports whether the dark background overrides the theme.
func (s *Surface) DarkMode() bool { return s.darkMode }

// Background returns the color the eraser paints with.
func (s *Surface) Background() color.RGBA { return s.background }

// Tool returns the active tool.
func (s *Surface) Tool() Tool { return s.tool }

// Color returns the brush color.
func (s *Surface) Color() color.RGBA { return s.color }

// BrushSize returns the brush width in pixels.
func (s *Surface) BrushSize() int { return s.brush }

// Eraser reports whether strokes paint with the background.
func (s *Surface) Eraser() bool { return s.eraser }

// State returns the stroke state.
func (s *Surface) State() State { return s.state }

// Modified reports whether the canonical bitmap changed since MarkSaved.
func (s *Surface) Modified() bool { return s.modified }

// ModifiedAt returns the time of the last canonical change.
func (s *Surface) ModifiedAt() time.Time { return s.modifiedAt }

// MarkSaved clears the modified flag.
func (s *Surface) MarkSaved() { s.modified = false }

// SetTool changes the tool for the next stroke.
func (s *Surface) SetTool(t Tool) { s.tool = t }

// SetColor changes the brush color.
func (s *Surface) SetColor(c color.Color) {
	s.color = color.RGBAModel.Convert(c).(color.RGBA)
}

// SetBrushSize changes the brush width.
func (s *Surface) SetBrushSize(px int) error {
	if px < MinBrushSize || px > MaxBrushSize {
		return fmt.Errorf("%w: %d", ErrInvalidBrush, px)
	}
	s.brush = px
	return nil
}

// SetEraser turns the eraser modifier on or off.
func (s *Surface) SetEraser(on bool) { s.eraser = on }

// ToggleEraser flips the eraser modifier and returns the new value.
func (s *Surface) ToggleEraser() bool {
	s.eraser = !s.eraser
	return s.eraser
}

func (s *Surface) strokeColor() color.RGBA {
	if s.eraser {
		return s.background
	}
	return s.color
}

// Press starts a stroke at p. A stroke already in progress is discarded.
func (s *Surface) Press(p image.Point) {
	if s.state != StateIdle {
		s.log.Debug().Str("tool", s.tool.String()).Msg("press during stroke, discarding previous stroke")
		s.resetStroke()
	}
	s.state = StatePressed
	s.anchor = p
	s.last = p
}

// Drag moves the pointer to p while the button is held.
func (s *Surface) Drag(p image.Point) {
	if s.state == StateIdle {
		return
	}
	s.state = StateDragging

	if s.tool == ToolPen {
		s.commit(func(dc *gg.Context) { s.segment(dc, s.last, p) })
	} else {
		s.renderPreview(s.anchor, p)
	}
	s.last = p
}

// Release ends the stroke at p. Shape tools rasterize once from the anchor.
func (s *Surface) Release(p image.Point) {
	switch s.state {
	case StateIdle:
		return
	case StatePressed:
		if s.tool == ToolPen {
			s.commit(func(dc *gg.Context) { s.dot(dc, p) })
		} else if p != s.anchor {
			s.commitShape(s.anchor, p)
		}
	case StateDragging:
		if s.tool == ToolPen {
			if p != s.last {
				s.commit(func(dc *gg.Context) { s.segment(dc, s.last, p) })
			}
		} else {
			s.commitShape(s.anchor, p)
		}
	}
	s.resetStroke()
}

// Leave ends the stroke when the pointer leaves the surface. A dragged shape
// is committed at the last sample; a shape that never moved is discarded.
func (s *Surface) Leave() {
	if s.state == StateDragging && s.tool != ToolPen {
		s.commitShape(s.anchor, s.last)
	}
	s.resetStroke()
}

func (s *Surface) resetStroke() {
	s.state = StateIdle
	s.previewOn = false
}

// Preview returns the transient shape layer, or nil when nothing is being
// dragged. The image is owned by the surface and valid until the next call.
func (s *Surface) Preview() *image.RGBA {
	if !s.previewOn {
		return nil
	}
	return s.preview
}

// Canonical returns a copy of the canonical bitmap.
func (s *Surface) Canonical() *image.RGBA {
	out := image.NewRGBA(s.canonical.Bounds())
	copy(out.Pix, s.canonical.Pix)
	return out
}

// ExportBitmap returns the canonical bitmap for persistence and export.
func (s *Surface) ExportBitmap() *image.RGBA { return s.Canonical() }

// Composite returns the canonical bitmap with the preview drawn over it.
func (s *Surface) Composite() *image.RGBA {
	out := s.Canonical()
	if s.previewOn {
		draw.Draw(out, out.Bounds(), s.preview, image.Point{}, draw.Over)
	}
	return out
}

// Clear wipes all strokes.
func (s *Surface) Clear() {
	s.resetStroke()
	s.fill()
	s.touch()
}

// SetTheme switches the background and wipes all strokes.
func (s *Surface) SetTheme(name string) error {
	bg, err := ThemeBackground(name)
	if err != nil {
		return err
	}
	s.theme = name
	if !s.darkMode {
		s.background = bg
	}
	s.log.Debug().Str("theme", name).Msg("drawing theme changed, canvas cleared")
	s.Clear()
	return nil
}

// SetDarkMode switches to or from the dark background and wipes all strokes.
// The brush color follows: white on dark, black otherwise.
func (s *Surface) SetDarkMode(on bool) {
	s.darkMode = on
	if on {
		s.background = themeBackgrounds["dark"]
		s.color = white
	} else {
		s.background, _ = ThemeBackground(s.theme)
		s.color = black
	}
	s.log.Debug().Bool("dark", on).Msg("drawing dark mode changed, canvas cleared")
	s.Clear()
}

// Import replaces the canonical bitmap with img. When the sizes differ the
// image is resampled to fit if resample is set, otherwise ErrSizeMismatch is
// returned and nothing changes. Import restores content and does not mark the
// surface modified.
func (s *Surface) Import(img image.Image, resample bool) error {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, s.width, s.height))
	if b.Dx() == s.width && b.Dy() == s.height {
		draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	} else {
		if !resample {
			return fmt.Errorf("%w: got %dx%d, want %dx%d", ErrSizeMismatch, b.Dx(), b.Dy(), s.width, s.height)
		}
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
		s.log.Debug().
			Int("from_w", b.Dx()).Int("from_h", b.Dy()).
			Int("to_w", s.width).Int("to_h", s.height).
			Msg("resampled imported image")
	}
	s.resetStroke()
	s.canonical = dst
	return nil
}

func (s *Surface) fill() {
	draw.Draw(s.canonical, s.canonical.Bounds(), &image.Uniform{C: s.background}, image.Point{}, draw.Src)
}

func (s *Surface) touch() {
	s.modified = true
	s.modifiedAt = s.now()
}

func (s *Surface) context(img *image.RGBA) *gg.Context {
	dc := gg.NewContextForRGBA(img)
	dc.SetColor(s.strokeColor())
	dc.SetLineWidth(float64(s.brush))
	dc.SetLineCapRound()
	dc.SetLineJoinRound()
	return dc
}

func (s *Surface) commit(paint func(dc *gg.Context)) {
	paint(s.context(s.canonical))
	s.touch()
}

func (s *Surface) commitShape(from, to image.Point) {
	s.commit(func(dc *gg.Context) { s.shape(dc, from, to) })
	s.previewOn = false
}

func (s *Surface) renderPreview(from, to image.Point) {
	if s.preview == nil {
		s.preview = image.NewRGBA(image.Rect(0, 0, s.width, s.height))
	} else {
		clear(s.preview.Pix)
	}
	s.shape(s.context(s.preview), from, to)
	s.previewOn = true
}

// segment draws a capsule between two samples.
func (s *Surface) segment(dc *gg.Context, from, to image.Point) {
	if from == to {
		s.dot(dc, to)
		return
	}
	dc.DrawLine(px(from.X), px(from.Y), px(to.X), px(to.Y))
	dc.Stroke()
}

func (s *Surface) dot(dc *gg.Context, p image.Point) {
	dc.DrawCircle(px(p.X), px(p.Y), math.Max(float64(s.brush)/2, 0.5))
	dc.Fill()
}

func (s *Surface) shape(dc *gg.Context, from, to image.Point) {
	x0, y0 := px(min(from.X, to.X)), px(min(from.Y, to.Y))
	x1, y1 := px(max(from.X, to.X)), px(max(from.Y, to.Y))

	switch s.tool {
	case ToolLine:
		dc.DrawLine(px(from.X), px(from.Y), px(to.X), px(to.Y))
	case ToolRect:
		dc.DrawRectangle(x0, y0, x1-x0, y1-y0)
	case ToolOval:
		dc.DrawEllipse((x0+x1)/2, (y0+y1)/2, (x1-x0)/2, (y1-y0)/2)
	default:
		return
	}
	dc.Stroke()
}

// px maps an integer pixel coordinate to its center.
func px(v int) float64 { return float64(v) + 0.5 }
