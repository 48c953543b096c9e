package main

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	xdraw "golang.org/x/image/draw"

	"inkpad/internal/drawing"
	"inkpad/internal/tabs"
)

const colorReset = "\x1b[0m"

// cellColors returns the escape that paints the upper half of a cell fg and
// the lower half bg.
func cellColors(fg, bg color.RGBA) string {
	return fmt.Sprintf("\x1b[38;2;%d;%d;%dm\x1b[48;2;%d;%d;%dm", fg.R, fg.G, fg.B, bg.R, bg.G, bg.B)
}

// viewport maps surface pixels onto terminal cells. Each cell shows two
// vertically stacked pixels of the scaled image.
type viewport struct {
	scale float64 // screen pixels per surface pixel
	cols  int
	rows  int
}

func (m *model) viewportFor(s *drawing.Surface) viewport {
	w, h := max(m.width, 1), m.contentHeight()
	scale := min(float64(w)/float64(s.Width()), float64(2*h)/float64(s.Height()))
	return viewport{
		scale: scale,
		cols:  max(int(float64(s.Width())*scale), 1),
		rows:  max(int(float64(s.Height())*scale/2), 1),
	}
}

// pixelAt converts a content-area cell to surface coordinates.
func (vp viewport) pixelAt(col, row int) (image.Point, bool) {
	if col < 0 || row < 0 || col >= vp.cols || row >= vp.rows {
		return image.Point{}, false
	}
	return image.Pt(int((float64(col)+0.5)/vp.scale), int((float64(2*row)+1)/vp.scale)), true
}

func (m *model) drawViewFor(t *tabs.Tab) *drawView {
	v, ok := m.drawings[t]
	if !ok {
		v = &drawView{lastCellX: -1, lastCellY: -1}
		m.drawings[t] = v
	}
	return v
}

// renderDrawing draws the surface and any shape preview with half blocks.
func (m *model) renderDrawing(t *tabs.Tab) []string {
	s := t.Surface()
	vp := m.viewportFor(s)

	scaled := image.NewRGBA(image.Rect(0, 0, vp.cols, vp.rows*2))
	xdraw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), s.Composite(), image.Rect(0, 0, s.Width(), s.Height()), xdraw.Src, nil)

	lines := make([]string, vp.rows)
	for row := range lines {
		var b strings.Builder
		current := ""
		for col := 0; col < vp.cols; col++ {
			code := cellColors(scaled.RGBAAt(col, 2*row), scaled.RGBAAt(col, 2*row+1))
			if code != current {
				b.WriteString(code)
				current = code
			}
			b.WriteRune('▀')
		}
		b.WriteString(colorReset)
		lines[row] = b.String()
	}
	return lines
}

func (m *model) handleMouse(msg tea.MouseMsg) {
	t := m.reg.Active()
	s := t.Surface()
	v := m.drawViewFor(t)
	vp := m.viewportFor(s)

	p, inside := vp.pixelAt(msg.X, msg.Y-tabBarHeight)
	if !inside {
		if s.State() != drawing.StateIdle {
			s.Leave()
		}
		return
	}

	switch msg.Type {
	case tea.MouseLeft:
		if s.State() == drawing.StateIdle {
			s.Press(p)
		} else if msg.X != v.lastCellX || msg.Y != v.lastCellY {
			s.Drag(p)
		}
	case tea.MouseMotion:
		if s.State() != drawing.StateIdle && (msg.X != v.lastCellX || msg.Y != v.lastCellY) {
			s.Drag(p)
		}
	case tea.MouseRelease:
		s.Release(p)
	default:
		return
	}
	v.lastCellX, v.lastCellY = msg.X, msg.Y
}

func (m *model) handleDrawKey(msg tea.KeyMsg) {
	t := m.reg.Active()
	s := t.Surface()
	v := m.drawViewFor(t)

	switch msg.String() {
	case "p":
		s.SetTool(drawing.ToolPen)
	case "l":
		s.SetTool(drawing.ToolLine)
	case "r":
		s.SetTool(drawing.ToolRect)
	case "o":
		s.SetTool(drawing.ToolOval)
	case "e":
		if s.ToggleEraser() {
			m.successMessage = "Eraser on"
		} else {
			m.successMessage = "Eraser off"
		}
	case "+", "=":
		m.setBrush(s, s.BrushSize()+1)
	case "-":
		m.setBrush(s, s.BrushSize()-1)
	case "c":
		v.colorIndex = (v.colorIndex + 1) % len(brushColors)
		c := brushColors[v.colorIndex]
		s.SetColor(color.RGBA{R: c.R, G: c.G, B: c.B, A: 255})
		s.SetEraser(false)
		m.successMessage = "Color " + c.String()
	case "x":
		s.Clear()
		m.log.Info().Str("tab", t.Name).Msg("drawing cleared")
		m.successMessage = "Cleared"
	case "esc":
		s.Leave()
	}
}

func (m *model) setBrush(s *drawing.Surface, px int) {
	if err := s.SetBrushSize(px); err != nil {
		m.errorMessage = fmt.Sprintf("Brush size must be %d-%d", drawing.MinBrushSize, drawing.MaxBrushSize)
		return
	}
	m.successMessage = fmt.Sprintf("Brush %dpx", px)
}
