package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"inkpad/internal/document"
	"inkpad/internal/styles"
	"inkpad/internal/tabs"
)

var (
	tabStyle       = lipgloss.NewStyle().Padding(0, 1)
	activeTabStyle = lipgloss.NewStyle().Padding(0, 1).Bold(true).Reverse(true)
	statusStyle    = lipgloss.NewStyle().Faint(true)
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	successStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	cursorStyle    = lipgloss.NewStyle().Reverse(true)
	titleStyle     = lipgloss.NewStyle().Bold(true).Underline(true)
)

const tabWidth = 4

var helpLines = []string{
	"Tabs",
	"  ctrl+n  new text tab          ctrl+d  new drawing tab",
	"  ctrl+w  close tab             f2      rename tab",
	"  ctrl+pgup/pgdown  switch      alt+left/right  move tab",
	"  alt+1..9  jump to tab         ctrl+l  link text and drawing",
	"",
	"Files",
	"  ctrl+o  open (.png opens as a drawing)",
	"  ctrl+s  save                  ctrl+e  export (.txt or .png)",
	"",
	"Text",
	"  shift+arrows  select          ctrl+a  select all",
	"  ctrl+b  bold   alt+i  italic  ctrl+u  underline",
	"  alt+h  highlight   alt+H  next highlight color   alt+x  remove highlight",
	"  alt+c  copy   ctrl+x  cut     ctrl+v  paste",
	"  ctrl+z  undo   ctrl+y  redo   ctrl+f  find   alt+n  find next",
	"  alt+g  insert image           f7      spell check",
	"",
	"Drawing",
	"  mouse drag  draw              p/l/r/o  pen, line, rectangle, oval",
	"  e  eraser   c  next color     +/-  brush size   x  clear",
	"",
	"Appearance",
	"  ctrl+t  next theme (clears the drawing)",
	"  alt+d   dark mode",
	"",
	"  f3  activity log   f1  this help   ctrl+q  quit",
}

func (m model) View() string {
	if m.quitting || m.width == 0 {
		return ""
	}
	switch m.mode {
	case ModeHelp:
		return m.scrollView("inkpad help", helpLines, m.helpScroll)
	case ModeActivity:
		entries := m.activity.Entries()
		if len(entries) == 0 {
			entries = []string{"(nothing yet)"}
		}
		return m.scrollView("Activity", entries, m.logScroll)
	}

	var b strings.Builder
	b.WriteString(m.renderTabBar(m.width))
	b.WriteString("\n")

	t := m.reg.Active()
	var body []string
	if t.Kind == tabs.KindDrawing {
		body = m.renderDrawing(t)
	} else {
		body = m.renderText(t)
	}
	for i := 0; i < m.contentHeight(); i++ {
		if i < len(body) {
			b.WriteString(body[i])
		}
		b.WriteString("\n")
	}
	b.WriteString(m.renderStatus(t))
	return b.String()
}

func (m model) scrollView(title string, lines []string, scroll int) string {
	h := max(m.height-2, 1)
	scroll = min(max(scroll, 0), max(len(lines)-h, 0))

	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	for i := scroll; i < len(lines) && i < scroll+h; i++ {
		b.WriteString(lines[i])
		b.WriteString("\n")
	}
	b.WriteString(statusStyle.Render("up/down scroll  esc close"))
	return b.String()
}

func (m *model) scrollBy(scroll *int, delta, total int) {
	limit := max(total-max(m.height-2, 1), 0)
	*scroll = min(max(*scroll+delta, 0), limit)
}

func (m *model) handleHelpKey(msg tea.KeyMsg) {
	switch msg.String() {
	case "esc", "f1", "q":
		m.mode = ModeNormal
	case "up", "k":
		m.scrollBy(&m.helpScroll, -1, len(helpLines))
	case "down", "j":
		m.scrollBy(&m.helpScroll, 1, len(helpLines))
	}
}

func (m *model) handleActivityKey(msg tea.KeyMsg) {
	total := len(m.activity.Entries())
	switch msg.String() {
	case "esc", "f3", "q":
		m.mode = ModeNormal
	case "up", "k":
		m.scrollBy(&m.logScroll, -1, total)
	case "down", "j":
		m.scrollBy(&m.logScroll, 1, total)
	case "end", "G":
		m.scrollBy(&m.logScroll, total, total)
	}
}

// renderTabBar lists the open tabs, marking the active one, unsaved changes
// with * and linked tabs with ↔.
func (m model) renderTabBar(width int) string {
	var parts []string
	for i, t := range m.reg.Tabs() {
		label := t.Name
		if t.Kind == tabs.KindDrawing {
			label = "✎ " + label
		}
		if t.Modified() {
			label += "*"
		}
		if t.LinkedName != "" {
			label += " ↔"
		}
		if i == m.reg.ActiveIndex() {
			parts = append(parts, activeTabStyle.Render(label))
		} else {
			parts = append(parts, tabStyle.Render(label))
		}
	}
	bar := lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	return lipgloss.NewStyle().MaxWidth(width).Render(bar)
}

func attrStyle(a styles.Attribute) lipgloss.Style {
	s := lipgloss.NewStyle().Bold(a.Bold()).Italic(a.Italic()).Underline(a.Underline)
	if a.Highlight != nil {
		s = s.Background(lipgloss.Color(a.Highlight.String())).Foreground(lipgloss.Color("0"))
	}
	return s
}

// renderText draws the visible lines of a text tab with its formatting,
// selection and cursor.
func (m model) renderText(t *tabs.Tab) []string {
	doc := t.Document()
	v := m.viewFor(t)
	text := []rune(doc.Text())
	starts := lineStarts(text)
	attrs := runIndex(doc, len(text))
	selStart, selEnd, hasSel := v.selection()

	cursorLine := lineOf(starts, v.cursor)
	hoff := max(displayCol(text, starts[cursorLine], v.cursor)-m.width+1, 0)

	var lines []string
	for line := v.scroll; line < len(starts) && len(lines) < m.contentHeight(); line++ {
		end := lineEnd(starts, line, len(text))
		var b strings.Builder
		col := 0
		emit := func(s string, st lipgloss.Style) {
			for _, r := range s {
				if col >= hoff && col-hoff < m.width {
					b.WriteString(st.Render(string(r)))
				}
				col++
			}
		}
		for off := starts[line]; off < end; off++ {
			st := attrStyle(attrs[off])
			if (hasSel && off >= selStart && off < selEnd) || off == v.cursor {
				st = st.Reverse(true)
			}
			if text[off] == '\t' {
				emit(strings.Repeat(" ", tabWidth-col%tabWidth), st)
				continue
			}
			emit(string(text[off]), st)
		}
		if line == cursorLine && v.cursor == end {
			emit(" ", cursorStyle)
		}
		lines = append(lines, b.String())
	}
	return lines
}

// runIndex expands the document's style runs into one attribute per rune.
func runIndex(doc *document.Document, n int) []styles.Attribute {
	out := make([]styles.Attribute, n)
	for _, r := range doc.Runs() {
		for i := r.Start; i < r.End && i < n; i++ {
			out[i] = r.Attr
		}
	}
	return out
}

func displayCol(text []rune, from, to int) int {
	col := 0
	for _, r := range text[from:to] {
		if r == '\t' {
			col += tabWidth - col%tabWidth
			continue
		}
		col++
	}
	return col
}

func (m model) renderStatus(t *tabs.Tab) string {
	switch {
	case m.mode == ModePrompt:
		before := string(m.input[:m.inputCursor])
		at, after := " ", ""
		if m.inputCursor < len(m.input) {
			at = string(m.input[m.inputCursor])
			after = string(m.input[m.inputCursor+1:])
		}
		return m.prompt.label() + ": " + before + cursorStyle.Render(at) + after
	case m.mode == ModeSpell:
		return m.spellStatus()
	case m.errorMessage != "":
		return errorStyle.Render(m.errorMessage)
	case m.successMessage != "":
		return successStyle.Render(m.successMessage)
	}

	var info string
	if t.Kind == tabs.KindDrawing {
		s := t.Surface()
		info = fmt.Sprintf("%s  %dpx  %s  %s", s.Tool(), s.BrushSize(), colorHex(s.Color().R, s.Color().G, s.Color().B), t.Theme)
		if s.Eraser() {
			info += "  eraser"
		}
	} else {
		st := t.Document().Stats(m.viewFor(t).cursor)
		info = fmt.Sprintf("Words: %d  Characters: %d  Lines: %d  Ln %d, Col %d", st.Words, st.Characters, st.Lines, st.Line, st.Column+1)
	}
	return statusStyle.Render(info + "  F1 help")
}

func colorHex(r, g, b uint8) string {
	return styles.Color{R: r, G: g, B: b}.String()
}
