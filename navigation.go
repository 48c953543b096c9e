package main

import (
	"sort"

	"inkpad/internal/document"
	"inkpad/internal/tabs"
)

// lineStarts returns the offset at which each line of text begins.
func lineStarts(text []rune) []int {
	starts := []int{0}
	for i, r := range text {
		if r == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// lineOf returns the index of the line containing off.
func lineOf(starts []int, off int) int {
	return sort.Search(len(starts), func(i int) bool { return starts[i] > off }) - 1
}

func lineEnd(starts []int, line, length int) int {
	if line+1 < len(starts) {
		return starts[line+1] - 1
	}
	return length
}

func (m *model) contentHeight() int {
	h := m.height - tabBarHeight - statusBarHeight
	if h < 1 {
		h = 1
	}
	return h
}

func (m *model) viewFor(t *tabs.Tab) *textView {
	v, ok := m.texts[t]
	if !ok {
		v = &textView{anchor: -1}
		m.texts[t] = v
	}
	if n := t.Document().Len(); v.cursor > n {
		v.cursor = n
	}
	if n := t.Document().Len(); v.anchor > n {
		v.anchor = -1
	}
	return v
}

// activeText returns the active text tab's document and view, or ok=false on
// a drawing tab.
func (m *model) activeText() (*document.Document, *textView, bool) {
	t := m.reg.Active()
	if t.Kind != tabs.KindText {
		return nil, nil, false
	}
	return t.Document(), m.viewFor(t), true
}

// handleNavigation moves the cursor; shifted keys extend the selection.
func (m *model) handleNavigation(key string) bool {
	doc, v, ok := m.activeText()
	if !ok {
		return false
	}

	extend := false
	switch key {
	case "shift+left", "shift+right", "shift+up", "shift+down", "shift+home", "shift+end":
		extend = true
		key = key[len("shift+"):]
	case "left", "right", "up", "down", "home", "end", "pgup", "pgdown", "ctrl+home", "ctrl+end":
	default:
		return false
	}

	if extend && v.anchor < 0 {
		v.anchor = v.cursor
	}
	if !extend {
		v.anchor = -1
	}

	text := []rune(doc.Text())
	starts := lineStarts(text)
	line := lineOf(starts, v.cursor)
	col := v.cursor - starts[line]

	moveLines := func(delta int) {
		target := min(max(line+delta, 0), len(starts)-1)
		v.cursor = min(starts[target]+col, lineEnd(starts, target, len(text)))
	}

	switch key {
	case "left":
		v.cursor = max(v.cursor-1, 0)
	case "right":
		v.cursor = min(v.cursor+1, len(text))
	case "up":
		moveLines(-1)
	case "down":
		moveLines(1)
	case "pgup":
		moveLines(-pageLines)
	case "pgdown":
		moveLines(pageLines)
	case "home":
		v.cursor = starts[line]
	case "end":
		v.cursor = lineEnd(starts, line, len(text))
	case "ctrl+home":
		v.cursor = 0
	case "ctrl+end":
		v.cursor = len(text)
	}
	return true
}

// ensureCursorVisible scrolls the active text tab so the cursor line is shown.
func (m *model) ensureCursorVisible() {
	doc, v, ok := m.activeText()
	if !ok {
		return
	}
	line := lineOf(lineStarts([]rune(doc.Text())), v.cursor)
	h := m.contentHeight()
	if line < v.scroll {
		v.scroll = line
	}
	if line >= v.scroll+h {
		v.scroll = line - h + 1
	}
}
