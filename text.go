package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"inkpad/internal/document"
	"inkpad/internal/styles"
)

func (m *model) handleTextKey(msg tea.KeyMsg) {
	key := msg.String()
	if m.handleNavigation(key) {
		return
	}
	doc, v, ok := m.activeText()
	if !ok {
		return
	}

	switch key {
	case "esc":
		v.anchor = -1
	case "ctrl+a":
		v.anchor = 0
		v.cursor = doc.Len()
	case "enter":
		m.insertText("\n")
	case "tab":
		m.insertText("\t")
	case "backspace":
		m.deleteBackward()
	case "delete":
		m.deleteForward()
	case "ctrl+b":
		m.format("Bold", doc.ToggleBold)
	case "alt+i":
		m.format("Italic", doc.ToggleItalic)
	case "ctrl+u":
		m.format("Underline", doc.ToggleUnderline)
	case "alt+h":
		c := styles.Palette[m.highlightIndex%len(styles.Palette)]
		m.format("Highlight "+c.String(), func(start, end int) error { return doc.Highlight(start, end, c) })
	case "alt+shift+h", "alt+H":
		m.highlightIndex = (m.highlightIndex + 1) % len(styles.Palette)
		m.successMessage = "Highlight color " + styles.Palette[m.highlightIndex].String()
	case "alt+x":
		m.format("Highlight removed", doc.RemoveHighlight)
	case "alt+c":
		m.copySelection(false)
	case "ctrl+x":
		m.copySelection(true)
	case "ctrl+v":
		m.paste()
	case "ctrl+f":
		m.startPrompt(PromptFind, m.findQuery)
	case "alt+n":
		m.findNext()
	case "alt+g":
		m.startPrompt(PromptImage, "")
	case "f7":
		m.startSpellCheck()
	default:
		if msg.Alt {
			return
		}
		switch msg.Type {
		case tea.KeyRunes:
			m.insertText(string(msg.Runes))
		case tea.KeySpace:
			m.insertText(" ")
		}
	}
}

// target returns the selection, or the word under the cursor.
func (m *model) target(doc *document.Document, v *textView) (int, int, bool) {
	if start, end, ok := v.selection(); ok {
		return start, end, true
	}
	return doc.WordAt(v.cursor)
}

func (m *model) format(what string, apply func(start, end int) error) {
	doc, v, ok := m.activeText()
	if !ok {
		return
	}
	start, end, ok := m.target(doc, v)
	if !ok {
		m.errorMessage = "Select some text first"
		return
	}
	if err := apply(start, end); err != nil {
		m.errorMessage = err.Error()
		return
	}
	m.successMessage = what
}

func (m *model) insertText(s string) {
	doc, v, ok := m.activeText()
	if !ok || s == "" {
		return
	}
	start, end, sel := v.selection()
	if !sel {
		start, end = v.cursor, v.cursor
	}
	if err := doc.Replace(start, end, s); err != nil {
		m.errorMessage = err.Error()
		return
	}
	v.cursor = start + len([]rune(s))
	v.anchor = -1
	m.misspellings = nil
}

func (m *model) deleteBackward() {
	doc, v, ok := m.activeText()
	if !ok {
		return
	}
	if start, end, sel := v.selection(); sel {
		m.deleteSpan(doc, v, start, end)
		return
	}
	if v.cursor > 0 {
		m.deleteSpan(doc, v, v.cursor-1, v.cursor)
	}
}

func (m *model) deleteForward() {
	doc, v, ok := m.activeText()
	if !ok {
		return
	}
	if start, end, sel := v.selection(); sel {
		m.deleteSpan(doc, v, start, end)
		return
	}
	if v.cursor < doc.Len() {
		m.deleteSpan(doc, v, v.cursor, v.cursor+1)
	}
}

func (m *model) deleteSpan(doc *document.Document, v *textView, start, end int) {
	if err := doc.Delete(start, end); err != nil {
		m.errorMessage = err.Error()
		return
	}
	v.cursor = start
	v.anchor = -1
	m.misspellings = nil
}

func (m *model) copySelection(cut bool) {
	doc, v, ok := m.activeText()
	if !ok {
		return
	}
	start, end, sel := v.selection()
	if !sel {
		m.errorMessage = "Select some text first"
		return
	}
	text, err := doc.Slice(start, end)
	if err != nil {
		m.errorMessage = err.Error()
		return
	}
	if err := writeClipboardText(text); err != nil {
		m.log.Warn().Err(err).Msg("clipboard write failed")
		m.errorMessage = "Clipboard unavailable"
		return
	}
	if cut {
		m.deleteSpan(doc, v, start, end)
		m.successMessage = "Cut"
		return
	}
	m.successMessage = fmt.Sprintf("Copied %d characters", end-start)
}

func (m *model) paste() {
	text, err := readClipboardText()
	if err != nil {
		m.log.Warn().Err(err).Msg("clipboard read failed")
		m.errorMessage = "Clipboard unavailable"
		return
	}
	text = cleanClipboardText(text)
	if text == "" {
		return
	}
	m.insertText(text)
}

func (m *model) findNext() {
	doc, v, ok := m.activeText()
	if !ok {
		return
	}
	if m.findQuery == "" {
		m.startPrompt(PromptFind, "")
		return
	}
	hits := doc.Find(m.findQuery)
	if len(hits) == 0 {
		m.errorMessage = fmt.Sprintf("%q not found", m.findQuery)
		return
	}
	next := hits[0]
	for _, h := range hits {
		if h >= v.cursor {
			next = h
			break
		}
	}
	v.anchor = next
	v.cursor = next + len([]rune(m.findQuery))
	m.successMessage = fmt.Sprintf("%d match(es)", len(hits))
}
