package main

import "inkpad/internal/tabs"

func (m *model) undo() {
	doc, v, ok := m.activeText()
	if !ok {
		m.errorMessage = "Drawings have no undo"
		return
	}
	if !doc.Undo() {
		m.errorMessage = "Nothing to undo"
		return
	}
	m.afterHistory(v, doc.Len())
}

func (m *model) redo() {
	doc, v, ok := m.activeText()
	if !ok {
		m.errorMessage = "Drawings have no redo"
		return
	}
	if !doc.Redo() {
		m.errorMessage = "Nothing to redo"
		return
	}
	m.afterHistory(v, doc.Len())
}

func (m *model) afterHistory(v *textView, length int) {
	v.cursor = min(v.cursor, length)
	v.anchor = -1
	m.misspellings = nil
}

// dropViews forgets per-tab view state for tabs no longer in the registry.
func (m *model) dropViews() {
	live := make(map[*tabs.Tab]bool, m.reg.Len())
	for _, t := range m.reg.Tabs() {
		live[t] = true
	}
	for t := range m.texts {
		if !live[t] {
			delete(m.texts, t)
		}
	}
	for t := range m.drawings {
		if !live[t] {
			delete(m.drawings, t)
		}
	}
}
