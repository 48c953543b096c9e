package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"inkpad/internal/spell"
)

// loadDictionary loads the configured word lists. When no base list could be
// read the status line says so.
func (m *model) loadDictionary() {
	sc := m.cfg.Spell
	if !sc.Enabled {
		return
	}
	dict, err := spell.Load(sc.Dictionary, sc.PersonalDictionary, sc.MaxSuggestions)
	if err != nil {
		m.log.Warn().Err(err).Msg("spell check disabled")
		m.noteDictionary("Spell check off: " + err.Error())
		return
	}
	m.dict = dict
	if !dict.Available() {
		m.noteDictionary("Spell check off: word list not found at " + sc.Dictionary)
	}
}

// noteDictionary shows msg unless a session restore problem is already shown.
func (m *model) noteDictionary(msg string) {
	if m.errorMessage == "" {
		m.errorMessage = msg
	}
}

func (m *model) startSpellCheck() {
	if m.dict == nil || !m.dict.Available() {
		m.errorMessage = "Spell check unavailable: no word list at " + m.cfg.Spell.Dictionary
		return
	}
	m.spellIndex = 0
	if !m.refreshMisspellings() {
		m.successMessage = "No spelling errors"
		return
	}
	m.mode = ModeSpell
}

// refreshMisspellings rescans the active text and selects the current
// misspelling. It reports false when nothing is left.
func (m *model) refreshMisspellings() bool {
	doc, v, ok := m.activeText()
	if !ok {
		return false
	}
	m.misspellings = spell.Misspellings(m.dict, doc.Text())
	if len(m.misspellings) == 0 {
		m.suggestions = nil
		return false
	}
	if m.spellIndex >= len(m.misspellings) {
		m.spellIndex = 0
	}
	cur := m.misspellings[m.spellIndex]
	m.suggestions = m.dict.Suggest(cur.Word)
	v.anchor = cur.Start
	v.cursor = cur.End
	return true
}

func (m *model) finishSpellCheck(msg string) {
	m.mode = ModeNormal
	m.suggestions = nil
	if _, v, ok := m.activeText(); ok {
		v.anchor = -1
	}
	m.successMessage = msg
}

func (m *model) handleSpellKey(msg tea.KeyMsg) {
	if len(m.misspellings) == 0 {
		m.finishSpellCheck("Spell check complete")
		return
	}
	cur := m.misspellings[m.spellIndex]

	switch key := msg.String(); key {
	case "esc", "q":
		m.finishSpellCheck("")
		return
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		i := int(key[0] - '1')
		if i >= len(m.suggestions) {
			return
		}
		doc, _, ok := m.activeText()
		if !ok {
			m.finishSpellCheck("")
			return
		}
		if err := doc.Replace(cur.Start, cur.End, matchCase(cur.Word, m.suggestions[i])); err != nil {
			m.errorMessage = err.Error()
			return
		}
	case "a":
		m.dict.Add(cur.Word)
	case "i":
		m.dict.Ignore(cur.Word)
	case "n", "tab":
		m.spellIndex++
	default:
		return
	}

	if !m.refreshMisspellings() {
		m.finishSpellCheck("Spell check complete")
		return
	}
	m.ensureCursorVisible()
}

// matchCase capitalizes suggestion when word starts with a capital.
func matchCase(word, suggestion string) string {
	if word == "" || suggestion == "" {
		return suggestion
	}
	if w := word[0]; w >= 'A' && w <= 'Z' {
		if s := suggestion[0]; s >= 'a' && s <= 'z' {
			return string(s-'a'+'A') + suggestion[1:]
		}
	}
	return suggestion
}

func (m *model) spellStatus() string {
	if len(m.misspellings) == 0 {
		return ""
	}
	cur := m.misspellings[m.spellIndex]
	s := fmt.Sprintf("%q (%d/%d)", cur.Word, m.spellIndex+1, len(m.misspellings))
	for i, sug := range m.suggestions {
		if i == 9 {
			break
		}
		s += fmt.Sprintf("  %d:%s", i+1, sug)
	}
	return s + "  a:add i:ignore n:next esc:done"
}
