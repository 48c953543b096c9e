package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"inkpad/internal/config"
	"inkpad/internal/document"
	"inkpad/internal/tabs"
)

func (m *model) startPrompt(kind PromptKind, initial string) {
	m.mode = ModePrompt
	m.prompt = kind
	m.input = []rune(initial)
	m.inputCursor = len(m.input)
}

func (m *model) handlePromptKey(msg tea.KeyMsg) {
	switch msg.String() {
	case "esc":
		m.mode = ModeNormal
		m.input = nil
		return
	case "enter":
		m.mode = ModeNormal
		input := strings.TrimSpace(string(m.input))
		m.input = nil
		m.errorMessage = ""
		m.successMessage = ""
		m.submitPrompt(m.prompt, input)
		m.ensureCursorVisible()
		return
	case "backspace":
		if m.inputCursor > 0 {
			m.input = append(m.input[:m.inputCursor-1], m.input[m.inputCursor:]...)
			m.inputCursor--
		}
		return
	case "delete":
		if m.inputCursor < len(m.input) {
			m.input = append(m.input[:m.inputCursor], m.input[m.inputCursor+1:]...)
		}
		return
	case "left":
		m.inputCursor = max(m.inputCursor-1, 0)
		return
	case "right":
		m.inputCursor = min(m.inputCursor+1, len(m.input))
		return
	case "home", "ctrl+a":
		m.inputCursor = 0
		return
	case "end":
		m.inputCursor = len(m.input)
		return
	}

	var typed []rune
	switch msg.Type {
	case tea.KeyRunes:
		typed = msg.Runes
	case tea.KeySpace:
		typed = []rune{' '}
	default:
		return
	}
	rest := append(append([]rune{}, typed...), m.input[m.inputCursor:]...)
	m.input = append(m.input[:m.inputCursor], rest...)
	m.inputCursor += len(typed)
}

func (m *model) submitPrompt(kind PromptKind, input string) {
	var err error
	switch kind {
	case PromptRename:
		err = m.reg.Rename(m.reg.ActiveIndex(), input)
		if err == nil {
			m.successMessage = "Renamed to " + input
		}
	case PromptOpen:
		err = m.openFile(input)
	case PromptSaveAs:
		if input == "" {
			return
		}
		m.reg.Active().BackingPath = config.ExpandPath(input)
		m.save()
	case PromptExport:
		err = m.exportActive(input)
	case PromptLink:
		err = m.linkActive(input)
	case PromptImage:
		err = m.insertImage(input)
	case PromptFind:
		m.findQuery = input
		if input != "" {
			m.findNext()
		}
	}
	if err != nil {
		m.errorMessage = err.Error()
	}
}

// openFile opens a PNG as a drawing tab and anything else as a text tab.
func (m *model) openFile(input string) error {
	if input == "" {
		return nil
	}
	path := config.ExpandPath(input)

	if strings.EqualFold(filepath.Ext(path), ".png") {
		t := m.reg.NewDrawing()
		if err := t.Surface().LoadFile(path); err != nil {
			_ = m.reg.Close(m.reg.IndexOf(t))
			m.dropViews()
			return err
		}
		t.BackingPath = path
		_ = m.reg.Rename(m.reg.IndexOf(t), filepath.Base(path))
		t.Surface().MarkSaved()
		m.log.Info().Str("path", path).Msg("opened drawing")
		m.successMessage = "Opened " + t.Name
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", input, err)
	}
	t := m.reg.OpenText(path, string(data))
	m.log.Info().Str("path", path).Int("bytes", len(data)).Msg("opened file")
	m.successMessage = "Opened " + t.Name
	return nil
}

// linkActive pairs the active tab with the named tab, or unlinks it when name
// is empty.
func (m *model) linkActive(name string) error {
	t := m.reg.Active()
	if name == "" {
		if t.LinkedName == "" {
			return nil
		}
		m.successMessage = "Unlinked " + t.Name
		return m.reg.Unlink(t.Name)
	}
	other := m.reg.ByName(name)
	if other == nil {
		return fmt.Errorf("no tab named %q", name)
	}
	var err error
	if t.Kind == tabs.KindText {
		err = m.reg.Link(t.Name, other.Name)
	} else {
		err = m.reg.Link(other.Name, t.Name)
	}
	if errors.Is(err, tabs.ErrKindMismatch) {
		return errors.New("a link pairs one text tab with one drawing tab")
	}
	if err == nil {
		m.successMessage = fmt.Sprintf("Linked %s with %s", t.Name, other.Name)
	}
	return err
}

func (m *model) insertImage(input string) error {
	doc, v, ok := m.activeText()
	if !ok || input == "" {
		return nil
	}
	path := config.ExpandPath(input)
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("image %s: %w", input, err)
	}
	if _, _, sel := v.selection(); sel {
		m.deleteBackward()
	}
	if err := doc.InsertImage(v.cursor, path); err != nil {
		return err
	}
	v.cursor = min(v.cursor+len([]rune(document.ImageMarker))+2, doc.Len())
	m.misspellings = nil
	m.successMessage = "Inserted " + filepath.Base(path)
	return nil
}
