package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"inkpad/internal/config"
	"inkpad/internal/export"
	"inkpad/internal/tabs"
)

// save writes the active tab to its backing file, asking for one first when
// the tab has never been saved.
func (m *model) save() {
	t := m.reg.Active()
	if t.BackingPath == "" {
		ext := ".txt"
		if t.Kind == tabs.KindDrawing {
			ext = ".png"
		}
		m.startPrompt(PromptSaveAs, withExt(t.Name, ext))
		return
	}

	var err error
	switch t.Kind {
	case tabs.KindText:
		err = os.WriteFile(t.BackingPath, []byte(t.Document().Text()), 0o644)
	case tabs.KindDrawing:
		err = t.Surface().SaveFile(t.BackingPath)
	}
	if err != nil {
		m.log.Error().Err(err).Str("path", t.BackingPath).Msg("save failed")
		m.errorMessage = "Save failed: " + err.Error()
		return
	}
	t.MarkSaved(time.Now())
	m.log.Info().Str("tab", t.Name).Str("path", t.BackingPath).Msg("saved")
	m.successMessage = "Saved " + filepath.Base(t.BackingPath)
}

func (m *model) defaultExportName() string {
	t := m.reg.Active()
	base := t.Name
	if t.BackingPath != "" {
		base = strings.TrimSuffix(t.BackingPath, filepath.Ext(t.BackingPath))
	}
	if t.Kind == tabs.KindDrawing {
		return base + ".png"
	}
	return base + ".txt"
}

// exportActive writes the active tab to input. A drawing is captioned with
// its linked text; a text tab exported as PNG renders its linked drawing with
// the text as caption.
func (m *model) exportActive(input string) error {
	if input == "" {
		return nil
	}
	path := config.ExpandPath(input)
	t := m.reg.Active()

	var fallback export.Exporter = export.PlainText{}
	if t.Kind == tabs.KindDrawing {
		fallback = export.PNG{}
	}
	e := export.ForPath(path, fallback)

	var p export.Payload
	switch {
	case t.Kind == tabs.KindDrawing:
		caption := ""
		if partner, err := m.reg.Linked(t); err == nil {
			caption = partner.Document().Text()
		}
		p = export.FromSurface(t.Surface(), caption)
	case e.Extension() == ".png":
		partner, err := m.reg.Linked(t)
		if err != nil {
			return fmt.Errorf("export %s as image: link a drawing first", t.Name)
		}
		p = export.FromSurface(partner.Surface(), t.Document().Text())
	default:
		p = export.FromDocument(t.Document())
	}

	if err := export.WriteFile(path, e, p); err != nil {
		m.log.Error().Err(err).Str("path", path).Msg("export failed")
		return err
	}
	m.log.Info().Str("tab", t.Name).Str("format", e.Name()).Str("path", path).Msg("exported")
	m.successMessage = "Exported to " + filepath.Base(path)
	return nil
}
