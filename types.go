package main

import (
	"github.com/rs/zerolog"

	"inkpad/internal/config"
	"inkpad/internal/logging"
	"inkpad/internal/session"
	"inkpad/internal/spell"
	"inkpad/internal/tabs"
)

// textView is the per-tab cursor state of a text tab.
type textView struct {
	cursor int
	anchor int // selection anchor, -1 when nothing is selected
	scroll int // first visible line
}

func (v *textView) selection() (int, int, bool) {
	if v.anchor < 0 || v.anchor == v.cursor {
		return 0, 0, false
	}
	return min(v.anchor, v.cursor), max(v.anchor, v.cursor), true
}

// drawView is the per-tab state of a drawing tab in the terminal.
type drawView struct {
	colorIndex int
	lastCellX  int
	lastCellY  int
}

type model struct {
	width  int
	height int

	cfg        *config.Config
	configPath string
	reg        *tabs.Registry
	store      *session.Store
	autosave   *session.Autosaver
	dict       *spell.Dictionary
	activity   *logging.ActivityLog
	log        zerolog.Logger

	texts    map[*tabs.Tab]*textView
	drawings map[*tabs.Tab]*drawView

	mode        Mode
	prompt      PromptKind
	input       []rune
	inputCursor int
	helpScroll  int
	logScroll   int

	highlightIndex int
	findQuery      string

	misspellings []spell.Misspelling
	spellIndex   int
	suggestions  []string

	errorMessage   string
	successMessage string
	quitting       bool
}
