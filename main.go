package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"inkpad/internal/config"
	"inkpad/internal/drawing"
	"inkpad/internal/logging"
	"inkpad/internal/session"
	"inkpad/internal/styles"
	"inkpad/internal/tabs"
)

func main() {
	ctx := context.Background()

	var logCloser func()
	activity := logging.NewActivityLog(logging.DefaultActivityCapacity)
	flags := &Flags{}

	app := &cli.Command{
		Name:  "inkpad",
		Usage: "Tabbed terminal editor for notes and drawings",
		Description: `inkpad keeps text documents and freehand drawings side by side in tabs.

Open tabs, their content and the links between notes and drawings are saved
to the session directory every few seconds and on exit, and come back the
next time inkpad starts.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("INKPAD_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to <data-dir>/inkpad.log)",
				Sources:     cli.EnvVars("INKPAD_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("INKPAD_CONFIG"),
				Value:       DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("INKPAD_DATA_DIR"),
				Value:       DefaultDataDir(),
				Destination: &flags.DataDir,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			// The terminal belongs to the UI, so logs always go to a file.
			logger, closer, err := logging.New(flags.LogLevel, flags.logPath())
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger.Hook(activity)
			logCloser = closer
			return ctx, nil
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := loadOrCreateConfig(flags)
			if err != nil {
				return err
			}

			m := newModel(cfg, flags.ConfigPath, activity)
			p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
			_, err = p.Run()
			return err
		},
	}

	exitCode := 0
	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "inkpad: %v\n", err)
		exitCode = 1
	}
	if logCloser != nil {
		logCloser()
	}
	os.Exit(exitCode)
}

// loadOrCreateConfig writes a default config file on first run, then loads it.
func loadOrCreateConfig(flags *Flags) (*config.Config, error) {
	if _, err := os.Stat(flags.ConfigPath); errors.Is(err, os.ErrNotExist) {
		if err := config.Save(flags.ConfigPath, config.DefaultConfig(flags.DataDir)); err != nil {
			log.Warn().Err(err).Str("path", flags.ConfigPath).Msg("could not write default config")
		}
	}

	cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func tabOptions(cfg *config.Config) tabs.Options {
	return tabs.Options{
		TextDefaults:  styles.Attribute{Family: cfg.Editor.FontFamily, SizePt: cfg.Editor.FontSize},
		DrawingWidth:  cfg.Drawing.Width,
		DrawingHeight: cfg.Drawing.Height,
		BrushSize:     cfg.Drawing.BrushSize,
		Theme:         cfg.Appearance.Theme,
		DarkMode:      cfg.Appearance.DarkMode,
	}
}

func newModel(cfg *config.Config, configPath string, activity *logging.ActivityLog) model {
	m := model{
		cfg:        cfg,
		configPath: configPath,
		reg:        tabs.New(tabOptions(cfg)),
		store:      session.NewStore(cfg.Session.Dir),
		autosave:   session.NewAutosaver(cfg.Session.AutosaveInterval),
		activity:   activity,
		log:        logging.Component("tui"),
		texts:      map[*tabs.Tab]*textView{},
		drawings:   map[*tabs.Tab]*drawView{},
	}

	report, err := m.store.Restore(m.reg)
	switch {
	case errors.Is(err, session.ErrNoManifest):
		m.log.Info().Msg("started new session")
	case err != nil:
		m.log.Warn().Err(err).Msg("could not restore session, starting fresh")
		m.errorMessage = "Session could not be restored"
	default:
		m.log.Info().Int("tabs", report.Tabs).Msg("restored session")
		if len(report.Failed) > 0 {
			m.errorMessage = fmt.Sprintf("%d tab(s) restored without content", len(report.Failed))
		}
	}

	m.loadDictionary()
	return m
}

type autosaveMsg struct{}

func (m model) scheduleAutosave() tea.Cmd {
	return tea.Tick(m.autosave.Interval(), func(time.Time) tea.Msg { return autosaveMsg{} })
}

func (m model) Init() tea.Cmd {
	return m.scheduleAutosave()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ensureCursorVisible()
		return m, nil

	case autosaveMsg:
		m.runAutosave()
		return m, m.scheduleAutosave()

	case tea.MouseMsg:
		if m.mode == ModeNormal && m.reg.Active().Kind == tabs.KindDrawing {
			m.handleMouse(msg)
		}
		return m, nil

	case tea.KeyMsg:
		cmd := m.handleKey(msg)
		return m, cmd
	}
	return m, nil
}

func (m *model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c", "ctrl+q":
		m.shutdown()
		return tea.Quit
	}

	switch m.mode {
	case ModeHelp:
		m.handleHelpKey(msg)
		return nil
	case ModeActivity:
		m.handleActivityKey(msg)
		return nil
	case ModePrompt:
		m.handlePromptKey(msg)
		return nil
	case ModeSpell:
		m.handleSpellKey(msg)
		return nil
	}

	m.errorMessage = ""
	m.successMessage = ""

	if m.handleGlobalKey(msg) {
		m.ensureCursorVisible()
		return nil
	}

	switch m.reg.Active().Kind {
	case tabs.KindText:
		m.handleTextKey(msg)
	case tabs.KindDrawing:
		m.handleDrawKey(msg)
	}
	m.ensureCursorVisible()
	return nil
}

// handleGlobalKey runs shortcuts that work on every kind of tab.
func (m *model) handleGlobalKey(msg tea.KeyMsg) bool {
	switch key := msg.String(); key {
	case "f1":
		m.mode = ModeHelp
		m.helpScroll = 0
	case "f3":
		m.mode = ModeActivity
		m.logScroll = 0
	case "ctrl+n":
		m.reg.NewText()
	case "ctrl+d":
		m.reg.NewDrawing()
	case "ctrl+w":
		m.closeActive()
	case "ctrl+pgup":
		m.switchTab(-1)
	case "ctrl+pgdown":
		m.switchTab(1)
	case "alt+left":
		m.moveTab(-1)
	case "alt+right":
		m.moveTab(1)
	case "alt+1", "alt+2", "alt+3", "alt+4", "alt+5", "alt+6", "alt+7", "alt+8", "alt+9":
		if err := m.reg.SetActive(int(key[len(key)-1] - '1')); err != nil {
			m.errorMessage = "No such tab"
		}
	case "ctrl+z":
		m.undo()
	case "ctrl+y":
		m.redo()
	case "ctrl+s":
		m.save()
	case "ctrl+o":
		m.startPrompt(PromptOpen, "")
	case "ctrl+e":
		m.startPrompt(PromptExport, m.defaultExportName())
	case "ctrl+l":
		m.startPrompt(PromptLink, m.reg.Active().LinkedName)
	case "f2":
		m.startPrompt(PromptRename, m.reg.Active().Name)
	case "ctrl+t":
		m.cycleTheme()
	case "alt+d":
		m.toggleDarkMode()
	default:
		return false
	}
	return true
}

func (m *model) switchTab(delta int) {
	n := m.reg.Len()
	_ = m.reg.SetActive(((m.reg.ActiveIndex()+delta)%n + n) % n)
}

func (m *model) moveTab(delta int) {
	from := m.reg.ActiveIndex()
	_ = m.reg.Reorder(from, from+delta)
}

func (m *model) closeActive() {
	t := m.reg.Active()
	if err := m.reg.Close(m.reg.ActiveIndex()); err != nil {
		m.errorMessage = err.Error()
		return
	}
	m.dropViews()
	m.successMessage = fmt.Sprintf("Closed %s", t.Name)
}

func (m *model) cycleTheme() {
	t := m.reg.Active()
	next := drawing.NextTheme(t.Theme)
	if t.Kind == tabs.KindDrawing {
		if err := t.Surface().SetTheme(next); err != nil {
			m.errorMessage = err.Error()
			return
		}
		m.log.Info().Str("tab", t.Name).Str("theme", next).Msg("theme changed, drawing cleared")
	}
	t.Theme = next
	m.successMessage = "Theme: " + next
}

func (m *model) toggleDarkMode() {
	m.cfg.Appearance.DarkMode = !m.cfg.Appearance.DarkMode
	dark := m.cfg.Appearance.DarkMode
	m.reg.SetOptions(tabOptions(m.cfg))
	m.reg.SetDarkMode(dark)

	if dark {
		m.successMessage = "Dark mode on"
	} else {
		m.successMessage = "Dark mode off"
	}
}

// runAutosave snapshots the live registry unless a snapshot is still pending.
func (m *model) runAutosave() {
	if !m.autosave.Begin() {
		return
	}
	defer m.autosave.Done()

	report, err := m.store.Snapshot(m.reg)
	if err != nil {
		m.log.Error().Err(err).Msg("autosave failed")
		m.errorMessage = "Autosave failed"
		return
	}
	if len(report.Failed) > 0 {
		m.errorMessage = fmt.Sprintf("Autosave skipped %d tab(s)", len(report.Failed))
	}
}

// shutdown saves the session, the config and the personal dictionary before exit.
func (m *model) shutdown() {
	if m.quitting {
		return
	}
	m.quitting = true
	m.runAutosave()
	if m.configPath != "" {
		if err := config.Save(m.configPath, *m.cfg); err != nil {
			m.log.Error().Err(err).Msg("failed to save config")
		}
	}
	if m.dict != nil {
		if err := m.dict.Save(); err != nil {
			m.log.Error().Err(err).Msg("failed to save personal dictionary")
		}
	}
	m.log.Info().Msg("session closed")
}
