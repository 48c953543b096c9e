// Package session saves every open tab to a directory and restores it on the
// next start. A snapshot writes one sidecar file per tab, named after a fresh
// generation id, then a manifest that references them. Sidecars from the
// generation before are kept so a reader of the old manifest never finds its
// files missing; older ones are removed.
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"inkpad/internal/drawing"
	"inkpad/internal/logging"
	"inkpad/internal/tabs"
)

// ErrMissingSidecar is reported when a tab has no stored content.
var ErrMissingSidecar = errors.New("missing sidecar")

// TabError is a per-tab failure that did not stop the whole operation.
type TabError struct {
	Name string
	Err  error
}

func (e TabError) Error() string { return fmt.Sprintf("tab %q: %v", e.Name, e.Err) }

func (e TabError) Unwrap() error { return e.Err }

// Report summarises a snapshot or restore.
type Report struct {
	Generation string
	Tabs       int
	Failed     []TabError
}

// Err joins the per-tab failures, or returns nil.
func (r Report) Err() error {
	if len(r.Failed) == 0 {
		return nil
	}
	errs := make([]error, len(r.Failed))
	for i, f := range r.Failed {
		errs[i] = f
	}
	return errors.Join(errs...)
}

// Store persists sessions in a directory.
type Store struct {
	dir           string
	newGeneration func() string
	now           func() time.Time
	log           zerolog.Logger
}

// NewStore creates a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{
		dir:           dir,
		newGeneration: uuid.NewString,
		now:           time.Now,
		log:           logging.Component("session"),
	}
}

// Dir returns the session directory.
func (s *Store) Dir() string { return s.dir }

// ManifestPath returns the manifest location.
func (s *Store) ManifestPath() string { return filepath.Join(s.dir, ManifestName) }

// Load reads the current manifest.
func (s *Store) Load() (*Manifest, error) {
	return loadManifest(s.ManifestPath())
}

// Snapshot writes every tab of reg and a manifest referencing them. A tab
// whose sidecar cannot be written is recorded in the report and kept in the
// manifest without content; the other tabs are still saved. The returned
// error is set only when the manifest itself could not be written.
func (s *Store) Snapshot(reg *tabs.Registry) (Report, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return Report{}, fmt.Errorf("create session dir: %w", err)
	}

	previous := ""
	if old, err := s.Load(); err == nil {
		previous = old.Generation
	}

	gen := s.newGeneration()
	report := Report{Generation: gen}
	m := &Manifest{
		Version:            manifestVersion,
		Generation:         gen,
		SavedAt:            s.now(),
		UsedTextNumbers:    reg.UsedNumbers(tabs.KindText),
		UsedDrawingNumbers: reg.UsedNumbers(tabs.KindDrawing),
		ActiveIndex:        reg.ActiveIndex(),
	}

	for _, t := range reg.Tabs() {
		desc := TabDescriptor{
			Kind:           t.Kind.String(),
			Number:         t.Number,
			Name:           t.Name,
			LinkedName:     t.LinkedName,
			BackingPath:    t.BackingPath,
			Theme:          t.Theme,
			DarkMode:       t.DarkMode,
			LastSavedAt:    t.LastSavedAt,
			LastModifiedAt: t.ModifiedAt(),
		}

		name := sidecarName(gen, t)
		if err := s.writeSidecar(filepath.Join(s.dir, name), t); err != nil {
			s.log.Error().Err(err).Str("tab", t.Name).Msg("failed to write sidecar")
			report.Failed = append(report.Failed, TabError{Name: t.Name, Err: err})
		} else {
			desc.SidecarPath = name
		}

		m.Tabs = append(m.Tabs, desc)
		report.Tabs++
	}

	if err := saveManifest(s.ManifestPath(), m); err != nil {
		return report, fmt.Errorf("write manifest: %w", err)
	}

	s.prune(gen, previous)
	s.log.Debug().Str("generation", gen).Int("tabs", report.Tabs).Int("failed", len(report.Failed)).Msg("session saved")
	return report, nil
}

func sidecarName(gen string, t *tabs.Tab) string {
	ext := ".txt"
	if t.Kind == tabs.KindDrawing {
		ext = ".png"
	}
	return fmt.Sprintf("%s-%s-%d%s", gen, t.Kind, t.Number, ext)
}

func (s *Store) writeSidecar(path string, t *tabs.Tab) error {
	switch t.Kind {
	case tabs.KindText:
		return os.WriteFile(path, []byte(t.Document().Text()), 0o644)
	case tabs.KindDrawing:
		return t.Surface().SaveFile(path)
	default:
		return fmt.Errorf("unsupported tab kind %s", t.Kind)
	}
}

// prune removes sidecars that belong to neither keep generation.
func (s *Store) prune(keep ...string) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to list session dir")
		return
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		gen, ok := sidecarGeneration(e.Name())
		if !ok || contains(keep, gen) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, e.Name())); err != nil {
			s.log.Warn().Err(err).Str("file", e.Name()).Msg("failed to remove old sidecar")
		}
	}
}

// sidecarGeneration extracts the generation id from a sidecar file name.
func sidecarGeneration(name string) (string, bool) {
	if len(name) <= 36 || name[36] != '-' {
		return "", false
	}
	id, err := uuid.Parse(name[:36])
	if err != nil {
		return "", false
	}
	rest := name[37:]
	if !strings.HasPrefix(rest, "text-") && !strings.HasPrefix(rest, "drawing-") {
		return "", false
	}
	return id.String(), true
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// Restore replaces the tabs of reg with the saved session. It returns
// ErrNoManifest when nothing was saved, leaving reg untouched. Tab content is
// read lazily on first access; a tab whose sidecar is missing or unreadable
// comes back empty and is listed in the report.
func (s *Store) Restore(reg *tabs.Registry) (Report, error) {
	m, err := s.Load()
	if err != nil {
		return Report{}, err
	}

	report := Report{Generation: m.Generation}
	restored := make([]*tabs.Tab, 0, len(m.Tabs))
	for _, desc := range m.Tabs {
		kind, err := tabs.ParseKind(desc.Kind)
		if err != nil {
			s.log.Warn().Err(err).Str("tab", desc.Name).Msg("skipping tab")
			report.Failed = append(report.Failed, TabError{Name: desc.Name, Err: err})
			continue
		}

		t := &tabs.Tab{
			Kind:           kind,
			Number:         desc.Number,
			Name:           desc.Name,
			LinkedName:     desc.LinkedName,
			BackingPath:    desc.BackingPath,
			Theme:          desc.Theme,
			DarkMode:       desc.DarkMode,
			LastSavedAt:    desc.LastSavedAt,
			LastModifiedAt: desc.LastModifiedAt,
		}

		path := s.resolve(desc.SidecarPath)
		if path == "" {
			report.Failed = append(report.Failed, TabError{Name: desc.Name, Err: ErrMissingSidecar})
		} else if _, err := os.Stat(path); err != nil {
			report.Failed = append(report.Failed, TabError{Name: desc.Name, Err: fmt.Errorf("%w: %w", ErrMissingSidecar, err)})
		}
		t.SetLoader(sidecarLoader(kind, path))

		restored = append(restored, t)
	}

	if len(restored) == 0 {
		return report, fmt.Errorf("%w: no restorable tabs", ErrCorruptManifest)
	}

	active := min(max(m.ActiveIndex, 0), len(restored)-1)
	if err := reg.Restore(restored, m.UsedTextNumbers, m.UsedDrawingNumbers, active); err != nil {
		return report, fmt.Errorf("restore tabs: %w", err)
	}
	report.Tabs = len(restored)

	for _, f := range report.Failed {
		s.log.Warn().Err(f.Err).Str("tab", f.Name).Msg("tab restored without content")
	}
	return report, nil
}

func (s *Store) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(s.dir, p)
}

func sidecarLoader(kind tabs.Kind, path string) tabs.Loader {
	return func() (tabs.Content, error) {
		if path == "" {
			return tabs.Content{}, ErrMissingSidecar
		}
		switch kind {
		case tabs.KindDrawing:
			f, err := os.Open(path)
			if err != nil {
				return tabs.Content{}, err
			}
			defer f.Close()
			img, err := drawing.DecodePNG(f)
			if err != nil {
				return tabs.Content{}, err
			}
			return tabs.Content{Bitmap: img}, nil
		default:
			data, err := os.ReadFile(path)
			if err != nil {
				return tabs.Content{}, err
			}
			return tabs.Content{Text: string(data)}, nil
		}
	}
}
