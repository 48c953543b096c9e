// Package tabs owns the ordered set of open documents: their stable numbers,
// display names, links between text and drawing tabs, and which tab is active.
//
// Links are stored as names on both tabs and resolved through the registry,
// so either side can be closed without leaving a dangling pointer.
package tabs

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"inkpad/internal/logging"
)

var (
	// ErrInvalidIndex is returned for a tab position outside the registry.
	ErrInvalidIndex = errors.New("invalid tab index")

	// ErrNotFound is returned when a named or linked tab does not exist.
	ErrNotFound = errors.New("tab not found")

	// ErrKindMismatch is returned when a link joins the wrong kinds of tab.
	ErrKindMismatch = errors.New("tab kind mismatch")

	// ErrInvalidName is returned for an empty or duplicate tab name.
	ErrInvalidName = errors.New("invalid tab name")

	// ErrInvalidState is returned when restored tabs are inconsistent.
	ErrInvalidState = errors.New("invalid registry state")
)

// Registry is the ordered collection of tabs. It always holds at least one tab.
type Registry struct {
	opts   Options
	tabs   []*Tab
	active int
	used   map[Kind]map[int]bool
	log    zerolog.Logger
}

// New creates a registry holding one empty text tab.
func New(opts Options) *Registry {
	r := &Registry{
		opts: opts,
		used: map[Kind]map[int]bool{KindText: {}, KindDrawing: {}},
		log:  logging.Component("tabs"),
	}
	r.NewText()
	return r
}

// Options returns the defaults new content is created with.
func (r *Registry) Options() Options { return r.opts }

// SetOptions changes the defaults for content created from now on.
func (r *Registry) SetOptions(opts Options) { r.opts = opts }

// Allocate reserves the smallest positive number unused within kind.
func (r *Registry) Allocate(kind Kind) int {
	used := r.pool(kind)
	n := 1
	for used[n] {
		n++
	}
	used[n] = true
	return n
}

// Release returns number to kind's free pool. Other tabs keep their numbers.
func (r *Registry) Release(kind Kind, number int) {
	delete(r.pool(kind), number)
}

// UsedNumbers returns kind's reserved numbers in ascending order.
func (r *Registry) UsedNumbers(kind Kind) []int {
	used := r.pool(kind)
	out := make([]int, 0, len(used))
	for n := range used {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

func (r *Registry) pool(kind Kind) map[int]bool {
	p, ok := r.used[kind]
	if !ok {
		p = map[int]bool{}
		r.used[kind] = p
	}
	return p
}

// NewText appends an empty text tab named "Untitled N" and activates it.
func (r *Registry) NewText() *Tab {
	n := r.Allocate(KindText)
	return r.add(&Tab{
		Kind:   KindText,
		Number: n,
		Name:   r.uniqueName(fmt.Sprintf("Untitled %d", n)),
		Theme:  r.opts.Theme,
	})
}

// NewDrawing appends a blank drawing tab named "Drawing N" and activates it.
func (r *Registry) NewDrawing() *Tab {
	n := r.Allocate(KindDrawing)
	return r.add(&Tab{
		Kind:   KindDrawing,
		Number: n,
		Name:     r.uniqueName(fmt.Sprintf("Drawing %d", n)),
		Theme:    r.opts.Theme,
		DarkMode: r.opts.DarkMode,
	})
}

// SetDarkMode switches every drawing tab to or from the dark background.
// Like the surface change itself this clears each drawing, including tabs
// whose saved content has not been loaded yet. It returns the number of
// drawings changed.
func (r *Registry) SetDarkMode(on bool) int {
	r.opts.DarkMode = on
	changed := 0
	for _, t := range r.tabs {
		if t.Kind != KindDrawing || t.DarkMode == on {
			continue
		}
		t.DarkMode = on
		if t.surface != nil {
			t.surface.SetDarkMode(on)
		} else {
			t.loader = nil
			t.LastModifiedAt = time.Now()
		}
		changed++
	}
	r.log.Info().Bool("dark", on).Int("drawings", changed).Msg("dark mode changed, drawings cleared")
	return changed
}

// OpenText appends a text tab mirroring the file at path and activates it.
func (r *Registry) OpenText(path, content string) *Tab {
	t := &Tab{
		Kind:        KindText,
		Number:      r.Allocate(KindText),
		Name:        r.uniqueName(filepath.Base(path)),
		BackingPath: path,
		Theme:       r.opts.Theme,
	}
	t.SetLoader(func() (Content, error) { return Content{Text: content}, nil })
	r.add(t)
	return t
}

func (r *Registry) add(t *Tab) *Tab {
	r.attach(t)
	r.tabs = append(r.tabs, t)
	r.active = len(r.tabs) - 1
	r.log.Info().Str("tab", t.Name).Str("kind", t.Kind.String()).Msg("opened tab")
	return t
}

func (r *Registry) attach(t *Tab) {
	t.opts = &r.opts
	t.owner = r
}

func (r *Registry) uniqueName(base string) string {
	if r.ByName(base) == nil {
		return base
	}
	for i := 2; ; i++ {
		name := fmt.Sprintf("%s (%d)", base, i)
		if r.ByName(name) == nil {
			return name
		}
	}
}

// Close removes the tab at index, releasing its number and its partner's
// back-reference. Closing the last tab leaves a fresh empty text tab.
func (r *Registry) Close(index int) error {
	if err := r.checkIndex(index); err != nil {
		return err
	}
	t := r.tabs[index]

	r.Release(t.Kind, t.Number)
	if partner := r.ByName(t.LinkedName); partner != nil && partner.LinkedName == t.Name {
		partner.LinkedName = ""
	}
	r.tabs = append(r.tabs[:index], r.tabs[index+1:]...)
	t.owner = nil
	r.log.Info().Str("tab", t.Name).Msg("closed tab")

	switch {
	case index < r.active:
		r.active--
	case index == r.active:
		r.active = max(0, index-1)
	}

	if len(r.tabs) == 0 {
		r.NewText()
	}
	if r.active >= len(r.tabs) {
		r.active = len(r.tabs) - 1
	}
	return nil
}

// Reorder moves the tab at from to position to. The active tab stays active.
func (r *Registry) Reorder(from, to int) error {
	if err := r.checkIndex(from); err != nil {
		return err
	}
	if err := r.checkIndex(to); err != nil {
		return err
	}
	if from == to {
		return nil
	}

	t := r.tabs[from]
	r.tabs = append(r.tabs[:from], r.tabs[from+1:]...)
	r.tabs = append(r.tabs[:to], append([]*Tab{t}, r.tabs[to:]...)...)

	switch {
	case r.active == from:
		r.active = to
	case from < r.active && to >= r.active:
		r.active--
	case from > r.active && to <= r.active:
		r.active++
	}
	return nil
}

// Link pairs a text tab with a drawing tab. Any previous partner of either
// side loses its back-reference.
func (r *Registry) Link(textName, drawingName string) error {
	text, err := r.lookup(textName)
	if err != nil {
		return err
	}
	drw, err := r.lookup(drawingName)
	if err != nil {
		return err
	}
	if text.Kind != KindText || drw.Kind != KindDrawing {
		return fmt.Errorf("%w: link needs a text and a drawing tab, got %s and %s", ErrKindMismatch, text.Kind, drw.Kind)
	}

	r.dropReverse(text)
	r.dropReverse(drw)
	text.LinkedName = drw.Name
	drw.LinkedName = text.Name
	r.log.Info().Str("text", text.Name).Str("drawing", drw.Name).Msg("linked tabs")
	return nil
}

// Unlink clears the link of the named tab and of its partner.
func (r *Registry) Unlink(name string) error {
	t, err := r.lookup(name)
	if err != nil {
		return err
	}
	r.dropReverse(t)
	t.LinkedName = ""
	return nil
}

func (r *Registry) dropReverse(t *Tab) {
	if partner := r.ByName(t.LinkedName); partner != nil && partner.LinkedName == t.Name {
		partner.LinkedName = ""
	}
}

// Linked returns t's partner. A link to a tab that no longer exists, or that
// no longer points back, is cleared and reported as ErrNotFound.
func (r *Registry) Linked(t *Tab) (*Tab, error) {
	if t.LinkedName == "" {
		return nil, fmt.Errorf("%w: %s is not linked", ErrNotFound, t.Name)
	}
	partner := r.ByName(t.LinkedName)
	if partner == nil || partner.LinkedName != t.Name {
		r.log.Warn().Str("tab", t.Name).Str("linked", t.LinkedName).Msg("linked tab is gone, clearing link")
		stale := t.LinkedName
		t.LinkedName = ""
		return nil, fmt.Errorf("%w: linked tab %q", ErrNotFound, stale)
	}
	return partner, nil
}

// Rename changes the display name of the tab at index, keeping its partner's
// back-reference in step.
func (r *Registry) Rename(index int, name string) error {
	if err := r.checkIndex(index); err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidName)
	}
	t := r.tabs[index]
	if name == t.Name {
		return nil
	}
	if r.ByName(name) != nil {
		return fmt.Errorf("%w: %q already exists", ErrInvalidName, name)
	}

	if partner := r.ByName(t.LinkedName); partner != nil && partner.LinkedName == t.Name {
		partner.LinkedName = name
	}
	r.log.Info().Str("from", t.Name).Str("to", name).Msg("renamed tab")
	t.Name = name
	return nil
}

// Active returns the active tab.
func (r *Registry) Active() *Tab { return r.tabs[r.active] }

// ActiveIndex returns the position of the active tab.
func (r *Registry) ActiveIndex() int { return r.active }

// SetActive activates the tab at index.
func (r *Registry) SetActive(index int) error {
	if err := r.checkIndex(index); err != nil {
		return err
	}
	r.active = index
	return nil
}

// Get returns the tab at index.
func (r *Registry) Get(index int) (*Tab, error) {
	if err := r.checkIndex(index); err != nil {
		return nil, err
	}
	return r.tabs[index], nil
}

// IndexOf returns the position of t, or -1.
func (r *Registry) IndexOf(t *Tab) int {
	for i, tab := range r.tabs {
		if tab == t {
			return i
		}
	}
	return -1
}

// ByName returns the tab called name, or nil.
func (r *Registry) ByName(name string) *Tab {
	if name == "" {
		return nil
	}
	for _, t := range r.tabs {
		if t.Name == name {
			return t
		}
	}
	return nil
}

func (r *Registry) lookup(name string) (*Tab, error) {
	t := r.ByName(name)
	if t == nil {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return t, nil
}

// Len returns the number of tabs.
func (r *Registry) Len() int { return len(r.tabs) }

// Tabs returns the tabs in display order. The slice is a copy.
func (r *Registry) Tabs() []*Tab {
	out := make([]*Tab, len(r.tabs))
	copy(out, r.tabs)
	return out
}

func (r *Registry) checkIndex(index int) error {
	if index < 0 || index >= len(r.tabs) {
		return fmt.Errorf("%w: %d of %d", ErrInvalidIndex, index, len(r.tabs))
	}
	return nil
}

// Restore replaces every tab with tabs, in order, and reseeds the number
// pools from the given sets. Numbers held by a restored tab are kept reserved
// even when a set omits them. Nothing changes when the input is inconsistent.
func (r *Registry) Restore(tabs []*Tab, usedText, usedDrawing []int, active int) error {
	if len(tabs) == 0 {
		return fmt.Errorf("%w: no tabs", ErrInvalidState)
	}
	names := make(map[string]bool, len(tabs))
	numbers := map[Kind]map[int]bool{KindText: {}, KindDrawing: {}}
	for _, t := range tabs {
		if t.Kind != KindText && t.Kind != KindDrawing {
			return fmt.Errorf("%w: tab %q has kind %s", ErrInvalidState, t.Name, t.Kind)
		}
		if t.Number <= 0 || numbers[t.Kind][t.Number] {
			return fmt.Errorf("%w: %s number %d", ErrInvalidState, t.Kind, t.Number)
		}
		if t.Name == "" || names[t.Name] {
			return fmt.Errorf("%w: tab name %q", ErrInvalidState, t.Name)
		}
		numbers[t.Kind][t.Number] = true
		names[t.Name] = true
	}

	for _, n := range usedText {
		if n > 0 {
			numbers[KindText][n] = true
		}
	}
	for _, n := range usedDrawing {
		if n > 0 {
			numbers[KindDrawing][n] = true
		}
	}

	for _, t := range r.tabs {
		t.owner = nil
	}
	r.tabs = make([]*Tab, len(tabs))
	copy(r.tabs, tabs)
	for _, t := range r.tabs {
		r.attach(t)
	}
	r.used = numbers
	if active < 0 || active >= len(r.tabs) {
		active = 0
	}
	r.active = active
	return nil
}

func (t *Tab) logger() *zerolog.Logger {
	if t.owner != nil {
		return &t.owner.log
	}
	l := logging.Component("tabs")
	return &l
}
