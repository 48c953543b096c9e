package session

import (
	"encoding/json"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkpad/internal/tabs"
)

func testOptions() tabs.Options {
	opts := tabs.DefaultOptions()
	opts.DrawingWidth = 64
	opts.DrawingHeight = 48
	return opts
}

func fixedGenerations(ids ...string) func() string {
	i := 0
	return func() string {
		id := ids[i%len(ids)]
		i++
		return id
	}
}

// buildSession returns a registry with two text tabs and one drawing.
func buildSession(t *testing.T) *tabs.Registry {
	t.Helper()
	reg := tabs.New(testOptions())

	first := reg.Active()
	require.NoError(t, first.Document().Insert(0, "first document"))
	require.NoError(t, first.Document().ToggleBold(0, 5))

	second := reg.NewText()
	require.NoError(t, second.Document().Insert(0, "second\nwith two lines"))

	drw := reg.NewDrawing()
	s := drw.Surface()
	s.SetColor(color.RGBA{R: 200, G: 30, B: 90, A: 255})
	require.NoError(t, s.SetBrushSize(4))
	s.Press(image.Pt(5, 5))
	s.Drag(image.Pt(30, 20))
	s.Drag(image.Pt(60, 40))
	s.Release(image.Pt(60, 40))

	require.NoError(t, reg.Link(second.Name, drw.Name))
	return reg
}

func TestSnapshotRestore_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	orig := buildSession(t)

	report, err := store.Snapshot(orig)
	require.NoError(t, err)
	require.NoError(t, report.Err())
	assert.Equal(t, 3, report.Tabs)

	restored := tabs.New(testOptions())
	rreport, err := store.Restore(restored)
	require.NoError(t, err)
	require.NoError(t, rreport.Err())
	assert.Equal(t, report.Generation, rreport.Generation)

	want, got := orig.Tabs(), restored.Tabs()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].Kind, got[i].Kind, "tab %d", i)
		assert.Equal(t, want[i].Number, got[i].Number, "tab %d", i)
		assert.Equal(t, want[i].Name, got[i].Name, "tab %d", i)
		assert.Equal(t, want[i].LinkedName, got[i].LinkedName, "tab %d", i)
		assert.False(t, got[i].Loaded(), "tab %d should load lazily", i)

		switch want[i].Kind {
		case tabs.KindText:
			assert.Equal(t, want[i].Document().Text(), got[i].Document().Text())
		case tabs.KindDrawing:
			assert.Equal(t, want[i].Surface().Canonical().Pix, got[i].Surface().Canonical().Pix)
		}
	}
	assert.Equal(t, orig.ActiveIndex(), restored.ActiveIndex())
	assert.Equal(t, orig.UsedNumbers(tabs.KindText), restored.UsedNumbers(tabs.KindText))
	assert.Equal(t, orig.UsedNumbers(tabs.KindDrawing), restored.UsedNumbers(tabs.KindDrawing))

	partner, err := restored.Linked(got[1])
	require.NoError(t, err)
	assert.Same(t, got[2], partner)
}

func TestRestore_PreservesNumberGaps(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	reg := tabs.New(testOptions())
	reg.NewText()
	reg.NewText()
	require.NoError(t, reg.Close(1)) // frees 2, keeps 1 and 3

	_, err := store.Snapshot(reg)
	require.NoError(t, err)

	m, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, m.UsedTextNumbers)

	restored := tabs.New(testOptions())
	_, err = store.Restore(restored)
	require.NoError(t, err)
	assert.Equal(t, 2, restored.NewText().Number)
}

func TestRestore_NoManifest(t *testing.T) {
	store := NewStore(t.TempDir())
	reg := tabs.New(testOptions())

	_, err := store.Restore(reg)
	require.ErrorIs(t, err, ErrNoManifest)
	assert.Equal(t, 1, reg.Len())
	assert.Equal(t, "Untitled 1", reg.Active().Name)
}

func TestRestore_CorruptManifest(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ManifestName), []byte("{not json"), 0o644))

	_, err := NewStore(dir).Restore(tabs.New(testOptions()))
	require.ErrorIs(t, err, ErrCorruptManifest)
}

func TestRestore_MissingAndCorruptSidecars(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	reg := buildSession(t)
	report, err := store.Snapshot(reg)
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(dir, report.Generation+"-text-1.txt")))
	require.NoError(t, os.WriteFile(filepath.Join(dir, report.Generation+"-drawing-1.png"), []byte("not a png"), 0o644))

	restored := tabs.New(testOptions())
	rreport, err := store.Restore(restored)
	require.NoError(t, err)
	require.Len(t, rreport.Failed, 1)
	assert.Equal(t, "Untitled 1", rreport.Failed[0].Name)
	assert.ErrorIs(t, rreport.Err(), ErrMissingSidecar)

	got := restored.Tabs()
	require.Len(t, got, 3)
	assert.Equal(t, "", got[0].Document().Text())
	assert.Equal(t, "second\nwith two lines", got[1].Document().Text())

	blank := got[2].Surface().Canonical()
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, blank.RGBAAt(30, 20))
}

func TestSnapshot_ContinuesPastFailedTab(t *testing.T) {
	dir := t.TempDir()
	gen := "11111111-1111-1111-1111-111111111111"
	store := NewStore(dir)
	store.newGeneration = fixedGenerations(gen)

	reg := buildSession(t)
	// a directory in the way makes the second tab's sidecar unwritable
	require.NoError(t, os.Mkdir(filepath.Join(dir, gen+"-text-2.txt"), 0o755))

	report, err := store.Snapshot(reg)
	require.NoError(t, err)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, "Untitled 2", report.Failed[0].Name)
	assert.Equal(t, 3, report.Tabs)

	m, err := store.Load()
	require.NoError(t, err)
	require.Len(t, m.Tabs, 3)
	assert.NotEmpty(t, m.Tabs[0].SidecarPath)
	assert.Empty(t, m.Tabs[1].SidecarPath)
	assert.NotEmpty(t, m.Tabs[2].SidecarPath)
	assert.FileExists(t, filepath.Join(dir, m.Tabs[2].SidecarPath))
}

func TestSnapshot_KeepsPreviousGenerationOnly(t *testing.T) {
	dir := t.TempDir()
	gens := []string{
		"11111111-1111-1111-1111-111111111111",
		"22222222-2222-2222-2222-222222222222",
		"33333333-3333-3333-3333-333333333333",
	}
	store := NewStore(dir)
	store.newGeneration = fixedGenerations(gens...)
	reg := buildSession(t)

	for range gens {
		_, err := store.Snapshot(reg)
		require.NoError(t, err)
	}

	unrelated := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(unrelated, []byte("keep me"), 0o644))
	_, err := store.Snapshot(reg) // reuses gens[0]
	require.NoError(t, err)

	assert.FileExists(t, unrelated)
	assert.NoFileExists(t, filepath.Join(dir, gens[1]+"-text-1.txt"))
	assert.FileExists(t, filepath.Join(dir, gens[2]+"-text-1.txt"))
	assert.FileExists(t, filepath.Join(dir, gens[0]+"-drawing-1.png"))
}

func TestManifest_Format(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	_, err := store.Snapshot(buildSession(t))
	require.NoError(t, err)

	data, err := os.ReadFile(store.ManifestPath())
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, key := range []string{"usedTextNumbers", "usedDrawingNumbers", "tabs", "generation", "version"} {
		assert.Contains(t, raw, key)
	}

	tabsRaw := raw["tabs"].([]any)
	second := tabsRaw[1].(map[string]any)
	assert.Equal(t, "text", second["kind"])
	assert.Equal(t, "Drawing 1", second["linkedName"])
	assert.NotContains(t, second, "backingPath")
	assert.NotContains(t, second, "lastSavedAt")

	_, err = uuid.Parse(raw["generation"].(string))
	require.NoError(t, err)
}

func TestSidecarGeneration(t *testing.T) {
	id := "0a1b2c3d-0000-4000-8000-000000000000"
	tests := []struct {
		name   string
		file   string
		wantOK bool
	}{
		{"text sidecar", id + "-text-1.txt", true},
		{"drawing sidecar", id + "-drawing-12.png", true},
		{"manifest", ManifestName, false},
		{"manifest temp", ManifestName + ".tmp", false},
		{"foreign file with uuid prefix", id + "-notes.md", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen, ok := sidecarGeneration(tt.file)
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, id, gen)
			}
		})
	}
}

func TestAutosaver(t *testing.T) {
	a := NewAutosaver(0)
	assert.Equal(t, DefaultAutosaveInterval, a.Interval())

	require.True(t, a.Begin())
	assert.True(t, a.Pending())
	assert.False(t, a.Begin(), "second tick while pending is dropped")
	a.Done()

	assert.False(t, a.Pending())
	assert.True(t, a.Begin())
	a.Done()
	assert.Equal(t, 2, a.Runs())
	assert.Equal(t, 1, a.Skipped())
}

func TestSnapshotRestore_KeepsDarkModePerDrawing(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	reg := tabs.New(testOptions())
	drw := reg.NewDrawing()
	drw.Surface().Press(image.Pt(10, 10))
	drw.Surface().Release(image.Pt(10, 10))
	require.NoError(t, reg.SetActive(0))

	darkOpts := testOptions()
	darkOpts.DarkMode = true

	// Saved light, restored while dark mode is the default: stays light.
	_, err := store.Snapshot(reg)
	require.NoError(t, err)
	restored := tabs.New(darkOpts)
	_, err = store.Restore(restored)
	require.NoError(t, err)
	s := restored.Tabs()[1].Surface()
	assert.False(t, s.DarkMode())
	assert.Equal(t, s.Background(), s.Canonical().RGBAAt(0, 0), "eraser must match the canvas")
	assert.Equal(t, drw.Surface().Canonical().Pix, s.Canonical().Pix)

	// Toggled dark from a text tab: the drawing follows and is saved dark.
	assert.Equal(t, 1, reg.SetDarkMode(true))
	_, err = store.Snapshot(reg)
	require.NoError(t, err)
	m, err := store.Load()
	require.NoError(t, err)
	assert.True(t, m.Tabs[1].DarkMode)

	restored = tabs.New(testOptions())
	_, err = store.Restore(restored)
	require.NoError(t, err)
	s = restored.Tabs()[1].Surface()
	assert.True(t, s.DarkMode())
	assert.Equal(t, s.Background(), s.Canonical().RGBAAt(0, 0))
	assert.Equal(t, s.Background(), s.Canonical().RGBAAt(10, 10))
}
