package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ManifestName is the file name of the manifest inside the session directory.
const ManifestName = "session.json"

const manifestVersion = 1

var (
	// ErrNoManifest is returned by Restore when no session has been saved.
	ErrNoManifest = errors.New("no session manifest")

	// ErrCorruptManifest is returned when the manifest cannot be decoded.
	ErrCorruptManifest = errors.New("corrupt session manifest")
)

// Manifest is the root JSON structure stored on disk.
type Manifest struct {
	Version            int             `json:"version"`
	Generation         string          `json:"generation"`
	SavedAt            time.Time       `json:"savedAt"`
	UsedTextNumbers    []int           `json:"usedTextNumbers"`
	UsedDrawingNumbers []int           `json:"usedDrawingNumbers"`
	ActiveIndex        int             `json:"activeIndex"`
	Tabs               []TabDescriptor `json:"tabs"`
}

// TabDescriptor mirrors one tab. SidecarPath is relative to the session
// directory unless absolute, and empty when the content could not be written.
type TabDescriptor struct {
	Kind           string    `json:"kind"`
	Number         int       `json:"number"`
	Name           string    `json:"name"`
	SidecarPath    string    `json:"sidecarPath"`
	LinkedName     string    `json:"linkedName,omitempty"`
	BackingPath    string    `json:"backingPath,omitempty"`
	Theme          string    `json:"theme,omitempty"`
	DarkMode       bool      `json:"darkMode,omitempty"`
	LastSavedAt    time.Time `json:"lastSavedAt,omitzero"`
	LastModifiedAt time.Time `json:"lastModifiedAt,omitzero"`
}

// loadManifest reads the manifest at path.
func loadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoManifest
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrNoManifest
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptManifest, err)
	}
	if m.Version > manifestVersion {
		return nil, fmt.Errorf("%w: version %d is newer than %d", ErrCorruptManifest, m.Version, manifestVersion)
	}
	return &m, nil
}

// saveManifest writes the manifest to path atomically.
func saveManifest(path string, m *Manifest) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}

	return os.Rename(tmp, path)
}
