package telemetry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds the pet roster so a session can resume where it stopped.
type Snapshot struct {
	Version int   `json:"version"`
	Seed    int64 `json:"seed"`
	Tick    int32 `json:"tick"`

	Pets []PetState `json:"pets"`

	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

// PetState holds what is needed to bring one pet back. Transient motion such as
// a jump in flight or a pending delay is not kept; a restored pet falls to its floor.
type PetState struct {
	Name   string  `json:"name"`
	Level  int     `json:"level"`
	Stage  int     `json:"stage"`
	Facing int     `json:"facing"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// ErrSnapshotVersion is returned when a snapshot was written by a newer format.
var ErrSnapshotVersion = errors.New("unsupported snapshot version")

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	// Build filename
	name := fmt.Sprintf("pets_%d", snapshot.Tick)
	if snapshot.Bookmark != nil {
		name = fmt.Sprintf("pets_%d_%s", snapshot.Tick, snapshot.Bookmark.Type)
	}
	path := filepath.Join(dir, name+".json")

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snapshot.Version > SnapshotVersion {
		return nil, fmt.Errorf("%w: %d", ErrSnapshotVersion, snapshot.Version)
	}

	return &snapshot, nil
}
