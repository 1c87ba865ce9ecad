package storage

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"tradelink_go/internal/domain"
)

// Snapshot is a point-in-time record of what the monitor last saw.
type Snapshot struct {
	TsMilli      int64    `json:"ts"`
	RunID        string   `json:"run_id,omitempty"`
	State        string   `json:"state"`
	Container    string   `json:"container"`
	Connectivity string   `json:"connectivity"`
	GatewayURL   string   `json:"gateway_url,omitempty"`
	Connectors   []string `json:"connectors"`
	ConfigKeys   int      `json:"config_keys"`
}

// SnapshotManager writes status snapshots as JSON files under dir.
type SnapshotManager struct {
	dir string
}

// NewSnapshotManager creates a manager rooted at dir.
func NewSnapshotManager(dir string) *SnapshotManager {
	return &SnapshotManager{dir: dir}
}

// CreateSnapshot captures state at now. connectors is copied.
func CreateSnapshot(now time.Time, state domain.GatewayState, gatewayURL string, connectors []string, configKeys int) *Snapshot {
	names := make([]string, len(connectors))
	copy(names, connectors)

	return &Snapshot{
		TsMilli:      now.UnixMilli(),
		State:        state.String(),
		Container:    state.Container().String(),
		Connectivity: state.Connectivity().String(),
		GatewayURL:   gatewayURL,
		Connectors:   names,
		ConfigKeys:   configKeys,
	}
}

// Save writes snap to disk.
func (sm *SnapshotManager) Save(snap *Snapshot) error {
	if err := os.MkdirAll(sm.dir, 0755); err != nil {
		return fmt.Errorf("failed to create snapshot dir: %w", err)
	}

	path := filepath.Join(sm.dir, fmt.Sprintf("status_%d.json", snap.TsMilli))
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	// Write then rename so readers never see a partial file.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}

	slog.Debug("Snapshot saved", slog.String("state", snap.State), slog.String("path", path))
	return nil
}

// LoadLatest returns the newest snapshot, or nil if none exist.
func (sm *SnapshotManager) LoadLatest() (*Snapshot, error) {
	files, err := sm.list()
	if err != nil || len(files) == 0 {
		return nil, err
	}

	data, err := os.ReadFile(files[0].path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &snap, nil
}

// Cleanup removes all but the newest keepCount snapshots.
func (sm *SnapshotManager) Cleanup(keepCount int) error {
	files, err := sm.list()
	if err != nil {
		return err
	}

	for i := keepCount; i < len(files); i++ {
		if err := os.Remove(files[i].path); err != nil {
			slog.Warn("Failed to remove old snapshot", slog.String("path", files[i].path), slog.Any("error", err))
		}
	}
	return nil
}

type snapFile struct {
	path string
	ts   int64
}

// list returns snapshot files, newest first.
func (sm *SnapshotManager) list() ([]snapFile, error) {
	entries, err := os.ReadDir(sm.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read snapshot dir: %w", err)
	}

	var files []snapFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		var ts int64
		var ext string
		if n, _ := fmt.Sscanf(entry.Name(), "status_%d.%s", &ts, &ext); n != 2 || ext != "json" {
			continue
		}
		files = append(files, snapFile{path: filepath.Join(sm.dir, entry.Name()), ts: ts})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].ts > files[j].ts })
	return files, nil
}
