package backup

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/alferrante/tinykind/pkg/logger"
	"github.com/alferrante/tinykind/pkg/store"
	"github.com/alferrante/tinykind/pkg/telemetry"
)

const (
	snapshotPrefix = "tinykind-"
	snapshotSuffix = ".json"
	stampLayout    = "20060102T150405.000Z"
)

// Options configure the manager.
type Options struct {
	Dir      string
	Enabled  bool
	MaxCount int
	MaxAge   time.Duration
}

// Manager snapshots the primary document into a backup directory and prunes
// old snapshots by age and count.
type Manager struct {
	opts Options
}

// New builds a manager. Degenerate retention bounds disable the respective
// rule: MaxCount <= 0 means no count cutoff, MaxAge <= 0 means no age
// cutoff. The age rule always spares the newest snapshot so a backup set is
// never pruned to nothing.
func New(opts Options) *Manager {
	return &Manager{opts: opts}
}

// Enabled reports whether backup-on-write is configured.
func (m *Manager) Enabled() bool { return m.opts.Enabled }

// HandleWrite is the store write hook. It snapshots asynchronously; the
// triggering write has already committed, so nothing here may fail or block
// the caller.
func (m *Manager) HandleWrite(doc []byte) {
	if !m.opts.Enabled {
		return
	}
	go func() {
		if _, err := m.writeSnapshot(doc); err != nil {
			telemetry.BackupSnapshots.WithLabelValues("error").Inc()
			logger.Log.Warn("backup_snapshot_failed", zap.Error(err))
			return
		}
		telemetry.BackupSnapshots.WithLabelValues("ok").Inc()
		m.prune()
	}()
}

// ManualSnapshot synchronously snapshots the current document and prunes.
// Unlike the write hook this is a user-requested action expecting
// confirmation, so failures propagate.
func (m *Manager) ManualSnapshot() (path string, liveMessages int, err error) {
	doc, live, err := store.ExportDocument()
	if err != nil {
		return "", 0, err
	}
	path, err = m.writeSnapshot(doc)
	if err != nil {
		telemetry.BackupSnapshots.WithLabelValues("error").Inc()
		return "", 0, err
	}
	telemetry.BackupSnapshots.WithLabelValues("ok").Inc()
	m.prune()
	logger.Log.Info("backup_manual_snapshot", zap.String("path", path), zap.Int("messages", live))
	return path, live, nil
}

// Diagnostics reports the storage and backup state without side effects.
type Diagnostics struct {
	DataFile       string `json:"dataFile"`
	DataFileExists bool   `json:"dataFileExists"`
	BackupDir      string `json:"backupDir"`
	BackupEnabled  bool   `json:"backupEnabled"`
	SnapshotCount  int    `json:"snapshotCount"`
	LiveMessages   int    `json:"liveMessages"`
}

// Inspect returns the current diagnostics.
func (m *Manager) Inspect() (*Diagnostics, error) {
	d := &Diagnostics{
		DataFile:      store.DataFilePath(),
		BackupDir:     m.opts.Dir,
		BackupEnabled: m.opts.Enabled,
	}
	if _, err := os.Stat(d.DataFile); err == nil {
		d.DataFileExists = true
	}
	snaps, err := m.listSnapshots()
	if err == nil {
		d.SnapshotCount = len(snaps)
	}
	live, err := store.CountLiveMessages()
	if err != nil {
		return nil, err
	}
	d.LiveMessages = live
	return d, nil
}

// writeSnapshot persists the document bytes under a timestamped name.
func (m *Manager) writeSnapshot(doc []byte) (string, error) {
	if m.opts.Dir == "" {
		return "", fmt.Errorf("backup dir not configured")
	}
	if err := os.MkdirAll(m.opts.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create backup dir %s: %w", m.opts.Dir, err)
	}
	name := snapshotPrefix + time.Now().UTC().Format(stampLayout) + snapshotSuffix
	path := filepath.Join(m.opts.Dir, name)
	if err := os.WriteFile(path, doc, 0o644); err != nil {
		return "", fmt.Errorf("write snapshot %s: %w", path, err)
	}
	logger.Log.Debug("backup_snapshot_written", zap.String("path", path), zap.Int("bytes", len(doc)))
	return path, nil
}

type snapshot struct {
	path string
	mod  time.Time
}

func (m *Manager) listSnapshots() ([]snapshot, error) {
	entries, err := os.ReadDir(m.opts.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var snaps []snapshot
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasPrefix(name, snapshotPrefix) || !strings.HasSuffix(name, snapshotSuffix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		snaps = append(snaps, snapshot{path: filepath.Join(m.opts.Dir, name), mod: info.ModTime()})
	}
	// newest first
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].mod.After(snaps[j].mod) })
	return snaps, nil
}

// prune deletes snapshots that exceed the retention age or fall beyond the
// max-count cutoff. The two rules are evaluated independently per file.
func (m *Manager) prune() {
	snaps, err := m.listSnapshots()
	if err != nil {
		logger.Log.Warn("backup_prune_list_failed", zap.String("dir", m.opts.Dir), zap.Error(err))
		return
	}
	now := time.Now()
	removed := 0
	for i, s := range snaps {
		tooMany := m.opts.MaxCount > 0 && i >= m.opts.MaxCount
		tooOld := m.opts.MaxAge > 0 && i > 0 && now.Sub(s.mod) > m.opts.MaxAge
		if !tooMany && !tooOld {
			continue
		}
		if err := os.Remove(s.path); err != nil {
			logger.Log.Warn("backup_prune_remove_failed", zap.String("path", s.path), zap.Error(err))
			continue
		}
		removed++
	}
	if removed > 0 {
		logger.Log.Info("backup_pruned", zap.Int("removed", removed), zap.Int("kept", len(snaps)-removed))
	}
}
