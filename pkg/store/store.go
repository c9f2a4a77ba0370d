package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/alferrante/tinykind/pkg/logger"
	"github.com/alferrante/tinykind/pkg/models"
	"github.com/alferrante/tinykind/pkg/utils"
)

// DataFileName is the primary document inside the data directory.
const DataFileName = "tinykind.json"

var (
	// mu serializes every read-modify-write cycle. The storage model is
	// whole-document-in, whole-document-out; without this lock two
	// concurrent writers would silently drop each other's changes.
	mu       sync.Mutex
	dataDir  string
	dataFile string
	opened   bool

	// onWrite receives the marshaled document after every successful write.
	// The hook must not block; the backup manager spawns its own goroutine.
	onWrite func(doc []byte)

	// genSlug is replaceable in tests to force slug collisions.
	genSlug = utils.GenSlug
)

// Open prepares the store rooted at dir, creating the directory and an
// empty document when missing.
func Open(dir string) error {
	mu.Lock()
	defer mu.Unlock()
	if dir == "" {
		return fmt.Errorf("store: empty data dir")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Log.Error("store_open_failed", zap.String("dir", dir), zap.Error(err))
		return fmt.Errorf("create data dir %s: %w", dir, err)
	}
	dataDir = dir
	dataFile = filepath.Join(dir, DataFileName)
	if _, err := os.Stat(dataFile); os.IsNotExist(err) {
		empty := models.Document{Messages: []models.Message{}, Reactions: []models.Reaction{}}
		if err := persistLocked(&empty); err != nil {
			return err
		}
	} else if err != nil {
		return fmt.Errorf("stat %s: %w", dataFile, err)
	}
	opened = true
	logger.Log.Info("store_opened", zap.String("file", dataFile))
	return nil
}

// Close detaches the store. No file handles are held between operations, so
// this only flips readiness.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	opened = false
	logger.Log.Info("store_closed")
	return nil
}

// Ready reports whether the store is opened and ready.
func Ready() bool {
	mu.Lock()
	defer mu.Unlock()
	return opened
}

// DataFilePath returns the path of the primary document.
func DataFilePath() string {
	mu.Lock()
	defer mu.Unlock()
	return dataFile
}

// SetWriteHook registers a callback invoked with the marshaled document
// after every successful write. Used by the backup manager.
func SetWriteHook(fn func(doc []byte)) {
	mu.Lock()
	defer mu.Unlock()
	onWrite = fn
}

// loadLocked reads and normalizes the full document. Caller holds mu.
func loadLocked() (*models.Document, error) {
	if !opened {
		return nil, fmt.Errorf("store not opened; call store.Open first")
	}
	raw, err := os.ReadFile(dataFile)
	if err != nil {
		logger.Log.Error("store_read_failed", zap.String("file", dataFile), zap.Error(err))
		return nil, fmt.Errorf("read %s: %w", dataFile, err)
	}
	var doc models.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		logger.Log.Error("store_decode_failed", zap.String("file", dataFile), zap.Error(err))
		return nil, fmt.Errorf("decode %s: %w", dataFile, err)
	}
	doc.Normalize()
	return &doc, nil
}

// persistLocked writes the full document atomically (temp file + rename) and
// fires the write hook. Caller holds mu.
func persistLocked(doc *models.Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	tmp := dataFile + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		logger.Log.Error("store_write_failed", zap.String("file", tmp), zap.Error(err))
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, dataFile); err != nil {
		logger.Log.Error("store_rename_failed", zap.String("file", dataFile), zap.Error(err))
		return fmt.Errorf("rename %s: %w", dataFile, err)
	}
	if onWrite != nil {
		onWrite(data)
	}
	return nil
}

// ExportDocument returns the marshaled current document plus the live
// message count. Used by the manual backup path.
func ExportDocument() ([]byte, int, error) {
	mu.Lock()
	defer mu.Unlock()
	doc, err := loadLocked()
	if err != nil {
		return nil, 0, err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, 0, fmt.Errorf("marshal document: %w", err)
	}
	return data, countLive(doc), nil
}

// CountLiveMessages returns the number of live messages in the document.
func CountLiveMessages() (int, error) {
	mu.Lock()
	defer mu.Unlock()
	doc, err := loadLocked()
	if err != nil {
		return 0, err
	}
	return countLive(doc), nil
}

func countLive(doc *models.Document) int {
	n := 0
	for i := range doc.Messages {
		if doc.Messages[i].Live() {
			n++
		}
	}
	return n
}
