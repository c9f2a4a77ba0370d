package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alferrante/tinykind/pkg/models"
	"github.com/alferrante/tinykind/pkg/store"
)

// tinykind-inspect prints offline stats about a data directory: message and
// reaction counts from the primary document plus the snapshots next to it.
func main() {
	var data string
	flag.StringVar(&data, "data", "./data", "tinykind data directory to inspect")
	flag.Parse()

	dataFile := filepath.Join(data, store.DataFileName)
	raw, err := os.ReadFile(dataFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot read %s: %v\n", dataFile, err)
		os.Exit(1)
	}
	var doc models.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		fmt.Fprintf(os.Stderr, "document does not parse: %v\n", err)
		os.Exit(1)
	}
	doc.Normalize()

	live, deleted := 0, 0
	for i := range doc.Messages {
		if doc.Messages[i].Live() {
			live++
		} else {
			deleted++
		}
	}
	fmt.Printf("document:  %s (%d bytes)\n", dataFile, len(raw))
	fmt.Printf("messages:  %d live, %d deleted\n", live, deleted)
	fmt.Printf("reactions: %d\n", len(doc.Reactions))

	backups := filepath.Join(data, "backups")
	entries, err := os.ReadDir(backups)
	if err != nil {
		fmt.Printf("backups:   none (%s not readable)\n", backups)
		return
	}
	fmt.Printf("backups:   %d entries in %s\n", len(entries), backups)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if info, err := e.Info(); err == nil {
			fmt.Printf("  %s  %d bytes  %s\n", e.Name(), info.Size(), info.ModTime().UTC().Format("2006-01-02 15:04:05"))
		}
	}
}
