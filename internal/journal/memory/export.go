package memory

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/qc-advancedmedic/nui/internal/journal"
)

// Export is the root JSON structure of an exported journal.
type Export struct {
	Started string          `json:"started"`
	Count   int             `json:"count"`
	Entries []journal.Entry `json:"entries"`
}

// exportJSON writes the journal to a (gzipped) JSON file. The caller holds the lock.
func (b *Backend) exportJSON() error {
	timestamp := b.started.Format("20060102_150405")

	var filename string
	if b.cfg.CompressOutput {
		filename = fmt.Sprintf("journal_%s.json.gz", timestamp)
	} else {
		filename = fmt.Sprintf("journal_%s.json", timestamp)
	}

	outputPath := filepath.Join(b.cfg.OutputDir, filename)

	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	export := Export{
		Started: b.started.Format("2006-01-02T15:04:05Z"),
		Count:   len(b.entries),
		Entries: journal.Filter{}.Apply(b.entries),
	}

	var err error
	if b.cfg.CompressOutput {
		err = writeGzipJSON(outputPath, export)
	} else {
		err = writeJSON(outputPath, export)
	}
	if err != nil {
		return err
	}

	b.lastExportPath = outputPath
	return nil
}

func writeJSON(path string, data Export) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	return encoder.Encode(data)
}

func writeGzipJSON(path string, data Export) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	gzWriter := gzip.NewWriter(f)
	defer gzWriter.Close()

	encoder := json.NewEncoder(gzWriter)
	return encoder.Encode(data)
}

// Load reads an exported journal, compressed or not.
func Load(path string) (Export, error) {
	f, err := os.Open(path)
	if err != nil {
		return Export{}, fmt.Errorf("failed to open journal: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return Export{}, fmt.Errorf("failed to read gzip header: %w", err)
		}
		defer gz.Close()
		r = gz
	}

	var export Export
	if err := json.NewDecoder(r).Decode(&export); err != nil {
		return Export{}, fmt.Errorf("failed to decode journal: %w", err)
	}
	return export, nil
}

// Latest returns the newest journal export in dir.
func Latest(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "journal_*.json*"))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no journal exports in %s", dir)
	}
	// names embed a sortable timestamp
	sort.Strings(matches)
	return matches[len(matches)-1], nil
}
