package cache

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/tinybirdco/forward-migration-checker/internal/adapters/outbound/fsutil"
	"github.com/tinybirdco/forward-migration-checker/internal/domain"
)

// Store is a file-based implementation of domain.ReportCache. Reports are
// msgpack-encoded using their json field names.
type Store struct{}

// New creates a new file-based cache store.
func New() *Store {
	return &Store{}
}

// Load reads the last report from disk. Returns (nil, nil) if no cache exists.
func (s *Store) Load(projectPath string) (*domain.CheckReport, error) {
	data, err := os.ReadFile(cachePath(projectPath))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil // no cache is not an error
		}
		return nil, err
	}

	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	var report domain.CheckReport
	if err := dec.Decode(&report); err != nil {
		return nil, err
	}
	return &report, nil
}

// Save writes a report to disk, creating directories as needed.
func (s *Store) Save(report *domain.CheckReport) error {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(report); err != nil {
		return err
	}
	return fsutil.WriteFileAtomic(cachePath(report.Root), buf.Bytes())
}

// Invalidate removes the cache file for the given project path.
func (s *Store) Invalidate(projectPath string) error {
	if err := os.Remove(cachePath(projectPath)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func cachePath(projectPath string) string {
	return filepath.Join(projectPath, domain.StateDir, "cache", "last-report.mp")
}
