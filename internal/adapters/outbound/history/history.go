package history

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/tinybirdco/forward-migration-checker/internal/adapters/outbound/fsutil"
	"github.com/tinybirdco/forward-migration-checker/internal/domain"
)

var historyFile = filepath.Join(domain.StateDir, "history", "fixes.json")

// FileHistory implements domain.FixHistory using JSON file storage.
type FileHistory struct{}

func New() *FileHistory {
	return &FileHistory{}
}

func (h *FileHistory) Append(projectPath string, entries ...domain.FixEntry) error {
	existing, err := h.Load(projectPath)
	if err != nil {
		return err
	}

	return fsutil.WriteJSONAtomic(filepath.Join(projectPath, historyFile), append(existing, entries...))
}

func (h *FileHistory) Load(projectPath string) ([]domain.FixEntry, error) {
	data, err := os.ReadFile(filepath.Join(projectPath, historyFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var entries []domain.FixEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}

	return entries, nil
}
