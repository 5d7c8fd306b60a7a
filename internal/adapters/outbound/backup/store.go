package backup

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/minio/highwayhash"
)

const maxVersions = 1000

var key = []byte("forward-check-backup-content-key")

// Store implements domain.BackupStore with sibling files named
// <path><suffix>, then <path><suffix>.1, .2, ... Existing backups are never
// overwritten.
type Store struct {
	suffix string

	mu      sync.Mutex
	session map[string]string
}

// New creates a Store using the given suffix (".backup" by default).
func New(suffix string) *Store {
	if suffix == "" {
		suffix = ".backup"
	}
	return &Store{suffix: suffix, session: make(map[string]string)}
}

// Backup preserves content for path and returns the backup file holding it.
// A backup this Store already made for path is returned as is, since it holds
// the content from before the first fix. An existing backup with identical
// content is reused. Otherwise content goes to the first free version.
func (s *Store) Backup(path string, content []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b, ok := s.session[path]; ok {
		return b, nil
	}

	mode := fs.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	sum, err := Hash(content)
	if err != nil {
		return "", err
	}

	for n := 0; n < maxVersions; n++ {
		candidate := s.versionPath(path, n)

		existing, err := os.ReadFile(candidate)
		switch {
		case err == nil:
			if h, err := Hash(existing); err == nil && h == sum {
				s.session[path] = candidate
				return candidate, nil
			}
			continue
		case !errors.Is(err, fs.ErrNotExist):
			return "", err
		}

		if err := writeExclusive(candidate, content, mode); err != nil {
			if errors.Is(err, fs.ErrExist) {
				continue
			}
			return "", err
		}
		s.session[path] = candidate
		return candidate, nil
	}
	return "", fmt.Errorf("%s: more than %d backups exist", path, maxVersions)
}

func (s *Store) versionPath(path string, n int) string {
	if n == 0 {
		return path + s.suffix
	}
	return fmt.Sprintf("%s%s.%d", path, s.suffix, n)
}

// Hash returns the 64-bit HighwayHash of data.
func Hash(data []byte) (uint64, error) {
	h, err := highwayhash.New64(key)
	if err != nil {
		return 0, err
	}
	_, err = h.Write(data)
	return h.Sum64(), err
}

func writeExclusive(path string, data []byte, mode fs.FileMode) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, mode)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	return f.Close()
}
