package loader

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/tinybirdco/forward-migration-checker/internal/domain"
)

var skipDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
}

// VendorDir is the directory name that holds resources shared from other
// workspaces.
const VendorDir = "vendor"

// FileLoader implements domain.ResourceLoader by walking the filesystem.
type FileLoader struct{}

func New() *FileLoader {
	return &FileLoader{}
}

// Classify returns the resource kind of a slash-separated relative path.
// Files of no known kind return false.
func Classify(relPath string) (domain.ResourceKind, bool) {
	switch strings.ToLower(filepath.Ext(relPath)) {
	case ".datasource":
		return domain.KindDatasource, true
	case ".pipe":
		dirs := strings.Split(filepath.ToSlash(filepath.Dir(relPath)), "/")
		for _, d := range dirs {
			if d == "endpoints" {
				return domain.KindEndpoint, true
			}
		}
		return domain.KindPipe, true
	case ".endpoint":
		return domain.KindEndpoint, true
	case ".incl":
		return domain.KindInclude, true
	}
	return "", false
}

// Load walks root in lexical order. A missing or unreadable root is a
// *domain.DiscoveryError; an empty project is returned together with an
// error wrapping domain.ErrNoResourcesFound.
func (l *FileLoader) Load(root string, cfg domain.ProjectConfig) (*domain.Project, error) {
	absPath, err := filepath.Abs(root)
	if err != nil {
		return nil, &domain.DiscoveryError{Root: root, Err: err}
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, &domain.DiscoveryError{Root: absPath, Err: err}
	}
	if !info.IsDir() {
		return nil, &domain.DiscoveryError{Root: absPath, Err: fmt.Errorf("not a directory")}
	}

	// Merge configured skips with built-in skip dirs.
	extraSkip := make(map[string]bool)
	for _, p := range cfg.SkipDirs() {
		extraSkip[filepath.ToSlash(filepath.Clean(strings.TrimSuffix(p, "/")))] = true
	}

	project := &domain.Project{Root: absPath}

	err = filepath.WalkDir(absPath, func(path string, d os.DirEntry, err error) error {
		relPath, _ := filepath.Rel(absPath, path)
		relPath = filepath.ToSlash(relPath)

		if err != nil {
			if path == absPath {
				return err
			}
			slog.Warn("skipping unreadable path", "path", relPath, "error", err)
			project.Skipped = append(project.Skipped, domain.SkippedFile{Path: relPath, Reason: err.Error()})
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path == absPath {
				return nil
			}
			if skipDirs[d.Name()] || extraSkip[d.Name()] || extraSkip[relPath] {
				return filepath.SkipDir
			}
			if d.Name() == VendorDir {
				project.VendorDirs = append(project.VendorDirs, relPath)
				return filepath.SkipDir
			}
			return nil
		}

		kind, ok := Classify(relPath)
		if !ok || !d.Type().IsRegular() {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			slog.Warn("skipping unreadable resource", "path", relPath, "error", err)
			project.Skipped = append(project.Skipped, domain.SkippedFile{Path: relPath, Reason: err.Error()})
			return nil
		}

		project.Resources = append(project.Resources,
			domain.NewResource(relPath, kind, len(project.Resources), string(data)))
		return nil
	})
	if err != nil {
		return nil, &domain.DiscoveryError{Root: absPath, Err: err}
	}

	slog.Debug("project loaded", "root", absPath, "resources", len(project.Resources), "vendor_dirs", len(project.VendorDirs))

	if len(project.Resources) == 0 {
		return project, fmt.Errorf("%s: %w", absPath, domain.ErrNoResourcesFound)
	}
	return project, nil
}
