package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/tinybirdco/forward-migration-checker/internal/domain"
	"github.com/tinybirdco/forward-migration-checker/internal/domain/engine"
	"github.com/tinybirdco/forward-migration-checker/internal/domain/rules"
)

// CheckService orchestrates the check pipeline:
// load config -> load resources -> evaluate rules -> stamp commit -> cache.
type CheckService struct {
	loader       domain.ResourceLoader
	configLoader domain.ConfigLoader
	git          domain.GitInfo
	cache        domain.ReportCache
}

// NewCheckService wires a CheckService. git and cache may be nil.
func NewCheckService(
	loader domain.ResourceLoader,
	configLoader domain.ConfigLoader,
	git domain.GitInfo,
	cache domain.ReportCache,
) *CheckService {
	return &CheckService{
		loader:       loader,
		configLoader: configLoader,
		git:          git,
		cache:        cache,
	}
}

// CheckRun bundles a report with the inputs that produced it.
type CheckRun struct {
	Config  domain.ProjectConfig
	Project *domain.Project
	Rules   []domain.Rule
	Report  *domain.CheckReport
}

// Check runs the enabled rules over the project at projectPath. Only an
// unreadable root, a broken config or ctx cancellation return an error.
func (s *CheckService) Check(ctx context.Context, projectPath string, opts engine.Options) (*CheckRun, error) {
	root, err := filepath.Abs(projectPath)
	if err != nil {
		return nil, fmt.Errorf("resolving project path: %w", err)
	}

	// 1. Load config
	cfg, err := s.configLoader.Load(root)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	// 2. Load resources
	var notices []string
	project, err := s.loader.Load(root, cfg)
	switch {
	case errors.Is(err, domain.ErrNoResourcesFound):
		slog.Warn("no resources found", "root", root)
		notices = append(notices, err.Error())
	case err != nil:
		return nil, err
	}
	for _, sk := range project.Skipped {
		notices = append(notices, fmt.Sprintf("skipped %s: %s", sk.Path, sk.Reason))
	}

	// 3. Evaluate rules
	enabled := rules.Enabled(cfg)
	report, err := engine.Evaluate(ctx, enabled, project, opts)
	if err != nil {
		return nil, fmt.Errorf("evaluating rules: %w", err)
	}
	report.Notices = notices

	// 4. Stamp commit
	if s.git != nil && s.git.IsGitRepo(root) {
		if hash, err := s.git.CommitHash(root); err == nil {
			report.CommitHash = hash
		} else {
			slog.Debug("no commit hash", "root", root, "error", err)
		}
	}

	// 5. Cache
	if s.cache != nil {
		if err := s.cache.Save(report); err != nil {
			slog.Warn("could not cache report", "root", root, "error", err)
		}
	}

	return &CheckRun{Config: cfg, Project: project, Rules: enabled, Report: report}, nil
}

// Refresh re-checks the project after files changed on disk so the cached
// report matches the tree. When the re-check fails the cache is dropped
// instead of being left stale.
func (s *CheckService) Refresh(ctx context.Context, projectPath string, opts engine.Options) (*CheckRun, error) {
	run, err := s.Check(ctx, projectPath, opts)
	if err == nil {
		return run, nil
	}
	if s.cache != nil {
		if root, absErr := filepath.Abs(projectPath); absErr == nil {
			if invErr := s.cache.Invalidate(root); invErr != nil {
				slog.Warn("could not invalidate cached report", "root", root, "error", invErr)
			}
		}
	}
	return nil, err
}

// Cached returns the last cached report for projectPath, or nil when none
// exists.
func (s *CheckService) Cached(projectPath string) (*domain.CheckReport, error) {
	if s.cache == nil {
		return nil, nil
	}
	root, err := filepath.Abs(projectPath)
	if err != nil {
		return nil, fmt.Errorf("resolving project path: %w", err)
	}
	return s.cache.Load(root)
}
