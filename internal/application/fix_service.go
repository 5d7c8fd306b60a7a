package application

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/tinybirdco/forward-migration-checker/internal/domain"
	"github.com/tinybirdco/forward-migration-checker/internal/domain/rules"
)

// FixService turns fixable findings into proposals and applies them one at
// a time: confirm -> read -> transform -> backup -> atomic write -> side
// effects.
type FixService struct {
	backups   domain.BackupStore
	writer    domain.FileWriter
	relocator domain.Relocator
	history   domain.FixHistory
	git       domain.GitInfo

	mu  sync.Mutex
	now func() time.Time
}

// NewFixService wires a FixService. history and git may be nil.
func NewFixService(
	backups domain.BackupStore,
	writer domain.FileWriter,
	relocator domain.Relocator,
	history domain.FixHistory,
	git domain.GitInfo,
) *FixService {
	return &FixService{
		backups:   backups,
		writer:    writer,
		relocator: relocator,
		history:   history,
		git:       git,
		now:       time.Now,
	}
}

// Propose derives a fix proposal for a finding.
func (s *FixService) Propose(f domain.Finding, settings domain.FixSettings) (*domain.FixProposal, bool) {
	return rules.Propose(f, settings)
}

// Plan returns proposals for every selected fixable finding, in report order.
func (s *FixService) Plan(report *domain.CheckReport, settings domain.FixSettings, opts domain.FixOptions) []*domain.FixProposal {
	var out []*domain.FixProposal
	for _, f := range report.Fixable() {
		if !opts.Selects(f.RuleID) {
			continue
		}
		if p, ok := s.Propose(f, settings); ok {
			out = append(out, p)
		}
	}
	return out
}

// Prompt is the question asked before applying a proposal.
func Prompt(p *domain.FixProposal) string {
	return fmt.Sprintf("[%s] %s in %s?", p.Finding.RuleID, p.Description, p.Finding.ResourcePath)
}

// Apply runs one proposal. Failures are reported in the result, never
// returned, so a caller can move on to the next fix. In dry-run mode
// nothing is confirmed or written and the result is "planned".
func (s *FixService) Apply(ctx context.Context, root string, p *domain.FixProposal, confirm domain.Confirm, opts domain.FixOptions) domain.FixResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := p.Finding
	result := domain.FixResult{
		RuleID:       f.RuleID,
		ResourcePath: f.ResourcePath,
		Description:  p.Description,
	}

	// 1. Confirm
	if !opts.DryRun && !confirm(Prompt(p)) {
		result.Status = domain.FixDeclined
		return result
	}

	// 2-4. Transform, backup, write
	if p.Transform != nil {
		if err := s.rewrite(root, p, opts, &result); err != nil {
			result.Status = domain.FixFailed
			result.Error = err.Error()
			slog.Warn("fix failed", "rule", f.RuleID, "resource", f.ResourcePath, "error", err)
			return result
		}
	}

	// 5. Side effects
	for _, se := range p.SideEffects {
		result.SideEffects = append(result.SideEffects, s.sideEffect(root, se, p.Transform != nil, confirm, opts))
	}
	if p.Transform == nil {
		result.Status = sideEffectStatus(result.SideEffects, opts)
	}

	slog.Debug("fix done", "rule", f.RuleID, "resource", f.ResourcePath, "status", result.Status)
	return result
}

func (s *FixService) rewrite(root string, p *domain.FixProposal, opts domain.FixOptions, result *domain.FixResult) error {
	target := filepath.Join(root, filepath.FromSlash(p.Finding.ResourcePath))
	current, err := os.ReadFile(target)
	if err != nil {
		return fmt.Errorf("reading %s: %w", p.Finding.ResourcePath, err)
	}

	oldText := string(current)
	newText := p.Transform(oldText)
	if p.Transform(newText) != newText {
		return fmt.Errorf("%s on %s: %w", p.Finding.RuleID, p.Finding.ResourcePath, domain.ErrTransformNotIdempotent)
	}

	result.OldBytes = len(oldText)
	result.NewBytes = len(newText)
	if newText == oldText {
		result.Status = domain.FixUnchanged
		return nil
	}
	result.LinesChanged = linesChanged(oldText, newText)
	result.Diff = unifiedDiff(p.Finding.ResourcePath, oldText, newText)

	if opts.DryRun {
		result.Status = domain.FixPlanned
		return nil
	}

	backupPath, err := s.backups.Backup(target, current)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrBackupWriteFailed, err)
	}
	result.BackupPath = relPath(root, backupPath)

	if err := s.writer.WriteFile(target, []byte(newText)); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrAtomicWriteFailed, err)
	}
	result.Status = domain.FixApplied
	return nil
}

// sideEffect runs one relocation. ownConfirm asks for a separate
// confirmation; otherwise the proposal's confirmation covers it.
func (s *FixService) sideEffect(root string, se domain.SideEffect, ownConfirm bool, confirm domain.Confirm, opts domain.FixOptions) domain.SideEffectResult {
	r := domain.SideEffectResult{SideEffect: se}
	switch {
	case opts.DryRun:
		r.Status = domain.FixPlanned
		return r
	case ownConfirm && !confirm(se.Description+"?"):
		r.Status = domain.FixDeclined
		return r
	}

	err := s.relocator.Relocate(root, se)
	switch {
	case err == nil:
		r.Status = domain.FixApplied
	case errors.Is(err, domain.ErrAlreadyRelocated):
		r.Status = domain.FixUnchanged
	case errors.Is(err, fs.ErrNotExist):
		r.Status = domain.FixUnchanged
		r.Error = fmt.Sprintf("%s not found, nothing to move", se.Source)
	default:
		r.Status = domain.FixFailed
		r.Error = err.Error()
		slog.Warn("side effect failed", "kind", se.Kind, "source", se.Source, "error", err)
	}
	return r
}

func sideEffectStatus(results []domain.SideEffectResult, opts domain.FixOptions) domain.FixStatus {
	if opts.DryRun {
		return domain.FixPlanned
	}
	status := domain.FixUnchanged
	for _, r := range results {
		switch r.Status {
		case domain.FixFailed:
			return domain.FixFailed
		case domain.FixApplied:
			status = domain.FixApplied
		}
	}
	return status
}

// ApplyAll proposes and applies every selected fixable finding of the
// report sequentially. A failed fix never stops later ones. Results are
// recorded unless nothing ran because of dry-run mode.
func (s *FixService) ApplyAll(ctx context.Context, root string, report *domain.CheckReport, settings domain.FixSettings, confirm domain.Confirm, opts domain.FixOptions) []domain.FixResult {
	var results []domain.FixResult
	for _, p := range s.Plan(report, settings, opts) {
		if ctx.Err() != nil {
			break
		}
		results = append(results, s.Apply(ctx, root, p, confirm, opts))
	}

	if !opts.DryRun {
		s.Record(root, results)
	}
	return results
}

// Record appends results to the fix history. Callers that drive Apply
// themselves use it to keep the history complete; failures are logged.
func (s *FixService) Record(root string, results []domain.FixResult) {
	if s.history == nil || len(results) == 0 {
		return
	}
	if err := s.history.Append(root, s.entries(root, results)...); err != nil {
		slog.Warn("could not record fix history", "root", root, "error", err)
	}
}

func (s *FixService) entries(root string, results []domain.FixResult) []domain.FixEntry {
	var commit string
	if s.git != nil && s.git.IsGitRepo(root) {
		commit, _ = s.git.CommitHash(root)
	}
	ts := s.now().UTC().Format(time.RFC3339)

	entries := make([]domain.FixEntry, 0, len(results))
	for _, r := range results {
		entries = append(entries, domain.FixEntry{
			Timestamp:    ts,
			CommitHash:   commit,
			RuleID:       r.RuleID,
			ResourcePath: r.ResourcePath,
			Status:       r.Status,
			BackupPath:   r.BackupPath,
			Error:        r.Error,
		})
	}
	return entries
}

func unifiedDiff(path, oldText, newText string) string {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(oldText),
		B:        difflib.SplitLines(newText),
		FromFile: "a/" + path,
		ToFile:   "b/" + path,
		Context:  2,
	})
	if err != nil {
		return ""
	}
	return diff
}

func linesChanged(oldText, newText string) int {
	m := difflib.NewMatcher(domain.SplitLines(oldText), domain.SplitLines(newText))
	n := 0
	for _, op := range m.GetOpCodes() {
		if op.Tag == 'e' {
			continue
		}
		n += max(op.I2-op.I1, op.J2-op.J1)
	}
	return n
}

func relPath(root, p string) string {
	if rel, err := filepath.Rel(root, p); err == nil {
		return filepath.ToSlash(rel)
	}
	return p
}
