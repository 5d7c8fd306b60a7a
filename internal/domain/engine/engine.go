// Package engine evaluates rules over a loaded project and aggregates the
// findings into a deterministic CheckReport.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/tinybirdco/forward-migration-checker/internal/domain"
)

// Options tunes an evaluation run.
type Options struct {
	// Jobs bounds concurrent rule evaluations. Zero means GOMAXPROCS.
	Jobs int
}

// Evaluate runs every applicable (rule, resource) pair and every project
// check, then restores rule-registration order followed by file-discovery
// order. Rule failures become degraded findings; only ctx cancellation
// fails the run.
func Evaluate(ctx context.Context, rules []domain.Rule, p *domain.Project, opts Options) (*domain.CheckReport, error) {
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// fileResults[i][j] holds rule i on resource j; projectResults[i] holds
	// rule i's project check.
	fileResults := make([][][]domain.Finding, len(rules))
	projectResults := make([][]domain.Finding, len(rules))
	for i := range rules {
		fileResults[i] = make([][]domain.Finding, len(p.Resources))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for i, rule := range rules {
		for j, res := range p.Resources {
			if rule.Check == nil || !rule.Applies(res.Kind) {
				continue
			}
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				fileResults[i][j] = runCheck(rule, res)
				return nil
			})
		}
		if rule.CheckProject != nil {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				projectResults[i] = runProjectCheck(rule, p)
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &domain.CheckReport{
		Root:      p.Root,
		Resources: len(p.Resources),
		ByKind:    p.CountByKind(),
		Findings:  []domain.Finding{},
	}
	for i := range rules {
		for j := range p.Resources {
			report.Findings = append(report.Findings, fileResults[i][j]...)
		}
		report.Findings = append(report.Findings, projectResults[i]...)
	}
	report.Summarize(rules)
	return report, nil
}

func runCheck(rule domain.Rule, res domain.Resource) (out []domain.Finding) {
	defer func() {
		if r := recover(); r != nil {
			out = []domain.Finding{degraded(rule, res.Path, res.Kind, domain.ScopeResource, fmt.Errorf("panic: %v", r))}
		}
	}()

	findings, err := rule.Check(res)
	if err != nil {
		return []domain.Finding{degraded(rule, res.Path, res.Kind, domain.ScopeResource, err)}
	}
	for k := range findings {
		normalize(&findings[k], rule)
		findings[k].ResourcePath = res.Path
		findings[k].ResourceKind = res.Kind
		findings[k].Scope = domain.ScopeResource
	}
	return findings
}

func runProjectCheck(rule domain.Rule, p *domain.Project) (out []domain.Finding) {
	defer func() {
		if r := recover(); r != nil {
			out = []domain.Finding{degraded(rule, ".", "", domain.ScopeProject, fmt.Errorf("panic: %v", r))}
		}
	}()

	findings, err := rule.CheckProject(p)
	if err != nil {
		return []domain.Finding{degraded(rule, ".", "", domain.ScopeProject, err)}
	}
	for k := range findings {
		normalize(&findings[k], rule)
		findings[k].Scope = domain.ScopeProject
		findings[k].ResourceKind = ""
	}
	return findings
}

func normalize(f *domain.Finding, rule domain.Rule) {
	f.RuleID = rule.ID
	if f.Severity == "" {
		f.Severity = rule.Severity
	}
	f.Fixable = rule.Fixable && !f.Degraded
}

// degraded records a rule that could not be evaluated as a non-fixable
// WARNING finding.
func degraded(rule domain.Rule, path string, kind domain.ResourceKind, scope domain.Scope, err error) domain.Finding {
	evalErr := &domain.RuleEvaluationError{RuleID: rule.ID, ResourcePath: path, Err: err}
	slog.Warn("rule evaluation failed", "rule", rule.ID, "resource", path, "error", err)
	return domain.Finding{
		RuleID:       rule.ID,
		ResourcePath: path,
		ResourceKind: kind,
		Scope:        scope,
		Severity:     domain.SeverityWarning,
		Message:      evalErr.Error(),
		Degraded:     true,
	}
}
