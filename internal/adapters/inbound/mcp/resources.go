package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/tinybirdco/forward-migration-checker/internal/adapters/outbound/config"
	"github.com/tinybirdco/forward-migration-checker/internal/domain"
	"github.com/tinybirdco/forward-migration-checker/internal/domain/engine"
	"github.com/tinybirdco/forward-migration-checker/internal/domain/rules"
)

// registerResources registers all forward-check MCP resources on the given server.
func registerResources(s *server.MCPServer, projectPath string, opts engine.Options) {
	// 1. forwardcheck://report - last report, checked on demand
	s.AddResource(
		mcplib.NewResource(
			"forwardcheck://report",
			"Check Report",
			mcplib.WithResourceDescription("Last check report for the project; the project is checked when none is cached"),
			mcplib.WithMIMEType("application/json"),
		),
		handleReportResource(projectPath, opts),
	)

	// 2. forwardcheck://rules - rule catalog
	s.AddResource(
		mcplib.NewResource(
			"forwardcheck://rules",
			"Rules",
			mcplib.WithResourceDescription("Compatibility rule catalog"),
			mcplib.WithMIMEType("application/json"),
		),
		handleRulesResource(projectPath),
	)

	// 3. forwardcheck://findings/{rule} - findings of one rule
	s.AddResourceTemplate(
		mcplib.NewResourceTemplate(
			"forwardcheck://findings/{rule}",
			"Rule Findings",
			mcplib.WithTemplateDescription("Findings of a single rule, by id or slug"),
			mcplib.WithTemplateMIMEType("application/json"),
		),
		handleFindingsResource(projectPath, opts),
	)
}

// currentReport returns the cached report or checks the project.
func currentReport(ctx context.Context, projectPath string, opts engine.Options) (*domain.CheckReport, error) {
	svc := newCheckService()
	if cached, err := svc.Cached(projectPath); err == nil && cached != nil {
		return cached, nil
	}
	run, err := svc.Check(ctx, projectPath, opts)
	if err != nil {
		return nil, fmt.Errorf("check failed: %w", err)
	}
	return run.Report, nil
}

func handleReportResource(projectPath string, opts engine.Options) server.ResourceHandlerFunc {
	return func(ctx context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		report, err := currentReport(ctx, projectPath, opts)
		if err != nil {
			return nil, err
		}
		return jsonContents("forwardcheck://report", report)
	}
}

func handleRulesResource(projectPath string) server.ResourceHandlerFunc {
	return func(_ context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		cfg, err := config.New().Load(projectPath)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		return jsonContents("forwardcheck://rules", rules.Catalog(cfg))
	}
}

func handleFindingsResource(projectPath string, opts engine.Options) server.ResourceTemplateHandlerFunc {
	return func(ctx context.Context, request mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		name := ruleArgument(request.Params.Arguments["rule"])
		rule, ok := rules.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("unknown rule %q", name)
		}

		report, err := currentReport(ctx, projectPath, opts)
		if err != nil {
			return nil, err
		}
		findings := report.FindingsFor(rule.ID)
		if findings == nil {
			findings = []domain.Finding{}
		}
		return jsonContents(request.Params.URI, findings)
	}
}

// ruleArgument unwraps a template variable, which mcp-go may hand over as a
// string or a single-element slice.
func ruleArgument(v any) string {
	switch a := v.(type) {
	case string:
		return a
	case []string:
		if len(a) > 0 {
			return a[0]
		}
	}
	return ""
}

func jsonContents(uri string, v any) ([]mcplib.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling %s: %w", uri, err)
	}
	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
