package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/tinybirdco/forward-migration-checker/internal/adapters/outbound/backup"
	"github.com/tinybirdco/forward-migration-checker/internal/adapters/outbound/cache"
	"github.com/tinybirdco/forward-migration-checker/internal/adapters/outbound/config"
	"github.com/tinybirdco/forward-migration-checker/internal/adapters/outbound/fsutil"
	"github.com/tinybirdco/forward-migration-checker/internal/adapters/outbound/gitinfo"
	"github.com/tinybirdco/forward-migration-checker/internal/adapters/outbound/history"
	"github.com/tinybirdco/forward-migration-checker/internal/adapters/outbound/loader"
	"github.com/tinybirdco/forward-migration-checker/internal/adapters/outbound/relocate"
	"github.com/tinybirdco/forward-migration-checker/internal/application"
	"github.com/tinybirdco/forward-migration-checker/internal/domain"
	"github.com/tinybirdco/forward-migration-checker/internal/domain/engine"
	"github.com/tinybirdco/forward-migration-checker/internal/domain/rules"
)

// registerTools registers all forward-check MCP tools on the given server.
func registerTools(s *server.MCPServer, projectPath string, opts engine.Options) {
	// 1. forward_check
	s.AddTool(
		mcplib.NewTool("forward_check",
			mcplib.WithDescription("Check the Tinybird project for Forward incompatibilities and return the report as JSON"),
		),
		handleCheck(projectPath, opts),
	)

	// 2. forward_fix_plan
	s.AddTool(
		mcplib.NewTool("forward_fix_plan",
			mcplib.WithDescription("List the available fixes with the diff each would apply. Nothing is written."),
			mcplib.WithString("rules", mcplib.Description("Comma-separated rule ids or slugs to limit the plan to")),
		),
		handleFixPlan(projectPath, opts),
	)

	// 3. forward_fix_apply
	s.AddTool(
		mcplib.NewTool("forward_fix_apply",
			mcplib.WithDescription("Apply the available fixes. Every modified file is backed up first. Requires confirm=true."),
			mcplib.WithBoolean("confirm", mcplib.Required(), mcplib.Description("Must be true to write any file")),
			mcplib.WithString("rules", mcplib.Description("Comma-separated rule ids or slugs to limit the fixes to")),
		),
		handleFixApply(projectPath, opts),
	)

	// 4. forward_rules
	s.AddTool(
		mcplib.NewTool("forward_rules",
			mcplib.WithDescription("Return the compatibility rule catalog"),
		),
		handleRules(projectPath),
	)
}

func newCheckService() *application.CheckService {
	return application.NewCheckService(loader.New(), config.New(), gitinfo.New(), cache.New())
}

func newFixService(suffix string) *application.FixService {
	return application.NewFixService(backup.New(suffix), fsutil.NewAtomicWriter(), relocate.New(), history.New(), gitinfo.New())
}

func handleCheck(projectPath string, opts engine.Options) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		run, err := newCheckService().Check(ctx, projectPath, opts)
		if err != nil {
			return errorResult(fmt.Sprintf("check failed: %v", err)), nil
		}
		return jsonResult(run.Report)
	}
}

func handleFixPlan(projectPath string, opts engine.Options) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		ruleNames, err := ruleFilter(request)
		if err != nil {
			return errorResult(err.Error()), nil
		}
		return runFixes(ctx, projectPath, opts, domain.FixOptions{DryRun: true, Rules: ruleNames})
	}
}

func handleFixApply(projectPath string, opts engine.Options) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		confirm, _ := request.GetArguments()["confirm"].(bool)
		if !confirm {
			return errorResult("confirm must be true to apply fixes; use forward_fix_plan to preview them"), nil
		}
		ruleNames, err := ruleFilter(request)
		if err != nil {
			return errorResult(err.Error()), nil
		}
		return runFixes(ctx, projectPath, opts, domain.FixOptions{Rules: ruleNames})
	}
}

func runFixes(ctx context.Context, projectPath string, opts engine.Options, fixOpts domain.FixOptions) (*mcplib.CallToolResult, error) {
	checks := newCheckService()
	run, err := checks.Check(ctx, projectPath, opts)
	if err != nil {
		return errorResult(fmt.Sprintf("check failed: %v", err)), nil
	}

	svc := newFixService(run.Config.Backup.Suffix)
	results := svc.ApplyAll(ctx, run.Report.Root, run.Report, run.Config.FixSettings(), domain.Always, fixOpts)
	if applied(results) {
		if _, err := checks.Refresh(ctx, projectPath, opts); err != nil {
			return errorResult(fmt.Sprintf("re-check failed: %v", err)), nil
		}
	}
	if results == nil {
		results = []domain.FixResult{}
	}
	return jsonResult(results)
}

func applied(results []domain.FixResult) bool {
	for _, r := range results {
		if r.Status == domain.FixApplied {
			return true
		}
	}
	return false
}

func handleRules(projectPath string) server.ToolHandlerFunc {
	return func(_ context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		cfg, err := config.New().Load(projectPath)
		if err != nil {
			return errorResult(fmt.Sprintf("loading config: %v", err)), nil
		}
		return jsonResult(rules.Catalog(cfg))
	}
}

// ruleFilter parses the optional comma-separated "rules" argument.
func ruleFilter(request mcplib.CallToolRequest) ([]string, error) {
	raw, _ := request.GetArguments()["rules"].(string)
	var names []string
	for _, name := range strings.Split(raw, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := rules.Lookup(name); !ok {
			return nil, fmt.Errorf("unknown rule %q", name)
		}
		names = append(names, name)
	}
	return names, nil
}

func jsonResult(v interface{}) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(data))},
	}, nil
}

// errorResult returns an error content result.
func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}
