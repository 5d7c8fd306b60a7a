package cli_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinybirdco/forward-migration-checker/internal/adapters/outbound/config"
	"github.com/tinybirdco/forward-migration-checker/internal/domain"
)

func TestRootCommand_FullFlow(t *testing.T) {
	dir := copyFixture(t)
	plan := filepath.Join(t.TempDir(), "migration.md")

	out, _, err := execute(t, "", dir, "--yes", "--output", plan)
	require.NoError(t, err)

	assert.Contains(t, out, "Report saved to: "+plan)
	assert.Contains(t, out, "Overall: WARNING")

	md := readFile(t, plan)
	assert.Contains(t, md, "# Tinybird Classic to Forward Migration Plan")
	assert.Contains(t, md, "**Overall status**: WARNING")
	assert.Contains(t, md, "**Total**: 5 issues were automatically resolved.")
	assert.Contains(t, md, "cp pipes/export_events.pipe.backup pipes/export_events.pipe")
}

func TestRootCommand_NoFix(t *testing.T) {
	dir := copyFixture(t)
	plan := filepath.Join(t.TempDir(), "migration.md")

	out, prompts, err := execute(t, "", dir, "--no-fix", "-o", plan)
	require.NoError(t, err)

	assert.Contains(t, out, "Overall: FAIL")
	assert.Empty(t, prompts)
	assert.Contains(t, readFile(t, plan), "No automatic fixes were applied during this run.")
}

func TestRootCommand_DefaultPath(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	tmp := t.TempDir()
	require.NoError(t, os.CopyFS(filepath.Join(tmp, "tinybird"), os.DirFS(filepath.Join(wd, fixtureDir))))
	t.Chdir(tmp)

	out, _, err := execute(t, "", "--no-fix")
	require.NoError(t, err)
	assert.Contains(t, out, "Overall: FAIL")
	assert.FileExists(t, filepath.Join(tmp, "migration.md"))
}

func TestRootCommand_LogFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "forward-check.log")
	t.Setenv("FORWARD_CHECK_LOG_FILENAME", logPath)

	_, stderr, err := execute(t, "", "fix", copyFixture(t), "--yes", "--rule", "sink", "--verbose")
	require.NoError(t, err)

	assert.Empty(t, stderr)
	assert.Contains(t, readFile(t, logPath), "fix done")
}

func TestVersionCommand(t *testing.T) {
	out, _, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "forward-check "))
}

func TestRulesCommand(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, domain.ConfigFileName), []byte("rules:\n  disable: [version-tag]\n"), 0644))

	out, _, err := execute(t, "", "rules", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "dynamo-db-import")

	out, _, err = execute(t, "", "rules", dir, "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"enabled": false`)
}

func TestReportCommand_Stdout(t *testing.T) {
	out, _, err := execute(t, "", "report", copyFixture(t), "--output", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "### 2. Sink pipes (Sink)")
}

func TestReportCommand_Cached(t *testing.T) {
	dir := copyFixture(t)

	_, _, err := execute(t, "", "report", dir, "--cached", "-o", "-")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no cached report")

	_, _, err = execute(t, "", "check", dir)
	require.NoError(t, err)

	plan := filepath.Join(t.TempDir(), "plan.md")
	out, _, err := execute(t, "", "report", dir, "--cached", "-o", plan)
	require.NoError(t, err)
	assert.Contains(t, out, plan)
	assert.Contains(t, readFile(t, plan), "**Overall status**: FAIL")
}

func TestReportCommand_CachedAfterFix(t *testing.T) {
	dir := copyFixture(t)

	_, _, err := execute(t, "", "check", dir)
	require.NoError(t, err)
	_, _, err = execute(t, "", "fix", dir, "--yes")
	require.NoError(t, err)

	out, _, err := execute(t, "", "report", dir, "--cached", "-o", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "**Overall status**: WARNING")
	assert.NotContains(t, out, "**Overall status**: FAIL")
}

func TestInitCmd_CreatesConfigFile(t *testing.T) {
	dir := t.TempDir()

	_, _, err := execute(t, "", "init", dir)
	require.NoError(t, err)

	data := readFile(t, filepath.Join(dir, domain.ConfigFileName))
	assert.Contains(t, data, "suffix: .backup")
	assert.Contains(t, data, "default_node: endpoint")

	cfg, err := config.New().Load(dir)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultConfig().Backup, cfg.Backup)
}

func TestInitCmd_FailsIfExists(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, domain.ConfigFileName), []byte("existing"), 0644))

	_, _, err := execute(t, "", "init", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestInitCmd_ForceOverwrites(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, domain.ConfigFileName), []byte("old"), 0644))

	_, _, err := execute(t, "", "init", dir, "--force")
	require.NoError(t, err)
	assert.NotEqual(t, "old", readFile(t, filepath.Join(dir, domain.ConfigFileName)))
}

func TestMCPCommandExists(t *testing.T) {
	_, _, err := execute(t, "", "mcp", "serve", "--help")
	assert.NoError(t, err)
}
