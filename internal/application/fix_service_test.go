package application_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinybirdco/forward-migration-checker/internal/adapters/outbound/backup"
	"github.com/tinybirdco/forward-migration-checker/internal/adapters/outbound/fsutil"
	"github.com/tinybirdco/forward-migration-checker/internal/adapters/outbound/gitinfo"
	"github.com/tinybirdco/forward-migration-checker/internal/adapters/outbound/history"
	"github.com/tinybirdco/forward-migration-checker/internal/adapters/outbound/relocate"
	"github.com/tinybirdco/forward-migration-checker/internal/application"
	"github.com/tinybirdco/forward-migration-checker/internal/domain"
	"github.com/tinybirdco/forward-migration-checker/internal/domain/engine"
	"github.com/tinybirdco/forward-migration-checker/internal/domain/rules"
)

func newFixService() *application.FixService {
	return application.NewFixService(backup.New(".backup"), fsutil.NewAtomicWriter(), relocate.New(), history.New(), gitinfo.New())
}

func checkDir(t *testing.T, dir string) *domain.CheckReport {
	t.Helper()
	run, err := newCheckService().Check(context.Background(), dir, engine.Options{})
	require.NoError(t, err)
	return run.Report
}

// proposalFor checks dir and proposes a fix for the first finding of ruleID
// on path.
func proposalFor(t *testing.T, dir, ruleID, path string) *domain.FixProposal {
	t.Helper()
	for _, f := range checkDir(t, dir).FindingsFor(ruleID) {
		if f.ResourcePath != path {
			continue
		}
		p, ok := newFixService().Propose(f, domain.DefaultFixSettings())
		require.True(t, ok)
		return p
	}
	t.Fatalf("no %s finding for %s", ruleID, path)
	return nil
}

func read(t *testing.T, dir, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

type failingBackups struct{}

func (failingBackups) Backup(string, []byte) (string, error) {
	return "", errors.New("disk full")
}

type failingWriter struct{ called bool }

func (w *failingWriter) WriteFile(string, []byte) error {
	w.called = true
	return errors.New("read-only filesystem")
}

func TestApply_SinkCommentsExportBlock(t *testing.T) {
	dir := copyFixture(t)
	original := read(t, dir, "pipes/export_events.pipe")
	p := proposalFor(t, dir, rules.IDSink, "pipes/export_events.pipe")

	result := newFixService().Apply(context.Background(), dir, p, domain.Always, domain.FixOptions{})
	require.Equal(t, domain.FixApplied, result.Status, result.Error)

	fixed := read(t, dir, "pipes/export_events.pipe")
	var commented []string
	for _, line := range strings.Split(fixed, "\n") {
		if strings.HasPrefix(line, domain.DefaultCommentPrefix) {
			commented = append(commented, strings.TrimPrefix(line, domain.DefaultCommentPrefix))
		}
	}
	assert.Equal(t, []string{
		"TYPE sink",
		"EXPORT_SERVICE s3_iamrole",
		"EXPORT_CONNECTION_NAME s3_exports",
		"EXPORT_BUCKET_URI s3://exports/events/",
	}, commented)

	assert.Equal(t, "pipes/export_events.pipe.backup", result.BackupPath)
	assert.Equal(t, original, read(t, dir, result.BackupPath))
	assert.Equal(t, 4, result.LinesChanged)
	assert.Contains(t, result.Diff, "+"+domain.DefaultCommentPrefix+"TYPE sink")
	assert.Equal(t, len(original), result.OldBytes)
	assert.Equal(t, len(fixed), result.NewBytes)

	assert.Empty(t, checkDir(t, dir).FindingsFor(rules.IDSink))
}

func TestApply_EndpointGetsDefaultNode(t *testing.T) {
	dir := copyFixture(t)
	original := read(t, dir, "endpoints/top_products.pipe")
	p := proposalFor(t, dir, rules.IDEndpointType, "endpoints/top_products.pipe")

	result := newFixService().Apply(context.Background(), dir, p, domain.Always, domain.FixOptions{})
	require.Equal(t, domain.FixApplied, result.Status, result.Error)

	fixed := read(t, dir, "endpoints/top_products.pipe")
	assert.Equal(t, "NODE endpoint\n"+original, fixed)
	assert.Equal(t, 1, strings.Count(fixed, "NODE "))
	assert.Equal(t, domain.StatusPass, checkDir(t, dir).PerRule()[rules.IDEndpointType])
}

func TestApply_DeclineLeavesFileUntouched(t *testing.T) {
	dir := copyFixture(t)
	for _, tc := range []struct{ rule, path string }{
		{rules.IDSink, "pipes/export_events.pipe"},
		{rules.IDSharedDatasource, "datasources/events.datasource"},
		{rules.IDEndpointType, "endpoints/top_products.pipe"},
		{rules.IDIncludeFile, "datasources/kafka_events.datasource"},
	} {
		before := read(t, dir, tc.path)
		p := proposalFor(t, dir, tc.rule, tc.path)

		result := newFixService().Apply(context.Background(), dir, p, domain.Never, domain.FixOptions{})

		assert.Equal(t, domain.FixDeclined, result.Status, tc.rule)
		assert.Empty(t, result.SideEffects, tc.rule)
		assert.Equal(t, before, read(t, dir, tc.path), tc.rule)
		assert.NoFileExists(t, filepath.Join(dir, tc.path+".backup"), tc.rule)
	}
	assert.FileExists(t, filepath.Join(dir, "includes/kafka_connection.incl"))
}

func TestApply_ReapplyIsNoop(t *testing.T) {
	dir := copyFixture(t)
	original := read(t, dir, "pipes/export_events.pipe")
	p := proposalFor(t, dir, rules.IDSink, "pipes/export_events.pipe")

	first := newFixService().Apply(context.Background(), dir, p, domain.Always, domain.FixOptions{})
	require.Equal(t, domain.FixApplied, first.Status)
	fixed := read(t, dir, "pipes/export_events.pipe")

	second := newFixService().Apply(context.Background(), dir, p, domain.Always, domain.FixOptions{})
	assert.Equal(t, domain.FixUnchanged, second.Status)
	assert.Empty(t, second.BackupPath)
	assert.Equal(t, fixed, read(t, dir, "pipes/export_events.pipe"))
	assert.Equal(t, original, read(t, dir, "pipes/export_events.pipe.backup"))
	assert.NoFileExists(t, filepath.Join(dir, "pipes/export_events.pipe.backup.1"))
}

func TestApply_LaterSessionKeepsOriginalBackup(t *testing.T) {
	dir := copyFixture(t)
	original := read(t, dir, "datasources/events.datasource")
	svc := newFixService()

	p := proposalFor(t, dir, rules.IDSharedDatasource, "datasources/events.datasource")
	require.Equal(t, domain.FixApplied, svc.Apply(context.Background(), dir, p, domain.Always, domain.FixOptions{}).Status)

	// A later session finds a hand-edited file.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "datasources/events.datasource"),
		[]byte(read(t, dir, "datasources/events.datasource")+"\nSHARED_WITH >\n    other\n"), 0644))
	p = proposalFor(t, dir, rules.IDSharedDatasource, "datasources/events.datasource")
	result := newFixService().Apply(context.Background(), dir, p, domain.Always, domain.FixOptions{})
	require.Equal(t, domain.FixApplied, result.Status)

	assert.Equal(t, "datasources/events.datasource.backup.1", result.BackupPath)
	assert.Equal(t, original, read(t, dir, "datasources/events.datasource.backup"))
}

func TestApply_DryRun(t *testing.T) {
	dir := copyFixture(t)
	before := read(t, dir, "datasources/kafka_events.datasource")
	p := proposalFor(t, dir, rules.IDIncludeFile, "datasources/kafka_events.datasource")

	asked := false
	confirm := func(string) bool { asked = true; return true }
	result := newFixService().Apply(context.Background(), dir, p, confirm, domain.FixOptions{DryRun: true})

	assert.False(t, asked)
	assert.Equal(t, domain.FixPlanned, result.Status)
	assert.NotEmpty(t, result.Diff)
	require.Len(t, result.SideEffects, 1)
	assert.Equal(t, domain.FixPlanned, result.SideEffects[0].Status)
	assert.Equal(t, before, read(t, dir, "datasources/kafka_events.datasource"))
	assert.NoFileExists(t, filepath.Join(dir, "datasources/kafka_events.datasource.backup"))
	assert.FileExists(t, filepath.Join(dir, "includes/kafka_connection.incl"))
}

func TestApply_BackupFailureStopsWrite(t *testing.T) {
	dir := copyFixture(t)
	before := read(t, dir, "pipes/export_events.pipe")
	p := proposalFor(t, dir, rules.IDSink, "pipes/export_events.pipe")
	writer := &failingWriter{}

	svc := application.NewFixService(failingBackups{}, writer, relocate.New(), nil, nil)
	result := svc.Apply(context.Background(), dir, p, domain.Always, domain.FixOptions{})

	assert.Equal(t, domain.FixFailed, result.Status)
	assert.Contains(t, result.Error, domain.ErrBackupWriteFailed.Error())
	assert.False(t, writer.called)
	assert.Equal(t, before, read(t, dir, "pipes/export_events.pipe"))
}

func TestApply_WriteFailureIsReported(t *testing.T) {
	dir := copyFixture(t)
	before := read(t, dir, "pipes/export_events.pipe")
	p := proposalFor(t, dir, rules.IDSink, "pipes/export_events.pipe")

	svc := application.NewFixService(backup.New(".backup"), &failingWriter{}, relocate.New(), nil, nil)
	result := svc.Apply(context.Background(), dir, p, domain.Always, domain.FixOptions{})

	assert.Equal(t, domain.FixFailed, result.Status)
	assert.Contains(t, result.Error, domain.ErrAtomicWriteFailed.Error())
	assert.Equal(t, before, read(t, dir, "pipes/export_events.pipe"))
	assert.Equal(t, before, read(t, dir, "pipes/export_events.pipe.backup"))
}

func TestApply_NonIdempotentTransformFails(t *testing.T) {
	dir := copyFixture(t)
	before := read(t, dir, "pipes/daily_sales.pipe")
	p := &domain.FixProposal{
		Finding:     domain.Finding{RuleID: "Broken", ResourcePath: "pipes/daily_sales.pipe"},
		Description: "append a line",
		Transform:   func(s string) string { return s + "x\n" },
	}

	result := newFixService().Apply(context.Background(), dir, p, domain.Always, domain.FixOptions{})

	assert.Equal(t, domain.FixFailed, result.Status)
	assert.Contains(t, result.Error, domain.ErrTransformNotIdempotent.Error())
	assert.Equal(t, before, read(t, dir, "pipes/daily_sales.pipe"))
	assert.NoFileExists(t, filepath.Join(dir, "pipes/daily_sales.pipe.backup"))
}

func TestApply_SideEffectConfirmedSeparately(t *testing.T) {
	dir := copyFixture(t)
	p := proposalFor(t, dir, rules.IDIncludeFile, "datasources/kafka_events.datasource")

	var prompts []string
	confirm := func(prompt string) bool {
		prompts = append(prompts, prompt)
		return len(prompts) == 1
	}
	result := newFixService().Apply(context.Background(), dir, p, confirm, domain.FixOptions{})

	require.Len(t, prompts, 2)
	assert.Contains(t, prompts[0], "datasources/kafka_events.datasource")
	assert.Contains(t, prompts[1], "includes_backup/includes/kafka_connection.incl")
	assert.Equal(t, domain.FixApplied, result.Status)
	require.Len(t, result.SideEffects, 1)
	assert.Equal(t, domain.FixDeclined, result.SideEffects[0].Status)
	assert.FileExists(t, filepath.Join(dir, "includes/kafka_connection.incl"))
}

func TestApply_VendorRelocation(t *testing.T) {
	dir := copyFixture(t)
	p := proposalFor(t, dir, rules.IDSharedDatasource, "vendor")
	require.Nil(t, p.Transform)

	result := newFixService().Apply(context.Background(), dir, p, domain.Always, domain.FixOptions{})

	assert.Equal(t, domain.FixApplied, result.Status)
	assert.NoDirExists(t, filepath.Join(dir, "vendor"))
	assert.DirExists(t, filepath.Join(dir, "vendor_backup", "vendor", "shared_ws"))

	again := newFixService().Apply(context.Background(), dir, p, domain.Always, domain.FixOptions{})
	assert.Equal(t, domain.FixUnchanged, again.Status)
}

func TestApplyAll_Fixture(t *testing.T) {
	dir := copyFixture(t)
	report := checkDir(t, dir)

	results := newFixService().ApplyAll(context.Background(), dir, report, domain.DefaultFixSettings(), domain.Always, domain.FixOptions{})

	var got []string
	for _, r := range results {
		got = append(got, r.RuleID+" "+r.ResourcePath+" "+string(r.Status))
	}
	assert.Equal(t, []string{
		"Sink pipes/export_events.pipe applied",
		"SharedDatasource datasources/events.datasource applied",
		"SharedDatasource vendor applied",
		"EndpointType endpoints/top_products.pipe applied",
		"IncludeFile datasources/kafka_events.datasource applied",
		"IncludeFile includes/kafka_connection.incl unchanged",
	}, got)

	after := checkDir(t, dir)
	assert.Equal(t, domain.StatusWarning, after.Overall)
	for _, id := range []string{rules.IDSink, rules.IDSharedDatasource, rules.IDEndpointType, rules.IDIncludeFile} {
		assert.Equal(t, domain.StatusPass, after.PerRule()[id], id)
	}

	entries, err := history.New().Load(dir)
	require.NoError(t, err)
	assert.Len(t, entries, len(results))
}

func TestApplyAll_RuleFilterAndDryRun(t *testing.T) {
	dir := copyFixture(t)
	report := checkDir(t, dir)

	opts := domain.FixOptions{DryRun: true, Rules: []string{"endpoint-type"}}
	results := newFixService().ApplyAll(context.Background(), dir, report, domain.DefaultFixSettings(), domain.Always, opts)

	require.Len(t, results, 1)
	assert.Equal(t, domain.FixPlanned, results[0].Status)

	entries, err := history.New().Load(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "dry runs are not recorded")
}

func TestApplyAll_FailureDoesNotStopLaterFixes(t *testing.T) {
	dir := copyFixture(t)
	report := checkDir(t, dir)
	require.NoError(t, os.Remove(filepath.Join(dir, "pipes/export_events.pipe")))

	results := newFixService().ApplyAll(context.Background(), dir, report, domain.DefaultFixSettings(), domain.Always, domain.FixOptions{})

	require.NotEmpty(t, results)
	assert.Equal(t, domain.FixFailed, results[0].Status)
	assert.Equal(t, domain.FixApplied, results[1].Status)
}

func TestPlan(t *testing.T) {
	dir := copyFixture(t)
	plan := newFixService().Plan(checkDir(t, dir), domain.DefaultFixSettings(), domain.FixOptions{Rules: []string{"include-file"}})

	require.Len(t, plan, 2)
	assert.NotNil(t, plan[0].Transform)
	assert.Nil(t, plan[1].Transform)
	assert.Contains(t, application.Prompt(plan[0]), "[IncludeFile]")
}
