package cache_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinybirdco/forward-migration-checker/internal/adapters/outbound/cache"
	"github.com/tinybirdco/forward-migration-checker/internal/domain"
)

func sampleReport(root string) *domain.CheckReport {
	return &domain.CheckReport{
		Root:       root,
		CommitHash: "abc123",
		Resources:  2,
		Overall:    domain.StatusFail,
		Rules: []domain.RuleResult{
			{ID: "Sink", Title: "Sink pipes", Severity: domain.SeverityBlocking, Fixable: true, Status: domain.StatusFail, Findings: 1},
		},
		Findings: []domain.Finding{{
			RuleID:       "Sink",
			ResourcePath: "pipes/a.pipe",
			ResourceKind: domain.KindPipe,
			Scope:        domain.ScopeResource,
			Severity:     domain.SeverityBlocking,
			Message:      "TYPE sink is not supported in Forward",
			Fixable:      true,
			Locator:      domain.Locator{Line: 3, EndLine: 4, Lines: []int{3, 4}, Match: "TYPE sink"},
		}},
		Notices: []string{"skipped pipes/b.pipe: permission denied"},
	}
}

func TestStore_SaveAndLoad(t *testing.T) {
	store := cache.New()
	projectPath := t.TempDir()
	original := sampleReport(projectPath)

	require.NoError(t, store.Save(original))

	loaded, err := store.Load(projectPath)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, original, loaded)
	assert.FileExists(t, filepath.Join(projectPath, ".forward-check", "cache", "last-report.mp"))
}

func TestStore_LoadNonExistent(t *testing.T) {
	store := cache.New()
	projectPath := t.TempDir()

	loaded, err := store.Load(projectPath)
	assert.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestStore_LoadCorrupt(t *testing.T) {
	projectPath := t.TempDir()
	p := filepath.Join(projectPath, ".forward-check", "cache", "last-report.mp")
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
	require.NoError(t, os.WriteFile(p, []byte{0xc1}, 0644))

	_, err := cache.New().Load(projectPath)
	assert.Error(t, err)
}

func TestStore_Invalidate(t *testing.T) {
	store := cache.New()
	projectPath := t.TempDir()
	require.NoError(t, store.Save(sampleReport(projectPath)))

	require.NoError(t, store.Invalidate(projectPath))
	loaded, err := store.Load(projectPath)
	assert.NoError(t, err)
	assert.Nil(t, loaded)

	assert.NoError(t, store.Invalidate(projectPath), "invalidating twice is fine")
}
