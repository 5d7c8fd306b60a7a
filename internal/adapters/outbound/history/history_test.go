package history_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinybirdco/forward-migration-checker/internal/adapters/outbound/history"
	"github.com/tinybirdco/forward-migration-checker/internal/domain"
)

func TestHistory_AppendAndLoad(t *testing.T) {
	dir := t.TempDir()
	h := history.New()

	entry := domain.FixEntry{
		Timestamp:    "2026-10-18T10:00:00Z",
		CommitHash:   "abc1234",
		RuleID:       "Sink",
		ResourcePath: "pipes/a.pipe",
		Status:       domain.FixApplied,
		BackupPath:   "pipes/a.pipe.backup",
	}

	require.NoError(t, h.Append(dir, entry))

	entries, err := h.Load(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entry, entries[0])
}

func TestHistory_AppendMultiple(t *testing.T) {
	dir := t.TempDir()
	h := history.New()

	require.NoError(t, h.Append(dir, domain.FixEntry{Timestamp: "t1", RuleID: "Sink", Status: domain.FixApplied}))
	require.NoError(t, h.Append(dir,
		domain.FixEntry{Timestamp: "t2", RuleID: "EndpointType", Status: domain.FixDeclined},
		domain.FixEntry{Timestamp: "t2", RuleID: "IncludeFile", Status: domain.FixFailed, Error: "boom"},
	))

	entries, err := h.Load(dir)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "t1", entries[0].Timestamp)
	assert.Equal(t, domain.FixDeclined, entries[1].Status)
	assert.Equal(t, "boom", entries[2].Error)
}

func TestHistory_LoadEmpty(t *testing.T) {
	entries, err := history.New().Load(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestHistory_LoadCorrupt(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, ".forward-check", "history", "fixes.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
	require.NoError(t, os.WriteFile(p, []byte("{not json"), 0644))

	_, err := history.New().Load(dir)
	assert.Error(t, err)
	assert.Error(t, history.New().Append(dir, domain.FixEntry{}))
}
