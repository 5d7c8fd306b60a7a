package gitinfo_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinybirdco/forward-migration-checker/internal/adapters/outbound/gitinfo"
)

// initRepo creates a repository with one commit and a tinybird/ subdirectory.
func initRepo(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "tinybird", "pipes"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tinybird", "pipes", "a.pipe"), []byte("NODE a\n"), 0644))

	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("tinybird/pipes/a.pipe")
	require.NoError(t, err)
	hash, err := wt.Commit("init", &git.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@test.com", When: time.Now()},
	})
	require.NoError(t, err)
	return dir, hash.String()
}

func TestGitInfo_IsGitRepo_True(t *testing.T) {
	dir, _ := initRepo(t)
	gi := gitinfo.New()
	assert.True(t, gi.IsGitRepo(dir))
}

func TestGitInfo_IsGitRepo_False(t *testing.T) {
	dir := t.TempDir()
	gi := gitinfo.New()
	assert.False(t, gi.IsGitRepo(dir))
}

func TestGitInfo_CommitHash_ReturnsHash(t *testing.T) {
	dir, want := initRepo(t)

	hash, err := gitinfo.New().CommitHash(dir)
	require.NoError(t, err)
	assert.Equal(t, want, hash)
	assert.Len(t, hash, 40, "should be a full SHA-1 hash")
}

func TestGitInfo_CommitHash_FromSubdirectory(t *testing.T) {
	dir, want := initRepo(t)

	hash, err := gitinfo.New().CommitHash(filepath.Join(dir, "tinybird"))
	require.NoError(t, err)
	assert.Equal(t, want, hash)
}

func TestGitInfo_CommitHash_NotGitRepo(t *testing.T) {
	dir := t.TempDir()
	gi := gitinfo.New()
	_, err := gi.CommitHash(dir)
	assert.Error(t, err)
}
