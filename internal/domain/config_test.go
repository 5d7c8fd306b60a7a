package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tinybirdco/forward-migration-checker/internal/domain"
)

var knownRules = []string{"VersionTag", "Sink", "DynamoDbImport"}

func TestDefaultConfig(t *testing.T) {
	cfg := domain.DefaultConfig()
	assert.Equal(t, ".backup", cfg.Backup.Suffix)
	assert.Equal(t, "includes_backup", cfg.Backup.IncludesDir)
	assert.Equal(t, "vendor_backup", cfg.Backup.VendorDir)
	assert.Equal(t, "endpoint", cfg.Endpoint.DefaultNode)
	assert.Empty(t, cfg.ExcludePaths)
	assert.NoError(t, cfg.Validate(knownRules))
}

func TestWithDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := domain.ProjectConfig{Backup: domain.BackupConfig{Suffix: ".orig"}}.WithDefaults()
	assert.Equal(t, ".orig", cfg.Backup.Suffix)
	assert.Equal(t, "includes_backup", cfg.Backup.IncludesDir)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     domain.ProjectConfig
		wantErr string
	}{
		{"slug accepted", domain.ProjectConfig{Rules: domain.RulesConfig{Disable: []string{"dynamo-db-import"}}}, ""},
		{"id accepted", domain.ProjectConfig{Rules: domain.RulesConfig{Disable: []string{"versiontag"}}}, ""},
		{"unknown rule", domain.ProjectConfig{Rules: domain.RulesConfig{Disable: []string{"nope"}}}, "unknown rule"},
		{"suffix with separator", domain.ProjectConfig{Backup: domain.BackupConfig{Suffix: "a/b"}}, "backup.suffix"},
		{"absolute dir", domain.ProjectConfig{Backup: domain.BackupConfig{IncludesDir: "/tmp/x"}}, "backup.includes_dir"},
		{"escaping dir", domain.ProjectConfig{Backup: domain.BackupConfig{VendorDir: "../x"}}, "backup.vendor_dir"},
		{"node with space", domain.ProjectConfig{Endpoint: domain.EndpointConfig{DefaultNode: "my node"}}, "default_node"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate(knownRules)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestIsRuleDisabled(t *testing.T) {
	cfg := domain.ProjectConfig{Rules: domain.RulesConfig{Disable: []string{"sink"}}}
	assert.True(t, cfg.IsRuleDisabled("Sink"))
	assert.False(t, cfg.IsRuleDisabled("VersionTag"))
}

func TestSkipDirs(t *testing.T) {
	cfg := domain.ProjectConfig{ExcludePaths: []string{"legacy"}}
	assert.Equal(t, []string{".forward-check", "includes_backup", "vendor_backup", "legacy"}, cfg.SkipDirs())
}

func TestFixSettings(t *testing.T) {
	s := domain.ProjectConfig{Endpoint: domain.EndpointConfig{DefaultNode: "main"}}.FixSettings()
	assert.Equal(t, "main", s.DefaultNode)
	assert.Equal(t, domain.DefaultCommentPrefix, s.CommentPrefix)
	assert.Equal(t, domain.DefaultConfig().FixSettings().IncludesBackup, s.IncludesBackup)
}

func TestRuleSlug(t *testing.T) {
	assert.Equal(t, "dynamo-db-import", domain.RuleSlug("DynamoDbImport"))
	assert.Equal(t, "version-tag", domain.RuleSlug("VersionTag"))
	assert.True(t, domain.MatchesRule("SharedDatasource", "shared-datasource"))
	assert.True(t, domain.MatchesRule("SharedDatasource", " SHAREDDATASOURCE "))
	assert.False(t, domain.MatchesRule("Sink", "sinks"))
}

func TestFixOptions_Selects(t *testing.T) {
	assert.True(t, domain.FixOptions{}.Selects("Sink"))
	opts := domain.FixOptions{Rules: []string{"endpoint-type"}}
	assert.True(t, opts.Selects("EndpointType"))
	assert.False(t, opts.Selects("Sink"))
}
