package domain

import (
	"fmt"
	"path/filepath"
	"strings"
)

const (
	// ConfigFileName is the project-level configuration file.
	ConfigFileName = ".forward-check.yaml"
	// StateDir holds the report cache and fix history inside the project.
	StateDir = ".forward-check"

	DefaultBackupSuffix   = ".backup"
	DefaultIncludesBackup = "includes_backup"
	DefaultVendorBackup   = "vendor_backup"
	DefaultEndpointNode   = "endpoint"
	DefaultCommentPrefix  = "# COMMENTED OUT FOR FORWARD MIGRATION: "
)

// ProjectConfig holds project-level configuration loaded from .forward-check.yaml.
type ProjectConfig struct {
	ExcludePaths []string       `yaml:"exclude_paths" json:"exclude_paths,omitempty"`
	Rules        RulesConfig    `yaml:"rules"         json:"rules,omitempty"`
	Backup       BackupConfig   `yaml:"backup"        json:"backup"`
	Endpoint     EndpointConfig `yaml:"endpoint"      json:"endpoint"`
}

// RulesConfig selects which rules run.
type RulesConfig struct {
	Disable []string `yaml:"disable" json:"disable,omitempty"`
}

// BackupConfig controls where pre-fix copies and relocated files go.
type BackupConfig struct {
	Suffix      string `yaml:"suffix"       json:"suffix"`
	IncludesDir string `yaml:"includes_dir" json:"includes_dir"`
	VendorDir   string `yaml:"vendor_dir"   json:"vendor_dir"`
}

// EndpointConfig controls the EndpointType fix.
type EndpointConfig struct {
	DefaultNode string `yaml:"default_node" json:"default_node"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() ProjectConfig {
	return ProjectConfig{
		Backup: BackupConfig{
			Suffix:      DefaultBackupSuffix,
			IncludesDir: DefaultIncludesBackup,
			VendorDir:   DefaultVendorBackup,
		},
		Endpoint: EndpointConfig{DefaultNode: DefaultEndpointNode},
	}
}

// WithDefaults fills every unset value from DefaultConfig.
func (c ProjectConfig) WithDefaults() ProjectConfig {
	d := DefaultConfig()
	if c.Backup.Suffix == "" {
		c.Backup.Suffix = d.Backup.Suffix
	}
	if c.Backup.IncludesDir == "" {
		c.Backup.IncludesDir = d.Backup.IncludesDir
	}
	if c.Backup.VendorDir == "" {
		c.Backup.VendorDir = d.Backup.VendorDir
	}
	if c.Endpoint.DefaultNode == "" {
		c.Endpoint.DefaultNode = d.Endpoint.DefaultNode
	}
	return c
}

// Validate checks user-provided values. knownRules are the registered rule IDs.
func (c ProjectConfig) Validate(knownRules []string) error {
	for _, name := range c.Rules.Disable {
		if !ruleKnown(knownRules, name) {
			return fmt.Errorf("unknown rule %q in rules.disable (valid: %s)", name, strings.Join(knownRules, ", "))
		}
	}
	if c.Backup.Suffix != "" && strings.ContainsAny(c.Backup.Suffix, `/\`) {
		return fmt.Errorf("backup.suffix %q must not contain a path separator", c.Backup.Suffix)
	}
	for key, dir := range map[string]string{
		"backup.includes_dir": c.Backup.IncludesDir,
		"backup.vendor_dir":   c.Backup.VendorDir,
	} {
		if dir == "" {
			continue
		}
		if filepath.IsAbs(dir) || strings.HasPrefix(filepath.Clean(dir), "..") {
			return fmt.Errorf("%s %q must be a path inside the project", key, dir)
		}
	}
	if strings.ContainsAny(c.Endpoint.DefaultNode, " \t\n") {
		return fmt.Errorf("endpoint.default_node %q must be a single word", c.Endpoint.DefaultNode)
	}
	return nil
}

func ruleKnown(known []string, name string) bool {
	for _, id := range known {
		if MatchesRule(id, name) {
			return true
		}
	}
	return false
}

// IsRuleDisabled reports whether the rule is listed in rules.disable.
func (c ProjectConfig) IsRuleDisabled(id string) bool {
	for _, name := range c.Rules.Disable {
		if MatchesRule(id, name) {
			return true
		}
	}
	return false
}

// SkipDirs are directories the loader never descends into: tool state,
// backup destinations and user exclusions.
func (c ProjectConfig) SkipDirs() []string {
	c = c.WithDefaults()
	dirs := []string{StateDir, c.Backup.IncludesDir, c.Backup.VendorDir}
	return append(dirs, c.ExcludePaths...)
}

// FixSettings extracts the values fix builders need.
func (c ProjectConfig) FixSettings() FixSettings {
	c = c.WithDefaults()
	return FixSettings{
		DefaultNode:    c.Endpoint.DefaultNode,
		IncludesBackup: c.Backup.IncludesDir,
		VendorBackup:   c.Backup.VendorDir,
		CommentPrefix:  DefaultCommentPrefix,
	}
}
