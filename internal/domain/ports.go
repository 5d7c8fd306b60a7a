package domain

// ResourceLoader walks a project root and loads every qualifying datafile.
type ResourceLoader interface {
	Load(root string, cfg ProjectConfig) (*Project, error)
}

// ConfigLoader loads project-level configuration.
type ConfigLoader interface {
	Load(projectPath string) (ProjectConfig, error)
}

// BackupStore preserves the pre-fix content of a file. It returns the path
// of the backup holding content and never overwrites an existing backup.
type BackupStore interface {
	Backup(path string, content []byte) (string, error)
}

// FileWriter replaces a file's content so no partial write is observable.
type FileWriter interface {
	WriteFile(path string, data []byte) error
}

// Relocator executes relocation side effects relative to a project root.
// It returns ErrAlreadyRelocated when the move has already happened.
type Relocator interface {
	Relocate(root string, effect SideEffect) error
}

// ReportCache persists the last CheckReport for a project.
type ReportCache interface {
	Load(projectPath string) (*CheckReport, error)
	Save(report *CheckReport) error
	Invalidate(projectPath string) error
}

// FixHistory is an append-only audit log of fix results.
type FixHistory interface {
	Append(projectPath string, entries ...FixEntry) error
	Load(projectPath string) ([]FixEntry, error)
}

// GitInfo provides version-control metadata.
type GitInfo interface {
	IsGitRepo(projectPath string) bool
	CommitHash(projectPath string) (string, error)
}
