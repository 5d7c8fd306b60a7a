package domain

// ResourceKind classifies a datafile in a Tinybird project.
type ResourceKind string

const (
	KindDatasource ResourceKind = "datasource"
	KindPipe       ResourceKind = "pipe"
	KindEndpoint   ResourceKind = "endpoint"
	KindInclude    ResourceKind = "include"
)

// ValidKinds enumerates all resource kinds in display order.
var ValidKinds = []ResourceKind{KindDatasource, KindPipe, KindEndpoint, KindInclude}

// Resource is one datafile loaded from the project tree. It is a snapshot:
// fixes write a new version to disk and never touch the loaded value.
type Resource struct {
	Path    string       `json:"path"`
	Kind    ResourceKind `json:"kind"`
	Index   int          `json:"index"`
	RawText string       `json:"-"`
	View    ParsedView   `json:"-"`
}

// NewResource builds a Resource and its parsed view from raw file contents.
func NewResource(path string, kind ResourceKind, index int, raw string) Resource {
	return Resource{
		Path:    path,
		Kind:    kind,
		Index:   index,
		RawText: raw,
		View:    Parse(raw),
	}
}

// Project is the result of loading a project root.
type Project struct {
	Root       string        `json:"root"`
	Resources  []Resource    `json:"resources"`
	VendorDirs []string      `json:"vendor_dirs,omitempty"`
	Skipped    []SkippedFile `json:"skipped,omitempty"`
}

// SkippedFile is a qualifying file the loader could not read.
type SkippedFile struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// CountByKind returns the number of resources of each kind.
func (p *Project) CountByKind() map[ResourceKind]int {
	counts := make(map[ResourceKind]int, len(ValidKinds))
	for _, r := range p.Resources {
		counts[r.Kind]++
	}
	return counts
}
