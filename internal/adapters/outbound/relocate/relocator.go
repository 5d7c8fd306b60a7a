package relocate

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/viant/afs"

	"github.com/tinybirdco/forward-migration-checker/internal/domain"
)

// Relocator implements domain.Relocator on top of afs. Paths in side effects
// are slash-separated and relative to the project root.
type Relocator struct {
	fs afs.Service
}

func New() *Relocator {
	return &Relocator{fs: afs.New()}
}

// Relocate moves effect.Source to effect.Destination. A missing source with
// an existing destination returns domain.ErrAlreadyRelocated; a missing
// source otherwise returns an error wrapping fs.ErrNotExist. An occupied
// destination is never overwritten.
func (r *Relocator) Relocate(root string, effect domain.SideEffect) error {
	ctx := context.Background()
	src := filepath.Join(root, filepath.FromSlash(effect.Source))
	dst := filepath.Join(root, filepath.FromSlash(effect.Destination))

	srcExists, err := r.fs.Exists(ctx, src)
	if err != nil {
		return fmt.Errorf("checking %s: %w", effect.Source, err)
	}
	dstExists, err := r.fs.Exists(ctx, dst)
	if err != nil {
		return fmt.Errorf("checking %s: %w", effect.Destination, err)
	}

	switch {
	case !srcExists && dstExists:
		return fmt.Errorf("%s: %w", effect.Source, domain.ErrAlreadyRelocated)
	case !srcExists:
		return fmt.Errorf("%s: %w", effect.Source, fs.ErrNotExist)
	case dstExists:
		return fmt.Errorf("%s: destination %s: %w", effect.Source, effect.Destination, fs.ErrExist)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(effect.Destination), err)
	}
	if err := r.fs.Move(ctx, src, dst); err != nil {
		return fmt.Errorf("moving %s to %s: %w", effect.Source, effect.Destination, err)
	}
	return nil
}
