package cli

import (
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/tinybirdco/forward-migration-checker/internal/adapters/outbound/backup"
	"github.com/tinybirdco/forward-migration-checker/internal/adapters/outbound/cache"
	"github.com/tinybirdco/forward-migration-checker/internal/adapters/outbound/config"
	"github.com/tinybirdco/forward-migration-checker/internal/adapters/outbound/fsutil"
	"github.com/tinybirdco/forward-migration-checker/internal/adapters/outbound/gitinfo"
	"github.com/tinybirdco/forward-migration-checker/internal/adapters/outbound/history"
	"github.com/tinybirdco/forward-migration-checker/internal/adapters/outbound/loader"
	"github.com/tinybirdco/forward-migration-checker/internal/adapters/outbound/relocate"
	"github.com/tinybirdco/forward-migration-checker/internal/application"
	"github.com/tinybirdco/forward-migration-checker/internal/domain/engine"
)

func newCheckService() *application.CheckService {
	return application.NewCheckService(loader.New(), config.New(), gitinfo.New(), cache.New())
}

// newFixService wires a FixService whose backups use the project's
// configured suffix.
func newFixService(suffix string) *application.FixService {
	return application.NewFixService(
		backup.New(suffix),
		fsutil.NewAtomicWriter(),
		relocate.New(),
		history.New(),
		gitinfo.New(),
	)
}

func engineOptions(v *viper.Viper) engine.Options {
	return engine.Options{Jobs: v.GetInt(jobsKey)}
}

func projectArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return defaultProjectPath
}

func absProject(args []string) (string, error) {
	return filepath.Abs(projectArg(args))
}
