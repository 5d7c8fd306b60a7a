package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	envPrefix = "FORWARD_CHECK"

	verboseFlagName  = "verbose"
	logFileFlagName  = "log-file"
	logLevelFlagName = "log-level"
	jobsFlagName     = "jobs"

	jobsKey          = "jobs"
	logVerboseKey    = "log.verbose"
	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultProjectPath   = "./tinybird"
	defaultLogLevel      = "warn"
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

// newSettings returns the process configuration: defaults overridden by
// FORWARD_CHECK_* environment variables, overridden in turn by flags bound
// with bindFlagToConfig.
func newSettings() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	v.SetDefault(jobsKey, 0)
	v.SetDefault(logVerboseKey, false)
	v.SetDefault(logFilenameKey, "")
	v.SetDefault(logLevelKey, defaultLogLevel)
	v.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	v.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	v.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	v.SetDefault(logCompressKey, defaultLogCompress)
	return v
}

func configureRootFlags(cmd *cobra.Command, v *viper.Viper) {
	flags := cmd.PersistentFlags()

	flags.BoolP(verboseFlagName, "v", false, "log debug output")
	bindFlagToConfig(v, flags.Lookup(verboseFlagName), logVerboseKey)

	flags.String(logFileFlagName, "", "write logs to a rotating file instead of stderr")
	bindFlagToConfig(v, flags.Lookup(logFileFlagName), logFilenameKey)

	flags.String(logLevelFlagName, defaultLogLevel, "log level (debug, info, warn, error)")
	bindFlagToConfig(v, flags.Lookup(logLevelFlagName), logLevelKey)

	flags.IntP(jobsFlagName, "j", 0, "rule evaluation workers (0 = GOMAXPROCS)")
	bindFlagToConfig(v, flags.Lookup(jobsFlagName), jobsKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so env values feed the
// flag.
func bindFlagToConfig(v *viper.Viper, flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}
	cobra.CheckErr(v.BindPFlag(key, flag))
}

// logLevel resolves the process log level. --verbose wins over log.level.
// Levels use slog names ("debug", "warn", "info+2"), the "warning" alias or a
// bare number; anything else falls back to warn.
func logLevel(v *viper.Viper) slog.Level {
	if v.GetBool(logVerboseKey) {
		return slog.LevelDebug
	}

	value := strings.ToLower(strings.TrimSpace(v.GetString(logLevelKey)))
	switch value {
	case "":
		return slog.LevelWarn
	case "warning":
		value = "warn"
	}
	if n, err := strconv.Atoi(value); err == nil {
		return slog.Level(n)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(value)); err != nil {
		return slog.LevelWarn
	}
	return level
}

// configureLogger installs the default slog logger. Logs go to stderr unless
// a log file is configured, in which case lumberjack rotates it.
func configureLogger(v *viper.Viper, stderr io.Writer) *slog.Logger {
	level := logLevel(v)

	w := stderr
	if path := strings.TrimSpace(v.GetString(logFilenameKey)); path != "" {
		w = &lumberjack.Logger{
			Filename:   path,
			MaxSize:    v.GetInt(logMaxSizeKey),
			MaxBackups: v.GetInt(logMaxBackupsKey),
			MaxAge:     v.GetInt(logMaxAgeKey),
			Compress:   v.GetBool(logCompressKey),
		}
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}
