// Package config loads mee's settings from config.yaml, MEE_ environment
// variables, and command-line flags.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/zephyrtronium/mathexpr"
)

const (
	configFileName = "config"
	configFileType = "yaml"

	// Config keys.
	KeyPrecision      = "precision"
	KeyLogLevel       = "log_level"
	KeyHistoryEnabled = "history.enabled"
	KeyHistoryPath    = "history.path"
	KeyPrompt         = "repl.prompt"
	KeyLineHistory    = "repl.history_file"

	envPrefix = "MEE"
)

// flagKeys maps command-line flag names to the keys they override.
var flagKeys = map[string]string{
	"prec":      KeyPrecision,
	"log-level": KeyLogLevel,
	"history":   KeyHistoryEnabled,
}

// Config holds mee's settings after all sources are merged.
type Config struct {
	// Precision is the number of mantissa bits used for evaluation.
	Precision uint
	// LogLevel is a zerolog level name.
	LogLevel string
	// HistoryEnabled turns on recording of evaluations in the history store.
	HistoryEnabled bool
	// HistoryPath is the history database file.
	HistoryPath string
	// Prompt is the REPL prompt.
	Prompt string
	// LineHistory is the file the REPL keeps its input line history in.
	LineHistory string
}

// Load reads config.yaml from dir and merges environment variables and any
// flags in fs that were set on the command line. A missing config.yaml is not
// an error; defaults apply. fs may be nil.
func Load(dir string, fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetDefault(KeyPrecision, mathexpr.DefaultPrec)
	v.SetDefault(KeyLogLevel, zerolog.WarnLevel.String())
	v.SetDefault(KeyHistoryEnabled, false)
	v.SetDefault(KeyHistoryPath, "")
	v.SetDefault(KeyPrompt, "> ")
	v.SetDefault(KeyLineHistory, "")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for name, key := range flagKeys {
			f := fs.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	if dir != "" {
		v.SetConfigName(configFileName)
		v.SetConfigType(configFileType)
		v.AddConfigPath(dir)
		if err := v.ReadInConfig(); err != nil {
			var nf viper.ConfigFileNotFoundError
			if !errors.As(err, &nf) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	prec := v.GetInt(KeyPrecision)
	if prec <= 0 {
		return nil, fmt.Errorf("%s must be a positive number of bits, not %q", KeyPrecision, v.GetString(KeyPrecision))
	}
	lvl := strings.ToLower(v.GetString(KeyLogLevel))
	if _, err := zerolog.ParseLevel(lvl); err != nil {
		return nil, fmt.Errorf("%s: %w", KeyLogLevel, err)
	}
	cfg := Config{
		Precision:      uint(prec),
		LogLevel:       lvl,
		HistoryEnabled: v.GetBool(KeyHistoryEnabled),
		HistoryPath:    v.GetString(KeyHistoryPath),
		Prompt:         v.GetString(KeyPrompt),
		LineHistory:    v.GetString(KeyLineHistory),
	}
	if cfg.HistoryPath == "" || cfg.LineHistory == "" {
		data, err := DefaultDataDir()
		if err != nil {
			return nil, fmt.Errorf("data directory: %w", err)
		}
		if cfg.HistoryPath == "" {
			cfg.HistoryPath = filepath.Join(data, "history.db")
		}
		if cfg.LineHistory == "" {
			cfg.LineHistory = filepath.Join(data, "repl_history")
		}
	}
	return &cfg, nil
}
