package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const configFileName = "quill.toml"

// quillConfig - содержимое quill.toml. Все секции необязательны.
type quillConfig struct {
	Tokenize tokenizeConfig `toml:"tokenize"`
	Trace    traceConfig    `toml:"trace"`
	Output   outputConfig   `toml:"output"`
}

type tokenizeConfig struct {
	Format string `toml:"format"`
	Jobs   int    `toml:"jobs"`
	Cache  bool   `toml:"cache"`
	Ext    string `toml:"ext"`
}

type traceConfig struct {
	Level  string `toml:"level"`
	Output string `toml:"output"`
	Mode   string `toml:"mode"`
}

type outputConfig struct {
	Color          string `toml:"color"`
	MaxDiagnostics int    `toml:"max_diagnostics"`
}

// loadedConfig хранит декодированный файл и набор явно заданных ключей.
type loadedConfig struct {
	Path   string
	Config quillConfig
	meta   toml.MetaData
}

func findConfig(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, configFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

func loadConfig(path string) (*loadedConfig, error) {
	var cfg quillConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if meta.IsDefined("tokenize", "format") {
		switch cfg.Tokenize.Format {
		case "pretty", "json", "msgpack":
		default:
			return nil, fmt.Errorf("%s: [tokenize].format must be pretty, json or msgpack, got %q", path, cfg.Tokenize.Format)
		}
	}
	if cfg.Tokenize.Jobs < 0 {
		return nil, fmt.Errorf("%s: [tokenize].jobs must not be negative", path)
	}
	if meta.IsDefined("tokenize", "ext") && !strings.HasPrefix(cfg.Tokenize.Ext, ".") {
		return nil, fmt.Errorf("%s: [tokenize].ext must start with a dot", path)
	}
	return &loadedConfig{Path: path, Config: cfg, meta: meta}, nil
}

// apply переносит значения файла во флаги, которые не заданы явно.
// Флаги, которых нет у команды, пропускаются.
func (c *loadedConfig) apply(flags *pflag.FlagSet) error {
	set := func(key []string, flag, value string) error {
		if !c.meta.IsDefined(key...) {
			return nil
		}
		f := flags.Lookup(flag)
		if f == nil || f.Changed {
			return nil
		}
		if err := f.Value.Set(value); err != nil {
			return fmt.Errorf("%s: %s: %w", c.Path, strings.Join(key, "."), err)
		}
		return nil
	}

	cfg := c.Config
	steps := []struct {
		key   []string
		flag  string
		value string
	}{
		{[]string{"tokenize", "format"}, "format", cfg.Tokenize.Format},
		{[]string{"tokenize", "jobs"}, "jobs", strconv.Itoa(cfg.Tokenize.Jobs)},
		{[]string{"tokenize", "cache"}, "cache", strconv.FormatBool(cfg.Tokenize.Cache)},
		{[]string{"tokenize", "ext"}, "ext", cfg.Tokenize.Ext},
		{[]string{"trace", "level"}, "trace-level", cfg.Trace.Level},
		{[]string{"trace", "output"}, "trace", cfg.Trace.Output},
		{[]string{"trace", "mode"}, "trace-mode", cfg.Trace.Mode},
		{[]string{"output", "color"}, "color", cfg.Output.Color},
		{[]string{"output", "max_diagnostics"}, "max-diagnostics", strconv.Itoa(cfg.Output.MaxDiagnostics)},
	}
	for _, s := range steps {
		if err := set(s.key, s.flag, s.value); err != nil {
			return err
		}
	}
	return nil
}

// applyConfigFile находит quill.toml (или берёт --config) и применяет его к флагам команды.
func applyConfigFile(cmd *cobra.Command) error {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return fmt.Errorf("failed to get config flag: %w", err)
	}
	if path == "" {
		found, ok, err := findConfig(".")
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		path = found
	}
	cfg, err := loadConfig(path)
	if err != nil {
		return err
	}
	return cfg.apply(cmd.Flags())
}
