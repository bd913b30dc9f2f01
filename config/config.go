// Package config holds the comparison settings shared by the CLI commands.
// Values come from .ddlcompare.yaml, then environment variables, then flags.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const DefaultPath = ".ddlcompare.yaml"

const (
	EnvDetectDrops   = "DDLCOMPARE_DETECT_DROPS"
	EnvPreserveOrder = "DDLCOMPARE_PRESERVE_ORDER"
	EnvOutput        = "DDLCOMPARE_OUTPUT"
)

type Config struct {
	DetectDrops         bool     `yaml:"detect_drops"`
	PreserveColumnOrder bool     `yaml:"preserve_column_order"`
	Rollback            bool     `yaml:"rollback"`
	Output              string   `yaml:"output"`
	SkipTables          []string `yaml:"skip_tables"`
	TargetTables        []string `yaml:"target_tables"`
}

func Default() *Config {
	return &Config{Rollback: true}
}

// Load reads the config file at path and applies environment overrides.
// An empty path reads DefaultPath, which may be absent.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := cfg.decode(data); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ApplyEnv overrides settings from the environment. lookup is usually
// os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	for key, dst := range map[string]*bool{
		EnvDetectDrops:   &c.DetectDrops,
		EnvPreserveOrder: &c.PreserveColumnOrder,
	} {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = b
	}
	if v, ok := lookup(EnvOutput); ok && v != "" {
		c.Output = v
	}
	return nil
}

// TableFilter returns the predicate selecting tables to compare. Patterns
// are regular expressions matched against the whole table name. With
// target tables set only matching tables are kept; skip tables are
// removed afterwards.
func (c *Config) TableFilter() (func(string) bool, error) {
	targets, err := compileAll(c.TargetTables)
	if err != nil {
		return nil, fmt.Errorf("target_tables: %w", err)
	}
	skips, err := compileAll(c.SkipTables)
	if err != nil {
		return nil, fmt.Errorf("skip_tables: %w", err)
	}

	return func(name string) bool {
		if len(targets) > 0 && !matchAny(targets, name) {
			return false
		}
		return !matchAny(skips, name)
	}, nil
}

// Filtered reports whether TableFilter can drop any table.
func (c *Config) Filtered() bool {
	return len(c.TargetTables) > 0 || len(c.SkipTables) > 0
}

func compileAll(patterns []string) ([]*regexp.Regexp, error) {
	var out []*regexp.Regexp
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		re, err := regexp.Compile("^(?:" + p + ")$")
		if err != nil {
			return nil, err
		}
		out = append(out, re)
	}
	return out, nil
}

func matchAny(res []*regexp.Regexp, name string) bool {
	for _, re := range res {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}

const example = `# ddl-compare settings. Environment variables and command line flags
# override these values.

# Report tables and columns present only in the destination as drops.
detect_drops: false

# Position added columns with AFTER/FIRST to follow the source order.
preserve_column_order: false

# Include a down section when writing migration files.
rollback: true

# Migration file written by "generate". Empty means migrations/<timestamp>_migration.sql.
output: ""

# Regular expressions matched against whole table names.
# target_tables:
#   - app_.*
# skip_tables:
#   - tmp_.*
`

// WriteExample writes a commented config file to path. It refuses to
// overwrite an existing file.
func WriteExample(path string) error {
	if path == "" {
		path = DefaultPath
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if _, err := f.WriteString(example); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
