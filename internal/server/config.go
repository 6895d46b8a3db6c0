package server

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/pelletier/go-toml/v2"
)

// ConfigFileName is the per-workspace configuration file.
const ConfigFileName = ".qsls.toml"

// SettingsSection is the key under which clients send settings.
const SettingsSection = "go-qs-lsp"

// Config holds server configuration options.
type Config struct {
	// MaxProblems limits the number of diagnostics reported per file
	MaxProblems int `toml:"maxProblems"`

	// Trace controls logging verbosity
	Trace string `toml:"trace"`

	// Markdown enables rich hover and completion documentation
	Markdown bool `toml:"markdown"`

	// MaxCompletionItems caps a completion answer; longer lists are marked incomplete
	MaxCompletionItems int `toml:"maxCompletionItems"`

	Snapshots SnapshotConfig `toml:"snapshots"`

	// Watch enables reloading when snapshot files change on disk
	Watch bool `toml:"watch"`

	// DebounceMs delays a reload until file events have settled
	DebounceMs int `toml:"debounceMs"`

	// Parallelism bounds the number of snapshot files loaded at once
	Parallelism int `toml:"parallelism"`
}

// SnapshotConfig selects the snapshot files of a workspace.
type SnapshotConfig struct {
	Include []string `toml:"include"`
	Exclude []string `toml:"exclude"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		MaxProblems:        100,
		Trace:              "off",
		Markdown:           true,
		MaxCompletionItems: 200,
		Snapshots: SnapshotConfig{
			Include: []string{"**/*.qsnap.yaml"},
			Exclude: []string{"**/node_modules/**", "**/.git/**"},
		},
		Watch:       true,
		DebounceMs:  200,
		Parallelism: 8,
	}
}

// Clone returns a deep copy.
func (c *Config) Clone() Config {
	out := *c
	out.Snapshots.Include = slices.Clone(c.Snapshots.Include)
	out.Snapshots.Exclude = slices.Clone(c.Snapshots.Exclude)

	return out
}

// LoadConfigFile decodes dir/.qsls.toml over base. A missing file leaves
// base unchanged; unknown keys are an error.
func LoadConfigFile(dir string, base *Config) error {
	path := filepath.Join(dir, ConfigFileName)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}

		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := DecodeConfig(data, base); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	logger.Infof("loaded configuration from %s", path)

	return nil
}

// DecodeConfig decodes TOML over c.
func DecodeConfig(data []byte, c *Config) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	if err := dec.Decode(c); err != nil {
		return err
	}

	c.normalize()

	return nil
}

// ApplySettings applies client settings sent with
// workspace/didChangeConfiguration. Settings may be given under the
// "go-qs-lsp" key or at the top level. It reports whether any setting that
// selects snapshot files changed.
func ApplySettings(c *Config, settings any) bool {
	m, ok := settings.(map[string]any)
	if !ok {
		return false
	}

	if section, ok := m[SettingsSection].(map[string]any); ok {
		m = section
	}

	before := c.Clone()

	if v, ok := number(m["maxProblems"]); ok {
		c.MaxProblems = v
	}

	if v, ok := m["trace"].(string); ok {
		c.Trace = v
	}

	if v, ok := m["markdown"].(bool); ok {
		c.Markdown = v
	}

	if v, ok := number(m["maxCompletionItems"]); ok {
		c.MaxCompletionItems = v
	}

	if v, ok := m["watch"].(bool); ok {
		c.Watch = v
	}

	if v, ok := number(m["debounceMs"]); ok {
		c.DebounceMs = v
	}

	if v, ok := number(m["parallelism"]); ok {
		c.Parallelism = v
	}

	if snaps, ok := m["snapshots"].(map[string]any); ok {
		if v, ok := stringList(snaps["include"]); ok {
			c.Snapshots.Include = v
		}

		if v, ok := stringList(snaps["exclude"]); ok {
			c.Snapshots.Exclude = v
		}
	}

	c.normalize()

	return !slices.Equal(before.Snapshots.Include, c.Snapshots.Include) ||
		!slices.Equal(before.Snapshots.Exclude, c.Snapshots.Exclude)
}

// normalize replaces out-of-range values with defaults.
func (c *Config) normalize() {
	def := DefaultConfig()

	if c.MaxProblems < 0 {
		c.MaxProblems = def.MaxProblems
	}

	if c.MaxCompletionItems <= 0 {
		c.MaxCompletionItems = def.MaxCompletionItems
	}

	if c.DebounceMs < 0 {
		c.DebounceMs = def.DebounceMs
	}

	if c.Parallelism <= 0 {
		c.Parallelism = def.Parallelism
	}

	switch c.Trace {
	case "off", "message", "messages", "verbose":
	default:
		c.Trace = def.Trace
	}
}

// JSON numbers arrive as float64.
func number(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	}

	return 0, false
}

func stringList(v any) ([]string, bool) {
	items, ok := v.([]any)
	if !ok {
		return nil, false
	}

	out := make([]string, 0, len(items))

	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, false
		}

		out = append(out, s)
	}

	return out, true
}
