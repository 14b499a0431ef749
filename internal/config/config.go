// Package config handles vaultkit configuration: the TOML settings file and
// the environment that carries remote credentials.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/aidanlsb/vaultkit/internal/fieldmap"
)

// Store names accepted by sync.store.
const (
	StoreAirtable = "airtable"
	StoreSQLite   = "sqlite"
)

// DefaultSQLiteFile is the mirror database used when sync.sqlite_path is unset,
// relative to the vault root.
const DefaultSQLiteFile = ".vaultkit/sync.db"

// StateDirPattern excludes the vault's own state directory from every walk.
const StateDirPattern = ".vaultkit/**"

// Config represents the vaultkit configuration file.
type Config struct {
	// Exclude holds doublestar patterns, relative to the vault root, that
	// every walk skips.
	Exclude []string `toml:"exclude"`

	Sync SyncConfig `toml:"sync"`

	// UI controls optional CLI theming preferences.
	UI UIConfig `toml:"ui"`
}

// SyncConfig configures `network airtable-sync`.
type SyncConfig struct {
	// Tag selects the notes that are synced. Defaults to "Person".
	Tag string `toml:"tag"`

	// Store is "airtable" (default) or "sqlite".
	Store string `toml:"store"`

	// SQLitePath is the mirror database. Relative paths resolve against the
	// vault root.
	SQLitePath string `toml:"sqlite_path"`

	// Fields replaces the built-in field rules when set.
	Fields []fieldmap.Rule `toml:"fields"`
}

// UIConfig represents optional CLI theming preferences.
type UIConfig struct {
	// Accent is an ANSI color code ("0" to "255") or a hex color ("#RRGGBB").
	Accent string `toml:"accent"`

	// CodeTheme sets the Glamour/Chroma theme used for rendered markdown.
	CodeTheme string `toml:"code_theme"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Sync: SyncConfig{
			Tag:   "Person",
			Store: StoreAirtable,
		},
	}
}

// Load loads the configuration from the default location.
// Returns a default config if the file doesn't exist.
func Load() (*Config, error) {
	configPath := DefaultPath()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return Default(), nil
	}

	return LoadFrom(configPath)
}

// LoadFrom loads the configuration from a specific path. Unset keys keep
// their defaults.
func LoadFrom(path string) (*Config, error) {
	config := Default()
	meta, err := toml.DecodeFile(path, config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return config, nil
}

// Validate checks values that decoding alone cannot.
func (c *Config) Validate() error {
	switch c.Sync.Store {
	case StoreAirtable, StoreSQLite:
	default:
		return fmt.Errorf("sync.store must be %q or %q, got %q", StoreAirtable, StoreSQLite, c.Sync.Store)
	}
	if strings.TrimSpace(c.Sync.Tag) == "" {
		return fmt.Errorf("sync.tag must not be empty")
	}
	if err := fieldmap.ValidateRules(c.Sync.Fields); err != nil {
		return fmt.Errorf("sync.fields: %w", err)
	}
	return nil
}

// FieldRules returns the configured field rules, or the built-in table.
func (c *Config) FieldRules() []fieldmap.Rule {
	if len(c.Sync.Fields) > 0 {
		return c.Sync.Fields
	}
	return fieldmap.DefaultRules
}

// SQLitePath resolves the mirror database path for a vault.
func (c *Config) SQLitePath(vaultRoot string) string {
	p := c.Sync.SQLitePath
	if p == "" {
		p = DefaultSQLiteFile
	}
	if strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, p[2:])
		}
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(vaultRoot, filepath.FromSlash(p))
	}
	return p
}

// DefaultPath returns the default config file path.
// Checks ~/.config/vaultkit/config.toml first (XDG style),
// then falls back to OS-specific location.
func DefaultPath() string {
	if home, err := os.UserHomeDir(); err == nil {
		xdgPath := filepath.Join(home, ".config", "vaultkit", "config.toml")
		if _, err := os.Stat(xdgPath); err == nil {
			return xdgPath
		}
	}

	if configDir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(configDir, "vaultkit", "config.toml")
	}

	return filepath.Join(".", "config.toml")
}

const defaultConfigFile = `# vaultkit configuration

# Paths skipped by every walk (doublestar patterns, relative to the vault).
# exclude = [".obsidian/**", ".trash/**"]

[sync]
# Notes carrying this tag are synced.
tag = "Person"

# "airtable" or "sqlite".
store = "airtable"

# SQLite mirror location, relative to the vault unless absolute.
# sqlite_path = ".vaultkit/sync.db"

# Field rules replace the built-in ones when present.
# [[sync.fields]]
# source = "birth date"
# column = "Birth Date"
# sync_empty = true

# [ui]
# accent = "39"
# code_theme = "monokai"
`

// CreateDefault writes a commented default config file at path unless one
// already exists. It reports whether a file was written.
func CreateDefault(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigFile), 0o644); err != nil {
		return false, fmt.Errorf("failed to write config file: %w", err)
	}
	return true, nil
}
