package config

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/mandelsoft/vfs/pkg/vfs"

	ftypes "go.hackfix.me/winfw/firewall/types"
)

// Config represents the application configuration, backed by a filesystem for
// persistence.
type Config struct {
	Firewall Firewall
	Rules    Rules

	fs   vfs.FileSystem
	path string
}

// NewConfig creates a new Config instance with the specified filesystem
// and configuration file path.
func NewConfig(fs vfs.FileSystem, path string) *Config {
	return &Config{fs: fs, path: path}
}

// Load reads and parses the configuration file from the filesystem.
// If the file doesn't exist, it initializes with an empty configuration.
func (c *Config) Load() error {
	configJSON, err := vfs.ReadFile(c.fs, c.path)
	if err != nil && !vfs.IsErrNotExist(err) {
		return fmt.Errorf("failed reading configuration file: %w", err)
	}

	// Ensure that unmarshalling JSON doesn't fail if the file doesn't exist or is empty.
	if len(configJSON) == 0 {
		configJSON = []byte("{}")
	}

	if err = json.Unmarshal(configJSON, c); err != nil {
		return fmt.Errorf("failed parsing configuration file: %w", err)
	}

	return nil
}

// Path returns the filesystem path where the configuration is stored.
func (c *Config) Path() string {
	return c.path
}

// Save writes the current configuration to the filesystem as JSON.
func (c *Config) Save() error {
	if err := c.fs.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("failed creating configuration directory: %w", err)
	}
	configJSON, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed serializing configuration data: %w", err)
	}
	if err = vfs.WriteFile(c.fs, c.path, configJSON, 0o644); err != nil {
		return fmt.Errorf("failed writing configuration file: %w", err)
	}

	return nil
}

// Firewall defines firewall-specific configuration options.
type Firewall struct {
	// Type is the firewall policy backend used on this system.
	Type sql.Null[ftypes.FirewallType] `json:"type"`
}

// Rules defines the default values of rules created by the allow command.
type Rules struct {
	// Group is the rule group new rules are added to, so they can be managed
	// together with the platform tools.
	Group sql.Null[string] `json:"group"`
	// Description is the description of new rules.
	Description sql.Null[string] `json:"description"`
}

type cfgWrapper struct {
	Firewall fwCfgWrapper    `json:"firewall"`
	Rules    rulesCfgWrapper `json:"rules"`
}
type fwCfgWrapper struct {
	Type string `json:"type,omitempty"`
}
type rulesCfgWrapper struct {
	Group       string `json:"group,omitempty"`
	Description string `json:"description,omitempty"`
}

// MarshalJSON implements custom JSON marshaling to convert sql.Null values
// to their underlying types, omitting invalid/null fields from the output.
func (c Config) MarshalJSON() ([]byte, error) {
	w := cfgWrapper{}

	if c.Firewall.Type.Valid {
		w.Firewall.Type = string(c.Firewall.Type.V)
	}
	if c.Rules.Group.Valid {
		w.Rules.Group = c.Rules.Group.V
	}
	if c.Rules.Description.Valid {
		w.Rules.Description = c.Rules.Description.V
	}

	//nolint:wrapcheck // This is fine.
	return json.Marshal(w)
}

// UnmarshalJSON implements custom JSON unmarshaling to convert plain values
// into sql.Null types, and validate the firewall type.
func (c *Config) UnmarshalJSON(data []byte) error {
	var w cfgWrapper
	if err := json.Unmarshal(data, &w); err != nil {
		//nolint:wrapcheck // This is fine.
		return err
	}

	if w.Firewall.Type != "" {
		ft, err := ftypes.FirewallTypeFromString(w.Firewall.Type)
		if err != nil {
			return err
		}
		c.Firewall.Type = sql.Null[ftypes.FirewallType]{V: ft, Valid: true}
	}
	if w.Rules.Group != "" {
		c.Rules.Group = sql.Null[string]{V: w.Rules.Group, Valid: true}
	}
	if w.Rules.Description != "" {
		c.Rules.Description = sql.Null[string]{V: w.Rules.Description, Valid: true}
	}

	return nil
}
