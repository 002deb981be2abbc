package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/danieljhkim/p4gate/internal/fsops"
)

// ErrInvalidConfig indicates a config value that cannot be used.
var ErrInvalidConfig = errors.New("invalid config")

// DefaultAlternateCharset is used for paths containing CJK characters.
const DefaultAlternateCharset = "cp936"

// P4Config configures how the p4 client is invoked. Empty connection fields
// leave the choice to p4's own environment (P4PORT, P4CONFIG, ...).
type P4Config struct {
	Bin              string            `yaml:"bin"`
	Port             string            `yaml:"port,omitempty"`
	User             string            `yaml:"user,omitempty"`
	Client           string            `yaml:"client,omitempty"`
	Charset          string            `yaml:"charset,omitempty"`
	AlternateCharset string            `yaml:"alternate_charset"`
	Env              map[string]string `yaml:"env,omitempty"`
}

// JournalConfig configures the run journal.
type JournalConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path,omitempty"`
}

// Config is the contents of config.yaml.
type Config struct {
	P4        P4Config      `yaml:"p4"`
	RulesFile string        `yaml:"rules_file,omitempty"`
	Journal   JournalConfig `yaml:"journal"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		P4: P4Config{
			Bin:              "p4",
			AlternateCharset: DefaultAlternateCharset,
		},
		Journal: JournalConfig{Enabled: true},
	}
}

// Load reads the config at path. A missing file yields Default().
// Fields absent from the file keep their default values.
func Load(fs fsops.FS, path string) (*Config, error) {
	cfg := Default()

	exists, err := fs.Exists(path)
	if err != nil {
		return nil, fmt.Errorf("failed to check config file: %w", err)
	}
	if !exists {
		return cfg, nil
	}

	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that required values are set.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.P4.Bin) == "" {
		return fmt.Errorf("%w: p4.bin must not be empty", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.P4.AlternateCharset) == "" {
		return fmt.Errorf("%w: p4.alternate_charset must not be empty", ErrInvalidConfig)
	}
	return nil
}

// Environ returns the extra environment for p4 as KEY=value pairs, with
// $VAR references expanded from the process environment.
func (c *Config) Environ() []string {
	if len(c.P4.Env) == 0 {
		return nil
	}
	env := make([]string, 0, len(c.P4.Env))
	for k, v := range c.P4.Env {
		env = append(env, k+"="+os.ExpandEnv(v))
	}
	sort.Strings(env)
	return env
}

// RulesPath returns the rule table location, falling back to paths.Rules.
func (c *Config) RulesPath(paths *Paths) string {
	if c.RulesFile != "" {
		return c.RulesFile
	}
	return paths.Rules
}

// JournalPath returns the journal location, falling back to paths.Journal.
func (c *Config) JournalPath(paths *Paths) string {
	if c.Journal.Path != "" {
		return c.Journal.Path
	}
	return paths.Journal
}

// Marshal renders c as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
