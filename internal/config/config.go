package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the msgstats configuration
type Config struct {
	Messages MessagesConfig `yaml:"messages"`
	Contacts ContactsConfig `yaml:"contacts"`
	Report   ReportConfig   `yaml:"report"`
	Serve    ServeConfig    `yaml:"serve"`
	LogLevel string         `yaml:"log_level"`
}

// MessagesConfig locates the message store
type MessagesConfig struct {
	ChatDB string `yaml:"chat_db"`
}

// ContactsConfig locates the contacts stores
type ContactsConfig struct {
	AddressBookDir string   `yaml:"addressbook_dir"`
	Sources        []string `yaml:"sources,omitempty"`
}

// ReportConfig controls what a run emits
type ReportConfig struct {
	OutputDir string `yaml:"output_dir"`
	TopN      int    `yaml:"top_n"`
	// Since is an optional YYYY-MM-DD lower bound.
	Since    string `yaml:"since,omitempty"`
	Timezone string `yaml:"timezone"`
}

// ServeConfig controls the chart preview server
type ServeConfig struct {
	Port int    `yaml:"port"`
	Dir  string `yaml:"dir,omitempty"`
	// ChartDir holds the chart pages, mounted at /chart/ when set.
	ChartDir string `yaml:"chart_dir,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Messages: MessagesConfig{
			ChatDB: filepath.Join(home, "Library", "Messages", "chat.db"),
		},
		Contacts: ContactsConfig{
			AddressBookDir: filepath.Join(home, "Library", "Application Support", "AddressBook"),
		},
		Report: ReportConfig{
			OutputDir: ".",
			TopN:      50,
			Timezone:  "Local",
		},
		Serve:    ServeConfig{Port: 8000},
		LogLevel: "info",
	}
}

// GetConfigDir returns the XDG-compliant config directory
func GetConfigDir() (string, error) {
	// Explicit override (useful for tests and portable installs)
	if override := os.Getenv("MSGSTATS_CONFIG_DIR"); override != "" {
		return override, nil
	}

	var base string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		base = xdg
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "msgstats"), nil
}

// GetPath returns the path of config.yaml
func GetPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.yaml"), nil
}

// Load loads config from the config file, filling unset fields with defaults
func Load() (*Config, error) {
	configPath, err := GetPath()
	if err != nil {
		return nil, err
	}

	cfg := Default()
	data, err := os.ReadFile(configPath)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.expand()
	return cfg, nil
}

// Overrides are per-invocation values that win over the file and env.
// Empty strings and a nil TopN leave the loaded value alone.
type Overrides struct {
	ChatDB    string
	OutputDir string
	TopN      *int
	Since     string
	Timezone  string
}

// Apply copies set overrides onto c, expanding paths the same way Load does.
func (c *Config) Apply(o Overrides) {
	if o.ChatDB != "" {
		c.Messages.ChatDB = expandPath(o.ChatDB)
	}
	if o.OutputDir != "" {
		c.Report.OutputDir = expandPath(o.OutputDir)
	}
	if o.TopN != nil {
		c.Report.TopN = *o.TopN
	}
	if o.Since != "" {
		c.Report.Since = o.Since
	}
	if o.Timezone != "" {
		c.Report.Timezone = o.Timezone
	}
}

// Save saves the config to the config file
func (c *Config) Save() error {
	configDir, err := GetConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configPath := filepath.Join(configDir, "config.yaml")

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// ValidateRun checks the values a report run depends on.
func (c *Config) ValidateRun() error {
	if strings.TrimSpace(c.Messages.ChatDB) == "" {
		return fmt.Errorf("messages.chat_db is required")
	}
	if c.Report.TopN < 0 {
		return fmt.Errorf("report.top_n must be >= 0, got %d", c.Report.TopN)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.Since(); err != nil {
		return err
	}
	return c.validateLogLevel()
}

// ValidateServe checks the values the preview server depends on.
func (c *Config) ValidateServe() error {
	if c.Serve.Port <= 0 || c.Serve.Port > 65535 {
		return fmt.Errorf("serve.port out of range: %d", c.Serve.Port)
	}
	return c.validateLogLevel()
}

func (c *Config) validateLogLevel() error {
	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "error":
		return nil
	}
	return fmt.Errorf("unknown log_level %q", c.LogLevel)
}

// Location resolves report.timezone.
func (c *Config) Location() (*time.Location, error) {
	tz := strings.TrimSpace(c.Report.Timezone)
	if tz == "" || strings.EqualFold(tz, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid report.timezone %q: %w", tz, err)
	}
	return loc, nil
}

// Since parses report.since in the report location. Zero means unbounded.
func (c *Config) Since() (time.Time, error) {
	s := strings.TrimSpace(c.Report.Since)
	if s == "" {
		return time.Time{}, nil
	}
	loc, err := c.Location()
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.ParseInLocation("2006-01-02", s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid report.since %q (want YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}

// ServeDir returns the directory the preview server exposes.
func (c *Config) ServeDir() string {
	if c.Serve.Dir != "" {
		return c.Serve.Dir
	}
	return c.Report.OutputDir
}

func (c *Config) applyEnv() {
	if override := os.Getenv("MSGSTATS_CHAT_DB"); override != "" {
		c.Messages.ChatDB = override
	}
	if override := os.Getenv("MSGSTATS_OUTPUT_DIR"); override != "" {
		c.Report.OutputDir = override
	}
}

func (c *Config) expand() {
	c.Messages.ChatDB = expandPath(c.Messages.ChatDB)
	c.Contacts.AddressBookDir = expandPath(c.Contacts.AddressBookDir)
	for i, s := range c.Contacts.Sources {
		c.Contacts.Sources[i] = expandPath(s)
	}
	c.Report.OutputDir = expandPath(c.Report.OutputDir)
	c.Serve.Dir = expandPath(c.Serve.Dir)
	c.Serve.ChartDir = expandPath(c.Serve.ChartDir)
}

func expandPath(p string) string {
	p = os.ExpandEnv(strings.TrimSpace(p))
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
