package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all athena configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	DataDir string `yaml:"data_dir"` // state + journal location, relative to the workspace

	// LLM configuration
	LLM LLMConfig `yaml:"llm"`

	// Market quote source
	Quote QuoteConfig `yaml:"quote"`

	// PIN gate in front of the REPL
	Security SecurityConfig `yaml:"security"`

	// Trade/conversation ledger
	Ledger LedgerConfig `yaml:"ledger"`

	// Terminal rendering
	UI UIConfig `yaml:"ui"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// QuoteConfig configures the quote client.
type QuoteConfig struct {
	URL       string `yaml:"url"`
	Pair      string `yaml:"pair"` // key of the object in the response body
	Timeout   string `yaml:"timeout"`
	UserAgent string `yaml:"user_agent"`
}

// SecurityConfig configures the PIN gate. An empty PIN disables it.
type SecurityConfig struct {
	PIN      string `yaml:"pin"`
	Attempts int    `yaml:"attempts"`
}

// LedgerConfig configures the SQLite ledger.
type LedgerConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"` // relative to the workspace
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "Athena",
		DataDir: ".",

		LLM: DefaultLLMConfig(),

		Quote: QuoteConfig{
			URL:       "https://economia.awesomeapi.com.br/last/BTC-BRL",
			Pair:      "BTCBRL",
			Timeout:   "5s",
			UserAgent: "AthenaBot/1.0",
		},

		Security: SecurityConfig{
			PIN:      "1234",
			Attempts: 3,
		},

		Ledger: LedgerConfig{
			Enabled: true,
			Path:    filepath.Join(".athena", "ledger.db"),
		},

		UI: DefaultUIConfig(),

		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// DefaultPath returns the config file location for a workspace.
func DefaultPath(workspace string) string {
	return filepath.Join(workspace, ".athena", "config.yaml")
}

// Load loads configuration from a YAML file.
// A missing file yields the defaults; environment overrides apply either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// LoadDotEnv reads KEY=value pairs from the workspace .env file into the
// process environment. Variables already set win. A missing file is not an error.
func LoadDotEnv(workspace string) error {
	path := filepath.Join(workspace, ".env")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.LLM.APIKey = key
	}
	if model := os.Getenv("ATHENA_MODEL"); model != "" {
		c.LLM.Model = model
	}
	if dir := os.Getenv("ATHENA_DATA_DIR"); dir != "" {
		c.DataDir = dir
	}
	if pin, ok := os.LookupEnv("ATHENA_PIN"); ok {
		c.Security.PIN = pin
	}
}

// GetQuoteTimeout returns the quote timeout as a duration.
func (c *Config) GetQuoteTimeout() time.Duration {
	d, err := time.ParseDuration(c.Quote.Timeout)
	if err != nil || d <= 0 {
		return 5 * time.Second
	}
	return d
}

// StatePath returns the creature state file for a workspace.
func (c *Config) StatePath(workspace string) string {
	return filepath.Join(c.dataDir(workspace), "athena_save.txt")
}

// JournalPath returns the journal file for a workspace.
func (c *Config) JournalPath(workspace string) string {
	return filepath.Join(c.dataDir(workspace), "diario_athena.txt")
}

// LedgerPath returns the ledger database for a workspace.
func (c *Config) LedgerPath(workspace string) string {
	if filepath.IsAbs(c.Ledger.Path) {
		return c.Ledger.Path
	}
	return filepath.Join(workspace, c.Ledger.Path)
}

// UsagePath returns the usage accounting file for a workspace.
func (c *Config) UsagePath(workspace string) string {
	return filepath.Join(workspace, ".athena", "usage.json")
}

func (c *Config) dataDir(workspace string) string {
	if filepath.IsAbs(c.DataDir) {
		return c.DataDir
	}
	return filepath.Join(workspace, c.DataDir)
}

// Validate validates the configuration.
// A missing API key is not an error: local commands still work without it.
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if err := c.LLM.Validate(); err != nil {
		return err
	}
	if _, err := url.ParseRequestURI(c.Quote.URL); err != nil {
		return fmt.Errorf("invalid quote url %q: %w", c.Quote.URL, err)
	}
	if c.Quote.Pair == "" {
		return fmt.Errorf("quote pair cannot be empty")
	}
	if c.Security.PIN != "" && c.Security.Attempts <= 0 {
		return fmt.Errorf("security attempts must be > 0 when a PIN is set")
	}
	if c.Ledger.Enabled && c.Ledger.Path == "" {
		return fmt.Errorf("ledger path cannot be empty when the ledger is enabled")
	}
	return nil
}
