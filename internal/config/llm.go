package config

import (
	"fmt"
	"net/url"
	"time"
)

// LLMConfig configures the Gemini endpoint and the retry protocol around it.
type LLMConfig struct {
	APIKey     string `yaml:"api_key"`
	Model      string `yaml:"model"`
	BaseURL    string `yaml:"base_url"`
	APIVersion string `yaml:"api_version"`
	Timeout    string `yaml:"timeout"`

	// MaxRetries is the number of retries after the first attempt when the
	// endpoint reports quota exhaustion. 2 means at most 3 attempts.
	MaxRetries int `yaml:"max_retries"`

	// Backoff is the fixed pause between quota-exhausted attempts.
	Backoff string `yaml:"backoff"`
}

// DefaultLLMConfig returns the Gemini defaults.
func DefaultLLMConfig() LLMConfig {
	return LLMConfig{
		Model:      "gemini-2.5-flash",
		BaseURL:    "https://generativelanguage.googleapis.com",
		APIVersion: "v1beta",
		Timeout:    "120s",
		MaxRetries: 2,
		Backoff:    "10s",
	}
}

// GetTimeout returns the HTTP timeout as a duration.
func (c LLMConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 120 * time.Second
	}
	return d
}

// GetBackoff returns the retry backoff as a duration.
func (c LLMConfig) GetBackoff() time.Duration {
	d, err := time.ParseDuration(c.Backoff)
	if err != nil || d < 0 {
		return 10 * time.Second
	}
	return d
}

// HasAPIKey reports whether a credential is configured.
func (c LLMConfig) HasAPIKey() bool {
	return c.APIKey != ""
}

// Validate checks the structural fields. The API key is checked at call time.
func (c LLMConfig) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("llm model cannot be empty")
	}
	if _, err := url.ParseRequestURI(c.BaseURL); err != nil {
		return fmt.Errorf("invalid llm base_url %q: %w", c.BaseURL, err)
	}
	if c.APIVersion == "" {
		return fmt.Errorf("llm api_version cannot be empty")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("llm max_retries must be >= 0, got %d", c.MaxRetries)
	}
	return nil
}
