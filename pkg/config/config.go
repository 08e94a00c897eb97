package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ErrMissingAPIKey is returned when the selected provider needs a credential that is not configured
var ErrMissingAPIKey = errors.New("api key not configured")

// Config represents the application configuration
type Config struct {
	Provider     string          `mapstructure:"provider"` // Selected provider: gemini or ollama
	ShowThinking bool            `mapstructure:"show_thinking"`
	TrackTokens  bool            `mapstructure:"track_tokens"` // Log and report per-turn token usage
	Gemini       GeminiConfig    `mapstructure:"gemini"`
	Ollama       OllamaConfig    `mapstructure:"ollama"`
	Persona      PersonaConfig   `mapstructure:"persona"`
	Knowledge    KnowledgeConfig `mapstructure:"knowledge"`
	Server       ServerConfig    `mapstructure:"server"`
	Logging      LoggingConfig   `mapstructure:"logging"`
}

// GeminiConfig holds Gemini-specific configuration
type GeminiConfig struct {
	APIKey     string        `mapstructure:"api_key"`
	Model      string        `mapstructure:"model"`
	BaseURL    string        `mapstructure:"base_url"`
	Timeout    time.Duration `mapstructure:"-"`
	TimeoutStr string        `mapstructure:"timeout"` // For parsing string duration
}

// OllamaConfig holds Ollama-specific configuration
type OllamaConfig struct {
	URL        string        `mapstructure:"url"`
	Model      string        `mapstructure:"model"`
	Timeout    time.Duration `mapstructure:"-"`
	TimeoutStr string        `mapstructure:"timeout"`
}

// PersonaConfig controls the instruction block sent ahead of every question
type PersonaConfig struct {
	Language     string `mapstructure:"language"`
	SystemPrompt string `mapstructure:"system_prompt"` // Overrides the built-in persona when set
}

// KnowledgeConfig holds reference retrieval configuration
type KnowledgeConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Path           string `mapstructure:"path"`
	EmbeddingModel string `mapstructure:"embedding_model"`
	EmbeddingURL   string `mapstructure:"embedding_url"`
	Results        int    `mapstructure:"results"`
}

// ServerConfig holds websocket server configuration
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	LogFile  string `mapstructure:"log_file"`
	Preserve bool   `mapstructure:"preserve"`
	Level    string `mapstructure:"level"`
}

var cfg *Config

// Get returns the global config instance
func Get() *Config {
	if cfg == nil {
		panic("config not initialized")
	}
	return cfg
}

// Set replaces the global config instance
func Set(c *Config) {
	cfg = c
}

// Load loads configuration from file and environment
func Load(cfgFile string) (*Config, error) {
	setDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}

		xdgConfigHome := os.Getenv("XDG_CONFIG_HOME")
		if xdgConfigHome == "" {
			xdgConfigHome = filepath.Join(home, ".config")
		}

		viper.AddConfigPath("./.pharmai")
		viper.AddConfigPath(filepath.Join(xdgConfigHome, "pharmai"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("settings")
	}

	viper.SetEnvPrefix("PHARMAI")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	bindEnvironmentVariables()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	loaded := &Config{}
	if err := viper.Unmarshal(loaded); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := processDurations(loaded); err != nil {
		return nil, fmt.Errorf("failed to process durations: %w", err)
	}

	cfg = loaded
	return cfg, nil
}

// setDefaults sets all default configuration values
func setDefaults() {
	viper.SetDefault("provider", "gemini")
	viper.SetDefault("show_thinking", true)
	viper.SetDefault("track_tokens", true)

	viper.SetDefault("gemini.api_key", "")
	viper.SetDefault("gemini.model", "gemini-2.5-flash-preview-04-17")
	viper.SetDefault("gemini.base_url", "https://generativelanguage.googleapis.com/v1beta")
	viper.SetDefault("gemini.timeout", "120s")

	viper.SetDefault("ollama.url", "http://localhost:11434")
	viper.SetDefault("ollama.model", "qwen3:latest")
	viper.SetDefault("ollama.timeout", "90s")

	viper.SetDefault("persona.language", "English")
	viper.SetDefault("persona.system_prompt", "")

	viper.SetDefault("knowledge.enabled", false)
	viper.SetDefault("knowledge.path", "./.pharmai/knowledge.jsonl")
	viper.SetDefault("knowledge.embedding_model", "nomic-embed-text")
	viper.SetDefault("knowledge.embedding_url", "http://localhost:11434")
	viper.SetDefault("knowledge.results", 3)

	viper.SetDefault("server.addr", ":8080")

	viper.SetDefault("logging.log_file", "./.pharmai/system.log")
	viper.SetDefault("logging.preserve", false)
	viper.SetDefault("logging.level", "info")
}

// bindEnvironmentVariables binds specific environment variables to Viper keys
func bindEnvironmentVariables() {
	// The upstream SDKs read the bare variable, so accept it alongside the prefixed one
	viper.BindEnv("gemini.api_key", "PHARMAI_GEMINI_API_KEY", "GEMINI_API_KEY")
	viper.BindEnv("gemini.model", "PHARMAI_GEMINI_MODEL", "GEMINI_MODEL")
	viper.BindEnv("ollama.url", "PHARMAI_OLLAMA_URL", "OLLAMA_HOST")
}

// processDurations converts string durations to time.Duration
func processDurations(c *Config) error {
	d, err := parseDuration(c.Gemini.TimeoutStr, 120*time.Second)
	if err != nil {
		return fmt.Errorf("invalid gemini.timeout: %w", err)
	}
	c.Gemini.Timeout = d

	d, err = parseDuration(c.Ollama.TimeoutStr, 90*time.Second)
	if err != nil {
		return fmt.Errorf("invalid ollama.timeout: %w", err)
	}
	c.Ollama.Timeout = d

	return nil
}

func parseDuration(s string, fallback time.Duration) (time.Duration, error) {
	if s == "" {
		return fallback, nil
	}
	return time.ParseDuration(s)
}

// Validate checks that the selected provider has what it needs to open a stream
func (c *Config) Validate() error {
	switch c.Provider {
	case "gemini":
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("gemini provider: %w (set GEMINI_API_KEY)", ErrMissingAPIKey)
		}
	case "ollama":
		if c.Ollama.URL == "" {
			return fmt.Errorf("ollama provider: url not configured")
		}
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
	return nil
}

// GetActiveProviderModel returns the model identifier of the selected provider
func (c *Config) GetActiveProviderModel() string {
	switch c.Provider {
	case "ollama":
		return c.Ollama.Model
	default:
		return c.Gemini.Model
	}
}

// GetConfigFileUsed returns the path to the config file being used
func GetConfigFileUsed() string {
	return viper.ConfigFileUsed()
}
