// Package config loads and hot-reloads the runtime configuration that
// feeds internal/locator.Config plus the oracle/embedder settings, via
// viper with a SPECLOC_ env prefix and fsnotify file watching.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/outlinehq/specloc/internal/locator"
)

// OracleConfig is the subset of oracle.OpenAIConfig that is safe to
// express in a config file/environment (HTTPClient is left unset here;
// oracle.NewOpenAIOracle builds a default client using Timeout).
type OracleConfig struct {
	APIKey     string        `mapstructure:"api_key" yaml:"api_key"`
	Model      string        `mapstructure:"model" yaml:"model"`
	BaseURL    string        `mapstructure:"base_url" yaml:"base_url"`
	MaxRetries int           `mapstructure:"max_retries" yaml:"max_retries"`
	Timeout    time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// EmbedderConfig controls whether the optional vector-fusion path (C5) is
// enabled and where its cache lives.
type EmbedderConfig struct {
	Enabled  bool   `mapstructure:"enabled" yaml:"enabled"`
	CacheDir string `mapstructure:"cache_dir" yaml:"cache_dir"`
}

// Config is the full process-level configuration: locator.Config's knobs
// flattened into mapstructure/yaml tags, plus the oracle and embedder
// settings the core itself never sees.
type Config struct {
	Locator  locator.Config `mapstructure:"locator" yaml:"locator"`
	Oracle   OracleConfig   `mapstructure:"oracle" yaml:"oracle"`
	Embedder EmbedderConfig `mapstructure:"embedder" yaml:"embedder"`
}

// DefaultConfig returns the configuration this module ships with:
// locator.DefaultConfig() plus a disabled-by-default vector path.
func DefaultConfig() Config {
	return Config{
		Locator: locator.DefaultConfig(),
		Oracle: OracleConfig{
			Model:      "gpt-4o-mini",
			MaxRetries: 3,
			Timeout:    120 * time.Second,
		},
		Embedder: EmbedderConfig{
			Enabled:  false,
			CacheDir: "embeddings",
		},
	}
}

// Manager handles loading and hot-reloading configuration.
type Manager struct {
	mu        sync.RWMutex
	config    *Config
	callbacks []func(*Config)
}

// NewManager creates a new config manager and loads initial config.
func NewManager(cfgFile string) (*Manager, error) {
	cm := &Manager{
		callbacks: make([]func(*Config), 0),
	}

	if err := cm.initViper(cfgFile); err != nil {
		return nil, err
	}

	cfg, err := cm.load()
	if err != nil {
		return nil, err
	}
	cm.config = cfg

	return cm, nil
}

// initViper sets up viper with defaults and config file.
func (cm *Manager) initViper(cfgFile string) error {
	defaults := DefaultConfig()
	viper.SetDefault("locator", defaults.Locator)
	viper.SetDefault("oracle", defaults.Oracle)
	viper.SetDefault("embedder", defaults.Embedder)

	viper.SetEnvPrefix("SPECLOC")
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.specloc")
	}

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

// load parses the current viper state into a Config struct.
func (cm *Manager) load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Oracle.APIKey = ResolveEnvVars(cfg.Oracle.APIKey)
	return &cfg, nil
}

// Get returns the current configuration (thread-safe).
func (cm *Manager) Get() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config
}

// OnChange registers a callback for config changes.
func (cm *Manager) OnChange(fn func(*Config)) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.callbacks = append(cm.callbacks, fn)
}

// WatchConfig enables hot-reloading of configuration.
func (cm *Manager) WatchConfig() {
	viper.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := cm.load()
		if err != nil {
			return
		}

		cm.mu.Lock()
		cm.config = cfg
		callbacks := make([]func(*Config), len(cm.callbacks))
		copy(callbacks, cm.callbacks)
		cm.mu.Unlock()

		for _, fn := range callbacks {
			fn(cfg)
		}
	})
	viper.WatchConfig()
}

// ResolveEnvVars expands ${ENV_VAR} references in a string.
func ResolveEnvVars(value string) string {
	if value == "" {
		return value
	}
	pattern := regexp.MustCompile(`\$\{([^}]+)\}`)
	return pattern.ReplaceAllStringFunc(value, func(match string) string {
		varName := match[2 : len(match)-1]
		return os.Getenv(varName)
	})
}

// WriteDefault writes the default configuration to the specified path.
func WriteDefault(path string) error {
	cfg := DefaultConfig()
	cfg.Oracle.APIKey = "${OPENAI_API_KEY}"
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# specloc configuration
# oracle.api_key uses ${ENV_VAR} syntax to reference environment variables
# Set this in your shell: export OPENAI_API_KEY=sk-...

`)
	return os.WriteFile(path, append(header, data...), 0o644)
}
