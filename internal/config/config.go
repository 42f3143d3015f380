package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
)

// Config represents the remedy configuration.
type Config struct {
	Host            string        `json:"host"`
	Model           string        `json:"model"`
	Concurrency     int           `json:"concurrency"`
	TimeoutSeconds  int           `json:"timeoutSeconds"`
	ContextLines    int           `json:"contextLines"`
	MaxContentBytes int           `json:"maxContentBytes"`
	OutputDir       string        `json:"outputDir,omitempty"`
	Workspace       string        `json:"workspace,omitempty"`
	Cache           CacheConfig   `json:"cache"`
	Privacy         PrivacyConfig `json:"privacy"`
}

// CacheConfig controls response caching behavior.
type CacheConfig struct {
	Enabled    bool   `json:"enabled"`
	Dir        string `json:"dir,omitempty"`
	TTLSeconds int    `json:"ttlSeconds"`
}

// PrivacyConfig controls redaction of file content before it is sent to the
// model.
type PrivacyConfig struct {
	RedactSecrets bool `json:"redactSecrets"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Host:            "http://localhost:11434",
		Model:           "llama3.1:latest",
		Concurrency:     4,
		TimeoutSeconds:  300,
		ContextLines:    2,
		MaxContentBytes: 100000,
		Cache: CacheConfig{
			Enabled:    true,
			TTLSeconds: 86400,
		},
		Privacy: PrivacyConfig{
			RedactSecrets: true,
		},
	}
}

// ConfigDir returns the platform-appropriate config directory for remedy.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "remedy"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "remedy"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "remedy"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "remedy"), nil
	default:
		return filepath.Join(home, ".config", "remedy"), nil
	}
}

// ConfigPath returns the full path to the config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// LoadFile loads config from the config file. Returns zero Config and nil
// error if the file doesn't exist.
func LoadFile() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Save writes the config to the config file.
func Save(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Load builds the effective config by merging: defaults <- file <- env <-
// overrides. The overrides map comes from CLI flags (only non-zero values
// should be set).
func Load(overrides map[string]string) (Config, error) {
	cfg := Default()

	fileCfg, err := LoadFile()
	if err != nil {
		return Config{}, err
	}
	mergeFile(&cfg, fileCfg)
	mergeEnv(&cfg)
	mergeOverrides(&cfg, overrides)

	return cfg, nil
}

func mergeFile(dst *Config, src Config) {
	if src.Host != "" {
		dst.Host = src.Host
	}
	if src.Model != "" {
		dst.Model = src.Model
	}
	if src.Concurrency > 0 {
		dst.Concurrency = src.Concurrency
	}
	if src.TimeoutSeconds > 0 {
		dst.TimeoutSeconds = src.TimeoutSeconds
	}
	if src.ContextLines > 0 {
		dst.ContextLines = src.ContextLines
	}
	if src.MaxContentBytes > 0 {
		dst.MaxContentBytes = src.MaxContentBytes
	}
	if src.OutputDir != "" {
		dst.OutputDir = src.OutputDir
	}
	if src.Workspace != "" {
		dst.Workspace = src.Workspace
	}
	if src.Cache.Dir != "" {
		dst.Cache.Dir = src.Cache.Dir
	}
	if src.Cache.TTLSeconds > 0 {
		dst.Cache.TTLSeconds = src.Cache.TTLSeconds
	}
	dst.Cache.Enabled = src.Cache.Enabled || dst.Cache.Enabled
}

func mergeEnv(cfg *Config) {
	if v := os.Getenv("REMEDY_HOST"); v != "" {
		cfg.Host = v
	}
	if v := os.Getenv("OLLAMA_HOST"); v != "" && os.Getenv("REMEDY_HOST") == "" {
		cfg.Host = v
	}
	if v := os.Getenv("REMEDY_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("REMEDY_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Concurrency = n
		}
	}
	if v := os.Getenv("REMEDY_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.TimeoutSeconds = n
		}
	}
	if v := os.Getenv("REMEDY_OUTPUT_DIR"); v != "" {
		cfg.OutputDir = v
	}
	if v := os.Getenv("REMEDY_WORKSPACE"); v != "" {
		cfg.Workspace = v
	}
}

func mergeOverrides(cfg *Config, overrides map[string]string) {
	if overrides == nil {
		return
	}
	if v, ok := overrides["host"]; ok && v != "" {
		cfg.Host = v
	}
	if v, ok := overrides["model"]; ok && v != "" {
		cfg.Model = v
	}
	if v, ok := overrides["concurrency"]; ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Concurrency = n
		}
	}
	if v, ok := overrides["timeoutSeconds"]; ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.TimeoutSeconds = n
		}
	}
	if v, ok := overrides["contextLines"]; ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.ContextLines = n
		}
	}
	if v, ok := overrides["outputDir"]; ok && v != "" {
		cfg.OutputDir = v
	}
	if v, ok := overrides["workspace"]; ok && v != "" {
		cfg.Workspace = v
	}
}

// SetField sets a single config field by key name. Returns error if key is
// unknown.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "host":
		cfg.Host = value
	case "model":
		cfg.Model = value
	case "concurrency":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("concurrency must be an integer: %w", err)
		}
		cfg.Concurrency = n
	case "timeoutSeconds":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("timeoutSeconds must be an integer: %w", err)
		}
		cfg.TimeoutSeconds = n
	case "contextLines":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("contextLines must be an integer: %w", err)
		}
		cfg.ContextLines = n
	case "maxContentBytes":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("maxContentBytes must be an integer: %w", err)
		}
		cfg.MaxContentBytes = n
	case "outputDir":
		cfg.OutputDir = value
	case "workspace":
		cfg.Workspace = value
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}
