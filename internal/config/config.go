package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
)

// Config represents the redpen configuration.
type Config struct {
	Provider      string      `json:"provider"`
	Model         string      `json:"model"`
	Format        string      `json:"format"`
	MaxChunkBytes int         `json:"maxChunkBytes"`
	Concurrency   int         `json:"concurrency"`
	Language      string      `json:"language"`
	MixedScript   bool        `json:"mixedScript"`
	MaxFixRatio   int         `json:"maxFixRatio"`
	FixSlackRunes int         `json:"fixSlackRunes"`
	RawLogDir     string      `json:"rawLogDir,omitempty"`
	Cache         CacheConfig `json:"cache"`
	Sheet         SheetConfig `json:"sheet"`
}

// CacheConfig controls response caching behavior.
type CacheConfig struct {
	Enabled    bool   `json:"enabled"`
	Dir        string `json:"dir,omitempty"`
	TTLSeconds int    `json:"ttlSeconds"`
}

// SheetConfig identifies the spreadsheet batch queue.
type SheetConfig struct {
	SpreadsheetID   string `json:"spreadsheetId,omitempty"`
	Worksheet       string `json:"worksheet,omitempty"`
	CredentialsFile string `json:"credentialsFile,omitempty"`
	RequestedStatus string `json:"requestedStatus"`
	CompletedStatus string `json:"completedStatus"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Provider:      "gemini",
		Model:         "gemini-2.0-flash-001",
		Format:        "text",
		MaxChunkBytes: 6000,
		Concurrency:   4,
		Language:      "auto",
		MixedScript:   true,
		MaxFixRatio:   3,
		FixSlackRunes: 12,
		Cache: CacheConfig{
			Enabled:    true,
			TTLSeconds: 86400,
		},
		Sheet: SheetConfig{
			RequestedStatus: "1. AI검수요청",
			CompletedStatus: "2. AI검수완료",
		},
	}
}

// ConfigDir returns the platform-appropriate config directory for redpen.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "redpen"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "redpen"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "redpen"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "redpen"), nil
	default:
		return filepath.Join(home, ".config", "redpen"), nil
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

// LoadFile loads config from the config file. Returns zero Config and nil error if file doesn't exist.
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

// Load builds the effective config by merging: defaults <- file <- env <- overrides.
// The overrides map comes from CLI flags (only non-zero values should be set).
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
	if src.Provider != "" {
		dst.Provider = src.Provider
	}
	if src.Model != "" {
		dst.Model = src.Model
	}
	if src.Format != "" {
		dst.Format = src.Format
	}
	if src.MaxChunkBytes > 0 {
		dst.MaxChunkBytes = src.MaxChunkBytes
	}
	if src.Concurrency > 0 {
		dst.Concurrency = src.Concurrency
	}
	if src.Language != "" {
		dst.Language = src.Language
	}
	if src.MaxFixRatio > 0 {
		dst.MaxFixRatio = src.MaxFixRatio
	}
	if src.FixSlackRunes > 0 {
		dst.FixSlackRunes = src.FixSlackRunes
	}
	if src.RawLogDir != "" {
		dst.RawLogDir = src.RawLogDir
	}
	if src.Cache.Dir != "" {
		dst.Cache.Dir = src.Cache.Dir
	}
	if src.Cache.TTLSeconds > 0 {
		dst.Cache.TTLSeconds = src.Cache.TTLSeconds
	}
	// Bool fields from file: JSON cannot distinguish unset from false,
	// so file values only widen, never narrow.
	dst.Cache.Enabled = src.Cache.Enabled || dst.Cache.Enabled
	dst.MixedScript = src.MixedScript || dst.MixedScript
	if src.Sheet.SpreadsheetID != "" {
		dst.Sheet.SpreadsheetID = src.Sheet.SpreadsheetID
	}
	if src.Sheet.Worksheet != "" {
		dst.Sheet.Worksheet = src.Sheet.Worksheet
	}
	if src.Sheet.CredentialsFile != "" {
		dst.Sheet.CredentialsFile = src.Sheet.CredentialsFile
	}
	if src.Sheet.RequestedStatus != "" {
		dst.Sheet.RequestedStatus = src.Sheet.RequestedStatus
	}
	if src.Sheet.CompletedStatus != "" {
		dst.Sheet.CompletedStatus = src.Sheet.CompletedStatus
	}
}

func mergeEnv(cfg *Config) {
	if v := os.Getenv("REDPEN_PROVIDER"); v != "" {
		cfg.Provider = v
	}
	if v := os.Getenv("REDPEN_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("REDPEN_FORMAT"); v != "" {
		cfg.Format = v
	}
	if v := os.Getenv("REDPEN_LANGUAGE"); v != "" {
		cfg.Language = v
	}
	if v := os.Getenv("REDPEN_MAX_CHUNK_BYTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxChunkBytes = n
		}
	}
	if v := os.Getenv("REDPEN_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Concurrency = n
		}
	}
	if v := os.Getenv("REDPEN_SPREADSHEET_ID"); v != "" {
		cfg.Sheet.SpreadsheetID = v
	}
	if v := os.Getenv("REDPEN_WORKSHEET"); v != "" {
		cfg.Sheet.Worksheet = v
	}
	if v := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); v != "" && cfg.Sheet.CredentialsFile == "" {
		cfg.Sheet.CredentialsFile = v
	}
}

func mergeOverrides(cfg *Config, overrides map[string]string) {
	if overrides == nil {
		return
	}
	if v, ok := overrides["provider"]; ok && v != "" {
		cfg.Provider = v
	}
	if v, ok := overrides["model"]; ok && v != "" {
		cfg.Model = v
	}
	if v, ok := overrides["format"]; ok && v != "" {
		cfg.Format = v
	}
	if v, ok := overrides["language"]; ok && v != "" {
		cfg.Language = v
	}
	if v, ok := overrides["maxChunkBytes"]; ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxChunkBytes = n
		}
	}
	if v, ok := overrides["concurrency"]; ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Concurrency = n
		}
	}
	if v, ok := overrides["spreadsheetId"]; ok && v != "" {
		cfg.Sheet.SpreadsheetID = v
	}
	if v, ok := overrides["worksheet"]; ok && v != "" {
		cfg.Sheet.Worksheet = v
	}
	if v, ok := overrides["credentialsFile"]; ok && v != "" {
		cfg.Sheet.CredentialsFile = v
	}
	if v, ok := overrides["rawLogDir"]; ok && v != "" {
		cfg.RawLogDir = v
	}
}

// SetField sets a single config field by key name. Returns error if key is unknown.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "provider":
		cfg.Provider = value
	case "model":
		cfg.Model = value
	case "format":
		cfg.Format = value
	case "language":
		cfg.Language = value
	case "maxChunkBytes":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("maxChunkBytes must be an integer: %w", err)
		}
		cfg.MaxChunkBytes = n
	case "concurrency":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("concurrency must be an integer: %w", err)
		}
		cfg.Concurrency = n
	case "maxFixRatio":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("maxFixRatio must be an integer: %w", err)
		}
		cfg.MaxFixRatio = n
	case "sheet.spreadsheetId":
		cfg.Sheet.SpreadsheetID = value
	case "sheet.worksheet":
		cfg.Sheet.Worksheet = value
	case "sheet.credentialsFile":
		cfg.Sheet.CredentialsFile = value
	case "sheet.requestedStatus":
		cfg.Sheet.RequestedStatus = value
	case "sheet.completedStatus":
		cfg.Sheet.CompletedStatus = value
	case "rawLogDir":
		cfg.RawLogDir = value
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}
