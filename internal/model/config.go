package model

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// StorageConfig holds the simulated file storage quota.
type StorageConfig struct {
	// CapacityBytes is the total byte budget for uploaded files.
	CapacityBytes int64 `mapstructure:"capacity_bytes" yaml:"capacity_bytes"`

	// WarningRatio and CriticalRatio are the usage ratios at which the
	// quota is flagged.
	WarningRatio  float64 `mapstructure:"warning_ratio" yaml:"warning_ratio"`
	CriticalRatio float64 `mapstructure:"critical_ratio" yaml:"critical_ratio"`
}

// UploadConfig controls image compression and the simulated transfer.
type UploadConfig struct {
	MaxWidth       int           `mapstructure:"max_width" yaml:"max_width"`
	MaxHeight      int           `mapstructure:"max_height" yaml:"max_height"`
	JPEGQuality    int           `mapstructure:"jpeg_quality" yaml:"jpeg_quality"`
	SimulatedDelay time.Duration `mapstructure:"simulated_delay" yaml:"simulated_delay"`
	ProgressSteps  int           `mapstructure:"progress_steps" yaml:"progress_steps"`
}

// KVConfig selects the local key-value backend.
type KVConfig struct {
	// Driver is "sqlite" or "badger".
	Driver string `mapstructure:"driver" yaml:"driver"`

	// Path is the SQLite file or Badger directory.
	Path string `mapstructure:"path" yaml:"path"`
}

// AuthConfig holds the single admin credential pair. PasswordHash, when set,
// takes precedence over Password.
type AuthConfig struct {
	Username     string `mapstructure:"username" yaml:"username"`
	Password     string `mapstructure:"password" yaml:"password"`
	PasswordHash string `mapstructure:"password_hash" yaml:"password_hash"`
}

// HTTPConfig holds the admin API listener settings.
type HTTPConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	// Mode is "development" or "production".
	Mode string `mapstructure:"mode" yaml:"mode"`

	// File, when set, receives log output instead of stderr.
	File string `mapstructure:"file" yaml:"file"`
}

// SeedConfig controls loading of the bundled sample data.
type SeedConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Upload  UploadConfig  `mapstructure:"upload" yaml:"upload"`
	KV      KVConfig      `mapstructure:"kv" yaml:"kv"`
	Auth    AuthConfig    `mapstructure:"auth" yaml:"auth"`
	HTTP    HTTPConfig    `mapstructure:"http" yaml:"http"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	Seed    SeedConfig    `mapstructure:"seed" yaml:"seed"`
}

// DefaultStorageCapacity is 5 GiB.
const DefaultStorageCapacity int64 = 5 * 1024 * 1024 * 1024

// configDir returns ~/.config/siteledger, or the working directory when the
// home directory cannot be resolved.
func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "siteledger")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/siteledger/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

// DefaultAppConfig returns the configuration used when no file exists.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		Storage: StorageConfig{
			CapacityBytes: DefaultStorageCapacity,
			WarningRatio:  0.80,
			CriticalRatio: 0.90,
		},
		Upload: UploadConfig{
			MaxWidth:       1920,
			MaxHeight:      1080,
			JPEGQuality:    85,
			SimulatedDelay: 1500 * time.Millisecond,
			ProgressSteps:  10,
		},
		KV: KVConfig{
			Driver: "sqlite",
			Path:   filepath.Join(configDir(), "state.db"),
		},
		Auth: AuthConfig{
			Username: "admin",
			Password: "admin123",
		},
		HTTP: HTTPConfig{Addr: "127.0.0.1:8080"},
		Log:  LogConfig{Mode: "development"},
		Seed: SeedConfig{Enabled: true},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	def := DefaultAppConfig()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("storage.capacity_bytes", def.Storage.CapacityBytes)
	v.SetDefault("storage.warning_ratio", def.Storage.WarningRatio)
	v.SetDefault("storage.critical_ratio", def.Storage.CriticalRatio)
	v.SetDefault("upload.max_width", def.Upload.MaxWidth)
	v.SetDefault("upload.max_height", def.Upload.MaxHeight)
	v.SetDefault("upload.jpeg_quality", def.Upload.JPEGQuality)
	v.SetDefault("upload.simulated_delay", def.Upload.SimulatedDelay)
	v.SetDefault("upload.progress_steps", def.Upload.ProgressSteps)
	v.SetDefault("kv.driver", def.KV.Driver)
	v.SetDefault("kv.path", def.KV.Path)
	v.SetDefault("auth.username", def.Auth.Username)
	v.SetDefault("auth.password", def.Auth.Password)
	v.SetDefault("http.addr", def.HTTP.Addr)
	v.SetDefault("log.mode", def.Log.Mode)
	v.SetDefault("seed.enabled", def.Seed.Enabled)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return def, nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return def, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := DefaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Storage.CapacityBytes <= 0 {
		return nil, fmt.Errorf("parsing config %s: storage.capacity_bytes must be positive", path)
	}
	if cfg.Upload.ProgressSteps <= 0 {
		cfg.Upload.ProgressSteps = def.Upload.ProgressSteps
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("storage", cfg.Storage)
	v.Set("upload", cfg.Upload)
	v.Set("kv", cfg.KV)
	v.Set("auth", cfg.Auth)
	v.Set("http", cfg.HTTP)
	v.Set("log", cfg.Log)
	v.Set("seed", cfg.Seed)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
