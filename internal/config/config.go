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

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type StorageConfig struct {
	DBPath string `mapstructure:"db_path"`
	Key    string `mapstructure:"key"`
}

type RemoteConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type SandboxConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	MaxMemory  string        `mapstructure:"max_memory"`
	MaxTimeout time.Duration `mapstructure:"max_timeout"`
	Network    bool          `mapstructure:"network"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Storage StorageConfig `mapstructure:"storage"`
	Remote  RemoteConfig  `mapstructure:"remote"`
	Sandbox SandboxConfig `mapstructure:"sandbox"`
	Log     LogConfig     `mapstructure:"log"`
}

// Load reads codepad.yaml from the working directory or $HOME/.codepad.
// A missing file is not an error. CODEPAD_* environment variables override
// file values, e.g. CODEPAD_REMOTE_BASE_URL.
func Load() (*Config, error) {
	v := newViper()
	v.SetConfigName("codepad")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.codepad")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}
	return decode(v)
}

// LoadFile reads configuration from an explicit path.
func LoadFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("server.port", 8080)
	v.SetDefault("storage.db_path", filepath.Join(os.Getenv("HOME"), ".codepad", "codepad.db"))
	v.SetDefault("storage.key", "editor-files")
	v.SetDefault("remote.base_url", "http://localhost:8080")
	v.SetDefault("remote.timeout", time.Duration(0))
	v.SetDefault("sandbox.enabled", true)
	v.SetDefault("sandbox.max_memory", "256m")
	v.SetDefault("sandbox.max_timeout", 30*time.Second)
	v.SetDefault("sandbox.network", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")

	v.SetEnvPrefix("codepad")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.Storage.DBPath = expandHome(cfg.Storage.DBPath)
	cfg.Log.File = expandHome(cfg.Log.File)
	return &cfg, nil
}

func expandHome(path string) string {
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		return filepath.Join(os.Getenv("HOME"), rest)
	}
	return path
}
