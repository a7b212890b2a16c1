package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Database  DatabaseConfig
	Detection DetectionConfig
	Log       LogConfig
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string
}

// DetectionConfig holds pattern-detection thresholds.
type DetectionConfig struct {
	MinOccurrences      int     `mapstructure:"min_occurrences"`
	ConfidenceThreshold float64 `mapstructure:"confidence_threshold"`
	SimilarityThreshold float64 `mapstructure:"similarity_threshold"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string
}

// Load reads configuration from file and env. Env var overrides use prefix JASKRECUR_.
func Load() (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("database.path", filepath.Join(os.Getenv("HOME"), ".local", "share", "jaskrecur", "jaskrecur.db"))
	v.SetDefault("detection.min_occurrences", 3)
	v.SetDefault("detection.confidence_threshold", 0.6)
	v.SetDefault("detection.similarity_threshold", 70.0)
	v.SetDefault("log.level", "info")

	v.SetConfigType("toml")

	cfgPath := os.Getenv("JASKRECUR_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "jaskrecur"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("JASKRECUR")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}
