package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration for the polygonctl CLI.
type Config struct {
	Cache      CacheConfig      `yaml:"cache" mapstructure:"cache"`
	Precompute PrecomputeConfig `yaml:"precompute" mapstructure:"precompute"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// CacheConfig configures the LRU reconstruction cache (C9).
type CacheConfig struct {
	Capacity int `yaml:"capacity" mapstructure:"capacity"`
}

// PrecomputeConfig configures bulk precomputation pacing (C8).
type PrecomputeConfig struct {
	// MaterializationsPerSecond caps how fast precompute_all_marked
	// materializes marked times, to avoid starving concurrent readers.
	// Zero or negative means unlimited.
	MaterializationsPerSecond float64 `yaml:"materializations_per_second" mapstructure:"materializations_per_second"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("POLYGONCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("cache.capacity", 100)
	v.SetDefault("precompute.materializations_per_second", 0)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
