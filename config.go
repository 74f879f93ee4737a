package cypherdto

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the connection settings of a Neo4jExecutor.
type Config struct {
	URI      string `mapstructure:"uri"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	// LogLevel is a zap level name: debug, info, warn or error.
	LogLevel string `mapstructure:"log_level"`
}

// LoadConfig reads the configuration from path, or from cypherdto.yaml in the
// working directory when path is empty. Every key can be overridden by a
// CYPHERDTO_<KEY> environment variable, e.g. CYPHERDTO_URI.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("uri", "neo4j://localhost:7687")
	v.SetDefault("username", "neo4j")
	v.SetDefault("password", "")
	v.SetDefault("database", "neo4j")
	v.SetDefault("log_level", "info")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("cypherdto")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("CYPHERDTO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration before a driver is created from it.
func (c *Config) Validate() error {
	if c.URI == "" {
		return fmt.Errorf("uri is required")
	}
	scheme, _, ok := strings.Cut(c.URI, "://")
	if !ok {
		return fmt.Errorf("uri must include a scheme, got: %s", c.URI)
	}
	switch scheme {
	case "neo4j", "neo4j+s", "neo4j+ssc", "bolt", "bolt+s", "bolt+ssc":
	default:
		return fmt.Errorf("unsupported uri scheme %q", scheme)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (zapcore.Level, error) {
	if c.LogLevel == "" {
		return zapcore.InfoLevel, nil
	}
	lvl, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return lvl, fmt.Errorf("invalid log_level: %w", err)
	}
	return lvl, nil
}

// NewLogger builds a development logger at the configured level.
func (c *Config) NewLogger() (*zap.Logger, error) {
	lvl, err := c.Level()
	if err != nil {
		return nil, err
	}
	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}

// NewExecutorFromConfig creates an executor for cfg, logging to logger.
func NewExecutorFromConfig(cfg *Config, logger *zap.Logger) (*Neo4jExecutor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return NewNeo4jExecutor(cfg.URI, cfg.Username, cfg.Password, cfg.Database, WithExecutorLogger(logger))
}
