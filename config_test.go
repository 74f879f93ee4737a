package cypherdto

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cypherdto.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, &Config{
		URI:      "neo4j://localhost:7687",
		Username: "neo4j",
		Database: "neo4j",
		LogLevel: "info",
	}, cfg)
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfig(t, `
uri: bolt://db:7687
username: app
password: secret
database: people
log_level: debug
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "bolt://db:7687", cfg.URI)
	assert.Equal(t, "app", cfg.Username)
	assert.Equal(t, "secret", cfg.Password)
	assert.Equal(t, "people", cfg.Database)

	lvl, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, zapcore.DebugLevel, lvl)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	path := writeConfig(t, "uri: bolt://db:7687\n")
	t.Setenv("CYPHERDTO_URI", "neo4j+s://cloud:7687")
	t.Setenv("CYPHERDTO_DATABASE", "graph")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "neo4j+s://cloud:7687", cfg.URI)
	assert.Equal(t, "graph", cfg.Database)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err, "an explicit path must exist")

	_, err = LoadConfig(writeConfig(t, "uri: http://db:7474\n"))
	assert.ErrorContains(t, err, "unsupported uri scheme")

	_, err = LoadConfig(writeConfig(t, "log_level: loud\n"))
	assert.ErrorContains(t, err, "log_level")
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{URI: "neo4j://localhost:7687"}, false},
		{"valid bolt tls", Config{URI: "bolt+ssc://localhost:7687", LogLevel: "warn"}, false},
		{"empty uri", Config{}, true},
		{"no scheme", Config{URI: "localhost:7687"}, true},
		{"bad level", Config{URI: "neo4j://localhost", LogLevel: "chatty"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewExecutorFromConfig(t *testing.T) {
	cfg := &Config{URI: "neo4j://localhost:7687", Username: "neo4j", Database: "people"}
	logger, err := cfg.NewLogger()
	require.NoError(t, err)

	executor, err := NewExecutorFromConfig(cfg, logger)
	require.NoError(t, err)
	assert.Equal(t, "people", executor.DBName)
	require.NoError(t, executor.Close(context.Background()))

	_, err = NewExecutorFromConfig(&Config{URI: "http://x"}, zap.NewNop())
	assert.Error(t, err)
}
