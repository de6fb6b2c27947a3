package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadAPIConfig(t *testing.T) {
	tests := []struct {
		name        string
		configFile  string
		expectError bool
		validate    func(*testing.T, *APIConfig)
	}{
		{
			name: "valid config file",
			configFile: `
debug: true
sentry_dsn: "https://sentry.example.com"
server:
  host: 127.0.0.1
  port: 9000
database:
  host: localhost
  port: 5433
  user: testuser
  password: testpass
  dbname: trustflow
  sslmode: require
auth:
  token_secret: "test-secret"
  token_ttl_minutes: 30
ledger:
  rpc_url: "http://localhost:8545"
  contract_address: "0x0000000000000000000000000000000000000001"
  chain_id: 1337
upload:
  dir: /tmp/uploads
  max_size: 1048576
datagen:
  base_url: "http://localhost:9002"
  timeout: "3s"
worker:
  pool_size: 4
  queue_size: 16
`,
			validate: func(t *testing.T, cfg *APIConfig) {
				assert.True(t, cfg.Debug)
				assert.Equal(t, "https://sentry.example.com", cfg.SentryDSN)
				assert.Equal(t, "127.0.0.1", cfg.Server.Host)
				assert.Equal(t, 9000, cfg.Server.Port)
				assert.Equal(t, "localhost", cfg.Database.Host)
				assert.Equal(t, 5433, cfg.Database.Port)
				assert.Equal(t, "require", cfg.Database.SSLMode)
				assert.Equal(t, "test-secret", cfg.Auth.TokenSecret)
				assert.Equal(t, 30, cfg.Auth.TokenTTLMinutes)
				assert.Equal(t, "http://localhost:8545", cfg.Ledger.RPCURL)
				assert.Equal(t, int64(1337), cfg.Ledger.ChainID)
				assert.Equal(t, "/tmp/uploads", cfg.Upload.Dir)
				assert.Equal(t, int64(1048576), cfg.Upload.MaxSize)
				assert.Equal(t, "http://localhost:9002", cfg.Datagen.BaseURL)
				assert.Equal(t, 3*time.Second, cfg.Datagen.Timeout)
				assert.Equal(t, 4, cfg.Worker.PoolSize)
				assert.Equal(t, 16, cfg.Worker.QueueSize)
			},
		},
		{
			name: "config with defaults",
			configFile: `
database:
  host: localhost
  user: testuser
  password: testpass
  dbname: trustflow
auth:
  token_secret: "test-secret"
`,
			validate: func(t *testing.T, cfg *APIConfig) {
				assert.False(t, cfg.Debug)
				assert.Equal(t, "0.0.0.0", cfg.Server.Host)
				assert.Equal(t, 8000, cfg.Server.Port)
				assert.Equal(t, 5432, cfg.Database.Port)
				assert.Equal(t, "disable", cfg.Database.SSLMode)
				assert.Equal(t, 60*24, cfg.Auth.TokenTTLMinutes)
				assert.Equal(t, "uploads", cfg.Upload.Dir)
				assert.Equal(t, int64(10*1024*1024), cfg.Upload.MaxSize)
				assert.Equal(t, []string{".pdf"}, cfg.Upload.AllowedExtensions)
				assert.Equal(t, "http://localhost:8002", cfg.Datagen.BaseURL)
				assert.Equal(t, 5*time.Second, cfg.Datagen.Timeout)
				assert.Equal(t, uint(2), cfg.Datagen.MaxRetries)
				assert.Equal(t, 10, cfg.Worker.PoolSize)
				assert.Equal(t, 256, cfg.Worker.QueueSize)
			},
		},
		{
			name: "missing token secret",
			configFile: `
database:
  host: localhost
  user: testuser
  password: testpass
  dbname: trustflow
`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfigFile(t, tt.configFile)

			cfg, err := LoadAPIConfig(path, t.TempDir())
			if tt.expectError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.validate(t, cfg)
		})
	}
}

func TestLoadDatagenConfig_Defaults(t *testing.T) {
	path := writeConfigFile(t, "debug: false\n")

	cfg, err := LoadDatagenConfig(path, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8002, cfg.Server.Port)
}

func TestDatabaseConfigDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "trustflow_user",
		Password: "trustflow_pass",
		DBName:   "trustflow",
		SSLMode:  "disable",
	}
	assert.Equal(t,
		"host=localhost port=5432 user=trustflow_user password=trustflow_pass dbname=trustflow sslmode=disable",
		cfg.DSN())
}
