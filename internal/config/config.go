package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// BaseConfig holds base configuration shared by all binaries
type BaseConfig struct {
	Debug     bool   `mapstructure:"debug"`
	SentryDSN string `mapstructure:"sentry_dsn"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	ReadTimeout    int      `mapstructure:"read_timeout"`  // in seconds
	WriteTimeout   int      `mapstructure:"write_timeout"` // in seconds
	IdleTimeout    int      `mapstructure:"idle_timeout"`  // in seconds
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// AuthConfig holds token signing configuration
type AuthConfig struct {
	TokenSecret     string `mapstructure:"token_secret"`
	TokenTTLMinutes int    `mapstructure:"token_ttl_minutes"`
}

// LedgerConfig holds the external ledger recorder configuration.
// When RPCURL is empty the ledger client runs in mock mode.
type LedgerConfig struct {
	RPCURL          string `mapstructure:"rpc_url"`
	ContractAddress string `mapstructure:"contract_address"`
	ChainID         int64  `mapstructure:"chain_id"`
}

// UploadConfig holds document upload configuration
type UploadConfig struct {
	Dir               string   `mapstructure:"dir"`
	MaxSize           int64    `mapstructure:"max_size"` // in bytes
	AllowedExtensions []string `mapstructure:"allowed_extensions"`
}

// DatagenClientConfig holds the financial feature generator service client configuration
type DatagenClientConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries uint          `mapstructure:"max_retries"`
}

// WorkerConfig holds the background computation worker pool configuration
type WorkerConfig struct {
	PoolSize  int `mapstructure:"pool_size"`
	QueueSize int `mapstructure:"queue_size"`
}

// APIConfig holds configuration for the API server binary
type APIConfig struct {
	BaseConfig `mapstructure:",squash"`
	Server     ServerConfig        `mapstructure:"server"`
	Database   DatabaseConfig      `mapstructure:"database"`
	Auth       AuthConfig          `mapstructure:"auth"`
	Ledger     LedgerConfig        `mapstructure:"ledger"`
	Upload     UploadConfig        `mapstructure:"upload"`
	Datagen    DatagenClientConfig `mapstructure:"datagen"`
	Worker     WorkerConfig        `mapstructure:"worker"`
}

// DatagenConfig holds configuration for the credit data generator binary
type DatagenConfig struct {
	BaseConfig `mapstructure:",squash"`
	Server     ServerConfig `mapstructure:"server"`
}

// LoadAPIConfig loads configuration for the API server
func LoadAPIConfig(configFile string, envPath string) (*APIConfig, error) {
	v := configureViper("api", configFile, envPath)

	// Set defaults
	v.SetDefault("debug", false)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("server.idle_timeout", 120)
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("auth.token_ttl_minutes", 60*24)
	v.SetDefault("upload.dir", "uploads")
	v.SetDefault("upload.max_size", 10*1024*1024) // 10MB
	v.SetDefault("upload.allowed_extensions", []string{".pdf"})
	v.SetDefault("datagen.base_url", "http://localhost:8002")
	v.SetDefault("datagen.timeout", "5s")
	v.SetDefault("datagen.max_retries", 2)
	v.SetDefault("worker.pool_size", 10)
	v.SetDefault("worker.queue_size", 256)

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg APIConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Auth.TokenSecret == "" {
		return nil, errors.New("auth.token_secret is required")
	}

	return &cfg, nil
}

// LoadDatagenConfig loads configuration for the credit data generator service
func LoadDatagenConfig(configFile string, envPath string) (*DatagenConfig, error) {
	v := configureViper("datagen", configFile, envPath)

	// Set defaults
	v.SetDefault("debug", false)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8002)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("server.idle_timeout", 120)

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg DatagenConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// readConfig reads the config file, tolerating a missing file so that
// environment-only deployments work
func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// Config file not found, use environment variables
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

// configureViper returns a viper instance with the config file and environment variables set
func configureViper(service string, configFile string, envPath string) *viper.Viper {
	v := viper.New()

	loadEnv(envPath, service)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(fmt.Sprintf("cmd/%s/", service))
		v.AddConfigPath("config/")
	}

	v.SetEnvPrefix("TRUSTFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindAllEnvVars(v)
	return v
}

// bindAllEnvVars explicitly binds all recognized environment variables.
// Required for viper to map env vars onto config struct fields when no config file exists.
func bindAllEnvVars(v *viper.Viper) {
	keys := []string{
		"debug",
		"sentry_dsn",
		// Server
		"server.host",
		"server.port",
		"server.read_timeout",
		"server.write_timeout",
		"server.idle_timeout",
		"server.allowed_origins",
		// Database
		"database.host",
		"database.port",
		"database.user",
		"database.password",
		"database.dbname",
		"database.sslmode",
		"database.max_open_conns",
		"database.max_idle_conns",
		"database.conn_max_lifetime",
		"database.conn_max_idle_time",
		// Auth
		"auth.token_secret",
		"auth.token_ttl_minutes",
		// Ledger
		"ledger.rpc_url",
		"ledger.contract_address",
		"ledger.chain_id",
		// Upload
		"upload.dir",
		"upload.max_size",
		"upload.allowed_extensions",
		// Datagen client
		"datagen.base_url",
		"datagen.timeout",
		"datagen.max_retries",
		// Worker
		"worker.pool_size",
		"worker.queue_size",
	}

	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

// loadEnv loads environment variables from the config directory
func loadEnv(envPath string, service string) {
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}

	if envPath == "" {
		envPath = "config/"
	}

	for _, envFile := range envFiles {
		candidate := filepath.Join(envPath, envFile)
		_ = godotenv.Overload(candidate) // Overload lets later files override earlier ones
	}
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
