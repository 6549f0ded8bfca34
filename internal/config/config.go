package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rongwang/stonks/internal/repository"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Ledger   LedgerConfig   `mapstructure:"ledger"`
	Log      LogConfig      `mapstructure:"log"`

	ConfigPath string `mapstructure:"-"`
}

// ServerConfig holds the server configuration
type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// DatabaseConfig holds the database configuration
type DatabaseConfig struct {
	Driver       string `mapstructure:"driver"`
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	DBName       string `mapstructure:"name"`
	SSLMode      string `mapstructure:"sslmode"`
	Path         string `mapstructure:"path"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

// AuthConfig holds the authentication configuration
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

// LedgerConfig bounds the transaction retry loop.
type LedgerConfig struct {
	MaxTxAttempts  int           `mapstructure:"max_tx_attempts"`
	AttemptTimeout time.Duration `mapstructure:"attempt_timeout"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// env names kept stable for existing deployments
var envBindings = map[string]string{
	"server.port":             "SERVER_PORT",
	"server.mode":             "GIN_MODE",
	"database.driver":         "DB_DRIVER",
	"database.host":           "DB_HOST",
	"database.port":           "DB_PORT",
	"database.username":       "DB_USERNAME",
	"database.password":       "DB_PASSWORD",
	"database.name":           "DB_NAME",
	"database.sslmode":        "DB_SSLMODE",
	"database.path":           "DB_PATH",
	"database.max_open_conns": "DB_MAX_OPEN_CONNS",
	"auth.jwt_secret":         "JWT_SECRET",
	"ledger.max_tx_attempts":  "LEDGER_MAX_TX_ATTEMPTS",
	"ledger.attempt_timeout":  "LEDGER_ATTEMPT_TIMEOUT",
	"log.level":               "LOG_LEVEL",
	"log.development":         "LOG_DEVELOPMENT",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("database.driver", string(repository.DialectPostgres))
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.username", "postgres")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.name", "stonks")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.path", "stonks.db")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("auth.jwt_secret", "your-secret-key-here")
	v.SetDefault("ledger.max_tx_attempts", 10)
	v.SetDefault("ledger.attempt_timeout", "5s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}

// LoadConfig reads defaults, the optional config file at path and the
// environment, in increasing order of precedence.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, errors.Wrapf(err, "bind %s", env)
		}
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrap(err, "failed to read config file")
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "unable to decode config")
	}
	cfg.ConfigPath = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values viper cannot type-check.
func (c *Config) Validate() error {
	if !c.Database.Dialect().Valid() {
		return errors.Newf("unknown database driver %q", c.Database.Driver)
	}
	if c.Ledger.MaxTxAttempts < 1 {
		return errors.Newf("ledger.max_tx_attempts must be positive, got %d", c.Ledger.MaxTxAttempts)
	}
	if c.Ledger.AttemptTimeout <= 0 {
		return errors.Newf("ledger.attempt_timeout must be positive, got %s", c.Ledger.AttemptTimeout)
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret must not be empty")
	}
	return nil
}

// Dialect returns the SQL engine selected by Driver
func (c *DatabaseConfig) Dialect() repository.Dialect {
	return repository.Dialect(c.Driver)
}

// GetDSN returns the database connection string
func (c *DatabaseConfig) GetDSN() string {
	if c.Dialect() == repository.DialectSQLite {
		return SQLiteDSN(c.Path)
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.Username, c.Password, c.DBName, c.SSLMode,
	)
}

// SQLiteDSN opens path with immediate write locking and UTC timestamps.
func SQLiteDSN(path string) string {
	return "file:" + path + "?_txlock=immediate&_busy_timeout=5000&_loc=UTC"
}
