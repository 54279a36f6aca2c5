package dbconfig

import (
	"fmt"
	"os"
	"strconv"

	"github.com/mcdev12/souldraw/go/internal/sqlutil"
)

// Config holds database connection settings.
type Config struct {
	Driver   sqlutil.Dialect
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	// Path is the SQLite database file.
	Path string
}

// NewConfigFromEnv reads DB_* environment variables (with defaults).
func NewConfigFromEnv() (Config, error) {
	driver, err := sqlutil.ParseDialect(getEnv("DB_DRIVER", string(sqlutil.Postgres)))
	if err != nil {
		return Config{}, err
	}

	port, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		port = 5432
	}

	return Config{
		Driver:   driver,
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     port,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", "postgres"),
		Database: getEnv("DB_NAME", "souldraw"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
		Path:     getEnv("DB_PATH", "souldraws.db"),
	}, nil
}

// DriverName is the database/sql driver to open.
func (c Config) DriverName() string {
	if c.Driver == sqlutil.SQLite {
		return "sqlite3"
	}
	return "postgres"
}

// DSN returns the connection string for the configured driver.
func (c Config) DSN() string {
	if c.Driver == sqlutil.SQLite {
		return fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=on", c.Path)
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode,
	)
}

// String describes the target without credentials.
func (c Config) String() string {
	if c.Driver == sqlutil.SQLite {
		return "sqlite3:" + c.Path
	}
	return fmt.Sprintf("postgres:%s@%s:%d/%s", c.User, c.Host, c.Port, c.Database)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
