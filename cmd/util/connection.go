package util

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"

	"github.com/declpg/declpg/internal/logger"
)

// ConnectionConfig holds the parameters needed to open a connection to a
// live database, the collaborator used by publish and report (spec.md §6.4).
type ConnectionConfig struct {
	Host            string
	Port            int
	Database        string
	User            string
	Password        string
	SSLMode         string
	ApplicationName string
	Driver          string // "pgx" (default) or "postgres" (lib/pq)
}

// BuildDSN constructs a libpq-style keyword/value connection string from config.
func BuildDSN(config *ConnectionConfig) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("host=%s", config.Host))
	parts = append(parts, fmt.Sprintf("port=%d", config.Port))
	parts = append(parts, fmt.Sprintf("dbname=%s", config.Database))
	parts = append(parts, fmt.Sprintf("user=%s", config.User))

	if config.Password != "" {
		parts = append(parts, fmt.Sprintf("password=%s", config.Password))
	}

	if config.SSLMode != "" {
		parts = append(parts, fmt.Sprintf("sslmode=%s", config.SSLMode))
	}

	if config.ApplicationName != "" {
		parts = append(parts, fmt.Sprintf("application_name=%s", config.ApplicationName))
	}

	return strings.Join(parts, " ")
}

// Connect establishes a database connection using the provided configuration.
// Driver defaults to "pgx" (jackc/pgx/v5's stdlib adapter); passing
// "postgres" routes through lib/pq instead.
func Connect(config *ConnectionConfig) (*sql.DB, error) {
	log := logger.Get()
	driver := config.Driver
	if driver == "" {
		driver = "pgx"
	}

	log.Debug("Attempting database connection",
		"host", config.Host,
		"port", config.Port,
		"database", config.Database,
		"user", config.User,
		"sslmode", config.SSLMode,
		"application_name", config.ApplicationName,
		"driver", driver,
	)

	dsn := BuildDSN(config)
	conn, err := sql.Open(driver, dsn)
	if err != nil {
		log.Debug("Database connection failed", "error", err)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		log.Debug("Database ping failed", "error", err)
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Debug("Database connection established successfully")
	return conn, nil
}

// ConnectWithDSN opens and pings a database/sql handle from a raw DSN,
// bypassing ConnectionConfig — used when the caller already has a full
// connection string (e.g. from a --dsn flag).
func ConnectWithDSN(driver, dsn string) (*sql.DB, error) {
	if driver == "" {
		driver = "pgx"
	}
	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return conn, nil
}
