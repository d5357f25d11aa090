package helper

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// DatabaseConfiguration holds postgres connection parameters
type DatabaseConfiguration struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	Schema   string
	SSLMode  string
}

// NewDatabaseConfiguration reads the database configuration from the environment.
// A .env file in the working directory is loaded first if present.
func NewDatabaseConfiguration() (*DatabaseConfiguration, error) {
	// Ignore missing .env, explicit env vars still apply
	_ = godotenv.Load()

	config := &DatabaseConfiguration{
		Host:     os.Getenv("KGRAPH_DB_HOST"),
		Port:     os.Getenv("KGRAPH_DB_PORT"),
		User:     os.Getenv("KGRAPH_DB_USER"),
		Password: os.Getenv("KGRAPH_DB_PASSWORD"),
		Name:     os.Getenv("KGRAPH_DB_NAME"),
		Schema:   os.Getenv("KGRAPH_DB_SCHEMA"),
		SSLMode:  os.Getenv("KGRAPH_DB_SSLMODE"),
	}

	if config.Host == "" || config.Port == "" || config.User == "" || config.Name == "" {
		return nil, NewError("database configuration", fmt.Errorf("missing required environment variables (KGRAPH_DB_HOST, KGRAPH_DB_PORT, KGRAPH_DB_USER, KGRAPH_DB_NAME)"))
	}

	if config.Schema == "" {
		config.Schema = "public"
	}
	if config.SSLMode == "" {
		config.SSLMode = "disable"
	}

	return config, nil
}

// ConnectionString builds the lib/pq connection string
func (c *DatabaseConfiguration) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s search_path=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.Schema, c.SSLMode,
	)
}

// Database wraps a sql.DB instance with its logger
type Database struct {
	Name     string
	Instance *sql.DB
	Logger   *slog.Logger
}

// NewDatabase opens a postgres connection and pings it until it is reachable.
// It panics if the database cannot be reached, matching the fail-fast
// behaviour expected at service startup.
func NewDatabase(name string, config *DatabaseConfiguration, logger *slog.Logger) *Database {
	if logger == nil {
		logger = slog.Default()
	}

	instance, err := sql.Open("postgres", config.ConnectionString())
	if err != nil {
		logger.Error("Error opening database", slog.String("error", err.Error()))
		panic(err)
	}

	for attempt := 1; attempt <= 10; attempt++ {
		err = instance.Ping()
		if err == nil {
			break
		}
		logger.Warn("Database not reachable yet", slog.Int("attempt", attempt), slog.String("error", err.Error()))
		time.Sleep(time.Duration(attempt) * 100 * time.Millisecond)
	}
	if err != nil {
		logger.Error("Error pinging database", slog.String("error", err.Error()))
		panic(err)
	}

	logger.Info("Connected to database", slog.String("database", config.Name), slog.String("host", config.Host))

	return &Database{
		Name:     name,
		Instance: instance,
		Logger:   logger,
	}
}
