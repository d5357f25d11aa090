package helper

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	testDatabaseName     = "kgraph_test"
	testDatabaseUser     = "kgraph"
	testDatabasePassword = "kgraph"
)

// MustStartPostgresContainer starts a pgvector-enabled postgres container for tests.
// It returns the teardown function and the mapped database port.
func MustStartPostgresContainer() (func(ctx context.Context, opts ...testcontainers.TerminateOption) error, string, error) {
	ctx := context.Background()

	container, err := postgres.Run(
		ctx,
		"pgvector/pgvector:pg17",
		postgres.WithDatabase(testDatabaseName),
		postgres.WithUsername(testDatabaseUser),
		postgres.WithPassword(testDatabasePassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, "", NewError("start postgres container", err)
	}

	mappedPort, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		return container.Terminate, "", NewError("get mapped port", err)
	}

	return container.Terminate, mappedPort.Port(), nil
}

// SetTestDatabaseConfigEnvs sets the database configuration environment
// variables for the test database container
func SetTestDatabaseConfigEnvs(t *testing.T, dbPort string) {
	t.Setenv("KGRAPH_DB_HOST", "localhost")
	t.Setenv("KGRAPH_DB_PORT", dbPort)
	t.Setenv("KGRAPH_DB_USER", testDatabaseUser)
	t.Setenv("KGRAPH_DB_PASSWORD", testDatabasePassword)
	t.Setenv("KGRAPH_DB_NAME", testDatabaseName)
	t.Setenv("KGRAPH_DB_SSLMODE", "disable")
}

// NewTestDatabase connects to the test database with a quiet logger
func NewTestDatabase(config *DatabaseConfiguration) *Database {
	logger := slog.New(NewPrettyHandler(os.Stdout, PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{Level: slog.LevelError},
	}))
	return NewDatabase("kgraph_test", config, logger)
}
