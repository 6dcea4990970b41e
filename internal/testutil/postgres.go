package testutil

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/deppfellow/adboard/internal/config"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// IntegrationEnv opts into tests that need Docker.
const IntegrationEnv = "ADBOARD_INTEGRATION"

const (
	postgresImage    = "postgres:16-alpine"
	postgresUser     = "adboard"
	postgresPassword = "adboard"
	postgresDB       = "adboard"
)

// SkipUnlessIntegration skips t unless ADBOARD_INTEGRATION=1.
func SkipUnlessIntegration(t testing.TB) {
	t.Helper()
	if os.Getenv(IntegrationEnv) != "1" {
		t.Skipf("set %s=1 to run integration tests", IntegrationEnv)
	}
}

// StartPostgres runs a throwaway PostgreSQL container and returns a config
// pointing at it. The container is terminated when the test ends.
func StartPostgres(t testing.TB) *config.Config {
	t.Helper()
	SkipUnlessIntegration(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	req := testcontainers.ContainerRequest{
		Image:        postgresImage,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     postgresUser,
			"POSTGRES_PASSWORD": postgresPassword,
			"POSTGRES_DB":       postgresDB,
		},
		WaitingFor: wait.ForAll(
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			wait.ForListeningPort("5432/tcp"),
		).WithDeadline(90 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)

	mapped, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	port, err := strconv.Atoi(mapped.Port())
	require.NoError(t, err, fmt.Sprintf("mapped port %q", mapped.Port()))

	cfg := Config(config.DriverPostgres)
	cfg.Database.Host = host
	cfg.Database.Port = port
	cfg.Database.User = postgresUser
	cfg.Database.Password = postgresPassword
	cfg.Database.Name = postgresDB
	cfg.Database.SSLMode = "disable"
	return cfg
}
