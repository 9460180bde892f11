package postgresql

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startPostgres(t *testing.T) string {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping postgres container in short mode")
	}

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForListeningPort("5432/tcp"),
	}

	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = pgContainer.Terminate(ctx)
	})

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)

	port, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	return fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())
}

func TestStorage_Migrate(t *testing.T) {
	ctx := context.Background()
	dsn := startPostgres(t)

	var s *Storage
	require.Eventually(t, func() bool {
		var err error
		s, err = New(ctx, dsn)
		return err == nil
	}, 30*time.Second, 500*time.Millisecond)
	t.Cleanup(s.Stop)

	require.NoError(t, s.Migrate(ctx))
	require.NoError(t, s.Migrate(ctx), "migration must be re-runnable")

	for _, table := range []string{CategoryTable, PostTable, GalleryTable, PendingUploadTable, AdminTable} {
		var exists bool
		err := s.Pool().QueryRow(ctx, "SELECT to_regclass($1) IS NOT NULL", table).Scan(&exists)
		require.NoError(t, err)
		assert.True(t, exists, table)
	}
}

func TestNew_InvalidDSN(t *testing.T) {
	_, err := New(context.Background(), "not a dsn")
	assert.Error(t, err)
}
