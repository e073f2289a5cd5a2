//go:build integration

package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startPostgres runs a throwaway postgres container and returns its DSN.
func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	req := tc.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "weather",
			"POSTGRES_PASSWORD": "weather",
			"POSTGRES_DB":       "weather",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	if err != nil {
		t.Fatalf("container host: %v", err)
	}
	port, err := c.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("container port: %v", err)
	}
	return fmt.Sprintf("postgres://weather:weather@%s:%s/weather?sslmode=disable", host, port.Port())
}

func TestPostgresStore_Container(t *testing.T) {
	s := openCleanPostgres(t, startPostgres(t))

	t.Run("scenario", func(t *testing.T) {
		runScenario(t, s)
	})

	t.Run("monotone", func(t *testing.T) {
		ctx := context.Background()
		base := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
		if n, err := s.SaveReadings(ctx, zurich, hourlySamples(base, 6)); err != nil || n != 6 {
			t.Fatalf("ingest A: n=%d err=%v", n, err)
		}
		n, err := s.SaveReadings(ctx, zurich, hourlySamples(base, 9))
		if err != nil {
			t.Fatal(err)
		}
		if n != 3 {
			t.Errorf("ingest B inserted = %d, want 3", n)
		}
	})
}
