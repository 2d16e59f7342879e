package repository_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/okian/pairdesk/internal/adapters/repository"
)

func dockerAvailable(t *testing.T) {
	t.Helper()
	if os.Getenv("DOCKER_AVAILABLE") != "true" && os.Getenv("DOCKER_AVAILABLE") != "1" {
		t.Skip("docker not available")
	}
}

func startContainer(t *testing.T, req tc.ContainerRequest) string {
	t.Helper()
	ctx := context.Background()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("failed to start container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Errorf("failed to terminate container: %v", err)
		}
	})

	// host:port of the single exposed port
	addr, err := container.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("failed to get container endpoint: %v", err)
	}
	return addr
}

func TestPostgresStoreIntegration(t *testing.T) {
	dockerAvailable(t)
	ctx := context.Background()

	addr := startContainer(t, tc.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "pairdesk",
			"POSTGRES_PASSWORD": "pairdesk",
			"POSTGRES_DB":       "pairdesk",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	})

	dsn := fmt.Sprintf("postgres://pairdesk:pairdesk@%s/pairdesk?sslmode=disable", addr)
	store, err := repository.NewPostgresStore(ctx, dsn, repository.WithPingAttempts(20))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	runStoreContract(t, func() repository.Store {
		if err := store.Truncate(ctx); err != nil {
			t.Fatalf("truncate: %v", err)
		}
		return nopClose{store}
	})
}

func TestMongoStoreIntegration(t *testing.T) {
	dockerAvailable(t)
	ctx := context.Background()

	addr := startContainer(t, tc.ContainerRequest{
		Image:        "mongo:7",
		ExposedPorts: []string{"27017/tcp"},
		WaitingFor:   wait.ForListeningPort("27017/tcp"),
	})

	store, err := repository.NewMongoStore(ctx, "mongodb://"+addr, repository.WithDatabase("pairdesk_test"), repository.WithPingAttempts(20))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	if err := store.EnsureIndexes(ctx); err != nil {
		t.Fatalf("indexes: %v", err)
	}

	runStoreContract(t, func() repository.Store {
		if err := store.Truncate(ctx); err != nil {
			t.Fatalf("truncate: %v", err)
		}
		return nopClose{store}
	})
}

// nopClose keeps the shared connection open between contract cases.
type nopClose struct {
	repository.Store
}

func (nopClose) Close() error { return nil }
