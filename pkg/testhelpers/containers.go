// Package testhelpers provides utilities for testing data engine components.
package testhelpers

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/TAF-Playground/TAF-DataDev/pkg/adapters/datasource"
)

// ServerPassword contains URI-reserved characters so that connection strings
// built for the containers exercise percent-encoding.
const ServerPassword = "p@ss:w/rd"

// TestServer is a database server running in a container.
type TestServer struct {
	Container testcontainers.Container
	DBType    string
	Host      string
	Port      int
	User      string
	Password  string
	Database  string
}

// Params returns connection parameters for the server.
func (s *TestServer) Params() datasource.ConnectionParams {
	port := s.Port
	password := s.Password
	return datasource.ConnectionParams{
		DBType:   s.DBType,
		Host:     s.Host,
		Port:     &port,
		Database: s.Database,
		Username: s.User,
		Password: &password,
	}
}

type sharedServer struct {
	once   sync.Once
	server *TestServer
	err    error
}

var (
	postgresServer sharedServer
	mysqlServer    sharedServer
)

// GetPostgres returns a shared PostgreSQL container for integration tests.
// The container is created once and reused across all tests in the run.
func GetPostgres(t *testing.T) *TestServer {
	t.Helper()
	return postgresServer.get(t, func(ctx context.Context) (*TestServer, error) {
		return startServer(ctx, serverSpec{
			dbType: datasource.TypePostgreSQL,
			image:  "postgres:16-alpine",
			port:   "5432/tcp",
			user:   "engine",
			db:     "engine_test",
			env: map[string]string{
				"POSTGRES_DB":       "engine_test",
				"POSTGRES_USER":     "engine",
				"POSTGRES_PASSWORD": ServerPassword,
			},
			wait: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		})
	})
}

// GetMySQL returns a shared MySQL container for integration tests.
func GetMySQL(t *testing.T) *TestServer {
	t.Helper()
	return mysqlServer.get(t, func(ctx context.Context) (*TestServer, error) {
		return startServer(ctx, serverSpec{
			dbType: datasource.TypeMySQL,
			image:  "mysql:8.0",
			port:   "3306/tcp",
			user:   "engine",
			db:     "engine_test",
			env: map[string]string{
				"MYSQL_ROOT_PASSWORD": "root",
				"MYSQL_DATABASE":      "engine_test",
				"MYSQL_USER":          "engine",
				"MYSQL_PASSWORD":      ServerPassword,
			},
			wait: wait.ForAll(
				wait.ForLog("ready for connections").WithOccurrence(2),
				wait.ForListeningPort("3306/tcp"),
			).WithDeadline(120 * time.Second),
		})
	})
}

func (s *sharedServer) get(t *testing.T, start func(context.Context) (*TestServer, error)) *TestServer {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode (requires Docker)")
	}

	s.once.Do(func() {
		s.server, s.err = start(context.Background())
	})
	if s.err != nil {
		t.Fatalf("Failed to start test container: %v", s.err)
	}
	return s.server
}

type serverSpec struct {
	dbType string
	image  string
	port   nat.Port
	user   string
	db     string
	env    map[string]string
	wait   wait.Strategy
}

func startServer(ctx context.Context, spec serverSpec) (*TestServer, error) {
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        spec.image,
			ExposedPorts: []string{string(spec.port)},
			Env:          spec.env,
			WaitingFor:   spec.wait,
		},
		Started: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start %s container: %w", spec.dbType, err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}

	mapped, err := container.MappedPort(ctx, spec.port)
	if err != nil {
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}

	return &TestServer{
		Container: container,
		DBType:    spec.dbType,
		Host:      host,
		Port:      mapped.Int(),
		User:      spec.user,
		Password:  ServerPassword,
		Database:  spec.db,
	}, nil
}
