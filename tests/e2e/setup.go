//go:build e2e

package e2e

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"treatment-booking/cmd/bootstrap"
	"treatment-booking/cmd/bootstrap/components"
	"treatment-booking/internal/infra/db"
	"treatment-booking/internal/pkg/config"
	"treatment-booking/tests/common/dbtest"

	"github.com/docker/go-connections/nat"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/fx"
)

const (
	pgUser     = "test"
	pgPassword = "testpass"
	pgPort     = nat.Port("5432/tcp")
)

var (
	pgOnce      sync.Once
	pgContainer testcontainers.Container
	pgErr       error
)

// postgresEndpoint is the host-reachable address of the shared container.
type postgresEndpoint struct {
	Host string
	Port string
}

func (e postgresEndpoint) adminDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/postgres?sslmode=disable", pgUser, pgPassword, e.Host, e.Port)
}

// SharedSuite boots one postgres-backed booking API per test process.
// Every subtest starts from empty booking tables and the builder catalog.
type SharedSuite struct {
	suite.Suite
	Router *gin.Engine
	DB     *pgxpool.Pool
	Config config.Config
}

func (s *SharedSuite) SetupSuite() {
	t := s.T()
	gin.SetMode(gin.TestMode)

	endpoint := startPostgres(t)
	dbCfg := createDatabase(t, endpoint)

	pool, closePool, err := db.Connect(context.Background(), dbCfg)
	require.NoError(t, err, "failed to connect to database")
	t.Cleanup(closePool)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	require.NoError(t, db.Migrate(ctx, pool), "failed to migrate database")
	require.NoError(t, dbtest.SeedReferenceData(pool), "failed to seed catalog")

	cfg := config.NewTestConfig()
	cfg.Store.Driver = config.StoreDriverPostgres
	cfg.DB = dbCfg
	cfg.DB.AutoMigrate = false

	s.DB = pool
	s.Config = cfg
	s.Router = startApp(t, cfg)
}

func (s *SharedSuite) SetupSubTest() {
	require.NoError(s.T(), dbtest.ResetDB(s.DB), "failed to reset database state")
}

// startApp runs the production fx graph with the test config swapped in.
func startApp(t *testing.T, cfg config.Config) *gin.Engine {
	t.Helper()

	var router *gin.Engine
	app := fx.New(
		fx.Supply(cfg),
		fx.Provide(func() *gin.Engine { return gin.New() }),
		bootstrap.LoggerModule,
		bootstrap.StoreModule,
		bootstrap.JWTModule,
		components.UseCaseModule,
		components.HandlerModule,
		fx.Populate(&router),
		fx.NopLogger,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	require.NoError(t, app.Start(ctx), "failed to start fx app")
	t.Cleanup(func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer stopCancel()
		if err := app.Stop(stopCtx); err != nil {
			slog.Warn("failed to stop fx app", "error", err.Error())
		}
	})
	require.NotNil(t, router, "fx app started without a router")
	return router
}

// createDatabase gives each test process its own database on the shared
// container and drops it afterwards.
func createDatabase(t *testing.T, endpoint postgresEndpoint) config.DBConfig {
	t.Helper()
	name := "booking_" + strings.ReplaceAll(uuid.NewString(), "-", "")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	admin, err := pgxpool.New(ctx, endpoint.adminDSN())
	require.NoError(t, err, "failed to open admin connection")
	defer admin.Close()

	// the server may still be finishing startup when the wait strategy fires
	for attempt := 1; ; attempt++ {
		if _, err = admin.Exec(ctx, "CREATE DATABASE "+name); err == nil || attempt == 5 {
			break
		}
		slog.Warn("retrying database creation", "attempt", attempt, "error", err.Error())
		time.Sleep(time.Duration(attempt) * 500 * time.Millisecond)
	}
	require.NoError(t, err, "failed to create test database")

	t.Cleanup(func() {
		dropCtx, dropCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer dropCancel()
		pool, err := pgxpool.New(dropCtx, endpoint.adminDSN())
		if err != nil {
			slog.Warn("failed to connect for cleanup", "database", name, "error", err.Error())
			return
		}
		defer pool.Close()
		if _, err := pool.Exec(dropCtx, "DROP DATABASE IF EXISTS "+name+" WITH (FORCE)"); err != nil {
			slog.Warn("failed to drop test database", "database", name, "error", err.Error())
		}
	})

	return config.DBConfig{
		Host:     endpoint.Host,
		Port:     endpoint.Port,
		User:     pgUser,
		Password: pgPassword,
		DBName:   name,
		SSLMode:  "disable",
		TimeZone: "UTC",
		MaxConns: 10,
	}
}

// startPostgres starts the container once per process; ryuk reaps it.
func startPostgres(t *testing.T) postgresEndpoint {
	t.Helper()
	pgOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
		defer cancel()
		pgContainer, pgErr = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "postgres:17",
				ExposedPorts: []string{string(pgPort)},
				Env: map[string]string{
					"POSTGRES_USER":     pgUser,
					"POSTGRES_PASSWORD": pgPassword,
					"POSTGRES_DB":       "postgres",
				},
				Tmpfs: map[string]string{"/var/lib/postgresql/data": "rw,size=512m"},
				Cmd: []string{
					"postgres",
					"-c", "fsync=off",
					"-c", "full_page_writes=off",
					"-c", "synchronous_commit=off",
					"-c", "max_connections=200",
				},
				WaitingFor: wait.ForSQL(pgPort, "pgx", func(host string, port nat.Port) string {
					return postgresEndpoint{Host: host, Port: port.Port()}.adminDSN()
				}).WithStartupTimeout(time.Minute),
				Labels: map[string]string{"purpose": "booking-e2e"},
			},
			Started: true,
		})
	})
	require.NoError(t, pgErr, "failed to start postgres container")

	ctx := context.Background()
	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	port, err := pgContainer.MappedPort(ctx, pgPort)
	require.NoError(t, err)
	return postgresEndpoint{Host: host, Port: port.Port()}
}
