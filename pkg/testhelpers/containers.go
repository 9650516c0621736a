// Package testhelpers provides shared infrastructure for integration tests.
package testhelpers

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/hussnain-ekai/ekai-AIXcelerator-sub000/pkg/config"
)

const (
	testDBUser     = "profiler"
	testDBPassword = "profiler"
	testDBName     = "analytics"
)

// seedSchema is a small star schema the adapter tests profile against,
// including an intentional orphaned foreign key.
const seedSchema = `
CREATE TABLE dim_customer (
    customer_id integer PRIMARY KEY,
    name        text NOT NULL
);
COMMENT ON TABLE dim_customer IS 'One row per customer';

CREATE TABLE fct_orders (
    order_id    integer PRIMARY KEY,
    customer_id integer NOT NULL,
    amount      numeric(10,2),
    status      varchar(16)
);

INSERT INTO dim_customer (customer_id, name)
SELECT g, 'customer ' || g FROM generate_series(1, 50) g;

INSERT INTO fct_orders (order_id, customer_id, amount, status)
SELECT g,
       CASE WHEN g % 25 = 0 THEN 999 ELSE (g % 50) + 1 END,
       (g * 7 % 500)::numeric / 10,
       (ARRAY['open','shipped','returned'])[1 + g % 3]
FROM generate_series(1, 500) g;

ANALYZE dim_customer;
ANALYZE fct_orders;
`

// TestDB holds a shared PostgreSQL container and connection pool.
type TestDB struct {
	Container testcontainers.Container
	Pool      *pgxpool.Pool
	Config    config.PostgresConfig
}

var (
	sharedTestDB     *TestDB
	sharedTestDBOnce sync.Once
	sharedTestDBErr  error
)

// GetTestDB returns a shared seeded PostgreSQL container. The container is
// created once and reused across all tests in the run; short mode skips.
func GetTestDB(t *testing.T) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode (requires Docker)")
	}

	sharedTestDBOnce.Do(func() {
		sharedTestDB, sharedTestDBErr = setupTestDB()
	})
	if sharedTestDBErr != nil {
		t.Fatalf("test database setup failed: %v", sharedTestDBErr)
	}
	return sharedTestDB
}

func setupTestDB() (*TestDB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     testDBUser,
			"POSTGRES_PASSWORD": testDBPassword,
			"POSTGRES_DB":       testDBName,
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("start postgres container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("container host: %w", err)
	}
	mapped, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return nil, fmt.Errorf("container port: %w", err)
	}
	port, err := strconv.Atoi(mapped.Port())
	if err != nil {
		return nil, fmt.Errorf("parse mapped port %q: %w", mapped.Port(), err)
	}

	cfg := config.PostgresConfig{
		Host:     host,
		Port:     port,
		User:     testDBUser,
		Password: testDBPassword,
		Database: testDBName,
		SSLMode:  "disable",
	}

	pool, err := pgxpool.New(ctx, cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("connect to test postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, seedSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("seed test schema: %w", err)
	}

	return &TestDB{Container: container, Pool: pool, Config: cfg}, nil
}

// Close releases the pool and terminates the container.
func (db *TestDB) Close(ctx context.Context) error {
	if db.Pool != nil {
		db.Pool.Close()
	}
	if db.Container != nil {
		return db.Container.Terminate(ctx)
	}
	return nil
}
