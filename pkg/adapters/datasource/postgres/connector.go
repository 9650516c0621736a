package postgres

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/hussnain-ekai/ekai-AIXcelerator-sub000/pkg/adapters/datasource"
	"github.com/hussnain-ekai/ekai-AIXcelerator-sub000/pkg/config"
	"github.com/hussnain-ekai/ekai-AIXcelerator-sub000/pkg/logging"
)

// Connector runs discovery queries against PostgreSQL through a pgx pool.
// Reconnect swaps the pool under a lock after transient failures.
type Connector struct {
	mu      sync.RWMutex
	pool    *pgxpool.Pool
	connStr string
	logger  *zap.Logger
}

// New opens a PostgreSQL pool and verifies it with a ping.
func New(ctx context.Context, cfg config.PostgresConfig, logger *zap.Logger) (*Connector, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	connStr := cfg.ConnectionString()
	pool, err := open(ctx, connStr)
	if err != nil {
		return nil, err
	}

	logger.Info("connected to postgres",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Database))

	return &Connector{pool: pool, connStr: connStr, logger: logger}, nil
}

func open(ctx context.Context, connStr string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres (%s): %w", logging.SanitizeDSN(connStr), err)
	}
	return pool, nil
}

// Reconnect drops the pool and dials a fresh one.
func (c *Connector) Reconnect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pool != nil {
		c.pool.Close()
	}

	pool, err := open(ctx, c.connStr)
	if err != nil {
		c.pool = nil
		return fmt.Errorf("reconnect postgres: %w", err)
	}
	c.pool = pool
	c.logger.Info("postgres connection re-established")
	return nil
}

// Close releases the pool.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pool != nil {
		c.pool.Close()
		c.pool = nil
	}
	return nil
}

func (c *Connector) handle() (*pgxpool.Pool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.pool == nil {
		return nil, fmt.Errorf("postgres connection is closed")
	}
	return c.pool, nil
}

var _ datasource.Connector = (*Connector)(nil)
