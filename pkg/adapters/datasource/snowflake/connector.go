package snowflake

import (
	"context"
	"fmt"
	"sync"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/hussnain-ekai/ekai-AIXcelerator-sub000/pkg/adapters/datasource"
	"github.com/hussnain-ekai/ekai-AIXcelerator-sub000/pkg/config"
	"github.com/hussnain-ekai/ekai-AIXcelerator-sub000/pkg/logging"
)

// Connector runs discovery queries against a Snowflake warehouse through
// the gosnowflake driver. It is safe for concurrent use; Reconnect swaps
// the underlying handle under a lock.
type Connector struct {
	mu     sync.RWMutex
	db     *sqlx.DB
	dsn    string
	logger *zap.Logger
}

// New opens a Snowflake connection and verifies it with a ping.
func New(ctx context.Context, cfg config.SnowflakeConfig, logger *zap.Logger) (*Connector, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	dsn, err := buildDSN(cfg)
	if err != nil {
		return nil, err
	}

	db, err := open(ctx, dsn)
	if err != nil {
		return nil, err
	}

	logger.Info("connected to snowflake",
		zap.String("account", cfg.Account),
		zap.String("database", cfg.Database),
		zap.String("schema", cfg.Schema))

	return &Connector{db: db, dsn: dsn, logger: logger}, nil
}

func open(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("snowflake", dsn)
	if err != nil {
		return nil, fmt.Errorf("open snowflake connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping snowflake (%s): %w", logging.SanitizeDSN(dsn), err)
	}
	return db, nil
}

// Reconnect drops the current handle and dials a fresh session. Used after
// transient failures such as expired session tokens.
func (c *Connector) Reconnect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.db != nil {
		_ = c.db.Close()
	}

	db, err := open(ctx, c.dsn)
	if err != nil {
		c.db = nil
		return fmt.Errorf("reconnect snowflake: %w", err)
	}
	c.db = db
	c.logger.Info("snowflake connection re-established")
	return nil
}

// Close releases the connection.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	return err
}

func (c *Connector) handle() (*sqlx.DB, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.db == nil {
		return nil, fmt.Errorf("snowflake connection is closed")
	}
	return c.db, nil
}

var _ datasource.Connector = (*Connector)(nil)
