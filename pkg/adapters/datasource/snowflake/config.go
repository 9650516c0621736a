package snowflake

import (
	"fmt"

	sf "github.com/snowflakedb/gosnowflake"

	"github.com/hussnain-ekai/ekai-AIXcelerator-sub000/pkg/config"
)

// buildDSN renders a gosnowflake DSN from engine configuration. The driver
// owns escaping, so credentials with special characters survive intact.
func buildDSN(cfg config.SnowflakeConfig) (string, error) {
	sfCfg := &sf.Config{
		Account:   cfg.Account,
		User:      cfg.User,
		Password:  cfg.Password,
		Warehouse: cfg.Warehouse,
		Role:      cfg.Role,
		Database:  cfg.Database,
		Schema:    cfg.Schema,
	}
	dsn, err := sf.DSN(sfCfg)
	if err != nil {
		return "", fmt.Errorf("build snowflake dsn: %w", err)
	}
	return dsn, nil
}
