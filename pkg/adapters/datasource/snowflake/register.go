package snowflake

import (
	"context"

	"go.uber.org/zap"

	"github.com/hussnain-ekai/ekai-AIXcelerator-sub000/pkg/adapters/datasource"
	"github.com/hussnain-ekai/ekai-AIXcelerator-sub000/pkg/config"
)

func init() {
	datasource.Register("snowflake", func(ctx context.Context, cfg *config.Config, logger *zap.Logger) (datasource.Connector, error) {
		return New(ctx, cfg.Datasource.Snowflake, logger)
	})
}
