package datasource

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/hussnain-ekai/ekai-AIXcelerator-sub000/pkg/apperrors"
	"github.com/hussnain-ekai/ekai-AIXcelerator-sub000/pkg/config"
)

// Factory builds a connector for one dialect from engine configuration.
type Factory func(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Connector, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register makes a dialect available to Open. Adapters call it from init.
func Register(dialect string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[dialect]; dup {
		panic(fmt.Sprintf("datasource: duplicate registration for dialect %q", dialect))
	}
	registry[dialect] = factory
}

// Open builds the connector named by cfg.Datasource.Type.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Connector, error) {
	registryMu.RLock()
	factory, ok := registry[cfg.Datasource.Type]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q (registered: %v)", apperrors.ErrUnsupportedDialect, cfg.Datasource.Type, Dialects())
	}
	return factory(ctx, cfg, logger)
}

// Dialects lists registered dialect names, sorted.
func Dialects() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
