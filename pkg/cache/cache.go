// Package cache stores serialized discovery results keyed by request scope.
// Two backends exist: Redis for shared deployments and an in-process map
// for single-binary and test use. Both enforce the absolute TTL; the
// freshness-window decision belongs to the orchestrator.
package cache

import (
	"context"
	"time"
)

// Store is the pipeline-result cache contract.
type Store interface {
	// Get returns the raw entry for key, or an error wrapping
	// apperrors.ErrNotFound when the key is absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set writes the entry with an absolute TTL. The backend evicts the
	// entry after ttl regardless of reads.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes the entry; deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
