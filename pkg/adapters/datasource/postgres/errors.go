package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/hussnain-ekai/ekai-AIXcelerator-sub000/pkg/adapters/datasource"
)

// transientSQLStates are PostgreSQL error codes a fresh connection or a
// retry can fix: connection exceptions (class 08), statement timeout,
// admin shutdown/crash, serialization failures and deadlocks, and
// connection-slot exhaustion.
var transientSQLStates = map[string]bool{
	"57014": true, // query_canceled (statement_timeout)
	"57P01": true, // admin_shutdown
	"57P02": true, // crash_shutdown
	"57P03": true, // cannot_connect_now
	"40001": true, // serialization_failure
	"40P01": true, // deadlock_detected
	"53300": true, // too_many_connections
}

var transientMessagePatterns = []string{
	"connection refused",
	"connection reset",
	"broken pipe",
	"timeout",
	"timed out",
	"i/o timeout",
	"network is unreachable",
	"temporary failure",
	"closed pool",
	"conn closed",
}

// classify wraps a driver error as a QueryError with its retryability class.
func classify(op, target string, err error) error {
	if err == nil {
		return nil
	}

	var qe *datasource.QueryError
	if errors.As(err, &qe) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return datasource.TransientError(op, target, err)
	}
	if errors.Is(err, context.Canceled) {
		return datasource.PermanentError(op, target, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if strings.HasPrefix(pgErr.Code, "08") || transientSQLStates[pgErr.Code] {
			return datasource.TransientError(op, target, err)
		}
		return datasource.PermanentError(op, target, err)
	}

	msg := strings.ToLower(err.Error())
	for _, pattern := range transientMessagePatterns {
		if strings.Contains(msg, pattern) {
			return datasource.TransientError(op, target, err)
		}
	}
	return datasource.PermanentError(op, target, err)
}
