package snowflake

import (
	"context"
	"errors"
	"strings"

	sf "github.com/snowflakedb/gosnowflake"

	"github.com/hussnain-ekai/ekai-AIXcelerator-sub000/pkg/adapters/datasource"
)

// sessionExpiredCode is Snowflake's "authentication token has expired"
// error. A fresh connection fixes it, so it is always worth a retry.
const sessionExpiredCode = 390114

var transientMessagePatterns = []string{
	"connection refused",
	"connection reset",
	"broken pipe",
	"timeout",
	"timed out",
	"i/o timeout",
	"session no longer exists",
	"session expired",
	"token is expired",
	"network is unreachable",
	"temporary failure",
}

// classify wraps a driver error as a QueryError with its retryability class.
// Session expiry and network faults are transient; everything else (bad
// identifiers, missing objects, permission denials) is permanent.
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

	var sfErr *sf.SnowflakeError
	if errors.As(err, &sfErr) && sfErr.Number == sessionExpiredCode {
		return datasource.TransientError(op, target, err)
	}

	msg := strings.ToLower(err.Error())
	for _, pattern := range transientMessagePatterns {
		if strings.Contains(msg, pattern) {
			return datasource.TransientError(op, target, err)
		}
	}
	return datasource.PermanentError(op, target, err)
}
