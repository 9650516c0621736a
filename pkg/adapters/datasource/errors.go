package datasource

import "fmt"

// QueryError wraps a backend failure with its retryability class.
// Transient errors (timeouts, dropped connections, expired sessions) are
// retried with a fresh connection; permanent errors (bad SQL, missing
// relations, permission denials) surface immediately.
type QueryError struct {
	Op        string // operation that failed, e.g. "profile columns"
	Target    string // table or column the query ran against
	Err       error
	Transient bool
}

func (e *QueryError) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Target, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// IsRetryable satisfies the retry package's RetryableError interface.
func (e *QueryError) IsRetryable() bool { return e.Transient }

// TransientError marks a failure as retryable.
func TransientError(op, target string, err error) *QueryError {
	return &QueryError{Op: op, Target: target, Err: err, Transient: true}
}

// PermanentError marks a failure as not worth retrying.
func PermanentError(op, target string, err error) *QueryError {
	return &QueryError{Op: op, Target: target, Err: err, Transient: false}
}
