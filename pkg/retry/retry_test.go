package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type classifiedError struct {
	msg       string
	retryable bool
}

func (e *classifiedError) Error() string     { return e.msg }
func (e *classifiedError) IsRetryable() bool { return e.retryable }

func fastConfig() *Config {
	return &Config{
		MaxRetries:   3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"connection reset", errors.New("read tcp: connection reset by peer"), true},
		{"timeout", errors.New("dial tcp: i/o timeout"), true},
		{"session expired", errors.New("390114: authentication token has expired"), true},
		{"broken pipe", errors.New("write: broken pipe"), true},
		{"syntax error", errors.New("syntax error at or near SELECT"), false},
		{"permission denied", errors.New("permission denied for relation orders"), false},
		{"typed transient", &classifiedError{msg: "backend hiccup", retryable: true}, true},
		{"typed permanent with transient text", &classifiedError{msg: "query timeout", retryable: false}, false},
		{"wrapped typed", fmt.Errorf("profiling: %w", &classifiedError{msg: "x", retryable: true}), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestDoIfRetryableSucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	err := DoIfRetryable(context.Background(), fastConfig(), func() error {
		attempts++
		if attempts < 3 {
			return errors.New("connection reset by peer")
		}
		return nil
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestDoIfRetryableStopsOnPermanentError(t *testing.T) {
	attempts := 0
	permanent := errors.New("relation does not exist")
	err := DoIfRetryable(context.Background(), fastConfig(), func() error {
		attempts++
		return permanent
	}, nil)

	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, attempts)
}

func TestDoIfRetryableExhaustsRetries(t *testing.T) {
	attempts := 0
	err := DoIfRetryable(context.Background(), fastConfig(), func() error {
		attempts++
		return errors.New("i/o timeout")
	}, nil)

	require.Error(t, err)
	assert.Equal(t, 4, attempts) // initial attempt + 3 retries
}

func TestDoIfRetryableRunsOnRetryBeforeEachReattempt(t *testing.T) {
	attempts := 0
	reconnects := 0
	err := DoIfRetryable(context.Background(), fastConfig(), func() error {
		attempts++
		if attempts < 3 {
			return errors.New("session expired")
		}
		return nil
	}, func() error {
		reconnects++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, reconnects)
}

func TestDoIfRetryableAbortsWhenOnRetryFails(t *testing.T) {
	reconnectErr := errors.New("reconnect refused")
	err := DoIfRetryable(context.Background(), fastConfig(), func() error {
		return errors.New("connection reset by peer")
	}, func() error {
		return reconnectErr
	})

	assert.ErrorIs(t, err, reconnectErr)
}

func TestDoIfRetryableRespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := &Config{
		MaxRetries:   3,
		InitialDelay: time.Hour,
		MaxDelay:     time.Hour,
		Multiplier:   2.0,
	}

	cancel()
	err := DoIfRetryable(ctx, cfg, func() error {
		return errors.New("i/o timeout")
	}, nil)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestDoWithResult(t *testing.T) {
	attempts := 0
	got, err := DoWithResult(context.Background(), fastConfig(), func() (int, error) {
		attempts++
		if attempts == 1 {
			return 0, errors.New("timed out")
		}
		return 42, nil
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, 42, got)
}
