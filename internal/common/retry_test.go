package common

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-recurring/internal/service"
)

func fastRetry(attempts int) service.RetryOptions {
	return service.RetryOptions{
		MaxAttempts:  attempts,
		InitialDelay: time.Millisecond,
		MaxDelay:     2 * time.Millisecond,
		Multiplier:   2,
	}
}

func TestWithRetry(t *testing.T) {
	errFlaky := fmt.Errorf("read failed: %w", ErrLedgerUnavailable)
	errPermanent := errors.New("syntax error")

	tests := []struct {
		wantErr   error
		failures  []error
		name      string
		wantCalls int
	}{
		{
			name:      "succeeds first time",
			wantCalls: 1,
		},
		{
			name:      "recovers from retryable failure",
			failures:  []error{errFlaky, errFlaky},
			wantCalls: 3,
		},
		{
			name:      "does not retry permanent failure",
			failures:  []error{errPermanent},
			wantErr:   errPermanent,
			wantCalls: 1,
		},
		{
			name:      "gives up after max attempts",
			failures:  []error{errFlaky, errFlaky, errFlaky},
			wantErr:   ErrMaxRetries,
			wantCalls: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := WithRetry(context.Background(), func() error {
				calls++
				if calls <= len(tt.failures) {
					return tt.failures[calls-1]
				}
				return nil
			}, fastRetry(3))

			assert.Equal(t, tt.wantCalls, calls)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestWithRetry_ExhaustedKeepsCause(t *testing.T) {
	err := WithRetry(context.Background(), func() error {
		return ErrLedgerUnavailable
	}, fastRetry(2))

	assert.True(t, errors.Is(err, ErrMaxRetries))
	assert.True(t, errors.Is(err, ErrLedgerUnavailable))
	assert.Contains(t, err.Error(), "after 2 attempts")
}

func TestWithRetry_ContextCanceledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	err := WithRetry(ctx, func() error {
		calls++
		cancel()
		return ErrLedgerUnavailable
	}, service.RetryOptions{MaxAttempts: 5, InitialDelay: time.Second})

	assert.Equal(t, 1, calls)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestWithRetry_Defaults(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), func() error {
		calls++
		return errors.New("boom")
	}, service.RetryOptions{})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		err  error
		name string
		want bool
	}{
		{name: "ledger unavailable", err: fmt.Errorf("query: %w", ErrLedgerUnavailable), want: true},
		{name: "deadline", err: context.DeadlineExceeded, want: true},
		{name: "explicitly retryable", err: &RetryableError{Err: errors.New("busy"), Retryable: true}, want: true},
		{name: "explicitly permanent", err: &RetryableError{Err: errors.New("constraint failed")}, want: false},
		{name: "not found", err: ErrNotFound, want: false},
		{name: "canceled", err: context.Canceled, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestUserError(t *testing.T) {
	err := NewUserError("no pattern with id 3", ErrNotFound)
	assert.Equal(t, "no pattern with id 3: not found", err.Error())
	assert.True(t, errors.Is(err, ErrNotFound))

	var userErr *UserError
	require.True(t, errors.As(err, &userErr))
	assert.Equal(t, "no pattern with id 3", userErr.UserMessage)

	assert.Equal(t, "just a message", NewUserError("just a message", nil).Error())
}
