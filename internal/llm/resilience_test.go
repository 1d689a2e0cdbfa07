package llm

import (
	"context"
	"errors"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		retryable     bool
		recordFailure bool
	}{
		{name: "nil", err: nil},
		{name: "canceled", err: context.Canceled},
		{name: "deadline", err: context.DeadlineExceeded},
		{name: "wrapped canceled", err: errors.Join(errors.New("call"), context.Canceled)},
		{
			name:          "rate limited",
			err:           &HTTPStatusError{StatusCode: http.StatusTooManyRequests},
			retryable:     true,
			recordFailure: true,
		},
		{
			name:          "server error",
			err:           &HTTPStatusError{StatusCode: http.StatusBadGateway},
			retryable:     true,
			recordFailure: true,
		},
		{
			name:          "client error",
			err:           &HTTPStatusError{StatusCode: http.StatusUnauthorized},
			recordFailure: true,
		},
		{
			name:          "network timeout",
			err:           net.Error(timeoutErr{}),
			retryable:     true,
			recordFailure: true,
		},
		{
			name:          "unknown",
			err:           errors.New("boom"),
			recordFailure: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyError(tt.err)
			assert.Equal(t, tt.retryable, got.retryable, "retryable")
			assert.Equal(t, tt.recordFailure, got.recordFailure, "recordFailure")
		})
	}
}

func TestHTTPStatusErrorMessage(t *testing.T) {
	err := &HTTPStatusError{Operation: "chat_completion", Status: "503 Service Unavailable", StatusCode: 503, Body: "overloaded"}
	assert.Contains(t, err.Error(), "chat_completion")
	assert.Contains(t, err.Error(), "503")
	assert.Contains(t, err.Error(), "overloaded")
}

func TestExecutorRetriesUntilSuccess(t *testing.T) {
	exec := newExecutor(executorConfig{maxAttempts: 3, initialBackoff: time.Millisecond})

	calls := 0
	err := exec.execute(context.Background(), "op", func(context.Context) error {
		calls++
		if calls < 3 {
			return &HTTPStatusError{StatusCode: http.StatusServiceUnavailable}
		}
		return nil
	}, classifyError)

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestExecutorStopsOnNonRetryable(t *testing.T) {
	exec := newExecutor(executorConfig{maxAttempts: 5, initialBackoff: time.Millisecond})

	calls := 0
	wantErr := &HTTPStatusError{StatusCode: http.StatusBadRequest}
	err := exec.execute(context.Background(), "op", func(context.Context) error {
		calls++
		return wantErr
	}, classifyError)

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestExecutorExhaustsAttempts(t *testing.T) {
	exec := newExecutor(executorConfig{maxAttempts: 3, initialBackoff: time.Millisecond})

	calls := 0
	err := exec.execute(context.Background(), "op", func(context.Context) error {
		calls++
		return &HTTPStatusError{StatusCode: http.StatusServiceUnavailable}
	}, classifyError)

	require.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestExecutorHonorsCancellation(t *testing.T) {
	exec := newExecutor(executorConfig{maxAttempts: 3, initialBackoff: time.Minute})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := exec.execute(ctx, "op", func(context.Context) error {
		return &HTTPStatusError{StatusCode: http.StatusServiceUnavailable}
	}, classifyError)

	require.ErrorIs(t, err, context.Canceled)
}
