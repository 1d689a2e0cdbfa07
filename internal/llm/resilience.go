package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
)

// HTTPStatusError is returned when the endpoint responds with a non-2xx
// status. It carries enough detail to decide whether a retry makes sense.
type HTTPStatusError struct {
	Operation  string
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("llm %s: unexpected status %s: %s", e.Operation, e.Status, e.Body)
	}
	return fmt.Sprintf("llm %s: unexpected status %s", e.Operation, e.Status)
}

// errorClassification decides how the executor treats a failure.
type errorClassification struct {
	// retryable allows another attempt after backoff.
	retryable bool
	// recordFailure counts the error against the circuit breaker.
	recordFailure bool
}

type errorClassifier func(error) errorClassification

// classifyError is the default classifier for chat-completion calls.
// Cancellation is never retried and never trips the breaker; transient
// transport and server-side failures are both.
func classifyError(err error) errorClassification {
	if err == nil {
		return errorClassification{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return errorClassification{}
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return errorClassification{retryable: true}
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return errorClassification{
			retryable:     isRetryableHTTPStatus(statusErr.StatusCode),
			recordFailure: true,
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return errorClassification{retryable: true, recordFailure: true}
	}

	return errorClassification{recordFailure: true}
}

func isRetryableHTTPStatus(code int) bool {
	switch code {
	case http.StatusRequestTimeout,
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

type executorConfig struct {
	maxAttempts    int
	initialBackoff time.Duration
	maxBackoff     time.Duration
}

func (c executorConfig) normalize() executorConfig {
	out := c
	if out.maxAttempts <= 0 {
		out.maxAttempts = 3
	}
	if out.initialBackoff <= 0 {
		out.initialBackoff = 2 * time.Second
	}
	if out.maxBackoff <= 0 {
		out.maxBackoff = 30 * time.Second
	}
	return out
}

// executor runs operations with retries and a per-operation circuit breaker.
type executor struct {
	cfg executorConfig

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker[struct{}]
}

func newExecutor(cfg executorConfig) *executor {
	return &executor{
		cfg:      cfg.normalize(),
		breakers: make(map[string]*gobreaker.CircuitBreaker[struct{}]),
	}
}

func (e *executor) breaker(operation string) *gobreaker.CircuitBreaker[struct{}] {
	e.mu.Lock()
	defer e.mu.Unlock()

	if cb, ok := e.breakers[operation]; ok {
		return cb
	}
	cb := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:    operation,
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			// Classification decides what counts as a breaker failure.
			return err == nil || !classifyError(err).recordFailure
		},
	})
	e.breakers[operation] = cb
	return cb
}

// execute runs fn through the operation's breaker with exponential backoff
// between retryable failures.
func (e *executor) execute(ctx context.Context, operation string, fn func(context.Context) error, classify errorClassifier) error {
	cb := e.breaker(operation)
	backoff := e.cfg.initialBackoff

	var lastErr error
	for attempt := 1; attempt <= e.cfg.maxAttempts; attempt++ {
		_, err := cb.Execute(func() (struct{}, error) {
			return struct{}{}, fn(ctx)
		})
		if err == nil {
			return nil
		}
		lastErr = err

		if !classify(err).retryable || attempt == e.cfg.maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > e.cfg.maxBackoff {
			backoff = e.cfg.maxBackoff
		}
	}
	return lastErr
}
