package llm

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net"
	"strings"
	"time"
)

// DefaultRetryDelay is the pause before the single retry of a transient failure.
const DefaultRetryDelay = 300 * time.Millisecond

type retryingClient struct {
	base  Client
	delay time.Duration
}

// WithRetry wraps base so that a transient failure is retried once after delay.
func WithRetry(base Client, delay time.Duration) Client {
	if base == nil {
		return nil
	}
	if delay <= 0 {
		delay = DefaultRetryDelay
	}
	return retryingClient{base: base, delay: delay}
}

func (r retryingClient) ClassifyDocument(ctx context.Context, input ClassifyInput) (json.RawMessage, error) {
	resp, err := r.base.ClassifyDocument(ctx, input)
	if err == nil || !IsTransient(err) {
		return resp, err
	}

	log.Printf("llm retry attempt=1 file=%s error=%s", input.FileName, err.Error())
	select {
	case <-time.After(r.delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	return r.base.ClassifyDocument(ctx, input)
}

// IsTransient reports whether err looks like a timeout, a 5xx response or a
// dropped connection.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "http status 5") || strings.Contains(msg, "server_error") {
		return true
	}
	if strings.Contains(msg, "timeout") && (strings.Contains(msg, "openai") || strings.Contains(msg, "llm") || strings.Contains(msg, "client.timeout")) {
		return true
	}
	if strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection closed") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "tls handshake timeout") ||
		strings.Contains(msg, "eof") {
		return true
	}

	return false
}
