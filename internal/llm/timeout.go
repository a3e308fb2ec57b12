package llm

import (
	"context"
	"time"

	"github.com/avereev/interview-coach/internal/domain"
)

// WithTimeout wraps a client so every completion call carries a deadline.
// A hung provider then fails the one in-flight request instead of pinning it
// forever.
func WithTimeout(c Client, d time.Duration) Client {
	if d <= 0 {
		return c
	}
	return &timeoutClient{inner: c, timeout: d}
}

type timeoutClient struct {
	inner   Client
	timeout time.Duration
}

func (t *timeoutClient) Complete(ctx context.Context, messages []domain.Message) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.inner.Complete(ctx, messages)
}
