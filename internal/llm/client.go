// Package llm adapts external chat-completion providers behind a small
// client interface.
package llm

import (
	"context"
	"errors"

	"github.com/avereev/interview-coach/internal/domain"
)

// ErrCompletion is the single error kind surfaced for any provider failure:
// missing credentials, transport errors, or a malformed response. Callers
// check it with errors.Is and must never crash the request on it.
var ErrCompletion = errors.New("llm: completion unavailable")

// Client issues a chat-completion request and returns the assistant text.
type Client interface {
	Complete(ctx context.Context, messages []domain.Message) (string, error)
}
