package llm

import (
	"context"
	"fmt"

	"github.com/avereev/interview-coach/internal/domain"
)

// MockClient is a scripted stand-in for the real provider, used in local
// development (USE_MOCK_LLM=1) and in tests.
type MockClient struct {
	// Reply, when set, is returned verbatim for every call.
	Reply string
	// Err, when set, is returned for every call.
	Err error
}

// NewMock returns a mock client that echoes the last user message.
func NewMock() *MockClient {
	return &MockClient{}
}

// Complete returns the scripted reply, or an echo of the last user message
// when no reply is configured.
func (m *MockClient) Complete(_ context.Context, messages []domain.Message) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	if m.Reply != "" {
		return m.Reply, nil
	}
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == domain.RoleUser {
			return fmt.Sprintf("Good point. You said: %q. Tell me more about the impact.", messages[i].Content), nil
		}
	}
	return "Let's keep going. What would you like to work on?", nil
}
