// Package domain defines the core conversation types shared across the app.
package domain

import (
	"time"
)

// Mode selects the interaction style for a session.
type Mode string

const (
	// ModeTraining delivers scripted lessons step by step.
	ModeTraining Mode = "training"
	// ModeMock simulates an interviewer asking questions.
	ModeMock Mode = "mock"
)

// Message roles, matching the chat-completion wire format.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single role-tagged entry in a session transcript.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Session holds the server-side conversation state for one session key.
// History is append-only for the life of the session.
type Session struct {
	ID           string
	Role         string // job role selected by the user, free text
	Mode         Mode
	History      []Message
	TrainingStep int
	MockStep     int
	CreatedAt    time.Time
	LastActiveAt time.Time
}

// AppendSystem adds a system message to the transcript.
func (s *Session) AppendSystem(content string) {
	s.History = append(s.History, Message{Role: RoleSystem, Content: content})
}

// AppendUser adds a user message to the transcript.
func (s *Session) AppendUser(content string) {
	s.History = append(s.History, Message{Role: RoleUser, Content: content})
}

// AppendAssistant adds an assistant message to the transcript.
func (s *Session) AppendAssistant(content string) {
	s.History = append(s.History, Message{Role: RoleAssistant, Content: content})
}

// RecentHistory returns the last n transcript entries.
func (s *Session) RecentHistory(n int) []Message {
	if n >= len(s.History) {
		return s.History
	}
	return s.History[len(s.History)-n:]
}

// RecentUserAnswers returns up to n of the most recent user-authored
// messages, preserving chronological order.
func (s *Session) RecentUserAnswers(n int) []string {
	var answers []string
	for _, m := range s.History {
		if m.Role == RoleUser {
			answers = append(answers, m.Content)
		}
	}
	if len(answers) > n {
		answers = answers[len(answers)-n:]
	}
	return answers
}

// Touch records activity so idle eviction can spare the session.
func (s *Session) Touch() {
	s.LastActiveAt = time.Now()
}
