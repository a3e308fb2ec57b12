package coach

import (
	"strings"

	"github.com/avereev/interview-coach/internal/domain"
)

// Normalize prepares raw message text for command matching: lowercase,
// trimmed, with the Unicode right single quote unified to the ASCII
// apostrophe. Stored history keeps the original text untouched.
func Normalize(text string) string {
	return strings.TrimSpace(strings.ReplaceAll(strings.ToLower(text), "’", "'"))
}

// Command is the parsed intent of a normalized message.
type Command int

const (
	// CmdFreeform is any message that matched no keyword.
	CmdFreeform Command = iota
	// CmdEvaluate requests an on-demand evaluation (any mode).
	CmdEvaluate
	// CmdNextLesson advances through the training catalog.
	CmdNextLesson
	// CmdExample re-shows the previous lesson's example.
	CmdExample
	// CmdPractice re-shows the previous lesson's practice prompt.
	CmdPractice
	// CmdExplain expands on the previous lesson's content.
	CmdExplain
	// CmdStartMock switches the session into mock-interview mode.
	CmdStartMock
	// CmdStop pauses the mock interview.
	CmdStop
	// CmdContinue resumes the mock interview at the current question.
	CmdContinue
)

// ParseCommand maps normalized text to a command for the given mode.
// Matching runs in fixed priority order: the evaluation keywords preempt
// everything, then the mode-specific keywords in table order. Anything
// unmatched is freeform.
func ParseCommand(norm string, mode domain.Mode) Command {
	if norm == "evaluate" || norm == "evaluation" {
		return CmdEvaluate
	}

	switch mode {
	case domain.ModeTraining:
		switch {
		case norm == "next":
			return CmdNextLesson
		case norm == "give me an example" || norm == "example":
			return CmdExample
		case norm == "practice":
			return CmdPractice
		case norm == "explain more" || strings.HasPrefix(norm, "explain"):
			return CmdExplain
		case norm == "start mock" || norm == "start interview" || norm == "start":
			return CmdStartMock
		}
	case domain.ModeMock:
		switch {
		case norm == "stop" || norm == "pause":
			return CmdStop
		case norm == "continue":
			return CmdContinue
		}
	}
	return CmdFreeform
}
