package coach

import (
	"fmt"

	"github.com/avereev/interview-coach/internal/domain"
)

// systemPrompt is the base instruction carried at the head of every LLM
// context, parameterized by the selected role and mode.
func systemPrompt(role string, mode domain.Mode) domain.Message {
	return domain.Message{
		Role: domain.RoleSystem,
		Content: fmt.Sprintf(`
You are a helpful, expert Interview Coach for job candidates. The user selected:
- ROLE: %s
- MODE: %s

Follow these rules:
1) NEVER ask the user to confirm the mode; assume the provided mode is correct.
2) If MODE == "training": be friendly + structured (step-by-step).
3) If MODE == "mock": act like an interviewer; ask questions, wait for answers, then follow up.
4) Always be empathetic and provide actionable feedback when requested.
5) Use simple language for suggestions and clear scoring when asked to evaluate.
`, role, mode),
	}
}

// trainingInstruction steers freeform training turns.
func trainingInstruction(role string) domain.Message {
	return domain.Message{
		Role: domain.RoleSystem,
		Content: fmt.Sprintf("You are in TRAINING mode for %s. Answer concisely, friendly, "+
			"and provide one concrete tip.", role),
	}
}

// mockInstruction steers follow-up generation on mock answers.
func mockInstruction(role string) domain.Message {
	return domain.Message{
		Role: domain.RoleSystem,
		Content: fmt.Sprintf("You are conducting a MOCK interview for %s. Provide a natural "+
			"follow-up question or short constructive feedback focused on clarity, structure, "+
			"and technical depth. Keep it concise.", role),
	}
}
