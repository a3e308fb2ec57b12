package scoring

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/avereev/interview-coach/internal/domain"
	"github.com/avereev/interview-coach/internal/llm"
)

// recentAnswerCap bounds how many of the latest user answers are scored.
const recentAnswerCap = 6

// Weights of the six sub-scores in the overall score. They sum to 1.00.
const (
	weightCommunication  = 0.20
	weightTechnical      = 0.25
	weightProblemSolving = 0.20
	weightStructure      = 0.15
	weightConfidence     = 0.10
	weightBehavioral     = 0.10
)

const maxImprovements = 4

// NarrativeSource tells which path produced the feedback text.
type NarrativeSource string

const (
	// NarrativeLLM means the feedback came back from the provider.
	NarrativeLLM NarrativeSource = "llm"
	// NarrativeFallback means the provider call failed and the templated
	// summary was used instead.
	NarrativeFallback NarrativeSource = "fallback"
)

// Evaluation is the full result attached to an evaluation-bearing reply.
type Evaluation struct {
	Overall      int      `json:"overall"`
	Breakdown    Scores   `json:"breakdown"`
	Improvements []string `json:"improvements"`
	LLMFeedback  string   `json:"llmFeedback"`

	// FeedbackSource is internal bookkeeping, not part of the protocol.
	FeedbackSource NarrativeSource `json:"-"`
}

// Evaluator composes heuristic scores, improvement tips, and a narrative
// summary into an Evaluation.
type Evaluator struct {
	llm llm.Client
}

// NewEvaluator returns an Evaluator backed by the given LLM client.
func NewEvaluator(client llm.Client) *Evaluator {
	return &Evaluator{llm: client}
}

// Evaluate scores the session's recent user answers. It never fails: if the
// narrative call errors out, the templated fallback is used and the source is
// marked accordingly.
func (e *Evaluator) Evaluate(ctx context.Context, sess *domain.Session) Evaluation {
	answers := sess.RecentUserAnswers(recentAnswerCap)
	scores := Heuristic(answers)
	overall := Overall(scores)
	improvements := Improvements(scores)

	feedback, source := e.narrative(ctx, sess.Role, scores, overall, answers, improvements)

	return Evaluation{
		Overall:        overall,
		Breakdown:      scores,
		Improvements:   improvements,
		LLMFeedback:    feedback,
		FeedbackSource: source,
	}
}

// Overall blends the six sub-scores with the fixed weights.
func Overall(s Scores) int {
	return round(
		float64(s.Communication)*weightCommunication +
			float64(s.Technical)*weightTechnical +
			float64(s.ProblemSolving)*weightProblemSolving +
			float64(s.Structure)*weightStructure +
			float64(s.Confidence)*weightConfidence +
			float64(s.Behavioral)*weightBehavioral)
}

// Improvements collects dimension-specific tips for weak sub-scores, in
// fixed priority order, truncated to maxImprovements.
func Improvements(s Scores) []string {
	var tips []string
	if s.Technical < 60 {
		tips = append(tips, "Add specific technical details: mention languages, frameworks, or projects.")
	}
	if s.Structure < 60 {
		tips = append(tips, "Structure answers using STAR (Situation, Task, Action, Result).")
	}
	if s.Communication < 65 {
		tips = append(tips, "Work on concise sentences and clear summaries.")
	}
	if s.Confidence < 65 {
		tips = append(tips, "Sound more decisive: avoid 'maybe' or 'I guess'.")
	}
	if s.ProblemSolving < 65 {
		tips = append(tips, "When answering technical questions, explain your step-by-step reasoning.")
	}
	if s.Behavioral < 60 {
		tips = append(tips, "Add teamwork examples and measurable impact.")
	}
	if len(tips) > maxImprovements {
		tips = tips[:maxImprovements]
	}
	return tips
}

func (e *Evaluator) narrative(ctx context.Context, role string, s Scores, overall int, answers, improvements []string) (string, NarrativeSource) {
	prompt := []domain.Message{
		{
			Role: domain.RoleSystem,
			Content: "You are a friendly, professional interview coach. Produce a brief " +
				"evaluation summary and 3-4 actionable improvement tips based on the " +
				"provided numeric sub-scores and short candidate answers.",
		},
		{
			Role: domain.RoleUser,
			Content: fmt.Sprintf(
				"Sub-scores:\nCommunication: %d\nTechnical: %d\nProblemSolving: %d\nStructure: %d\nConfidence: %d\nBehavioral: %d\nOverall: %d\n\n"+
					"Recent candidate answers:\n%s\n\n"+
					"Provide: 1) Short summary paragraph (2-3 sentences). 2) 3 action-oriented improvement steps tailored to a %s candidate.",
				s.Communication, s.Technical, s.ProblemSolving, s.Structure,
				s.Confidence, s.Behavioral, overall,
				strings.Join(answers, "\n---\n"), role),
		},
	}

	text, err := e.llm.Complete(ctx, prompt)
	if err != nil {
		slog.Warn("Evaluation narrative fell back to template", "error", err)
		return fallbackNarrative(overall, improvements), NarrativeFallback
	}
	return strings.TrimSpace(text), NarrativeLLM
}

func fallbackNarrative(overall int, improvements []string) string {
	return fmt.Sprintf("Summary: Your overall score is %d/100.\nFocus: %s",
		overall, strings.Join(improvements, " ; "))
}
