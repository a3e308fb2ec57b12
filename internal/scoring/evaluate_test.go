package scoring

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/avereev/interview-coach/internal/domain"
	"github.com/avereev/interview-coach/internal/llm"
)

func TestOverallMatchesWeightedSum(t *testing.T) {
	t.Parallel()

	cases := []Scores{
		{Communication: 0, Technical: 0, ProblemSolving: 0, Structure: 0, Confidence: 0, Behavioral: 0},
		{Communication: 100, Technical: 100, ProblemSolving: 100, Structure: 100, Confidence: 100, Behavioral: 100},
		{Communication: 80, Technical: 30, ProblemSolving: 50, Structure: 20, Confidence: 56, Behavioral: 40},
		{Communication: 55, Technical: 90, ProblemSolving: 95, Structure: 90, Confidence: 80, Behavioral: 100},
		{Communication: 70, Technical: 66, ProblemSolving: 65, Structure: 37, Confidence: 44, Behavioral: 55},
	}

	for _, s := range cases {
		want := int(math.Round(
			0.20*float64(s.Communication) +
				0.25*float64(s.Technical) +
				0.20*float64(s.ProblemSolving) +
				0.15*float64(s.Structure) +
				0.10*float64(s.Confidence) +
				0.10*float64(s.Behavioral)))
		if got := Overall(s); got != want {
			t.Errorf("Overall(%+v) = %d, want %d", s, got, want)
		}
	}
}

func TestImprovementsPriorityAndCap(t *testing.T) {
	t.Parallel()

	// Everything weak: six tips qualify but only four survive, in the fixed
	// priority order technical, structure, communication, confidence.
	tips := Improvements(Scores{})
	if len(tips) != 4 {
		t.Fatalf("expected 4 improvements, got %d", len(tips))
	}
	if !strings.Contains(tips[0], "technical details") {
		t.Errorf("expected technical tip first, got %q", tips[0])
	}
	if !strings.Contains(tips[1], "STAR") {
		t.Errorf("expected structure tip second, got %q", tips[1])
	}

	// Everything strong: nothing to improve.
	strong := Scores{Communication: 90, Technical: 90, ProblemSolving: 90, Structure: 90, Confidence: 90, Behavioral: 90}
	if tips := Improvements(strong); len(tips) != 0 {
		t.Errorf("expected no improvements for strong scores, got %v", tips)
	}
}

func TestEvaluateFallbackNarrative(t *testing.T) {
	t.Parallel()

	ev := NewEvaluator(&llm.MockClient{Err: errors.New("provider down")})
	sess := &domain.Session{ID: "s_test", Role: "Software Engineer"}
	sess.AppendUser("maybe i guess it went fine")

	result := ev.Evaluate(context.Background(), sess)

	if result.FeedbackSource != NarrativeFallback {
		t.Fatalf("expected fallback narrative, got %q", result.FeedbackSource)
	}
	if result.LLMFeedback == "" {
		t.Fatal("fallback narrative must not be empty")
	}
	if !strings.Contains(result.LLMFeedback, "overall score") {
		t.Errorf("fallback narrative missing score summary: %q", result.LLMFeedback)
	}
	if len(result.Improvements) > 4 {
		t.Errorf("improvements exceed cap: %d", len(result.Improvements))
	}
}

func TestEvaluateLLMNarrative(t *testing.T) {
	t.Parallel()

	ev := NewEvaluator(&llm.MockClient{Reply: "  Strong answers overall. Keep quantifying impact.  "})
	sess := &domain.Session{ID: "s_test", Role: "Software Engineer"}
	sess.AppendUser("I led the migration to Kubernetes and reduced deploy time by 60%.")

	result := ev.Evaluate(context.Background(), sess)

	if result.FeedbackSource != NarrativeLLM {
		t.Fatalf("expected LLM narrative, got %q", result.FeedbackSource)
	}
	if result.LLMFeedback != "Strong answers overall. Keep quantifying impact." {
		t.Errorf("expected trimmed LLM text, got %q", result.LLMFeedback)
	}
	if result.Overall != Overall(result.Breakdown) {
		t.Errorf("overall %d does not match breakdown %+v", result.Overall, result.Breakdown)
	}
}

func TestEvaluateScansOnlyRecentUserAnswers(t *testing.T) {
	t.Parallel()

	ev := NewEvaluator(&llm.MockClient{Err: errors.New("down")})
	sess := &domain.Session{ID: "s_test", Role: "Software Engineer"}
	// Seven user turns: the oldest must fall outside the 6-answer window.
	sess.AppendUser("java java java kubernetes docker sql python aws")
	for i := 0; i < 6; i++ {
		sess.AppendUser("plain answer with no keywords at all")
		sess.AppendAssistant("noted")
	}

	result := ev.Evaluate(context.Background(), sess)
	if result.Breakdown.Technical != 30 {
		t.Errorf("expected technical 30 once keyword answer aged out, got %d", result.Breakdown.Technical)
	}
}
