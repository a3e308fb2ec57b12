package coach

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/avereev/interview-coach/internal/domain"
	"github.com/avereev/interview-coach/internal/llm"
	"github.com/avereev/interview-coach/internal/scoring"
	"github.com/avereev/interview-coach/internal/session"
)

// Context window sizes for LLM calls. The asymmetry (6 turns for training
// freeform, 8 for mock and fallback) is deliberate and must stay.
const (
	trainingContextTurns = 6
	mockContextTurns     = 8
)

// A mock answer shorter than this many characters gets an elaboration
// request instead of an LLM follow-up.
const minMockAnswerLen = 40

const (
	pauseNotice      = "Interview paused. Type 'continue' to resume or 'evaluate' for feedback."
	elaborateRequest = "Could you elaborate a bit more on that? Give one specific example."
)

// Request is one incoming user message with its session context.
type Request struct {
	SessionID string
	Message   string
	Role      string
	Mode      domain.Mode
}

// Reply is what the engine hands back to the transport layer.
type Reply struct {
	SessionID   string
	Reply       string
	Suggestions []string
	Evaluation  *scoring.Evaluation
}

// Engine drives the per-session conversation state machine.
type Engine struct {
	store *session.Store
	llm   llm.Client
	eval  *scoring.Evaluator
}

// NewEngine wires the engine to its session store, LLM client, and
// evaluation composer.
func NewEngine(store *session.Store, client llm.Client, eval *scoring.Evaluator) *Engine {
	return &Engine{store: store, llm: client, eval: eval}
}

// HasSession reports whether a session key is already resident in the store.
func (e *Engine) HasSession(id string) bool {
	_, ok := e.store.Get(id)
	return ok
}

// HandleMessage processes one message and returns the reply. On an LLM
// failure the error propagates to the caller; session state mutated before
// the failing call (the appended user turn) is kept, not rolled back.
func (e *Engine) HandleMessage(ctx context.Context, req Request) (*Reply, error) {
	key := req.SessionID
	if key == "" {
		key = session.NewKey()
	}

	sess, created := e.store.GetOrCreate(key)
	if created {
		sess.AppendSystem(systemPrompt(req.Role, req.Mode).Content)
	}
	// The UI re-sends role and mode on every call; the session follows.
	sess.Role = req.Role
	sess.Mode = req.Mode
	sess.Touch()

	cmd := ParseCommand(Normalize(req.Message), sess.Mode)

	switch cmd {
	case CmdEvaluate:
		return e.evaluateOnDemand(ctx, sess, req.Message), nil
	case CmdNextLesson:
		return e.nextLesson(sess, req.Message), nil
	case CmdExample:
		return e.showExample(sess, req.Message), nil
	case CmdPractice:
		return e.showPractice(sess, req.Message), nil
	case CmdExplain:
		return e.explainMore(sess, req.Message), nil
	case CmdStartMock:
		return e.startMock(sess, req.Message), nil
	case CmdStop:
		return e.pauseMock(sess, req.Message), nil
	case CmdContinue:
		return e.continueMock(sess, req.Message), nil
	}

	switch sess.Mode {
	case domain.ModeTraining:
		return e.trainingFreeform(ctx, sess, req.Message)
	case domain.ModeMock:
		return e.mockAnswer(ctx, sess, req.Message)
	default:
		return e.fallback(ctx, sess, req.Message)
	}
}

// evaluateOnDemand scores the answers given so far. The evaluation runs
// before the command message joins the history so the "evaluate" keyword
// itself never counts as an answer.
func (e *Engine) evaluateOnDemand(ctx context.Context, sess *domain.Session, raw string) *Reply {
	ev := e.eval.Evaluate(ctx, sess)
	reply := fmt.Sprintf("📊 Evaluation complete — Overall: %d/100. Tap the card for details.", ev.Overall)
	sess.AppendUser(raw)
	sess.AppendAssistant(reply)
	return &Reply{
		SessionID:   sess.ID,
		Reply:       reply,
		Suggestions: []string{"start mock", "next"},
		Evaluation:  &ev,
	}
}

func (e *Engine) nextLesson(sess *domain.Session, raw string) *Reply {
	step := sess.TrainingStep
	lesson := lessonAt(step)
	reply := fmt.Sprintf("Lesson %d: %s\n\n%s\n\nExample:\n%s\n\nTry this: %s",
		step+1, lesson.Title, lesson.Content, lesson.Example, lesson.PracticePrompt)
	if sess.TrainingStep < lessonCount()-1 {
		sess.TrainingStep++
	}
	sess.AppendUser(raw)
	sess.AppendAssistant(reply)
	return &Reply{
		SessionID:   sess.ID,
		Reply:       reply,
		Suggestions: trainingSuggestions(),
	}
}

func (e *Engine) showExample(sess *domain.Session, raw string) *Reply {
	lesson := prevLesson(sess.TrainingStep)
	reply := fmt.Sprintf("Example for %q:\n\n%s\n\nWould you like to try the practice prompt? (type 'practice')",
		lesson.Title, lesson.Example)
	sess.AppendUser(raw)
	sess.AppendAssistant(reply)
	return &Reply{
		SessionID:   sess.ID,
		Reply:       reply,
		Suggestions: []string{"practice", "next", "explain more"},
	}
}

func (e *Engine) showPractice(sess *domain.Session, raw string) *Reply {
	lesson := prevLesson(sess.TrainingStep)
	reply := fmt.Sprintf("Practice prompt:\n%s\n\nType your answer and I will give feedback.",
		lesson.PracticePrompt)
	sess.AppendUser(raw)
	sess.AppendAssistant(reply)
	return &Reply{
		SessionID:   sess.ID,
		Reply:       reply,
		Suggestions: []string{"give me an example", "next"},
	}
}

func (e *Engine) explainMore(sess *domain.Session, raw string) *Reply {
	lesson := prevLesson(sess.TrainingStep)
	reply := fmt.Sprintf("Let me expand on that:\n\n%s\n\nIf you'd like, I can walk through an example step-by-step. Try 'give me an example'.",
		lesson.Content)
	sess.AppendUser(raw)
	sess.AppendAssistant(reply)
	return &Reply{
		SessionID:   sess.ID,
		Reply:       reply,
		Suggestions: []string{"give me an example", "practice", "next"},
	}
}

func (e *Engine) startMock(sess *domain.Session, raw string) *Reply {
	sess.Mode = domain.ModeMock
	sess.MockStep = 0
	sess.AppendSystem("Switch to MOCK mode for " + sess.Role)
	sess.AppendUser(raw)
	q := questionAt(0)
	sess.AppendAssistant(q)
	return &Reply{
		SessionID:   sess.ID,
		Reply:       "Starting mock interview. First question: " + q,
		Suggestions: mockSuggestions(),
	}
}

func (e *Engine) pauseMock(sess *domain.Session, raw string) *Reply {
	sess.AppendUser(raw)
	sess.AppendAssistant(pauseNotice)
	return &Reply{
		SessionID:   sess.ID,
		Reply:       pauseNotice,
		Suggestions: []string{"continue", "evaluate"},
	}
}

func (e *Engine) continueMock(sess *domain.Session, raw string) *Reply {
	q := questionAt(sess.MockStep)
	sess.AppendUser(raw)
	sess.AppendAssistant(q)
	return &Reply{
		SessionID:   sess.ID,
		Reply:       q,
		Suggestions: []string{"stop", "evaluate"},
	}
}

func (e *Engine) trainingFreeform(ctx context.Context, sess *domain.Session, raw string) (*Reply, error) {
	sess.AppendUser(raw)
	msgs := make([]domain.Message, 0, trainingContextTurns+2)
	msgs = append(msgs, systemPrompt(sess.Role, domain.ModeTraining), trainingInstruction(sess.Role))
	msgs = append(msgs, sess.RecentHistory(trainingContextTurns)...)

	text, err := e.llm.Complete(ctx, msgs)
	if err != nil {
		return nil, err
	}
	sess.AppendAssistant(text)
	return &Reply{
		SessionID:   sess.ID,
		Reply:       text,
		Suggestions: trainingSuggestions(),
	}, nil
}

func (e *Engine) mockAnswer(ctx context.Context, sess *domain.Session, raw string) (*Reply, error) {
	sess.AppendUser(raw)

	// Under-elaborated answer: push back without spending an LLM call.
	if utf8.RuneCountInString(strings.TrimSpace(raw)) < minMockAnswerLen {
		sess.AppendAssistant(elaborateRequest)
		sess.MockStep = min(sess.MockStep+1, questionCount())
		return &Reply{
			SessionID:   sess.ID,
			Reply:       elaborateRequest,
			Suggestions: []string{"continue", "stop", "evaluate"},
		}, nil
	}

	msgs := make([]domain.Message, 0, mockContextTurns+2)
	msgs = append(msgs, systemPrompt(sess.Role, domain.ModeMock), mockInstruction(sess.Role))
	msgs = append(msgs, sess.RecentHistory(mockContextTurns)...)

	text, err := e.llm.Complete(ctx, msgs)
	if err != nil {
		return nil, err
	}
	sess.AppendAssistant(text)
	sess.MockStep = min(sess.MockStep+1, questionCount())

	// Crossing the end of the catalog closes the interview with exactly one
	// evaluation instead of the plain follow-up.
	if sess.MockStep >= questionCount() {
		ev := e.eval.Evaluate(ctx, sess)
		short := fmt.Sprintf("📊 Mock complete — Overall: %d/100. Tap the card for details.", ev.Overall)
		sess.AppendAssistant(short)
		return &Reply{
			SessionID:   sess.ID,
			Reply:       short,
			Suggestions: []string{"start mock", "next"},
			Evaluation:  &ev,
		}, nil
	}

	return &Reply{
		SessionID:   sess.ID,
		Reply:       text,
		Suggestions: mockSuggestions(),
	}, nil
}

// fallback handles a session whose mode matches neither known mode.
func (e *Engine) fallback(ctx context.Context, sess *domain.Session, raw string) (*Reply, error) {
	sess.AppendUser(raw)
	msgs := make([]domain.Message, 0, mockContextTurns+1)
	msgs = append(msgs, systemPrompt(sess.Role, sess.Mode))
	msgs = append(msgs, sess.RecentHistory(mockContextTurns)...)

	text, err := e.llm.Complete(ctx, msgs)
	if err != nil {
		return nil, err
	}
	sess.AppendAssistant(text)

	suggestions := mockSuggestions()
	if sess.Mode == domain.ModeTraining {
		suggestions = trainingSuggestions()
	}
	return &Reply{
		SessionID:   sess.ID,
		Reply:       text,
		Suggestions: suggestions,
	}, nil
}
