// Package coach implements the interview-practice conversation engine: a
// session-driven state machine over two interaction modes, backed by a
// scripted lesson catalog and an LLM for freeform turns.
package coach

// Lesson is one read-only entry of the training catalog.
type Lesson struct {
	Title          string
	Content        string
	Example        string
	PracticePrompt string
}

var trainingLessons = []Lesson{
	{
		Title: "Understand the Role",
		Content: "A Software Engineer builds, tests, and maintains software. Key skills: " +
			"problem solving, data structures & algorithms, system design basics, communication, and collaboration.",
		Example: "Example summary: 'I build backend services using Java/Spring and focus on reliable APIs " +
			"and good tests. I recently improved latency by 30% by optimizing queries.'",
		PracticePrompt: "In one short sentence, tell me what you would bring to this role.",
	},
	{
		Title: "Common Interview Questions",
		Content: "Common questions include: 'Tell me about yourself', 'Why us?', " +
			"'Describe a challenging bug you fixed', 'Explain a system you designed'.",
		Example: "For 'Why us?': 'I like your focus on scalable systems and the opportunity to work on " +
			"distributed services; my experience in XYZ aligns.'",
		PracticePrompt: "Answer: 'Why are you interested in this company?' (30-45 seconds)",
	},
	{
		Title:   "STAR Method & Structuring Answers",
		Content: "Use STAR: Situation → Task → Action → Result. Keep answers concise and focused on impact.",
		Example: "Example STAR: 'Situation: Slow API. Task: Reduce latency. Action: Added indexing and caching. " +
			"Result: 40% faster responses.'",
		PracticePrompt: "Describe a recent challenge using the STAR format (one short paragraph).",
	},
	{
		Title: "Technical Preparation (DSA & Systems)",
		Content: "Be ready for algorithmic questions (arrays, trees, graphs), and explain time/space complexity. " +
			"For systems design, discuss trade-offs and scalability.",
		Example: "For DSA: 'I used two-pointer technique to reduce complexity from O(n^2) to O(n).' " +
			"For design: 'I would use sharding, caching and load balancers for scale.'",
		PracticePrompt: "Explain how you'd find the middle of a linked list (brief).",
	},
	{
		Title: "Behavioral & Culture Fit",
		Content: "Interviewers assess teamwork, communication, and how you learn from mistakes. " +
			"Be honest, show growth, and give measurable outcomes.",
		Example:        "Example: 'I led a small team to adopt CI/CD which reduced rollback time by 60%.'",
		PracticePrompt: "Share one thing you learned from a mistake and how you fixed it.",
	},
	{
		Title: "Mistakes to Avoid & Final Tips",
		Content: "Avoid rambling, over-technical detail without context, or not answering the question directly. " +
			"Summarize your point and relate it to the role.",
		Example:        "Wrap up answers: 'In summary: I improved X and delivered Y results.'",
		PracticePrompt: "Give a 30-second summary of your most relevant project.",
	},
}

var mockQuestions = []string{
	"Tell me about yourself.",
	"Why are you interested in this role?",
	"Describe a time you faced a technical challenge and how you resolved it.",
	"How do you approach debugging a production issue?",
	"Design a scalable URL shortening service (high level).",
}

func lessonCount() int   { return len(trainingLessons) }
func questionCount() int { return len(mockQuestions) }

// lessonAt returns the lesson for a training step, clamped to the last
// lesson when the step runs past the catalog.
func lessonAt(step int) Lesson {
	if step < 0 {
		step = 0
	}
	if step >= len(trainingLessons) {
		step = len(trainingLessons) - 1
	}
	return trainingLessons[step]
}

// prevLesson returns the lesson the learner just saw. "next" advances the
// step after emitting, so example/practice/explain look one step back,
// floored at the first lesson.
func prevLesson(step int) Lesson {
	return lessonAt(step - 1)
}

// questionAt returns the mock question for a step, clamped to the last
// question when the step runs past the catalog.
func questionAt(step int) string {
	if step < 0 {
		step = 0
	}
	if step >= len(mockQuestions) {
		step = len(mockQuestions) - 1
	}
	return mockQuestions[step]
}

// The training suggestion set has a fifth entry ("start mock") that the UI
// chips never show; only the first four are sent.
var trainingSuggestionSet = []string{"next", "give me an example", "practice", "explain more", "start mock"}

func trainingSuggestions() []string {
	return trainingSuggestionSet[:4]
}

func mockSuggestions() []string {
	return []string{"stop", "continue", "evaluate"}
}
