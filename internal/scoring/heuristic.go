// Package scoring turns recent free-text answers into a heuristic interview
// evaluation, optionally polished by an LLM narrative.
package scoring

import (
	"math"
	"strings"
)

// Scores holds the six heuristic sub-scores plus the informational length
// metric. Length is auxiliary and excluded from the weighted overall score.
type Scores struct {
	Communication  int `json:"communication"`
	Technical      int `json:"technical"`
	ProblemSolving int `json:"problemSolving"`
	Structure      int `json:"structure"`
	Confidence     int `json:"confidence"`
	Behavioral     int `json:"behavioral"`
	Length         int `json:"-"`
}

// Fixed vocabularies scanned against the joined lowercased answers.
var (
	techKeywords = []string{
		"java", "python", "c++", "c#", "javascript", "node", "react", "spring",
		"sql", "database", "algorithm", "complexity", "big o", "docker",
		"kubernetes", "aws", "gcp", "azure",
	}

	starWords = []string{
		"situation", "task", "action", "result", "resulted", "led", "improved",
		"reduced", "increased",
	}

	hedgingPhrases = []string{
		"maybe", "i guess", "sort of", "perhaps", "might", "not sure",
		"little experience",
	}

	teamWords = []string{
		"team", "led", "collaborated", "we", "together", "mentored",
		"stakeholders",
	}

	problemWords = []string{
		"debug", "investigate", "root cause", "diagnose", "reproduce",
		"analysis", "optimi",
	}
)

// Heuristic scores a list of recent answers. It is pure: identical input
// always yields identical output.
func Heuristic(answers []string) Scores {
	joined := strings.ToLower(strings.Join(answers, " "))

	var avgLen float64
	if len(answers) > 0 {
		total := 0
		for _, a := range answers {
			total += len(a)
		}
		avgLen = float64(total) / float64(len(answers))
	}
	lengthScore := clamp(round(avgLen/200*100), 20, 90)

	techScore := min(100, round(float64(countHits(joined, techKeywords))/5*60)+30)
	starScore := min(100, round(float64(countHits(joined, starWords))/4*70)+20)

	// Communication derives from average sentence length; with nothing to
	// score it stays at the neutral default.
	commScore := 60
	if len(answers) > 0 {
		sentences := strings.Count(joined, ".") + strings.Count(joined, "?") + strings.Count(joined, "!")
		if sentences < 1 {
			sentences = 1
		}
		avgSentenceLen := float64(len(joined)) / float64(sentences)
		switch {
		case avgSentenceLen < 40:
			commScore = 80
		case avgSentenceLen < 80:
			commScore = 70
		default:
			commScore = 55
		}
	}

	confScore := max(40, 80-12*countHits(joined, hedgingPhrases))
	behaviorScore := min(100, 40+15*countHits(joined, teamWords))
	problemScore := min(100, 50+15*countHits(joined, problemWords))

	return Scores{
		Communication:  commScore,
		Technical:      techScore,
		ProblemSolving: problemScore,
		Structure:      starScore,
		Confidence:     confScore,
		Behavioral:     behaviorScore,
		Length:         lengthScore,
	}
}

// countHits counts how many vocabulary entries occur in the text. Each entry
// counts at most once regardless of repetition.
func countHits(text string, vocab []string) int {
	hits := 0
	for _, w := range vocab {
		if strings.Contains(text, w) {
			hits++
		}
	}
	return hits
}

func round(f float64) int {
	return int(math.Round(f))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
