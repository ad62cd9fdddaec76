package service

import (
	"math"
	"strings"

	"github.com/nevtik/eduvate-backend/internal/model"
)

// GradeAnswer decides correctness for a single question. It never errors:
// malformed or missing input grades as incorrect.
//
// MULTIPLE_CHOICE and TRUE_FALSE are correct iff the selected index is a
// valid position in the option list and that option is marked correct.
// ESSAY is correct iff any keyword matches (see essayCorrect).
func GradeAnswer(q model.Question, answer model.AnswerPatch) bool {
	switch q.Type {
	case model.QuestionMultipleChoice, model.QuestionTrueFalse:
		if answer.SelectedOptionIndex == nil {
			return false
		}
		idx := *answer.SelectedOptionIndex
		if idx < 0 || idx >= len(q.Options) {
			return false
		}
		return q.Options[idx].IsCorrect
	case model.QuestionEssay:
		if answer.EssayAnswer == nil {
			return false
		}
		return essayCorrect(q.AnswerKeywords, *answer.EssayAnswer)
	}
	return false
}

// essayCorrect splits the comma-separated keyword list and reports whether
// any trimmed, non-empty keyword appears in the answer, case-insensitive.
// An empty keyword list never matches.
func essayCorrect(keywords, answer string) bool {
	if keywords == "" {
		return false
	}
	lowered := strings.ToLower(answer)
	for _, kw := range strings.Split(keywords, ",") {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

// ComputeScore returns correct/total as a percentage rounded to two
// decimals. A quiz with no questions scores zero.
func ComputeScore(correct, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(correct)/float64(total)*100*100) / 100
}
