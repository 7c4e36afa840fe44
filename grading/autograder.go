package grading

import (
	"errors"
	"math"
	"strings"

	courseModels "lms/models/course"
)

// ErrNoQuestions is returned when an auto-graded test has no questions
// to score against. Submissions against such tests are rejected up
// front so no division by zero can occur.
var ErrNoQuestions = errors.New("test has no questions")

// AutoStrategy scores a submission immediately from the answer sheet
type AutoStrategy struct{}

// Grade computes per-question correctness by question type and returns a
// GRADED outcome with score = round(correct/total*100, 2). Unanswered
// questions count as incorrect.
func (AutoStrategy) Grade(questions []QuestionWithOptions, answers []AnswerInput) (Outcome, error) {
	if len(questions) == 0 {
		return Outcome{}, ErrNoQuestions
	}

	answerByQuestion := make(map[uint]AnswerInput, len(answers))
	for _, a := range answers {
		answerByQuestion[a.QuestionID] = a
	}

	correct := 0
	for _, q := range questions {
		answer, ok := answerByQuestion[q.Question.ID]
		if ok && isCorrect(q, answer) {
			correct++
		}
	}

	score := Round2(float64(correct) / float64(len(questions)) * 100)
	return Outcome{Status: courseModels.StatusGraded, Score: &score}, nil
}

func isCorrect(q QuestionWithOptions, answer AnswerInput) bool {
	switch q.Question.Type {
	case courseModels.QuestionText, courseModels.QuestionTrueFalse:
		return matchesCorrectText(q.Options, answer.AnswerText)
	case courseModels.QuestionSingleChoice:
		correctID, ok := correctOptionID(q.Options)
		if !ok || len(answer.SelectedOptionIDs) == 0 {
			return false
		}
		return answer.SelectedOptionIDs[0] == correctID
	case courseModels.QuestionMultipleChoice:
		if len(answer.SelectedOptionIDs) == 0 {
			return false
		}
		return equalOptionSets(answer.SelectedOptionIDs, correctOptionIDs(q.Options))
	default:
		return false
	}
}

// matchesCorrectText compares the student's free-text answer with the
// text of the option flagged correct, case-insensitively. An empty
// answer or an empty/missing correct option text never matches.
func matchesCorrectText(options []courseModels.QuestionOption, answerText string) bool {
	expected := ""
	for _, opt := range options {
		if opt.IsCorrect {
			expected = strings.TrimSpace(opt.Text)
			break
		}
	}
	given := strings.TrimSpace(answerText)
	if expected == "" || given == "" {
		return false
	}
	return strings.EqualFold(given, expected)
}

func correctOptionID(options []courseModels.QuestionOption) (uint, bool) {
	for _, opt := range options {
		if opt.IsCorrect {
			return opt.ID, true
		}
	}
	return 0, false
}

func correctOptionIDs(options []courseModels.QuestionOption) []uint {
	var ids []uint
	for _, opt := range options {
		if opt.IsCorrect {
			ids = append(ids, opt.ID)
		}
	}
	return ids
}

// equalOptionSets reports whether selected and correct contain exactly
// the same option ids. Both sides are treated as sets so duplicates in
// the selection cannot inflate the match.
func equalOptionSets(selected, correct []uint) bool {
	selSet := make(map[uint]struct{}, len(selected))
	for _, id := range selected {
		selSet[id] = struct{}{}
	}
	if len(selSet) != len(correct) {
		return false
	}
	for _, id := range correct {
		if _, ok := selSet[id]; !ok {
			return false
		}
	}
	return true
}

// Round2 rounds to 2-decimal precision, the precision scores and
// progress percentages are persisted with
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
