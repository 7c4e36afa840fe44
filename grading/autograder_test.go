package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	courseModels "lms/models/course"
)

func question(id uint, qtype string, opts ...courseModels.QuestionOption) QuestionWithOptions {
	return QuestionWithOptions{
		Question: courseModels.Question{Model: gorm.Model{ID: id}, TestID: 1, Type: qtype, Position: int(id)},
		Options:  opts,
	}
}

func option(id uint, text string, correct bool) courseModels.QuestionOption {
	return courseModels.QuestionOption{Model: gorm.Model{ID: id}, Text: text, IsCorrect: correct}
}

func gradeOne(t *testing.T, q QuestionWithOptions, a AnswerInput) float64 {
	t.Helper()
	outcome, err := AutoStrategy{}.Grade([]QuestionWithOptions{q}, []AnswerInput{a})
	require.NoError(t, err)
	require.NotNil(t, outcome.Score)
	assert.Equal(t, courseModels.StatusGraded, outcome.Status)
	return *outcome.Score
}

func TestAutoGradeSingleChoice(t *testing.T) {
	q := question(1, courseModels.QuestionSingleChoice,
		option(10, "Paris", true),
		option(11, "Lyon", false),
	)

	tests := []struct {
		name     string
		selected []uint
		want     float64
	}{
		{name: "correct option selected", selected: []uint{10}, want: 100},
		{name: "wrong option selected", selected: []uint{11}, want: 0},
		{name: "nothing selected", selected: nil, want: 0},
		{name: "first selected id wins", selected: []uint{11, 10}, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := gradeOne(t, q, AnswerInput{QuestionID: 1, SelectedOptionIDs: tt.selected})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAutoGradeSingleChoiceNoCorrectOption(t *testing.T) {
	q := question(1, courseModels.QuestionSingleChoice,
		option(10, "Paris", false),
		option(11, "Lyon", false),
	)
	got := gradeOne(t, q, AnswerInput{QuestionID: 1, SelectedOptionIDs: []uint{10}})
	assert.Equal(t, float64(0), got)
}

func TestAutoGradeMultipleChoice(t *testing.T) {
	q := question(1, courseModels.QuestionMultipleChoice,
		option(10, "A", true),
		option(11, "B", true),
		option(12, "C", false),
	)

	tests := []struct {
		name     string
		selected []uint
		want     float64
	}{
		{name: "exact set", selected: []uint{11, 10}, want: 100},
		{name: "subset gets no credit", selected: []uint{10}, want: 0},
		{name: "superset gets no credit", selected: []uint{10, 11, 12}, want: 0},
		{name: "duplicates do not inflate", selected: []uint{10, 10}, want: 0},
		{name: "unanswered", selected: nil, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := gradeOne(t, q, AnswerInput{QuestionID: 1, SelectedOptionIDs: tt.selected})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAutoGradeTextQuestions(t *testing.T) {
	tests := []struct {
		name    string
		qtype   string
		correct string
		answer  string
		want    float64
	}{
		{name: "exact match", qtype: courseModels.QuestionText, correct: "Goroutine", answer: "Goroutine", want: 100},
		{name: "case insensitive", qtype: courseModels.QuestionText, correct: "Goroutine", answer: "gOROUTINE", want: 100},
		{name: "surrounding whitespace ignored", qtype: courseModels.QuestionText, correct: "Goroutine", answer: "  goroutine ", want: 100},
		{name: "wrong answer", qtype: courseModels.QuestionText, correct: "Goroutine", answer: "Thread", want: 0},
		{name: "empty answer", qtype: courseModels.QuestionText, correct: "Goroutine", answer: "", want: 0},
		{name: "empty correct text never matches", qtype: courseModels.QuestionText, correct: "", answer: "", want: 0},
		{name: "true false match", qtype: courseModels.QuestionTrueFalse, correct: "True", answer: "true", want: 100},
		{name: "true false mismatch", qtype: courseModels.QuestionTrueFalse, correct: "True", answer: "false", want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := question(1, tt.qtype, option(10, tt.correct, true), option(11, "distractor", false))
			got := gradeOne(t, q, AnswerInput{QuestionID: 1, AnswerText: tt.answer})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAutoGradeScoreRounding(t *testing.T) {
	q1 := question(1, courseModels.QuestionSingleChoice, option(10, "A", true))
	q2 := question(2, courseModels.QuestionSingleChoice, option(20, "A", true))
	q3 := question(3, courseModels.QuestionSingleChoice, option(30, "A", true))

	// 1 of 2 correct => 50.00
	outcome, err := AutoStrategy{}.Grade(
		[]QuestionWithOptions{q1, q2},
		[]AnswerInput{{QuestionID: 1, SelectedOptionIDs: []uint{10}}},
	)
	require.NoError(t, err)
	assert.Equal(t, 50.0, *outcome.Score)

	// 1 of 3 correct => 33.33, unanswered questions count as incorrect
	outcome, err = AutoStrategy{}.Grade(
		[]QuestionWithOptions{q1, q2, q3},
		[]AnswerInput{{QuestionID: 1, SelectedOptionIDs: []uint{10}}},
	)
	require.NoError(t, err)
	assert.Equal(t, 33.33, *outcome.Score)
}

func TestAutoGradeNoQuestions(t *testing.T) {
	_, err := AutoStrategy{}.Grade(nil, nil)
	assert.ErrorIs(t, err, ErrNoQuestions)
}

func TestAutoGradeIgnoresForeignAnswers(t *testing.T) {
	q := question(1, courseModels.QuestionSingleChoice, option(10, "A", true))
	got := gradeOne(t, q, AnswerInput{QuestionID: 99, SelectedOptionIDs: []uint{10}})
	assert.Equal(t, float64(0), got)
}
