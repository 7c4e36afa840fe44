package grading

import (
	"fmt"

	courseModels "lms/models/course"
)

// QuestionWithOptions bundles a question with its options for grading
type QuestionWithOptions struct {
	Question courseModels.Question
	Options  []courseModels.QuestionOption
}

// AnswerInput is one entry of a submitted answer sheet
type AnswerInput struct {
	QuestionID        uint   `json:"question_id"`
	AnswerText        string `json:"answer_text"`
	SelectedOptionIDs []uint `json:"selected_option_ids"`
}

// Outcome is the result of applying a grading strategy to a submission.
// Score is nil exactly when Status is PENDING_REVIEW.
type Outcome struct {
	Status string
	Score  *float64
}

// Strategy grades a submitted answer sheet against a test's questions
type Strategy interface {
	Grade(questions []QuestionWithOptions, answers []AnswerInput) (Outcome, error)
}

// Resolve maps a test's configured strategy type to its grading behavior.
// An unknown type indicates bad test data, not a transient condition; the
// caller must treat the error as fatal and not retry.
func Resolve(strategyType string) (Strategy, error) {
	switch strategyType {
	case courseModels.StrategyAuto:
		return AutoStrategy{}, nil
	case courseModels.StrategyManual:
		return ManualStrategy{}, nil
	default:
		return nil, fmt.Errorf("unknown grading strategy type %q", strategyType)
	}
}
