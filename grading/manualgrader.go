package grading

import courseModels "lms/models/course"

// ManualStrategy defers scoring to a human grader. The submission is
// parked as PENDING_REVIEW with no score; a grader later assigns one
// through the grade-assignment operation.
type ManualStrategy struct{}

func (ManualStrategy) Grade([]QuestionWithOptions, []AnswerInput) (Outcome, error) {
	return Outcome{Status: courseModels.StatusPendingReview, Score: nil}, nil
}
