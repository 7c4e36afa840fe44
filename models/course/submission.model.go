package course

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Submission statuses
const (
	StatusPendingReview = "PENDING_REVIEW"
	StatusGraded        = "GRADED"
)

// StudentSubmission is one recorded attempt at a test. Score is NULL
// exactly while the submission is pending manual review.
type StudentSubmission struct {
	gorm.Model
	UserID      uint      `json:"user_id" gorm:"index;not null"`
	TestID      uint      `json:"test_id" gorm:"index;not null"`
	Status      string    `json:"status" gorm:"default:'PENDING_REVIEW'"`
	Score       *float64  `json:"score"`
	SubmittedAt time.Time `json:"submitted_at"`
	IsDeleted   bool      `gorm:"default:false"`

	Answers []StudentAnswer `json:"answers,omitempty" gorm:"foreignKey:SubmissionID"`
}

// StudentAnswer holds the student's response to one question of the test
type StudentAnswer struct {
	gorm.Model
	SubmissionID    uint           `json:"submission_id" gorm:"index;not null"`
	QuestionID      uint           `json:"question_id" gorm:"index;not null"`
	AnswerText      string         `json:"answer_text" gorm:"type:text"`
	SelectedOptions datatypes.JSON `json:"selected_options"` // array of option IDs
	Position        int            `json:"position" gorm:"default:0"`
}
