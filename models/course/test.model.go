package course

import "gorm.io/gorm"

// Grading strategy types configured per test
const (
	StrategyAuto   = "AUTO"
	StrategyManual = "MANUAL"
)

// Question types
const (
	QuestionText           = "TEXT"
	QuestionSingleChoice   = "SINGLE_CHOICE"
	QuestionMultipleChoice = "MULTIPLE_CHOICE"
	QuestionTrueFalse      = "TRUE_FALSE"
)

// Test represents a graded assessment attached to a course module
type Test struct {
	gorm.Model
	CourseID     uint    `json:"course_id" gorm:"index;not null"`
	ModuleID     uint    `json:"module_id" gorm:"index;not null"`
	Title        string  `json:"title"`
	StrategyType string  `json:"strategy_type" gorm:"default:'AUTO'"` // AUTO, MANUAL
	PassingScore float64 `json:"passing_score" gorm:"default:70"`
	IsPublished  bool    `json:"is_published" gorm:"default:false"`
	IsDeleted    bool    `gorm:"default:false"`
}

// Question belongs to a test, ordered by position
type Question struct {
	gorm.Model
	TestID    uint   `json:"test_id" gorm:"index;not null"`
	Text      string `json:"text" gorm:"type:text"`
	Type      string `json:"type" gorm:"default:'SINGLE_CHOICE'"`
	Position  int    `json:"position" gorm:"default:0"`
	IsDeleted bool   `gorm:"default:false"`
}

// QuestionOption is one selectable option of a question. IsCorrect is
// never serialized to students.
type QuestionOption struct {
	gorm.Model
	QuestionID uint   `json:"question_id" gorm:"index;not null"`
	Text       string `json:"text"`
	IsCorrect  bool   `json:"-" gorm:"default:false"`
	OrderIndex int    `json:"order_index" gorm:"default:0"`
	IsDeleted  bool   `gorm:"default:false"`
}
