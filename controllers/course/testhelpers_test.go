package controllers

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	courseModels "lms/models/course"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// named shared-cache memory database so every pooled connection
	// sees the same tables, isolated per test by name
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&courseModels.Course{},
		&courseModels.Module{},
		&courseModels.Lesson{},
		&courseModels.LessonCompletion{},
		&courseModels.Test{},
		&courseModels.Question{},
		&courseModels.QuestionOption{},
		&courseModels.StudentSubmission{},
		&courseModels.StudentAnswer{},
		&courseModels.Enrollment{},
		&courseModels.Certificate{},
	))
	return db
}

type fixture struct {
	Course  courseModels.Course
	Module  courseModels.Module
	Lessons []courseModels.Lesson
}

// seedCourse creates a published course with one module and the given
// number of published lessons, and enrolls the student
func seedCourse(t *testing.T, db *gorm.DB, studentID uint, lessonCount int) fixture {
	t.Helper()

	course := courseModels.Course{Title: "Go Fundamentals", Status: "ACTIVE", IsPublished: true}
	require.NoError(t, db.Create(&course).Error)

	module := courseModels.Module{CourseID: course.ID, Title: "Basics"}
	require.NoError(t, db.Create(&module).Error)

	lessons := make([]courseModels.Lesson, lessonCount)
	for i := range lessons {
		lessons[i] = courseModels.Lesson{
			CourseID:    course.ID,
			ModuleID:    module.ID,
			Title:       "Lesson",
			OrderIndex:  i,
			IsPublished: true,
		}
		require.NoError(t, db.Create(&lessons[i]).Error)
	}

	enrollment := courseModels.Enrollment{
		UserID:       studentID,
		CourseID:     course.ID,
		Status:       "ENROLLED",
		TotalLessons: lessonCount,
	}
	require.NoError(t, db.Create(&enrollment).Error)

	return fixture{Course: course, Module: module, Lessons: lessons}
}

// seedSingleChoiceTest creates a published test with questionCount
// single-choice questions. The first option of each question is the
// correct one; the returned slices hold correct and wrong option ids
// per question.
func seedSingleChoiceTest(t *testing.T, db *gorm.DB, f fixture, strategyType string, questionCount int) (courseModels.Test, []uint, []uint) {
	t.Helper()

	test := courseModels.Test{
		CourseID:     f.Course.ID,
		ModuleID:     f.Module.ID,
		Title:        "Checkpoint",
		StrategyType: strategyType,
		PassingScore: 70,
		IsPublished:  true,
	}
	require.NoError(t, db.Create(&test).Error)

	correctIDs := make([]uint, questionCount)
	wrongIDs := make([]uint, questionCount)
	for i := 0; i < questionCount; i++ {
		question := courseModels.Question{
			TestID:   test.ID,
			Text:     "Pick the right answer",
			Type:     courseModels.QuestionSingleChoice,
			Position: i,
		}
		require.NoError(t, db.Create(&question).Error)

		correct := courseModels.QuestionOption{QuestionID: question.ID, Text: "right", IsCorrect: true}
		require.NoError(t, db.Create(&correct).Error)
		wrong := courseModels.QuestionOption{QuestionID: question.ID, Text: "wrong", OrderIndex: 1}
		require.NoError(t, db.Create(&wrong).Error)

		correctIDs[i] = correct.ID
		wrongIDs[i] = wrong.ID
	}

	return test, correctIDs, wrongIDs
}

// seedGradedSubmission inserts an already graded submission row
func seedGradedSubmission(t *testing.T, db *gorm.DB, studentID, testID uint, score float64, submittedAt time.Time) courseModels.StudentSubmission {
	t.Helper()

	submission := courseModels.StudentSubmission{
		UserID:      studentID,
		TestID:      testID,
		Status:      courseModels.StatusGraded,
		Score:       &score,
		SubmittedAt: submittedAt,
	}
	require.NoError(t, db.Create(&submission).Error)
	return submission
}

// completeAllLessons records completion facts for every lesson of the fixture
func completeAllLessons(t *testing.T, db *gorm.DB, studentID uint, f fixture) {
	t.Helper()
	for _, lesson := range f.Lessons {
		_, failure, err := completeLesson(db, studentID, lesson.ID)
		require.NoError(t, err)
		require.Nil(t, failure)
	}
}
