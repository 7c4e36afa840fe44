package controllers

import (
	"testing"

	"github.com/stretchr/testify/require"

	courseModels "lms/models/course"
)

func TestCompleteLessonAdvancesProgress(t *testing.T) {
	db := newTestDB(t)
	f := seedCourse(t, db, 1, 2)

	snapshot, failure, err := completeLesson(db, 1, f.Lessons[0].ID)
	require.NoError(t, err)
	require.Nil(t, failure)
	require.Equal(t, 1, snapshot.CompletedLessons)
	require.Equal(t, 2, snapshot.TotalLessons)
	require.Equal(t, 50.0, snapshot.Progress)

	var enrollment courseModels.Enrollment
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", 1, f.Course.ID).First(&enrollment).Error)
	require.Equal(t, "IN_PROGRESS", enrollment.Status)
	require.Nil(t, enrollment.CompletedAt)

	snapshot, failure, err = completeLesson(db, 1, f.Lessons[1].ID)
	require.NoError(t, err)
	require.Nil(t, failure)
	require.Equal(t, 100.0, snapshot.Progress)

	require.NoError(t, db.Where("user_id = ? AND course_id = ?", 1, f.Course.ID).First(&enrollment).Error)
	require.Equal(t, "COMPLETED", enrollment.Status)
	require.NotNil(t, enrollment.CompletedAt)
}

func TestCompleteLessonIdempotent(t *testing.T) {
	db := newTestDB(t)
	f := seedCourse(t, db, 1, 2)

	first, failure, err := completeLesson(db, 1, f.Lessons[0].ID)
	require.NoError(t, err)
	require.Nil(t, failure)

	second, failure, err := completeLesson(db, 1, f.Lessons[0].ID)
	require.NoError(t, err)
	require.Nil(t, failure)
	require.Equal(t, first, second)

	var completions int64
	require.NoError(t, db.Model(&courseModels.LessonCompletion{}).
		Where("user_id = ? AND lesson_id = ?", 1, f.Lessons[0].ID).
		Count(&completions).Error)
	require.EqualValues(t, 1, completions)

	var enrollment courseModels.Enrollment
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", 1, f.Course.ID).First(&enrollment).Error)
	require.Equal(t, 1, enrollment.CompletedLessons)
	require.Equal(t, 50.0, enrollment.Progress)
}

func TestCompleteLessonNotEnrolled(t *testing.T) {
	db := newTestDB(t)
	f := seedCourse(t, db, 1, 1)

	_, failure, err := completeLesson(db, 42, f.Lessons[0].ID)
	require.NoError(t, err)
	require.NotNil(t, failure)
	require.Equal(t, FailureAuthorization, failure.Kind)
}

func TestCompleteLessonUnknownLesson(t *testing.T) {
	db := newTestDB(t)
	seedCourse(t, db, 1, 1)

	_, failure, err := completeLesson(db, 1, 9999)
	require.NoError(t, err)
	require.NotNil(t, failure)
	require.Equal(t, FailureNotFound, failure.Kind)
}

func TestRecomputeProgressRoundsTwoDecimals(t *testing.T) {
	db := newTestDB(t)
	f := seedCourse(t, db, 1, 3)

	snapshot, failure, err := completeLesson(db, 1, f.Lessons[0].ID)
	require.NoError(t, err)
	require.Nil(t, failure)
	require.Equal(t, 33.33, snapshot.Progress)
}

func TestRecomputeProgressZeroLessons(t *testing.T) {
	db := newTestDB(t)
	f := seedCourse(t, db, 1, 0)

	snapshot, err := recomputeEnrollmentProgress(db, 1, f.Course.ID)
	require.NoError(t, err)
	require.Equal(t, 0, snapshot.TotalLessons)
	require.Equal(t, 0.0, snapshot.Progress)
}

func TestRecomputeProgressDowngradesCompletedStatus(t *testing.T) {
	db := newTestDB(t)
	f := seedCourse(t, db, 1, 1)
	completeAllLessons(t, db, 1, f)

	var enrollment courseModels.Enrollment
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", 1, f.Course.ID).First(&enrollment).Error)
	require.Equal(t, "COMPLETED", enrollment.Status)
	firstCompletedAt := enrollment.CompletedAt
	require.NotNil(t, firstCompletedAt)

	// a lesson added after completion lowers the percentage and the status
	lesson := courseModels.Lesson{
		CourseID:    f.Course.ID,
		ModuleID:    f.Module.ID,
		Title:       "Lesson",
		OrderIndex:  1,
		IsPublished: true,
	}
	require.NoError(t, db.Create(&lesson).Error)

	snapshot, err := recomputeEnrollmentProgress(db, 1, f.Course.ID)
	require.NoError(t, err)
	require.Equal(t, 50.0, snapshot.Progress)

	require.NoError(t, db.Where("user_id = ? AND course_id = ?", 1, f.Course.ID).First(&enrollment).Error)
	require.Equal(t, "IN_PROGRESS", enrollment.Status)
	require.NotNil(t, enrollment.CompletedAt)
	require.True(t, enrollment.CompletedAt.Equal(*firstCompletedAt))
}

func TestRecomputeProgressIgnoresUnpublishedLessons(t *testing.T) {
	db := newTestDB(t)
	f := seedCourse(t, db, 1, 2)

	// unpublish one lesson after its completion was recorded
	_, failure, err := completeLesson(db, 1, f.Lessons[0].ID)
	require.NoError(t, err)
	require.Nil(t, failure)
	require.NoError(t, db.Model(&courseModels.Lesson{}).
		Where("id = ?", f.Lessons[0].ID).
		Update("is_published", false).Error)

	snapshot, err := recomputeEnrollmentProgress(db, 1, f.Course.ID)
	require.NoError(t, err)
	require.Equal(t, 0, snapshot.CompletedLessons)
	require.Equal(t, 1, snapshot.TotalLessons)
	require.Equal(t, 0.0, snapshot.Progress)
}
