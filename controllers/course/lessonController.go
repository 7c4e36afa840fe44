package controllers

import (
	"errors"
	"log"
	"time"

	"lms/database"
	"lms/grading"
	"lms/middleware"
	courseModels "lms/models/course"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type progressSnapshot struct {
	CompletedLessons int     `json:"completed_lessons_count"`
	TotalLessons     int     `json:"total_lessons_count"`
	Progress         float64 `json:"progress"`
}

// MarkLessonComplete records a lesson-completion fact for the student
// and recomputes the enrollment progress from scratch
func MarkLessonComplete(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	lessonID := c.Locals("lessonID").(int)

	var snapshot *progressSnapshot
	var failure *Failure
	err := database.Database.Db.Transaction(func(tx *gorm.DB) error {
		var err error
		snapshot, failure, err = completeLesson(tx, userID, uint(lessonID))
		return err
	})
	if err != nil {
		log.Printf("[PROGRESS] lesson completion failed for user %d lesson %d: %v", userID, lessonID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to complete lesson!", nil)
	}
	if failure != nil {
		return failureResponse(c, failure)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson completed!", snapshot)
}

// completeLesson inserts the (student, lesson) completion fact if absent
// and recomputes progress. The unique index plus ON CONFLICT DO NOTHING
// makes the insert idempotent under concurrent duplicate requests, and
// the recompute counts distinct facts rather than incrementing, so
// replaying the same event can never corrupt the percentage.
func completeLesson(tx *gorm.DB, userID, lessonID uint) (*progressSnapshot, *Failure, error) {
	var lesson courseModels.Lesson
	if err := tx.Where("id = ? AND is_deleted = ? AND is_published = ?", lessonID, false, true).First(&lesson).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fail(FailureNotFound, "Lesson not found!"), nil
		}
		return nil, nil, err
	}

	var enrollment courseModels.Enrollment
	if err := tx.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, lesson.CourseID, false).First(&enrollment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fail(FailureAuthorization, "User not enrolled in this course!"), nil
		}
		return nil, nil, err
	}

	completion := courseModels.LessonCompletion{
		UserID:      userID,
		LessonID:    lessonID,
		CourseID:    lesson.CourseID,
		CompletedAt: time.Now(),
	}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&completion).Error; err != nil {
		return nil, nil, err
	}

	snapshot, err := recomputeEnrollmentProgress(tx, userID, lesson.CourseID)
	if err != nil {
		return nil, nil, err
	}
	return snapshot, nil, nil
}

// recomputeEnrollmentProgress recounts completion facts for the course
// and stores the derived percentage on the enrollment. Always a full
// recount: progress = round(completed/total*100, 2), or 0 for a course
// without published lessons.
func recomputeEnrollmentProgress(tx *gorm.DB, userID, courseID uint) (*progressSnapshot, error) {
	var totalLessons int64
	if err := tx.Model(&courseModels.Lesson{}).
		Where("course_id = ? AND is_deleted = ? AND is_published = ?", courseID, false, true).
		Count(&totalLessons).Error; err != nil {
		return nil, err
	}

	var completedLessons int64
	if err := tx.Model(&courseModels.LessonCompletion{}).
		Joins("JOIN lessons ON lessons.id = lesson_completions.lesson_id").
		Where("lesson_completions.user_id = ? AND lesson_completions.course_id = ?", userID, courseID).
		Where("lessons.is_deleted = ? AND lessons.is_published = ?", false, true).
		Distinct("lesson_completions.lesson_id").
		Count(&completedLessons).Error; err != nil {
		return nil, err
	}

	progress := float64(0)
	if totalLessons > 0 {
		progress = grading.Round2(float64(completedLessons) / float64(totalLessons) * 100)
	}

	var enrollment courseModels.Enrollment
	if err := tx.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).First(&enrollment).Error; err != nil {
		return nil, err
	}

	enrollment.CompletedLessons = int(completedLessons)
	enrollment.TotalLessons = int(totalLessons)
	enrollment.Progress = progress

	// status is derived, never ratcheted: a COMPLETED enrollment drops
	// back to IN_PROGRESS when new or unpublished lessons lower the
	// percentage. CompletedAt keeps the first completion time.
	switch {
	case totalLessons > 0 && progress >= 100:
		enrollment.Status = "COMPLETED"
		if enrollment.CompletedAt == nil {
			now := time.Now()
			enrollment.CompletedAt = &now
		}
	case progress > 0:
		enrollment.Status = "IN_PROGRESS"
	default:
		enrollment.Status = "ENROLLED"
	}

	if err := tx.Save(&enrollment).Error; err != nil {
		return nil, err
	}

	return &progressSnapshot{
		CompletedLessons: int(completedLessons),
		TotalLessons:     int(totalLessons),
		Progress:         progress,
	}, nil
}
