package utils

import (
	"log"
	"time"

	"lms/database"
	"lms/grading"
	courseModels "lms/models/course"

	"github.com/robfig/cron/v3"
)

// InitializeProgressScheduler sets up the nightly progress reconciliation job
func InitializeProgressScheduler() {
	log.Println("[PROGRESS-SCHEDULER] Initializing progress scheduler...")

	c := cron.New()

	// Run daily at 3 AM to heal enrollments whose derived counts drifted
	// (e.g. lessons added or unpublished after completions were recorded)
	c.AddFunc("0 3 * * *", func() {
		log.Println("[PROGRESS-SCHEDULER] Running nightly progress reconciliation...")
		ReconcileEnrollmentProgress()
	})

	c.Start()
	log.Println("[PROGRESS-SCHEDULER] Progress scheduler started - runs daily at 3 AM")
}

// ReconcileEnrollmentProgress recomputes every live enrollment's
// progress from lesson-completion facts. The recomputation counts
// distinct facts instead of incrementing, so running the sweep any
// number of times is safe.
func ReconcileEnrollmentProgress() {
	db := database.Database.Db

	var enrollments []courseModels.Enrollment
	if err := db.Where("is_deleted = ?", false).Find(&enrollments).Error; err != nil {
		log.Printf("[PROGRESS-SCHEDULER] Error fetching enrollments: %v", err)
		return
	}

	reconciled := 0
	for _, enrollment := range enrollments {
		var totalLessons int64
		if err := db.Model(&courseModels.Lesson{}).
			Where("course_id = ? AND is_deleted = ? AND is_published = ?", enrollment.CourseID, false, true).
			Count(&totalLessons).Error; err != nil {
			log.Printf("[PROGRESS-SCHEDULER] Error counting lessons for course %d: %v", enrollment.CourseID, err)
			continue
		}

		var completedLessons int64
		if err := db.Model(&courseModels.LessonCompletion{}).
			Joins("JOIN lessons ON lessons.id = lesson_completions.lesson_id").
			Where("lesson_completions.user_id = ? AND lesson_completions.course_id = ?", enrollment.UserID, enrollment.CourseID).
			Where("lessons.is_deleted = ? AND lessons.is_published = ?", false, true).
			Distinct("lesson_completions.lesson_id").
			Count(&completedLessons).Error; err != nil {
			log.Printf("[PROGRESS-SCHEDULER] Error counting completions for user %d course %d: %v",
				enrollment.UserID, enrollment.CourseID, err)
			continue
		}

		progress := float64(0)
		if totalLessons > 0 {
			progress = grading.Round2(float64(completedLessons) / float64(totalLessons) * 100)
		}

		if enrollment.Progress == progress &&
			enrollment.CompletedLessons == int(completedLessons) &&
			enrollment.TotalLessons == int(totalLessons) {
			continue
		}

		// derive status fresh, matching the request-path recompute: the
		// sweep also downgrades COMPLETED when the percentage dropped
		status := "ENROLLED"
		if totalLessons > 0 && progress >= 100 {
			status = "COMPLETED"
		} else if progress > 0 {
			status = "IN_PROGRESS"
		}

		updates := map[string]interface{}{
			"progress":          progress,
			"completed_lessons": completedLessons,
			"total_lessons":     totalLessons,
			"status":            status,
		}
		if status == "COMPLETED" && enrollment.CompletedAt == nil {
			updates["completed_at"] = time.Now()
		}

		if err := db.Model(&courseModels.Enrollment{}).Where("id = ?", enrollment.ID).Updates(updates).Error; err != nil {
			log.Printf("[PROGRESS-SCHEDULER] Error updating enrollment %d: %v", enrollment.ID, err)
			continue
		}
		reconciled++
	}

	log.Printf("[PROGRESS-SCHEDULER] Reconciled %d of %d enrollments", reconciled, len(enrollments))
}
