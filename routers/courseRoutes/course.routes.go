package courseRoutes

import (
	controllers "lms/controllers/course"
	"lms/middleware"
	validators "lms/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupCourseRoutes sets up all student-facing course routes
func SetupCourseRoutes(app *fiber.App) {
	courseGroup := app.Group("/course")

	// Course listing and details
	courseGroup.Get("/list", middleware.JWTMiddleware, controllers.GetAllCourses)
	courseGroup.Get("/:course_id", middleware.JWTMiddleware, validators.CourseID(), controllers.GetCourseDetails)

	// Enrollment
	courseGroup.Post("/:course_id/enroll", middleware.JWTMiddleware, validators.CourseID(), controllers.EnrollInCourse)

	// Lesson completion and progress tracking
	courseGroup.Post("/lesson/:lesson_id/complete", middleware.JWTMiddleware, validators.LessonID(), controllers.MarkLessonComplete)
	courseGroup.Get("/:course_id/progress", middleware.JWTMiddleware, validators.CourseID(), controllers.GetUserProgress)

	// Test submission
	courseGroup.Post("/test/:test_id/submit", middleware.JWTMiddleware, validators.TestID(), validators.SubmitTest(), controllers.SubmitTest)
	courseGroup.Get("/submission/:submission_id", middleware.JWTMiddleware, validators.SubmissionID(), controllers.GetSubmission)

	// Certificates
	courseGroup.Post("/submission/:submission_id/certificate", middleware.JWTMiddleware, validators.SubmissionID(), controllers.GenerateCertificate)
	courseGroup.Post("/:course_id/certificate", middleware.JWTMiddleware, validators.CourseID(), controllers.GenerateCourseCertificate)

	// User enrollments and certificates
	userGroup := app.Group("/user")
	userGroup.Get("/enrollments", middleware.JWTMiddleware, controllers.GetUserEnrollmentsList)
	userGroup.Get("/certificates", middleware.JWTMiddleware, controllers.GetUserCertificates)
}
