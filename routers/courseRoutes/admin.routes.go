package courseRoutes

import (
	controllers "lms/controllers/course"
	"lms/middleware"
	"lms/models"
	validators "lms/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupAdminCourseRoutes sets up course authoring and grading routes
func SetupAdminCourseRoutes(app *fiber.App) {
	adminGroup := app.Group("/admin/course")
	adminGroup.Use(middleware.JWTMiddleware, middleware.CheckPermissionMiddleware(models.PermissionManageCourses))

	adminGroup.Post("/", validators.CreateCourse(), controllers.CreateCourse)
	adminGroup.Post("/:course_id/publish", validators.CourseID(), controllers.PublishCourse)
	adminGroup.Post("/module", validators.CreateModule(), controllers.CreateModule)
	adminGroup.Post("/lesson", validators.CreateLesson(), controllers.CreateLesson)
	adminGroup.Post("/test", validators.CreateTest(), controllers.CreateTest)
	adminGroup.Post("/question", validators.CreateQuestion(), controllers.CreateQuestion)

	graderGroup := app.Group("/grader")
	graderGroup.Use(middleware.JWTMiddleware, middleware.CheckPermissionMiddleware(models.PermissionGradeSubmissions))

	graderGroup.Get("/submissions/pending", controllers.GetPendingSubmissions)
	graderGroup.Post("/submission/:submission_id/grade", validators.SubmissionID(), validators.AssignGrade(), controllers.AssignGrade)
}
