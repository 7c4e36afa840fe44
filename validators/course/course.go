package courseValidator

import (
	"strconv"
	"strings"

	"lms/middleware"

	"github.com/gofiber/fiber/v2"
)

// idParam validates a positive integer route parameter and stores it in
// Locals under the given key
func idParam(param, key, label string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := strings.TrimSpace(c.Params(param))
		if raw == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, label+" is required!", nil)
		}

		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid "+label+"!", nil)
		}

		c.Locals(key, id)
		return c.Next()
	}
}

func CourseID() fiber.Handler {
	return idParam("course_id", "courseID", "Course ID")
}

func TestID() fiber.Handler {
	return idParam("test_id", "testID", "Test ID")
}

func LessonID() fiber.Handler {
	return idParam("lesson_id", "lessonID", "Lesson ID")
}

func SubmissionID() fiber.Handler {
	return idParam("submission_id", "submissionID", "Submission ID")
}
