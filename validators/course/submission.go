package courseValidator

import (
	"lms/grading"
	"lms/middleware"

	"github.com/gofiber/fiber/v2"
)

// SubmitTest validates the answer sheet payload for a test submission.
// The answers list is ordered; every entry must name a question id, and
// each question may be answered at most once.
func SubmitTest() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Answers []grading.AnswerInput `json:"answers"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		seen := make(map[uint]bool, len(reqData.Answers))
		for _, answer := range reqData.Answers {
			if answer.QuestionID == 0 {
				errors["answers"] = "Each answer must reference a question!"
				break
			}
			if seen[answer.QuestionID] {
				errors["answers"] = "Only one answer per question is allowed!"
				break
			}
			seen[answer.QuestionID] = true
			for _, optionID := range answer.SelectedOptionIDs {
				if optionID == 0 {
					errors["answers"] = "Selected option ids must be positive!"
					break
				}
			}
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedAnswers", reqData.Answers)
		return c.Next()
	}
}
