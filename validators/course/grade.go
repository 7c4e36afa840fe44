package courseValidator

import (
	"lms/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type assignGradeRequest struct {
	Score *float64 `json:"score" validate:"required,gte=0,lte=100"`
}

// AssignGrade validates the score payload for manual grade assignment
func AssignGrade() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(assignGradeRequest)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if err := validate.Struct(reqData); err != nil {
			errors := make(map[string]string)
			if validationErrors, ok := err.(validator.ValidationErrors); ok {
				for range validationErrors {
					errors["score"] = "Score is required and must be between 0 and 100!"
				}
			}
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedScore", *reqData.Score)
		return c.Next()
	}
}
