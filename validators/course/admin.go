package courseValidator

import (
	"strings"

	"lms/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

type CreateCourseRequest struct {
	Title        string `json:"title" validate:"required,min=3"`
	Description  string `json:"description" validate:"required,min=5"`
	Author       string `json:"author"`
	ThumbnailURL string `json:"thumbnail_url"`
}

type CreateModuleRequest struct {
	CourseID    uint   `json:"course_id" validate:"required"`
	Title       string `json:"title" validate:"required,min=3"`
	Description string `json:"description"`
	OrderIndex  int    `json:"order_index" validate:"gte=0"`
}

type CreateLessonRequest struct {
	ModuleID    uint   `json:"module_id" validate:"required"`
	Title       string `json:"title" validate:"required,min=3"`
	ContentType string `json:"content_type" validate:"omitempty,oneof=TEXT VIDEO IMAGE"`
	TextContent string `json:"text_content"`
	VideoURL    string `json:"video_url"`
	OrderIndex  int    `json:"order_index" validate:"gte=0"`
	IsPublished bool   `json:"is_published"`
}

type CreateTestRequest struct {
	ModuleID     uint     `json:"module_id" validate:"required"`
	Title        string   `json:"title" validate:"required,min=3"`
	StrategyType string   `json:"strategy_type" validate:"required,oneof=AUTO MANUAL"`
	PassingScore *float64 `json:"passing_score" validate:"omitempty,gte=0,lte=100"`
	IsPublished  bool     `json:"is_published"`
}

type CreateQuestionRequest struct {
	TestID   uint   `json:"test_id" validate:"required"`
	Text     string `json:"text" validate:"required"`
	Type     string `json:"type" validate:"required,oneof=TEXT SINGLE_CHOICE MULTIPLE_CHOICE TRUE_FALSE"`
	Position int    `json:"position" validate:"gte=0"`
	Options  []struct {
		Text      string `json:"text" validate:"required"`
		IsCorrect bool   `json:"is_correct"`
	} `json:"options" validate:"dive"`
}

// validateBody parses and validates a request payload, storing it in
// Locals under key on success
func validateBody(reqData interface{}, key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if err := validate.Struct(reqData); err != nil {
			errors := make(map[string]string)
			if validationErrors, ok := err.(validator.ValidationErrors); ok {
				for _, fieldError := range validationErrors {
					errors[strings.ToLower(fieldError.Field())] = "Invalid value for " + fieldError.Field() + "!"
				}
			}
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals(key, reqData)
		return c.Next()
	}
}

func CreateCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return validateBody(new(CreateCourseRequest), "validatedCourse")(c)
	}
}

func CreateModule() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return validateBody(new(CreateModuleRequest), "validatedModule")(c)
	}
}

func CreateLesson() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return validateBody(new(CreateLessonRequest), "validatedLesson")(c)
	}
}

func CreateTest() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return validateBody(new(CreateTestRequest), "validatedTest")(c)
	}
}

func CreateQuestion() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return validateBody(new(CreateQuestionRequest), "validatedQuestion")(c)
	}
}
