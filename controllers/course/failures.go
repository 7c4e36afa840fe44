package controllers

import (
	"lms/middleware"

	"github.com/gofiber/fiber/v2"
)

// FailureKind classifies a business-rule violation
type FailureKind string

const (
	FailureValidation    FailureKind = "VALIDATION"
	FailureNotFound      FailureKind = "NOT_FOUND"
	FailureAuthorization FailureKind = "AUTHORIZATION"
	FailureConflict      FailureKind = "CONFLICT"
	FailurePrecondition  FailureKind = "PRECONDITION"
)

// Failure is a structured business-rule outcome returned by the engine
// operations instead of an error. Handlers map every kind uniformly to a
// response code; only unexpected storage errors travel as Go errors.
type Failure struct {
	Kind    FailureKind
	Message string
	Context map[string]interface{}
}

func fail(kind FailureKind, message string) *Failure {
	return &Failure{Kind: kind, Message: message}
}

func failWith(kind FailureKind, message string, context map[string]interface{}) *Failure {
	return &Failure{Kind: kind, Message: message, Context: context}
}

func (f *Failure) httpStatus() int {
	switch f.Kind {
	case FailureValidation:
		return fiber.StatusBadRequest
	case FailureNotFound:
		return fiber.StatusNotFound
	case FailureAuthorization:
		return fiber.StatusForbidden
	case FailureConflict:
		return fiber.StatusConflict
	case FailurePrecondition:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// failureResponse renders a Failure through the standard JSON envelope
func failureResponse(c *fiber.Ctx, f *Failure) error {
	data := fiber.Map{"kind": f.Kind}
	for k, v := range f.Context {
		data[k] = v
	}
	return middleware.JsonResponse(c, f.httpStatus(), false, f.Message, data)
}
