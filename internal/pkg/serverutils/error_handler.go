package serverutils

import (
	"errors"

	"ai-qa-be/pkg/llm"

	"github.com/gofiber/fiber/v2"
)

// ErrorStatus maps a domain sentinel onto an HTTP status.
type ErrorStatus struct {
	Err    error
	Status int
}

// StatusFor resolves the status and client message for err.
func StatusFor(err error, mappings ...ErrorStatus) (int, string) {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code, fe.Message
	}

	var upstream *llm.UpstreamError
	if errors.As(err, &upstream) {
		return fiber.StatusBadGateway, upstream.Error()
	}

	if errors.Is(err, llm.ErrPromptTooLarge) {
		return fiber.StatusBadRequest, err.Error()
	}

	for _, m := range mappings {
		if errors.Is(err, m.Err) {
			return m.Status, err.Error()
		}
	}

	return fiber.StatusInternalServerError, err.Error()
}

// ErrorHandlerMiddleware turns any error returned down the chain into a
// BaseResponse.
func ErrorHandlerMiddleware(mappings ...ErrorStatus) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		code, message := StatusFor(err, mappings...)
		return ctx.Status(code).JSON(ErrorResponse(code, message))
	}
}
