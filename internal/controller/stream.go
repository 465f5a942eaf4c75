package controller

import (
	"bufio"
	"context"

	"ai-qa-be/internal/pkg/logger"
	"ai-qa-be/pkg/llm"
	"ai-qa-be/pkg/sse"

	"github.com/gofiber/fiber/v2"
)

// streamSSE commits the response as text/event-stream and relays stream into
// it. cancel is called once the relay finishes, which closes the upstream
// when the client goes away mid-answer.
func streamSSE(ctx *fiber.Ctx, cancel context.CancelFunc, stream llm.Stream, trailer any, log logger.ILogger, module string) error {
	ctx.Set(fiber.HeaderContentType, "text/event-stream")
	ctx.Set(fiber.HeaderCacheControl, "no-cache")
	ctx.Set(fiber.HeaderConnection, "keep-alive")
	ctx.Set("X-Accel-Buffering", "no")

	ctx.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer cancel()

		if err := sse.Relay(stream, sse.NewWriter(w), trailer); err != nil {
			log.Warn(module, "Stream ended without completion", map[string]interface{}{
				"error": err.Error(),
			})
		}
	})
	return nil
}

func parseBody(ctx *fiber.Ctx, req interface{}) error {
	if err := ctx.BodyParser(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	return nil
}

