package controller

import (
	"context"

	"ai-qa-be/internal/dto"
	"ai-qa-be/internal/pkg/logger"
	"ai-qa-be/internal/pkg/serverutils"
	"ai-qa-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Complete(ctx *fiber.Ctx) error
	CompleteStream(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService service.IChatService
	logger      logger.ILogger
}

func NewChatController(chatService service.IChatService, log logger.ILogger) IChatController {
	return &chatController{
		chatService: chatService,
		logger:      log,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Post("completions", c.Complete)
	h.Post("completions/stream", c.CompleteStream)
}

func (c *chatController) history(ctx *fiber.Ctx) (*dto.ChatCompletionRequest, error) {
	var req dto.ChatCompletionRequest
	if err := parseBody(ctx, &req); err != nil {
		return nil, err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return nil, err
	}
	return &req, nil
}

func (c *chatController) Complete(ctx *fiber.Ctx) error {
	req, err := c.history(ctx)
	if err != nil {
		return err
	}

	text, err := c.chatService.Complete(ctx.Context(), req.Messages)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Completion generated", &dto.ChatCompletionResponse{Text: text}))
}

func (c *chatController) CompleteStream(ctx *fiber.Ctx) error {
	req, err := c.history(ctx)
	if err != nil {
		return err
	}

	streamCtx, cancel := context.WithCancel(context.Background())
	stream, err := c.chatService.CompleteStream(streamCtx, req.Messages)
	if err != nil {
		cancel()
		return err
	}

	return streamSSE(ctx, cancel, stream, nil, c.logger, "CHAT")
}
