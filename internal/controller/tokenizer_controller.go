package controller

import (
	"ai-qa-be/internal/dto"
	"ai-qa-be/internal/pkg/serverutils"
	"ai-qa-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ITokenizerController interface {
	RegisterRoutes(r fiber.Router)
	Count(ctx *fiber.Ctx) error
}

type tokenizerController struct {
	chatService service.IChatService
}

func NewTokenizerController(chatService service.IChatService) ITokenizerController {
	return &tokenizerController{chatService: chatService}
}

func (c *tokenizerController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/tokenizer/v1")
	h.Post("count", c.Count)
}

func (c *tokenizerController) Count(ctx *fiber.Ctx) error {
	var req dto.TokenCountRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res := &dto.TokenCountResponse{Tokens: c.chatService.CountTokens(req.Text)}
	return ctx.JSON(serverutils.SuccessResponse("Tokens counted", res))
}
