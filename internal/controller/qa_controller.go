package controller

import (
	"context"

	"ai-qa-be/internal/dto"
	"ai-qa-be/internal/pkg/logger"
	"ai-qa-be/internal/pkg/serverutils"
	"ai-qa-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IQAController interface {
	RegisterRoutes(r fiber.Router)
	SimilarWords(ctx *fiber.Ctx) error
	Top5(ctx *fiber.Ctx) error
	Answer(ctx *fiber.Ctx) error
	AnswerStream(ctx *fiber.Ctx) error
}

type qaController struct {
	qaService service.IQAService
	logger    logger.ILogger
}

func NewQAController(qaService service.IQAService, log logger.ILogger) IQAController {
	return &qaController{
		qaService: qaService,
		logger:    log,
	}
}

func (c *qaController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/qa/v1")
	h.Post("similar-words", c.SimilarWords)
	h.Post("top5", c.Top5)
	h.Post("answer", c.Answer)
	h.Post("answer/stream", c.AnswerStream)
}

func (c *qaController) question(ctx *fiber.Ctx) (string, error) {
	var req dto.QARequest
	if err := parseBody(ctx, &req); err != nil {
		return "", err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return "", err
	}
	return req.Question, nil
}

func (c *qaController) SimilarWords(ctx *fiber.Ctx) error {
	question, err := c.question(ctx)
	if err != nil {
		return err
	}

	res, err := c.qaService.SimilarWords(ctx.Context(), question)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Context packed", res))
}

func (c *qaController) Top5(ctx *fiber.Ctx) error {
	question, err := c.question(ctx)
	if err != nil {
		return err
	}

	res, err := c.qaService.Top5(ctx.Context(), question)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Context packed", res))
}

func (c *qaController) Answer(ctx *fiber.Ctx) error {
	question, err := c.question(ctx)
	if err != nil {
		return err
	}

	res, err := c.qaService.Answer(ctx.Context(), question)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Answer generated", res))
}

func (c *qaController) AnswerStream(ctx *fiber.Ctx) error {
	question, err := c.question(ctx)
	if err != nil {
		return err
	}

	packed, err := c.qaService.Top5(ctx.Context(), question)
	if err != nil {
		return err
	}

	// The body is written after the handler returns, so the stream gets its
	// own context instead of the request's.
	streamCtx, cancel := context.WithCancel(context.Background())
	stream, citations, err := c.qaService.OpenAnswerStream(streamCtx, packed)
	if err != nil {
		cancel()
		return err
	}

	return streamSSE(ctx, cancel, stream, citations, c.logger, "QA")
}
