package controller

import (
	"ai-qa-be/internal/dto"
	"ai-qa-be/internal/pkg/serverutils"
	"ai-qa-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ITextController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Rename(ctx *fiber.Ctx) error
	UpdateContent(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type textController struct {
	textService service.ITextService
	auth        fiber.Handler
}

func NewTextController(textService service.ITextService, auth fiber.Handler) ITextController {
	return &textController{
		textService: textService,
		auth:        auth,
	}
}

func (c *textController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/text/v1")
	h.Use(c.auth)
	h.Post("", c.Create)
	h.Get(":id", c.Show)
	h.Put(":id/name", c.Rename)
	h.Put(":id/content", c.UpdateContent)
	h.Delete(":id", c.Delete)
}

func (c *textController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateTextRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.textService.Create(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create text", res))
}

func (c *textController) Show(ctx *fiber.Ctx) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}

	res, err := c.textService.Show(ctx.Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show text", res))
}

func (c *textController) Rename(ctx *fiber.Ctx) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}

	var req dto.RenameTextRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	req.Id = id
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.textService.Rename(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success rename text", res))
}

func (c *textController) UpdateContent(ctx *fiber.Ctx) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}

	var req dto.UpdateTextContentRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	req.Id = id

	res, err := c.textService.UpdateContent(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update text", res))
}

func (c *textController) Delete(ctx *fiber.Ctx) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}

	if err := c.textService.Delete(ctx.Context(), id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete text", nil))
}
