package controller

import (
	"fmt"
	"net/url"
	"time"

	"ai-qa-be/internal/pkg/logger"
	"ai-qa-be/internal/pkg/serverutils"
	"ai-qa-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

const oauthStateCookie = "oauth_state"

type IOAuthController interface {
	RegisterRoutes(r fiber.Router)
	Login(ctx *fiber.Ctx) error
	Callback(ctx *fiber.Ctx) error
}

type oauthController struct {
	service   service.IOAuthService
	clientURL string
	secure    bool
	logger    logger.ILogger
}

func NewOAuthController(service service.IOAuthService, clientURL string, secure bool, log logger.ILogger) IOAuthController {
	return &oauthController{
		service:   service,
		clientURL: clientURL,
		secure:    secure,
		logger:    log,
	}
}

func (c *oauthController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/auth/v1")
	h.Get("/:provider", c.Login)
	h.Get("/:provider/callback", c.Callback)
}

func (c *oauthController) Login(ctx *fiber.Ctx) error {
	provider := ctx.Params("provider")

	loginURL, state, err := c.service.GetLoginURL(provider)
	if err != nil {
		return err
	}

	ctx.Cookie(&fiber.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		Expires:  time.Now().Add(10 * time.Minute),
		HTTPOnly: true,
		Secure:   c.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return ctx.Redirect(loginURL, fiber.StatusTemporaryRedirect)
}

func (c *oauthController) Callback(ctx *fiber.Ctx) error {
	provider := ctx.Params("provider")
	code := ctx.Query("code")
	if code == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(fiber.StatusBadRequest, "Missing code"))
	}

	state := ctx.Query("state")
	if state == "" || state != ctx.Cookies(oauthStateCookie) {
		c.logger.Warn("OAUTH", "State mismatch on callback", map[string]interface{}{"provider": provider})
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(fiber.StatusBadRequest, "Invalid state"))
	}
	ctx.ClearCookie(oauthStateCookie)

	res, err := c.service.HandleCallback(ctx.Context(), provider, code)
	if err != nil {
		return err
	}

	c.logger.Info("OAUTH", "User authenticated", map[string]interface{}{
		"provider":   provider,
		"account_id": res.Account.Id.String(),
	})

	redirectURL := fmt.Sprintf("%s/app?token=%s", c.clientURL, url.QueryEscape(res.AccessToken))
	return ctx.Redirect(redirectURL, fiber.StatusTemporaryRedirect)
}
