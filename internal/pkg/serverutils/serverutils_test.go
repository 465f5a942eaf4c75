package serverutils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"ai-qa-be/pkg/llm"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errMissing = errors.New("thing not found")

func TestErrorHandlerMiddleware(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"fiber error", fiber.NewError(fiber.StatusBadRequest, "bad"), 400},
		{"upstream", fmt.Errorf("answer: %w", &llm.UpstreamError{Provider: "openai", StatusCode: 429}), 502},
		{"prompt too large", llm.ErrPromptTooLarge, 400},
		{"mapped sentinel", fmt.Errorf("load: %w", errMissing), 404},
		{"anything else", errors.New("boom"), 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Use(ErrorHandlerMiddleware(ErrorStatus{Err: errMissing, Status: fiber.StatusNotFound}))
			app.Get("/", func(c *fiber.Ctx) error { return tt.err })

			resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantCode, resp.StatusCode)

			var body BaseResponse[any]
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.False(t, body.Success)
			assert.Equal(t, tt.wantCode, body.Code)
		})
	}
}

type sample struct {
	Question string `json:"question" validate:"required"`
	Name     string `json:"name" validate:"max=3"`
}

func TestValidateRequest(t *testing.T) {
	assert.NoError(t, ValidateRequest(sample{Question: "q", Name: "abc"}))

	err := ValidateRequest(sample{Name: "abcd"})
	var fe *fiber.Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, fiber.StatusBadRequest, fe.Code)
	assert.Contains(t, fe.Message, "Question must satisfy required")
	assert.Contains(t, fe.Message, "Name must satisfy max=3")
}

func sign(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestJwtMiddleware(t *testing.T) {
	valid := jwt.MapClaims{"user_id": "u-1", "iss": "ai-qa-be", "exp": time.Now().Add(time.Hour).Unix()}
	expired := jwt.MapClaims{"user_id": "u-1", "iss": "ai-qa-be", "exp": time.Now().Add(-time.Hour).Unix()}
	foreign := jwt.MapClaims{"user_id": "u-1", "iss": "someone-else", "exp": time.Now().Add(time.Hour).Unix()}

	tests := []struct {
		name     string
		header   string
		wantCode int
	}{
		{"valid", "Bearer " + sign(t, valid, "k"), 200},
		{"missing", "", 401},
		{"wrong secret", "Bearer " + sign(t, valid, "other"), 401},
		{"expired", "Bearer " + sign(t, expired, "k"), 401},
		{"wrong issuer", "Bearer " + sign(t, foreign, "k"), 401},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", NewJwtMiddleware("k", "ai-qa-be"), func(c *fiber.Ctx) error {
				return c.SendString(c.Locals("user_id").(string))
			})

			req := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCode, resp.StatusCode)

			if tt.wantCode == 200 {
				body, _ := io.ReadAll(resp.Body)
				assert.Equal(t, "u-1", string(body))
			}
		})
	}
}
