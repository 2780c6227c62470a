package middleware

import (
	"github.com/biosecret/go-todo/auth"
	"github.com/biosecret/go-todo/models"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const (
	// TokenHeader carries the session token.
	TokenHeader = "token-key"
	// UserNameHeader is overwritten with the verified userName for downstream handlers.
	UserNameHeader = "username"

	userLocal = "user"
)

// AuthGate verifies the token in the token-key header before calling the next handler
func AuthGate(codec *auth.TokenCodec, log logrus.FieldLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Get(TokenHeader)
		if token == "" {
			return unauthorized(c)
		}

		claims, err := codec.Verify(token)
		if err != nil {
			log.WithError(err).WithField("path", c.Path()).Debug("rejected token")
			return unauthorized(c)
		}

		c.Locals(userLocal, claims)
		c.Request().Header.Set(UserNameHeader, claims.Data.UserName)

		return c.Next()
	}
}

// Claims returns the verified claims attached by AuthGate, or nil.
func Claims(c *fiber.Ctx) *auth.Claims {
	claims, _ := c.Locals(userLocal).(*auth.Claims)
	return claims
}

// UserName returns the verified userName attached by AuthGate, or "".
func UserName(c *fiber.Ctx) string {
	if claims := Claims(c); claims != nil {
		return claims.Data.UserName
	}
	return ""
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(models.Response{
		Status:  "fail",
		Message: "Unauthorized",
	})
}
