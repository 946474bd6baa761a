package middleware

import (
	"errors"
	"os"
	"strings"

	"cinema_storefront/fulfillment"
	"cinema_storefront/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

func Protected() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies("access_token")

		if token == "" {
			// check header Authorization: Bearer xxx
			auth := c.Get("Authorization")
			if strings.HasPrefix(auth, "Bearer ") {
				token = strings.TrimPrefix(auth, "Bearer ")
			}
		}

		if token == "" {
			return utils.ErrorResponse(c, 401, "Missing token", errors.New("no token"))
		}

		jwtToken, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
			return []byte(os.Getenv("JWT_SECRET")), nil
		})
		if err != nil || !jwtToken.Valid {
			return utils.ErrorResponse(c, 401, "Invalid token", err)
		}

		c.Locals("user", jwtToken)
		c.Locals("rawToken", token)
		return c.Next()
	}
}

// SessionFromCtx builds the fulfillment session for this request. The
// unauthenticated callback marks the context so handlers answer 401 with a
// re-login hint instead of a generic upstream error — no global interceptor,
// no hidden redirect.
func SessionFromCtx(c *fiber.Ctx) *fulfillment.Session {
	token, _ := c.Locals("rawToken").(string)
	return &fulfillment.Session{
		Token: token,
		OnUnauthenticated: func() {
			c.Locals("sessionExpired", true)
		},
	}
}

// SessionExpired reports whether the fulfillment API rejected this request's
// token mid-flight.
func SessionExpired(c *fiber.Ctx) bool {
	expired, _ := c.Locals("sessionExpired").(bool)
	return expired
}
