package middleware

import (
	"log"
	"strings"

	"matchday-bets/utils"

	"github.com/gofiber/fiber/v2"
)

// GatewayAuth validates the Bearer token the gateway attaches to every
// request. Token issuance and JWT verification for end users happen upstream;
// this service only trusts the gateway.
func GatewayAuth(serviceToken string) fiber.Handler {
	if serviceToken == "" {
		log.Fatal("BETS_SERVICE_TOKEN is not set, refusing to start without gateway auth")
	}

	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return utils.Fail(c, fiber.StatusUnauthorized, "gateway authentication token missing")
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token != serviceToken {
			log.Printf("[GATEWAY] invalid token for %s", c.Path())
			return utils.Fail(c, fiber.StatusUnauthorized, "invalid gateway authentication token")
		}

		return c.Next()
	}
}
