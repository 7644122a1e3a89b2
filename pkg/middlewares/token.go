package middlewares

import (
	"strings"

	t_token "realtime_chat_service/pkg/token"

	"github.com/gofiber/fiber/v2"
)

const (
	// QueryToken token in query name, used by websocket handshakes that
	// cannot set headers.
	QueryToken = "token"

	// CookieToken token in cookie name
	CookieToken = "auth_token"

	// TokenUserID get user id from token, set c.locals name
	TokenUserID = "UserID"
	// TokenUsername get username from token, set c.locals name
	TokenUsername = "Username"
	// TokenRaw the validated bearer token itself, set c.locals name
	TokenRaw = "RawToken"
)

// extract pulls the bearer credential from header, query or cookie.
func extract(c *fiber.Ctx) string {
	if h := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(h, "Bearer ") {
		return h[len("Bearer "):]
	}
	if q := c.Query(QueryToken); q != "" {
		return q
	}
	return c.Cookies(CookieToken)
}

// JWTMiddleware validates the bearer credential and stores the verified
// identity in locals. Requests without a valid token are rejected.
func JWTMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenStr := extract(c)
		if tokenStr == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing token",
			})
		}

		claims, err := t_token.ParseJWT(tokenStr)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid token",
			})
		}

		c.Locals(TokenUserID, claims.UserID)
		c.Locals(TokenUsername, claims.Username)
		c.Locals(TokenRaw, tokenStr)

		return c.Next()
	}
}

// WebsocketAuth parses the credential without rejecting the request, so the
// upgrade can complete and the connection be closed with a policy-violation
// status instead of a plain HTTP error. Valid claims land in locals; invalid
// or missing ones leave locals unset.
func WebsocketAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if tokenStr := extract(c); tokenStr != "" {
			if claims, err := t_token.ParseJWT(tokenStr); err == nil {
				c.Locals(TokenUserID, claims.UserID)
				c.Locals(TokenUsername, claims.Username)
				c.Locals(TokenRaw, tokenStr)
			}
		}
		return c.Next()
	}
}
