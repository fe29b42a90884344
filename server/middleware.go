package server

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/radarhq/compass"
)

const localUser = "compass.user"

// requireAuth validates the bearer token and loads the acting user into
// the request locals.
func (s *Server) requireAuth(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return compass.ErrUnauthorized
	}

	claims, err := s.tokens.Validate(token)
	if err != nil {
		return err
	}

	user, err := s.users.byID(c.Context(), claims.Subject)
	if err != nil {
		// A token for a deleted user is as good as no token.
		return compass.ErrUnauthorized
	}

	c.Locals(localUser, user)
	return c.Next()
}

// requireSuperuser must run after requireAuth.
func (s *Server) requireSuperuser(c *fiber.Ctx) error {
	user := actingUser(c)
	if user == nil || !user.IsSuperuser {
		return compass.ErrForbidden
	}
	return c.Next()
}

func actingUser(c *fiber.Ctx) *compass.User {
	user, _ := c.Locals(localUser).(*compass.User)
	return user
}
