package server

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/radarhq/compass"
)

// handleLogin authenticates form credentials and returns the token plus
// the user document. Unlike every other endpoint the response is not
// enveloped; clients read access_token and user off the top level.
func (s *Server) handleLogin(c *fiber.Ctx) error {
	username := c.FormValue("username")
	password := c.FormValue("password")
	if username == "" || password == "" {
		return compass.ErrUnauthorized
	}

	user, err := s.users.byUsername(c.Context(), username)
	if err != nil {
		// Do not leak whether the username exists.
		return compass.ErrUnauthorized
	}
	if err := comparePassword(password, user.PasswordHash); err != nil {
		return compass.ErrUnauthorized
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return err
	}

	now := time.Now()
	if err := s.users.touchLogin(c.Context(), user.ID, now); err != nil {
		s.log.Warn("server: could not record login time for %s: %v", user.Username, err)
	}
	user.LoggedInAt = &now

	return c.JSON(compass.LoginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        user,
	})
}

func (s *Server) handleMe(c *fiber.Ctx) error {
	return c.JSON(compass.OK(actingUser(c)))
}
