package server

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/radarhq/compass"
)

// handleSolutionHistory pages the change log of one solution, newest
// first. The fields query parameter is a comma-joined list restricting
// the result to records touching any of the named fields.
func (s *Server) handleSolutionHistory(c *fiber.Ctx) error {
	skip := c.QueryInt("skip", 0)
	limit := c.QueryInt("limit", defaultPageSize)

	var fields []string
	if raw := c.Query("fields"); raw != "" {
		for _, name := range strings.Split(raw, ",") {
			if name = strings.TrimSpace(name); name != "" {
				fields = append(fields, name)
			}
		}
	}

	records, total, err := s.history.forObject(c.Context(), objectTypeSolution, c.Params("slug"), fields, skip, limit)
	if err != nil {
		return err
	}
	return c.JSON(compass.OKList(records, total, skip, limit))
}

// handleEditJustification amends the justification stored on one field of
// a history record. Superuser-only; the diff values themselves are
// immutable.
func (s *Server) handleEditJustification(c *fiber.Ctx) error {
	var edit compass.JustificationEdit
	if err := c.BodyParser(&edit); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "malformed justification payload")
	}
	if err := edit.Validate(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, err.Error())
	}

	rec, err := s.history.updateJustification(
		c.Context(),
		c.Params("id"),
		edit.FieldName,
		strings.TrimSpace(edit.Justification),
		actingUser(c).Username,
	)
	if err != nil {
		return err
	}
	return c.JSON(compass.OK(rec))
}
