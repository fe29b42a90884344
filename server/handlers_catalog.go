package server

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/radarhq/compass"
)

func (s *Server) handleListCategories(c *fiber.Ctx) error {
	categories, err := s.catalog.categories(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(compass.OKList(categories, len(categories), 0, len(categories)))
}

func (s *Server) handleCreateCategory(c *fiber.Ctx) error {
	var input compass.CategoryInput
	if err := c.BodyParser(&input); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "malformed category payload")
	}
	if err := input.Validate(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "category name is required")
	}
	category := compass.Category{
		Name:          input.Name,
		Description:   input.Description,
		RadarQuadrant: -1,
	}
	if input.RadarQuadrant != nil {
		category.RadarQuadrant = *input.RadarQuadrant
	}
	if err := s.catalog.createCategory(c.Context(), &category); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(compass.OK(&category))
}

func (s *Server) handleListGroups(c *fiber.Ctx) error {
	groups, err := s.catalog.groups(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(compass.OKList(groups, len(groups), 0, len(groups)))
}

func (s *Server) handleCreateGroup(c *fiber.Ctx) error {
	var group compass.Group
	if err := c.BodyParser(&group); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "malformed group payload")
	}
	if err := validation.Validate(group.Name, validation.Required, validation.Length(1, 100)); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "group name is required")
	}
	if err := s.catalog.createGroup(c.Context(), &group); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(compass.OK(&group))
}

func (s *Server) handleListTags(c *fiber.Ctx) error {
	tags, err := s.catalog.tags(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(compass.OKList(tags, len(tags), 0, len(tags)))
}

func (s *Server) handleSiteConfig(c *fiber.Ctx) error {
	cfg, err := s.catalog.siteConfig(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(compass.OK(cfg))
}

func (s *Server) handleUpdateSiteConfig(c *fiber.Ctx) error {
	var update compass.SiteConfig
	if err := c.BodyParser(&update); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "malformed site config payload")
	}
	cfg, err := s.catalog.updateSiteConfig(c.Context(), &update, actingUser(c).Username)
	if err != nil {
		return err
	}
	return c.JSON(compass.OK(cfg))
}
