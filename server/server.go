// Package server is the catalog API: login, solutions with
// justification-gated status changes, per-object history, catalog
// metadata, and the tech radar projection.
package server

import (
	"context"

	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/radarhq/compass"
	"github.com/uptrace/bun"
)

// Server wires the HTTP surface to the repositories.
type Server struct {
	cfg    Config
	app    *fiber.App
	db     *bun.DB
	tokens *TokenService
	log    compass.Logger

	users     *userRepo
	solutions *solutionRepo
	history   *historyRepo
	catalog   *catalogRepo
}

type Option func(*Server)

func WithLogger(l compass.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithDB injects an already opened database, bypassing cfg.DSN.
func WithDB(db *bun.DB) Option {
	return func(s *Server) {
		s.db = db
	}
}

// New validates the config, opens the database, migrates the schema, and
// registers the routes.
func New(cfg Config, opts ...Option) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid server config")
	}

	s := &Server{
		cfg: cfg,
		log: compass.DefaultLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.db == nil {
		db, err := OpenDB(cfg.DSN)
		if err != nil {
			return nil, err
		}
		s.db = db
	}
	if err := Migrate(context.Background(), s.db); err != nil {
		return nil, err
	}

	s.tokens = NewTokenService([]byte(cfg.SigningKey), cfg.tokenTTL(), cfg.issuer(), s.log)
	s.users = &userRepo{db: s.db}
	s.solutions = &solutionRepo{db: s.db}
	s.history = &historyRepo{db: s.db}
	s.catalog = &catalogRepo{db: s.db}

	s.app = fiber.New(fiber.Config{
		AppName:      "compass",
		ErrorHandler: s.errorHandler,
	})
	s.routes()
	return s, nil
}

// App exposes the fiber app, used by tests via app.Test.
func (s *Server) App() *fiber.App { return s.app }

// DB exposes the database handle, used by tests to seed fixtures.
func (s *Server) DB() *bun.DB { return s.db }

// TokenService exposes the token signer, used by tests to mint tokens.
func (s *Server) TokenService() *TokenService { return s.tokens }

// Start listens on cfg.Addr until Shutdown.
func (s *Server) Start() error {
	s.log.Info("server: listening on %s", s.cfg.Addr)
	return s.app.Listen(s.cfg.Addr)
}

// Shutdown drains in-flight requests and closes the database.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.app.ShutdownWithContext(ctx); err != nil {
		return err
	}
	return s.db.Close()
}

func (s *Server) routes() {
	s.app.Post("/auth/login", s.handleLogin)
	s.app.Get("/users/me", s.requireAuth, s.handleMe)

	s.app.Get("/solutions", s.handleListSolutions)
	s.app.Get("/solutions/my", s.requireAuth, s.handleMySolutions)
	s.app.Post("/solutions", s.requireAuth, s.handleCreateSolution)
	s.app.Get("/solutions/:slug", s.handleGetSolution)
	s.app.Put("/solutions/:slug", s.requireAuth, s.handleUpdateSolution)
	s.app.Delete("/solutions/:slug", s.requireAuth, s.handleDeleteSolution)
	s.app.Get("/solutions/:slug/history", s.handleSolutionHistory)

	s.app.Put("/history/:id/justification", s.requireAuth, s.requireSuperuser, s.handleEditJustification)

	s.app.Get("/categories", s.handleListCategories)
	s.app.Post("/categories", s.requireAuth, s.requireSuperuser, s.handleCreateCategory)
	s.app.Get("/groups", s.handleListGroups)
	s.app.Post("/groups", s.requireAuth, s.requireSuperuser, s.handleCreateGroup)
	s.app.Get("/tags", s.handleListTags)

	s.app.Get("/site-config", s.handleSiteConfig)
	s.app.Put("/site-config", s.requireAuth, s.requireSuperuser, s.handleUpdateSiteConfig)

	s.app.Get("/tech-radar", s.handleTechRadar)
}

// errorHandler renders every error as the standard envelope with the
// status matching its category.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	detail := "internal server error"

	var fiberErr *fiber.Error
	if goerrors.As(err, &fiberErr) {
		status = fiberErr.Code
		detail = fiberErr.Message
	}

	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		status = categoryStatus(rich.Category)
		detail = rich.Message
	}

	if status >= fiber.StatusInternalServerError {
		s.log.Error("server: %s %s failed: %v", c.Method(), c.Path(), err)
	}
	return c.Status(status).JSON(compass.Fail[any](detail))
}

func categoryStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryAuth:
		return fiber.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return fiber.StatusForbidden
	case goerrors.CategoryValidation, goerrors.CategoryBadInput:
		return fiber.StatusBadRequest
	case goerrors.CategoryNotFound:
		return fiber.StatusNotFound
	case goerrors.CategoryConflict:
		return fiber.StatusConflict
	}
	return fiber.StatusInternalServerError
}
