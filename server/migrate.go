package server

import (
	"context"
	"database/sql"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/radarhq/compass"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"golang.org/x/crypto/bcrypt"
)

// OpenDB opens the sqlite database behind the given DSN.
func OpenDB(dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to open database")
	}
	// sqlite tolerates a single writer.
	sqldb.SetMaxOpenConns(1)
	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

// Migrate creates the schema. It is idempotent.
func Migrate(ctx context.Context, db *bun.DB) error {
	models := []any{
		(*compass.User)(nil),
		(*compass.Solution)(nil),
		(*compass.Category)(nil),
		(*compass.Group)(nil),
		(*compass.Tag)(nil),
		(*compass.SiteConfig)(nil),
		(*compass.HistoryRecord)(nil),
	}
	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create schema")
		}
	}
	return nil
}

// SeedAdmin ensures a superuser exists. Returns without touching anything
// when the username is already taken.
func SeedAdmin(ctx context.Context, db *bun.DB, username, email, password string) error {
	exists, err := db.NewSelect().Model((*compass.User)(nil)).
		Where("username = ?", username).
		Exists(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check for admin user")
	}
	if exists {
		return nil
	}

	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	admin := &compass.User{
		ID:           uuid.New(),
		Username:     username,
		DisplayName:  username,
		Email:        email,
		PasswordHash: hash,
		IsSuperuser:  true,
	}
	if _, err := db.NewInsert().Model(admin).Exec(ctx); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to seed admin user")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	if password == "" {
		return "", goerrors.New("password must not be empty", goerrors.CategoryBadInput)
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}
	return string(h), nil
}

func comparePassword(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return compass.ErrUnauthorized
	}
	return nil
}
