package server

import (
	"context"
	"database/sql"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/radarhq/compass"
	"github.com/uptrace/bun"
)

type catalogRepo struct {
	db *bun.DB
}

func (r *catalogRepo) categories(ctx context.Context) ([]compass.Category, error) {
	var categories []compass.Category
	err := r.db.NewSelect().Model(&categories).
		ColumnExpr("cat.*").
		ColumnExpr("(SELECT count(*) FROM solutions s WHERE s.category = cat.name AND s.deleted_at IS NULL) AS usage_count").
		Order("name ASC").
		Scan(ctx)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list categories")
	}
	return categories, nil
}

func (r *catalogRepo) categoryByName(ctx context.Context, name string) (*compass.Category, error) {
	category := new(compass.Category)
	err := r.db.NewSelect().Model(category).
		Where("name = ?", name).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if goerrors.Is(err, sql.ErrNoRows) {
			return nil, compass.ErrNotFound.WithMetadata(map[string]any{"category": name})
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load category")
	}
	return category, nil
}

func (r *catalogRepo) createCategory(ctx context.Context, category *compass.Category) error {
	if existing, err := r.categoryByName(ctx, category.Name); err == nil && existing != nil {
		return compass.ErrDuplicateName.WithMetadata(map[string]any{"name": category.Name})
	}
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	if category.Slug == "" {
		category.Slug = slug.Make(category.Name)
	}
	if _, err := r.db.NewInsert().Model(category).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return compass.ErrDuplicateName.WithMetadata(map[string]any{"name": category.Name})
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create category")
	}
	return nil
}

func (r *catalogRepo) groups(ctx context.Context) ([]compass.Group, error) {
	var groups []compass.Group
	err := r.db.NewSelect().Model(&groups).
		Order("sort_order ASC", "name ASC").
		Scan(ctx)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list groups")
	}
	return groups, nil
}

func (r *catalogRepo) createGroup(ctx context.Context, group *compass.Group) error {
	if group.ID == uuid.Nil {
		group.ID = uuid.New()
	}
	if _, err := r.db.NewInsert().Model(group).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return compass.ErrDuplicateName.WithMetadata(map[string]any{"name": group.Name})
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create group")
	}
	return nil
}

func (r *catalogRepo) tags(ctx context.Context) ([]compass.Tag, error) {
	var tags []compass.Tag
	err := r.db.NewSelect().Model(&tags).
		Order("name ASC").
		Scan(ctx)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list tags")
	}
	return tags, nil
}

// siteConfig returns the singleton config row, creating it on first read.
func (r *catalogRepo) siteConfig(ctx context.Context) (*compass.SiteConfig, error) {
	cfg := new(compass.SiteConfig)
	err := r.db.NewSelect().Model(cfg).Limit(1).Scan(ctx)
	if err == nil {
		return cfg, nil
	}
	if !goerrors.Is(err, sql.ErrNoRows) {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load site config")
	}

	cfg = &compass.SiteConfig{
		ID:       uuid.New(),
		SiteName: "Compass",
	}
	if _, err := r.db.NewInsert().Model(cfg).Exec(ctx); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to initialize site config")
	}
	return cfg, nil
}

func (r *catalogRepo) updateSiteConfig(ctx context.Context, update *compass.SiteConfig, updatedBy string) (*compass.SiteConfig, error) {
	cfg, err := r.siteConfig(ctx)
	if err != nil {
		return nil, err
	}

	if update.SiteName != "" {
		cfg.SiteName = update.SiteName
	}
	if update.Tagline != "" {
		cfg.Tagline = update.Tagline
	}
	if update.WelcomeText != "" {
		cfg.WelcomeText = update.WelcomeText
	}
	if update.ContactEmail != "" {
		cfg.ContactEmail = update.ContactEmail
	}
	if update.Features != nil {
		cfg.Features = update.Features
	}
	now := time.Now()
	cfg.UpdatedBy = updatedBy
	cfg.UpdatedAt = &now

	if _, err := r.db.NewUpdate().Model(cfg).WherePK().Exec(ctx); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update site config")
	}
	return cfg, nil
}
