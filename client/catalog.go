package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/radarhq/compass"
)

// CatalogService wraps the curation endpoints: categories, groups, tags,
// site configuration, and the rendered tech-radar payload.
type CatalogService struct {
	client *Client
}

// Categories lists all categories.
func (s *CatalogService) Categories(ctx context.Context) ([]compass.Category, error) {
	var env compass.Response[[]compass.Category]
	err := s.client.do(ctx, request{method: http.MethodGet, path: "/categories"}, &env)
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

// CreateCategory adds a category (admin). Leave input.RadarQuadrant nil
// to keep the category off the radar.
func (s *CatalogService) CreateCategory(ctx context.Context, input compass.CategoryInput) (*compass.Category, error) {
	var env compass.Response[*compass.Category]
	err := s.client.do(ctx, request{
		method: http.MethodPost,
		path:   "/categories",
		body:   input,
	}, &env)
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

// Groups lists all groups.
func (s *CatalogService) Groups(ctx context.Context) ([]compass.Group, error) {
	var env compass.Response[[]compass.Group]
	err := s.client.do(ctx, request{method: http.MethodGet, path: "/groups"}, &env)
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

// CreateGroup adds a group (admin).
func (s *CatalogService) CreateGroup(ctx context.Context, group compass.Group) (*compass.Group, error) {
	var env compass.Response[*compass.Group]
	err := s.client.do(ctx, request{
		method: http.MethodPost,
		path:   "/groups",
		body:   group,
	}, &env)
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

// Tags lists all tags.
func (s *CatalogService) Tags(ctx context.Context) ([]compass.Tag, error) {
	var env compass.Response[[]compass.Tag]
	err := s.client.do(ctx, request{method: http.MethodGet, path: "/tags"}, &env)
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

// SiteConfig fetches the site configuration singleton.
func (s *CatalogService) SiteConfig(ctx context.Context) (*compass.SiteConfig, error) {
	var env compass.Response[*compass.SiteConfig]
	err := s.client.do(ctx, request{method: http.MethodGet, path: "/site-config"}, &env)
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

// UpdateSiteConfig replaces the site configuration (admin).
func (s *CatalogService) UpdateSiteConfig(ctx context.Context, cfg compass.SiteConfig) (*compass.SiteConfig, error) {
	var env compass.Response[*compass.SiteConfig]
	err := s.client.do(ctx, request{
		method: http.MethodPut,
		path:   "/site-config",
		body:   cfg,
	}, &env)
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

// Radar fetches the rendered radar payload, optionally scoped to a group.
func (s *CatalogService) Radar(ctx context.Context, group string) (*compass.RadarData, error) {
	q := url.Values{}
	if group != "" {
		q.Set("group", group)
	}

	var env compass.Response[*compass.RadarData]
	err := s.client.do(ctx, request{
		method: http.MethodGet,
		path:   "/tech-radar",
		query:  q,
	}, &env)
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}
