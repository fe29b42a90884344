package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/goliatone/go-errors"
	"github.com/radarhq/compass"
)

// SolutionsService wraps the solution endpoints.
type SolutionsService struct {
	client *Client
}

// ListOptions narrows and paginates solution listings.
type ListOptions struct {
	Skip     int
	Limit    int
	Category string
	Group    string
	Review   compass.ReviewStatus
}

func (o ListOptions) query() url.Values {
	q := url.Values{}
	q.Set("skip", strconv.Itoa(o.Skip))
	limit := o.Limit
	if limit <= 0 {
		limit = 20
	}
	q.Set("limit", strconv.Itoa(limit))
	if o.Category != "" {
		q.Set("category", o.Category)
	}
	if o.Group != "" {
		q.Set("group", o.Group)
	}
	if o.Review != "" {
		q.Set("review_status", o.Review)
	}
	return q
}

// List returns a page of solutions plus the total count.
func (s *SolutionsService) List(ctx context.Context, opts ListOptions) ([]compass.Solution, int, error) {
	var env compass.Response[[]compass.Solution]
	err := s.client.do(ctx, request{
		method: http.MethodGet,
		path:   "/solutions",
		query:  opts.query(),
	}, &env)
	if err != nil {
		return nil, 0, err
	}

	return env.Data, intValue(env.Total), nil
}

// My returns the caller's own solutions.
func (s *SolutionsService) My(ctx context.Context, skip, limit int) ([]compass.Solution, int, error) {
	var env compass.Response[[]compass.Solution]
	err := s.client.do(ctx, request{
		method: http.MethodGet,
		path:   "/solutions/my",
		query:  ListOptions{Skip: skip, Limit: limit}.query(),
	}, &env)
	if err != nil {
		return nil, 0, err
	}

	return env.Data, intValue(env.Total), nil
}

// Get fetches one solution by slug.
func (s *SolutionsService) Get(ctx context.Context, slug string) (*compass.Solution, error) {
	var env compass.Response[*compass.Solution]
	err := s.client.do(ctx, request{
		method: http.MethodGet,
		path:   "/solutions/" + url.PathEscape(slug),
	}, &env)
	if err != nil {
		return nil, err
	}

	return env.Data, nil
}

// Create submits a new solution.
func (s *SolutionsService) Create(ctx context.Context, input compass.SolutionInput) (*compass.Solution, error) {
	if err := input.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.CategoryValidation, "invalid solution payload").
			WithCode(errors.CodeBadRequest)
	}

	var env compass.Response[*compass.Solution]
	err := s.client.do(ctx, request{
		method: http.MethodPost,
		path:   "/solutions",
		body:   input,
	}, &env)
	if err != nil {
		return nil, err
	}

	return env.Data, nil
}

// Update applies a partial update. When justifications is non-empty it is
// serialized into the X-Change-Justifications header; the server requires
// an entry there for every tracked status field the update actually
// changes.
func (s *SolutionsService) Update(ctx context.Context, slug string, update compass.SolutionUpdate, justifications map[string]string) (*compass.Solution, error) {
	if err := update.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.CategoryValidation, "invalid solution update").
			WithCode(errors.CodeBadRequest)
	}

	headers := map[string]string{}
	if len(justifications) > 0 {
		raw, err := json.Marshal(justifications)
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryInternal, "failed to encode justifications")
		}
		headers[compass.HeaderChangeJustifications] = string(raw)
	}

	var env compass.Response[*compass.Solution]
	err := s.client.do(ctx, request{
		method:  http.MethodPut,
		path:    "/solutions/" + url.PathEscape(slug),
		body:    update,
		headers: headers,
	}, &env)
	if err != nil {
		return nil, err
	}

	return env.Data, nil
}

// Delete removes a solution.
func (s *SolutionsService) Delete(ctx context.Context, slug string) error {
	return s.client.do(ctx, request{
		method: http.MethodDelete,
		path:   "/solutions/" + url.PathEscape(slug),
	}, nil)
}

// CommitStatusChanges folds confirmed pending changes from an edit session
// into a single update request. It satisfies workflow.Committer.
func (s *SolutionsService) CommitStatusChanges(ctx context.Context, slug string, changes []compass.ChangedField) error {
	update := compass.SolutionUpdate{}
	justifications := map[string]string{}

	for _, change := range changes {
		value := fmt.Sprint(change.NewValue)
		switch compass.TrackedField(change.FieldName) {
		case compass.FieldRecommendStatus:
			update.RecommendStatus = &value
		case compass.FieldReviewStatus:
			update.ReviewStatus = &value
		default:
			return compass.ErrInvalidStatusValue.WithMetadata(map[string]any{
				"field": change.FieldName,
			})
		}
		justifications[change.FieldName] = change.Justification
	}

	_, err := s.Update(ctx, slug, update, justifications)
	return err
}
