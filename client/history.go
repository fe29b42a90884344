package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/radarhq/compass"
)

// HistoryService wraps the change-history endpoints.
type HistoryService struct {
	client *Client
}

// HistoryQuery narrows and paginates history listings. Fields limits the
// result to records touching any of the named fields.
type HistoryQuery struct {
	Skip   int
	Limit  int
	Fields []string
}

// ForSolution lists history records for a solution, newest first.
func (s *HistoryService) ForSolution(ctx context.Context, slug string, query HistoryQuery) ([]compass.HistoryRecord, int, error) {
	q := url.Values{}
	q.Set("skip", strconv.Itoa(query.Skip))
	limit := query.Limit
	if limit <= 0 {
		limit = 20
	}
	q.Set("limit", strconv.Itoa(limit))
	if len(query.Fields) > 0 {
		q.Set("fields", strings.Join(query.Fields, ","))
	}

	var env compass.Response[[]compass.HistoryRecord]
	err := s.client.do(ctx, request{
		method: http.MethodGet,
		path:   "/solutions/" + url.PathEscape(slug) + "/history",
		query:  q,
	}, &env)
	if err != nil {
		return nil, 0, err
	}

	return env.Data, intValue(env.Total), nil
}

// UpdateJustification amends the stored justification for one field of an
// existing history record. Administrator only; the record's old/new values
// and change type are never touched.
func (s *HistoryService) UpdateJustification(ctx context.Context, recordID, fieldName, justification string) (*compass.HistoryRecord, error) {
	payload := compass.JustificationEdit{
		FieldName:     fieldName,
		Justification: justification,
	}
	if err := payload.Validate(); err != nil {
		return nil, compass.ErrJustificationRequired.WithMetadata(map[string]any{
			"record": recordID,
			"field":  fieldName,
		})
	}

	var env compass.Response[*compass.HistoryRecord]
	err := s.client.do(ctx, request{
		method: http.MethodPut,
		path:   "/history/" + url.PathEscape(recordID) + "/justification",
		body:   payload,
	}, &env)
	if err != nil {
		return nil, err
	}

	return env.Data, nil
}
