package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/radarhq/compass"
	"github.com/radarhq/compass/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginPostsFormEncodedCredentials(t *testing.T) {
	var gotContentType, gotUsername, gotPassword string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/auth/login", r.URL.Path)

		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, r.ParseForm())
		gotUsername = r.PostForm.Get("username")
		gotPassword = r.PostForm.Get("password")

		json.NewEncoder(w).Encode(compass.LoginResponse{
			AccessToken: "T1",
			TokenType:   "bearer",
			User:        &compass.User{Username: "bob"},
		})
	}))
	defer srv.Close()

	c := client.New(srv.URL)
	resp, err := c.Auth.Login(context.Background(), "bob", "x")
	require.NoError(t, err)

	assert.Equal(t, "application/x-www-form-urlencoded", gotContentType)
	assert.Equal(t, "bob", gotUsername)
	assert.Equal(t, "x", gotPassword)
	assert.Equal(t, "T1", resp.AccessToken)
	assert.Equal(t, "bob", resp.User.Username)
}

func TestBearerTokenAttachedFromSource(t *testing.T) {
	var gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(compass.OK(&compass.User{Username: "alice"}))
	}))
	defer srv.Close()

	c := client.New(srv.URL, client.WithTokenSource(func() string { return "T9" }))
	user, err := c.Auth.Me(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Bearer T9", gotAuth)
	assert.Equal(t, "alice", user.Username)
}

func TestUnauthorizedFiresHandlerAndMapsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(compass.Fail[any]("token expired"))
	}))
	defer srv.Close()

	fired := false
	c := client.New(srv.URL, client.WithUnauthorizedHandler(func() { fired = true }))

	_, err := c.Auth.Me(context.Background())
	require.Error(t, err)
	assert.True(t, fired)
	assert.True(t, compass.IsUnauthorized(err))
	assert.False(t, compass.IsRetryable(err))
}

func TestServerErrorsAreRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := client.New(srv.URL)
	_, err := c.Auth.Me(context.Background())
	require.Error(t, err)
	assert.True(t, compass.IsRetryable(err))
	assert.False(t, compass.IsUnauthorized(err))
}

func TestUpdateCarriesJustificationHeader(t *testing.T) {
	var gotHeader string
	var gotBody compass.SolutionUpdate

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/solutions/redis", r.URL.Path)

		gotHeader = r.Header.Get(compass.HeaderChangeJustifications)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		json.NewEncoder(w).Encode(compass.OK(&compass.Solution{Slug: "redis"}))
	}))
	defer srv.Close()

	c := client.New(srv.URL)
	trial := compass.RecommendTrial
	_, err := c.Solutions.Update(context.Background(), "redis",
		compass.SolutionUpdate{RecommendStatus: &trial},
		map[string]string{"recommend_status": "re-evaluated vendor"},
	)
	require.NoError(t, err)

	var justifications map[string]string
	require.NoError(t, json.Unmarshal([]byte(gotHeader), &justifications))
	assert.Equal(t, "re-evaluated vendor", justifications["recommend_status"])

	require.NotNil(t, gotBody.RecommendStatus)
	assert.Equal(t, compass.RecommendTrial, *gotBody.RecommendStatus)
	// Justifications ride in the header, never in the resource body.
	assert.NotContains(t, gotHeader, "old_value")
}

func TestHistoryFieldsFilterIsCommaJoined(t *testing.T) {
	var gotFields, gotSkip, gotLimit string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotFields = r.URL.Query().Get("fields")
		gotSkip = r.URL.Query().Get("skip")
		gotLimit = r.URL.Query().Get("limit")
		json.NewEncoder(w).Encode(compass.OKList([]compass.HistoryRecord{}, 0, 0, 20))
	}))
	defer srv.Close()

	c := client.New(srv.URL)
	_, total, err := c.History.ForSolution(context.Background(), "redis", client.HistoryQuery{
		Fields: []string{"recommend_status", "review_status"},
	})
	require.NoError(t, err)

	assert.Equal(t, "recommend_status,review_status", gotFields)
	assert.Equal(t, "0", gotSkip)
	assert.Equal(t, "20", gotLimit)
	assert.Equal(t, 0, total)
}

func TestListPropagatesEnvelopePagination(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "APPROVED", r.URL.Query().Get("review_status"))
		json.NewEncoder(w).Encode(compass.OKList([]compass.Solution{
			{Slug: "redis"}, {Slug: "kafka"},
		}, 42, 0, 2))
	}))
	defer srv.Close()

	c := client.New(srv.URL)
	items, total, err := c.Solutions.List(context.Background(), client.ListOptions{
		Limit:  2,
		Review: compass.ReviewApproved,
	})
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, 42, total)
}
