package appservices

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/juju/loggo"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabriel-samfira/appservices-logs/config"
	"github.com/gabriel-samfira/appservices-logs/datastore"
	"github.com/gabriel-samfira/appservices-logs/params"
)

func testQuery() params.QueryParams {
	start := params.Date{Raw: "2024-10-05T14:30:00.000Z"}
	end := params.Date{Raw: "2024-10-06T14:30:00.000Z"}
	return params.QueryParams{
		ProjectID: "5f9b",
		AppID:     "myapp",
		StartDate: &start,
		EndDate:   &end,
		Types:     []params.LogType{params.TriggerFailure, params.Function},
	}
}

func newFetcher(t *testing.T, srv *httptest.Server) datastore.PageFetcher {
	t.Helper()
	cfg := config.API{BaseURL: config.APIURL(srv.URL + "/api/admin/v3.0")}
	fetcher, err := NewPageFetcher(cfg, "s3cr3t", srv.Client(), loggo.GetLogger("test"))
	require.NoError(t, err)
	return fetcher
}

func TestFetchFirstPage(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"logs": [{"_id": "1", "type": "FUNCTION", "duration": 12345678901234567}, {"_id": "2"}],
			"nextEndDate": "2024-10-06T10:00:00.000Z",
			"nextSkip": 2
		}`))
	}))
	defer srv.Close()

	page, err := newFetcher(t, srv).FetchPage(context.Background(), testQuery(), nil)
	require.NoError(t, err)

	require.NotNil(t, got)
	assert.Equal(t, "/api/admin/v3.0/groups/5f9b/apps/myapp/logs", got.URL.Path)
	assert.Equal(t, "Bearer s3cr3t", got.Header.Get("Authorization"))
	assert.Equal(t, url.Values{
		"start_date": {"2024-10-05T14:30:00.000Z"},
		"end_date":   {"2024-10-06T14:30:00.000Z"},
		"type":       {"TRIGGER_FAILURE,FUNCTION"},
	}, got.URL.Query())

	require.Len(t, page.Records, 2)
	assert.Equal(t, json.Number("12345678901234567"), page.Records[0]["duration"])
	assert.Equal(t, "2", page.Records[1].ID())
	require.NotNil(t, page.Next)
	assert.Equal(t, datastore.Cursor{EndDate: "2024-10-06T10:00:00.000Z", Skip: 2}, *page.Next)
}

func TestFetchWithCursor(t *testing.T) {
	var query url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		w.Write([]byte(`{"logs": []}`))
	}))
	defer srv.Close()

	q := testQuery()
	q.Types = nil
	q.UserID = "60f1c2"
	q.ErrorsOnly = true
	cursor := &datastore.Cursor{EndDate: "2024-10-06T10:00:00.000Z", Skip: 50}

	page, err := newFetcher(t, srv).FetchPage(context.Background(), q, cursor)
	require.NoError(t, err)
	assert.Empty(t, page.Records)
	assert.Nil(t, page.Next)

	assert.Equal(t, url.Values{
		"start_date":  {"2024-10-05T14:30:00.000Z"},
		"end_date":    {"2024-10-06T10:00:00.000Z"},
		"skip":        {"50"},
		"user_id":     {"60f1c2"},
		"errors_only": {"true"},
	}, query)
}

func TestFetchOpenEndedRange(t *testing.T) {
	values := queryValues(params.QueryParams{ProjectID: "ab", AppID: "app"}, nil)
	assert.Empty(t, values)
}

func TestFetchErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": "invalid session"}`))
	}))
	defer srv.Close()

	_, err := newFetcher(t, srv).FetchPage(context.Background(), testQuery(), nil)
	require.Error(t, err)
	var fetchErr *datastore.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, http.StatusUnauthorized, fetchErr.StatusCode)
	assert.Contains(t, err.Error(), "invalid session")
}

func TestFetchMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"logs": [`))
	}))
	defer srv.Close()

	_, err := newFetcher(t, srv).FetchPage(context.Background(), testQuery(), nil)
	var fetchErr *datastore.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, http.StatusOK, fetchErr.StatusCode)
}

func TestFetchTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	fetcher := newFetcher(t, srv)
	srv.Close()

	_, err := fetcher.FetchPage(context.Background(), testQuery(), nil)
	var fetchErr *datastore.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Zero(t, fetchErr.StatusCode)
}

func TestNewPageFetcherValidation(t *testing.T) {
	_, err := NewPageFetcher(config.API{BaseURL: "not a url"}, "token", nil, loggo.GetLogger("test"))
	assert.Error(t, err)

	_, err = NewPageFetcher(config.API{BaseURL: config.DefaultAPIBaseURL}, "", nil, loggo.GetLogger("test"))
	assert.Error(t, err)
}
