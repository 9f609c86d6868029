package chatpal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch(t *testing.T) {
	var gotPath string
	var gotQuery map[string][]string
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]any{
			"message": map[string]any{
				"docs":     []map[string]any{{"text": "hello"}},
				"numFound": 1,
				"start":    0,
			},
		})
	}))
	defer srv.Close()

	c, err := New(srv.URL, WithAPIKey("secret"))
	require.NoError(t, err)

	res, err := c.Search(context.Background(), SearchRequest{
		Text:       "hello",
		Language:   "en",
		ACL:        []string{"r1", "r2"},
		Categories: []string{"message"},
		Start:      20,
		Rows:       5,
	})
	require.NoError(t, err)

	assert.Equal(t, "/search", gotPath)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, []string{"hello"}, gotQuery["text"])
	assert.Equal(t, []string{"en"}, gotQuery["language"])
	assert.Equal(t, []string{"r1,r2"}, gotQuery["acl"])
	assert.Equal(t, []string{"message"}, gotQuery["type"])
	assert.Equal(t, []string{"20"}, gotQuery["start"])
	assert.Equal(t, []string{"5"}, gotQuery["rows"])

	require.Contains(t, res, "message")
	assert.Equal(t, int64(1), res["message"].NumFound)
	require.Len(t, res["message"].Docs, 1)
	assert.Equal(t, "hello", res["message"].Docs[0]["text"])
}

func TestSearch_EmptyACLStillSent(t *testing.T) {
	var gotRaw string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRaw = r.URL.RawQuery
		w.Write([]byte("{}"))
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	// An empty, non-nil ACL must reach the server: it means "sees
	// nothing", which is different from not sending the parameter.
	_, err = c.Search(context.Background(), SearchRequest{Text: "x", ACL: []string{}})
	require.NoError(t, err)
	assert.Contains(t, gotRaw, "acl=")
}

func TestSuggest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/suggest", r.URL.Path)
		assert.Equal(t, "rocket ch", r.URL.Query().Get("text"))
		w.Write([]byte(`{"suggestion":[{"text":"rocket chat","count":5}]}`))
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	got, err := c.Suggest(context.Background(), "rocket ch", []string{"r1"}, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, Suggestion{Text: "rocket chat", Count: 5}, got[0])
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ping", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("stats"))
		w.Write([]byte(`{"status":"OK","config":{"generalSearch":{"enabled":true},"fileSearch":{"enabled":false,"maxFileSize":0}},"stats":{"message":{"count":3}}}`))
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	status, err := c.Ping(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, "OK", status.Status)
	require.NotNil(t, status.Config)
	assert.True(t, status.Config.GeneralSearch.Enabled)
	assert.Contains(t, status.Stats, "message")
}

func TestAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"code":"engine_unavailable","message":"engine unavailable: connection refused"}`))
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	_, err = c.Search(context.Background(), SearchRequest{Text: "x"})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "engine_unavailable", apiErr.Code)
}

func TestAPIError_NonJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gateway timeout", http.StatusGatewayTimeout)
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	_, err = c.Suggest(context.Background(), "x", nil, nil)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "unknown", apiErr.Code)
	assert.Equal(t, "gateway timeout", apiErr.Message)
}

func TestNew_RequiresBaseURL(t *testing.T) {
	_, err := New("")
	require.Error(t, err)
}
