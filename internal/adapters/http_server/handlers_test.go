package httpserver_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpserver "structured_markup/internal/adapters/http_server"
	"structured_markup/internal/app"
	"structured_markup/internal/domain"
	"structured_markup/internal/schema"
)

type memRepo struct{ byCat map[domain.Category][]domain.Record }

func (m *memRepo) UpsertRecords(context.Context, []domain.Record) error { return nil }

func (m *memRepo) RecordsForCategory(_ context.Context, c domain.Category) ([]domain.Record, error) {
	return m.byCat[c], nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	repo := &memRepo{byCat: map[domain.Category][]domain.Record{
		domain.CategoryAll: {
			{ID: 1, Category: domain.CategoryAll, Kind: domain.KindLocalBusiness, Active: true,
				Options: []byte(`{"name":"Everywhere Inc","url":"https://every.example"}`)},
		},
		domain.CategoryHome: {
			{ID: 2, Category: domain.CategoryHome, Kind: domain.KindLocalBusiness, Active: true,
				Options: []byte(`{"name":"Cafe X","business_type":"Cafe"}`)},
			{ID: 3, Category: domain.CategoryHome, Kind: domain.KindLocalBusiness, Active: false,
				Options: []byte(`{"name":"Hidden"}`)},
		},
	}}
	svc := app.NewRenderService(repo, nil, 0, schema.DefaultRegistry(schema.GatePerField))

	srv := httpserver.New()
	srv.MountHandlers(&httpserver.Handlers{R: svc})
	ts := httptest.NewServer(srv.Mux())
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, url string, hdr map[string]string) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(b)
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	resp, body := get(t, ts.URL+"/healthz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body)
}

func TestRender_HomePage(t *testing.T) {
	ts := newTestServer(t)
	resp, body := get(t, ts.URL+"/v1/render?home=1", nil)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Equal(t, "2", resp.Header.Get("X-Document-Count"))
	assert.Equal(t, 2, strings.Count(body, `<script type="application/ld+json">`))

	// "all" documents come before category documents
	iAll := strings.Index(body, "Everywhere Inc")
	iHome := strings.Index(body, "Cafe X")
	require.True(t, iAll >= 0 && iHome >= 0, body)
	assert.Less(t, iAll, iHome)
	assert.NotContains(t, body, "Hidden")
}

func TestRender_NoFlagsOnlyAll(t *testing.T) {
	ts := newTestServer(t)
	resp, body := get(t, ts.URL+"/v1/render", nil)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, strings.Count(body, "<script"))
	assert.NotContains(t, body, "Cafe X")
}

func TestRender_BadFlag(t *testing.T) {
	ts := newTestServer(t)
	resp, body := get(t, ts.URL+"/v1/render?home=maybe", nil)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "application/problem+json", resp.Header.Get("Content-Type"))
	assert.Contains(t, body, "home must be one of 1, true, on, yes, 0, false, off, no")
}

func TestDocuments_JSONAndETag(t *testing.T) {
	ts := newTestServer(t)
	resp, body := get(t, ts.URL+"/v1/documents?home=true", nil)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	etag := resp.Header.Get("ETag")
	require.True(t, strings.HasPrefix(etag, `W/"`), etag)

	var docs []map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &docs))
	require.Len(t, docs, 2)
	assert.Equal(t, "Everywhere Inc", docs[0]["name"])
	assert.Equal(t, "Cafe", docs[1]["@type"])

	resp, body = get(t, ts.URL+"/v1/documents?home=true", map[string]string{"If-None-Match": etag})
	assert.Equal(t, http.StatusNotModified, resp.StatusCode)
	assert.Empty(t, body)
	assert.Equal(t, etag, resp.Header.Get("ETag"))
}

func TestRender_YesNoFlags(t *testing.T) {
	ts := newTestServer(t)
	resp, body := get(t, ts.URL+"/v1/render?home=yes&page=no", nil)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Cafe X")
}

func TestDocuments_EmptyIsArray(t *testing.T) {
	repo := &memRepo{}
	svc := app.NewRenderService(repo, nil, 0, schema.DefaultRegistry(schema.GatePerField))
	srv := httpserver.New()
	srv.MountHandlers(&httpserver.Handlers{R: svc})

	rec := httptest.NewRecorder()
	srv.Mux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/documents?page=on", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", rec.Body.String())
}
