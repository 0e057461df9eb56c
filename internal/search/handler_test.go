package search

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/savramidis/news-ingestion-api/internal/agent"
	"github.com/savramidis/news-ingestion-api/internal/config"
	"github.com/savramidis/news-ingestion-api/internal/response"
)

type handlerFixture struct {
	grounder *fakeGrounder
	provider *fakeProvider
	ingestor *fakeIngestor
	router   chi.Router
}

func newHandlerFixture(cfg *config.Config, datasetPath string) *handlerFixture {
	f := &handlerFixture{
		grounder: &fakeGrounder{result: &agent.Result{Response: "answer"}},
		provider: &fakeProvider{envelope: &Everything{Status: "ok"}},
		ingestor: &fakeIngestor{},
	}
	logger := zerolog.Nop()
	h := NewHandler(
		NewAgentService(cfg, f.grounder, f.ingestor, logger),
		NewNewsAPIService(cfg, f.provider, f.ingestor, logger),
		NewKaggleService(cfg, datasetPath, f.ingestor, logger),
	)

	r := chi.NewRouter()
	r.Get("/", h.Docs)
	r.Get("/bingsearch", h.BingSearch)
	r.Get("/newsapi", h.NewsSearch)
	r.Post("/kaggle", h.Kaggle)
	f.router = r
	return f
}

func doRequest(router chi.Router, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) response.Envelope {
	t.Helper()
	var env response.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestHandlerDocsRedirect(t *testing.T) {
	f := newHandlerFixture(testConfig(), "unused.json")

	rec := doRequest(f.router, http.MethodGet, "/")
	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "/swagger/index.html", rec.Header().Get("Location"))
}

func TestHandlerBingSearch(t *testing.T) {
	f := newHandlerFixture(testConfig(), "unused.json")
	f.grounder.result = &agent.Result{
		Response:  "Grounded answer.",
		Citations: []string{"https://example.com/1"},
	}

	rec := doRequest(f.router, http.MethodGet, "/bingsearch?query=go+news")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
	data, ok := env.Data.(map[string]any)
	require.True(t, ok, "data should be the agent result object")
	assert.Equal(t, "Grounded answer.", data["response"])
	assert.Equal(t, []any{"https://example.com/1"}, data["citations"])

	assert.Equal(t, "go news", f.grounder.query)
	assert.Equal(t, []string{"https://example.com/1"}, f.ingestor.urls)
}

func TestHandlerBingSearchMissingQuery(t *testing.T) {
	f := newHandlerFixture(testConfig(), "unused.json")

	for _, target := range []string{"/bingsearch", "/bingsearch?query=", "/bingsearch?query=+++"} {
		rec := doRequest(f.router, http.MethodGet, target)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)

		env := decodeEnvelope(t, rec)
		assert.False(t, env.Success)
		assert.Equal(t, "query parameter is required", env.Error)
	}
	assert.Zero(t, f.grounder.calls)
}

func TestHandlerBingSearchAgentFailure(t *testing.T) {
	f := newHandlerFixture(testConfig(), "unused.json")
	f.grounder.result = nil
	f.grounder.err = errors.New("run exploded")

	rec := doRequest(f.router, http.MethodGet, "/bingsearch?query=go")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
	assert.Equal(t, "agent search: run exploded", env.Error)
}

func TestHandlerNewsSearchDefaults(t *testing.T) {
	f := newHandlerFixture(testConfig(), "unused.json")

	rec := doRequest(f.router, http.MethodGet, "/newsapi?query=golang")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, EverythingParams{
		Query:    "golang",
		Language: "en",
		SortBy:   "publishedAt",
		PageSize: 10,
		Page:     1,
	}, f.provider.params)
}

func TestHandlerNewsSearchFilters(t *testing.T) {
	f := newHandlerFixture(testConfig(), "unused.json")

	rec := doRequest(f.router, http.MethodGet, "/newsapi?query=golang&searchIn=title&sources=bbc-news"+
		"&domains=bbc.co.uk&excludeDomains=spam.example.com&from=2026-08-01&to=2026-08-20"+
		"&language=de&sortBy=relevancy&pageSize=5&page=3")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, EverythingParams{
		Query:          "golang",
		SearchIn:       "title",
		Sources:        "bbc-news",
		Domains:        "bbc.co.uk",
		ExcludeDomains: "spam.example.com",
		From:           "2026-08-01",
		To:             "2026-08-20",
		Language:       "de",
		SortBy:         "relevancy",
		PageSize:       5,
		Page:           3,
	}, f.provider.params)
}

func TestHandlerNewsSearchValidation(t *testing.T) {
	f := newHandlerFixture(testConfig(), "unused.json")

	tests := []struct {
		name    string
		target  string
		wantErr string
	}{
		{
			name:    "missing query",
			target:  "/newsapi",
			wantErr: "query parameter is required",
		},
		{
			name:    "query too long",
			target:  "/newsapi?query=" + strings.Repeat("q", 501),
			wantErr: "query must be at most 500 characters",
		},
		{
			name:    "language not two letters",
			target:  "/newsapi?query=x&language=eng",
			wantErr: "language must be a 2-letter code",
		},
		{
			name:    "unknown sortBy",
			target:  "/newsapi?query=x&sortBy=upvotes",
			wantErr: "sortBy must be one of relevancy, popularity, publishedAt",
		},
		{
			name:    "pageSize not a number",
			target:  "/newsapi?query=x&pageSize=many",
			wantErr: "pageSize must be an integer",
		},
		{
			name:    "pageSize above cap",
			target:  "/newsapi?query=x&pageSize=11",
			wantErr: "pageSize must be between 1 and 10",
		},
		{
			name:    "pageSize zero",
			target:  "/newsapi?query=x&pageSize=0",
			wantErr: "pageSize must be between 1 and 10",
		},
		{
			name:    "page not a number",
			target:  "/newsapi?query=x&page=two",
			wantErr: "page must be an integer",
		},
		{
			name:    "page zero",
			target:  "/newsapi?query=x&page=0",
			wantErr: "page must be at least 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(f.router, http.MethodGet, tt.target)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			env := decodeEnvelope(t, rec)
			assert.False(t, env.Success)
			assert.Equal(t, tt.wantErr, env.Error)
		})
	}
	assert.Zero(t, f.provider.calls)
}

func TestHandlerNewsSearchQueryAtLimit(t *testing.T) {
	f := newHandlerFixture(testConfig(), "unused.json")

	rec := doRequest(f.router, http.MethodGet, "/newsapi?query="+strings.Repeat("q", 500))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, f.provider.calls)
}

func TestHandlerNewsSearchProviderFailure(t *testing.T) {
	f := newHandlerFixture(testConfig(), "unused.json")
	f.provider.envelope = nil
	f.provider.err = errors.New("news api: serverError: upstream down")

	rec := doRequest(f.router, http.MethodGet, "/newsapi?query=golang")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
	assert.Equal(t, "news api: serverError: upstream down", env.Error)
}

func TestHandlerKaggle(t *testing.T) {
	path := writeDataset(t, `[
		{"link": "https://news.example.com/1"},
		{"link": "https://news.example.com/2"}
	]`)
	f := newHandlerFixture(testConfig(), path)

	rec := doRequest(f.router, http.MethodPost, "/kaggle")
	require.Equal(t, http.StatusOK, rec.Code)

	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
	data, ok := env.Data.([]any)
	require.True(t, ok, "data should be an array of articles")
	assert.Len(t, data, 2)
}

func TestHandlerKaggleEmptyDataset(t *testing.T) {
	f := newHandlerFixture(testConfig(), writeDataset(t, `[]`))

	rec := doRequest(f.router, http.MethodPost, "/kaggle")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"data":[]`)
}

func TestHandlerKaggleFailure(t *testing.T) {
	f := newHandlerFixture(testConfig(), "does-not-exist.json")

	rec := doRequest(f.router, http.MethodPost, "/kaggle")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
	assert.Contains(t, env.Error, "dataset file not found")
}
