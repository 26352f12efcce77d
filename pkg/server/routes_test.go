package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutorhub/tutorhub/pkg/models"
	"github.com/tutorhub/tutorhub/pkg/testutils"
)

type fakeGeneration struct {
	result     *models.GenerationResult
	structured *models.StructuredResult
	err        error
}

func (f *fakeGeneration) Generate(
	context.Context,
	*models.GenerationRequest,
) (*models.GenerationResult, error) {
	return f.result, f.err
}

func (f *fakeGeneration) GenerateStructured(
	context.Context,
	*models.GenerationRequest,
) (*models.StructuredResult, error) {
	return f.structured, f.err
}

func (f *fakeGeneration) Providers() []models.Provider {
	return models.FallbackOrder
}

type fakeSearchService struct {
	lastDoc  models.Document
	indexID  string
	indexErr error

	batch   *models.BatchIndexResult
	results []models.VectorSearchResult
}

func (f *fakeSearchService) Index(_ context.Context, doc models.Document) (string, error) {
	f.lastDoc = doc
	return f.indexID, f.indexErr
}

func (f *fakeSearchService) IndexBatch(
	context.Context,
	[]models.Document,
) (*models.BatchIndexResult, error) {
	return f.batch, nil
}

func (f *fakeSearchService) Search(
	context.Context,
	string,
	models.SearchOptions,
) ([]models.VectorSearchResult, error) {
	return f.results, nil
}

func (f *fakeSearchService) HybridSearch(
	context.Context,
	string,
	models.HybridSearchOptions,
) ([]models.VectorSearchResult, error) {
	return f.results, nil
}

func (f *fakeSearchService) Recommend(
	context.Context,
	models.RecommendOptions,
) ([]models.VectorSearchResult, error) {
	return f.results, nil
}

type fakeVectorStore struct {
	stats     models.VectorStoreStats
	removeErr error
	removed   []string
}

func (f *fakeVectorStore) Add(
	context.Context,
	string,
	models.VectorMetadata,
) (string, error) {
	return "", errors.New("not implemented")
}

func (f *fakeVectorStore) Search(
	context.Context,
	string,
	models.SearchOptions,
) ([]models.VectorSearchResult, error) {
	return nil, nil
}

func (f *fakeVectorStore) FindSimilar(
	context.Context,
	string,
	models.SimilarOptions,
) ([]models.VectorSearchResult, error) {
	return nil, nil
}

func (f *fakeVectorStore) Get(string) (*models.Vector, error) {
	return nil, models.NewNotFoundError("vector")
}

func (f *fakeVectorStore) Remove(id string) error {
	f.removed = append(f.removed, id)
	return f.removeErr
}

func (f *fakeVectorStore) Clear() {}

func (f *fakeVectorStore) Stats() models.VectorStoreStats {
	return f.stats
}

func newTestAppState() (*models.AppState, *fakeGeneration, *fakeSearchService, *fakeVectorStore) {
	generation := &fakeGeneration{
		result: &models.GenerationResult{Text: "generated", Provider: models.ProviderGemini},
		structured: &models.StructuredResult{
			GenerationResult: models.GenerationResult{Provider: models.ProviderGemini},
			Data:             json.RawMessage(`{"ok": true}`),
		},
	}
	searchSvc := &fakeSearchService{indexID: "doc-1"}
	store := &fakeVectorStore{stats: models.VectorStoreStats{Count: 2}}

	appState := &models.AppState{
		Generation:  generation,
		Search:      searchSvc,
		VectorStore: store,
		Config:      testutils.NewTestConfig(),
	}
	return appState, generation, searchSvc, store
}

func postJSON(t *testing.T, handler http.Handler, path string, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestRouter_Heartbeat(t *testing.T) {
	appState, _, _, _ := newTestAppState()
	router := setupRouter(appState)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Tutorhub-Version"))
}

func TestGenerateHandler(t *testing.T) {
	appState, _, _, _ := newTestAppState()
	router := setupRouter(appState)

	w := postJSON(t, router, "/api/v1/generate", `{"prompt": "explain fractions"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var result models.GenerationResult
	require.NoError(t, json.NewDecoder(w.Body).Decode(&result))
	assert.Equal(t, "generated", result.Text)
	assert.Equal(t, models.ProviderGemini, result.Provider)
}

func TestGenerateHandler_EmptyPrompt(t *testing.T) {
	appState, _, _, _ := newTestAppState()
	router := setupRouter(appState)

	w := postJSON(t, router, "/api/v1/generate", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerateHandler_MalformedBody(t *testing.T) {
	appState, _, _, _ := newTestAppState()
	router := setupRouter(appState)

	w := postJSON(t, router, "/api/v1/generate", `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerateHandler_UpstreamFailure(t *testing.T) {
	appState, generation, _, _ := newTestAppState()
	generation.err = &models.AllProvidersFailedError{
		Original: errors.New("gemini down"),
		Tried:    models.FallbackOrder,
	}
	router := setupRouter(appState)

	w := postJSON(t, router, "/api/v1/generate", `{"prompt": "hi"}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestGenerateStructuredHandler(t *testing.T) {
	appState, _, _, _ := newTestAppState()
	router := setupRouter(appState)

	w := postJSON(t, router, "/api/v1/generate/structured", `{"prompt": "hi"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var result models.StructuredResult
	require.NoError(t, json.NewDecoder(w.Body).Decode(&result))
	assert.JSONEq(t, `{"ok": true}`, string(result.Data))
}

func TestIndexDocumentHandler(t *testing.T) {
	appState, _, searchSvc, _ := newTestAppState()
	router := setupRouter(appState)

	w := postJSON(t, router, "/api/v1/documents", `{"content": "lesson text", "title": "Lesson"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "doc-1", resp["id"])
	assert.Equal(t, "Lesson", searchSvc.lastDoc.Title)
}

func TestIndexDocumentHandler_MissingContent(t *testing.T) {
	appState, _, _, _ := newTestAppState()
	router := setupRouter(appState)

	w := postJSON(t, router, "/api/v1/documents", `{"title": "no content"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIndexBatchHandler(t *testing.T) {
	appState, _, searchSvc, _ := newTestAppState()
	searchSvc.batch = &models.BatchIndexResult{
		IDs:     []string{"a", "b"},
		Indexed: 2,
		Failed:  1,
		Errors:  []models.BatchIndexError{{Index: 2, Error: "store unavailable"}},
	}
	router := setupRouter(appState)

	w := postJSON(t, router, "/api/v1/documents/batch",
		`{"documents": [{"content": "a"}, {"content": "b"}, {"content": "c"}]}`)
	require.Equal(t, http.StatusOK, w.Code)

	var result models.BatchIndexResult
	require.NoError(t, json.NewDecoder(w.Body).Decode(&result))
	assert.Equal(t, 2, result.Indexed)
	assert.Equal(t, 1, result.Failed)
}

func TestIndexBatchHandler_EmptyList(t *testing.T) {
	appState, _, _, _ := newTestAppState()
	router := setupRouter(appState)

	w := postJSON(t, router, "/api/v1/documents/batch", `{"documents": []}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStoreStatsHandler(t *testing.T) {
	appState, _, _, _ := newTestAppState()
	router := setupRouter(appState)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/stats", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var stats models.VectorStoreStats
	require.NoError(t, json.NewDecoder(w.Body).Decode(&stats))
	assert.Equal(t, 2, stats.Count)
}

func TestDeleteDocumentHandler(t *testing.T) {
	appState, _, _, store := newTestAppState()
	router := setupRouter(appState)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/documents/doc-42", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []string{"doc-42"}, store.removed)
}

func TestDeleteDocumentHandler_NotFound(t *testing.T) {
	appState, _, _, store := newTestAppState()
	store.removeErr = models.NewNotFoundError("vector doc-42")
	router := setupRouter(appState)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/documents/doc-42", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSearchHandler(t *testing.T) {
	appState, _, searchSvc, _ := newTestAppState()
	searchSvc.results = []models.VectorSearchResult{
		{Vector: &models.Vector{ID: "v1", Content: "match"}, Similarity: 0.9, Relevance: 1.1},
	}
	router := setupRouter(appState)

	w := postJSON(t, router, "/api/v1/search", `{"query": "fractions", "limit": 3}`)
	require.Equal(t, http.StatusOK, w.Code)

	var results []models.VectorSearchResult
	require.NoError(t, json.NewDecoder(w.Body).Decode(&results))
	require.Len(t, results, 1)
	assert.Equal(t, "v1", results[0].Vector.ID)
}

func TestSearchHandler_MissingQuery(t *testing.T) {
	appState, _, _, _ := newTestAppState()
	router := setupRouter(appState)

	w := postJSON(t, router, "/api/v1/search", `{"limit": 3}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHybridSearchHandler(t *testing.T) {
	appState, _, searchSvc, _ := newTestAppState()
	searchSvc.results = []models.VectorSearchResult{
		{Vector: &models.Vector{ID: "v1"}, Relevance: 0.8},
	}
	router := setupRouter(appState)

	w := postJSON(t, router, "/api/v1/search/hybrid", `{"query": "loops", "semantic_weight": 0.6}`)
	require.Equal(t, http.StatusOK, w.Code)

	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"v1"`)
}

func TestRecommendHandler_MissingSeed(t *testing.T) {
	appState, _, _, _ := newTestAppState()
	router := setupRouter(appState)

	w := postJSON(t, router, "/api/v1/recommend", `{"limit": 3}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecommendHandler(t *testing.T) {
	appState, _, searchSvc, _ := newTestAppState()
	searchSvc.results = []models.VectorSearchResult{
		{Vector: &models.Vector{ID: "rec-1"}, Similarity: 0.7, Relevance: 0.7},
	}
	router := setupRouter(appState)

	w := postJSON(t, router, "/api/v1/recommend", `{"content": "intro to loops"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var results []models.VectorSearchResult
	require.NoError(t, json.NewDecoder(w.Body).Decode(&results))
	require.Len(t, results, 1)
	assert.Equal(t, "rec-1", results[0].Vector.ID)
}
