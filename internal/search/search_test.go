package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "hiring-workers/internal/common/errors"
	"hiring-workers/internal/common/logger"
	"hiring-workers/internal/models"
	"hiring-workers/internal/store/memory"
)

type request struct {
	method string
	path   string
	body   []byte
}

type fakeES struct {
	mu       sync.Mutex
	requests []request
	respond  func(w http.ResponseWriter, r *http.Request)
}

func (f *fakeES) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, request{method: r.Method, path: r.URL.Path, body: body})
	f.mu.Unlock()

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")
	f.respond(w, r)
}

func newIndex(t *testing.T, respond func(w http.ResponseWriter, r *http.Request)) (*Index, *fakeES) {
	fake := &fakeES{respond: respond}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)

	dir := memory.New()
	dir.PutOrganization(models.Organization{ID: "org-1", Name: "Acme"})
	dir.PutJob(models.Job{ID: "job-1", Title: "Backend Engineer", OrganizationID: "org-1"})
	dir.PutCandidate(models.CandidateProfile{ID: "cand-1", DisplayName: "Ada Lovelace"})

	return NewIndex(client, "applications", dir, logger.NewTestLogger(t)), fake
}

func TestIndexApplication_WritesProjection(t *testing.T) {
	idx, fake := newIndex(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	})

	created := time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)
	err := idx.IndexApplication(context.Background(), &models.Application{
		ID: "app-1", JobID: "job-1", CandidateID: "cand-1", OrganizationID: "org-1",
		Status: models.StatusInReview, CreatedAt: created, UpdatedAt: created,
	})
	require.NoError(t, err)

	require.Len(t, fake.requests, 1)
	assert.Equal(t, http.MethodPut, fake.requests[0].method)
	assert.Equal(t, "/applications/_doc/app-1", fake.requests[0].path)

	var doc Document
	require.NoError(t, json.Unmarshal(fake.requests[0].body, &doc))
	assert.Equal(t, "Backend Engineer", doc.JobTitle)
	assert.Equal(t, "Acme", doc.OrganizationName)
	assert.Equal(t, "Ada Lovelace", doc.CandidateName)
	assert.Equal(t, "in_review", doc.Status)
	assert.Equal(t, models.StatusInReview.Label(), doc.StatusLabel)
}

func TestIndexApplication_ErrorResponseIsIndexingFailure(t *testing.T) {
	idx, _ := newIndex(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"unavailable"}`))
	})

	err := idx.IndexApplication(context.Background(), &models.Application{ID: "app-1", Status: models.StatusPending})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeIndexingFailed, apperrors.CodeOf(err))
	assert.True(t, apperrors.IsRetryable(err))
}

func TestSearch_BuildsQueryAndDecodesHits(t *testing.T) {
	idx, fake := newIndex(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"took": 3,
			"hits": {
				"total": {"value": 1, "relation": "eq"},
				"hits": [{"_id": "app-1", "_source": {"application_id": "app-1", "job_title": "Backend Engineer", "status": "accepted"}}]
			}
		}`))
	})

	res, err := idx.Search(context.Background(), Query{Text: "backend", Status: models.StatusAccepted, OrganizationID: "org-1", Size: 500})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Total)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "app-1", res.Items[0].ApplicationID)

	require.Len(t, fake.requests, 1)
	assert.Equal(t, "/applications/_search", fake.requests[0].path)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(fake.requests[0].body, &body))
	boolQuery := body["query"].(map[string]interface{})["bool"].(map[string]interface{})
	filters := boolQuery["filter"].([]interface{})
	require.Len(t, filters, 2)
	assert.Equal(t, map[string]interface{}{"term": map[string]interface{}{"status": "accepted"}}, filters[0])
	assert.Equal(t, map[string]interface{}{"term": map[string]interface{}{"organization_id": "org-1"}}, filters[1])
}

func TestSearch_RejectsUnknownStatus(t *testing.T) {
	idx, fake := newIndex(t, func(w http.ResponseWriter, r *http.Request) {})

	_, err := idx.Search(context.Background(), Query{Status: "hired"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Empty(t, fake.requests)
}

func TestEnsureIndex(t *testing.T) {
	t.Run("creates missing index", func(t *testing.T) {
		idx, fake := newIndex(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodHead {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			_, _ = w.Write([]byte(`{"acknowledged":true}`))
		})

		require.NoError(t, idx.EnsureIndex(context.Background()))
		require.Len(t, fake.requests, 2)
		assert.Equal(t, http.MethodPut, fake.requests[1].method)
		assert.Contains(t, string(fake.requests[1].body), `"job_title"`)
	})

	t.Run("existing index is left alone", func(t *testing.T) {
		idx, fake := newIndex(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})

		require.NoError(t, idx.EnsureIndex(context.Background()))
		assert.Len(t, fake.requests, 1)
	})
}
