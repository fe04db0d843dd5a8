// Package search maintains the Elasticsearch read model of applications used for
// reporting queries.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	apperrors "hiring-workers/internal/common/errors"
	"hiring-workers/internal/common/logger"
	"hiring-workers/internal/directory"
	"hiring-workers/internal/models"
)

const (
	defaultSize = 20
	maxSize     = 100
)

const indexMapping = `{
	"mappings": {
		"properties": {
			"application_id":    {"type": "keyword"},
			"job_id":            {"type": "keyword"},
			"job_title":         {"type": "text"},
			"candidate_id":      {"type": "keyword"},
			"candidate_name":    {"type": "text"},
			"organization_id":   {"type": "keyword"},
			"organization_name": {"type": "text"},
			"status":            {"type": "keyword"},
			"status_label":      {"type": "keyword"},
			"created_at":        {"type": "date"},
			"updated_at":        {"type": "date"}
		}
	}
}`

// Document is the indexed projection of an application.
type Document struct {
	ApplicationID    string    `json:"application_id"`
	JobID            string    `json:"job_id"`
	JobTitle         string    `json:"job_title"`
	CandidateID      string    `json:"candidate_id"`
	CandidateName    string    `json:"candidate_name"`
	OrganizationID   string    `json:"organization_id"`
	OrganizationName string    `json:"organization_name"`
	Status           string    `json:"status"`
	StatusLabel      string    `json:"status_label"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type Query struct {
	Text           string
	Status         models.Status
	OrganizationID string
	CandidateID    string
	From           int
	Size           int
}

type Result struct {
	Total int64      `json:"total"`
	Items []Document `json:"items"`
}

type Index struct {
	client *elasticsearch.Client
	name   string
	dir    directory.Directory
	logger logger.Logger
}

func NewIndex(client *elasticsearch.Client, name string, dir directory.Directory, log logger.Logger) *Index {
	return &Index{
		client: client,
		name:   name,
		dir:    dir,
		logger: log.WithFields(map[string]interface{}{"component": "search", "index": name}),
	}
}

// EnsureIndex creates the index with its mapping when it does not exist yet.
func (i *Index) EnsureIndex(ctx context.Context) error {
	res, err := i.client.Indices.Exists([]string{i.name}, i.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("check index: %w", err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("check index: %s", res.Status())
	}

	res, err = i.client.Indices.Create(i.name,
		i.client.Indices.Create.WithContext(ctx),
		i.client.Indices.Create.WithBody(strings.NewReader(indexMapping)),
	)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("create index: %s", res.String())
	}
	i.logger.Info("search index created", nil)
	return nil
}

// IndexApplication upserts the projection of app.
func (i *Index) IndexApplication(ctx context.Context, app *models.Application) error {
	doc := i.document(ctx, app)
	body, err := json.Marshal(doc)
	if err != nil {
		return apperrors.NewIndexingFailedError(app.ID, err)
	}

	req := esapi.IndexRequest{
		Index:      i.name,
		DocumentID: app.ID,
		Body:       bytes.NewReader(body),
	}
	res, err := req.Do(ctx, i.client)
	if err != nil {
		return apperrors.NewIndexingFailedError(app.ID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return apperrors.NewIndexingFailedError(app.ID, fmt.Errorf("index request: %s", res.Status()))
	}
	return nil
}

func (i *Index) document(ctx context.Context, app *models.Application) Document {
	doc := Document{
		ApplicationID:    app.ID,
		JobID:            app.JobID,
		JobTitle:         app.JobID,
		CandidateID:      app.CandidateID,
		CandidateName:    app.CandidateID,
		OrganizationID:   app.OrganizationID,
		OrganizationName: app.OrganizationID,
		Status:           string(app.Status),
		StatusLabel:      app.Status.Label(),
		CreatedAt:        app.CreatedAt,
		UpdatedAt:        app.UpdatedAt,
	}
	if job, err := i.dir.GetJob(ctx, app.JobID); err == nil {
		doc.JobTitle = job.Title
	}
	if org, err := i.dir.GetOrganization(ctx, app.OrganizationID); err == nil {
		doc.OrganizationName = org.Name
	}
	if p, err := i.dir.GetCandidateProfile(ctx, app.CandidateID); err == nil && p.DisplayName != "" {
		doc.CandidateName = p.DisplayName
	}
	return doc
}

// Search runs q against the index, newest applications first.
func (i *Index) Search(ctx context.Context, q Query) (*Result, error) {
	if q.Status != "" && !q.Status.Valid() {
		return nil, apperrors.NewValidationError("status", "unknown status "+string(q.Status))
	}
	if q.Size <= 0 {
		q.Size = defaultSize
	}
	if q.Size > maxSize {
		q.Size = maxSize
	}
	if q.From < 0 {
		q.From = 0
	}

	body, err := json.Marshal(buildQuery(q))
	if err != nil {
		return nil, err
	}

	req := esapi.SearchRequest{
		Index: []string{i.name},
		Body:  bytes.NewReader(body),
		From:  &q.From,
		Size:  &q.Size,
	}
	res, err := req.Do(ctx, i.client)
	if err != nil {
		return nil, apperrors.NewDependencyUnavailableError("elasticsearch", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		raw, _ := io.ReadAll(res.Body)
		return nil, apperrors.NewDependencyUnavailableError("elasticsearch",
			fmt.Errorf("search failed: %s %s", res.Status(), raw))
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source Document `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	out := &Result{Total: r.Hits.Total.Value, Items: make([]Document, 0, len(r.Hits.Hits))}
	for _, h := range r.Hits.Hits {
		out.Items = append(out.Items, h.Source)
	}
	return out, nil
}

func buildQuery(q Query) map[string]interface{} {
	must := []interface{}{}
	filter := []interface{}{}

	if text := strings.TrimSpace(q.Text); text != "" {
		must = append(must, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  text,
				"fields": []string{"job_title^3", "organization_name^2", "candidate_name"},
				"type":   "best_fields",
			},
		})
	} else {
		must = append(must, map[string]interface{}{"match_all": map[string]interface{}{}})
	}

	terms := [][2]string{
		{"status", string(q.Status)},
		{"organization_id", q.OrganizationID},
		{"candidate_id", q.CandidateID},
	}
	for _, t := range terms {
		if t[1] != "" {
			filter = append(filter, map[string]interface{}{
				"term": map[string]interface{}{t[0]: t[1]},
			})
		}
	}

	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must":   must,
				"filter": filter,
			},
		},
		"sort": []interface{}{
			map[string]interface{}{"created_at": map[string]interface{}{"order": "desc"}},
		},
	}
}
