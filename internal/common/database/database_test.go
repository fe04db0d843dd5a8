package database

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hiring-workers/internal/common/config"
)

func TestRedis_PingAndClose(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	c, err := NewRedis(config.RedisConfig{Address: mr.Addr()}, "")
	require.NoError(t, err)
	require.NoError(t, c.Ping(context.Background()))
	require.NoError(t, c.Close())
}

func TestRedis_RequiresAddress(t *testing.T) {
	_, err := NewRedis(config.RedisConfig{}, "hiring-workers")
	assert.Error(t, err)

	_, err = NewRedis(config.RedisConfig{Address: "localhost:6379", DB: 16}, "hiring-workers")
	assert.ErrorContains(t, err, "out of range")
}

func TestElasticsearch_Ping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, err := NewElasticsearch(config.ElasticsearchConfig{URL: srv.URL})
	require.NoError(t, err)
	assert.NoError(t, c.Ping(context.Background()))
}

func TestPostgres_OpenIsLazy(t *testing.T) {
	c, err := NewPostgres(config.PostgresConfig{Host: "127.0.0.1", Port: 1, User: "u", Password: "p", Database: "d", SSLMode: "disable", MaxConnections: 2, MaxIdle: 1})
	require.NoError(t, err)
	assert.NotNil(t, c.DB)
	assert.Equal(t, 2, c.DB.Stats().MaxOpenConnections)

	reg := prometheus.NewRegistry()
	require.NoError(t, c.RegisterMetrics(reg, "hiring"))
	families, err := reg.Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, mf := range families {
		names[mf.GetName()] = true
	}
	assert.True(t, names["go_sql_max_open_connections"])
	assert.NoError(t, c.Close())
}

func TestElasticsearch_RequiresAddress(t *testing.T) {
	_, err := NewElasticsearch(config.ElasticsearchConfig{})
	assert.Error(t, err)
}
