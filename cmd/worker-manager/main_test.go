package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hiring-workers/internal/common/config"
	"hiring-workers/internal/notification"
	"hiring-workers/internal/store/memory"
)

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

func TestServeMux_HealthAndMetrics(t *testing.T) {
	mux := newServeMux(nil, okPinger{}, okPinger{})

	for _, path := range []string{"/health", "/metrics"} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestBuildChannels(t *testing.T) {
	cfg := &config.Config{}
	ch, err := buildChannels(context.Background(), cfg, memory.New())
	require.NoError(t, err)
	assert.Nil(t, ch)

	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")
	cfg.Notifications.AWS.Region = "eu-west-1"
	cfg.Notifications.Email.Enabled = true
	cfg.Notifications.SMS.Enabled = true
	ch, err = buildChannels(context.Background(), cfg, memory.New())
	require.NoError(t, err)
	multi, ok := ch.(notification.MultiChannel)
	require.True(t, ok)
	assert.Len(t, multi, 2)
}
