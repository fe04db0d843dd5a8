package registry

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_CoversEveryTaskType(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)
	require.NoError(t, reg.Validate())

	for _, taskType := range []string{
		"submit-application",
		"transition-application",
		"approve-application",
		"list-applications",
		"search-applications",
		"evaluate-badges",
		"mark-notification-read",
	} {
		a, ok := reg.Find(taskType)
		require.True(t, ok, taskType)
		assert.NotEmpty(t, a.InputSchema, taskType)
	}

	_, ok := reg.Find("send-fax")
	assert.False(t, ok)
}

func TestValidate_RejectsDuplicatesAndBadSchemas(t *testing.T) {
	dup := &ActivityRegistry{Activities: []Activity{
		{ID: "a", DisplayName: "A", TaskType: "x"},
		{ID: "b", DisplayName: "B", TaskType: "x"},
	}}
	assert.ErrorContains(t, dup.Validate(), "duplicate task type")

	bad := &ActivityRegistry{Activities: []Activity{
		{ID: "a", DisplayName: "A", TaskType: "x", InputSchema: map[string]interface{}{"type": 42}},
	}}
	assert.Error(t, bad.Validate())

	missing := &ActivityRegistry{Activities: []Activity{{ID: "a"}}}
	assert.Error(t, missing.Validate())
}

func TestSaveAndLoad(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "registry.json")
	require.NoError(t, SaveRegistry(path, reg))

	loaded, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.Equal(t, len(reg.Activities), len(loaded.Activities))
	assert.Equal(t, reg.Version, loaded.Version)
}

func TestActivity_Check(t *testing.T) {
	base := Activity{ID: "a", DisplayName: "A", TaskType: "x"}

	tests := []struct {
		name    string
		mutate  func(a *Activity)
		wantErr string
	}{
		{"minimal entry", func(*Activity) {}, ""},
		{"known status and timeout", func(a *Activity) { a.ImplementationStatus = StatusVerified; a.Timeout = "750ms" }, ""},
		{"unknown status", func(a *Activity) { a.ImplementationStatus = "shipped" }, "unknown implementation status"},
		{"unparseable timeout", func(a *Activity) { a.Timeout = "ten seconds" }, "invalid timeout"},
		{"negative timeout", func(a *Activity) { a.Timeout = "-1s" }, "negative timeout"},
		{"negative retries", func(a *Activity) { a.Retries = -1 }, "retries"},
		{"bad output schema", func(a *Activity) { a.OutputSchema = map[string]interface{}{"type": 42} }, "invalid output schema"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := base
			tt.mutate(&a)
			err := a.Check()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestActivity_TimeoutDuration(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)

	a, ok := reg.Find("list-applications")
	require.True(t, ok)
	d, err := a.TimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, d)

	d, err = Activity{}.TimeoutDuration()
	require.NoError(t, err)
	assert.Zero(t, d)
}
