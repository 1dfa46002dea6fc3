package registry

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRegistry_Shipped(t *testing.T) {
	reg, err := LoadRegistry("../../configs/activity-registry.json")
	require.NoError(t, err)
	require.NoError(t, reg.Validate())

	for _, taskType := range []string{"parse-filter-criteria", "filter-listings", "clear-filters", "render-listings"} {
		a, ok := reg.Find(taskType)
		require.True(t, ok, taskType)
		assert.NotEmpty(t, a.InputSchema, taskType)
	}

	_, ok := reg.Find("send-email")
	assert.False(t, ok)
}

func TestValidate(t *testing.T) {
	valid := func() Activity {
		return Activity{ID: "filter-listings", DisplayName: "Filter Listings", Category: "listing", TaskType: "filter-listings"}
	}

	tests := []struct {
		name    string
		mutate  func(r *ActivityRegistry)
		wantErr string
	}{
		{"ok", func(r *ActivityRegistry) {}, ""},
		{"empty", func(r *ActivityRegistry) { r.Activities = nil }, "no activities"},
		{"missing id", func(r *ActivityRegistry) { r.Activities[0].ID = "" }, "ID"},
		{"missing task type", func(r *ActivityRegistry) { r.Activities[0].TaskType = "" }, "TaskType"},
		{"duplicate", func(r *ActivityRegistry) { r.Activities = append(r.Activities, valid()) }, "duplicate"},
		{"bad timeout", func(r *ActivityRegistry) { r.Activities[0].Timeout = "soon" }, "timeout"},
		{"bad schema", func(r *ActivityRegistry) {
			r.Activities[0].InputSchema = map[string]interface{}{"type": 42}
		}, "inputSchema"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := &ActivityRegistry{Activities: []Activity{valid()}}
			tt.mutate(reg)
			err := reg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSaveRegistry_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "registry.json")
	reg := &ActivityRegistry{Version: "1.0.0", Activities: []Activity{{ID: "a", DisplayName: "A", Category: "listing", TaskType: "a"}}}

	require.NoError(t, SaveRegistry(reg, path))
	loaded, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.Equal(t, reg.Activities, loaded.Activities)
	assert.NotEmpty(t, loaded.LastUpdated)
}

func TestActivity_TimeoutDuration(t *testing.T) {
	a := Activity{ID: "filter-listings", Timeout: "30s"}

	d, err := a.TimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, d)

	d, err = Activity{}.TimeoutDuration()
	require.NoError(t, err)
	assert.Zero(t, d)
}
