package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidTransition(t *testing.T) {
	tests := []struct {
		name string
		from VideoStatus
		to   VideoStatus
		want bool
	}{
		{"uploading to queued", StatusUploading, StatusQueued, true},
		{"queued to processing", StatusQueued, StatusProcessing, true},
		{"processing to completed", StatusProcessing, StatusCompleted, true},
		{"processing to failed", StatusProcessing, StatusFailed, true},
		{"no skipping queued", StatusUploading, StatusProcessing, false},
		{"no skipping processing", StatusQueued, StatusCompleted, false},
		{"completed is final", StatusCompleted, StatusProcessing, false},
		{"failed is final", StatusFailed, StatusQueued, false},
		{"no backwards edge", StatusProcessing, StatusQueued, false},
		{"no self loop", StatusQueued, StatusQueued, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidTransition(tt.from, tt.to))
		})
	}
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusFailed.IsTerminal())
	assert.False(t, StatusUploading.IsTerminal())
	assert.False(t, StatusQueued.IsTerminal())
	assert.False(t, StatusProcessing.IsTerminal())
}

func TestSnapshotEqual(t *testing.T) {
	base := StatusSnapshot{VideoID: 1, Status: StatusProcessing, Step: "transcoding", Progress: 40}

	assert.True(t, base.Equal(base))

	changed := base
	changed.Progress = 55
	assert.False(t, base.Equal(changed))

	changed = base
	changed.Step = "transcribing"
	assert.False(t, base.Equal(changed))

	changed = base
	changed.Error = "boom"
	assert.False(t, base.Equal(changed))
}
