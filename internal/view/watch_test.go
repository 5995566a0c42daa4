package view

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vibetube/vibetube/internal/backend"
)

func TestWatch_StartsLoading(t *testing.T) {
	state := NewWatch(&fakeBackend{}).State()

	assert.True(t, state.Loading)
	assert.False(t, state.NotFound())
}

func TestWatch_Load(t *testing.T) {
	tests := []struct {
		name            string
		fake            *fakeBackend
		wantTitle       string
		wantNotFound    bool
		wantUnavailable bool
	}{
		{
			name:      "found",
			fake:      &fakeBackend{video: &backend.Video{ID: "1", Filename: "a.mp4", Title: "Cat", Views: 5}},
			wantTitle: "Cat",
		},
		{
			name:         "missing",
			fake:         &fakeBackend{},
			wantNotFound: true,
		},
		{
			name:            "backend failure",
			fake:            &fakeBackend{getErr: errors.New("connection refused")},
			wantNotFound:    true,
			wantUnavailable: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWatch(tt.fake)
			state := w.Load(context.Background(), "1")

			assert.False(t, state.Loading)
			assert.Equal(t, tt.wantNotFound, state.NotFound())
			assert.Equal(t, tt.wantUnavailable, state.Unavailable)
			if tt.wantTitle != "" {
				assert.Equal(t, tt.wantTitle, state.Video.Title)
			}
			assert.Equal(t, state, w.State())
		})
	}
}

func TestWatch_LoadIsIdempotent(t *testing.T) {
	fake := &fakeBackend{video: &backend.Video{ID: "1", Filename: "a.mp4", Title: "Cat", Tags: []string{"fun"}}}

	first := NewWatch(fake).Load(context.Background(), "1")
	second := NewWatch(fake).Load(context.Background(), "1")

	assert.Equal(t, first, second)
}
