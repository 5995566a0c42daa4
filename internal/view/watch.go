package view

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/vibetube/vibetube/internal/backend"
)

// Getter fetches a single video by id.
type Getter interface {
	GetVideo(ctx context.Context, id string) (*backend.Video, error)
}

// WatchState is a point-in-time copy of the watch view. A nil Video after
// loading means "not found"; Unavailable additionally marks that the fetch
// itself failed rather than the backend reporting no such video.
type WatchState struct {
	Video       *backend.Video
	Loading     bool
	Unavailable bool
}

func (s WatchState) NotFound() bool {
	return !s.Loading && s.Video == nil
}

// Watch is the watch view model. It starts out loading.
type Watch struct {
	getter Getter

	mu    sync.Mutex
	state WatchState
}

func NewWatch(getter Getter) *Watch {
	return &Watch{getter: getter, state: WatchState{Loading: true}}
}

// Load fetches the video with the given id, taken verbatim from the path.
// Loading is cleared whatever the outcome.
func (w *Watch) Load(ctx context.Context, id string) WatchState {
	w.mu.Lock()
	w.state.Loading = true
	w.mu.Unlock()

	video, err := w.getter.GetVideo(ctx, id)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.state = WatchState{Video: video}
	if err != nil {
		w.state.Video = nil
		if !errors.Is(err, backend.ErrNotFound) {
			slog.Error("failed to fetch video", "id", id, "error", err)
			w.state.Unavailable = true
		}
	}
	return w.state
}

func (w *Watch) State() WatchState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}
