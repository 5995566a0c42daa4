package view

import (
	"context"
	"sync"

	"github.com/vibetube/vibetube/internal/backend"
)

type fakeBackend struct {
	mu sync.Mutex

	videos  []backend.Video
	listErr error
	queries []string

	video  *backend.Video
	getErr error

	created   *backend.Video
	createErr error
	uploads   []backend.Upload
}

func (f *fakeBackend) ListVideos(ctx context.Context, query string) ([]backend.Video, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]backend.Video(nil), f.videos...), nil
}

func (f *fakeBackend) GetVideo(ctx context.Context, id string) (*backend.Video, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.video == nil {
		return nil, backend.ErrNotFound
	}
	v := *f.video
	return &v, nil
}

func (f *fakeBackend) CreateVideo(ctx context.Context, u backend.Upload) (*backend.Video, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, u)
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.created, nil
}

func (f *fakeBackend) listQueries() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

func (f *fakeBackend) resetQueries() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = nil
}
