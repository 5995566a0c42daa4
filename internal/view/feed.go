// Package view holds the state of the feed, upload and watch views and the
// transitions between those states. Rendering lives elsewhere; everything
// here can be driven without a browser.
package view

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/vibetube/vibetube/internal/backend"
)

// Lister fetches the video collection.
type Lister interface {
	ListVideos(ctx context.Context, query string) ([]backend.Video, error)
}

// FeedState is a point-in-time copy of the feed view. Stale is set when the
// latest refresh failed and Videos is whatever was shown before it.
type FeedState struct {
	Videos  []backend.Video
	Loading bool
	Query   string
	Stale   bool
}

// Feed is the feed view model. The video list is replaced wholesale by each
// successful refresh and never merged. Each refresh carries a sequence number;
// a response is applied only if no newer refresh was issued after it.
type Feed struct {
	lister Lister

	mu      sync.Mutex
	videos  []backend.Video
	query   string
	pending int
	issued  uint64
	stale   bool
}

func NewFeed(lister Lister) *Feed {
	return &Feed{lister: lister, videos: []backend.Video{}}
}

// Refresh fetches the list for query. On failure the error is logged and
// returned, and the current list stays as it was. Loading is cleared once no
// refresh is outstanding, whatever the outcome.
func (f *Feed) Refresh(ctx context.Context, query string) error {
	f.mu.Lock()
	f.issued++
	seq := f.issued
	f.pending++
	f.query = query
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.pending--
		f.mu.Unlock()
	}()

	videos, err := f.lister.ListVideos(ctx, query)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		slog.Error("failed to fetch videos", "query", query, "error", err)
		if seq == f.issued {
			f.stale = true
		}
		return err
	}
	if seq != f.issued {
		slog.Debug("discarding superseded video list", "query", query, "seq", seq, "latest", f.issued)
		return nil
	}
	f.videos = videos
	f.stale = false
	return nil
}

func (f *Feed) State() FeedState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return FeedState{
		Videos:  slices.Clone(f.videos),
		Loading: f.pending > 0,
		Query:   f.query,
		Stale:   f.stale,
	}
}
