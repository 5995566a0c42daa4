package view

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vibetube/vibetube/internal/backend"
)

func TestFeed_StartsEmptyAndIdle(t *testing.T) {
	state := NewFeed(&fakeBackend{}).State()

	assert.NotNil(t, state.Videos)
	assert.Empty(t, state.Videos)
	assert.False(t, state.Loading)
	assert.Empty(t, state.Query)
}

func TestFeed_RefreshReplacesListWholesale(t *testing.T) {
	fake := &fakeBackend{videos: []backend.Video{{ID: "1", Filename: "a.mp4"}, {ID: "2", Filename: "b.mp4"}}}
	feed := NewFeed(fake)

	require.NoError(t, feed.Refresh(context.Background(), ""))
	require.Len(t, feed.State().Videos, 2)

	fake.videos = []backend.Video{{ID: "3", Filename: "c.mp4"}}
	require.NoError(t, feed.Refresh(context.Background(), "c"))

	state := feed.State()
	assert.Equal(t, []backend.Video{{ID: "3", Filename: "c.mp4"}}, state.Videos)
	assert.Equal(t, "c", state.Query)
	assert.False(t, state.Loading)
	assert.Equal(t, []string{"", "c"}, fake.listQueries())
}

func TestFeed_FailedRefreshKeepsStaleList(t *testing.T) {
	fake := &fakeBackend{videos: []backend.Video{{ID: "1", Filename: "a.mp4", Title: "Cat"}}}
	feed := NewFeed(fake)
	require.NoError(t, feed.Refresh(context.Background(), ""))

	fake.listErr = errors.New("connection refused")
	err := feed.Refresh(context.Background(), "dogs")

	require.Error(t, err)
	state := feed.State()
	require.Len(t, state.Videos, 1, "stale list must stay on screen after a failed search")
	assert.Equal(t, "Cat", state.Videos[0].Title)
	assert.False(t, state.Loading, "loading must clear after a failure")
	assert.True(t, state.Stale)

	fake.listErr = nil
	require.NoError(t, feed.Refresh(context.Background(), ""))
	assert.False(t, feed.State().Stale)
}

func TestFeed_StateIsACopy(t *testing.T) {
	feed := NewFeed(&fakeBackend{videos: []backend.Video{{ID: "1", Filename: "a.mp4"}}})
	require.NoError(t, feed.Refresh(context.Background(), ""))

	state := feed.State()
	state.Videos[0].Title = "mutated"

	assert.Empty(t, feed.State().Videos[0].Title)
}

// gatedLister answers each query only when its gate is released.
type gatedLister struct {
	mu      sync.Mutex
	gates   map[string]chan struct{}
	started chan string
}

func newGatedLister(queries ...string) *gatedLister {
	g := &gatedLister{gates: map[string]chan struct{}{}, started: make(chan string, len(queries))}
	for _, q := range queries {
		g.gates[q] = make(chan struct{})
	}
	return g
}

func (g *gatedLister) ListVideos(ctx context.Context, query string) ([]backend.Video, error) {
	g.mu.Lock()
	gate := g.gates[query]
	g.mu.Unlock()
	g.started <- query
	<-gate
	return []backend.Video{{ID: backend.ID(query), Filename: query + ".mp4"}}, nil
}

func TestFeed_OutOfOrderResponsesDoNotOverwriteNewerSearch(t *testing.T) {
	lister := newGatedLister("slow", "fast")
	feed := NewFeed(lister)

	slowDone := make(chan error, 1)
	go func() { slowDone <- feed.Refresh(context.Background(), "slow") }()
	require.Equal(t, "slow", <-lister.started)

	fastDone := make(chan error, 1)
	go func() { fastDone <- feed.Refresh(context.Background(), "fast") }()
	require.Equal(t, "fast", <-lister.started)

	assert.True(t, feed.State().Loading)

	close(lister.gates["fast"])
	require.NoError(t, <-fastDone)
	assert.Equal(t, backend.ID("fast"), feed.State().Videos[0].ID)
	assert.True(t, feed.State().Loading, "the slow search is still outstanding")

	close(lister.gates["slow"])
	select {
	case err := <-slowDone:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("slow refresh did not return")
	}

	state := feed.State()
	assert.Equal(t, backend.ID("fast"), state.Videos[0].ID, "superseded response must be discarded")
	assert.Equal(t, "fast", state.Query)
	assert.False(t, state.Loading)
}
