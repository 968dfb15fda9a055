package hierarchy

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeFetcher struct {
	mu      sync.Mutex
	calls   int32
	block   chan struct{}
	nodes   map[string][]Node
	failFor map[string]error
}

func (f *fakeFetcher) Children(ctx context.Context, parentID, sessionID string) ([]Node, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failFor[parentID]; ok {
		return nil, err
	}
	return f.nodes[parentID], nil
}

func nodesFor(parentID string, n int) []Node {
	out := make([]Node, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, Node{ID: parentID + "-child", ParentID: parentID})
	}
	return out
}

func TestFetchChildrenCachesByParent(t *testing.T) {
	f := &fakeFetcher{nodes: map[string][]Node{"5": nodesFor("5", 2)}}
	s := NewStore(f, nil, zap.NewNop())

	first, err := s.FetchChildren(context.Background(), "5", "sess", false)
	require.NoError(t, err)
	assert.Len(t, first, 2)

	second, err := s.FetchChildren(context.Background(), "5", "sess", false)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&f.calls), "cache hit must not refetch")
}

func TestFetchChildrenForceRefetches(t *testing.T) {
	f := &fakeFetcher{nodes: map[string][]Node{"5": nodesFor("5", 1)}}
	s := NewStore(f, nil, zap.NewNop())

	_, err := s.FetchChildren(context.Background(), "5", "sess", false)
	require.NoError(t, err)
	_, err = s.FetchChildren(context.Background(), "5", "sess", true)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&f.calls))
}

// Two concurrent expands of the same node issue exactly one upstream call.
func TestFetchChildrenDeduplicatesConcurrentCallers(t *testing.T) {
	f := &fakeFetcher{
		nodes: map[string][]Node{"5": nodesFor("5", 3)},
		block: make(chan struct{}),
	}
	s := NewStore(f, nil, zap.NewNop())

	results := make(chan []Node, 2)
	errs := make(chan error, 2)
	var started sync.WaitGroup
	started.Add(2)
	for i := 0; i < 2; i++ {
		go func() {
			started.Done()
			nodes, err := s.FetchChildren(context.Background(), "5", "sess", false)
			results <- nodes
			errs <- err
		}()
	}
	started.Wait()
	close(f.block)

	for i := 0; i < 2; i++ {
		require.NoError(t, <-errs)
		assert.Len(t, <-results, 3)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&f.calls))
}

// Siblings load independently: distinct keys may be in flight at once.
func TestFetchChildrenSiblingsConcurrently(t *testing.T) {
	f := &fakeFetcher{nodes: map[string][]Node{
		"a": nodesFor("a", 1),
		"b": nodesFor("b", 2),
	}}
	s := NewStore(f, nil, zap.NewNop())

	var wg sync.WaitGroup
	for _, parent := range []string{"a", "b"} {
		parent := parent
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.FetchChildren(context.Background(), parent, "sess", false)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	a, ok := s.Cached("a")
	require.True(t, ok)
	assert.Len(t, a, 1)
	b, ok := s.Cached("b")
	require.True(t, ok)
	assert.Len(t, b, 2)
}

func TestFetchChildrenFailureUnlocksKey(t *testing.T) {
	f := &fakeFetcher{
		nodes:   map[string][]Node{"5": nodesFor("5", 1)},
		failFor: map[string]error{"5": errors.New("upstream down")},
	}
	s := NewStore(f, nil, zap.NewNop())

	_, err := s.FetchChildren(context.Background(), "5", "sess", false)
	require.Error(t, err)
	_, cached := s.Cached("5")
	assert.False(t, cached)

	// Key must not be stuck loading: a retry issues a fresh call.
	f.mu.Lock()
	delete(f.failFor, "5")
	f.mu.Unlock()

	nodes, err := s.FetchChildren(context.Background(), "5", "sess", false)
	require.NoError(t, err)
	assert.Len(t, nodes, 1)
	assert.Equal(t, int32(2), atomic.LoadInt32(&f.calls))
}

func TestInvalidateAndReset(t *testing.T) {
	f := &fakeFetcher{nodes: map[string][]Node{
		"a": nodesFor("a", 1),
		"b": nodesFor("b", 1),
	}}
	s := NewStore(f, nil, zap.NewNop())
	ctx := context.Background()

	_, err := s.FetchChildren(ctx, "a", "sess", false)
	require.NoError(t, err)
	_, err = s.FetchChildren(ctx, "b", "sess", false)
	require.NoError(t, err)

	s.Invalidate(ctx, "a")
	_, ok := s.Cached("a")
	assert.False(t, ok)
	_, ok = s.Cached("b")
	assert.True(t, ok)

	s.Reset(ctx)
	_, ok = s.Cached("b")
	assert.False(t, ok)
}
