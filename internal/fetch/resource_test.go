package fetch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Value string
}

func TestFetchSuccess(t *testing.T) {
	r := NewResource[payload]()

	err := r.Fetch(context.Background(), func(ctx context.Context) (*payload, error) {
		return &payload{Value: "first"}, nil
	})
	require.NoError(t, err)

	st := r.State()
	require.NotNil(t, st.Data)
	assert.Equal(t, "first", st.Data.Value)
	assert.False(t, st.Loading)
	assert.Empty(t, st.Err)
}

func TestFetchFailureKeepsData(t *testing.T) {
	r := NewResource[payload]()

	require.NoError(t, r.Fetch(context.Background(), func(ctx context.Context) (*payload, error) {
		return &payload{Value: "kept"}, nil
	}))

	err := r.Fetch(context.Background(), func(ctx context.Context) (*payload, error) {
		return nil, errors.New("upstream exploded")
	})
	require.Error(t, err)

	st := r.State()
	assert.Equal(t, "upstream exploded", st.Err)
	assert.False(t, st.Loading)
	require.NotNil(t, st.Data)
	assert.Equal(t, "kept", st.Data.Value, "failed fetch must leave data unchanged")
}

// Fetch A is slow; fetch B supersedes it and finishes first. When A finally
// resolves, the state must reflect B only.
func TestFetchSupersedeLastIssuedWins(t *testing.T) {
	r := NewResource[payload]()

	aStarted := make(chan struct{})
	aRelease := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = r.Fetch(context.Background(), func(ctx context.Context) (*payload, error) {
			close(aStarted)
			select {
			case <-aRelease:
				return &payload{Value: "A"}, nil
			case <-ctx.Done():
				// Keep going anyway to model a transport that ignores the
				// abort and still delivers a late payload.
				<-aRelease
				return &payload{Value: "A"}, nil
			}
		})
	}()

	<-aStarted
	require.NoError(t, r.Fetch(context.Background(), func(ctx context.Context) (*payload, error) {
		return &payload{Value: "B"}, nil
	}))

	close(aRelease)
	wg.Wait()

	st := r.State()
	require.NotNil(t, st.Data)
	assert.Equal(t, "B", st.Data.Value)
	assert.False(t, st.Loading)
	assert.Empty(t, st.Err)
}

// A superseded call that fails must not surface its error either.
func TestSupersededFailureIsSwallowed(t *testing.T) {
	r := NewResource[payload]()

	aStarted := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = r.Fetch(context.Background(), func(ctx context.Context) (*payload, error) {
			close(aStarted)
			<-ctx.Done()
			return nil, ctx.Err()
		})
	}()

	<-aStarted
	require.NoError(t, r.Fetch(context.Background(), func(ctx context.Context) (*payload, error) {
		return &payload{Value: "B"}, nil
	}))
	wg.Wait()

	st := r.State()
	assert.Empty(t, st.Err)
	require.NotNil(t, st.Data)
	assert.Equal(t, "B", st.Data.Value)
}

func TestCancelledWithoutSuccessorResetsLoading(t *testing.T) {
	r := NewResource[payload]()

	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{})
	go func() {
		<-started
		cancel()
	}()

	err := r.Fetch(ctx, func(ctx context.Context) (*payload, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	})
	require.NoError(t, err, "cancellation is not a failure")

	st := r.State()
	assert.False(t, st.Loading)
	assert.Empty(t, st.Err)
	assert.Nil(t, st.Data)
}

func TestClearCancelsInFlight(t *testing.T) {
	r := NewResource[payload]()

	started := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = r.Fetch(context.Background(), func(ctx context.Context) (*payload, error) {
			close(started)
			<-ctx.Done()
			return nil, ctx.Err()
		})
	}()

	<-started
	r.Clear()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("in-flight fetch was not cancelled by Clear")
	}

	st := r.State()
	assert.Nil(t, st.Data)
	assert.False(t, st.Loading)
	assert.Empty(t, st.Err)
	assert.Equal(t, 0, st.Page)
	assert.Equal(t, DefaultPageSize, st.PageSize)
}

func TestPaginationSetters(t *testing.T) {
	r := NewResource[payload]()

	r.SetPage(4)
	assert.Equal(t, 4, r.State().Page)

	r.SetPageSize(100)
	st := r.State()
	assert.Equal(t, 100, st.PageSize)
	assert.Equal(t, 0, st.Page, "page size change rewinds to first page")
}
