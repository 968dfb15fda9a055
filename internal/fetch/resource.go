package fetch

import (
	"context"
	"errors"
	"sync"
)

// ============================================================================
// Async resource container
// ============================================================================
//
// Every dashboard data domain (transaction search, summaries, disputes,
// fundings) holds its result, loading flag and error in one of these. A new
// Fetch cancels whatever is still in flight for the domain, so the last
// issued fetch always wins: a stale completion can never overwrite state set
// by a later call.

const DefaultPageSize = 25

// State is a point-in-time snapshot of a resource. Data is nil until the
// first successful fetch.
type State[T any] struct {
	Data     *T     `json:"data"`
	Loading  bool   `json:"loading"`
	Err      string `json:"error,omitempty"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
}

// Func loads the resource. Implementations must honor ctx cancellation and
// return an error wrapping context.Canceled when aborted.
type Func[T any] func(ctx context.Context) (*T, error)

type Resource[T any] struct {
	mu     sync.Mutex
	state  State[T]
	gen    uint64
	cancel context.CancelFunc
}

func NewResource[T any]() *Resource[T] {
	return &Resource[T]{
		state: State[T]{PageSize: DefaultPageSize},
	}
}

// Fetch supersedes any in-flight call, marks the resource loading, and runs
// fn. On success the result is stored; a cancelled call is a no-op for state
// owned by the superseding call; any other failure is recorded as the
// resource error. The returned error is nil for success and cancellation,
// so background callers can ignore it while awaited callers still see real
// failures.
func (r *Resource[T]) Fetch(ctx context.Context, fn Func[T]) error {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
	}
	callCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.gen++
	gen := r.gen
	r.state.Loading = true
	r.state.Err = ""
	r.mu.Unlock()

	data, err := fn(callCtx)

	r.mu.Lock()
	defer r.mu.Unlock()
	if gen != r.gen {
		// Superseded; the newer call owns the state now.
		cancel()
		return nil
	}
	r.cancel = nil
	cancel()

	switch {
	case err == nil:
		r.state.Data = data
		r.state.Loading = false
		r.state.Err = ""
		return nil
	case errors.Is(err, context.Canceled):
		// Cancelled without a superseding fetch (caller context or Clear):
		// just drop the loading flag.
		r.state.Loading = false
		return nil
	default:
		r.state.Err = err.Error()
		r.state.Loading = false
		return err
	}
}

// State returns a copy of the current state.
func (r *Resource[T]) State() State[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Resource[T]) SetPage(page int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.Page = page
}

// SetPageSize changes the page size and rewinds to the first page.
func (r *Resource[T]) SetPageSize(size int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.PageSize = size
	r.state.Page = 0
}

// Clear cancels any in-flight fetch and resets the resource to its initial
// state. The pending completion, if any, is orphaned and ignored.
func (r *Resource[T]) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.gen++
	r.state = State[T]{PageSize: DefaultPageSize}
}
