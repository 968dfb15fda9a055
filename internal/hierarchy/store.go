package hierarchy

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// ============================================================================
// Hierarchy children cache
// ============================================================================
//
// Children are loaded lazily on first expand and cached per parent id.
// Unlike the single-slot resources in internal/fetch, this store tracks one
// in-flight load per key: sibling nodes may expand concurrently, but two
// expands of the same node share a single upstream call.

// Fetcher loads children from the upstream hierarchy API.
type Fetcher interface {
	Children(ctx context.Context, parentID, sessionID string) ([]Node, error)
}

// Persister mirrors the cache to durable storage so a restart keeps warm
// hierarchy data. Only the children map is persisted, nothing else.
type Persister interface {
	Load(ctx context.Context) (map[string][]Node, error)
	Save(ctx context.Context, parentID string, nodes []Node) error
	Delete(ctx context.Context, parentID string) error
	Flush(ctx context.Context) error
}

type call struct {
	done  chan struct{}
	nodes []Node
	err   error
}

type Store struct {
	mu       sync.Mutex
	cache    map[string][]Node
	inflight map[string]*call
	fetcher  Fetcher
	persist  Persister
	logger   *zap.Logger
}

func NewStore(fetcher Fetcher, persist Persister, logger *zap.Logger) *Store {
	return &Store{
		cache:    make(map[string][]Node),
		inflight: make(map[string]*call),
		fetcher:  fetcher,
		persist:  persist,
		logger:   logger,
	}
}

// WarmUp seeds the cache from the persister. Called once at startup; a load
// failure only costs the warm start, so it is logged and dropped.
func (s *Store) WarmUp(ctx context.Context) {
	if s.persist == nil {
		return
	}
	cached, err := s.persist.Load(ctx)
	if err != nil {
		s.logger.Warn("hierarchy cache warm-up failed", zap.Error(err))
		return
	}
	s.mu.Lock()
	for parentID, nodes := range cached {
		s.cache[parentID] = nodes
	}
	s.mu.Unlock()
	s.logger.Info("hierarchy cache warmed", zap.Int("parents", len(cached)))
}

// FetchChildren returns the children of parentID, hitting the upstream API at
// most once per key regardless of how many callers ask concurrently. A cached
// entry short-circuits unless force is set. Errors are returned to the caller
// (the tree node needs to collapse) and never leave the key stuck loading.
func (s *Store) FetchChildren(ctx context.Context, parentID, sessionID string, force bool) ([]Node, error) {
	s.mu.Lock()

	if !force {
		if nodes, ok := s.cache[parentID]; ok {
			s.mu.Unlock()
			return nodes, nil
		}
	}

	if c, ok := s.inflight[parentID]; ok {
		s.mu.Unlock()
		select {
		case <-c.done:
			return c.nodes, c.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	c := &call{done: make(chan struct{})}
	s.inflight[parentID] = c
	s.mu.Unlock()

	nodes, err := s.fetcher.Children(ctx, parentID, sessionID)

	s.mu.Lock()
	delete(s.inflight, parentID)
	if err == nil {
		s.cache[parentID] = nodes
	}
	s.mu.Unlock()

	c.nodes = nodes
	c.err = err
	close(c.done)

	if err != nil {
		return nil, err
	}

	if s.persist != nil {
		if perr := s.persist.Save(ctx, parentID, nodes); perr != nil {
			s.logger.Warn("hierarchy cache persist failed",
				zap.String("parent_id", parentID), zap.Error(perr))
		}
	}

	return nodes, nil
}

// Cached returns the cached children for parentID without fetching.
func (s *Store) Cached(parentID string) ([]Node, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	nodes, ok := s.cache[parentID]
	return nodes, ok
}

// Invalidate drops a single key so the next expand refetches it.
func (s *Store) Invalidate(ctx context.Context, parentID string) {
	s.mu.Lock()
	delete(s.cache, parentID)
	s.mu.Unlock()

	if s.persist != nil {
		if err := s.persist.Delete(ctx, parentID); err != nil {
			s.logger.Warn("hierarchy cache delete failed",
				zap.String("parent_id", parentID), zap.Error(err))
		}
	}
}

// Reset wipes the whole cache. Called on logout.
func (s *Store) Reset(ctx context.Context) {
	s.mu.Lock()
	s.cache = make(map[string][]Node)
	s.mu.Unlock()

	if s.persist != nil {
		if err := s.persist.Flush(ctx); err != nil {
			s.logger.Warn("hierarchy cache flush failed", zap.Error(err))
		}
	}
}
