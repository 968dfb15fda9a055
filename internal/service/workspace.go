package service

import (
	"sync"

	"merchantdash/internal/fetch"
)

// Workspace bundles one session's async resources, one per data domain.
// Routing every list request for a session through its workspace gives each
// domain the single-slot supersede behavior: a newer search cancels the
// session's previous one.
type Workspace struct {
	Transactions   *fetch.Resource[TransactionSearchResult]
	DailySummary   *fetch.Resource[SummaryResult]
	MonthlySummary *fetch.Resource[SummaryResult]
	Disputes       *fetch.Resource[DisputeListResult]
	Fundings       *fetch.Resource[FundingListResult]
}

func newWorkspace() *Workspace {
	return &Workspace{
		Transactions:   fetch.NewResource[TransactionSearchResult](),
		DailySummary:   fetch.NewResource[SummaryResult](),
		MonthlySummary: fetch.NewResource[SummaryResult](),
		Disputes:       fetch.NewResource[DisputeListResult](),
		Fundings:       fetch.NewResource[FundingListResult](),
	}
}

// clear cancels every in-flight fetch and resets all domains.
func (w *Workspace) clear() {
	w.Transactions.Clear()
	w.DailySummary.Clear()
	w.MonthlySummary.Clear()
	w.Disputes.Clear()
	w.Fundings.Clear()
}

// WorkspaceRegistry owns the per-session workspaces.
type WorkspaceRegistry struct {
	mu      sync.Mutex
	byToken map[string]*Workspace
}

func NewWorkspaceRegistry() *WorkspaceRegistry {
	return &WorkspaceRegistry{byToken: make(map[string]*Workspace)}
}

// Get returns the session's workspace, creating it on first use.
func (r *WorkspaceRegistry) Get(token string) *Workspace {
	r.mu.Lock()
	defer r.mu.Unlock()
	ws, ok := r.byToken[token]
	if !ok {
		ws = newWorkspace()
		r.byToken[token] = ws
	}
	return ws
}

// Drop cancels everything in flight for the session and forgets it.
func (r *WorkspaceRegistry) Drop(token string) {
	r.mu.Lock()
	ws, ok := r.byToken[token]
	delete(r.byToken, token)
	r.mu.Unlock()

	if ok {
		ws.clear()
	}
}
