// Package steering lets inbound messages reach a run that is already
// streaming. It holds the per-run injection queues, the session index that
// routes session-scoped callers to the currently active run, the
// provenance tracker for server-synthesized message IDs, and the stop
// intent classifier and sanitizer applied to injected text.
package steering

import (
	"sync"
	"time"

	"github.com/haasonsaas/liverun/pkg/models"
)

// Queue holds pending injection entries per run, plus a session index so
// callers who only know the session can reach its active run. It is safe
// for concurrent use. All operations report absence as false or an empty
// result, never an error: "no queue" means "this run is not accepting
// input right now", which is an expected race on every termination path.
type Queue struct {
	mu        sync.Mutex
	pending   map[string][]*models.InjectionEntry
	bySession map[string]string
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{
		pending:   make(map[string][]*models.InjectionEntry),
		bySession: make(map[string]string),
	}
}

// Create allocates an empty queue for the run and points the session
// index at it, overwriting any prior mapping for the session. Call it
// once per run, before streaming begins, so an injection arriving early
// has somewhere to land. At most one run is active per session: the index
// holds exactly one entry per session and a new run replaces the old one.
func (q *Queue) Create(runID, sessionID string) {
	if q == nil || runID == "" {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.pending[runID]; !ok {
		q.pending[runID] = nil
	}
	if sessionID != "" {
		q.bySession[sessionID] = runID
	}
}

// Append adds an entry to the run's queue, stamping CreatedAt when the
// caller left it zero. Returns false when no queue exists, which doubles
// as the cheap "is this run accepting input" check.
func (q *Queue) Append(runID string, entry *models.InjectionEntry) bool {
	if q == nil || runID == "" || entry == nil {
		return false
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.pending[runID]; !ok {
		return false
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	q.pending[runID] = append(q.pending[runID], entry)
	return true
}

// AppendBySession resolves the session to its active run and appends
// there. Returns false when the session has no active run. Callers with a
// cached run ID should still come through here after a restart boundary:
// the index always reflects the most recently created run.
func (q *Queue) AppendBySession(sessionID string, entry *models.InjectionEntry) bool {
	if q == nil || sessionID == "" || entry == nil {
		return false
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	runID, ok := q.bySession[sessionID]
	if !ok {
		return false
	}
	if _, ok := q.pending[runID]; !ok {
		return false
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	q.pending[runID] = append(q.pending[runID], entry)
	return true
}

// Drain atomically reads and clears every queued entry for the run, in
// append order. The read and clear happen under one mutex hold, so no
// entry is observed by two drains and none is lost between read and
// clear. Entries appended after the drain acquires the lock stay queued
// for the next drain. Returns nil when the queue is empty or absent.
func (q *Queue) Drain(runID string) []*models.InjectionEntry {
	if q == nil || runID == "" {
		return nil
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	entries := q.pending[runID]
	if len(entries) == 0 {
		return nil
	}
	q.pending[runID] = nil
	return entries
}

// Has reports whether a queue exists for the run.
func (q *Queue) Has(runID string) bool {
	if q == nil || runID == "" {
		return false
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	_, ok := q.pending[runID]
	return ok
}

// ActiveRun returns the run currently indexed for the session.
func (q *Queue) ActiveRun(sessionID string) (string, bool) {
	if q == nil || sessionID == "" {
		return "", false
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	runID, ok := q.bySession[sessionID]
	return runID, ok
}

// Remove deletes the run's queue and, when the session index still points
// at this run, the index entry. The guard matters: a newer run may have
// already overwritten the mapping, and a stale run's cleanup must not
// strand the session by deleting it. Call Remove on every run-termination
// path; a skipped call leaks the queue and silently swallows injections
// meant for a future run.
func (q *Queue) Remove(runID, sessionID string) {
	if q == nil || runID == "" {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.pending, runID)
	if sessionID != "" && q.bySession[sessionID] == runID {
		delete(q.bySession, sessionID)
	}
}

// Pending returns the number of queued entries for the run, for
// observability.
func (q *Queue) Pending(runID string) int {
	if q == nil || runID == "" {
		return 0
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending[runID])
}
