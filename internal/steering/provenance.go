package steering

import (
	"sort"
	"sync"
)

// Tracker records message IDs synthesized server-side while handling
// injections. A reconciliation pass elsewhere deletes persisted messages
// absent from the client's "messages I still have" manifest; messages the
// client never learned about (split assistant turns, synthesized user
// turns) would be collected unless their IDs are unioned into the
// keep-set first. Membership is session-scoped, not run-scoped, because a
// session can span runs inside one reconciliation window. Entries are
// cleared explicitly on run end, never by expiry.
type Tracker struct {
	mu      sync.Mutex
	tracked map[string]map[string]struct{}
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{tracked: make(map[string]map[string]struct{})}
}

// Init ensures an empty set exists for the session. Idempotent; an
// existing set is left alone.
func (t *Tracker) Init(sessionID string) {
	if t == nil || sessionID == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.tracked[sessionID]; !ok {
		t.tracked[sessionID] = make(map[string]struct{})
	}
}

// Track records a message ID for the session. Tracking before Init is a
// caller bug tolerated silently, as are empty arguments: this path runs
// inside cleanup-sensitive code where availability beats strictness.
func (t *Tracker) Track(sessionID, messageID string) {
	if t == nil || sessionID == "" || messageID == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	set, ok := t.tracked[sessionID]
	if !ok {
		return
	}
	set[messageID] = struct{}{}
}

// Tracked returns a sorted snapshot of the session's tracked message IDs.
func (t *Tracker) Tracked(sessionID string) []string {
	if t == nil || sessionID == "" {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	set, ok := t.tracked[sessionID]
	if !ok || len(set) == 0 {
		return nil
	}
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Clear drops the session's set. Must run when the run ends so IDs do not
// leak into a later, unrelated run on the same session.
func (t *Tracker) Clear(sessionID string) {
	if t == nil || sessionID == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.tracked, sessionID)
}
