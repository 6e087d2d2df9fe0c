package steering

import (
	"fmt"
	"sync"
	"testing"

	"github.com/haasonsaas/liverun/pkg/models"
)

func entry(content string) *models.InjectionEntry {
	return models.NewInjectionEntry(content, false)
}

func TestQueue_AppendWithoutCreate(t *testing.T) {
	q := NewQueue()

	if q.Append("run-1", entry("hello")) {
		t.Error("Append before Create should return false")
	}
	if q.Has("run-1") {
		t.Error("Has before Create should be false")
	}
}

func TestQueue_DrainPreservesAppendOrder(t *testing.T) {
	q := NewQueue()
	q.Create("run-1", "sess-1")

	for i := 0; i < 5; i++ {
		if !q.Append("run-1", entry(fmt.Sprintf("msg-%d", i))) {
			t.Fatalf("Append %d failed", i)
		}
	}

	drained := q.Drain("run-1")
	if len(drained) != 5 {
		t.Fatalf("drained %d entries, expected 5", len(drained))
	}
	for i, e := range drained {
		if e.Content != fmt.Sprintf("msg-%d", i) {
			t.Errorf("entry %d = %q, order not preserved", i, e.Content)
		}
	}

	if again := q.Drain("run-1"); len(again) != 0 {
		t.Errorf("second drain returned %d entries, expected 0", len(again))
	}
}

func TestQueue_DrainAbsentRun(t *testing.T) {
	q := NewQueue()
	if got := q.Drain("nope"); got != nil {
		t.Errorf("Drain on absent run = %v, expected nil", got)
	}
}

func TestQueue_AppendStampsCreatedAt(t *testing.T) {
	q := NewQueue()
	q.Create("run-1", "sess-1")

	e := &models.InjectionEntry{ID: "e1", Content: "hi"}
	if !q.Append("run-1", e) {
		t.Fatal("Append failed")
	}
	if e.CreatedAt.IsZero() {
		t.Error("CreatedAt not stamped on append")
	}
}

func TestQueue_AppendBySession(t *testing.T) {
	q := NewQueue()
	q.Create("run-1", "sess-1")

	if !q.AppendBySession("sess-1", entry("routed")) {
		t.Fatal("AppendBySession failed for active session")
	}
	if q.AppendBySession("sess-2", entry("lost")) {
		t.Error("AppendBySession should return false for inactive session")
	}

	drained := q.Drain("run-1")
	if len(drained) != 1 || drained[0].Content != "routed" {
		t.Errorf("drained = %v", drained)
	}
}

func TestQueue_SessionIndexFollowsNewestRun(t *testing.T) {
	q := NewQueue()
	q.Create("run-1", "sess-1")
	q.Create("run-2", "sess-1")

	if !q.AppendBySession("sess-1", entry("for-newest")) {
		t.Fatal("AppendBySession failed")
	}

	if got := q.Drain("run-1"); len(got) != 0 {
		t.Errorf("old run received %d entries, expected 0", len(got))
	}
	got := q.Drain("run-2")
	if len(got) != 1 || got[0].Content != "for-newest" {
		t.Errorf("newest run drained %v", got)
	}
}

func TestQueue_RemoveGuardsOverwrittenSessionIndex(t *testing.T) {
	q := NewQueue()
	q.Create("run-1", "sess-1")
	q.Create("run-2", "sess-1") // overwrites the index

	// Stale cleanup from run-1 must not break run-2's routing.
	q.Remove("run-1", "sess-1")

	if !q.AppendBySession("sess-1", entry("still-routed")) {
		t.Fatal("session index lost after stale Remove")
	}

	q.Remove("run-2", "sess-1")
	if q.AppendBySession("sess-1", entry("gone")) {
		t.Error("session index survived its own run's Remove")
	}
	if q.Has("run-2") {
		t.Error("queue survived Remove")
	}
}

func TestQueue_ActiveRun(t *testing.T) {
	q := NewQueue()
	if _, ok := q.ActiveRun("sess-1"); ok {
		t.Error("ActiveRun on empty queue")
	}
	q.Create("run-1", "sess-1")
	runID, ok := q.ActiveRun("sess-1")
	if !ok || runID != "run-1" {
		t.Errorf("ActiveRun = %q, %v", runID, ok)
	}
}

func TestQueue_ConcurrentAppendAndDrainLosesNothing(t *testing.T) {
	q := NewQueue()
	q.Create("run-1", "sess-1")

	const writers = 8
	const perWriter = 200

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				if !q.Append("run-1", entry(fmt.Sprintf("w%d-%d", w, i))) {
					t.Errorf("append failed mid-run")
					return
				}
			}
		}(w)
	}

	writersDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(writersDone)
	}()

	var drained int
	for {
		drained += len(q.Drain("run-1"))
		select {
		case <-writersDone:
			drained += len(q.Drain("run-1"))
			if drained != writers*perWriter {
				t.Errorf("drained %d entries, expected %d (entries lost or duplicated)", drained, writers*perWriter)
			}
			return
		default:
		}
	}
}
