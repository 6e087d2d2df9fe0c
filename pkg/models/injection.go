package models

import (
	"time"

	"github.com/google/uuid"
)

// InjectionEntry is user-supplied content appended to a run's input stream
// after the run has already started. Entries are owned by the injection
// queue until drained; a drain transfers ownership to the run loop, which
// folds or discards them. Entries are never re-enqueued.
type InjectionEntry struct {
	ID         string    `json:"id"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
	StopIntent bool      `json:"stop_intent,omitempty"`
}

// NewInjectionEntry creates an entry with a fresh ID and UTC timestamp.
func NewInjectionEntry(content string, stopIntent bool) *InjectionEntry {
	return &InjectionEntry{
		ID:         uuid.NewString(),
		Content:    content,
		CreatedAt:  time.Now().UTC(),
		StopIntent: stopIntent,
	}
}
