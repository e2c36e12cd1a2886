package console

import (
	"iter"
	"slices"
)

const (
	LOG_LIMIT = 16 // Maximum retained event log entries.
)

// EventLog is an append-only log of human readable events, trimmed FIFO to
// the most recent LOG_LIMIT entries (oldest evicted first).
type EventLog struct {
	events []string
}

// Append adds an event, evicting the oldest entry when over the limit.
func (el *EventLog) Append(event string) {
	el.events = append(el.events, event)
	if len(el.events) > LOG_LIMIT {
		el.events = slices.Delete(el.events, 0, len(el.events)-LOG_LIMIT)
	}
}

// Len returns the number of retained events.
func (el *EventLog) Len() int {
	return len(el.events)
}

// Events returns an iterator over the retained events, oldest first.
func (el *EventLog) Events() iter.Seq[string] {
	return slices.Values(el.events)
}

// Reset discards all retained events.
func (el *EventLog) Reset() {
	if len(el.events) > 0 {
		el.events = el.events[:0]
	}
}
