package calllog

import (
	"sync"

	"helpsync/types"
)

// Sink receives one entry per remote call attempt
type Sink interface {
	Record(entry types.CallLogEntry)
}

// SinkFunc adapts a function to the Sink interface
type SinkFunc func(entry types.CallLogEntry)

// Record calls f(entry)
func (f SinkFunc) Record(entry types.CallLogEntry) { f(entry) }

// Discard drops every entry
var Discard Sink = SinkFunc(func(types.CallLogEntry) {})

// Multi fans an entry out to several sinks in order
func Multi(sinks ...Sink) Sink {
	filtered := make([]Sink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			filtered = append(filtered, s)
		}
	}
	return SinkFunc(func(entry types.CallLogEntry) {
		for _, s := range filtered {
			s.Record(entry)
		}
	})
}

// Ring keeps the most recent entries and drops the oldest on overflow
type Ring[T any] struct {
	mu    sync.RWMutex
	items []T
	max   int
}

// NewRing creates a ring holding at most size entries
func NewRing[T any](size int) *Ring[T] {
	if size <= 0 {
		size = 1
	}
	return &Ring[T]{
		items: make([]T, 0, size),
		max:   size,
	}
}

// Add appends an entry (thread-safe)
func (r *Ring[T]) Add(item T) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items = append(r.items, item)
	if len(r.items) > r.max {
		r.items = r.items[len(r.items)-r.max:]
	}
}

// Entries returns a copy, oldest first
func (r *Ring[T]) Entries() []T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]T{}, r.items...)
}

// Len returns the number of retained entries
func (r *Ring[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// Clear drops every entry
func (r *Ring[T]) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = r.items[:0]
}

// Log is the call log buffer shared by every network operation
type Log struct {
	*Ring[types.CallLogEntry]
}

// NewLog creates a call log keeping the last size calls
func NewLog(size int) *Log {
	return &Log{Ring: NewRing[types.CallLogEntry](size)}
}

// Record implements Sink
func (l *Log) Record(entry types.CallLogEntry) {
	l.Add(entry)
}
