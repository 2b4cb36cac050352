// Package history holds the bounded conversation log and its persistence.
package history

import (
	"iter"
	"time"
)

// MaxEntries is the hard cap on retained entries. Oldest entries are evicted first.
const MaxEntries = 50

// Entry is one recorded query/response exchange.
type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	Query     string    `json:"query"`
	Response  string    `json:"response"`
}

// Store is the in-memory conversation log. It is owned by a single goroutine
// (the REPL); persisters receive copies via Entries.
type Store struct {
	entries []Entry
}

// NewStore seeds a store, keeping only the newest MaxEntries entries.
func NewStore(entries ...Entry) *Store {
	s := &Store{}
	if len(entries) > MaxEntries {
		entries = entries[len(entries)-MaxEntries:]
	}
	s.entries = append(make([]Entry, 0, MaxEntries), entries...)
	return s
}

// Append adds e at the end and evicts from the front past MaxEntries.
func (s *Store) Append(e Entry) {
	s.entries = append(s.entries, e)
	if over := len(s.entries) - MaxEntries; over > 0 {
		s.entries = append(s.entries[:0:0], s.entries[over:]...)
	}
}

// Recent yields the last n entries in chronological order. The sequence is
// evaluated lazily and can be ranged over more than once.
func (s *Store) Recent(n int) iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		if n <= 0 {
			return
		}
		start := max(len(s.entries)-n, 0)
		for _, e := range s.entries[start:] {
			if !yield(e) {
				return
			}
		}
	}
}

// Len returns the number of retained entries.
func (s *Store) Len() int {
	return len(s.entries)
}

// Entries returns a copy of all retained entries, oldest first.
func (s *Store) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Last returns the newest entry.
func (s *Store) Last() (Entry, bool) {
	if len(s.entries) == 0 {
		return Entry{}, false
	}
	return s.entries[len(s.entries)-1], true
}
