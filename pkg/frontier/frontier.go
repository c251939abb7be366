// Package frontier holds the breadth-first work queue of the crawler.
package frontier

import (
	"fmt"
	"strconv"
	"strings"
)

// Entry is one unit of crawl work: an account and its distance from a seed
type Entry struct {
	Level     int
	AccountID int64
}

// Child returns the entry for a follower discovered while crawling e
func (e Entry) Child(accountID int64) Entry {
	return Entry{Level: e.Level + 1, AccountID: accountID}
}

// String renders the checkpoint line form "level, id"
func (e Entry) String() string {
	return fmt.Sprintf("%d, %d", e.Level, e.AccountID)
}

// ParseEntry parses a "level, id" checkpoint line
func ParseEntry(line string) (Entry, error) {
	levelRaw, idRaw, ok := strings.Cut(line, ",")
	if !ok {
		return Entry{}, fmt.Errorf("malformed entry %q: missing separator", line)
	}

	level, err := strconv.Atoi(strings.TrimSpace(levelRaw))
	if err != nil {
		return Entry{}, fmt.Errorf("malformed entry %q: invalid level: %w", line, err)
	}
	if level < 0 {
		return Entry{}, fmt.Errorf("malformed entry %q: negative level", line)
	}

	id, err := strconv.ParseInt(strings.TrimSpace(idRaw), 10, 64)
	if err != nil {
		return Entry{}, fmt.Errorf("malformed entry %q: invalid account id: %w", line, err)
	}

	return Entry{Level: level, AccountID: id}, nil
}

// Frontier is an ordered double-ended queue of entries.
// It is owned by a single crawl run and not safe for concurrent use.
type Frontier struct {
	entries []Entry
	head    int
}

// New creates a frontier holding entries in order
func New(entries ...Entry) *Frontier {
	f := &Frontier{entries: make([]Entry, 0, len(entries))}
	f.entries = append(f.entries, entries...)
	return f
}

// FromSeeds creates a frontier of level 0 entries
func FromSeeds(ids []int64) *Frontier {
	f := &Frontier{entries: make([]Entry, 0, len(ids))}
	for _, id := range ids {
		f.entries = append(f.entries, Entry{Level: 0, AccountID: id})
	}
	return f
}

func (f *Frontier) Len() int {
	return len(f.entries) - f.head
}

// PushBack appends newly discovered work
func (f *Frontier) PushBack(entries ...Entry) {
	f.entries = append(f.entries, entries...)
}

// PushFront puts e ahead of every pending entry
func (f *Frontier) PushFront(e Entry) {
	if f.head > 0 {
		f.head--
		f.entries[f.head] = e
		return
	}
	f.entries = append([]Entry{e}, f.entries...)
}

// PopFront removes and returns the next entry
func (f *Frontier) PopFront() (Entry, bool) {
	if f.Len() == 0 {
		return Entry{}, false
	}

	e := f.entries[f.head]
	f.head++

	// reclaim the consumed prefix once it dominates the backing array
	if f.head > 1024 && f.head*2 > len(f.entries) {
		f.entries = append([]Entry(nil), f.entries[f.head:]...)
		f.head = 0
	}
	return e, true
}

// Peek returns the next entry without removing it
func (f *Frontier) Peek() (Entry, bool) {
	if f.Len() == 0 {
		return Entry{}, false
	}
	return f.entries[f.head], true
}

// Entries returns the pending entries in order
func (f *Frontier) Entries() []Entry {
	out := make([]Entry, f.Len())
	copy(out, f.entries[f.head:])
	return out
}

// Lines renders the pending entries in checkpoint form
func (f *Frontier) Lines() []string {
	lines := make([]string, 0, f.Len())
	for _, e := range f.entries[f.head:] {
		lines = append(lines, e.String())
	}
	return lines
}
