package reslist

import (
	"github.com/bits-and-blooms/bitset"
)

// ItemView is the read-only view of the item store handed to row strategies.
type ItemView interface {
	Len() int
	Loaded(i int) bool
	At(i int) (Item, bool)
}

// Store is the sparse item array: a buffer of totalCount slots indexed by global
// position with an explicit loaded bitmap. A slot is either loaded or not; there is no
// sentinel item.
//
// Store is not safe for concurrent use. The Controller owns it and mutates it under
// its own lock.
type Store struct {
	items  []Item
	loaded *bitset.BitSet
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{loaded: bitset.New(0)}
}

// Len returns the total item count, loaded or not.
func (s *Store) Len() int {
	return len(s.items)
}

// Loaded reports whether slot i holds a fetched item.
func (s *Store) Loaded(i int) bool {
	if i < 0 || i >= len(s.items) {
		return false
	}
	return s.loaded.Test(uint(i))
}

// At returns the item at i when it is loaded.
func (s *Store) At(i int) (Item, bool) {
	if !s.Loaded(i) {
		return nil, false
	}
	return s.items[i], true
}

// LoadedCount returns the number of populated slots.
func (s *Store) LoadedCount() int {
	return int(s.loaded.Count())
}

// Resize sets the total count. Growing adds unloaded slots; shrinking drops the tail
// and its loaded bits. It reports whether the count shrank.
func (s *Store) Resize(total int) (shrunk bool) {
	if total < 0 {
		total = 0
	}
	n := len(s.items)
	switch {
	case total > n:
		s.items = append(s.items, make([]Item, total-n)...)
	case total < n:
		for i, ok := s.loaded.NextSet(uint(total)); ok; i, ok = s.loaded.NextSet(i + 1) {
			s.loaded.Clear(i)
		}
		clear(s.items[total:])
		s.items = s.items[:total]
		return true
	}
	return false
}

// Merge writes items into consecutive slots starting at start. Items that fall outside
// the current bounds and nil items are skipped. Merging the same batch twice leaves the
// store unchanged the second time. It returns the number of slots written.
func (s *Store) Merge(start int, items []Item) int {
	written := 0
	for off, it := range items {
		i := start + off
		if i < 0 || i >= len(s.items) || it == nil {
			continue
		}
		s.items[i] = it
		s.loaded.Set(uint(i))
		written++
	}
	return written
}

// Reset drops every slot.
func (s *Store) Reset() {
	s.items = nil
	s.loaded.ClearAll()
}

// RangeLoaded reports whether every slot in [start, end) is loaded.
// An empty range is loaded.
func (s *Store) RangeLoaded(start, end int) bool {
	_, _, missing := s.MissingIn(start, end)
	return !missing
}

// MissingIn returns the smallest interval [lo, hi) inside [start, end) that covers
// every unloaded slot, clamped to the store bounds. ok is false when nothing is missing.
func (s *Store) MissingIn(start, end int) (lo, hi int, ok bool) {
	return missingIn(s, start, end, len(s.items))
}

func clampRange(start, end, total int) (int, int) {
	if start < 0 {
		start = 0
	}
	if end > total {
		end = total
	}
	if end < start {
		end = start
	}
	return start, end
}
