package reslist

import (
	"testing"

	"pgregory.net/rapid"
)

func TestStore_MergeAndResize(t *testing.T) {
	s := NewStore()
	s.Resize(10)

	if s.Len() != 10 || s.LoadedCount() != 0 {
		t.Fatalf("expected 10 unloaded slots, got len=%d loaded=%d", s.Len(), s.LoadedCount())
	}

	written := s.Merge(8, makeItems("x", 8, 4))
	if written != 2 {
		t.Errorf("expected 2 slots written inside bounds, got %d", written)
	}
	if !s.Loaded(8) || !s.Loaded(9) {
		t.Error("expected slots 8 and 9 to be loaded")
	}

	if shrunk := s.Resize(9); !shrunk {
		t.Error("expected Resize(9) to report shrinkage")
	}
	if s.Loaded(9) {
		t.Error("slot 9 should be gone after shrinking")
	}
	if s.LoadedCount() != 1 {
		t.Errorf("expected 1 loaded slot after shrink, got %d", s.LoadedCount())
	}

	s.Resize(12)
	if s.Loaded(9) || s.Loaded(11) {
		t.Error("grown slots must start unloaded")
	}

	s.Reset()
	if s.Len() != 0 || s.LoadedCount() != 0 {
		t.Error("Reset should drop everything")
	}
}

func TestStore_MergeSkipsNil(t *testing.T) {
	s := NewStore()
	s.Resize(3)
	s.Merge(0, []Item{testItem{id: "a"}, nil, testItem{id: "c"}})

	if s.Loaded(1) {
		t.Error("nil item must leave the slot unloaded")
	}
	if it, ok := s.At(2); !ok || it.ID() != "c" {
		t.Errorf("expected c at 2, got %v %v", it, ok)
	}
}

func TestStore_MissingIn(t *testing.T) {
	s := NewStore()
	s.Resize(20)
	s.Merge(0, makeItems("x", 0, 5))
	s.Merge(10, makeItems("x", 10, 5))

	tests := []struct {
		name       string
		start, end int
		lo, hi     int
		ok         bool
	}{
		{"fully loaded", 0, 5, 0, 0, false},
		{"gap in middle", 0, 15, 5, 10, true},
		{"tail", 12, 30, 15, 20, true},
		{"negative start", -5, 3, 0, 0, false},
		{"empty range", 7, 7, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lo, hi, ok := s.MissingIn(tt.start, tt.end)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && (lo != tt.lo || hi != tt.hi) {
				t.Errorf("got [%d,%d), want [%d,%d)", lo, hi, tt.lo, tt.hi)
			}
		})
	}
}

func TestStore_MergeIdempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		total := rapid.IntRange(0, 300).Draw(t, "total")
		start := rapid.IntRange(-20, 320).Draw(t, "start")
		n := rapid.IntRange(0, 80).Draw(t, "n")
		batch := makeItems("x", start, n)

		once := NewStore()
		once.Resize(total)
		once.Merge(start, batch)

		twice := NewStore()
		twice.Resize(total)
		twice.Merge(start, batch)
		twice.Merge(start, batch)

		if once.LoadedCount() != twice.LoadedCount() {
			t.Fatalf("loaded count differs: %d vs %d", once.LoadedCount(), twice.LoadedCount())
		}
		for i := 0; i < total; i++ {
			a, okA := once.At(i)
			b, okB := twice.At(i)
			if okA != okB || (okA && a.ID() != b.ID()) {
				t.Fatalf("slot %d differs", i)
			}
		}
	})
}

func TestStore_MergeOrderIndependent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		total := rapid.IntRange(1, 200).Draw(t, "total")
		a := rapid.IntRange(0, total-1).Draw(t, "a")
		b := rapid.IntRange(0, total-1).Draw(t, "b")
		n := rapid.IntRange(1, 50).Draw(t, "n")

		ab := NewStore()
		ab.Resize(total)
		ab.Merge(a, makeItems("x", a, n))
		ab.Merge(b, makeItems("x", b, n))

		ba := NewStore()
		ba.Resize(total)
		ba.Merge(b, makeItems("x", b, n))
		ba.Merge(a, makeItems("x", a, n))

		for i := 0; i < total; i++ {
			x, okX := ab.At(i)
			y, okY := ba.At(i)
			if okX != okY || (okX && x.ID() != y.ID()) {
				t.Fatalf("slot %d differs by arrival order", i)
			}
		}
	})
}
