package reslist

import (
	"sort"
)

// span is a closed interval of selected indices.
type span struct {
	lo, hi int
}

// Selection is an immutable set of item indices stored as sorted, disjoint,
// non-adjacent closed intervals. Every mutating method returns a new Selection and
// leaves the receiver untouched, so a value captured before an asynchronous fetch stays
// valid after it completes. The zero value is the empty set.
//
// Indices in a Selection need not be loaded in the Store.
type Selection struct {
	spans []span
}

// Empty reports whether nothing is selected.
func (s Selection) Empty() bool {
	return len(s.spans) == 0
}

// Count returns the number of selected indices.
func (s Selection) Count() int {
	n := 0
	for _, sp := range s.spans {
		n += sp.hi - sp.lo + 1
	}
	return n
}

// Contains reports whether i is selected.
func (s Selection) Contains(i int) bool {
	k := sort.Search(len(s.spans), func(k int) bool { return s.spans[k].hi >= i })
	return k < len(s.spans) && s.spans[k].lo <= i
}

// Min returns the smallest selected index.
func (s Selection) Min() (int, bool) {
	if s.Empty() {
		return 0, false
	}
	return s.spans[0].lo, true
}

// Max returns the largest selected index.
func (s Selection) Max() (int, bool) {
	if s.Empty() {
		return 0, false
	}
	return s.spans[len(s.spans)-1].hi, true
}

// With returns s plus i.
func (s Selection) With(i int) Selection {
	return s.WithRange(i, i)
}

// WithRange returns s plus every index in the closed interval [lo, hi].
// The bounds may be given in either order.
func (s Selection) WithRange(lo, hi int) Selection {
	if lo > hi {
		lo, hi = hi, lo
	}
	if lo < 0 {
		lo = 0
	}
	if hi < lo {
		return s
	}
	out := make([]span, 0, len(s.spans)+1)
	placed := false
	for _, sp := range s.spans {
		switch {
		case sp.hi+1 < lo:
			out = append(out, sp)
		case hi+1 < sp.lo:
			if !placed {
				out = append(out, span{lo, hi})
				placed = true
			}
			out = append(out, sp)
		default:
			lo = min(lo, sp.lo)
			hi = max(hi, sp.hi)
		}
	}
	if !placed {
		out = append(out, span{lo, hi})
	}
	return Selection{spans: out}
}

// Without returns s minus i.
func (s Selection) Without(i int) Selection {
	if !s.Contains(i) {
		return s
	}
	out := make([]span, 0, len(s.spans)+1)
	for _, sp := range s.spans {
		if i < sp.lo || i > sp.hi {
			out = append(out, sp)
			continue
		}
		if sp.lo < i {
			out = append(out, span{sp.lo, i - 1})
		}
		if i < sp.hi {
			out = append(out, span{i + 1, sp.hi})
		}
	}
	return Selection{spans: out}
}

// Each calls fn for every selected index in ascending order until fn returns false.
func (s Selection) Each(fn func(i int) bool) {
	for _, sp := range s.spans {
		for i := sp.lo; i <= sp.hi; i++ {
			if !fn(i) {
				return
			}
		}
	}
}

// Indices returns the selected indices in ascending order.
func (s Selection) Indices() []int {
	out := make([]int, 0, s.Count())
	s.Each(func(i int) bool {
		out = append(out, i)
		return true
	})
	return out
}

// IntersectsRange reports whether any index in [start, end) is selected.
func (s Selection) IntersectsRange(start, end int) bool {
	k := sort.Search(len(s.spans), func(k int) bool { return s.spans[k].hi >= start })
	return k < len(s.spans) && s.spans[k].lo < end
}

// Equal reports whether both sets hold the same indices.
func (s Selection) Equal(o Selection) bool {
	if len(s.spans) != len(o.spans) {
		return false
	}
	for k := range s.spans {
		if s.spans[k] != o.spans[k] {
			return false
		}
	}
	return true
}

// SelectRange returns the set holding exactly [lo, hi].
func SelectRange(lo, hi int) Selection {
	return Selection{}.WithRange(lo, hi)
}

const noIndex = -1

// SelectionState is the selection set plus its navigation anchors.
// LastSelected and ShiftAnchor are -1 when unset.
type SelectionState struct {
	Set          Selection
	LastSelected int
	ShiftAnchor  int
}

// EmptySelection returns a state with nothing selected and no anchors.
func EmptySelection() SelectionState {
	return SelectionState{LastSelected: noIndex, ShiftAnchor: noIndex}
}

// Click replaces the selection with exactly i.
func (st SelectionState) Click(i int) SelectionState {
	return SelectionState{Set: SelectRange(i, i), LastSelected: i, ShiftAnchor: noIndex}
}

// Toggle flips i in place. Toggling off the last selected index unsets it; otherwise
// i becomes the last selected index.
func (st SelectionState) Toggle(i int) SelectionState {
	if st.Set.Contains(i) {
		st.Set = st.Set.Without(i)
		if st.LastSelected == i {
			st.LastSelected = noIndex
		}
		return st
	}
	st.Set = st.Set.With(i)
	st.LastSelected = i
	return st
}

// ExtendRange returns the closed interval a shift-click on i selects.
func (st SelectionState) ExtendRange(i int) (lo, hi int) {
	from := st.LastSelected
	if from < 0 {
		from = 0
	}
	return min(from, i), max(from, i)
}

// ExtendTo adds the interval between the last selected index (or 0) and i, and makes i
// the last selected index. With nothing selected it behaves like Click.
func (st SelectionState) ExtendTo(i int) SelectionState {
	if st.Set.Empty() {
		return st.Click(i)
	}
	lo, hi := st.ExtendRange(i)
	st.Set = st.Set.WithRange(lo, hi)
	st.LastSelected = i
	return st
}

// Focus selects exactly i unless i is already selected, in which case the state is
// returned unchanged. Used for right-click and drag-start.
func (st SelectionState) Focus(i int) SelectionState {
	if st.Set.Contains(i) {
		return st
	}
	return st.Click(i)
}

// All selects [0, total).
func (st SelectionState) All(total int) SelectionState {
	if total <= 0 {
		return st.None()
	}
	st.Set = SelectRange(0, total-1)
	return st
}

// None clears the selection and both anchors.
func (st SelectionState) None() SelectionState {
	return EmptySelection()
}
