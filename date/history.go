package date

import (
	"iter"
	"slices"
	"sort"
)

// History stores a chronological series of values, each associated with a
// specific date. Dates are unique and the series is always sorted, so reading
// the value "as of" an arbitrary day is a binary search for the latest entry
// at or before it.
type History[T any] struct {
	days   []Date
	values []T
}

// Len returns the number of entries in the history.
func (h *History[T]) Len() int { return len(h.days) }

// Clear removes all entries from the history.
func (h *History[T]) Clear() {
	h.days = h.days[:0]
	h.values = h.values[:0]
}

// First returns the earliest date and value in the history, or zero values if empty.
func (h *History[T]) First() (day Date, value T) {
	if len(h.days) == 0 {
		return Date{}, *new(T)
	}
	return h.days[0], h.values[0]
}

// Latest returns the latest date and value in the history, or zero values if empty.
func (h *History[T]) Latest() (day Date, value T) {
	last := len(h.days) - 1
	if last < 0 {
		return Date{}, *new(T)
	}
	return h.days[last], h.values[last]
}

// chronological is a private implementation to sort the history in place.
type chronological[T any] struct{ *History[T] }

func (s chronological[T]) Len() int           { return len(s.days) }
func (s chronological[T]) Less(i, j int) bool { return s.days[i].Before(s.days[j]) }
func (s chronological[T]) Swap(i, j int) {
	s.days[i], s.days[j] = s.days[j], s.days[i]
	s.values[i], s.values[j] = s.values[j], s.values[i]
}

func (h *History[T]) sort() { sort.Sort(chronological[T]{h}) }

// Append adds a point to the history. An existing value at that date is overwritten.
func (h *History[T]) Append(on Date, v T) *History[T] {
	if i := slices.Index(h.days, on); i >= 0 {
		h.values[i] = v
		return h
	}
	h.days, h.values = append(h.days, on), append(h.values, v)
	h.sort()
	return h
}

// Get returns the value at exactly 'day' and true, or the zero value and false.
func (h *History[T]) Get(day Date) (T, bool) {
	if i := slices.Index(h.days, day); i >= 0 {
		return h.values[i], true
	}
	var zero T
	return zero, false
}

// ValueAsOf returns the value on a given day, or the most recent value before
// it. It returns the value and true if found, otherwise the zero value and false.
func (h *History[T]) ValueAsOf(day Date) (T, bool) {
	i, found := slices.BinarySearchFunc(h.days, day, Date.Compare)
	if found {
		return h.values[i], true
	}
	// Not found: 'i' is the insertion index, so the floor entry is at i-1.
	if i == 0 {
		var zero T
		return zero, false
	}
	return h.values[i-1], true
}

// Values returns an iterator over all date/value pairs in chronological order.
func (h *History[T]) Values() iter.Seq2[Date, T] {
	return func(yield func(Date, T) bool) {
		for i, on := range h.days {
			if !yield(on, h.values[i]) {
				return
			}
		}
	}
}

// Clone returns an independent copy of the history.
func (h *History[T]) Clone() *History[T] {
	return &History[T]{
		days:   slices.Clone(h.days),
		values: slices.Clone(h.values),
	}
}
