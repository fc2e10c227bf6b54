package date

import (
	"testing"
	"time"
)

func day(d int) Date { return New(2024, time.June, d) }

func TestHistoryAppendSortsAndOverwrites(t *testing.T) {
	h := &History[int]{}
	h.Append(day(10), 100)
	h.Append(day(5), 50)
	h.Append(day(10), 200) // overwrite

	if h.Len() != 2 {
		t.Fatalf("Len = %d, want 2", h.Len())
	}
	first, v := h.First()
	if first != day(5) || v != 50 {
		t.Errorf("First = %s %d", first, v)
	}
	latest, v := h.Latest()
	if latest != day(10) || v != 200 {
		t.Errorf("Latest = %s %d", latest, v)
	}
}

func TestHistoryValueAsOf(t *testing.T) {
	h := &History[string]{}
	h.Append(day(5), "a")
	h.Append(day(10), "b")

	tests := []struct {
		on    Date
		want  string
		known bool
	}{
		{day(4), "", false},
		{day(5), "a", true},
		{day(7), "a", true}, // floor lookup
		{day(10), "b", true},
		{day(25), "b", true},
	}
	for _, tt := range tests {
		got, known := h.ValueAsOf(tt.on)
		if got != tt.want || known != tt.known {
			t.Errorf("ValueAsOf(%s) = %q %v, want %q %v", tt.on, got, known, tt.want, tt.known)
		}
	}

	if _, exact := h.Get(day(7)); exact {
		t.Error("Get must not floor-lookup")
	}
}

func TestHistoryCloneIsIndependent(t *testing.T) {
	h := &History[int]{}
	h.Append(day(1), 1)
	c := h.Clone()
	c.Append(day(2), 2)
	if h.Len() != 1 || c.Len() != 2 {
		t.Errorf("clone not independent: %d %d", h.Len(), c.Len())
	}
}
