package date

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Date
		wantErr bool
	}{
		{in: "2024-03-15", want: New(2024, time.March, 15)},
		{in: "2024-3-5", want: New(2024, time.March, 5)},
		{in: "2024-02-30", wantErr: true},
		{in: "not-a-date", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("Parse(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("Parse(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestAddAndSub(t *testing.T) {
	d := New(2024, time.January, 31)
	if got := d.Add(1); got != New(2024, time.February, 1) {
		t.Errorf("Add(1) = %s", got)
	}
	if got := d.Add(-31); got != New(2023, time.December, 31) {
		t.Errorf("Add(-31) = %s", got)
	}
	if got := New(2024, time.March, 1).Sub(New(2024, time.February, 28)); got != 2 {
		t.Errorf("Sub = %d, want 2 (2024 is a leap year)", got)
	}
}

func TestCompare(t *testing.T) {
	a, b := New(2024, time.May, 1), New(2024, time.May, 2)
	if a.Compare(b) >= 0 || b.Compare(a) <= 0 || a.Compare(a) != 0 {
		t.Errorf("Compare ordering broken: %d %d %d", a.Compare(b), b.Compare(a), a.Compare(a))
	}
	if !a.Before(b) || !b.After(a) {
		t.Error("Before/After disagree with Compare")
	}
}

func TestMinMax(t *testing.T) {
	a, b := New(2024, time.May, 1), New(2024, time.May, 2)
	if Min(a, b) != a || Max(a, b) != b {
		t.Error("Min/Max broken")
	}
}

func TestJSONRoundTrip(t *testing.T) {
	d := New(2024, time.July, 4)
	data, err := json.Marshal(d)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `"2024-07-04"` {
		t.Errorf("Marshal = %s", data)
	}
	var back Date
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if back != d {
		t.Errorf("round trip = %s, want %s", back, d)
	}
}

func TestRangeDays(t *testing.T) {
	r := NewRange(New(2024, time.June, 29), New(2024, time.July, 2))
	var got []Date
	for d := range r.Days() {
		got = append(got, d)
	}
	if len(got) != 4 || got[0] != r.From || got[3] != r.To {
		t.Errorf("Days() = %v", got)
	}
	if r.Len() != 4 {
		t.Errorf("Len() = %d, want 4", r.Len())
	}

	// inverted bounds swap
	swapped := NewRange(r.To, r.From)
	if swapped != r {
		t.Errorf("NewRange did not swap inverted bounds: %v", swapped)
	}
}
