package availability

import (
	"testing"
	"time"
)

func at(day time.Time, h, m int) time.Time {
	return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
}

func TestIntervalOverlaps(t *testing.T) {
	day := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	a := Interval{Start: at(day, 9, 0), End: at(day, 10, 0)}

	cases := []struct {
		name string
		b    Interval
		want bool
	}{
		{"disjoint before", Interval{Start: at(day, 8, 0), End: at(day, 8, 30)}, false},
		{"touching end is not overlap", Interval{Start: at(day, 10, 0), End: at(day, 11, 0)}, false},
		{"partial", Interval{Start: at(day, 9, 30), End: at(day, 10, 30)}, true},
		{"contained", Interval{Start: at(day, 9, 15), End: at(day, 9, 45)}, true},
	}
	for _, tc := range cases {
		if got := a.Overlaps(tc.b); got != tc.want {
			t.Fatalf("%s: Overlaps = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestIntervalContains(t *testing.T) {
	day := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	win := Interval{Start: at(day, 9, 0), End: at(day, 17, 0)}

	if !win.Contains(at(day, 9, 0), at(day, 10, 0)) {
		t.Fatal("slot at window start should be contained")
	}
	if !win.Contains(at(day, 16, 0), at(day, 17, 0)) {
		t.Fatal("slot ending exactly at window end should be contained")
	}
	if win.Contains(at(day, 16, 30), at(day, 17, 30)) {
		t.Fatal("slot past window end should not be contained")
	}
}

func TestSubtractSplitsStraddlingInterval(t *testing.T) {
	day := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	free := []Interval{{Start: at(day, 9, 0), End: at(day, 17, 0)}}

	got := Subtract(free, Interval{Start: at(day, 12, 0), End: at(day, 13, 0)})
	if len(got) != 2 {
		t.Fatalf("expected 2 intervals after lunch cut, got %d", len(got))
	}
	if !got[0].End.Equal(at(day, 12, 0)) || !got[1].Start.Equal(at(day, 13, 0)) {
		t.Fatalf("unexpected split: %+v", got)
	}
}

func TestSubtractRemovesCoveredInterval(t *testing.T) {
	day := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	free := []Interval{
		{Start: at(day, 9, 0), End: at(day, 10, 0)},
		{Start: at(day, 11, 0), End: at(day, 12, 0)},
	}

	got := Subtract(free, Interval{Start: at(day, 10, 30), End: at(day, 12, 30)})
	if len(got) != 1 {
		t.Fatalf("expected 1 interval, got %d", len(got))
	}
	if !got[0].Start.Equal(at(day, 9, 0)) || !got[0].End.Equal(at(day, 10, 0)) {
		t.Fatalf("unexpected remainder: %+v", got[0])
	}
}

func TestPad(t *testing.T) {
	day := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	iv := Interval{Start: at(day, 10, 0), End: at(day, 11, 0)}.Pad(15 * time.Minute)
	if !iv.Start.Equal(at(day, 9, 45)) || !iv.End.Equal(at(day, 11, 15)) {
		t.Fatalf("unexpected padded interval: %+v", iv)
	}
}
