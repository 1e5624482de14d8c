package availability

import (
	"testing"
	"time"
)

func TestSlotsBasic(t *testing.T) {
	day := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	free := []Interval{{Start: at(day, 9, 0), End: at(day, 10, 0)}}
	busy := []Interval{{Start: at(day, 9, 15), End: at(day, 9, 45)}}

	slots := Slots(free, 15*time.Minute, 15*time.Minute, busy, day)
	if len(slots) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(slots))
	}
	if !slots[0].Equal(at(day, 9, 0)) {
		t.Fatalf("expected first slot 09:00, got %s", slots[0].Format(time.RFC3339))
	}
	if !slots[1].Equal(at(day, 9, 45)) {
		t.Fatalf("expected second slot 09:45, got %s", slots[1].Format(time.RFC3339))
	}
}

func TestSlotsSkipsPast(t *testing.T) {
	day := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	free := []Interval{{Start: at(day, 9, 0), End: at(day, 10, 0)}}

	now := at(day, 9, 31)
	slots := Slots(free, 15*time.Minute, 15*time.Minute, nil, now)
	// 09:00, 09:15, 09:30 are in the past. 09:45 remains.
	if len(slots) != 1 {
		t.Fatalf("expected 1 slot, got %d", len(slots))
	}
	if !slots[0].Equal(at(day, 9, 45)) {
		t.Fatalf("expected slot 09:45, got %s", slots[0].Format(time.RFC3339))
	}
}

func TestSlotsDurationMustFitWindow(t *testing.T) {
	day := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	free := []Interval{{Start: at(day, 16, 30), End: at(day, 17, 0)}}

	if slots := Slots(free, 60*time.Minute, 15*time.Minute, nil, day); slots != nil {
		t.Fatalf("60-minute slot cannot fit a 30-minute window, got %v", slots)
	}
}

func TestSlotsRespectsPaddedBusy(t *testing.T) {
	day := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	free := []Interval{{Start: at(day, 9, 0), End: at(day, 12, 0)}}
	// 10:00-11:00 booking padded by a 15 minute buffer on each side.
	busy := []Interval{Interval{Start: at(day, 10, 0), End: at(day, 11, 0)}.Pad(15 * time.Minute)}

	slots := Slots(free, 30*time.Minute, 30*time.Minute, busy, day)
	for _, s := range slots {
		if s.After(at(day, 9, 15)) && s.Before(at(day, 11, 15)) {
			t.Fatalf("slot %s intrudes on the buffered booking", s.Format(time.RFC3339))
		}
	}
	if len(slots) == 0 {
		t.Fatal("expected some slots outside the buffered booking")
	}
}
