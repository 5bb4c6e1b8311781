package dbtime

import (
	"testing"
	"time"
)

func TestDayOf(t *testing.T) {
	at := time.Date(2025, 11, 20, 20, 0, 0, 0, time.UTC)
	loc := time.FixedZone("IST", 5*3600+1800)

	got := DayOf(at, loc)
	if got.Day() != 21 || got.Hour() != 0 || got.Location() != loc {
		t.Fatalf("DayOf = %v", got)
	}
	if d := DayOf(at, nil); d.Day() != 20 || d.Location() != time.UTC {
		t.Fatalf("DayOf(nil loc) = %v", d)
	}
}

func TestLoadLocationFallsBack(t *testing.T) {
	if LoadLocation("") != time.UTC || LoadLocation("Not/AZone") != time.UTC {
		t.Fatalf("unknown timezone must fall back to UTC")
	}
}

func TestClock(t *testing.T) {
	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	var c Clock = func() time.Time { return fixed }
	if !c.Now().Equal(fixed) {
		t.Fatalf("Clock.Now = %v", c.Now())
	}
	var zero Clock
	if zero.Now().IsZero() {
		t.Fatalf("nil clock must use wall time")
	}
}
