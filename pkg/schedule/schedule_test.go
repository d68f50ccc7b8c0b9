package schedule

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/heliograph/heliograph/pkg/ephemeris"
	"github.com/heliograph/heliograph/pkg/observer"
)

func mustObserver(t *testing.T, lat, lon float64, tz string) *observer.Observer {
	t.Helper()
	o, err := observer.New(lat, lon, tz, observer.HorizonModel{})
	if err != nil {
		t.Fatalf("observer.New: %v", err)
	}
	return o
}

func TestNextDueUpcomingEventToday(t *testing.T) {
	o := mustObserver(t, 51.5074, -0.1277, "Europe/London")
	entry := NewEntry("sunset", Rule{Kind: RuleStandardEvent, Event: ephemeris.Sunset})

	// Midday: today's sunset is still ahead.
	ref := time.Date(2023, 6, 21, 12, 0, 0, 0, o.Location())
	due, ok, err := NextDue(entry, o, ref)
	if err != nil || !ok {
		t.Fatalf("NextDue: ok=%v err=%v", ok, err)
	}
	if !due.After(ref) {
		t.Fatalf("due %v not after ref %v", due, ref)
	}
	if due.In(o.Location()).Day() != 21 {
		t.Errorf("due %v should be today's sunset", due)
	}
}

func TestNextDueAdvancesToTomorrow(t *testing.T) {
	o := mustObserver(t, 51.5074, -0.1277, "Europe/London")
	entry := NewEntry("sunrise", Rule{Kind: RuleStandardEvent, Event: ephemeris.Sunrise})

	// Reference just before midnight: today's sunrise has long passed.
	ref := time.Date(2023, 6, 21, 23, 30, 0, 0, o.Location())
	due, ok, err := NextDue(entry, o, ref)
	if err != nil || !ok {
		t.Fatalf("NextDue: ok=%v err=%v", ok, err)
	}
	local := due.In(o.Location())
	if local.Day() != 22 || local.Hour() != 4 {
		t.Errorf("due = %v, expected tomorrow's sunrise around 04:43", local)
	}
}

func TestNextDueNotNaive24hAcrossDST(t *testing.T) {
	// US daylight saving started 2023-03-12. The next sunrise after the
	// March 11 sunrise must be re-derived from the calendar, not from
	// adding 24 hours to the previous instant.
	o := mustObserver(t, 40.7128, -74.006, "America/New_York")
	entry := NewEntry("sunrise", Rule{Kind: RuleStandardEvent, Event: ephemeris.Sunrise})

	mar11, err := ephemeris.EventOn(o, time.Date(2023, 3, 11, 0, 0, 0, 0, o.Location()), ephemeris.Sunrise)
	if err != nil || !mar11.Occurs() {
		t.Fatalf("March 11 sunrise: occurs=%v err=%v", mar11.Occurs(), err)
	}

	ref := mar11.Instant.Add(time.Minute)
	due, ok, err := NextDue(entry, o, ref)
	if err != nil || !ok {
		t.Fatalf("NextDue: ok=%v err=%v", ok, err)
	}

	naive := mar11.Instant.Add(24 * time.Hour)
	diff := due.Sub(naive)
	if diff < 0 {
		diff = -diff
	}
	// Mid-March sunrise drifts about 90 seconds earlier per day; a
	// scheduler that adds 24 hours would miss by that much and keep
	// drifting. The instant must come from a fresh computation.
	if diff < 45*time.Second {
		t.Errorf("due %v matches naive +24h %v; expected a re-derived instant", due, naive)
	}

	local := due.In(o.Location())
	if local.Day() != 12 {
		t.Errorf("due %v should be the March 12 sunrise", local)
	}
	// Wall clock jumps from the 06:00 hour to the 07:00 hour across the
	// spring-forward transition.
	if local.Hour() != 7 {
		t.Errorf("March 12 EDT sunrise should be in the 07:00 hour, got %v", local)
	}
}

func TestNextDueSkipsAbsentDays(t *testing.T) {
	// Tromsø in late May: sunset no longer occurs until mid July. The
	// scheduler must walk forward across the whole polar-day gap.
	o := mustObserver(t, 69.6492, 18.9553, "Europe/Oslo")
	entry := NewEntry("sunset", Rule{Kind: RuleStandardEvent, Event: ephemeris.Sunset})

	ref := time.Date(2023, 6, 1, 12, 0, 0, 0, o.Location())
	due, ok, err := NextDue(entry, o, ref)
	if err != nil {
		t.Fatalf("NextDue: %v", err)
	}
	if !ok {
		t.Fatal("sunset should occur again within the search window")
	}
	if due.Before(time.Date(2023, 7, 1, 0, 0, 0, 0, o.Location())) {
		t.Errorf("due = %v, expected polar-day gap to push it past July 1", due)
	}
	if due.After(time.Date(2023, 8, 15, 0, 0, 0, 0, o.Location())) {
		t.Errorf("due = %v, expected sunset to resume before mid August", due)
	}
}

func TestNextDuePerpetuallyAbsent(t *testing.T) {
	// The sun never reaches 50 degrees at this latitude; the bounded
	// search must give up rather than loop forever.
	o := mustObserver(t, 80, 15, "Arctic/Longyearbyen")
	entry := NewEntry("highsun", Rule{
		Kind:      RuleCustomElevation,
		Elevation: 50,
		Direction: observer.DirectionRising,
	})

	ref := time.Date(2023, 6, 1, 0, 0, 0, 0, o.Location())
	_, ok, err := NextDue(entry, o, ref)
	if err != nil {
		t.Fatalf("NextDue: %v", err)
	}
	if ok {
		t.Error("expected perpetual absence for an unreachable elevation")
	}
}

func TestNextDueCustomElevation(t *testing.T) {
	o := mustObserver(t, 51.5074, -0.1277, "Europe/London")
	entry := NewEntry("below10", Rule{
		Kind:      RuleCustomElevation,
		Elevation: 10,
		Direction: observer.DirectionSetting,
	})

	ref := time.Date(2023, 6, 21, 12, 0, 0, 0, o.Location())
	due, ok, err := NextDue(entry, o, ref)
	if err != nil || !ok {
		t.Fatalf("NextDue: ok=%v err=%v", ok, err)
	}
	if !due.After(ref) {
		t.Fatalf("due %v not after ref %v", due, ref)
	}
	if elev := ephemeris.ElevationAt(o, due); elev < 9.5 || elev > 10.5 {
		t.Errorf("elevation at due instant = %.3f, expected ~10", elev)
	}
}

func TestNextDueLocalMidnight(t *testing.T) {
	o := mustObserver(t, 40.7128, -74.006, "America/New_York")
	entry := NewEntry("elevation_sample", Rule{Kind: RuleLocalMidnight})

	// The spring-forward day is 23 hours long; next local midnight is not
	// ref truncated plus 24 hours.
	ref := time.Date(2023, 3, 12, 1, 30, 0, 0, o.Location())
	due, ok, err := NextDue(entry, o, ref)
	if err != nil || !ok {
		t.Fatalf("NextDue: ok=%v err=%v", ok, err)
	}

	want := time.Date(2023, 3, 13, 0, 0, 0, 0, o.Location())
	if !due.Equal(want) {
		t.Errorf("due = %v, expected %v", due, want)
	}
	if h := due.Sub(ref); h == 24*time.Hour {
		t.Error("next midnight landed exactly 24h out on a 23h day; calendar math is wrong")
	}
}

func TestEntryAdvance(t *testing.T) {
	entry := NewEntry("sunrise", Rule{Kind: RuleStandardEvent, Event: ephemeris.Sunrise})
	if entry.ID == uuid.Nil {
		t.Error("entry should get a non-zero ID")
	}

	computed := time.Date(2023, 6, 21, 4, 43, 0, 0, time.UTC)
	next := computed.AddDate(0, 0, 1)
	entry.Advance(computed, next)
	if !entry.LastComputed.Equal(computed) || !entry.NextDue.Equal(next) {
		t.Errorf("Advance did not record state: %+v", entry)
	}
}
