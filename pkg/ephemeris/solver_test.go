package ephemeris

import (
	"errors"
	"testing"
	"time"

	"github.com/heliograph/heliograph/pkg/observer"
)

func mustObserver(t *testing.T, lat, lon float64, tz string, horizon observer.HorizonModel) *observer.Observer {
	t.Helper()
	o, err := observer.New(lat, lon, tz, horizon)
	if err != nil {
		t.Fatalf("observer.New: %v", err)
	}
	return o
}

func TestFindCrossingDirections(t *testing.T) {
	o := mustObserver(t, 51.5074, -0.1277, "Europe/London", observer.HorizonModel{})
	date := time.Date(2023, 6, 21, 0, 0, 0, 0, o.Location())

	rise, okRise, err := FindCrossing(o, date, -SunsetDepression, observer.DirectionRising)
	if err != nil || !okRise {
		t.Fatalf("rising crossing: ok=%v err=%v", okRise, err)
	}
	set, okSet, err := FindCrossing(o, date, -SunsetDepression, observer.DirectionSetting)
	if err != nil || !okSet {
		t.Fatalf("setting crossing: ok=%v err=%v", okSet, err)
	}

	noon, _ := dayExtremum(o, date, true)
	if !rise.Before(noon) {
		t.Errorf("rising crossing %v not before solar noon %v", rise, noon)
	}
	if !noon.Before(set) {
		t.Errorf("solar noon %v not before setting crossing %v", noon, set)
	}

	// Both crossings sit at the target elevation.
	for _, at := range []time.Time{rise, set} {
		if elev := elevationAt(o, at); elev < -1.0 || elev > -0.65 {
			t.Errorf("elevation at crossing %v = %.3f, expected ~-0.833", at, elev)
		}
	}
}

func TestFindCrossingOutOfRangeTargets(t *testing.T) {
	o := mustObserver(t, 51.5074, -0.1277, "Europe/London", observer.HorizonModel{})
	date := time.Date(2023, 6, 21, 0, 0, 0, 0, o.Location())

	tests := []struct {
		name   string
		target float64
		dir    observer.Direction
	}{
		{"above day's maximum", 80, observer.DirectionRising},
		{"above day's maximum setting", 80, observer.DirectionSetting},
		{"below day's minimum", -80, observer.DirectionRising},
		{"below day's minimum setting", -80, observer.DirectionSetting},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok, err := FindCrossing(o, date, tt.target, tt.dir)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ok {
				t.Errorf("expected no occurrence for target %.0f", tt.target)
			}
		})
	}
}

func TestFindCrossingRequiresDirection(t *testing.T) {
	o := mustObserver(t, 0, 0, "UTC", observer.HorizonModel{})
	_, _, err := FindCrossing(o, time.Now(), 0, observer.DirectionNone)
	if err == nil {
		t.Error("expected error for DirectionNone")
	}
	if errors.Is(err, ErrNoConvergence) {
		t.Error("direction validation must not be reported as non-convergence")
	}
}

func TestFindCrossingPolarDay(t *testing.T) {
	// Tromsø, above the Arctic Circle, near the June solstice: the sun
	// never descends 18 degrees below the horizon, and never reaches the
	// horizon either.
	o := mustObserver(t, 69.6492, 18.9553, "Europe/Oslo", observer.HorizonModel{})
	date := time.Date(2023, 6, 21, 0, 0, 0, 0, o.Location())

	_, ok, err := FindCrossing(o, date, -AstronomicalDepression, observer.DirectionRising)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("astronomical dawn should not occur during polar day")
	}

	_, ok, err = FindCrossing(o, date, -SunsetDepression, observer.DirectionSetting)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("sunset should not occur during polar day")
	}
}

func TestFindCrossingPolarNight(t *testing.T) {
	// Tromsø near the December solstice: the sun's maximum elevation stays
	// around -3 degrees. Sunrise is absent but civil dawn still occurs.
	o := mustObserver(t, 69.6492, 18.9553, "Europe/Oslo", observer.HorizonModel{})
	date := time.Date(2023, 12, 21, 0, 0, 0, 0, o.Location())

	_, ok, err := FindCrossing(o, date, -SunsetDepression, observer.DirectionRising)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("sunrise should not occur during polar night")
	}

	_, ok, err = FindCrossing(o, date, -CivilDepression, observer.DirectionRising)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("civil dawn should still occur during Tromsø's polar night")
	}
}

func TestDayExtremumOrdering(t *testing.T) {
	locations := []struct {
		name     string
		lat, lon float64
		tz       string
	}{
		{"London", 51.5074, -0.1277, "Europe/London"},
		{"Quito", -0.1807, -78.4678, "America/Guayaquil"},
		{"Tromso", 69.6492, 18.9553, "Europe/Oslo"},
		{"Melbourne", -37.8136, 144.9631, "Australia/Melbourne"},
	}
	dates := []time.Time{
		time.Date(2023, 3, 20, 0, 0, 0, 0, time.UTC),
		time.Date(2023, 6, 21, 0, 0, 0, 0, time.UTC),
		time.Date(2023, 9, 23, 0, 0, 0, 0, time.UTC),
		time.Date(2023, 12, 21, 0, 0, 0, 0, time.UTC),
	}

	for _, loc := range locations {
		o := mustObserver(t, loc.lat, loc.lon, loc.tz, observer.HorizonModel{})
		for _, date := range dates {
			_, maxElev := dayExtremum(o, date, true)
			_, minElev := dayExtremum(o, date, false)
			if maxElev < minElev {
				t.Errorf("%s %v: max elevation %.3f below min %.3f", loc.name, date, maxElev, minElev)
			}
		}
	}
}
