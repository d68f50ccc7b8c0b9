package ephemeris

import (
	"time"

	"github.com/heliograph/heliograph/pkg/observer"
)

// Standard depression angles, degrees below the geometric horizon.
const (
	// SunsetDepression accounts for refraction plus the sun's apparent
	// radius: the upper limb touches the horizon when the center is 0.833
	// degrees below it.
	SunsetDepression       = 0.833
	CivilDepression        = 6.0
	NauticalDepression     = 12.0
	AstronomicalDepression = 18.0
)

// EventKind names a standard solar event.
type EventKind string

const (
	SolarMidnight    EventKind = "solar_midnight"
	AstronomicalDawn EventKind = "astronomical_dawn"
	NauticalDawn     EventKind = "nautical_dawn"
	Dawn             EventKind = "dawn"
	Sunrise          EventKind = "sunrise"
	SolarNoon        EventKind = "solar_noon"
	Sunset           EventKind = "sunset"
	Dusk             EventKind = "dusk"
	NauticalDusk     EventKind = "nautical_dusk"
	AstronomicalDusk EventKind = "astronomical_dusk"
)

// eventSpec ties a crossing event kind to its nominal depression angle and
// direction. Solar noon and midnight are extrema, not crossings, and are
// not listed here.
type eventSpec struct {
	kind       EventKind
	depression float64
	direction  observer.Direction
}

var crossingEvents = []eventSpec{
	{AstronomicalDawn, AstronomicalDepression, observer.DirectionRising},
	{NauticalDawn, NauticalDepression, observer.DirectionRising},
	{Dawn, CivilDepression, observer.DirectionRising},
	{Sunrise, SunsetDepression, observer.DirectionRising},
	{Sunset, SunsetDepression, observer.DirectionSetting},
	{Dusk, CivilDepression, observer.DirectionSetting},
	{NauticalDusk, NauticalDepression, observer.DirectionSetting},
	{AstronomicalDusk, AstronomicalDepression, observer.DirectionSetting},
}

// KnownEvent reports whether kind names a standard solar event.
func KnownEvent(kind EventKind) bool {
	if kind == SolarNoon || kind == SolarMidnight {
		return true
	}
	_, ok := crossingSpec(kind)
	return ok
}

// crossingSpec returns the spec for a crossing event kind, false for noon,
// midnight, and unknown kinds.
func crossingSpec(kind EventKind) (eventSpec, bool) {
	for _, spec := range crossingEvents {
		if spec.kind == kind {
			return spec, true
		}
	}
	return eventSpec{}, false
}

// SolarEvent is one named event on one local calendar date. Instant is nil
// when the event does not occur on that date (polar day or night); that is
// a normal outcome, not an error.
type SolarEvent struct {
	Kind      EventKind
	Date      time.Time // midnight at the start of the local calendar date
	Direction observer.Direction
	Instant   *time.Time
}

// Occurs reports whether the event has an instant on its date.
func (e SolarEvent) Occurs() bool {
	return e.Instant != nil
}
