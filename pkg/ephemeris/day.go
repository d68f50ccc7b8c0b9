// Package ephemeris computes the instants of standard solar events for a
// calendar date, and answers the two inverse queries: when does the sun
// cross a given elevation, and what is its elevation at a given instant.
// All computation is pure and safe for concurrent use.
package ephemeris

import (
	"time"

	"github.com/heliograph/heliograph/pkg/observer"
	"github.com/heliograph/heliograph/pkg/solarpos"
)

// DayEphemeris is the complete event set for one local calendar date.
// Immutable once computed. Identical inputs always produce identical
// results; there is no hidden time-dependent state.
type DayEphemeris struct {
	Observer *observer.Observer
	Date     time.Time // midnight at the start of the local calendar date

	Events map[EventKind]SolarEvent

	// Elevations at the day's extrema, degrees. The extrema themselves are
	// the solar_noon and solar_midnight events.
	NoonElevation     float64
	MidnightElevation float64
}

// Compute builds the ephemeris for the local calendar date containing
// date in the observer's zone. Depression-angle events fold in the
// observer's per-direction horizon offset; events that do not occur that
// day are present in the map with a nil Instant.
func Compute(o *observer.Observer, date time.Time) (*DayEphemeris, error) {
	dayStart, _ := localDay(o, date)

	eph := &DayEphemeris{
		Observer: o,
		Date:     dayStart,
		Events:   make(map[EventKind]SolarEvent, len(crossingEvents)+2),
	}

	noonAt, noonElev := dayExtremum(o, dayStart, true)
	midnightAt, midnightElev := dayExtremum(o, dayStart, false)
	eph.NoonElevation = noonElev
	eph.MidnightElevation = midnightElev
	eph.Events[SolarNoon] = SolarEvent{
		Kind: SolarNoon, Date: dayStart, Direction: observer.DirectionNone, Instant: &noonAt,
	}
	eph.Events[SolarMidnight] = SolarEvent{
		Kind: SolarMidnight, Date: dayStart, Direction: observer.DirectionNone, Instant: &midnightAt,
	}

	for _, spec := range crossingEvents {
		ev, err := crossingEvent(o, dayStart, spec)
		if err != nil {
			return nil, err
		}
		eph.Events[spec.kind] = ev
	}
	return eph, nil
}

// crossingEvent computes a single depression-angle event for the local
// calendar date starting at dayStart.
func crossingEvent(o *observer.Observer, dayStart time.Time, spec eventSpec) (SolarEvent, error) {
	target := -(spec.depression + o.DepressionOffset(spec.direction))
	ev := SolarEvent{Kind: spec.kind, Date: dayStart, Direction: spec.direction}
	at, ok, err := FindCrossing(o, dayStart, target, spec.direction)
	if err != nil {
		return SolarEvent{}, err
	}
	if ok {
		ev.Instant = &at
	}
	return ev, nil
}

// EventOn computes just one named event for the local calendar date
// containing date, without building the full day. Used by schedulers that
// walk forward day by day.
func EventOn(o *observer.Observer, date time.Time, kind EventKind) (SolarEvent, error) {
	dayStart, _ := localDay(o, date)
	switch kind {
	case SolarNoon:
		at, _ := dayExtremum(o, dayStart, true)
		return SolarEvent{Kind: kind, Date: dayStart, Direction: observer.DirectionNone, Instant: &at}, nil
	case SolarMidnight:
		at, _ := dayExtremum(o, dayStart, false)
		return SolarEvent{Kind: kind, Date: dayStart, Direction: observer.DirectionNone, Instant: &at}, nil
	}
	spec, ok := crossingSpec(kind)
	if !ok {
		return SolarEvent{}, errUnknownKind(kind)
	}
	return crossingEvent(o, dayStart, spec)
}

type errUnknownKind EventKind

func (e errUnknownKind) Error() string {
	return "unknown solar event kind: " + string(e)
}

// Event returns the named event and whether the kind is part of this
// ephemeris.
func (d *DayEphemeris) Event(kind EventKind) (SolarEvent, bool) {
	ev, ok := d.Events[kind]
	return ev, ok
}

// Span returns the signed duration from one event's instant to another's
// on this date. Missing endpoints propagate: the second return value is
// false, never a zero duration.
func (d *DayEphemeris) Span(from, to EventKind) (time.Duration, bool) {
	a, okA := d.Events[from]
	b, okB := d.Events[to]
	if !okA || !okB || !a.Occurs() || !b.Occurs() {
		return 0, false
	}
	return b.Instant.Sub(*a.Instant), true
}

// Daylight is the sunrise-to-sunset span.
func (d *DayEphemeris) Daylight() (time.Duration, bool) {
	return d.Span(Sunrise, Sunset)
}

// CivilDaylight is the dawn-to-dusk span.
func (d *DayEphemeris) CivilDaylight() (time.Duration, bool) {
	return d.Span(Dawn, Dusk)
}

// NauticalDaylight is the nautical-dawn-to-nautical-dusk span.
func (d *DayEphemeris) NauticalDaylight() (time.Duration, bool) {
	return d.Span(NauticalDawn, NauticalDusk)
}

// AstronomicalDaylight is the astronomical-dawn-to-astronomical-dusk span.
func (d *DayEphemeris) AstronomicalDaylight() (time.Duration, bool) {
	return d.Span(AstronomicalDawn, AstronomicalDusk)
}

// NightSpan is the duration from one day's dusk-family event to the next
// day's matching dawn-family event. A missing endpoint on either day makes
// the span absent.
func NightSpan(o *observer.Observer, date time.Time, dusk, nextDawn EventKind) (time.Duration, bool, error) {
	duskEv, err := EventOn(o, date, dusk)
	if err != nil {
		return 0, false, err
	}
	dayStart, _ := localDay(o, date)
	dawnEv, err := EventOn(o, dayStart.AddDate(0, 0, 1), nextDawn)
	if err != nil {
		return 0, false, err
	}
	if !duskEv.Occurs() || !dawnEv.Occurs() {
		return 0, false, nil
	}
	return dawnEv.Instant.Sub(*duskEv.Instant), true, nil
}

// Position returns the sun's geometric elevation and azimuth for the
// observer at instant t.
func Position(o *observer.Observer, t time.Time) solarpos.Position {
	return solarpos.At(o.Latitude, o.Longitude, t)
}

// ElevationAt returns the sun's geometric elevation for the observer at
// instant t, degrees.
func ElevationAt(o *observer.Observer, t time.Time) float64 {
	return elevationAt(o, t)
}
