package ephemeris

import (
	"errors"
	"time"

	"github.com/heliograph/heliograph/pkg/observer"
	"github.com/heliograph/heliograph/pkg/solarpos"
)

// ErrNoConvergence reports that the root-finder exhausted its iteration
// budget without isolating a crossing. It indicates a defect or
// pathological input rather than a true astronomical absence; callers
// should retry on their next tick instead of treating the subject as
// permanently absent.
var ErrNoConvergence = errors.New("elevation crossing search did not converge")

const (
	// gridStep is the coarse sampling interval used to bracket a sign
	// change of elevation(t) - target across the local day.
	gridStep = 5 * time.Minute
	// crossingPrecision is the bisection termination width.
	crossingPrecision = 500 * time.Millisecond
	// maxBisectIterations bounds the refinement loop. A bracketed bisection
	// over a day converges in under 40 halvings, so hitting this cap means
	// something is wrong with the elevation function, not the sky.
	maxBisectIterations = 64
	// extremumScanStep is the sampling interval used to locate the day's
	// elevation extrema before refinement.
	extremumScanStep = time.Minute
)

// localDay returns the start and end of the local calendar date containing
// date, in the observer's zone. The span is not always 24 hours: daylight
// saving transitions make it 23 or 25.
func localDay(o *observer.Observer, date time.Time) (start, end time.Time) {
	d := date.In(o.Location())
	start = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, o.Location())
	return start, start.AddDate(0, 0, 1)
}

func elevationAt(o *observer.Observer, t time.Time) float64 {
	return solarpos.Elevation(o.Latitude, o.Longitude, t)
}

// nearestSecond rounds t to the nearest whole second.
func nearestSecond(t time.Time) time.Time {
	return t.Round(time.Second)
}

// FindCrossing locates the instant during date's local calendar day at
// which the sun's geometric elevation crosses targetElev in the given
// direction. The second return value is false when no such crossing occurs
// that day (polar day or night, or a target outside the day's elevation
// range); that is a normal result. A tangent touch at the day's maximum or
// minimum is not a crossing. dir must be DirectionRising or
// DirectionSetting.
func FindCrossing(o *observer.Observer, date time.Time, targetElev float64, dir observer.Direction) (time.Time, bool, error) {
	if dir != observer.DirectionRising && dir != observer.DirectionSetting {
		return time.Time{}, false, errors.New("crossing search requires a rising or setting direction")
	}

	start, end := localDay(o, date)

	// Coarse scan for a sign change of f(t) = elevation(t) - target that
	// matches the requested direction. The elevation curve over a civil-use
	// day is unimodal, so the first matching bracket is the only one.
	prevT := start
	prevF := elevationAt(o, prevT) - targetElev
	for t := start.Add(gridStep); !t.After(end); t = t.Add(gridStep) {
		f := elevationAt(o, t) - targetElev
		var bracketed bool
		if dir == observer.DirectionRising {
			bracketed = prevF < 0 && f >= 0
		} else {
			bracketed = prevF > 0 && f <= 0
		}
		if bracketed {
			instant, err := bisectCrossing(o, prevT, t, targetElev, dir)
			if err != nil {
				return time.Time{}, false, err
			}
			return instant, true, nil
		}
		prevT, prevF = t, f
	}
	return time.Time{}, false, nil
}

// bisectCrossing refines a bracketing interval [t0, t1] where
// elevation(t0) and elevation(t1) straddle target in the requested
// direction, to crossingPrecision.
func bisectCrossing(o *observer.Observer, t0, t1 time.Time, target float64, dir observer.Direction) (time.Time, error) {
	for i := 0; i < maxBisectIterations; i++ {
		if t1.Sub(t0) <= crossingPrecision {
			return nearestSecond(t0.Add(t1.Sub(t0) / 2)), nil
		}
		mid := t0.Add(t1.Sub(t0) / 2)
		f := elevationAt(o, mid) - target
		below := f < 0
		if dir == observer.DirectionSetting {
			below = f > 0
		}
		if below {
			t0 = mid
		} else {
			t1 = mid
		}
	}
	return time.Time{}, ErrNoConvergence
}

// dayExtremum locates the instant of the day's maximum (findMax) or
// minimum elevation by a minute-resolution scan followed by ternary-search
// refinement. Extrema always exist, so unlike crossings this never reports
// absence.
func dayExtremum(o *observer.Observer, date time.Time, findMax bool) (time.Time, float64) {
	start, end := localDay(o, date)

	best := start
	bestElev := elevationAt(o, start)
	for t := start.Add(extremumScanStep); !t.After(end); t = t.Add(extremumScanStep) {
		elev := elevationAt(o, t)
		if (findMax && elev > bestElev) || (!findMax && elev < bestElev) {
			best, bestElev = t, elev
		}
	}

	lo := best.Add(-extremumScanStep)
	hi := best.Add(extremumScanStep)
	if lo.Before(start) {
		lo = start
	}
	if hi.After(end) {
		hi = end
	}
	for hi.Sub(lo) > crossingPrecision {
		third := hi.Sub(lo) / 3
		m1 := lo.Add(third)
		m2 := hi.Add(-third)
		e1 := elevationAt(o, m1)
		e2 := elevationAt(o, m2)
		if (findMax && e1 < e2) || (!findMax && e1 > e2) {
			lo = m1
		} else {
			hi = m2
		}
	}
	at := nearestSecond(lo.Add(hi.Sub(lo) / 2))
	return at, elevationAt(o, at)
}
