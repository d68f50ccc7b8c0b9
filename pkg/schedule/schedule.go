// Package schedule decides, for each tracked subject, the wall-clock
// instant at which its value must next be recomputed. Every next-due
// instant is re-derived from a fresh per-date ephemeris anchored to local
// calendar dates; the scheduler never adds a fixed 24-hour offset, which
// would drift across daylight-saving transitions and the sun's annual
// movement.
package schedule

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/heliograph/heliograph/pkg/ephemeris"
	"github.com/heliograph/heliograph/pkg/observer"
)

// MaxForwardSearchDays bounds how far ahead the scheduler looks for an
// event that is absent today. Near the poles an event can fail to occur
// for months; half a year plus margin covers the longest possible gap.
// Beyond the cap the subject is reported perpetually absent rather than
// searched indefinitely.
const MaxForwardSearchDays = 190

// RuleKind selects which variant of Rule applies.
type RuleKind int

const (
	// RuleStandardEvent tracks a named solar event (sunrise, dusk, ...).
	RuleStandardEvent RuleKind = iota
	// RuleCustomElevation tracks the sun crossing an arbitrary elevation
	// in a fixed direction.
	RuleCustomElevation
	// RuleLocalMidnight recomputes a point sample (such as instantaneous
	// elevation) at the start of each local calendar date.
	RuleLocalMidnight
)

// Rule describes what changes a subject's value next.
type Rule struct {
	Kind RuleKind

	// Event applies to RuleStandardEvent.
	Event ephemeris.EventKind

	// Elevation and Direction apply to RuleCustomElevation.
	Elevation float64
	Direction observer.Direction
}

func (r Rule) String() string {
	switch r.Kind {
	case RuleStandardEvent:
		return string(r.Event)
	case RuleCustomElevation:
		return fmt.Sprintf("%s through %.3f deg", r.Direction, r.Elevation)
	default:
		return "local midnight"
	}
}

// Entry is one subject's scheduling state. Entries are never shared across
// subjects; the caller owns the single timer behind each one.
type Entry struct {
	ID           uuid.UUID
	Subject      string
	Rule         Rule
	LastComputed time.Time
	NextDue      time.Time
}

// NewEntry creates a scheduling entry for a subject.
func NewEntry(subject string, rule Rule) *Entry {
	return &Entry{
		ID:      uuid.New(),
		Subject: subject,
		Rule:    rule,
	}
}

// Advance records a completed recomputation and its next due instant.
func (e *Entry) Advance(computed, nextDue time.Time) {
	e.LastComputed = computed
	e.NextDue = nextDue
}

// NextDue returns the next instant strictly after ref at which the
// entry's subject must be recomputed. The boolean is false when the
// subject's event does not occur within MaxForwardSearchDays of ref, in
// which case the subject should be rendered absent. Errors are transient
// solver failures; retry on the next tick.
func NextDue(e *Entry, o *observer.Observer, ref time.Time) (time.Time, bool, error) {
	switch e.Rule.Kind {
	case RuleLocalMidnight:
		return nextLocalMidnight(o, ref), true, nil
	case RuleStandardEvent:
		return searchForward(o, ref, func(date time.Time) (*time.Time, error) {
			ev, err := ephemeris.EventOn(o, date, e.Rule.Event)
			if err != nil {
				return nil, err
			}
			return ev.Instant, nil
		})
	case RuleCustomElevation:
		return searchForward(o, ref, func(date time.Time) (*time.Time, error) {
			at, ok, err := ephemeris.FindCrossing(o, date, e.Rule.Elevation, e.Rule.Direction)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, nil
			}
			return &at, nil
		})
	default:
		return time.Time{}, false, errors.New("unknown schedule rule kind")
	}
}

// nextLocalMidnight returns the start of the next local calendar date
// after ref. Computed via the calendar, not by adding 24 hours, so
// daylight-saving days of 23 or 25 hours land on the correct instant.
func nextLocalMidnight(o *observer.Observer, ref time.Time) time.Time {
	local := ref.In(o.Location())
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, o.Location()).AddDate(0, 0, 1)
}

// searchForward walks local calendar dates starting at ref's date, asking
// instantOn for the event instant on each, until it finds one strictly
// after ref. A nil instant means the event does not occur that day and the
// walk continues, up to MaxForwardSearchDays.
func searchForward(o *observer.Observer, ref time.Time, instantOn func(date time.Time) (*time.Time, error)) (time.Time, bool, error) {
	local := ref.In(o.Location())
	date := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, o.Location())

	for day := 0; day < MaxForwardSearchDays; day++ {
		at, err := instantOn(date)
		if err != nil {
			return time.Time{}, false, err
		}
		if at != nil && at.After(ref) {
			return *at, true, nil
		}
		date = date.AddDate(0, 0, 1)
	}
	return time.Time{}, false, nil
}
