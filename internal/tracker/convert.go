package tracker

import (
	"fmt"

	"github.com/heliograph/heliograph/pkg/config"
	"github.com/heliograph/heliograph/pkg/ephemeris"
	"github.com/heliograph/heliograph/pkg/observer"
	"github.com/heliograph/heliograph/pkg/schedule"
)

// Rule names accepted in subject configuration.
const (
	ruleEvent     = "event"
	ruleElevation = "elevation"
	ruleMidnight  = "midnight"
)

// buildObserver converts a configured location into an observer. Geometry
// errors surface at startup, before any subject is tracked.
func buildObserver(loc config.LocationData) (*observer.Observer, error) {
	horizon := observer.HorizonModel{AboveGround: loc.AboveGround}
	if ob := loc.EastObstruction; ob != nil {
		horizon.East = &observer.Obstruction{Distance: ob.Distance, Height: ob.Height}
	}
	if ob := loc.WestObstruction; ob != nil {
		horizon.West = &observer.Obstruction{Distance: ob.Distance, Height: ob.Height}
	}
	o, err := observer.New(loc.Latitude, loc.Longitude, loc.TimeZone, horizon)
	if err != nil {
		return nil, fmt.Errorf("location %q: %w", loc.Name, err)
	}
	return o, nil
}

// parseRule converts a configured subject into a scheduling rule.
func parseRule(sub config.SubjectData) (schedule.Rule, error) {
	switch sub.Rule {
	case ruleEvent:
		kind := ephemeris.EventKind(sub.Event)
		if !ephemeris.KnownEvent(kind) {
			return schedule.Rule{}, fmt.Errorf("subject %q: unknown event %q", sub.Name, sub.Event)
		}
		return schedule.Rule{Kind: schedule.RuleStandardEvent, Event: kind}, nil
	case ruleElevation:
		dir, err := parseDirection(sub.Direction)
		if err != nil {
			return schedule.Rule{}, fmt.Errorf("subject %q: %w", sub.Name, err)
		}
		return schedule.Rule{
			Kind:      schedule.RuleCustomElevation,
			Elevation: sub.Elevation,
			Direction: dir,
		}, nil
	case ruleMidnight:
		return schedule.Rule{Kind: schedule.RuleLocalMidnight}, nil
	default:
		return schedule.Rule{}, fmt.Errorf("subject %q: unknown rule %q", sub.Name, sub.Rule)
	}
}

func parseDirection(s string) (observer.Direction, error) {
	switch s {
	case "rising":
		return observer.DirectionRising, nil
	case "setting":
		return observer.DirectionSetting, nil
	default:
		return observer.DirectionNone, fmt.Errorf("direction must be %q or %q, got %q", "rising", "setting", s)
	}
}
