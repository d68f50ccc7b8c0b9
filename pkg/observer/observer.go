// Package observer models a fixed geographic observer: coordinates, local
// time zone, and the geometry of its effective horizon. An Observer is an
// immutable value; all validation happens at construction.
package observer

import (
	"fmt"
	"math"
	"time"
)

// dipCoefficient converts observer height above ground (meters) to horizon
// dip in degrees: dip = dipCoefficient * sqrt(h). The value includes the
// standard refraction allowance (~2.12 arcmin per sqrt meter) and keeps
// computed rise/set times within a minute of almanac values for heights up
// to a few hundred meters.
const dipCoefficient = 0.0353

// Direction identifies which side of solar noon an event belongs to.
type Direction int

const (
	// DirectionNone is used for events that are not crossings, such as
	// solar noon and solar midnight.
	DirectionNone Direction = iota
	// DirectionRising selects the morning (easterly) crossing.
	DirectionRising
	// DirectionSetting selects the evening (westerly) crossing.
	DirectionSetting
)

func (d Direction) String() string {
	switch d {
	case DirectionRising:
		return "rising"
	case DirectionSetting:
		return "setting"
	default:
		return "none"
	}
}

// ConfigError reports invalid observer geometry. It is only ever returned
// at construction; once an Observer exists its geometry is valid.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid observer configuration: %s: %s", e.Field, e.Reason)
}

// Obstruction describes terrain or a structure blocking the horizon on one
// side of the observer. Height is the top of the obstruction relative to
// the observer's eye line and may be negative (obstruction below the
// observer). Distance is the horizontal distance to it and must be
// positive.
type Obstruction struct {
	Distance float64 // meters, > 0
	Height   float64 // meters, signed, relative to observer
}

// offset returns the obstruction's contribution to the effective
// depression angle, in degrees. Negative when the obstruction top is below
// the observer's eye line.
func (ob *Obstruction) offset() float64 {
	return math.Atan(ob.Height/ob.Distance) * 180 / math.Pi
}

// HorizonModel describes the observer's effective horizon. When neither
// side has an Obstruction, AboveGround (a plain height above local ground,
// meters) applies symmetrically. When one or both sides have an
// Obstruction, that side uses it and the other side falls back to
// AboveGround.
type HorizonModel struct {
	AboveGround float64
	East        *Obstruction // rising side
	West        *Obstruction // setting side
}

func (h *HorizonModel) validate() error {
	if h.AboveGround < 0 {
		return &ConfigError{"above_ground", fmt.Sprintf("height %.1f m must not be negative", h.AboveGround)}
	}
	for side, ob := range map[string]*Obstruction{"east_obstruction": h.East, "west_obstruction": h.West} {
		if ob == nil {
			continue
		}
		if ob.Distance <= 0 {
			return &ConfigError{side, fmt.Sprintf("distance %.1f m must be positive", ob.Distance)}
		}
	}
	return nil
}

// Observer is an immutable location plus horizon geometry. Construct with
// New; the zero value is not valid.
type Observer struct {
	Latitude  float64
	Longitude float64
	horizon   HorizonModel
	loc       *time.Location
}

// New validates coordinates and horizon geometry and returns an Observer.
// timeZone must be an IANA zone name, e.g. "Europe/London".
func New(latitude, longitude float64, timeZone string, horizon HorizonModel) (*Observer, error) {
	if latitude < -90 || latitude > 90 {
		return nil, &ConfigError{"latitude", fmt.Sprintf("%.4f out of range -90..90", latitude)}
	}
	if longitude < -180 || longitude > 180 {
		return nil, &ConfigError{"longitude", fmt.Sprintf("%.4f out of range -180..180", longitude)}
	}
	loc, err := time.LoadLocation(timeZone)
	if err != nil {
		return nil, &ConfigError{"time_zone", err.Error()}
	}
	if err := horizon.validate(); err != nil {
		return nil, err
	}
	return &Observer{
		Latitude:  latitude,
		Longitude: longitude,
		horizon:   horizon,
		loc:       loc,
	}, nil
}

// Location returns the observer's time zone.
func (o *Observer) Location() *time.Location {
	return o.loc
}

// DepressionOffset returns the correction, in degrees, to add to a nominal
// depression angle for the given direction. For a plain above-ground
// height h the offset is the horizon dip, dipCoefficient*sqrt(h). For an
// obstruction it is atan(height/distance), which may be negative.
// DirectionNone uses the symmetric above-ground model.
func (o *Observer) DepressionOffset(dir Direction) float64 {
	var ob *Obstruction
	switch dir {
	case DirectionRising:
		ob = o.horizon.East
	case DirectionSetting:
		ob = o.horizon.West
	}
	if ob != nil {
		return ob.offset()
	}
	return dipCoefficient * math.Sqrt(o.horizon.AboveGround)
}
