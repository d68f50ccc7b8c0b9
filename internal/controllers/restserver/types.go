package restserver

import (
	"time"

	"github.com/heliograph/heliograph/pkg/sunphase"
)

// LocationResponse describes one configured location.
type LocationResponse struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	TimeZone  string  `json:"time_zone"`
	Subjects  int     `json:"subjects"`
}

// EventResponse is one named solar event on one local date. At is omitted
// when the event does not occur that day.
type EventResponse struct {
	Kind string     `json:"kind"`
	At   *time.Time `json:"at,omitempty"`
}

// DayResponse is the event set for one local calendar date.
type DayResponse struct {
	Date              string          `json:"date"`
	Events            []EventResponse `json:"events"`
	NoonElevation     float64         `json:"noon_elevation"`
	MidnightElevation float64         `json:"midnight_elevation"`
	DaylightSeconds   *float64        `json:"daylight_seconds,omitempty"`
}

// EphemerisResponse carries yesterday, today, and tomorrow around the
// requested date so clients can compute spans across local midnight.
type EphemerisResponse struct {
	Location string        `json:"location"`
	Days     []DayResponse `json:"days"`
}

// PositionResponse is the sun's position at one instant.
type PositionResponse struct {
	Location     string    `json:"location"`
	At           time.Time `json:"at"`
	ElevationDeg float64   `json:"elevation"`
	AzimuthDeg   float64   `json:"azimuth"`
}

// PhaseResponse is the sun phase classification at one instant.
type PhaseResponse struct {
	Location     string                  `json:"location"`
	At           time.Time               `json:"at"`
	ElevationDeg float64                 `json:"elevation"`
	Sun          sunphase.Classification `json:"sun"`
}

// ErrorResponse is the JSON body for non-2xx responses.
type ErrorResponse struct {
	Error string `json:"error"`
}
