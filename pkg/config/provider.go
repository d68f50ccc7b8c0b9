// Package config loads heliograph configuration: the HTTP listener, the
// observed locations, and the tracked subjects at each location.
package config

// Provider defines the interface for configuration data sources.
type Provider interface {
	// LoadConfig loads the complete configuration.
	LoadConfig() (*ConfigData, error)

	// GetLocations returns just the configured locations.
	GetLocations() ([]LocationData, error)

	IsReadOnly() bool
	Close() error
}

// ConfigData is the complete configuration.
type ConfigData struct {
	HTTP      HTTPData       `json:"http,omitempty"`
	Locations []LocationData `json:"locations"`
}

// HTTPData configures the REST listener.
type HTTPData struct {
	ListenAddr string `json:"listen_addr,omitempty"`
}

// LocationData describes one observed location and its horizon geometry.
// EastObstruction/WestObstruction are optional; a side without one falls
// back to AboveGround.
type LocationData struct {
	Name            string           `json:"name"`
	Latitude        float64          `json:"latitude"`
	Longitude       float64          `json:"longitude"`
	TimeZone        string           `json:"time_zone"`
	AboveGround     float64          `json:"above_ground,omitempty"`
	EastObstruction *ObstructionData `json:"east_obstruction,omitempty"`
	WestObstruction *ObstructionData `json:"west_obstruction,omitempty"`
	Subjects        []SubjectData    `json:"subjects,omitempty"`
}

// ObstructionData describes a horizon obstruction on one side.
type ObstructionData struct {
	Distance float64 `json:"distance"`
	Height   float64 `json:"height"`
}

// SubjectData describes one tracked subject. Rule is one of "event",
// "elevation", or "midnight". Event names a standard solar event for the
// "event" rule; Elevation and Direction apply to the "elevation" rule.
type SubjectData struct {
	Name      string  `json:"name"`
	Rule      string  `json:"rule"`
	Event     string  `json:"event,omitempty"`
	Elevation float64 `json:"elevation,omitempty"`
	Direction string  `json:"direction,omitempty"`
}
