package config

import (
	"os"

	"gopkg.in/yaml.v2"
)

// YAMLProvider implements Provider for YAML configuration files.
type YAMLProvider struct {
	filename string
}

// NewYAMLProvider creates a new YAML configuration provider.
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{filename: filename}
}

// yamlConfig mirrors ConfigData with YAML tags.
type yamlConfig struct {
	HTTP struct {
		ListenAddr string `yaml:"listen_addr"`
	} `yaml:"http"`
	Locations []locationYAML `yaml:"locations"`
}

type locationYAML struct {
	Name            string           `yaml:"name"`
	Latitude        float64          `yaml:"latitude"`
	Longitude       float64          `yaml:"longitude"`
	TimeZone        string           `yaml:"time_zone"`
	AboveGround     float64          `yaml:"above_ground,omitempty"`
	EastObstruction *obstructionYAML `yaml:"east_obstruction,omitempty"`
	WestObstruction *obstructionYAML `yaml:"west_obstruction,omitempty"`
	Subjects        []subjectYAML    `yaml:"subjects,omitempty"`
}

type obstructionYAML struct {
	Distance float64 `yaml:"distance"`
	Height   float64 `yaml:"height"`
}

type subjectYAML struct {
	Name      string  `yaml:"name"`
	Rule      string  `yaml:"rule"`
	Event     string  `yaml:"event,omitempty"`
	Elevation float64 `yaml:"elevation,omitempty"`
	Direction string  `yaml:"direction,omitempty"`
}

// LoadConfig loads the complete configuration from the YAML file.
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	raw, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	var parsed yamlConfig
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return nil, err
	}

	cfg := &ConfigData{
		HTTP:      HTTPData{ListenAddr: parsed.HTTP.ListenAddr},
		Locations: make([]LocationData, len(parsed.Locations)),
	}
	for i, loc := range parsed.Locations {
		cfg.Locations[i] = LocationData{
			Name:            loc.Name,
			Latitude:        loc.Latitude,
			Longitude:       loc.Longitude,
			TimeZone:        loc.TimeZone,
			AboveGround:     loc.AboveGround,
			EastObstruction: loc.EastObstruction.toData(),
			WestObstruction: loc.WestObstruction.toData(),
			Subjects:        make([]SubjectData, len(loc.Subjects)),
		}
		for j, sub := range loc.Subjects {
			cfg.Locations[i].Subjects[j] = SubjectData{
				Name:      sub.Name,
				Rule:      sub.Rule,
				Event:     sub.Event,
				Elevation: sub.Elevation,
				Direction: sub.Direction,
			}
		}
	}
	return cfg, nil
}

func (ob *obstructionYAML) toData() *ObstructionData {
	if ob == nil {
		return nil
	}
	return &ObstructionData{Distance: ob.Distance, Height: ob.Height}
}

// GetLocations returns the configured locations.
func (y *YAMLProvider) GetLocations() ([]LocationData, error) {
	cfg, err := y.LoadConfig()
	if err != nil {
		return nil, err
	}
	return cfg.Locations, nil
}

// IsReadOnly returns true; YAML files are never written by heliograph.
func (y *YAMLProvider) IsReadOnly() bool { return true }

// Close is a no-op for YAML files.
func (y *YAMLProvider) Close() error { return nil }
