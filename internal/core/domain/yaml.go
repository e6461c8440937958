package domain

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// UnmarshalYAML decodes durations from human-readable strings ("30s",
// "1m30s"). Absent fields keep whatever the policy already holds, so a
// partial recipe file layers over DefaultRecipe.
func (p *HealthcheckPolicy) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Test        []string `yaml:"test"`
		Interval    string   `yaml:"interval"`
		Timeout     string   `yaml:"timeout"`
		StartPeriod string   `yaml:"start_period"`
		Retries     *int     `yaml:"retries"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	if raw.Test != nil {
		p.Test = raw.Test
	}
	if raw.Retries != nil {
		p.Retries = *raw.Retries
	}
	for _, field := range []struct {
		name string
		in   string
		out  *time.Duration
	}{
		{"interval", raw.Interval, &p.Interval},
		{"timeout", raw.Timeout, &p.Timeout},
		{"start_period", raw.StartPeriod, &p.StartPeriod},
	} {
		if field.in == "" {
			continue
		}
		d, err := time.ParseDuration(field.in)
		if err != nil {
			return fmt.Errorf("healthcheck %s: %w", field.name, err)
		}
		*field.out = d
	}
	return nil
}

// MarshalYAML renders durations as strings so marshalled recipes stay
// readable and round-trip through UnmarshalYAML.
func (p HealthcheckPolicy) MarshalYAML() (interface{}, error) {
	return struct {
		Test        []string `yaml:"test"`
		Interval    string   `yaml:"interval"`
		Timeout     string   `yaml:"timeout"`
		StartPeriod string   `yaml:"start_period"`
		Retries     int      `yaml:"retries"`
	}{
		Test:        p.Test,
		Interval:    p.Interval.String(),
		Timeout:     p.Timeout.String(),
		StartPeriod: p.StartPeriod.String(),
		Retries:     p.Retries,
	}, nil
}
