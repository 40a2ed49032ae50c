package config

import (
	"fmt"
	"os"

	"appointment/internal/workinghours"

	"gopkg.in/yaml.v3"
)

// DoctorConfig is a single entry of doctors.yaml.
type DoctorConfig struct {
	ID           int64  `yaml:"id"`
	Name         string `yaml:"name"`
	Specialty    string `yaml:"specialty"`
	WorkingHours string `yaml:"working_hours"` // "07:00-18:00"
	IsActive     *bool  `yaml:"is_active,omitempty"`
}

// Active reports whether the doctor accepts appointments; unset means active.
func (d DoctorConfig) Active() bool {
	return d.IsActive == nil || *d.IsActive
}

// DoctorsConfig is the root of doctors.yaml.
type DoctorsConfig struct {
	Defaults struct {
		WorkingHours string `yaml:"working_hours"`
	} `yaml:"defaults"`
	Doctors []DoctorConfig `yaml:"doctors"`
}

// LoadDoctorsConfig loads and validates the doctor directory from YAML.
func LoadDoctorsConfig(path string) (*DoctorsConfig, error) {
	if path == "" {
		path = "configs/doctors.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read doctors config: %w", err)
	}

	var cfg DoctorsConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse doctors config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate doctors config: %w", err)
	}

	cfg.applyDefaults()

	return &cfg, nil
}

// Validate checks ids and names. Working hours are checked per submission instead.
func (c *DoctorsConfig) Validate() error {
	ids := make(map[int64]bool)

	for i, d := range c.Doctors {
		if d.ID <= 0 {
			return fmt.Errorf("doctors[%d]: id must be positive, got %d", i, d.ID)
		}
		if ids[d.ID] {
			return fmt.Errorf("doctors[%d]: duplicate id %d", i, d.ID)
		}
		ids[d.ID] = true

		if d.Name == "" {
			return fmt.Errorf("doctors[%d]: name is required", i)
		}
	}

	return nil
}

func (c *DoctorsConfig) applyDefaults() {
	for i := range c.Doctors {
		if c.Doctors[i].WorkingHours == "" {
			c.Doctors[i].WorkingHours = c.Defaults.WorkingHours
		}
	}
}

// MalformedWorkingHours returns doctors whose working hours will fail validation.
func (c *DoctorsConfig) MalformedWorkingHours() []DoctorConfig {
	var bad []DoctorConfig
	for _, d := range c.Doctors {
		if _, err := workinghours.ParseWindow(d.WorkingHours); err != nil {
			bad = append(bad, d)
		}
	}
	return bad
}

// String returns a summary of the configuration.
func (c *DoctorsConfig) String() string {
	active := 0
	for _, d := range c.Doctors {
		if d.Active() {
			active++
		}
	}
	return fmt.Sprintf("DoctorsConfig: %d doctors (%d active)", len(c.Doctors), active)
}
