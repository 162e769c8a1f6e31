package config

import (
	"errors"
	"fire-dispatch-service/internal/domain"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario describes one self-contained dispatch: a city, a roster and a set of fires.
type Scenario struct {
	Name         string              `yaml:"name"`
	Width        int                 `yaml:"width"`
	Height       int                 `yaml:"height"`
	Station      domain.Coordinate   `yaml:"station"`
	Firefighters int                 `yaml:"firefighters"`
	Strategy     string              `yaml:"strategy"`
	Fires        []domain.Coordinate `yaml:"fires"`
	// ExpectedDistance is optional; nil means the result is not checked.
	ExpectedDistance *int `yaml:"expected_distance"`
}

type ScenarioFile struct {
	Version   int        `yaml:"version"`
	Scenarios []Scenario `yaml:"scenarios"`
}

func LoadScenarioFile(path string) (*ScenarioFile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load scenarios: read %q: %w", path, err)
	}
	return ParseScenarioFile(b)
}

func ParseScenarioFile(b []byte) (*ScenarioFile, error) {
	var f ScenarioFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse scenarios: %w", err)
	}

	if f.Version != 1 {
		return nil, fmt.Errorf("unsupported scenarios version: %d", f.Version)
	}

	for i, sc := range f.Scenarios {
		if err := sc.Validate(); err != nil {
			return nil, fmt.Errorf("parse scenarios: scenario #%d: %w", i+1, err)
		}
	}

	return &f, nil
}

func (s Scenario) Validate() error {
	if s.Name == "" {
		return errors.New("name is required")
	}
	if s.Width < 1 || s.Height < 1 {
		return fmt.Errorf("%s: grid must be at least 1x1", s.Name)
	}
	if s.Firefighters < 0 {
		return fmt.Errorf("%s: firefighters must not be negative", s.Name)
	}
	if len(s.Fires) == 0 {
		return fmt.Errorf("%s: at least one fire is required", s.Name)
	}
	return nil
}
