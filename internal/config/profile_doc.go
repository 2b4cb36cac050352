package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ProfileDocument is the optional long-form profile kept in profile.yaml.
// It carries the biographical detail that does not fit the wizard questions.
type ProfileDocument struct {
	Biography       string       `yaml:"biography"`
	HomeLocation    string       `yaml:"home_location"`
	CurrentLocation string       `yaml:"current_location"`
	CurrentRole     string       `yaml:"current_role"`
	Experience      []Experience `yaml:"experience"`
	Education       []Education  `yaml:"education"`
	Projects        []string     `yaml:"projects"`
	Personality     []string     `yaml:"personality"`
	Hobbies         []string     `yaml:"hobbies"`
	Notes           []string     `yaml:"notes"`
}

// Experience is one professional position.
type Experience struct {
	Role         string `yaml:"role"`
	Organization string `yaml:"organization"`
	Period       string `yaml:"period"`
	Summary      string `yaml:"summary"`
}

// Education is one degree.
type Education struct {
	Degree      string `yaml:"degree"`
	Institution string `yaml:"institution"`
	Period      string `yaml:"period"`
	Thesis      string `yaml:"thesis"`
}

// LoadProfileDocument reads profile.yaml. A missing file yields (nil, nil).
func LoadProfileDocument(path string) (*ProfileDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read profile document: %w", err)
	}

	var doc ProfileDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse profile document %s: %w", path, err)
	}
	if doc.IsEmpty() {
		return nil, nil
	}
	return &doc, nil
}

// IsEmpty reports whether the document has nothing to contribute.
func (d *ProfileDocument) IsEmpty() bool {
	if d == nil {
		return true
	}
	return d.Biography == "" && d.HomeLocation == "" && d.CurrentLocation == "" &&
		d.CurrentRole == "" && len(d.Experience) == 0 && len(d.Education) == 0 &&
		len(d.Projects) == 0 && len(d.Personality) == 0 && len(d.Hobbies) == 0 &&
		len(d.Notes) == 0
}
