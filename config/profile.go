package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile describes the restaurant the agent answers for. The answer
// texts for topic questions are built from these fields.
type Profile struct {
	Name           string `yaml:"name"`
	Location       string `yaml:"location"`
	OperatingHours string `yaml:"operating_hours"`
	Parking        string `yaml:"parking"`
	HalalOptions   string `yaml:"halal_options"`
	VeganOptions   string `yaml:"vegan_options"`
	Specialties    string `yaml:"specialties"`
	PriceRange     string `yaml:"price_range"`
	Reservations   string `yaml:"reservations"`
	Phone          string `yaml:"phone"`
}

// DefaultProfile returns the built-in restaurant profile.
func DefaultProfile() Profile {
	return Profile{
		Name:           "Korean BBQ House London",
		Location:       "Central London",
		OperatingHours: "11:00 AM to 9:00 PM daily",
		Parking:        "No parking available. Please use public transport.",
		HalalOptions:   "Yes, we have halal certified chicken galbi and beef dishes.",
		VeganOptions:   "Yes, we have mushroom grill dishes and vegetable sides.",
		Specialties:    "Authentic Korean BBQ with premium meats, fresh vegetables, and traditional banchan.",
		PriceRange:     "£25-£45 per person",
		Reservations:   "Reservations recommended, especially for weekends.",
		Phone:          "02-1234-5678",
	}
}

// LoadProfile reads a YAML profile from path, overlaying the defaults so
// a partial file only overrides the fields it names. An empty path
// returns the defaults.
func LoadProfile(path string) (Profile, error) {
	profile := DefaultProfile()
	if path == "" {
		return profile, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return profile, fmt.Errorf("failed to read profile %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return profile, fmt.Errorf("failed to parse profile %s: %w", path, err)
	}
	return profile, nil
}
