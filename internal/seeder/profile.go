package seeder

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile controls what the seeder generates. Ratios are in [0, 1].
type Profile struct {
	// Count is the number of messages to publish.
	Count int `yaml:"count"`

	// DuplicateRatio is the fraction of messages reusing an earlier
	// record_id, for exercising duplicate suppression.
	DuplicateRatio float64 `yaml:"duplicate_ratio"`

	// MalformedRatio is the fraction of messages published as broken
	// JSON, for exercising decode-failure handling.
	MalformedRatio float64 `yaml:"malformed_ratio"`

	// Seed makes generation reproducible when non-zero.
	Seed uint64 `yaml:"seed"`
}

// DefaultProfile returns a small clean batch.
func DefaultProfile() Profile {
	return Profile{Count: 100}
}

// LoadProfile reads a YAML profile from disk.
func LoadProfile(path string) (Profile, error) {
	p := DefaultProfile()

	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read profile: %w", err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parse profile: %w", err)
	}
	if err := p.validate(); err != nil {
		return p, err
	}
	return p, nil
}

func (p Profile) validate() error {
	if p.Count <= 0 {
		return fmt.Errorf("profile count must be positive, got %d", p.Count)
	}
	if p.DuplicateRatio < 0 || p.DuplicateRatio > 1 {
		return fmt.Errorf("duplicate_ratio must be in [0,1], got %g", p.DuplicateRatio)
	}
	if p.MalformedRatio < 0 || p.MalformedRatio > 1 {
		return fmt.Errorf("malformed_ratio must be in [0,1], got %g", p.MalformedRatio)
	}
	return nil
}
