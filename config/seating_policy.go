package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"eventseating/internal/domain"
)

// SeatingPolicy decides the capacity of newly created tables. Dates listed in
// DateCapacities override DefaultCapacity.
//
//	default_capacity: 4
//	date_capacities:
//	  "2025-06-14": 6
type SeatingPolicy struct {
	DefaultCapacity int            `yaml:"default_capacity"`
	DateCapacities  map[string]int `yaml:"date_capacities"`
}

// NewSeatingPolicy returns a policy that gives every date the same capacity.
func NewSeatingPolicy(capacity int) *SeatingPolicy {
	return &SeatingPolicy{DefaultCapacity: capacity, DateCapacities: map[string]int{}}
}

// LoadSeatingPolicy reads a YAML policy from path. An empty path yields a uniform policy
// with the fallback capacity; a file without default_capacity inherits the fallback.
func LoadSeatingPolicy(path string, fallback int) (*SeatingPolicy, error) {
	if path == "" {
		return NewSeatingPolicy(fallback), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seating policy: %w", err)
	}
	return ParseSeatingPolicy(raw, fallback)
}

// ParseSeatingPolicy decodes and validates a YAML policy document.
func ParseSeatingPolicy(raw []byte, fallback int) (*SeatingPolicy, error) {
	p := &SeatingPolicy{}
	if err := yaml.Unmarshal(raw, p); err != nil {
		return nil, fmt.Errorf("parse seating policy: %w", err)
	}
	if p.DefaultCapacity == 0 {
		p.DefaultCapacity = fallback
	}
	if p.DefaultCapacity < 1 {
		return nil, fmt.Errorf("seating policy: default_capacity must be at least 1, got %d", p.DefaultCapacity)
	}
	if p.DateCapacities == nil {
		p.DateCapacities = map[string]int{}
	}
	for date, capacity := range p.DateCapacities {
		if !domain.ValidEventDate(date) {
			return nil, fmt.Errorf("seating policy: invalid date %q", date)
		}
		if capacity < 1 {
			return nil, fmt.Errorf("seating policy: capacity for %s must be at least 1, got %d", date, capacity)
		}
	}
	return p, nil
}

// CapacityFor implements domain.CapacityPolicy.
func (p *SeatingPolicy) CapacityFor(eventDate string) int {
	if c, ok := p.DateCapacities[eventDate]; ok {
		return c
	}
	return p.DefaultCapacity
}
