package detection

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"farmwatch/internal/models"
)

// Overrides extends or replaces entries of the default vocabulary. Example:
//
//	confidence_threshold: 0.55
//	species:
//	  33: jackal
//	priorities:
//	  jackal: high
type Overrides struct {
	ConfidenceThreshold *float64          `yaml:"confidence_threshold"`
	Species             map[int]string    `yaml:"species"`
	Priorities          map[string]string `yaml:"priorities"`
}

// LoadOverrides reads a YAML override file.
func LoadOverrides(path string) (*Overrides, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read species config: %w", err)
	}

	var o Overrides
	if err := yaml.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("parse species config %s: %w", path, err)
	}
	return &o, nil
}

func (o *Overrides) priorities() (map[string]models.Priority, error) {
	out := make(map[string]models.Priority, len(o.Priorities))
	for species, raw := range o.Priorities {
		p := models.Priority(strings.ToUpper(strings.TrimSpace(raw)))
		if !p.Valid() {
			return nil, fmt.Errorf("invalid priority %q for %s", raw, species)
		}
		out[species] = p
	}
	return out, nil
}

// ApplyOverrides merges o into the service tables.
func (s *Service) ApplyOverrides(o *Overrides) error {
	if o == nil {
		return nil
	}
	prios, err := o.priorities()
	if err != nil {
		return err
	}
	if o.ConfidenceThreshold != nil {
		if err := s.SetConfidenceThreshold(*o.ConfidenceThreshold); err != nil {
			return err
		}
	}

	s.mu.Lock()
	for id, name := range o.Species {
		if name = strings.TrimSpace(name); name != "" {
			s.vocab.species[id] = name
		}
	}
	for species, p := range prios {
		s.vocab.priorities[species] = p
	}
	s.mu.Unlock()

	s.logger.Info().
		Int("species", len(o.Species)).
		Int("priorities", len(prios)).
		Msg("Applied species overrides")
	return nil
}
