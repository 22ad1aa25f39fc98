package scenario

import (
	"io"

	"gopkg.in/yaml.v3"
)

// LoadYAML decodes and validates a scenario. Unknown keys are rejected.
func LoadYAML(r io.Reader) (Scenario, error) {
	s, err := decodeYAML(r)
	if err != nil {
		return Scenario{}, err
	}
	if err := s.Validate(); err != nil {
		return Scenario{}, err
	}
	return s, nil
}

func decodeYAML(r io.Reader) (Scenario, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var s Scenario
	if err := dec.Decode(&s); err != nil {
		if err == io.EOF {
			return Scenario{}, invalid("empty document")
		}
		return Scenario{}, invalid("decode yaml: %v", err)
	}
	return s, nil
}
