package scenario

import (
	"encoding/json"
	"fmt"
)

// Decode builds a scenario from generic data, such as a decoded JSON
// object, and validates it. Unknown keys are rejected.
func Decode(data map[string]any) (Scenario, error) {
	if len(data) == 0 {
		return Scenario{}, invalid("empty document")
	}
	var s Scenario
	if err := decodeMap(data, &s); err != nil {
		return Scenario{}, invalid("%v", err)
	}
	if err := s.Validate(); err != nil {
		return Scenario{}, err
	}
	return s, nil
}

// Map encodes s as generic data that Decode accepts.
func (s Scenario) Map() (map[string]any, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode scenario: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode scenario: %w", err)
	}
	return out, nil
}
