package profile

import (
	"encoding/json"
	"os"

	"ai-butler-be/pkg/assistant/prompt"
)

// DefaultPersona is used when no persona file exists yet.
var DefaultPersona = prompt.Persona{
	Name:  "Alfred",
	Role:  "discreet personal butler and assistant",
	Tone:  "courteous with a dry wit",
	Style: "concise and impeccably polite",
}

// LoadPersona reads the persona definition from path. A missing file
// yields the default persona, a malformed one is an error.
func LoadPersona(path string) (prompt.Persona, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultPersona, nil
		}
		return prompt.Persona{}, err
	}

	var p prompt.Persona
	if err := json.Unmarshal(data, &p); err != nil {
		return prompt.Persona{}, err
	}
	if p.Name == "" {
		p.Name = DefaultPersona.Name
	}
	if p.Role == "" {
		p.Role = DefaultPersona.Role
	}
	return p, nil
}

// LoadProfile reads the structured user profile (flat string map) from
// path. A missing file yields an empty profile.
func LoadProfile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, err
	}

	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}
