package qubo

import (
	"encoding/json"
	"io"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// WriteJSON writes m on w, in JSON.
func (m *Model) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return errors.Wrap(err, "could not write JSON model")
	}
	return nil
}

// ReadJSON reads a model written by WriteJSON.
func ReadJSON(r io.Reader) (*Model, error) {
	var m Model
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, errors.Wrap(err, "could not read JSON model")
	}
	if err := m.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid JSON model")
	}
	return &m, nil
}

// WriteYAML writes m on w, in YAML.
func (m *Model) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return errors.Wrap(err, "could not write YAML model")
	}
	return errors.Wrap(enc.Close(), "could not write YAML model")
}

// ReadYAML reads a model written by WriteYAML.
func ReadYAML(r io.Reader) (*Model, error) {
	var m Model
	if err := yaml.NewDecoder(r).Decode(&m); err != nil {
		return nil, errors.Wrap(err, "could not read YAML model")
	}
	if err := m.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid YAML model")
	}
	return &m, nil
}
