package poly

import (
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// MarshalJSON writes p as its list of terms, in canonical order.
func (p *Poly) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Terms())
}

// UnmarshalJSON reads a list of terms into p.
func (p *Poly) UnmarshalJSON(data []byte) error {
	var terms []Term
	if err := json.Unmarshal(data, &terms); err != nil {
		return err
	}
	p.entries = nil
	for _, t := range terms {
		p.AddTerm(NewMonomial(t.Vars...), t.Coeff)
	}
	return nil
}

// MarshalYAML writes p as its list of terms, in canonical order.
func (p *Poly) MarshalYAML() (interface{}, error) {
	return p.Terms(), nil
}

// UnmarshalYAML reads a list of terms into p.
func (p *Poly) UnmarshalYAML(value *yaml.Node) error {
	var terms []Term
	if err := value.Decode(&terms); err != nil {
		return err
	}
	p.entries = nil
	for _, t := range terms {
		p.AddTerm(NewMonomial(t.Vars...), t.Coeff)
	}
	return nil
}
