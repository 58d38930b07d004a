package diagram

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedSnapshot is returned when a snapshot cannot be decoded.
var ErrMalformedSnapshot = errors.New("malformed snapshot")

// Marshal serializes the diagram into a self-contained snapshot.
func Marshal(d *Diagram) (string, error) {
	if d == nil {
		d = New()
	}
	out := *d
	normalize(&out)
	data, err := json.Marshal(&out)
	if err != nil {
		return "", fmt.Errorf("marshal diagram: %w", err)
	}
	return string(data), nil
}

// MarshalIndent is Marshal with two-space indentation, for files meant to be read.
func MarshalIndent(d *Diagram) (string, error) {
	if d == nil {
		d = New()
	}
	out := *d
	normalize(&out)
	data, err := json.MarshalIndent(&out, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal diagram: %w", err)
	}
	return string(data), nil
}

// Unmarshal rebuilds a diagram from a snapshot produced by Marshal.
func Unmarshal(snapshot string) (*Diagram, error) {
	var d Diagram
	if err := json.Unmarshal([]byte(snapshot), &d); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}
	normalize(&d)
	for _, s := range d.Shapes() {
		if s.Frame() == nil {
			return nil, fmt.Errorf("%w: null shape record", ErrMalformedSnapshot)
		}
	}
	for _, r := range d.Relationships {
		if r == nil {
			return nil, fmt.Errorf("%w: null relationship record", ErrMalformedSnapshot)
		}
		if r.BendPoints == nil {
			r.BendPoints = []Point{}
		}
		if r.Type == "" {
			r.Type = Association
		}
	}
	for _, e := range d.Entities {
		if e.Attributes == nil {
			e.Attributes = []Attribute{}
		}
		if e.Methods == nil {
			e.Methods = []Method{}
		}
	}
	for _, e := range d.Enumerations {
		if e.Values == nil {
			e.Values = []string{}
		}
	}
	return &d, nil
}

func normalize(d *Diagram) {
	if d.Entities == nil {
		d.Entities = []*Entity{}
	}
	if d.Relationships == nil {
		d.Relationships = []*Relationship{}
	}
	if d.Notes == nil {
		d.Notes = []*Note{}
	}
	if d.Enumerations == nil {
		d.Enumerations = []*Enumeration{}
	}
}
