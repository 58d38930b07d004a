// Package validation checks diagram snapshots for structural problems that
// the editor would otherwise have to tolerate at runtime: dangling
// relationship endpoints, duplicate ids and degenerate geometry.
package validation

import (
	"fmt"
	"math"

	"umlboard/diagram"
)

// MaxCoordinate bounds every position stored in a snapshot.
const MaxCoordinate = 1e6

// ValidationError represents a validation error with location information.
type ValidationError struct {
	Path    string // JSON path of the offending value, e.g. relationships[2].src.id
	Message string
}

// String formats the error for reports.
func (e ValidationError) String() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Error implements the error interface.
func (e ValidationError) Error() string { return e.String() }

// Validator checks diagrams against the snapshot invariants.
type Validator struct {
	allowSelf bool
	errors    []ValidationError
}

// Option configures a Validator.
type Option func(*Validator)

// WithAllowSelf accepts relationships whose endpoints reference the same shape.
func WithAllowSelf(allow bool) Option {
	return func(v *Validator) { v.allowSelf = allow }
}

// New creates a validator.
func New(opts ...Option) *Validator {
	v := &Validator{}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// ValidateSnapshot decodes and validates a serialized diagram.
func (v *Validator) ValidateSnapshot(snapshot string) ([]ValidationError, error) {
	d, err := diagram.Unmarshal(snapshot)
	if err != nil {
		return nil, err
	}
	return v.Validate(d), nil
}

// Validate returns every problem found in d, in document order.
func (v *Validator) Validate(d *diagram.Diagram) []ValidationError {
	v.errors = nil
	ids := make(map[string]string)

	for i, e := range d.Entities {
		path := fmt.Sprintf("entities[%d]", i)
		v.checkBox(path, e.Frame(), ids)
		if e.Name == "" {
			v.addError(path+".name", "entity has no name")
		}
		for j, a := range e.Attributes {
			if a.Name == "" {
				v.addError(fmt.Sprintf("%s.attributes[%d].name", path, j), "attribute has no name")
			}
		}
		for j, m := range e.Methods {
			if m.Name == "" {
				v.addError(fmt.Sprintf("%s.methods[%d].name", path, j), "method has no name")
			}
		}
	}
	for i, n := range d.Notes {
		v.checkBox(fmt.Sprintf("notes[%d]", i), n.Frame(), ids)
	}
	for i, e := range d.Enumerations {
		path := fmt.Sprintf("enumerations[%d]", i)
		v.checkBox(path, e.Frame(), ids)
		if e.Name == "" {
			v.addError(path+".name", "enumeration has no name")
		}
	}

	for i, r := range d.Relationships {
		v.checkRelationship(d, fmt.Sprintf("relationships[%d]", i), r, ids)
	}
	return v.errors
}

func (v *Validator) checkBox(path string, b *diagram.Box, ids map[string]string) {
	if b == nil {
		v.addError(path, "null shape record")
		return
	}
	v.checkID(path+".id", b.ID, ids)
	v.checkCoordinate(path+".x", b.X)
	v.checkCoordinate(path+".y", b.Y)
	if b.Width < diagram.MinWidth {
		v.addError(path+".width", "width %g is below the minimum of %d", b.Width, diagram.MinWidth)
	}
	if b.Height < diagram.MinHeight {
		v.addError(path+".height", "height %g is below the minimum of %d", b.Height, diagram.MinHeight)
	}
}

func (v *Validator) checkRelationship(d *diagram.Diagram, path string, r *diagram.Relationship, ids map[string]string) {
	v.checkID(path+".id", r.ID, ids)
	if !r.Type.Valid() {
		v.addError(path+".type", "unknown relationship type %q", r.Type)
	}
	v.checkEndpoint(d, path+".src", r.Src)
	v.checkEndpoint(d, path+".trg", r.Trg)
	if r.Src.ID != "" && r.Src.ID == r.Trg.ID && !v.allowSelf {
		v.addError(path, "relationship connects %q to itself", r.Src.ID)
	}
	for i, p := range r.BendPoints {
		v.checkCoordinate(fmt.Sprintf("%s.bendPoints[%d].x", path, i), p.X)
		v.checkCoordinate(fmt.Sprintf("%s.bendPoints[%d].y", path, i), p.Y)
	}
}

func (v *Validator) checkEndpoint(d *diagram.Diagram, path string, ep diagram.Endpoint) {
	shape := d.FindShape(ep.ID)
	switch {
	case ep.ID == "":
		v.addError(path+".id", "endpoint references no shape")
	case shape == nil:
		v.addError(path+".id", "endpoint references missing shape %q", ep.ID)
	case ep.Kind != "" && ep.Kind != shape.Kind():
		v.addError(path+".type", "endpoint type %q does not match shape kind %q", ep.Kind, shape.Kind())
	}
	if !ep.Border.Valid() {
		v.addError(path+".border", "unknown border %q", ep.Border)
	}
	if ep.Position < 0 || ep.Position > 1 || math.IsNaN(ep.Position) {
		v.addError(path+".position", "position %g is outside [0, 1]", ep.Position)
	}
}

func (v *Validator) checkID(path, id string, seen map[string]string) {
	if id == "" {
		v.addError(path, "id is empty")
		return
	}
	if first, ok := seen[id]; ok {
		v.addError(path, "duplicate id %q, first used at %s", id, first)
		return
	}
	seen[id] = path
}

func (v *Validator) checkCoordinate(path string, c float64) {
	if math.IsNaN(c) || math.IsInf(c, 0) || math.Abs(c) > MaxCoordinate {
		v.addError(path, "coordinate %g is out of range", c)
	}
}

// addError adds a validation error.
func (v *Validator) addError(path, format string, args ...any) {
	v.errors = append(v.errors, ValidationError{
		Path:    path,
		Message: fmt.Sprintf(format, args...),
	})
}
