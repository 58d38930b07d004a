package diagram

// Diagram holds every shape and relationship of one document.
type Diagram struct {
	Entities      []*Entity       `json:"entities"`
	Relationships []*Relationship `json:"relationships"`
	Notes         []*Note         `json:"notes"`
	Enumerations  []*Enumeration  `json:"enumerations"`
}

// New returns an empty diagram with non-nil collections.
func New() *Diagram {
	return &Diagram{
		Entities:      []*Entity{},
		Relationships: []*Relationship{},
		Notes:         []*Note{},
		Enumerations:  []*Enumeration{},
	}
}

// Shapes returns every shape in paint order: entities, enumerations, notes.
func (d *Diagram) Shapes() []Shape {
	shapes := make([]Shape, 0, len(d.Entities)+len(d.Enumerations)+len(d.Notes))
	for _, e := range d.Entities {
		shapes = append(shapes, e)
	}
	for _, e := range d.Enumerations {
		shapes = append(shapes, e)
	}
	for _, n := range d.Notes {
		shapes = append(shapes, n)
	}
	return shapes
}

// FindShape returns the shape with the given id, or nil.
func (d *Diagram) FindShape(id string) Shape {
	if id == "" {
		return nil
	}
	for _, e := range d.Entities {
		if e.ID == id {
			return e
		}
	}
	for _, e := range d.Enumerations {
		if e.ID == id {
			return e
		}
	}
	for _, n := range d.Notes {
		if n.ID == id {
			return n
		}
	}
	return nil
}

// FindRelationship returns the relationship with the given id, or nil.
func (d *Diagram) FindRelationship(id string) *Relationship {
	for _, r := range d.Relationships {
		if r.ID == id {
			return r
		}
	}
	return nil
}

// AddShape appends s to the collection matching its kind.
func (d *Diagram) AddShape(s Shape) {
	switch v := s.(type) {
	case *Entity:
		d.Entities = append(d.Entities, v)
	case *Note:
		d.Notes = append(d.Notes, v)
	case *Enumeration:
		d.Enumerations = append(d.Enumerations, v)
	}
}

// RemoveShape deletes the shape with the given id along with every
// relationship attached to it. It returns the removed relationships.
func (d *Diagram) RemoveShape(id string) (bool, []*Relationship) {
	found := false
	d.Entities, found = removeByID(d.Entities, id, found)
	d.Enumerations, found = removeByID(d.Enumerations, id, found)
	d.Notes, found = removeByID(d.Notes, id, found)
	if !found {
		return false, nil
	}

	var removed []*Relationship
	kept := d.Relationships[:0]
	for _, r := range d.Relationships {
		if r.Connects(id) {
			removed = append(removed, r)
			continue
		}
		kept = append(kept, r)
	}
	d.Relationships = kept
	return true, removed
}

// RemoveRelationship deletes the relationship with the given id.
func (d *Diagram) RemoveRelationship(id string) bool {
	for i, r := range d.Relationships {
		if r.ID == id {
			d.Relationships = append(d.Relationships[:i], d.Relationships[i+1:]...)
			return true
		}
	}
	return false
}

// RelationshipsOf returns the relationships attached to shapeID.
func (d *Diagram) RelationshipsOf(shapeID string) []*Relationship {
	var out []*Relationship
	for _, r := range d.Relationships {
		if r.Connects(shapeID) {
			out = append(out, r)
		}
	}
	return out
}

// Clone creates a deep copy of the diagram.
func (d *Diagram) Clone() *Diagram {
	if d == nil {
		return nil
	}

	clone := &Diagram{
		Entities:      make([]*Entity, len(d.Entities)),
		Relationships: make([]*Relationship, len(d.Relationships)),
		Notes:         make([]*Note, len(d.Notes)),
		Enumerations:  make([]*Enumeration, len(d.Enumerations)),
	}
	for i, e := range d.Entities {
		clone.Entities[i] = e.CloneShape().(*Entity)
	}
	for i, n := range d.Notes {
		clone.Notes[i] = n.CloneShape().(*Note)
	}
	for i, e := range d.Enumerations {
		clone.Enumerations[i] = e.CloneShape().(*Enumeration)
	}
	for i, r := range d.Relationships {
		clone.Relationships[i] = r.Clone()
	}
	return clone
}

func removeByID[S Shape](shapes []S, id string, found bool) ([]S, bool) {
	if found {
		return shapes, true
	}
	for i, s := range shapes {
		if s.Frame().ID == id {
			return append(shapes[:i], shapes[i+1:]...), true
		}
	}
	return shapes, false
}
