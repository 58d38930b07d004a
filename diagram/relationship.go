package diagram

import "encoding/json"

// RelationType is the UML semantics of a relationship.
type RelationType string

const (
	Association RelationType = "association"
	Inheritance RelationType = "inheritance"
	Dependency  RelationType = "dependency"
	Aggregation RelationType = "aggregation"
	Composition RelationType = "composition"
)

// RelationTypes lists every supported relationship type.
var RelationTypes = []RelationType{Association, Inheritance, Dependency, Aggregation, Composition}

// Valid reports whether t is a known relationship type.
func (t RelationType) Valid() bool {
	for _, v := range RelationTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Endpoint anchors one end of a relationship to a shape border.
type Endpoint struct {
	ID       string  `json:"id"`
	Kind     Kind    `json:"type"`
	Border   Border  `json:"border"`
	Position float64 `json:"position"` // 0..1 along the border
	Mult     string  `json:"mult"`
}

// Relationship is a connector between two shapes.
// BendPoints are stored in path order from source to target.
type Relationship struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Type       RelationType `json:"type"`
	Src        Endpoint     `json:"src"`
	Trg        Endpoint     `json:"trg"`
	BendPoints []Point      `json:"bendPoints"`
}

// NewRelationship creates an association with default endpoints.
func NewRelationship(src, trg Endpoint) *Relationship {
	return &Relationship{
		ID:         NewID(),
		Type:       Association,
		Src:        src,
		Trg:        trg,
		BendPoints: []Point{},
	}
}

// Connects reports whether either endpoint references shapeID.
func (r *Relationship) Connects(shapeID string) bool {
	return r.Src.ID == shapeID || r.Trg.ID == shapeID
}

// Clone returns a deep copy of the relationship.
func (r *Relationship) Clone() *Relationship {
	if r == nil {
		return nil
	}
	c := *r
	c.BendPoints = append([]Point{}, r.BendPoints...)
	return &c
}

// MarshalJSON always writes bendPoints as an array.
func (r Relationship) MarshalJSON() ([]byte, error) {
	type plain Relationship
	if r.BendPoints == nil {
		r.BendPoints = []Point{}
	}
	if r.Type == "" {
		r.Type = Association
	}
	return json.Marshal(plain(r))
}
