package diagram

// Kind identifies the variant of a shape.
type Kind string

const (
	KindEntity      Kind = "entity"
	KindNote        Kind = "note"
	KindEnumeration Kind = "enumeration"
)

// Valid reports whether k names a known shape variant.
func (k Kind) Valid() bool {
	return k == KindEntity || k == KindNote || k == KindEnumeration
}

// Default sizes for newly created shapes.
const (
	EntityWidth       = 275
	EntityHeight      = 120
	NoteWidth         = 200
	NoteHeight        = 100
	EnumerationWidth  = 275
	EnumerationHeight = 120

	MinWidth  = 40
	MinHeight = 30
)

// Box is the positional state shared by every shape.
type Box struct {
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Rect returns the box geometry without its identity.
func (b Box) Rect() Rect {
	return Rect{X: b.X, Y: b.Y, Width: b.Width, Height: b.Height}
}

// SetRect moves and resizes the box.
func (b *Box) SetRect(r Rect) {
	b.X, b.Y, b.Width, b.Height = r.X, r.Y, r.Width, r.Height
}

// Shape is a rectangular diagram element.
// Frame returns nil when called on a nil shape pointer.
type Shape interface {
	Frame() *Box
	Kind() Kind
	CloneShape() Shape
}

// Attribute is a single field of an entity.
type Attribute struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	IsPrimaryKey bool   `json:"isPrimaryKey"`
}

// Method is a single operation of an entity.
type Method struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	Visibility string `json:"visibility"`
}

// Entity is a class or table box.
type Entity struct {
	Box
	Name       string      `json:"name"`
	Annotation string      `json:"annotation,omitempty"`
	Attributes []Attribute `json:"attributes"`
	Methods    []Method    `json:"methods"`
}

func (e *Entity) Frame() *Box {
	if e == nil {
		return nil
	}
	return &e.Box
}

func (e *Entity) Kind() Kind { return KindEntity }

func (e *Entity) CloneShape() Shape {
	c := *e
	c.Attributes = append([]Attribute{}, e.Attributes...)
	c.Methods = append([]Method{}, e.Methods...)
	return &c
}

// Note is a free-text annotation box.
type Note struct {
	Box
	Content string `json:"content"`
}

func (n *Note) Frame() *Box {
	if n == nil {
		return nil
	}
	return &n.Box
}

func (n *Note) Kind() Kind { return KindNote }

func (n *Note) CloneShape() Shape {
	c := *n
	return &c
}

// Enumeration is a named list of literal values.
type Enumeration struct {
	Box
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

func (e *Enumeration) Frame() *Box {
	if e == nil {
		return nil
	}
	return &e.Box
}

func (e *Enumeration) Kind() Kind { return KindEnumeration }

func (e *Enumeration) CloneShape() Shape {
	c := *e
	c.Values = append([]string{}, e.Values...)
	return &c
}

// NewEntity creates an entity of default size at (x, y).
func NewEntity(name string, x, y float64) *Entity {
	return &Entity{
		Box:        Box{ID: NewID(), X: x, Y: y, Width: EntityWidth, Height: EntityHeight},
		Name:       name,
		Attributes: []Attribute{},
		Methods:    []Method{},
	}
}

// NewNote creates a note of default size at (x, y).
func NewNote(content string, x, y float64) *Note {
	return &Note{
		Box:     Box{ID: NewID(), X: x, Y: y, Width: NoteWidth, Height: NoteHeight},
		Content: content,
	}
}

// NewEnumeration creates an enumeration of default size at (x, y).
func NewEnumeration(name string, x, y float64) *Enumeration {
	return &Enumeration{
		Box:    Box{ID: NewID(), X: x, Y: y, Width: EnumerationWidth, Height: EnumerationHeight},
		Name:   name,
		Values: []string{},
	}
}

// Label returns the text shown in the title area of a shape.
func Label(s Shape) string {
	switch v := s.(type) {
	case *Entity:
		return v.Name
	case *Enumeration:
		return v.Name
	case *Note:
		return v.Content
	}
	return ""
}

// RectOf returns the geometry of s, or false for a nil shape.
func RectOf(s Shape) (Rect, bool) {
	if s == nil {
		return Rect{}, false
	}
	b := s.Frame()
	if b == nil {
		return Rect{}, false
	}
	return b.Rect(), true
}
