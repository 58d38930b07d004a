package importer

import (
	"regexp"
	"slices"
	"strings"

	"umlboard/diagram"
)

// builder accumulates a diagram while a source is parsed. Shapes are
// keyed by the identifier used in the source text; an identifier seen for
// the first time becomes an entity.
type builder struct {
	d      *diagram.Diagram
	shapes map[string]diagram.Shape
}

func newBuilder() *builder {
	return &builder{d: diagram.New(), shapes: make(map[string]diagram.Shape)}
}

func (b *builder) shape(id string) diagram.Shape {
	if s, ok := b.shapes[id]; ok {
		return s
	}
	e := diagram.NewEntity(id, 0, 0)
	b.shapes[id] = e
	b.d.AddShape(e)
	return e
}

func (b *builder) rename(id, name string) {
	if name == "" {
		return
	}
	switch s := b.shape(id).(type) {
	case *diagram.Entity:
		s.Name = name
	case *diagram.Enumeration:
		s.Name = name
	}
}

// annotate applies a stereotype. «enumeration» turns the shape into an
// enumeration; anything else is kept as the entity's annotation.
func (b *builder) annotate(id, stereotype string) {
	stereotype = strings.TrimSpace(stereotype)
	switch strings.ToLower(stereotype) {
	case "":
	case "enumeration", "enum":
		b.enumeration(id)
	default:
		if e, ok := b.shape(id).(*diagram.Entity); ok {
			e.Annotation = stereotype
		}
	}
}

// enumeration converts the shape declared as id into an enumeration with
// the same id and name. Attributes already read become values.
func (b *builder) enumeration(id string) *diagram.Enumeration {
	s := b.shape(id)
	if en, ok := s.(*diagram.Enumeration); ok {
		return en
	}
	e := s.(*diagram.Entity)
	en := diagram.NewEnumeration(e.Name, 0, 0)
	en.ID = e.ID
	for _, a := range e.Attributes {
		en.Values = append(en.Values, a.Name)
	}

	// RemoveShape drops attached relationships; they must survive.
	rels := slices.Clone(b.d.Relationships)
	b.d.RemoveShape(e.ID)
	b.d.Relationships = rels

	b.shapes[id] = en
	b.d.AddShape(en)
	return en
}

// member adds one line of a class body.
func (b *builder) member(id, text string) {
	switch s := b.shape(id).(type) {
	case *diagram.Enumeration:
		if v := strings.TrimSpace(strings.TrimRight(strings.TrimSpace(text), ",;")); v != "" {
			s.Values = append(s.Values, v)
		}
	case *diagram.Entity:
		attr, meth := parseMember(text)
		if attr != nil {
			s.Attributes = append(s.Attributes, *attr)
		}
		if meth != nil {
			s.Methods = append(s.Methods, *meth)
		}
	}
}

func (b *builder) note(content string) {
	b.d.AddShape(diagram.NewNote(content, 0, 0))
}

func (b *builder) relate(l link) {
	src, trg := b.shape(l.src), b.shape(l.trg)
	r := diagram.NewRelationship(
		diagram.Endpoint{ID: src.Frame().ID, Border: diagram.BorderRight, Position: 0.5, Mult: l.srcMult},
		diagram.Endpoint{ID: trg.Frame().ID, Border: diagram.BorderLeft, Position: 0.5, Mult: l.trgMult},
	)
	r.Type = l.typ
	r.Name = l.name
	b.d.Relationships = append(b.d.Relationships, r)
}

// result fills in endpoint kinds, which may have changed after a link was
// read, and returns the diagram.
func (b *builder) result() *diagram.Diagram {
	for _, r := range b.d.Relationships {
		if s := b.d.FindShape(r.Src.ID); s != nil {
			r.Src.Kind = s.Kind()
		}
		if s := b.d.FindShape(r.Trg.ID); s != nil {
			r.Trg.Kind = s.Kind()
		}
	}
	return b.d
}

// link is a parsed relationship statement.
type link struct {
	src, trg         string
	srcMult, trgMult string
	name             string
	typ              diagram.RelationType
}

// linkPattern matches `A "1" *-- "0..*" B : label`. Arrows must be
// separated from the class names by spaces.
var linkPattern = regexp.MustCompile(
	`^([^\s"]+)\s+(?:"([^"]*)"\s+)?` +
		`(<\|[-.]{1,2}|[*o][-.]{1,2}|[-.]{1,2}(?:\|>|[*o>])|<[-.]{1,2}|[-.]{1,2})` +
		`\s+(?:"([^"]*)"\s+)?([^\s"]+)\s*(?::\s*(.*))?$`)

func parseLink(line string) (link, bool) {
	m := linkPattern.FindStringSubmatch(line)
	if m == nil {
		return link{}, false
	}
	typ, reversed := classifyArrow(m[3])
	l := link{src: m[1], srcMult: m[2], trgMult: m[4], trg: m[5], name: linkLabel(m[6]), typ: typ}
	if reversed {
		l.src, l.trg = l.trg, l.src
		l.srcMult, l.trgMult = l.trgMult, l.srcMult
	}
	return l, true
}

// linkLabel drops the reading direction marker PlantUML allows around a
// label.
func linkLabel(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.TrimPrefix(s, "<"))
	s = strings.TrimSpace(strings.TrimSuffix(s, ">"))
	return s
}

// classifyArrow maps an arrow to a relationship type. reversed is set when
// the arrow's head points at the left-hand class.
func classifyArrow(arrow string) (t diagram.RelationType, reversed bool) {
	switch {
	case strings.HasPrefix(arrow, "<|"):
		return diagram.Inheritance, true
	case strings.HasSuffix(arrow, "|>"):
		return diagram.Inheritance, false
	case strings.HasPrefix(arrow, "*"):
		return diagram.Composition, false
	case strings.HasSuffix(arrow, "*"):
		return diagram.Composition, true
	case strings.HasPrefix(arrow, "o"):
		return diagram.Aggregation, false
	case strings.HasSuffix(arrow, "o"):
		return diagram.Aggregation, true
	case strings.Contains(arrow, "."):
		return diagram.Dependency, strings.HasPrefix(arrow, "<")
	default:
		return diagram.Association, strings.HasPrefix(arrow, "<")
	}
}

// parseMember reads an attribute or method line in any of the forms
//
//	+name : Type     +Type name     {PK} name : Type
//	+name(args) Type +name(args) : Type  Type name(args)
func parseMember(text string) (*diagram.Attribute, *diagram.Method) {
	text = strings.TrimSpace(text)
	pk := false
	for strings.HasPrefix(text, "{") {
		end := strings.Index(text, "}")
		if end < 0 {
			break
		}
		if strings.EqualFold(strings.TrimSpace(text[1:end]), "PK") {
			pk = true
		}
		text = strings.TrimSpace(text[end+1:])
	}
	text = strings.TrimSpace(strings.TrimPrefix(text, "*")) // mandatory field
	text = strings.TrimRight(text, "$*")                    // static and abstract classifiers

	vis := ""
	if text != "" && strings.ContainsRune("+-#~", rune(text[0])) {
		vis, text = text[:1], strings.TrimSpace(text[1:])
	}
	if text == "" {
		return nil, nil
	}

	if open := strings.Index(text, "("); open >= 0 {
		name, ret := strings.TrimSpace(text[:open]), ""
		if end := strings.LastIndex(text, ")"); end > open {
			ret = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(text[end+1:]), ":"))
		}
		if f := strings.Fields(name); len(f) > 1 {
			name = f[len(f)-1]
			if ret == "" {
				ret = strings.Join(f[:len(f)-1], " ")
			}
		}
		return nil, &diagram.Method{ID: diagram.NewID(), Name: name, Type: generic(ret), Visibility: vis}
	}

	var name, typ string
	if i := strings.Index(text, ":"); i >= 0 {
		name, typ = strings.TrimSpace(text[:i]), strings.TrimSpace(text[i+1:])
	} else if f := strings.Fields(text); len(f) > 1 {
		name, typ = f[len(f)-1], strings.Join(f[:len(f)-1], " ")
	} else {
		name = text
	}
	return &diagram.Attribute{ID: diagram.NewID(), Name: name, Type: generic(typ), IsPrimaryKey: pk}, nil
}

// generic rewrites Mermaid's List~int~ as List<int>.
func generic(t string) string {
	if !strings.Contains(t, "~") {
		return t
	}
	var sb strings.Builder
	open := false
	for _, r := range t {
		if r == '~' {
			if open {
				sb.WriteRune('>')
			} else {
				sb.WriteRune('<')
			}
			open = !open
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
