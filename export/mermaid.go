package export

import (
	"fmt"
	"strings"

	"umlboard/diagram"
)

// MermaidExporter exports diagrams to a Mermaid class diagram
type MermaidExporter struct{}

// NewMermaidExporter creates a new Mermaid exporter
func NewMermaidExporter() *MermaidExporter {
	return &MermaidExporter{}
}

// Export converts the diagram to Mermaid syntax
func (e *MermaidExporter) Export(d *diagram.Diagram) (string, error) {
	if d == nil {
		return "", ErrNilDiagram
	}

	ids := identifiers(d)
	var sb strings.Builder
	sb.WriteString("classDiagram\n")

	for _, ent := range d.Entities {
		id := ids[ent.ID]
		if len(ent.Attributes) == 0 && len(ent.Methods) == 0 && ent.Annotation == "" {
			sb.WriteString(fmt.Sprintf("    class %s%s\n", id, e.label(id, ent.Name)))
			continue
		}
		sb.WriteString(fmt.Sprintf("    class %s%s {\n", id, e.label(id, ent.Name)))
		if ent.Annotation != "" {
			sb.WriteString("        <<" + ent.Annotation + ">>\n")
		}
		for _, a := range ent.Attributes {
			sb.WriteString("        " + e.attribute(a) + "\n")
		}
		for _, m := range ent.Methods {
			sb.WriteString(fmt.Sprintf("        %s%s()%s\n", visibility(m), m.Name, e.suffix(m.Type)))
		}
		sb.WriteString("    }\n")
	}

	for _, en := range d.Enumerations {
		id := ids[en.ID]
		sb.WriteString(fmt.Sprintf("    class %s%s {\n", id, e.label(id, en.Name)))
		sb.WriteString("        <<enumeration>>\n")
		for _, v := range en.Values {
			sb.WriteString("        " + v + "\n")
		}
		sb.WriteString("    }\n")
	}

	for _, n := range d.Notes {
		sb.WriteString(fmt.Sprintf("    note \"%s\"\n", e.escape(n.Content)))
	}

	es := edges(d, ids)
	if len(es) > 0 {
		sb.WriteString("\n")
	}
	for _, ed := range es {
		r := ed.rel
		line := "    " + ed.src
		if r.Src.Mult != "" {
			line += fmt.Sprintf(" \"%s\"", r.Src.Mult)
		}
		line += " " + e.arrow(r.Type)
		if r.Trg.Mult != "" {
			line += fmt.Sprintf(" \"%s\"", r.Trg.Mult)
		}
		line += " " + ed.trg
		if r.Name != "" {
			line += " : " + r.Name
		}
		sb.WriteString(line + "\n")
	}

	return sb.String(), nil
}

// arrow maps a relationship type to Mermaid's class diagram link syntax,
// written from source to target
func (e *MermaidExporter) arrow(t diagram.RelationType) string {
	switch t {
	case diagram.Inheritance:
		return "--|>"
	case diagram.Dependency:
		return "..>"
	case diagram.Composition:
		return "*--"
	case diagram.Aggregation:
		return "o--"
	default:
		return "-->"
	}
}

func (e *MermaidExporter) attribute(a diagram.Attribute) string {
	s := "+" + a.Name
	if a.Type != "" {
		s = "+" + a.Type + " " + a.Name
	}
	return s
}

// label returns a display label when the identifier had to be mangled
func (e *MermaidExporter) label(id, name string) string {
	if id == name || name == "" {
		return ""
	}
	return fmt.Sprintf("[\"%s\"]", e.escape(name))
}

func (e *MermaidExporter) suffix(t string) string {
	if t == "" {
		return ""
	}
	return " " + t
}

func (e *MermaidExporter) escape(s string) string {
	s = strings.ReplaceAll(s, `"`, "#quot;")
	return strings.ReplaceAll(s, "\n", "<br>")
}

// GetFileExtension returns the recommended file extension
func (e *MermaidExporter) GetFileExtension() string {
	return ".mmd"
}

// GetFormatName returns the format name
func (e *MermaidExporter) GetFormatName() string {
	return "Mermaid"
}
