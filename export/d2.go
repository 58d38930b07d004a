package export

import (
	"fmt"
	"strings"

	"umlboard/diagram"
)

// D2Exporter exports diagrams to D2 class shapes
type D2Exporter struct{}

// NewD2Exporter creates a new D2 exporter
func NewD2Exporter() *D2Exporter {
	return &D2Exporter{}
}

// Export converts the diagram to D2 syntax
func (e *D2Exporter) Export(d *diagram.Diagram) (string, error) {
	if d == nil {
		return "", ErrNilDiagram
	}

	ids := identifiers(d)
	var sb strings.Builder

	for _, ent := range d.Entities {
		id := ids[ent.ID]
		sb.WriteString(fmt.Sprintf("%s: {\n", id))
		sb.WriteString("  shape: class\n")
		if id != ent.Name && ent.Name != "" {
			sb.WriteString(fmt.Sprintf("  label: %s\n", e.escapeLabel(ent.Name)))
		}
		for _, a := range ent.Attributes {
			key := a.Name
			if a.IsPrimaryKey {
				key = "#" + key
			}
			sb.WriteString(fmt.Sprintf("  %s: %s\n", e.escapeLabel(key), e.escapeLabel(a.Type)))
		}
		for _, m := range ent.Methods {
			key := visibility(m) + m.Name + "()"
			sb.WriteString(fmt.Sprintf("  %s: %s\n", e.escapeLabel(key), e.escapeLabel(m.Type)))
		}
		sb.WriteString("}\n")
	}

	for _, en := range d.Enumerations {
		id := ids[en.ID]
		sb.WriteString(fmt.Sprintf("%s: {\n", id))
		sb.WriteString("  shape: class\n")
		sb.WriteString(fmt.Sprintf("  label: %s\n", e.escapeLabel("«enumeration» "+en.Name)))
		for _, v := range en.Values {
			sb.WriteString(fmt.Sprintf("  %s: \"\"\n", e.escapeLabel(v)))
		}
		sb.WriteString("}\n")
	}

	for _, n := range d.Notes {
		sb.WriteString(fmt.Sprintf("%s: %s {\n", ids[n.ID], e.escapeLabel(strings.ReplaceAll(n.Content, "\n", `\n`))))
		sb.WriteString("  shape: page\n")
		sb.WriteString("}\n")
	}

	es := edges(d, ids)
	if len(es) > 0 {
		sb.WriteString("\n")
	}
	for _, ed := range es {
		r := ed.rel
		conn := fmt.Sprintf("%s %s %s", ed.src, e.getArrowType(r.Type), ed.trg)
		if r.Name != "" {
			conn += ": " + e.escapeLabel(r.Name)
		}
		attrs := e.connectionAttributes(r)
		if len(attrs) == 0 {
			sb.WriteString(conn + "\n")
			continue
		}
		sb.WriteString(conn + " {\n")
		for _, a := range attrs {
			sb.WriteString("  " + a + "\n")
		}
		sb.WriteString("}\n")
	}

	return sb.String(), nil
}

// getArrowType returns the connection operator. Decorations at the source
// end are set through arrowhead attributes, so every typed relationship is
// directed from source to target.
func (e *D2Exporter) getArrowType(t diagram.RelationType) string {
	if t == diagram.Association || t == "" {
		return "--"
	}
	return "->"
}

func (e *D2Exporter) connectionAttributes(r *diagram.Relationship) []string {
	var attrs []string
	switch r.Type {
	case diagram.Inheritance:
		attrs = append(attrs, "target-arrowhead.shape: triangle", "target-arrowhead.style.filled: false")
	case diagram.Dependency:
		attrs = append(attrs, "style.stroke-dash: 3")
	case diagram.Composition:
		attrs = append(attrs, "source-arrowhead.shape: diamond", "source-arrowhead.style.filled: true", "target-arrowhead.shape: none")
	case diagram.Aggregation:
		attrs = append(attrs, "source-arrowhead.shape: diamond", "source-arrowhead.style.filled: false", "target-arrowhead.shape: none")
	}
	if r.Src.Mult != "" {
		attrs = append(attrs, "source-arrowhead.label: "+e.escapeLabel(r.Src.Mult))
	}
	if r.Trg.Mult != "" {
		attrs = append(attrs, "target-arrowhead.label: "+e.escapeLabel(r.Trg.Mult))
	}
	return attrs
}

// escapeLabel quotes labels containing characters the D2 parser would
// otherwise interpret
func (e *D2Exporter) escapeLabel(label string) string {
	if label == "" {
		return `""`
	}
	if !strings.ContainsAny(label, ":-><|{}[]()\"#;.*'`$\\") && strings.TrimSpace(label) == label {
		return label
	}
	label = strings.ReplaceAll(label, `\`, `\\`)
	label = strings.ReplaceAll(label, `"`, `\"`)
	label = strings.ReplaceAll(label, `\\n`, `\n`)
	return fmt.Sprintf("\"%s\"", label)
}

// GetFileExtension returns the recommended file extension
func (e *D2Exporter) GetFileExtension() string {
	return ".d2"
}

// GetFormatName returns the format name
func (e *D2Exporter) GetFormatName() string {
	return "D2"
}
