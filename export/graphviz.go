package export

import (
	"fmt"
	"strings"

	"umlboard/diagram"
)

// GraphvizExporter exports diagrams to Graphviz DOT syntax
type GraphvizExporter struct{}

// NewGraphvizExporter creates a new Graphviz exporter
func NewGraphvizExporter() *GraphvizExporter {
	return &GraphvizExporter{}
}

// Export converts the diagram to Graphviz DOT syntax
func (e *GraphvizExporter) Export(d *diagram.Diagram) (string, error) {
	if d == nil {
		return "", ErrNilDiagram
	}

	ids := identifiers(d)
	var sb strings.Builder

	sb.WriteString("digraph G {\n")
	sb.WriteString("  rankdir=TB;\n")
	sb.WriteString("  node [shape=record];\n")
	sb.WriteString("  edge [arrowhead=none];\n\n")

	for _, ent := range d.Entities {
		var fields, methods []string
		for _, a := range ent.Attributes {
			s := a.Name
			if a.Type != "" {
				s += " : " + a.Type
			}
			if a.IsPrimaryKey {
				s = "PK " + s
			}
			fields = append(fields, e.escapeRecord(s)+`\l`)
		}
		for _, m := range ent.Methods {
			s := visibility(m) + m.Name + "()"
			if m.Type != "" {
				s += " : " + m.Type
			}
			methods = append(methods, e.escapeRecord(s)+`\l`)
		}
		label := fmt.Sprintf("{%s|%s|%s}", e.escapeRecord(ent.Name), strings.Join(fields, ""), strings.Join(methods, ""))
		sb.WriteString(fmt.Sprintf("  %s [label=\"%s\"];\n", ids[ent.ID], label))
	}

	for _, en := range d.Enumerations {
		var values []string
		for _, v := range en.Values {
			values = append(values, e.escapeRecord(v)+`\l`)
		}
		label := fmt.Sprintf(`{%s\n%s|%s}`, e.escapeRecord("«enumeration»"), e.escapeRecord(en.Name), strings.Join(values, ""))
		sb.WriteString(fmt.Sprintf("  %s [label=\"%s\"];\n", ids[en.ID], label))
	}

	for _, n := range d.Notes {
		sb.WriteString(fmt.Sprintf("  %s [shape=note, label=\"%s\"];\n", ids[n.ID], e.escapeString(n.Content)))
	}

	es := edges(d, ids)
	if len(es) > 0 {
		sb.WriteString("\n")
	}
	for _, ed := range es {
		attrs := e.getEdgeAttributes(ed.rel)
		if attrs != "" {
			sb.WriteString(fmt.Sprintf("  %s -> %s [%s];\n", ed.src, ed.trg, attrs))
		} else {
			sb.WriteString(fmt.Sprintf("  %s -> %s;\n", ed.src, ed.trg))
		}
	}

	sb.WriteString("}\n")
	return sb.String(), nil
}

// getEdgeAttributes builds DOT attributes for a relationship
func (e *GraphvizExporter) getEdgeAttributes(r *diagram.Relationship) string {
	var attrs []string
	switch r.Type {
	case diagram.Inheritance:
		attrs = append(attrs, "arrowhead=empty")
	case diagram.Dependency:
		attrs = append(attrs, "arrowhead=vee", "style=dashed")
	case diagram.Composition:
		attrs = append(attrs, "dir=both", "arrowtail=diamond")
	case diagram.Aggregation:
		attrs = append(attrs, "dir=both", "arrowtail=odiamond")
	}
	if r.Name != "" {
		attrs = append(attrs, fmt.Sprintf("label=\"%s\"", e.escapeString(r.Name)))
	}
	if r.Src.Mult != "" {
		attrs = append(attrs, fmt.Sprintf("taillabel=\"%s\"", e.escapeString(r.Src.Mult)))
	}
	if r.Trg.Mult != "" {
		attrs = append(attrs, fmt.Sprintf("headlabel=\"%s\"", e.escapeString(r.Trg.Mult)))
	}
	return strings.Join(attrs, ", ")
}

// escapeString escapes a DOT double-quoted string
func (e *GraphvizExporter) escapeString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return strings.ReplaceAll(s, "\n", `\n`)
}

// escapeRecord additionally escapes the record label field separators
func (e *GraphvizExporter) escapeRecord(s string) string {
	s = e.escapeString(s)
	for _, c := range []string{"{", "}", "|", "<", ">"} {
		s = strings.ReplaceAll(s, c, `\`+c)
	}
	return s
}

// GetFileExtension returns the recommended file extension
func (e *GraphvizExporter) GetFileExtension() string {
	return ".dot"
}

// GetFormatName returns the format name
func (e *GraphvizExporter) GetFormatName() string {
	return "Graphviz DOT"
}
