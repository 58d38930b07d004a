package export

import (
	"fmt"
	"strings"

	"umlboard/diagram"
)

// PlantUMLExporter exports diagrams to a PlantUML class diagram
type PlantUMLExporter struct{}

// NewPlantUMLExporter creates a new PlantUML exporter
func NewPlantUMLExporter() *PlantUMLExporter {
	return &PlantUMLExporter{}
}

// Export converts the diagram to PlantUML syntax
func (e *PlantUMLExporter) Export(d *diagram.Diagram) (string, error) {
	if d == nil {
		return "", ErrNilDiagram
	}

	ids := identifiers(d)
	var sb strings.Builder
	sb.WriteString("@startuml\n")

	for _, ent := range d.Entities {
		decl := e.declare(ids[ent.ID], ent.Name)
		if ent.Annotation != "" {
			decl += " <<" + ent.Annotation + ">>"
		}
		sb.WriteString(fmt.Sprintf("class %s {\n", decl))
		for _, a := range ent.Attributes {
			line := a.Name
			if a.Type != "" {
				line += " : " + a.Type
			}
			if a.IsPrimaryKey {
				line = "{PK} " + line
			}
			sb.WriteString("  " + line + "\n")
		}
		for _, m := range ent.Methods {
			line := visibility(m) + m.Name + "()"
			if m.Type != "" {
				line += " : " + m.Type
			}
			sb.WriteString("  " + line + "\n")
		}
		sb.WriteString("}\n")
	}

	for _, en := range d.Enumerations {
		sb.WriteString(fmt.Sprintf("enum %s {\n", e.declare(ids[en.ID], en.Name)))
		for _, v := range en.Values {
			sb.WriteString("  " + v + "\n")
		}
		sb.WriteString("}\n")
	}

	for _, n := range d.Notes {
		sb.WriteString(fmt.Sprintf("note as %s\n", ids[n.ID]))
		for _, line := range strings.Split(n.Content, "\n") {
			sb.WriteString("  " + line + "\n")
		}
		sb.WriteString("end note\n")
	}

	es := edges(d, ids)
	if len(es) > 0 {
		sb.WriteString("\n")
	}
	for _, ed := range es {
		r := ed.rel
		line := ed.src
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

	sb.WriteString("@enduml\n")
	return sb.String(), nil
}

// declare names a class, quoting the display name when the identifier had
// to be mangled
func (e *PlantUMLExporter) declare(id, name string) string {
	if id == name || name == "" {
		return id
	}
	return fmt.Sprintf("\"%s\" as %s", strings.ReplaceAll(name, `"`, `'`), id)
}

func (e *PlantUMLExporter) arrow(t diagram.RelationType) string {
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
		return "--"
	}
}

// GetFileExtension returns the recommended file extension
func (e *PlantUMLExporter) GetFileExtension() string {
	return ".puml"
}

// GetFormatName returns the format name
func (e *PlantUMLExporter) GetFormatName() string {
	return "PlantUML"
}
