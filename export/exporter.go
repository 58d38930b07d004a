// Package export converts diagrams to text-based formats
package export

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"umlboard/diagram"
)

// ErrNilDiagram is returned when an exporter is handed a nil diagram.
var ErrNilDiagram = errors.New("diagram is nil")

// Format represents an export format
type Format string

const (
	// FormatJSON exports the snapshot JSON the editor persists
	FormatJSON Format = "json"
	// FormatASCII exports to Unicode box-drawing art
	FormatASCII Format = "ascii"
	// FormatMermaid exports to a Mermaid class diagram
	FormatMermaid Format = "mermaid"
	// FormatPlantUML exports to a PlantUML class diagram
	FormatPlantUML Format = "plantuml"
	// FormatD2 exports to D2 class shapes
	FormatD2 Format = "d2"
	// FormatDOT exports to Graphviz DOT with record nodes
	FormatDOT Format = "dot"
)

// Exporter interface for different export formats
type Exporter interface {
	// Export converts a diagram to the target format
	Export(d *diagram.Diagram) (string, error)
	// GetFileExtension returns the recommended file extension for this format
	GetFileExtension() string
	// GetFormatName returns a human-readable name for this format
	GetFormatName() string
}

// NewExporter creates an exporter for the specified format
func NewExporter(format Format) (Exporter, error) {
	switch format {
	case FormatJSON:
		return NewJSONExporter(), nil
	case FormatASCII:
		return NewASCIIExporter(), nil
	case FormatMermaid:
		return NewMermaidExporter(), nil
	case FormatPlantUML:
		return NewPlantUMLExporter(), nil
	case FormatD2:
		return NewD2Exporter(), nil
	case FormatDOT:
		return NewGraphvizExporter(), nil
	default:
		return nil, fmt.Errorf("unsupported export format: %s", format)
	}
}

// ParseFormat converts a string to a Format
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON, nil
	case "ascii", "text", "txt":
		return FormatASCII, nil
	case "mermaid", "mmd":
		return FormatMermaid, nil
	case "plantuml", "puml":
		return FormatPlantUML, nil
	case "d2":
		return FormatD2, nil
	case "dot", "graphviz", "gv":
		return FormatDOT, nil
	default:
		return "", fmt.Errorf("unknown format: %s", s)
	}
}

// GetAvailableFormats returns a list of all available export formats
func GetAvailableFormats() []Format {
	return []Format{
		FormatJSON,
		FormatASCII,
		FormatMermaid,
		FormatPlantUML,
		FormatD2,
		FormatDOT,
	}
}

// GetFormatDescriptions returns human-readable descriptions of all formats
func GetFormatDescriptions() map[Format]string {
	return map[Format]string{
		FormatJSON:     "Snapshot JSON (umlboard native format)",
		FormatASCII:    "Unicode box-drawing art",
		FormatMermaid:  "Mermaid class diagram (for Markdown)",
		FormatPlantUML: "PlantUML class diagram",
		FormatD2:       "D2 class shapes",
		FormatDOT:      "Graphviz DOT record nodes",
	}
}

// identifiers assigns every shape a name usable as a bare identifier in
// the text formats. Names come from the shape label; notes are numbered.
// Clashes get a numeric suffix.
func identifiers(d *diagram.Diagram) map[string]string {
	ids := make(map[string]string)
	used := make(map[string]bool)
	notes := 0
	for _, s := range d.Shapes() {
		var base string
		if s.Kind() == diagram.KindNote {
			notes++
			base = fmt.Sprintf("N%d", notes)
		} else {
			base = sanitize(diagram.Label(s))
		}
		name := base
		for i := 2; used[name]; i++ {
			name = fmt.Sprintf("%s_%d", base, i)
		}
		used[name] = true
		ids[s.Frame().ID] = name
	}
	return ids
}

func sanitize(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch {
		case r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r):
			sb.WriteRune(r)
		case unicode.IsSpace(r) || r == '-':
			sb.WriteRune('_')
		}
	}
	out := sb.String()
	if out == "" {
		return "Shape"
	}
	if unicode.IsDigit([]rune(out)[0]) {
		return "_" + out
	}
	return out
}

// edges yields the relationships whose endpoints both resolve, with the
// identifiers of their source and target.
func edges(d *diagram.Diagram, ids map[string]string) []edge {
	var out []edge
	for _, r := range d.Relationships {
		src, ok := ids[r.Src.ID]
		if !ok {
			continue // Skip dangling relationships
		}
		trg, ok := ids[r.Trg.ID]
		if !ok {
			continue
		}
		out = append(out, edge{rel: r, src: src, trg: trg})
	}
	return out
}

type edge struct {
	rel      *diagram.Relationship
	src, trg string
}

func visibility(m diagram.Method) string {
	if m.Visibility == "" {
		return "+"
	}
	return m.Visibility
}
