package importer

import (
	"fmt"
	"regexp"
	"strings"

	"umlboard/diagram"
)

// PlantUMLImporter imports PlantUML class diagrams
type PlantUMLImporter struct{}

// NewPlantUMLImporter creates a new PlantUML importer
func NewPlantUMLImporter() *PlantUMLImporter {
	return &PlantUMLImporter{}
}

var (
	plantDecl       = regexp.MustCompile(`^(abstract\s+class|abstract|class|interface|entity|enum)\s+(?:"([^"]+)"\s+as\s+)?([^\s{<"]+)\s*(?:<<\s*([^>]*?)\s*>>)?\s*(\{)?\s*(\})?$`)
	plantDeclAny    = regexp.MustCompile(`(?m)^\s*(abstract\s+class|abstract|class|interface|entity|enum)\s`)
	plantNoteInline = regexp.MustCompile(`^note\s+"(.*)"(?:\s+as\s+\S+)?$`)
	plantNoteOf     = regexp.MustCompile(`^note\s+(?:left|right|top|bottom)\s+of\s+\S+\s*(?::\s*(.*))?$`)
	plantMember     = regexp.MustCompile(`^([^\s:]+)\s*:\s*(.+)$`)
	plantSeparator  = regexp.MustCompile(`^(?:--+|==+|\.\.+|__+)(?:.*(?:--+|==+|\.\.+|__+))?$`)
	plantDirection  = regexp.MustCompile(`-(?:\[[^\]]*\]|up|down|left|right|u|d|l|r)+-`)
)

// plantIgnored are statements that only affect presentation.
var plantIgnored = []string{"skinparam", "hide ", "show ", "title ", "left to right direction", "top to bottom direction", "scale ", "!"}

// CanImport checks if the content is a PlantUML class diagram
func (p *PlantUMLImporter) CanImport(content string) bool {
	return strings.HasPrefix(strings.TrimSpace(content), "@startuml") && plantDeclAny.MatchString(content)
}

// Import converts a PlantUML class diagram into an unpositioned diagram
func (p *PlantUMLImporter) Import(content string) (*diagram.Diagram, error) {
	b := newBuilder()
	block := ""   // class or enum whose body is open
	packages := 0 // open package blocks
	var note []string
	inNote := false

	for i, line := range strings.Split(content, "\n") {
		t := strings.TrimSpace(line)

		if inNote {
			if strings.EqualFold(t, "end note") {
				b.note(strings.Join(note, "\n"))
				note, inNote = nil, false
			} else {
				note = append(note, t)
			}
			continue
		}
		if t == "" || strings.HasPrefix(t, "'") || strings.HasPrefix(t, "@startuml") || strings.HasPrefix(t, "@enduml") {
			continue
		}

		if block != "" {
			switch {
			case t == "}":
				block = ""
			case plantSeparator.MatchString(t):
			default:
				b.member(block, t)
			}
			continue
		}

		if match := plantDecl.FindStringSubmatch(t); match != nil {
			id := match[3]
			switch kind := strings.Join(strings.Fields(match[1]), " "); kind {
			case "enum":
				b.enumeration(id)
			case "interface", "abstract", "abstract class":
				b.shape(id)
				b.annotate(id, strings.TrimSuffix(kind, " class"))
			default:
				b.shape(id)
			}
			b.rename(id, match[2])
			b.annotate(id, match[4])
			if match[5] != "" && match[6] == "" {
				block = id
			}
			continue
		}
		if match := plantNoteInline.FindStringSubmatch(t); match != nil {
			b.note(strings.ReplaceAll(match[1], `\n`, "\n"))
			continue
		}
		if match := plantNoteOf.FindStringSubmatch(t); match != nil {
			if match[1] != "" {
				b.note(strings.ReplaceAll(match[1], `\n`, "\n"))
			} else {
				inNote = true
			}
			continue
		}
		if strings.HasPrefix(t, "note as ") {
			inNote = true
			continue
		}
		if (strings.HasPrefix(t, "package ") || strings.HasPrefix(t, "namespace ")) && strings.HasSuffix(t, "{") {
			packages++
			continue
		}
		if t == "}" && packages > 0 {
			packages--
			continue
		}
		if l, ok := parseLink(plantDirection.ReplaceAllString(t, "--")); ok {
			b.relate(l)
			continue
		}
		if match := plantMember.FindStringSubmatch(t); match != nil {
			b.member(match[1], match[2])
			continue
		}
		if ignored(t, plantIgnored) {
			continue
		}
		return nil, fmt.Errorf("line %d: unrecognized statement %q", i+1, t)
	}
	if block != "" {
		return nil, fmt.Errorf("class %s: missing closing brace", block)
	}
	if inNote {
		return nil, fmt.Errorf("note: missing end note")
	}

	return b.result(), nil
}

// GetFormatName returns the format name
func (p *PlantUMLImporter) GetFormatName() string {
	return "PlantUML"
}

// GetFileExtensions returns common file extensions
func (p *PlantUMLImporter) GetFileExtensions() []string {
	return []string{".puml", ".plantuml", ".pu", ".iuml"}
}
