package importer

import (
	"fmt"
	"regexp"
	"strings"

	"umlboard/diagram"
)

// MermaidImporter imports Mermaid class diagrams
type MermaidImporter struct{}

// NewMermaidImporter creates a new Mermaid importer
func NewMermaidImporter() *MermaidImporter {
	return &MermaidImporter{}
}

var (
	mermaidClass      = regexp.MustCompile(`^class\s+([^\s\["{~]+)(?:~[^~]*~)?(?:\["([^"]*)"\])?\s*(\{)?\s*(\})?$`)
	mermaidAnnotation = regexp.MustCompile(`^<<\s*([^>]+?)\s*>>\s*(\S+)?$`)
	mermaidNote       = regexp.MustCompile(`^note(?:\s+for\s+\S+)?\s+"(.*)"$`)
	mermaidMember     = regexp.MustCompile(`^([^\s:]+)\s*:\s*(.+)$`)
)

// mermaidIgnored are statements that only affect styling or interaction.
var mermaidIgnored = []string{"direction ", "style ", "classDef ", "cssClass ", "click ", "callback ", "link ", "title "}

// CanImport checks if the content is a Mermaid class diagram
func (m *MermaidImporter) CanImport(content string) bool {
	for _, line := range strings.Split(content, "\n") {
		t := strings.TrimSpace(line)
		if t == "" || strings.HasPrefix(t, "%%") {
			continue
		}
		return strings.HasPrefix(t, "classDiagram")
	}
	return false
}

// Import converts a Mermaid class diagram into an unpositioned diagram
func (m *MermaidImporter) Import(content string) (*diagram.Diagram, error) {
	if !m.CanImport(content) {
		return nil, fmt.Errorf("not a Mermaid class diagram")
	}

	b := newBuilder()
	header := false
	block := ""     // class whose body is open
	namespaces := 0 // open namespace blocks

	for i, line := range strings.Split(content, "\n") {
		t := strings.TrimSpace(line)
		if t == "" || strings.HasPrefix(t, "%%") {
			continue
		}
		if !header {
			header = true // checked by CanImport
			continue
		}

		if block != "" {
			switch {
			case t == "}":
				block = ""
			case strings.HasPrefix(t, "<<"):
				b.annotate(block, strings.Trim(t, "<> "))
			default:
				b.member(block, t)
			}
			continue
		}

		if match := mermaidClass.FindStringSubmatch(t); match != nil {
			id := match[1]
			b.shape(id)
			b.rename(id, unescapeMermaid(match[2]))
			if match[3] != "" && match[4] == "" {
				block = id
			}
			continue
		}
		if match := mermaidAnnotation.FindStringSubmatch(t); match != nil && match[2] != "" {
			b.annotate(match[2], match[1])
			continue
		}
		if match := mermaidNote.FindStringSubmatch(t); match != nil {
			b.note(unescapeMermaid(match[1]))
			continue
		}
		if strings.HasPrefix(t, "namespace ") && strings.HasSuffix(t, "{") {
			namespaces++
			continue
		}
		if t == "}" && namespaces > 0 {
			namespaces--
			continue
		}
		if l, ok := parseLink(t); ok {
			b.relate(l)
			continue
		}
		if match := mermaidMember.FindStringSubmatch(t); match != nil {
			b.member(match[1], match[2])
			continue
		}
		if ignored(t, mermaidIgnored) {
			continue
		}
		return nil, fmt.Errorf("line %d: unrecognized statement %q", i+1, t)
	}
	if block != "" {
		return nil, fmt.Errorf("class %s: missing closing brace", block)
	}

	return b.result(), nil
}

// GetFormatName returns the format name
func (m *MermaidImporter) GetFormatName() string {
	return "Mermaid"
}

// GetFileExtensions returns common file extensions
func (m *MermaidImporter) GetFileExtensions() []string {
	return []string{".mmd", ".mermaid"}
}

func unescapeMermaid(s string) string {
	s = strings.ReplaceAll(s, "#quot;", `"`)
	s = strings.ReplaceAll(s, "<br>", "\n")
	return strings.ReplaceAll(s, `\n`, "\n")
}

func ignored(line string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}
