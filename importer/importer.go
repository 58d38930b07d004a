// Package importer reads class diagrams written in other text formats and
// lays them out as umlboard diagrams.
package importer

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"umlboard/diagram"
	"umlboard/layout"
	"umlboard/markdown"
)

// Sentinel errors for imports.
var (
	ErrUnknownFormat = errors.New("unable to detect format")
	ErrNoBlock       = errors.New("no importable diagram block")
)

// Importer interface defines methods for importing diagrams from various formats
type Importer interface {
	// CanImport checks if the given content can be imported by this importer
	CanImport(content string) bool

	// Import converts the input content into a diagram. Shapes are not
	// positioned.
	Import(content string) (*diagram.Diagram, error)

	// GetFormatName returns the human-readable name of the format
	GetFormatName() string

	// GetFileExtensions returns common file extensions for this format
	GetFileExtensions() []string
}

// ImporterRegistry manages available importers and lays out what they
// produce.
type ImporterRegistry struct {
	importers []Importer
	layout    *layout.Layered
}

// NewImporterRegistry creates a new importer registry
func NewImporterRegistry() *ImporterRegistry {
	return &ImporterRegistry{
		importers: []Importer{
			NewMermaidImporter(),
			NewPlantUMLImporter(),
		},
		layout: layout.NewLayered(),
	}
}

// Register adds a new importer to the registry
func (r *ImporterRegistry) Register(importer Importer) {
	r.importers = append(r.importers, importer)
}

// DetectFormat attempts to detect the format of the given content
func (r *ImporterRegistry) DetectFormat(content string) (Importer, error) {
	for _, imp := range r.importers {
		if imp.CanImport(content) {
			return imp, nil
		}
	}
	return nil, ErrUnknownFormat
}

// Import attempts to import content using auto-detection
func (r *ImporterRegistry) Import(content string) (*diagram.Diagram, error) {
	importer, err := r.DetectFormat(content)
	if err != nil {
		return nil, err
	}
	return r.run(importer, content)
}

// ImportWithFormat imports content using a specific format, named by the
// format name or one of its file extensions
func (r *ImporterRegistry) ImportWithFormat(content, format string) (*diagram.Diagram, error) {
	imp := r.lookup(format)
	if imp == nil {
		return nil, fmt.Errorf("unknown format: %s", format)
	}
	return r.run(imp, content)
}

// ImportFile imports content read from path. Markdown files are searched
// for diagram blocks; other files are matched by extension, then by
// content.
func (r *ImporterRegistry) ImportFile(path, content string) (*diagram.Diagram, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".md" || ext == ".markdown" {
		return r.ImportMarkdown(content, 0)
	}
	if imp := r.lookup(ext); imp != nil {
		return r.run(imp, content)
	}
	return r.Import(content)
}

// ImportMarkdown imports the diagram block numbered block (1-based) of a
// Markdown document. Block 0 selects the first block that an importer
// accepts.
func (r *ImporterRegistry) ImportMarkdown(content string, block int) (*diagram.Diagram, error) {
	blocks := markdown.NewScanner(content).FindDiagramBlocks()
	if block > 0 {
		if block > len(blocks) {
			return nil, fmt.Errorf("%w: block %d of %d", ErrNoBlock, block, len(blocks))
		}
		b := blocks[block-1]
		if imp := r.lookup(b.Type); imp != nil {
			return r.run(imp, b.Content)
		}
		return r.Import(b.Content)
	}
	for _, b := range blocks {
		if imp, err := r.DetectFormat(b.Content); err == nil {
			return r.run(imp, b.Content)
		}
	}
	return nil, ErrNoBlock
}

// GetAvailableFormats returns a list of available import formats
func (r *ImporterRegistry) GetAvailableFormats() []string {
	formats := make([]string, len(r.importers))
	for i, imp := range r.importers {
		formats[i] = imp.GetFormatName()
	}
	return formats
}

func (r *ImporterRegistry) lookup(format string) Importer {
	format = strings.TrimPrefix(strings.ToLower(format), ".")
	for _, imp := range r.importers {
		if strings.ToLower(imp.GetFormatName()) == format {
			return imp
		}
		for _, ext := range imp.GetFileExtensions() {
			if strings.TrimPrefix(ext, ".") == format {
				return imp
			}
		}
	}
	return nil
}

func (r *ImporterRegistry) run(imp Importer, content string) (*diagram.Diagram, error) {
	d, err := imp.Import(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", imp.GetFormatName(), err)
	}
	r.layout.Apply(d)
	return d, nil
}
