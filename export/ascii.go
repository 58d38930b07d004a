package export

import (
	"fmt"

	"umlboard/canvas"
	"umlboard/diagram"
)

// ASCIIExporter exports diagrams to Unicode box-drawing art
type ASCIIExporter struct {
	CellWidth  float64
	CellHeight float64
	Margin     int
}

// NewASCIIExporter creates a new ASCII exporter with the terminal editor's
// default cell size
func NewASCIIExporter() *ASCIIExporter {
	return &ASCIIExporter{
		CellWidth:  canvas.DefaultCellWidth,
		CellHeight: canvas.DefaultCellHeight,
		Margin:     1,
	}
}

// Export converts the diagram to box-drawing art
func (e *ASCIIExporter) Export(d *diagram.Diagram) (string, error) {
	if d == nil {
		return "", ErrNilDiagram
	}

	vp := canvas.FitViewport(d, e.CellWidth, e.CellHeight, e.Margin)
	m, err := canvas.Render(canvas.Scene{Diagram: d}, vp)
	if err != nil {
		return "", fmt.Errorf("failed to render diagram: %w", err)
	}
	return m.String() + "\n", nil
}

// GetFileExtension returns the recommended file extension
func (e *ASCIIExporter) GetFileExtension() string {
	return ".txt"
}

// GetFormatName returns the format name
func (e *ASCIIExporter) GetFormatName() string {
	return "ASCII/Unicode Art"
}
