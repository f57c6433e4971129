// Package bclabel converts sparse barcode-corner point annotations into
// consolidated object-detection training labels.
package bclabel

import (
	"fmt"
	"strconv"
	"strings"
)

// Format selects the geometry of the generated labels.
type Format string

// The supported label formats.
const (
	FormatBBox  Format = "bbox"  // Axis-aligned bounding boxes.
	FormatRRect Format = "rrect" // Oriented rectangles.
)

// ErrUnsupportedFormat is returned when a Format value is not one of the
// supported constants.
var ErrUnsupportedFormat = fmt.Errorf("unsupported label format")

// Vertex is a single annotated corner point, as x, y offsets from the
// top-left corner of the image.
type Vertex [2]float64

// Instance is one geometric detection derived from a validated point group.
//
// Coords holds 4 values for bbox labels (xmin, ymin, xmax, ymax) and 5 for
// rrect labels (xcenter, ycenter, width, height, angle in degrees).
type Instance struct {
	Coords []float64
	Label  int
}

// FileInstances is the converted label data for a single image.
type FileInstances struct {
	ImagePath string // Relative to the dataset root.
	Width     float64
	Height    float64
	Instances []Instance
}

// line serialises the record as one output file line, without the trailing
// newline: the image path and one comma-joined tuple per instance, all
// tab-separated.
func (f FileInstances) line() string {
	parts := make([]string, 0, 1+len(f.Instances))
	parts = append(parts, f.ImagePath)
	for _, inst := range f.Instances {
		values := make([]string, 0, len(inst.Coords)+1)
		for _, v := range inst.Coords {
			values = append(values, formatFloat(v))
		}
		values = append(values, strconv.Itoa(inst.Label))
		parts = append(parts, strings.Join(values, ","))
	}
	return strings.Join(parts, "\t")
}
