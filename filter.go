package bclabel

// Relative-size filtering of detection instances.

import (
	"fmt"
	"log"
)

// DefaultFilterThreshold is the default relative-size threshold below which
// an instance is discarded.
const DefaultFilterThreshold = 0.005

// FilterSmallInstances returns the instances whose width and height, each
// normalized by the corresponding image dimension, both reach threshold.
// Either dimension failing the test is sufficient to discard, so thin
// degenerate boxes are dropped even when their other side is large.
// Dropped instances are logged, never an error.
func FilterSmallInstances(instances []Instance, format Format,
	imgWidth, imgHeight, threshold float64) ([]Instance, error) {

	filtered := make([]Instance, 0, len(instances))
	for _, inst := range instances {
		var w, h float64
		switch format {
		case FormatBBox:
			w = inst.Coords[2] - inst.Coords[0]
			h = inst.Coords[3] - inst.Coords[1]
		case FormatRRect:
			w = inst.Coords[2]
			h = inst.Coords[3]
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
		}

		if w/imgWidth < threshold || h/imgHeight < threshold {
			log.Printf("Filtering small box: size %gx%g with image size %gx%g",
				w, h, imgWidth, imgHeight)
			continue
		}
		filtered = append(filtered, inst)
	}

	return filtered, nil
}
