package bclabel

// LabelMe point-annotation specific functionality.

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// Part-id sentinels excluded before grouping.
const (
	ignoredPartID    = -1
	backgroundPartID = 7
)

// LabelMeShape is a single shape within a LabelMe file. Only point shapes
// are consumed by this pipeline; the first element of Points is the vertex.
type LabelMeShape struct {
	Label     string       `json:"label"` // The part id as a stringified integer.
	Points    [][2]float64 `json:"points"`
	GroupID   *int         `json:"group_id"`
	ShapeType string       `json:"shape_type"`
}

// LabelMeFile defines the LabelMe annotation structure for a single image.
type LabelMeFile struct {
	ImageWidth  float64        `json:"imageWidth"`
	ImageHeight float64        `json:"imageHeight"`
	Shapes      []LabelMeShape `json:"shapes"`
}

// ParseError reports a label file that cannot be parsed. It aborts the
// batch, unlike the logged per-group rejections.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse label file %q: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// PointGroups is the parsed annotation data for one image: the corner
// vertices and part ids of each instance, grouped by the instance id.
//
// Invariant: Vertices and PartIDs share identical key sets and per-key
// lengths (one vertex per part-id observation).
type PointGroups struct {
	Width    float64
	Height   float64
	Vertices map[int][]Vertex
	PartIDs  map[int][]int
}

// FromLabelMe reads and parses the LabelMe point annotations from the file
// at path.
//
// Shapes with a shape type other than "point" and points tagged with the
// ignore or background part id are excluded. A group_id of null, 0 or
// absent normalizes to the canonical group 0, so ungrouped points collapse
// into a single shared group.
func FromLabelMe(path string) (PointGroups, error) {
	groups := PointGroups{
		Vertices: make(map[int][]Vertex),
		PartIDs:  make(map[int][]int),
	}

	enc, err := os.ReadFile(path)
	if err != nil {
		return groups, &ParseError{Path: path, Err: err}
	}

	var labelFile LabelMeFile
	if err := json.Unmarshal(enc, &labelFile); err != nil {
		return groups, &ParseError{Path: path, Err: err}
	}
	if labelFile.ImageWidth <= 0 || labelFile.ImageHeight <= 0 {
		return groups, &ParseError{Path: path,
			Err: fmt.Errorf("invalid image dimensions %gx%g",
				labelFile.ImageWidth, labelFile.ImageHeight)}
	}
	if labelFile.Shapes == nil {
		return groups, &ParseError{Path: path, Err: fmt.Errorf("missing shapes")}
	}
	groups.Width = labelFile.ImageWidth
	groups.Height = labelFile.ImageHeight

	for i, shape := range labelFile.Shapes {
		if shape.ShapeType != "point" {
			continue
		}

		pid, err := strconv.Atoi(shape.Label)
		if err != nil {
			return groups, &ParseError{Path: path,
				Err: fmt.Errorf("shape %d has a non-integer label %q", i, shape.Label)}
		}
		if pid == ignoredPartID || pid == backgroundPartID {
			continue
		}
		if len(shape.Points) == 0 {
			return groups, &ParseError{Path: path,
				Err: fmt.Errorf("point shape %d has no points", i)}
		}

		groupID := 0
		if shape.GroupID != nil {
			groupID = *shape.GroupID
		}

		groups.Vertices[groupID] = append(groups.Vertices[groupID], Vertex(shape.Points[0]))
		groups.PartIDs[groupID] = append(groups.PartIDs[groupID], pid)
	}

	return groups, nil
}
