package bclabel

// Geometric reconstruction of detection instances from corner points.

import (
	"fmt"
	"log"
	"math"
	"sort"
)

// rrectVertexCount is the number of corner points an oriented rectangle is
// reconstructed from.
const rrectVertexCount = 4

// VerticesToBBox returns the axis-aligned enclosing rectangle of the
// vertices as xmin, ymin, xmax, ymax.
func VerticesToBBox(vertices []Vertex) ([]float64, error) {
	if len(vertices) == 0 {
		return nil, fmt.Errorf("no vertices")
	}

	xMin, yMin := vertices[0][0], vertices[0][1]
	xMax, yMax := xMin, yMin
	for _, v := range vertices[1:] {
		xMin = math.Min(xMin, v[0])
		yMin = math.Min(yMin, v[1])
		xMax = math.Max(xMax, v[0])
		yMax = math.Max(yMax, v[1])
	}

	return []float64{xMin, yMin, xMax, yMax}, nil
}

// VerticesToRRect reconstructs an oriented rectangle from exactly four
// unordered corner points and returns it as xcenter, ycenter, width,
// height, angle in degrees.
//
// The center is the centroid of the corners. The rotation angle is the
// arithmetic mean of the per-vertex atan2 angles about the centroid; this
// is not a circular mean and misbehaves when the angles straddle the
// +-180 degree boundary, a convention kept for parity with labels already
// in use. The corners are sorted by angle to establish a consistent cyclic
// order, then width and height are the means of the two pairs of opposite
// edge lengths.
func VerticesToRRect(vertices []Vertex) ([]float64, error) {
	if len(vertices) != rrectVertexCount {
		return nil, fmt.Errorf("need exactly %d vertices, got %d",
			rrectVertexCount, len(vertices))
	}

	var xCenter, yCenter float64
	for _, v := range vertices {
		xCenter += v[0]
		yCenter += v[1]
	}
	xCenter /= rrectVertexCount
	yCenter /= rrectVertexCount

	type angled struct {
		vertex Vertex
		angle  float64
	}
	corners := make([]angled, rrectVertexCount)
	var angleSum float64
	for i, v := range vertices {
		a := math.Atan2(v[1]-yCenter, v[0]-xCenter)
		corners[i] = angled{vertex: v, angle: a}
		angleSum += a
	}
	rotAngle := (angleSum / rrectVertexCount) * 180 / math.Pi

	sort.Slice(corners, func(i, j int) bool { return corners[i].angle < corners[j].angle })

	dist := func(a, b Vertex) float64 {
		return math.Hypot(a[0]-b[0], a[1]-b[1])
	}
	width := (dist(corners[1].vertex, corners[0].vertex) +
		dist(corners[3].vertex, corners[2].vertex)) / 2
	height := (dist(corners[2].vertex, corners[1].vertex) +
		dist(corners[0].vertex, corners[3].vertex)) / 2

	return []float64{xCenter, yCenter, width, height, rotAngle}, nil
}

// ProcessInstances validates each point group against the catalogue and
// converts the surviving groups to detection instances in the requested
// format.
//
// Groups whose sorted part-id tuple is not in the catalogue, and rrect
// groups without exactly four corners, are logged and skipped. Group ids
// are visited in ascending order so the instance order is deterministic.
func ProcessInstances(groups PointGroups, format Format, catalogue Catalogue) (
	[]Instance, error) {

	if format != FormatBBox && format != FormatRRect {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	groupIDs := make([]int, 0, len(groups.PartIDs))
	for id := range groups.PartIDs {
		groupIDs = append(groupIDs, id)
	}
	sort.Ints(groupIDs)

	instances := make([]Instance, 0, len(groupIDs))
	for _, id := range groupIDs {
		pids := groups.PartIDs[id]
		label, ok := catalogue.Lookup(pids)
		if !ok {
			log.Printf("Filtering invalid part id combination %v in group %d", pids, id)
			continue
		}

		vertices := groups.Vertices[id]
		var coords []float64
		var err error
		switch format {
		case FormatBBox:
			coords, err = VerticesToBBox(vertices)
		case FormatRRect:
			coords, err = VerticesToRRect(vertices)
		}
		if err != nil {
			log.Printf("Filtering malformed group %d: %v", id, err)
			continue
		}

		instances = append(instances, Instance{Coords: coords, Label: label})
	}

	return instances, nil
}
