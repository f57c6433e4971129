package bclabel

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// writeLabelFile writes content as a label file in dir and returns its path.
func writeLabelFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFromLabelMe(t *testing.T) {
	path := writeLabelFile(t, t.TempDir(), "a.json", `{
		"imageWidth": 800, "imageHeight": 600,
		"shapes": [
			{"shape_type": "point", "label": "0", "group_id": 1, "points": [[10, 20]]},
			{"shape_type": "point", "label": "1", "group_id": 1, "points": [[30, 20]]},
			{"shape_type": "point", "label": "2", "group_id": 1, "points": [[30, 40]]},
			{"shape_type": "point", "label": "3", "group_id": 1, "points": [[10, 40]]},
			{"shape_type": "rectangle", "label": "4", "group_id": 1, "points": [[0, 0], [5, 5]]},
			{"shape_type": "point", "label": "-1", "group_id": 1, "points": [[1, 1]]},
			{"shape_type": "point", "label": "7", "group_id": 1, "points": [[2, 2]]}
		]
	}`)

	groups, err := FromLabelMe(path)
	if err != nil {
		t.Fatal("FromLabelMe: ", err)
	}

	if groups.Width != 800 || groups.Height != 600 {
		t.Errorf("dimensions = %gx%g, want 800x600", groups.Width, groups.Height)
	}
	if len(groups.Vertices) != 1 || len(groups.PartIDs) != 1 {
		t.Fatalf("got %d vertex groups and %d pid groups, want 1 and 1",
			len(groups.Vertices), len(groups.PartIDs))
	}
	// Non-point shapes and the -1/7 sentinels are excluded.
	if got := groups.PartIDs[1]; len(got) != 4 {
		t.Fatalf("group 1 part ids = %v, want 4 entries", got)
	}
	if got := groups.Vertices[1]; len(got) != 4 || got[0] != (Vertex{10, 20}) {
		t.Errorf("group 1 vertices = %v", got)
	}
}

// TestFromLabelMeGroupDefaulting checks that group_id values of null, 0 and
// absent all merge into the canonical group 0.
func TestFromLabelMeGroupDefaulting(t *testing.T) {
	path := writeLabelFile(t, t.TempDir(), "merge.json", `{
		"imageWidth": 100, "imageHeight": 100,
		"shapes": [
			{"shape_type": "point", "label": "0", "group_id": null, "points": [[1, 1]]},
			{"shape_type": "point", "label": "1", "group_id": 0, "points": [[2, 2]]},
			{"shape_type": "point", "label": "2", "points": [[3, 3]]},
			{"shape_type": "point", "label": "3", "group_id": 5, "points": [[4, 4]]}
		]
	}`)

	groups, err := FromLabelMe(path)
	if err != nil {
		t.Fatal("FromLabelMe: ", err)
	}

	if len(groups.PartIDs) != 2 {
		t.Fatalf("got groups %v, want exactly groups 0 and 5", groups.PartIDs)
	}
	if got := groups.PartIDs[0]; len(got) != 3 {
		t.Errorf("group 0 part ids = %v, want the three defaulted points", got)
	}
	if got := groups.PartIDs[5]; len(got) != 1 || got[0] != 3 {
		t.Errorf("group 5 part ids = %v, want [3]", got)
	}
}

func TestFromLabelMeParseErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
	}{
		{"malformed.json", `{"imageWidth": 100,`},
		{"nodims.json", `{"shapes": []}`},
		{"noshapes.json", `{"imageWidth": 100, "imageHeight": 100}`},
		{"badlabel.json", `{"imageWidth": 100, "imageHeight": 100,
			"shapes": [{"shape_type": "point", "label": "corner", "points": [[1, 1]]}]}`},
		{"nopoints.json", `{"imageWidth": 100, "imageHeight": 100,
			"shapes": [{"shape_type": "point", "label": "0", "points": []}]}`},
	}

	for _, tc := range tests {
		path := writeLabelFile(t, dir, tc.name, tc.content)
		_, err := FromLabelMe(path)
		var parseErr *ParseError
		if !errors.As(err, &parseErr) {
			t.Errorf("%s: got %v, want a *ParseError", tc.name, err)
			continue
		}
		if parseErr.Path != path {
			t.Errorf("%s: error names path %q, want %q", tc.name, parseErr.Path, path)
		}
	}
}

func TestFromLabelMeMissingFile(t *testing.T) {
	_, err := FromLabelMe(filepath.Join(t.TempDir(), "missing.json"))
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Errorf("got %v, want a *ParseError", err)
	}
}
