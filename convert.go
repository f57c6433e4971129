package bclabel

// Batch conversion of a dataset tree into one consolidated label file.

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// imageFileExt is the extension of the image co-located with each label
// file. Labels and images share a path stem, a convention the dataset
// layout must uphold.
const imageFileExt = ".png"

// OutputFileName returns the name of the consolidated label file written
// for the given format.
func OutputFileName(format Format) (string, error) {
	switch format {
	case FormatBBox:
		return "bbox_all.txt", nil
	case FormatRRect:
		return "rrect_all.txt", nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// ConvertSave converts every *.json label file under dataRoot to the
// requested format and writes one consolidated label file as a sibling of
// dataRoot, one line per image with at least one surviving instance:
//
//	<image_relative_path>\t<v1>,...,<vk>,<label>\t...\n
//
// Images whose every group was rejected or filtered are omitted. Label
// files are processed in sorted path order, so the output is deterministic.
// The returned records mirror the written lines, for downstream exports.
//
// A ParseError on any label file aborts the batch, leaving the output file
// in whatever partially-written state existed at that point.
func ConvertSave(dataRoot string, format Format, filterThreshold float64,
	catalogue Catalogue) (records []FileInstances, err error) {

	outName, err := OutputFileName(format)
	if err != nil {
		return nil, err
	}

	dataRoot = filepath.Clean(dataRoot)
	outPath := filepath.Join(filepath.Dir(dataRoot), outName)

	labelPaths, err := jsonFilesUnder(dataRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to discover label files under %q: %v", dataRoot, err)
	}
	log.Printf("Converting %d label files to %s", len(labelPaths), format)

	out, err := os.Create(outPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create the output file %q: %v", outPath, err)
	}
	defer closeWithErrCheck(out, &err)

	records = make([]FileInstances, 0, len(labelPaths))
	for _, labelPath := range labelPaths {
		groups, err := FromLabelMe(labelPath)
		if err != nil {
			return nil, err
		}

		instances, err := ProcessInstances(groups, format, catalogue)
		if err != nil {
			return nil, err
		}
		instances, err = FilterSmallInstances(instances, format,
			groups.Width, groups.Height, filterThreshold)
		if err != nil {
			return nil, err
		}
		if len(instances) == 0 {
			continue
		}

		relPath, err := filepath.Rel(dataRoot, replaceExt(labelPath, imageFileExt))
		if err != nil {
			return nil, fmt.Errorf("failed to relativise %q: %v", labelPath, err)
		}

		record := FileInstances{
			ImagePath: relPath,
			Width:     groups.Width,
			Height:    groups.Height,
			Instances: instances,
		}
		if _, err := fmt.Fprintln(out, record.line()); err != nil {
			return nil, fmt.Errorf("failed to write to %q: %v", outPath, err)
		}
		records = append(records, record)
	}

	log.Printf("Wrote labels for %d of %d files to %s", len(records), len(labelPaths), outPath)
	return records, nil
}
