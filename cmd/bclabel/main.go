// Converts LabelMe barcode-corner point annotations into consolidated
// detection label files (axis-aligned or oriented rectangles), with an
// optional TFRecord export.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	bclabel "github.com/poveryang/barcode-detection"
)

var (
	dataRootPath    string           // The dataset root containing the label files.
	formats         []bclabel.Format // The formats to convert to.
	filterThreshold float64          // The relative-size filter threshold.
	tfRecordPath    string           // The TFRecord output path (empty disables export).
	numShardFiles   int              // The number of TFRecord shard files to create.
)

func init() {
	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "Usage of %s:\n", filepath.Base(os.Args[0]))
		_, _ = fmt.Fprintln(os.Stderr,
			"  Writes one <format>_all.txt label file as a sibling of -data-root"+
				" per requested format.")
		_, _ = fmt.Fprintln(os.Stderr)
		flag.PrintDefaults()
	}

	printUsageAndExit := func(msg ...interface{}) {
		log.Print(msg...)
		flag.Usage()
		os.Exit(1)
	}

	flag.StringVar(&dataRootPath, "data-root", dataRootPath,
		"The `path` to the dataset root directory (required)")
	formatList := flag.String("formats", "rrect,bbox",
		"The comma-separated label formats (`format[,...]`) to generate {bbox, rrect}")
	flag.Float64Var(&filterThreshold, "filter-threshold", bclabel.DefaultFilterThreshold,
		"The relative size `threshold` below which instances are discarded")
	flag.StringVar(&tfRecordPath, "tfrecord-out", tfRecordPath,
		"The `path` for an additional TFRecord export (empty disables it;"+
			" the format name is appended when multiple formats are requested)")
	flag.IntVar(&numShardFiles, "num-shards", 1,
		"The number of shard files to create (tfrecord only)")

	flag.Parse()

	if dataRootPath == "" {
		printUsageAndExit("Missing -data-root argument")
	}
	dataRootPath = filepath.Clean(dataRootPath)

	for _, v := range strings.Split(*formatList, ",") {
		f := bclabel.Format(strings.TrimSpace(v))
		if _, err := bclabel.OutputFileName(f); err != nil {
			printUsageAndExit("Invalid value in -formats: ", v)
		}
		formats = append(formats, f)
	}
	if len(formats) == 0 {
		printUsageAndExit("No formats requested")
	}

	if filterThreshold < 0 || filterThreshold >= 1 {
		printUsageAndExit("Invalid -filter-threshold, must be in [0.0, 1.0): ",
			filterThreshold)
	}
}

func main() {
	for _, format := range formats {
		records, err := bclabel.ConvertSave(dataRootPath, format, filterThreshold,
			bclabel.DefaultCatalogue)
		if err != nil {
			log.Fatal("Conversion failed: ", err)
		}

		if tfRecordPath == "" {
			continue
		}
		recordPath := tfRecordPath
		if len(formats) > 1 {
			recordPath += "." + string(format)
		}
		if err := bclabel.WriteTFRecord(recordPath, dataRootPath, records,
			numShardFiles); err != nil {
			log.Fatal("TFRecord export failed: ", err)
		}
		log.Printf("Successfully wrote %d records to %s", len(records), recordPath)
	}
}
