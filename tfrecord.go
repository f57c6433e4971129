package bclabel

// TFRecord export of converted detection labels.

import (
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/protobuf/proto"
	"github.com/ryszard/tfutils/go/example"
	"github.com/ryszard/tfutils/go/tfrecord"
	"github.com/ryszard/tfutils/proto/tensorflow/core/example" // package tensorflow
)

// TFFeatureMap maps feature names to their values. Values must be
// convertible to tensorflow.Feature.
type TFFeatureMap map[string]interface{}

// toTFFeatures converts one converted record to the TFRecord feature map.
// The image bytes are read from the co-located image file under dataRoot;
// the image is never decoded, its dimensions come from the label data.
func toTFFeatures(dataRoot string, rec FileInstances) (TFFeatureMap, error) {
	imagePath := filepath.Join(dataRoot, rec.ImagePath)
	imgData, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read the image: %v", err)
	}

	f := make(TFFeatureMap, 16)
	f["image/height"] = int(rec.Height)
	f["image/width"] = int(rec.Width)
	f["image/filename"] = rec.ImagePath
	f["image/source_id"] = rec.ImagePath
	f["image/encoded"] = imgData
	f["image/format"] = strings.TrimPrefix(filepath.Ext(imagePath), ".")

	numLabels := len(rec.Instances)
	xmins := make([]float32, numLabels)
	ymins := make([]float32, numLabels)
	xmaxs := make([]float32, numLabels)
	ymaxs := make([]float32, numLabels)
	classIDs := make([]int64, numLabels)

	isRRect := numLabels > 0 && len(rec.Instances[0].Coords) == 5
	var cxs, cys, ws, hs, angles []float32
	if isRRect {
		cxs = make([]float32, numLabels)
		cys = make([]float32, numLabels)
		ws = make([]float32, numLabels)
		hs = make([]float32, numLabels)
		angles = make([]float32, numLabels)
	}

	for i, inst := range rec.Instances {
		var xMin, yMin, xMax, yMax float64
		if isRRect {
			cx, cy, w, h, angle := inst.Coords[0], inst.Coords[1], inst.Coords[2],
				inst.Coords[3], inst.Coords[4]
			cxs[i] = float32(cx / rec.Width)
			cys[i] = float32(cy / rec.Height)
			ws[i] = float32(w / rec.Width)
			hs[i] = float32(h / rec.Height)
			angles[i] = float32(angle)

			// Axis-aligned bounds of the oriented rectangle.
			rad := angle * math.Pi / 180
			halfW := (w*math.Abs(math.Cos(rad)) + h*math.Abs(math.Sin(rad))) / 2
			halfH := (w*math.Abs(math.Sin(rad)) + h*math.Abs(math.Cos(rad))) / 2
			xMin, yMin = cx-halfW, cy-halfH
			xMax, yMax = cx+halfW, cy+halfH
		} else {
			xMin, yMin = inst.Coords[0], inst.Coords[1]
			xMax, yMax = inst.Coords[2], inst.Coords[3]
		}

		xmins[i] = float32(xMin / rec.Width)
		ymins[i] = float32(yMin / rec.Height)
		xmaxs[i] = float32(xMax / rec.Width)
		ymaxs[i] = float32(yMax / rec.Height)
		classIDs[i] = int64(inst.Label)
	}

	f["image/object/bbox/xmin"] = xmins
	f["image/object/bbox/ymin"] = ymins
	f["image/object/bbox/xmax"] = xmaxs
	f["image/object/bbox/ymax"] = ymaxs
	f["image/object/class/label"] = classIDs
	if isRRect {
		f["image/object/rbox/cx"] = cxs
		f["image/object/rbox/cy"] = cys
		f["image/object/rbox/w"] = ws
		f["image/object/rbox/h"] = hs
		f["image/object/rbox/angle"] = angles
	}

	return f, nil
}

// WriteTFRecord does a streaming conversion, serialisation and file write
// for the converted records to one or more TFRecord files stored under
// recordPath (with suffixes added when numShards > 1).
//
// Records whose image file cannot be read are logged and skipped.
func WriteTFRecord(recordPath, dataRoot string, files []FileInstances,
	numShards int) (err error) {
	defer func() {
		if e := recover(); e != nil {
			err = fmt.Errorf("conversion to TensorFlow Example failed: %v", e)
		}
	}()

	if numShards <= 0 {
		numShards = 1
	}

	fmtShardSuffix := func(idx int) string {
		return fmt.Sprintf("-%05d-of-%05d", idx, numShards)
	}

	var shardFile *os.File
	shardSize := int(math.Ceil(float64(len(files)) / float64(numShards)))
	shardIdx := -1

	// Convert and serialise one record at a time.
	for i, rec := range files {
		// Check if a new shard file needs to be opened for writing.
		if i%shardSize == 0 {
			shardIdx++

			// Close the previous shard file.
			if shardFile != nil {
				_ = shardFile.Close()
				shardFile = nil
			}

			// Create the new shard file.
			shardPath := recordPath
			if numShards > 1 {
				shardPath += fmtShardSuffix(shardIdx)
			}
			f, err := os.Create(shardPath)
			if err != nil {
				return fmt.Errorf("failed to create shard at %q: %v", shardPath, err)
			}
			shardFile = f
		}

		// Convert the record to an example.
		features, err := toTFFeatures(dataRoot, rec)
		if err != nil {
			log.Printf("Failed to convert %q: %v", rec.ImagePath, err)
			continue
		}
		tfExample := example.New(features)

		// Write the example.
		if err := writeTFRecordExample(shardFile, tfExample); err != nil {
			_ = shardFile.Close()
			return fmt.Errorf("failed to write example for %q: %v", rec.ImagePath, err)
		}
	}

	if shardFile != nil {
		return shardFile.Close()
	}

	return nil
}

// writeTFRecordExample serialises the example and writes it as a TFRecord
// to w.
func writeTFRecordExample(w *os.File, e *tensorflow.Example) error {
	enc, err := proto.Marshal(e)
	if err != nil {
		return err
	}

	return tfrecord.Write(w, enc)
}
