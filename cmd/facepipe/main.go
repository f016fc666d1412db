package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"strconv"
	"strings"

	facepipe "github.com/Jakub-Ner/FaceRecognitionPipeline"
	"github.com/Jakub-Ner/FaceRecognitionPipeline/utils"
)

const HelpBanner = `
┌─┐┌─┐┌─┐┌─┐┌─┐┬┌─┐┌─┐
├┤ ├─┤│  ├┤ ├─┘│├─┘├┤
┴  ┴ ┴└─┘└─┘┴  ┴┴  └─┘

Face image normalization pipeline.
    Version: %s

`

// pipeName is the file name that indicates stdin/stdout is being used.
const pipeName = "-"

// Version indicates the current build version.
var Version string

var (
	// Flags
	source      = flag.String("in", pipeName, "Source")
	destination = flag.String("out", pipeName, "Destination")
	cascade     = flag.String("cc", "", "Face classifier cascade file")
	puploc      = flag.String("plc", "", "Pupil localization cascade file")
	margin      = flag.String("margin", "30%,30,30,5", "Crop margin (top,right,left,bottom), absolute pixels or percentages")
	ratio       = flag.String("ratio", "1:1", "Crop aspect ratio (height:width)")
	score       = flag.Float64("score", 0.75, "Minimum detection score threshold")
	iou         = flag.Float64("iou", 0.3, "Suppression threshold used to merge overlapping detections")
	inputSize   = flag.Int("size", facepipe.DetectorInputSize, "Detector input resolution")
	workers     = flag.Int("conc", runtime.NumCPU(), "Number of files to process concurrently")
)

func main() {
	log.SetFlags(0)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, HelpBanner, Version)
		flag.PrintDefaults()
	}
	flag.Parse()

	if len(*cascade) == 0 || len(*puploc) == 0 {
		flag.Usage()
		log.Fatal(utils.DecorateText("\nPlease specify both the face classifier and the pupil localization cascade files!", utils.ErrorMessage))
	}

	m, err := parseMargin(*margin)
	if err != nil {
		log.Fatalf(utils.DecorateText("Invalid margin: %v", utils.ErrorMessage), err)
	}

	r, err := parseRatio(*ratio)
	if err != nil {
		log.Fatalf(utils.DecorateText("Invalid ratio: %v", utils.ErrorMessage), err)
	}

	detector, err := facepipe.NewPigoDetector(*cascade, *puploc, facepipe.DetectorConfig{
		ScoreThreshold:       *score,
		SuppressionThreshold: *iou,
		InputSize:            *inputSize,
	})
	if err != nil {
		log.Fatalf(
			utils.DecorateText("Failed to initialize the face detector: %v", utils.ErrorMessage),
			utils.DecorateText(err.Error(), utils.DefaultMessage),
		)
	}

	proc := &facepipe.Processor{
		Margin:    m,
		Ratio:     r,
		Detector:  detector,
		InputSize: *inputSize,
	}

	proc.Execute(&facepipe.Ops{
		Src:      *source,
		Dst:      *destination,
		PipeName: pipeName,
		Workers:  *workers,
	})
}

// parseMargin converts the comma separated top,right,left,bottom margin flag
// to a Margin value.
func parseMargin(s string) (facepipe.Margin, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return facepipe.Margin{}, fmt.Errorf("expected four comma separated values, got %q", s)
	}
	return facepipe.NewMargin(parts[0], parts[1], parts[2], parts[3])
}

// parseRatio converts the height:width ratio flag to a Ratio value.
func parseRatio(s string) (facepipe.Ratio, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return facepipe.Ratio{}, fmt.Errorf("expected a height:width pair, got %q", s)
	}

	h, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return facepipe.Ratio{}, err
	}
	w, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return facepipe.Ratio{}, err
	}
	if h <= 0 || w <= 0 {
		return facepipe.Ratio{}, fmt.Errorf("both ratio terms must be positive, got %q", s)
	}

	return facepipe.Ratio{H: h, W: w}, nil
}
