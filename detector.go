package facepipe

import "image"

// DetectorInputSize is the square resolution the pipeline downscales images
// to before invoking the detector.
const DetectorInputSize = 128

// Detector locates faces on a fixed-size image. Implementations must return
// zero or more detections with boxes and landmarks normalized to [0,1] and
// are expected to be safe for sequential use; concurrent use is a caller
// concern.
type Detector interface {
	Detect(img *image.NRGBA) ([]Detection, error)
}

// DetectorConfig carries the tuning knobs consumed by a Detector
// implementation.
type DetectorConfig struct {
	// ScoreThreshold is the minimum confidence, in the detector's native
	// score units, a candidate needs to be reported.
	ScoreThreshold float64

	// SuppressionThreshold is the overlap ratio above which candidate
	// boxes are merged into a single detection.
	SuppressionThreshold float64

	// InputSize is the square resolution the detector accepts.
	InputSize int
}

// DefaultDetectorConfig returns the reference pipeline configuration.
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		ScoreThreshold:       0.75,
		SuppressionThreshold: 0.3,
		InputSize:            DetectorInputSize,
	}
}
