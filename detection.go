package facepipe

import (
	"github.com/pkg/errors"
)

// ErrNoDetections is returned when a selector is invoked on an empty
// detection batch. The orchestrator checks the batch size before selecting,
// so hitting this error outside of the pipeline indicates a caller bug.
var ErrNoDetections = errors.New("empty detection batch")

// Keypoint is a single facial landmark, normalized to [0,1] relative to the
// image the detector was run on.
type Keypoint struct {
	X, Y float64
}

// Detection is one candidate face reported by a Detector. The box corners and
// the six landmarks are normalized to [0,1] relative to the detector input
// image. By convention the first keypoint pair is the right eye and the
// second the left eye; the remaining pairs (nose tip, mouth, ear tragions)
// do not participate in the alignment.
type Detection struct {
	YMin, XMin, YMax, XMax float64
	Keypoints              [6]Keypoint

	// Score is the detector confidence, used for display purposes only.
	// Detections are ranked by area, never by score.
	Score float64
}

// RightEye returns the right-eye landmark.
func (d Detection) RightEye() Keypoint {
	return d.Keypoints[0]
}

// LeftEye returns the left-eye landmark.
func (d Detection) LeftEye() Keypoint {
	return d.Keypoints[1]
}

// Area returns the normalized area of the detection box.
func (d Detection) Area() float64 {
	return (d.YMax - d.YMin) * (d.XMax - d.XMin)
}

// Box converts the normalized detection box to pixel coordinates relative to
// an image of the provided dimensions.
func (d Detection) Box(height, width int) Box {
	return Box{
		YMin: int(d.YMin * float64(height)),
		XMin: int(d.XMin * float64(width)),
		YMax: int(d.YMax * float64(height)),
		XMax: int(d.XMax * float64(width)),
	}
}

// SelectLargest returns the index of the detection covering the biggest area.
// The batch must not be empty.
func SelectLargest(detections []Detection) (int, error) {
	if len(detections) == 0 {
		return 0, ErrNoDetections
	}

	idx := 0
	max := detections[0].Area()

	for i := 1; i < len(detections); i++ {
		if area := detections[i].Area(); area > max {
			max = area
			idx = i
		}
	}

	return idx, nil
}
