package facepipe

import (
	"image"
	"os"

	"github.com/Jakub-Ner/FaceRecognitionPipeline/utils"
	pigo "github.com/esimov/pigo/core"
	"github.com/pkg/errors"
)

const (
	// pigoMaxQuality is the practical ceiling of the pigo cluster quality
	// score, used to normalize detection scores to [0,1].
	pigoMaxQuality = 50.0

	// eyePerturbs is the number of random perturbations the pupil
	// localizer runs per eye.
	eyePerturbs = 63
)

var _ Detector = (*PigoDetector)(nil)

// PigoDetector locates faces with the pigo cascade classifier and resolves
// the eye landmarks with its pupil localization cascade. It implements the
// Detector interface consumed by the Processor.
type PigoDetector struct {
	classifier *pigo.Pigo
	puploc     *pigo.PuplocCascade
	cfg        DetectorConfig
}

// NewPigoDetector reads and unpacks the facefinder and puploc cascade files.
// A failure to load either cascade is fatal for the caller; the pipeline has
// no fallback detector.
func NewPigoDetector(cascadePath, puplocPath string, cfg DetectorConfig) (*PigoDetector, error) {
	cascade, err := os.ReadFile(cascadePath)
	if err != nil {
		return nil, errors.Wrap(err, "could not read the cascade file")
	}

	classifier, err := pigo.NewPigo().Unpack(cascade)
	if err != nil {
		return nil, errors.Wrap(err, "error unpacking the cascade file")
	}

	plCascade, err := os.ReadFile(puplocPath)
	if err != nil {
		return nil, errors.Wrap(err, "could not read the puploc cascade file")
	}

	plc, err := pigo.NewPuplocCascade().UnpackCascade(plCascade)
	if err != nil {
		return nil, errors.Wrap(err, "error unpacking the puploc cascade file")
	}

	if cfg.InputSize <= 0 {
		cfg.InputSize = DetectorInputSize
	}

	return &PigoDetector{
		classifier: classifier,
		puploc:     plc,
		cfg:        cfg,
	}, nil
}

// Detect runs the cascade classifier over the image and converts the
// clustered results to normalized detection records.
func (d *PigoDetector) Detect(img *image.NRGBA) ([]Detection, error) {
	var (
		bounds = img.Bounds()
		cols   = bounds.Dx()
		rows   = bounds.Dy()
	)

	imgParams := pigo.ImageParams{
		Pixels: rgbToGrayscale(img),
		Rows:   rows,
		Cols:   cols,
		Dim:    cols,
	}

	cParams := pigo.CascadeParams{
		MinSize:     20,
		MaxSize:     utils.Max(cols, rows),
		ShiftFactor: 0.1,
		ScaleFactor: 1.1,
		ImageParams: imgParams,
	}

	// The result contains quadruplets representing the row, column, scale
	// and the detection score.
	faces := d.classifier.RunCascade(cParams, 0.0)

	// Calculate the intersection over union (IoU) of two clusters.
	faces = d.classifier.ClusterDetections(faces, d.cfg.SuppressionThreshold)

	detections := make([]Detection, 0, len(faces))
	for _, face := range faces {
		score := float64(face.Q) / pigoMaxQuality
		if score > 1 {
			score = 1
		}
		if score < d.cfg.ScoreThreshold {
			continue
		}

		det := Detection{
			YMin:  float64(face.Row-face.Scale/2) / float64(rows),
			XMin:  float64(face.Col-face.Scale/2) / float64(cols),
			YMax:  float64(face.Row+face.Scale/2) / float64(rows),
			XMax:  float64(face.Col+face.Scale/2) / float64(cols),
			Score: score,
		}
		det.Keypoints = d.landmarks(face, imgParams)

		detections = append(detections, det)
	}

	return detections, nil
}

// landmarks localizes the two pupils and estimates the remaining keypoints
// from the face geometry. Only the eye pair takes part in the alignment, the
// rest are coarse placeholders kept for display purposes.
func (d *PigoDetector) landmarks(face pigo.Detection, imgParams pigo.ImageParams) [6]Keypoint {
	var (
		rows  = float64(imgParams.Rows)
		cols  = float64(imgParams.Cols)
		row   = float64(face.Row)
		col   = float64(face.Col)
		scale = float64(face.Scale)
	)

	rightEye := d.locateEye(face, imgParams, -0.175)
	leftEye := d.locateEye(face, imgParams, 0.185)

	return [6]Keypoint{
		{X: rightEye.X / cols, Y: rightEye.Y / rows},
		{X: leftEye.X / cols, Y: leftEye.Y / rows},
		{X: col / cols, Y: row / rows},                // nose tip
		{X: col / cols, Y: (row + 0.35*scale) / rows}, // mouth
		{X: (col - 0.45*scale) / cols, Y: row / rows}, // right ear tragion
		{X: (col + 0.45*scale) / cols, Y: row / rows}, // left ear tragion
	}
}

// locateEye runs the pupil localization cascade seeded at the classic eye
// offset relative to the face center. When the localizer rejects the region
// the geometric seed position is used instead.
func (d *PigoDetector) locateEye(face pigo.Detection, imgParams pigo.ImageParams, colOffset float64) Keypoint {
	seed := pigo.Puploc{
		Row:      face.Row - int(0.075*float32(face.Scale)),
		Col:      face.Col + int(colOffset*float64(face.Scale)),
		Scale:    float32(face.Scale) * 0.25,
		Perturbs: eyePerturbs,
	}

	eye := d.puploc.RunDetector(seed, imgParams, 0.0, false)
	if eye.Row <= 0 || eye.Col <= 0 {
		return Keypoint{X: float64(seed.Col), Y: float64(seed.Row)}
	}

	return Keypoint{X: float64(eye.Col), Y: float64(eye.Row)}
}
