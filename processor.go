package facepipe

import (
	"image"
	"io"

	"github.com/Jakub-Ner/FaceRecognitionPipeline/utils"
	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

// Status messages returned by Run when one of the two detection passes comes
// back empty. These are expected outcomes, not errors: the caller receives
// the untouched input image and may continue with the next item.
const (
	StatusNoFace              = "Warning: No face detected. Returning original image"
	StatusNoFaceAfterRotation = "Warning: Couldn't find face after resetting the angle. Returning original image"
)

// Processor options
type Processor struct {
	Margin   Margin
	Ratio    Ratio
	Detector Detector

	// InputSize overrides the detector input resolution.
	// Zero means DetectorInputSize.
	InputSize int

	Spinner *utils.Spinner
}

// Run executes the two-pass normalization over a single image:
// square-pad, detect, pick the biggest face, level the eye line, detect
// again on the rotated image, pick the biggest face and crop it with the
// configured margin and aspect ratio.
//
// The returned status is empty on success. When no face is found on either
// pass the status carries a human readable warning and the image is the
// unmodified input. A non-nil error means the detector backend failed and
// the result is unusable.
func (p *Processor) Run(src image.Image) (string, *image.NRGBA, error) {
	img := imgToNRGBA(src)

	if err := p.validate(); err != nil {
		return "", img, err
	}

	// Pre-pad to square so the rotation cannot push face content
	// out of the frame.
	padded := PadToSquare(img)

	detections, err := p.detect(padded)
	if err != nil {
		return "", img, errors.Wrap(err, "first detection pass failed")
	}
	if len(detections) == 0 {
		return StatusNoFace, img, nil
	}

	idx, err := SelectLargest(detections)
	if err != nil {
		return "", img, err
	}
	rotated := Align(padded, detections[idx])

	detections, err = p.detect(rotated)
	if err != nil {
		return "", img, errors.Wrap(err, "second detection pass failed")
	}
	if len(detections) == 0 {
		return StatusNoFaceAfterRotation, img, nil
	}

	idx, err = SelectLargest(detections)
	if err != nil {
		return "", img, err
	}

	var (
		bounds = rotated.Bounds()
		height = bounds.Dy()
		width  = bounds.Dx()
	)

	box := detections[idx].Box(height, width)
	box = p.Margin.Recalculate(box, height, width, p.Ratio)

	cropped := imaging.Crop(rotated, image.Rect(box.XMin, box.YMin, box.XMax, box.YMax))

	return "", cropped, nil
}

// Process decodes an image from the reader, runs the pipeline and encodes
// the result into the writer. The returned status mirrors Run: empty on
// success, a warning when the original image was passed through.
func (p *Processor) Process(r io.Reader, w io.Writer) (string, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return "", errors.Wrap(err, "could not decode the source image")
	}

	msg, out, err := p.Run(src)
	if err != nil {
		return msg, err
	}

	return msg, encodeImg(w, out)
}

// detect downscales the image to the detector input resolution and invokes
// the configured detector.
func (p *Processor) detect(img *image.NRGBA) ([]Detection, error) {
	size := p.InputSize
	if size <= 0 {
		size = DetectorInputSize
	}

	downsized := imaging.Resize(img, size, size, imaging.Lanczos)

	return p.Detector.Detect(downsized)
}

func (p *Processor) validate() error {
	if p.Detector == nil {
		return errors.New("no face detector configured")
	}
	if p.Ratio.H <= 0 || p.Ratio.W <= 0 {
		return errors.Errorf("invalid crop ratio %d:%d, both terms must be positive", p.Ratio.H, p.Ratio.W)
	}
	return nil
}
