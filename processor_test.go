package facepipe

import (
	"image"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

// stubDetector replays a fixed sequence of detection batches, one per call.
// Calls past the end of the sequence report no faces.
type stubDetector struct {
	batches [][]Detection
	calls   int
	err     error
}

func (d *stubDetector) Detect(img *image.NRGBA) ([]Detection, error) {
	d.calls++
	if d.err != nil {
		return nil, d.err
	}
	if d.calls > len(d.batches) {
		return nil, nil
	}
	return d.batches[d.calls-1], nil
}

func newTestProcessor(det Detector) *Processor {
	return &Processor{
		Margin:   Margin{Top: Pixels(2), Right: Pixels(4), Left: Pixels(6), Bottom: Pixels(8)},
		Ratio:    Ratio{H: 1, W: 1},
		Detector: det,
	}
}

func TestProcessor_NoFaceShouldReturnTheOriginalImage(t *testing.T) {
	img := gradientImage(imgWidth, imgHeight)
	want := make([]uint8, len(img.Pix))
	copy(want, img.Pix)

	stub := &stubDetector{}
	p := newTestProcessor(stub)

	msg, out, err := p.Run(img)

	assert.NoError(t, err)
	assert.Equal(t, StatusNoFace, msg)
	assert.Equal(t, img.Bounds(), out.Bounds())
	assert.Equal(t, want, []uint8(out.Pix))
	assert.Equal(t, 1, stub.calls, "the pipeline should stop after the first empty batch")
}

func TestProcessor_NoFaceAfterRotationShouldReturnTheOriginalImage(t *testing.T) {
	img := gradientImage(imgWidth, imgHeight)
	want := make([]uint8, len(img.Pix))
	copy(want, img.Pix)

	stub := &stubDetector{
		batches: [][]Detection{
			{levelFaceDetection(0.2, 0.3, 0.6, 0.5)},
		},
	}
	p := newTestProcessor(stub)

	msg, out, err := p.Run(img)

	assert.NoError(t, err)
	assert.Equal(t, StatusNoFaceAfterRotation, msg)
	assert.Equal(t, img.Bounds(), out.Bounds())
	assert.Equal(t, want, []uint8(out.Pix))
	assert.Equal(t, 2, stub.calls)
}

func TestProcessor_DetectorFailureShouldBeFatal(t *testing.T) {
	stub := &stubDetector{err: errors.New("inference backend unavailable")}
	p := newTestProcessor(stub)

	msg, out, err := p.Run(gradientImage(imgWidth, imgHeight))

	assert.Error(t, err)
	assert.Empty(t, msg)
	assert.NotNil(t, out)
}

func TestProcessor_MissingDetectorShouldBeRejected(t *testing.T) {
	p := &Processor{Ratio: Ratio{H: 1, W: 1}}

	_, _, err := p.Run(gradientImage(imgWidth, imgHeight))
	assert.Error(t, err)
}

func TestProcessor_InvalidRatioShouldBeRejected(t *testing.T) {
	p := &Processor{Detector: &stubDetector{}, Ratio: Ratio{H: 0, W: 1}}

	_, _, err := p.Run(gradientImage(imgWidth, imgHeight))
	assert.Error(t, err)
}

func TestProcessor_SuccessShouldCropTheMarginExpandedBox(t *testing.T) {
	// 100x80 portrait input gets 10 black columns on each side when padded
	// to a 100x100 square.
	img := gradientImage(imgWidth, imgHeight)

	first := levelFaceDetection(0.1, 0.2, 0.7, 0.6)
	second := levelFaceDetection(0.2, 0.3, 0.6, 0.5)

	stub := &stubDetector{batches: [][]Detection{{first}, {second}}}
	p := newTestProcessor(stub)

	msg, out, err := p.Run(img)

	assert.NoError(t, err)
	assert.Empty(t, msg)
	assert.Equal(t, 2, stub.calls)

	// Second detection on the 100x100 rotated image: box (20,30)-(60,50).
	// Margin expansion moves it to (18,24)-(68,54), the 1:1 ratio then
	// grows the 50x30 box to 50x50: (18,14)-(68,64).
	assert.Equal(t, 50, out.Bounds().Dx())
	assert.Equal(t, 50, out.Bounds().Dy())

	// Level eyes mean the rotation was an identity, so the crop content
	// must come straight from the padded image. Crop pixel (0,0) maps to
	// padded (14,18), which is the original pixel (4,18).
	off := 0
	assert.Equal(t, uint8(4), out.Pix[off+0])
	assert.Equal(t, uint8(18), out.Pix[off+1])

	// Crop pixel (20,10) maps to padded (34,28), original (24,28).
	off = 10*out.Stride + 20*4
	assert.Equal(t, uint8(24), out.Pix[off+0])
	assert.Equal(t, uint8(28), out.Pix[off+1])
}

func TestProcessor_BiggestFaceShouldWinTheSelection(t *testing.T) {
	img := gradientImage(imgWidth, imgHeight)

	small := levelFaceDetection(0.4, 0.4, 0.5, 0.5)
	big := levelFaceDetection(0.2, 0.3, 0.6, 0.5)

	stub := &stubDetector{batches: [][]Detection{
		{big},
		{small, big},
	}}
	p := newTestProcessor(stub)

	msg, out, err := p.Run(img)

	assert.NoError(t, err)
	assert.Empty(t, msg)

	// The crop derives from the bigger second-pass detection, identical to
	// the single-detection success scenario.
	assert.Equal(t, 50, out.Bounds().Dx())
	assert.Equal(t, 50, out.Bounds().Dy())
}

// levelFaceDetection builds a detection whose eye landmarks sit on a
// horizontal line, so the alignment step resolves to a zero degree rotation.
func levelFaceDetection(yMin, xMin, yMax, xMax float64) Detection {
	eyeY := yMin + (yMax-yMin)*0.35
	return Detection{
		YMin: yMin, XMin: xMin, YMax: yMax, XMax: xMax,
		Keypoints: [6]Keypoint{
			{X: xMin + (xMax-xMin)*0.25, Y: eyeY},
			{X: xMin + (xMax-xMin)*0.75, Y: eyeY},
		},
		Score: 0.9,
	}
}
