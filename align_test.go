package facepipe

import (
	"image"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAlign_LevelEyesShouldKeepTheImageUnchanged(t *testing.T) {
	img := gradientImage(100, 100)

	det := Detection{
		Keypoints: [6]Keypoint{
			{X: 0.3, Y: 0.4}, // right eye
			{X: 0.6, Y: 0.4}, // left eye
		},
	}

	out := Align(img, det)

	assert.Equal(t, img.Bounds(), out.Bounds())
	assert.Equal(t, img.Pix, out.Pix)
}

func TestAlign_ShouldPreserveImageDimensions(t *testing.T) {
	img := gradientImage(120, 120)

	det := Detection{
		Keypoints: [6]Keypoint{
			{X: 0.25, Y: 0.25},
			{X: 0.5, Y: 0.5},
		},
	}

	out := Align(img, det)
	assert.Equal(t, img.Bounds(), out.Bounds())
}

func TestAlign_ShouldLevelTiltedEyes(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 100, 100))
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xff
	}

	// The eyes sit on a 45 degree line: right at (30,30), left at (60,60).
	// Mark the left eye pixel white so it can be tracked after the rotation.
	rightEye := image.Pt(30, 30)
	leftEye := image.Pt(60, 60)
	off := leftEye.Y*img.Stride + leftEye.X*4
	img.Pix[off+0] = 0xff
	img.Pix[off+1] = 0xff
	img.Pix[off+2] = 0xff

	det := Detection{
		Keypoints: [6]Keypoint{
			{X: float64(rightEye.X) / 100, Y: float64(rightEye.Y) / 100},
			{X: float64(leftEye.X) / 100, Y: float64(leftEye.Y) / 100},
		},
	}

	out := Align(img, det)

	// Find the brightest pixel of the rotated image.
	var bright image.Point
	var max int
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			off := y*out.Stride + x*4
			sum := int(out.Pix[off]) + int(out.Pix[off+1]) + int(out.Pix[off+2])
			if sum > max {
				max = sum
				bright = image.Pt(x, y)
			}
		}
	}

	// The left eye must land on the right eye row, at eye distance to the right.
	dist := math.Hypot(float64(leftEye.X-rightEye.X), float64(leftEye.Y-rightEye.Y))
	assert.InDelta(t, float64(rightEye.Y), float64(bright.Y), 1.0)
	assert.InDelta(t, float64(rightEye.X)+dist, float64(bright.X), 1.0)
}

func TestAlign_RotationPivotShouldKeepItsValue(t *testing.T) {
	img := gradientImage(64, 64)

	pivot := image.Pt(20, 24)
	srcOff := pivot.Y*img.Stride + pivot.X*4
	want := make([]uint8, 4)
	copy(want, img.Pix[srcOff:srcOff+4])

	out := rotateAround(img, float64(pivot.X), float64(pivot.Y), math.Pi/7)

	dstOff := pivot.Y*out.Stride + pivot.X*4
	assert.Equal(t, want, []uint8(out.Pix[dstOff:dstOff+4]))
}

func TestAlign_OutOfFramePixelsShouldBeBlack(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 50, 50))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i+0] = 0xff
		img.Pix[i+1] = 0xff
		img.Pix[i+2] = 0xff
		img.Pix[i+3] = 0xff
	}

	// Rotating 45 degrees about the center sweeps the corners out of frame.
	out := rotateAround(img, 25, 25, math.Pi/4)

	corner := out.Pix[0:4]
	assert.Equal(t, []uint8{0, 0, 0, 0xff}, []uint8(corner))
}
