package facepipe

import (
	"image"
	"math"
)

// Align rotates the image so the line between the detection's two eye
// landmarks becomes horizontal. The rotation pivots around the right-eye
// pixel at unit scale, the output keeps the input dimensions and the pixels
// swept in from outside the frame are filled with black. The image is
// expected to be square-padded beforehand so the rotation does not push
// meaningful content out of the frame.
func Align(src *image.NRGBA, det Detection) *image.NRGBA {
	var (
		bounds = src.Bounds()
		dx     = bounds.Dx()
		dy     = bounds.Dy()
	)

	re, le := det.RightEye(), det.LeftEye()
	rx := float64(int(re.X * float64(dx)))
	ry := float64(int(re.Y * float64(dy)))
	lx := float64(int(le.X * float64(dx)))
	ly := float64(int(le.Y * float64(dy)))

	angle := math.Atan2(ly-ry, lx-rx)

	return rotateAround(src, rx, ry, angle)
}

// rotateAround rotates the image by the given angle (radians) about an
// arbitrary pivot point, keeping the source dimensions. Destination pixels
// are computed by inverse mapping with bilinear sampling; samples falling
// outside the source are black.
func rotateAround(src *image.NRGBA, cx, cy, angle float64) *image.NRGBA {
	var (
		bounds = src.Bounds()
		dx     = bounds.Dx()
		dy     = bounds.Dy()
		dst    = image.NewNRGBA(image.Rect(0, 0, dx, dy))
		sin    = math.Sin(angle)
		cos    = math.Cos(angle)
	)

	for y := 0; y < dy; y++ {
		for x := 0; x < dx; x++ {
			px := float64(x) - cx
			py := float64(y) - cy

			sx := cos*px - sin*py + cx
			sy := sin*px + cos*py + cy

			dstOff := y*dst.Stride + x*4
			sampleBilinear(src, sx, sy, dst.Pix[dstOff:dstOff+4:dstOff+4])
		}
	}

	return dst
}

// sampleBilinear writes the bilinear interpolation of the four texels around
// the floating point source coordinate into out.
func sampleBilinear(src *image.NRGBA, x, y float64, out []uint8) {
	x0, y0 := int(math.Floor(x)), int(math.Floor(y))
	fx, fy := x-float64(x0), y-float64(y0)

	var acc [4]float64
	texels := [4]struct {
		px, py int
		weight float64
	}{
		{x0, y0, (1 - fx) * (1 - fy)},
		{x0 + 1, y0, fx * (1 - fy)},
		{x0, y0 + 1, (1 - fx) * fy},
		{x0 + 1, y0 + 1, fx * fy},
	}

	for _, t := range texels {
		r, g, b, a := texelAt(src, t.px, t.py)
		acc[0] += float64(r) * t.weight
		acc[1] += float64(g) * t.weight
		acc[2] += float64(b) * t.weight
		acc[3] += float64(a) * t.weight
	}

	out[0] = uint8(acc[0] + 0.5)
	out[1] = uint8(acc[1] + 0.5)
	out[2] = uint8(acc[2] + 0.5)
	out[3] = uint8(acc[3] + 0.5)
}

// texelAt fetches a single pixel, substituting opaque black outside the
// image bounds.
func texelAt(src *image.NRGBA, x, y int) (r, g, b, a uint8) {
	bounds := src.Bounds()
	if x < 0 || y < 0 || x >= bounds.Dx() || y >= bounds.Dy() {
		return 0, 0, 0, 0xff
	}

	off := y*src.Stride + x*4
	return src.Pix[off], src.Pix[off+1], src.Pix[off+2], src.Pix[off+3]
}
