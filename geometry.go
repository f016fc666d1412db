package facepipe

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/Jakub-Ner/FaceRecognitionPipeline/utils"
)

// Ratio expresses the target height:width proportion of the final crop.
type Ratio struct {
	H, W int
}

// Box holds a face region in pixel units, top-left and bottom-right corners
// in row-then-column order. Intermediate boxes may carry negative or
// out-of-range coordinates; ClampTo restores the bounds at the end of the
// expansion chain.
type Box struct {
	YMin, XMin, YMax, XMax int
}

// Height returns the vertical extent of the box.
func (b Box) Height() int {
	return b.YMax - b.YMin
}

// Width returns the horizontal extent of the box.
func (b Box) Width() int {
	return b.XMax - b.XMin
}

// PadToSquare extends the shorter dimension of the image with black pixels
// so the result is max(h,w) × max(h,w). The padding is split evenly between
// the two affected sides, the odd pixel going to the bottom/right side.
// Already square images are returned as a plain copy.
func PadToSquare(src *image.NRGBA) *image.NRGBA {
	var (
		b    = src.Bounds()
		dx   = b.Dx()
		dy   = b.Dy()
		size = utils.Max(dx, dy)
	)

	dst := image.NewNRGBA(image.Rect(0, 0, size, size))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.NRGBA{A: 0xff}), image.Point{}, draw.Src)

	var offset image.Point
	if dy > dx {
		offset.X = (dy - dx) / 2
	} else if dx > dy {
		offset.Y = (dx - dy) / 2
	}

	draw.Draw(dst, image.Rect(offset.X, offset.Y, offset.X+dx, offset.Y+dy), src, b.Min, draw.Src)

	return dst
}

// MaintainRatio grows the box along exactly one axis until its height:width
// proportion matches the target ratio, up to integer rounding. The padding is
// split evenly, the remainder going to the max coordinate side. The box is
// never shrunk and the resulting coordinates may temporarily exceed the image
// bounds.
func MaintainRatio(b Box, r Ratio) Box {
	h, w := b.Height(), b.Width()

	switch {
	case h*r.W > w*r.H: // too tall, pad the width
		pad := h*r.W/r.H - w
		left := pad / 2
		b.XMin -= left
		b.XMax += pad - left
	case h*r.W < w*r.H: // too wide, pad the height
		pad := w*r.H/r.W - h
		top := pad / 2
		b.YMin -= top
		b.YMax += pad - top
	}

	return b
}

// ClampTo restricts all four coordinates to the [0, height] and [0, width]
// intervals of the target image.
func (b Box) ClampTo(height, width int) Box {
	return Box{
		YMin: utils.Clamp(b.YMin, 0, height),
		XMin: utils.Clamp(b.XMin, 0, width),
		YMax: utils.Clamp(b.YMax, 0, height),
		XMax: utils.Clamp(b.XMax, 0, width),
	}
}
