package facepipe

import (
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"golang.org/x/image/bmp"
)

// encodeImg encodes an image to a destination of type io.Writer.
func encodeImg(w io.Writer, img *image.NRGBA) error {
	switch w := w.(type) {
	case *os.File:
		ext := filepath.Ext(w.Name())
		switch ext {
		case "", ".jpg", ".jpeg":
			return jpeg.Encode(w, img, &jpeg.Options{Quality: 100})
		case ".png":
			return png.Encode(w, img)
		case ".bmp":
			return bmp.Encode(w, img)
		default:
			return errors.New("unsupported image format")
		}
	default:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 100})
	}
}

// imgToNRGBA converts any image type to *image.NRGBA with min-point at (0, 0).
func imgToNRGBA(img image.Image) *image.NRGBA {
	srcBounds := img.Bounds()
	if srcBounds.Min.X == 0 && srcBounds.Min.Y == 0 {
		if src0, ok := img.(*image.NRGBA); ok {
			return src0
		}
	}

	var (
		srcMinX = srcBounds.Min.X
		srcMinY = srcBounds.Min.Y

		dstBounds = srcBounds.Sub(srcBounds.Min)
		dstW      = dstBounds.Dx()
		dstH      = dstBounds.Dy()
		dst       = image.NewNRGBA(dstBounds)
	)

	for dstY := 0; dstY < dstH; dstY++ {
		di := dst.PixOffset(0, dstY)
		for dstX := 0; dstX < dstW; dstX++ {
			c := color.NRGBAModel.Convert(img.At(srcMinX+dstX, srcMinY+dstY)).(color.NRGBA)
			dst.Pix[di+0] = c.R
			dst.Pix[di+1] = c.G
			dst.Pix[di+2] = c.B
			dst.Pix[di+3] = c.A
			di += 4
		}
	}

	return dst
}

// ReverseChannels swaps the red and blue channels, converting between RGB
// and BGR pixel layouts. Sources interfacing with BGR producing backends
// need this before running the pipeline.
func ReverseChannels(src *image.NRGBA) *image.NRGBA {
	var (
		bounds = src.Bounds()
		dx     = bounds.Dx()
		dy     = bounds.Dy()
		dst    = image.NewNRGBA(image.Rect(0, 0, dx, dy))
	)

	for y := 0; y < dy; y++ {
		for x := 0; x < dx; x++ {
			srcOff := y*src.Stride + x*4
			dstOff := y*dst.Stride + x*4

			dst.Pix[dstOff+0] = src.Pix[srcOff+2]
			dst.Pix[dstOff+1] = src.Pix[srcOff+1]
			dst.Pix[dstOff+2] = src.Pix[srcOff+0]
			dst.Pix[dstOff+3] = src.Pix[srcOff+3]
		}
	}

	return dst
}

// rgbToGrayscale converts an image to grayscale mode and
// returns the pixel values as an one dimensional array.
func rgbToGrayscale(src *image.NRGBA) []uint8 {
	width, height := src.Bounds().Dx(), src.Bounds().Dy()
	gray := make([]uint8, width*height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := src.At(x, y).RGBA()
			gray[y*width+x] = uint8(
				(0.299*float64(r) +
					0.587*float64(g) +
					0.114*float64(b)) / 256,
			)
		}
	}

	return gray
}
