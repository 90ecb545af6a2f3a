package xray

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// Capturer grabs a rectangle of a rendered frame. Rectangles use image
// coordinates: origin at the top left, y growing downwards.
type Capturer interface {
	Capture(rect image.Rectangle) (PixelBuffer, error)
}

// CaptureFunc adapts a plain function to Capturer.
type CaptureFunc func(rect image.Rectangle) (PixelBuffer, error)

// Capture calls f(rect).
func (f CaptureFunc) Capture(rect image.Rectangle) (PixelBuffer, error) { return f(rect) }

// ImageSource is anything that can present its current frame as an image,
// such as a *gg.Context software render target.
type ImageSource interface {
	Image() image.Image
}

// ImageCapturer captures from an ImageSource. An empty rectangle captures the
// whole frame.
type ImageCapturer struct {
	Source ImageSource
}

var _ Capturer = ImageCapturer{}

// Capture copies rect out of the source's current frame.
func (c ImageCapturer) Capture(rect image.Rectangle) (PixelBuffer, error) {
	if c.Source == nil {
		return PixelBuffer{}, fmt.Errorf("%w: nil source", ErrCapture)
	}
	img := c.Source.Image()
	if img == nil {
		return PixelBuffer{}, fmt.Errorf("%w: source returned no image", ErrCapture)
	}
	return CaptureImage(img, rect)
}

// CaptureImage copies rect out of img into a new PixelBuffer. An empty rect
// selects the full bounds. The rectangle must lie inside the image.
func CaptureImage(img image.Image, rect image.Rectangle) (PixelBuffer, error) {
	bounds := img.Bounds()
	if rect.Empty() {
		rect = bounds
	}
	if !rect.In(bounds) {
		return PixelBuffer{}, fmt.Errorf("%w: rectangle %v out of bounds %v", ErrCapture, rect, bounds)
	}
	if rect.Empty() {
		return PixelBuffer{}, fmt.Errorf("%w: empty frame %v", ErrCapture, bounds)
	}

	dst := image.NewNRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Copy(dst, image.Point{}, img, rect, draw.Src, nil)

	return PixelBuffer{Width: rect.Dx(), Height: rect.Dy(), Pix: dst.Pix}, nil
}
